package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b-1", BuildID("b-1")},
		{"Mode", KeyMode, "full", Mode("full")},
		{"SourcePath", KeySourcePath, "content/about.md", SourcePath("content/about.md")},
		{"Slug", KeySlug, "about", Slug("about")},
		{"URL", KeyURL, "/about", URL("/about")},
		{"Layout", KeyLayout, "main", Layout("main")},
		{"Tag", KeyTag, "go", Tag("go")},
		{"Output", KeyOutput, "about/index.html", Output("about/index.html")},
		{"Reason", KeyReason, "draft", Reason("draft")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Errorf("%s key = %q, want %q", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Errorf("%s value = %q, want %q", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Errorf("Count attr = %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Errorf("DurationMS attr = %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Errorf("Error(nil) = %q, want empty", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Key != KeyError || a.Value.String() != "boom" {
		t.Errorf("Error attr = %v", a)
	}
}
