package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyMode       = "mode"
	KeySourcePath = "source_path"
	KeySlug       = "slug"
	KeyURL        = "url"
	KeyLayout     = "layout"
	KeyTag        = "tag"
	KeyOutput     = "output"
	KeyReason     = "reason"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func SourcePath(p string) slog.Attr   { return slog.String(KeySourcePath, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Layout(l string) slog.Attr       { return slog.String(KeyLayout, l) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
