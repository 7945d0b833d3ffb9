package content

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the normalized date format.
const DateLayout = "2006-01-02"

var isoLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04",
}

// NormalizeDate converts a metadata date value to YYYY-MM-DD. The second
// result is false when the value cannot be interpreted as a date.
func NormalizeDate(v any) (string, bool) {
	switch d := v.(type) {
	case nil:
		return "", false
	case time.Time:
		return d.Format(DateLayout), true
	case *time.Time:
		if d == nil {
			return "", false
		}
		return d.Format(DateLayout), true
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return "", false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}
