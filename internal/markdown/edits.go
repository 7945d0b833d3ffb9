package markdown

import (
	"errors"
	"fmt"
	"sort"
)

// Edit replaces source[Start:End] with Replacement. Offsets always refer to
// the original source, End is exclusive.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ErrOverlappingEdits is returned when two edits touch the same bytes.
var ErrOverlappingEdits = errors.New("overlapping edits")

// ApplyEdits applies non-overlapping byte-range edits to source and returns
// the rewritten content. The input slice is never modified.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}

	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	grow := 0
	for i, e := range ordered {
		switch {
		case e.Start < 0 || e.End < e.Start:
			return nil, fmt.Errorf("edit %d: invalid range [%d,%d)", i, e.Start, e.End)
		case e.End > len(source):
			return nil, fmt.Errorf("edit %d: range [%d,%d) exceeds source length %d", i, e.Start, e.End, len(source))
		case i > 0 && e.Start < ordered[i-1].End:
			return nil, fmt.Errorf("edit %d: %w", i, ErrOverlappingEdits)
		}
		grow += len(e.Replacement) - (e.End - e.Start)
	}

	out := make([]byte, 0, len(source)+max(grow, 0))
	cursor := 0
	for _, e := range ordered {
		out = append(out, source[cursor:e.Start]...)
		out = append(out, e.Replacement...)
		cursor = e.End
	}
	out = append(out, source[cursor:]...)
	return out, nil
}
