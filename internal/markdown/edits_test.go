package markdown

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func editFor(t *testing.T, src []byte, old, repl string) Edit {
	t.Helper()
	idx := bytes.Index(src, []byte(old))
	require.NotEqual(t, -1, idx, "%q not found", old)
	return Edit{Start: idx, End: idx + len(old), Replacement: []byte(repl)}
}

func TestApplyEdits_NoEditsReturnsSource(t *testing.T) {
	src := []byte("unchanged\n")
	out, err := ApplyEdits(src, nil)
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestApplyEdits_SingleReplacement(t *testing.T) {
	src := []byte("![Cat](/assets/images/cat.jpg)\n")

	out, err := ApplyEdits(src, []Edit{editFor(t, src, "![Cat](/assets/images/cat.jpg)", "<picture></picture>")})
	require.NoError(t, err)
	require.Equal(t, "<picture></picture>\n", string(out))
}

func TestApplyEdits_OrderIndependent(t *testing.T) {
	src := []byte("a ONE b TWO c\n")
	one := editFor(t, src, "ONE", "1")
	two := editFor(t, src, "TWO", "2222")

	forward, err := ApplyEdits(src, []Edit{one, two})
	require.NoError(t, err)
	backward, err := ApplyEdits(src, []Edit{two, one})
	require.NoError(t, err)

	require.Equal(t, "a 1 b 2222 c\n", string(forward))
	require.Equal(t, forward, backward)
	require.Equal(t, "a ONE b TWO c\n", string(src))
}

func TestApplyEdits_CRLFPreserved(t *testing.T) {
	src := []byte("A: old\r\nB: old\r\n")

	out, err := ApplyEdits(src, []Edit{editFor(t, src, "old", "new")})
	require.NoError(t, err)
	require.Equal(t, "A: new\r\nB: old\r\n", string(out))
}

func TestApplyEdits_InsertAndDelete(t *testing.T) {
	src := []byte("abcdef")

	out, err := ApplyEdits(src, []Edit{
		{Start: 0, End: 0, Replacement: []byte(">")},
		{Start: 2, End: 4},
	})
	require.NoError(t, err)
	require.Equal(t, ">abef", string(out))
}

func TestApplyEdits_RejectsInvalidRanges(t *testing.T) {
	src := []byte("abcdef")

	tests := []struct {
		name  string
		edits []Edit
	}{
		{name: "negative", edits: []Edit{{Start: -1, End: 2}}},
		{name: "end before start", edits: []Edit{{Start: 4, End: 2}}},
		{name: "out of bounds", edits: []Edit{{Start: 2, End: 10}}},
		{name: "overlap", edits: []Edit{{Start: 0, End: 3}, {Start: 2, End: 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyEdits(src, tt.edits)
			require.Error(t, err)
		})
	}
}

func TestApplyEdits_OverlapIsSentinel(t *testing.T) {
	_, err := ApplyEdits([]byte("abcdef"), []Edit{{Start: 1, End: 3}, {Start: 0, End: 2}})
	require.ErrorIs(t, err, ErrOverlappingEdits)
}
