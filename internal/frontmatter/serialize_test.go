package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_SortsKeys(t *testing.T) {
	out, err := SerializeYAML(map[string]any{
		"title": "Hello",
		"draft": false,
		"tags":  []any{"b", "a"},
		"meta":  map[string]any{"z": 1, "a": 2},
	})
	require.NoError(t, err)
	require.Equal(t, "draft: false\nmeta:\n  a: 2\n  z: 1\ntags:\n  - b\n  - a\ntitle: Hello\n", string(out))
}

func TestSerializeYAML_Empty(t *testing.T) {
	out, err := SerializeYAML(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerializeYAML_IsStableAcrossCalls(t *testing.T) {
	fields := map[string]any{"a": 1, "b": "two", "c": []string{"x"}}
	first, err := SerializeYAML(fields)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := SerializeYAML(fields)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
