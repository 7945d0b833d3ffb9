package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestLoad_CorruptFileIsEmptyWithError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o600))

	m, err := Load(p)
	require.Error(t, err)
	assert.Empty(t, m)
}

func TestParse_SortsByWidthAndTagsFormat(t *testing.T) {
	m, err := Parse([]byte(`{
		"cat.jpg": {
			"webp": [{"width": 1200, "path": "assets/images/cat-1200.webp"}, {"width": 400, "path": "assets/images/cat-400.webp"}],
			"avif": []
		}
	}`))
	require.NoError(t, err)

	formats, ok := m.Lookup("cat.jpg")
	require.True(t, ok)
	require.NotContains(t, formats, FormatAVIF)
	require.Len(t, formats[FormatWebP], 2)
	assert.Equal(t, 400, formats[FormatWebP][0].Width)
	assert.Equal(t, FormatWebP, formats[FormatWebP][0].Format)

	_, ok = m.Lookup("dog.jpg")
	assert.False(t, ok)
}
