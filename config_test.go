package typeproof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, DefaultWidth, c.Width)
	assert.Equal(t, DefaultHeight, c.Height)
	assert.Equal(t, DefaultFontSize, c.FontSize)
	assert.Equal(t, DefaultBaselineRatio, c.BaselineRatio)
	assert.Equal(t, float64(DefaultMargin), c.Margin)
	assert.NotNil(t, c.Coords)
	assert.NotNil(t, c.Features)

	// Explicit values survive.
	c = Config{Width: 100, Height: 50, FontSize: 12, BaselineRatio: 0.5}.withDefaults()
	assert.Equal(t, 100, c.Width)
	assert.Equal(t, 50, c.Height)
	assert.Equal(t, 12, c.FontSize)
	assert.Equal(t, 0.5, c.BaselineRatio)

	// Out-of-range ratios fall back.
	c = Config{BaselineRatio: 1.5}.withDefaults()
	assert.Equal(t, DefaultBaselineRatio, c.BaselineRatio)
}

func TestLoadFontData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, os.WriteFile(path, []byte("abcd"), 0o644))

	c := Config{FontPath: path}
	data, err := c.loadFontData()
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	// An in-memory buffer wins over the path.
	c.FontData = []byte("wxyz")
	data, err = c.loadFontData()
	require.NoError(t, err)
	assert.Equal(t, []byte("wxyz"), data)

	_, err = (&Config{FontPath: filepath.Join(t.TempDir(), "nope.ttf")}).loadFontData()
	assert.Error(t, err)
}
