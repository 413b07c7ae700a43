package typeproof

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestEnginesOrder(t *testing.T) {
	assert.Equal(t, []string{EngineCoreText, EngineHarfBuzz}, Engines())
}

func TestAvailable(t *testing.T) {
	assert.True(t, Available(EngineHarfBuzz))
	assert.False(t, Available("pango"))
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := New("pango", DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestNewCoreTextUnavailable(t *testing.T) {
	if Available(EngineCoreText) {
		t.Skip("coretext engine is available on this platform")
	}
	_, err := New(EngineCoreText, DefaultConfig())
	assert.ErrorIs(t, err, ErrEngineUnavailable)

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, EngineCoreText, initErr.Engine)
}

func TestNewMissingFontFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FontPath = filepath.Join(t.TempDir(), "missing.ttf")

	_, err := New(EngineHarfBuzz, cfg)
	assert.ErrorIs(t, err, ErrFontLoad)

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, EngineHarfBuzz, initErr.Engine)
}

func TestNewGarbageFontData(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FontData = []byte("not a font")

	_, err := New(EngineHarfBuzz, cfg)
	assert.ErrorIs(t, err, ErrFontLoad)
}

func TestFirstAvailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FontData = goregular.TTF

	r, err := FirstAvailable(cfg)
	require.NoError(t, err)
	defer r.Close()

	assert.Contains(t, Engines(), r.Engine())
}

func TestFirstAvailableBadFont(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FontData = []byte("not a font")

	// Every engine fails to construct; the scan runs to the end.
	_, err := FirstAvailable(cfg)
	assert.ErrorIs(t, err, ErrNoEngine)
}

func TestSaveImage(t *testing.T) {
	r := newTestRenderer(t, nil)
	c, err := r.RenderText("Ag")
	require.NoError(t, err)

	// The parent directory does not exist yet and is created on demand.
	path := filepath.Join(t.TempDir(), "out", "render.png")
	require.NoError(t, SaveImage(c, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSaveImageUnknownFormat(t *testing.T) {
	c := NewCanvas(4, 4)
	err := SaveImage(c, filepath.Join(t.TempDir(), "render.xyz"))
	assert.Error(t, err)
}

func TestErrorUnwrapping(t *testing.T) {
	err := &RenderError{Engine: EngineHarfBuzz, Err: ErrFontLoad}
	assert.ErrorIs(t, err, ErrFontLoad)
	assert.Contains(t, err.Error(), EngineHarfBuzz)

	gErr := &GlyphLoadError{GID: 42, Err: errors.New("boom")}
	assert.Contains(t, gErr.Error(), "42")
}
