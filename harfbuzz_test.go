package typeproof

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-text/typesetting/font"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/typeproof/typeproof/internal/fvar"
	"github.com/typeproof/typeproof/internal/raster"
)

// newTestRenderer opens the shape-and-rasterize engine over the bundled
// Go Regular font with a small canvas.
func newTestRenderer(t *testing.T, mutate func(*Config)) Renderer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.FontData = goregular.TTF
	cfg.Width = 600
	cfg.Height = 400
	cfg.FontSize = 48
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := New(EngineHarfBuzz, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// inkBounds returns the min/max row and column containing ink, or ok=false
// for an all-white canvas.
func inkBounds(c *Canvas) (minRow, maxRow, minCol, maxCol int, ok bool) {
	minRow, minCol = c.Height(), c.Width()
	maxRow, maxCol = -1, -1
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if c.At(x, y) == 0xff {
				continue
			}
			minRow = min(minRow, y)
			maxRow = max(maxRow, y)
			minCol = min(minCol, x)
			maxCol = max(maxCol, x)
		}
	}
	return minRow, maxRow, minCol, maxCol, maxRow >= 0
}

func TestRenderTextDimensions(t *testing.T) {
	r := newTestRenderer(t, nil)
	c, err := r.RenderText("Hamburg")
	require.NoError(t, err)

	assert.Equal(t, 600, c.Width())
	assert.Equal(t, 400, c.Height())
	assert.Len(t, c.Pix(), 600*400)
	assert.Positive(t, c.InkCount())
}

func TestRenderTextEmpty(t *testing.T) {
	r := newTestRenderer(t, nil)
	c, err := r.RenderText("")
	require.NoError(t, err)
	assert.Zero(t, c.InkCount())
}

func TestRenderTextSpacesOnly(t *testing.T) {
	r := newTestRenderer(t, nil)
	c, err := r.RenderText("   ")
	require.NoError(t, err)
	assert.Zero(t, c.InkCount())
}

func TestRenderTextDeterministic(t *testing.T) {
	r := newTestRenderer(t, nil)
	a, err := r.RenderText("Ag")
	require.NoError(t, err)
	b, err := r.RenderText("Ag")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestRenderTextBaseline(t *testing.T) {
	r := newTestRenderer(t, nil)
	baseline := 300 // 400 * 0.75

	// A capital sits entirely above the baseline.
	c, err := r.RenderText("A")
	require.NoError(t, err)
	_, maxRow, minCol, _, ok := inkBounds(c)
	require.True(t, ok)
	assert.Less(t, maxRow, baseline)
	assert.GreaterOrEqual(t, minCol, DefaultMargin-1)

	// A descender reaches below it.
	c, err = r.RenderText("g")
	require.NoError(t, err)
	_, maxRow, _, _, ok = inkBounds(c)
	require.True(t, ok)
	assert.Greater(t, maxRow, baseline)
}

func TestRenderTextFontSizeScalesInk(t *testing.T) {
	small := newTestRenderer(t, func(c *Config) { c.FontSize = 24 })
	large := newTestRenderer(t, func(c *Config) { c.FontSize = 48 })

	cs, err := small.RenderText("Hamburg")
	require.NoError(t, err)
	cl, err := large.RenderText("Hamburg")
	require.NoError(t, err)

	assert.Greater(t, cl.InkCount(), cs.InkCount())
}

func TestRenderTextTrackingSpreads(t *testing.T) {
	tight := newTestRenderer(t, nil)
	loose := newTestRenderer(t, func(c *Config) { c.Tracking = 500 })

	ct, err := tight.RenderText("AVA")
	require.NoError(t, err)
	cl, err := loose.RenderText("AVA")
	require.NoError(t, err)

	_, _, _, tightRight, ok := inkBounds(ct)
	require.True(t, ok)
	_, _, _, looseRight, ok := inkBounds(cl)
	require.True(t, ok)
	assert.Greater(t, looseRight, tightRight)
}

func TestUpdateTrackingNonFinite(t *testing.T) {
	r := newTestRenderer(t, nil)
	before, err := r.RenderText("AVA")
	require.NoError(t, err)

	r.UpdateTracking(math.NaN())
	after, err := r.RenderText("AVA")
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestUpdateInstanceCoordsMalformedTag(t *testing.T) {
	r := newTestRenderer(t, nil)
	before, err := r.RenderText("Ag")
	require.NoError(t, err)

	// A non-ASCII tag cannot be packed. The update is swallowed and the
	// renderer keeps working with its previous coordinates.
	r.UpdateInstanceCoords(map[string]float64{"wéght": 820})
	after, err := r.RenderText("Ag")
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestUpdateInstanceCoordsStaticFont(t *testing.T) {
	r := newTestRenderer(t, nil)
	before, err := r.RenderText("Ag")
	require.NoError(t, err)

	// Go Regular has no variation axes; a well-formed coordinate set is
	// a no-op on the rendered output.
	r.UpdateInstanceCoords(map[string]float64{"wght": 700})
	after, err := r.RenderText("Ag")
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestUpdateInstanceCoordsKeepsHandlesInSync(t *testing.T) {
	r, ok := newTestRenderer(t, nil).(*HarfBuzzRenderer)
	require.True(t, ok)

	before, err := r.RenderText("Ag")
	require.NoError(t, err)

	// A font-declared axis tag the rasterizer cannot pack fails the
	// coordinate submission; the whole update must be dropped with both
	// handles left on their previous coordinates.
	parsed, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	require.NoError(t, err)
	good := r.rast
	r.rast = raster.NewFace(parsed, []fvar.Axis{{Tag: "bäd", Default: 1}}, 48)
	r.UpdateInstanceCoords(map[string]float64{"wght": 820})
	r.rast = good

	after, err := r.RenderText("Ag")
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestUpdateDimensions(t *testing.T) {
	r := newTestRenderer(t, nil)

	r.UpdateDimensions(300, 200, 0)
	c, err := r.RenderText("A")
	require.NoError(t, err)
	assert.Equal(t, 300, c.Width())
	assert.Equal(t, 200, c.Height())

	before := c.InkCount()
	r.UpdateDimensions(0, 0, 24)
	c, err = r.RenderText("A")
	require.NoError(t, err)
	assert.Less(t, c.InkCount(), before)
}

func TestHarfBuzzSummary(t *testing.T) {
	r := newTestRenderer(t, func(c *Config) {
		c.Coords = map[string]float64{"wght": 400}
		c.Features = map[string]int{"liga": 0}
	})
	s := r.Summary()
	assert.Equal(t, EngineHarfBuzz, s.Engine)
	assert.Equal(t, "(memory)", s.Font)
	assert.Equal(t, 48, s.Size)
	assert.Equal(t, map[string]float64{"wght": 400}, s.Coords)
	assert.Equal(t, map[string]int{"liga": 0}, s.Features)
}

func TestCompositeGlyphClipping(t *testing.T) {
	bm := &raster.Bitmap{
		Pix:    make([]uint8, 100),
		Width:  10,
		Height: 10,
	}
	for i := range bm.Pix {
		bm.Pix[i] = 0xff
	}

	// Fully offscreen placements leave the canvas untouched.
	c := NewCanvas(20, 20)
	compositeGlyph(c, bm, -10, -10)
	compositeGlyph(c, bm, 20, 0)
	compositeGlyph(c, bm, 0, 20)
	assert.Zero(t, c.InkCount())

	// Partial overlap paints only the visible quadrant.
	compositeGlyph(c, bm, -5, -5)
	assert.Equal(t, 25, c.InkCount())
	assert.Equal(t, uint8(0), c.At(0, 0))
	assert.Equal(t, uint8(0), c.At(4, 4))
	assert.Equal(t, uint8(0xff), c.At(5, 5))
}

func TestCompositeGlyphBlends(t *testing.T) {
	bm := &raster.Bitmap{
		Pix:    []uint8{128},
		Width:  1,
		Height: 1,
	}
	c := NewCanvas(2, 1)
	compositeGlyph(c, bm, 0, 0)

	// out = existing * (255 - coverage) / 255
	assert.Equal(t, uint8(255*(255-128)/255), c.At(0, 0))
	assert.Equal(t, uint8(0xff), c.At(1, 0))
}
