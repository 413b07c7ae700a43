package typeproof

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/typeproof/typeproof/internal/fvar"
	"github.com/typeproof/typeproof/internal/raster"
)

// HarfBuzzRenderer is the explicit two-stage pipeline: HarfBuzz-style
// shaping via go-text/typesetting, then per-glyph rasterization and manual
// alpha compositing. It is the cross-platform comparison target.
//
// The renderer holds two independently mutable handles for the same
// logical font: the shaping face (scaled to the font's design
// units-per-em) and the rasterizer face (at pixel size). Both are rebuilt
// together by applyVariations so they cannot drift apart.
type HarfBuzzRenderer struct {
	cfg      Config
	fontData []byte

	shapeFace *font.Face
	upem      float64
	shaper    shaping.HarfbuzzShaper

	rast *raster.Face
}

// harfBuzzAvailable reports whether the shaping engine can be constructed.
// The shaping and rasterization libraries are pure Go and compiled in, so
// this engine is available on every platform.
func harfBuzzAvailable() bool { return true }

// newHarfBuzz constructs the shape-and-rasterize engine. The font is read
// once and cached; both font handles are parsed from the cached bytes.
func newHarfBuzz(cfg Config) (Renderer, error) {
	cfg = cfg.withDefaults()

	data, err := cfg.loadFontData()
	if err != nil {
		return nil, &InitError{Engine: EngineHarfBuzz, Err: fmt.Errorf("%w: %v", ErrFontLoad, err)}
	}

	shapeFace, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, &InitError{Engine: EngineHarfBuzz, Err: fmt.Errorf("%w: %v", ErrFontLoad, err)}
	}

	rastFace, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, &InitError{Engine: EngineHarfBuzz, Err: fmt.Errorf("%w: %v", ErrFontLoad, err)}
	}

	axes, err := fontAxes(data)
	if err != nil {
		return nil, &InitError{Engine: EngineHarfBuzz, Err: err}
	}

	r := &HarfBuzzRenderer{
		cfg:       cfg,
		fontData:  data,
		shapeFace: shapeFace,
		upem:      float64(shapeFace.Upem()),
		rast:      raster.NewFace(rastFace, axes, float64(cfg.FontSize)),
	}
	if r.upem <= 0 {
		r.upem = 1000
	}

	if len(cfg.Coords) > 0 {
		if err := r.applyVariations(); err != nil {
			return nil, &InitError{Engine: EngineHarfBuzz, Err: err}
		}
	}
	return r, nil
}

// fontAxes reads the font's ordered variation-axis list. Static fonts
// yield no axes.
func fontAxes(data []byte) ([]fvar.Axis, error) {
	ld, err := ot.NewLoader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	table, err := ld.RawTable(ot.MustNewTag("fvar"))
	if err != nil {
		// Not a variable font.
		return nil, nil
	}
	return fvar.Parse(table)
}

// Engine implements Renderer.
func (r *HarfBuzzRenderer) Engine() string { return EngineHarfBuzz }

// Close implements Renderer. The handles are garbage collected; nothing
// to release.
func (r *HarfBuzzRenderer) Close() error { return nil }

// applyVariations pushes the configured coordinates to both font handles
// as one operation.
//
// The shaping face takes tag/value pairs directly. The rasterizer face
// takes a full design-coordinate array aligned to the font's own axis
// order: for each axis the caller's coordinate if present, else the
// axis's registered default, truncated to 16.16 fixed point. All tags,
// the caller's and the font's own, are validated before either handle is
// touched; a malformed tag anywhere leaves both handles in their
// previous state.
func (r *HarfBuzzRenderer) applyVariations() error {
	vars := make([]font.Variation, 0, len(r.cfg.Coords))
	for tag, value := range r.cfg.Coords {
		packed, err := fvar.PackTag(tag)
		if err != nil {
			return err
		}
		vars = append(vars, font.Variation{Tag: font.Tag(packed), Value: float32(value)})
	}

	axes := r.rast.Axes()
	coords := make([]int32, len(axes))
	for i, ax := range axes {
		value := ax.Default
		if v, ok := r.cfg.Coords[ax.Tag]; ok {
			value = v
		}
		coords[i] = fvar.FloatToFixed(value)
	}

	// The rasterizer rejects unpackable font-declared axis tags before
	// mutating anything; the shaping face only moves after it succeeds.
	if err := r.rast.SetDesignCoords(coords); err != nil {
		return err
	}
	r.shapeFace.SetVariations(vars)
	return nil
}

// RenderText implements Renderer.
//
// The text is shaped at the font's design units-per-em so advances and
// offsets stay in font units; a single scale factor of fontSize/upem
// converts them to pixels per glyph. Glyph bitmaps are composited onto
// the canvas with a single-pass alpha blend of black ink over white.
func (r *HarfBuzzRenderer) RenderText(text string) (*Canvas, error) {
	canvas := NewCanvas(r.cfg.Width, r.cfg.Height)

	runes := []rune(text)
	if len(runes) == 0 {
		return canvas, nil
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: guessDirection(text),
		Face:      r.shapeFace,
		Size:      fixed.I(int(r.upem)),
		Script:    guessScript(runes),
		Language:  language.NewLanguage("en"),
	}
	input.FontFeatures = r.featureList()

	out := r.shaper.Shape(input)
	if len(out.Glyphs) == 0 {
		return canvas, nil
	}

	scale := float64(r.cfg.FontSize) / r.upem
	penX := r.cfg.Margin
	penY := float64(r.cfg.Height) * r.cfg.BaselineRatio
	trackingPx := r.cfg.Tracking / 1000 * float64(r.cfg.FontSize)

	for _, g := range out.Glyphs {
		bm, err := r.rast.LoadGlyph(g.GlyphID)
		if err != nil {
			return nil, &GlyphLoadError{GID: uint32(g.GlyphID), Err: err}
		}

		if bm.Width > 0 && bm.Height > 0 {
			x := penX + fixedToFloat(g.XOffset)*scale + float64(bm.Left)
			y := penY - float64(bm.Top) - fixedToFloat(g.YOffset)*scale
			compositeGlyph(canvas, bm, int(math.Round(x)), int(math.Round(y)))
		}

		// Tracking applies after every glyph, the last one included:
		// trailing tracking is part of the measured advance.
		penX += fixedToFloat(g.Advance)*scale + trackingPx
	}

	Logger().Debug("rendered run",
		"engine", EngineHarfBuzz, "glyphs", len(out.Glyphs), "advance", penX-r.cfg.Margin)

	return canvas, nil
}

// featureList converts the configured feature map into shaping requests,
// sorted by tag for a deterministic shaping plan.
func (r *HarfBuzzRenderer) featureList() []shaping.FontFeature {
	if len(r.cfg.Features) == 0 {
		return nil
	}
	tags := make([]string, 0, len(r.cfg.Features))
	for tag := range r.cfg.Features {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	feats := make([]shaping.FontFeature, 0, len(tags))
	for _, tag := range tags {
		packed, err := fvar.PackTag(tag)
		if err != nil {
			Logger().Warn("skipping unpackable feature tag", "tag", tag, "error", err)
			continue
		}
		feats = append(feats, shaping.FontFeature{
			Tag:   font.Tag(packed),
			Value: uint32(r.cfg.Features[tag]),
		})
	}
	return feats
}

// compositeGlyph alpha-blends a coverage bitmap onto the canvas at
// (x, y), clipping to the canvas rectangle. Coverage darkens the existing
// sample toward black ink: out = existing * (1 - coverage).
func compositeGlyph(c *Canvas, bm *raster.Bitmap, x, y int) {
	x1 := max(0, x)
	y1 := max(0, y)
	x2 := min(c.Width(), x+bm.Width)
	y2 := min(c.Height(), y+bm.Height)
	if x2 <= x1 || y2 <= y1 {
		return
	}

	// Skip fully transparent visible regions; blending zero coverage is
	// a no-op either way.
	any := false
	for gy := y1 - y; gy < y2-y && !any; gy++ {
		row := bm.Pix[gy*bm.Width:]
		for gx := x1 - x; gx < x2-x; gx++ {
			if row[gx] != 0 {
				any = true
				break
			}
		}
	}
	if !any {
		return
	}

	pix := c.Pix()
	for cy := y1; cy < y2; cy++ {
		src := bm.Pix[(cy-y)*bm.Width:]
		dst := pix[cy*c.Width():]
		for cx := x1; cx < x2; cx++ {
			cov := uint32(src[cx-x])
			if cov == 0 {
				continue
			}
			dst[cx] = uint8(uint32(dst[cx]) * (255 - cov) / 255)
		}
	}
}

// fixedToFloat converts a 26.6 fixed-point value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// UpdateInstanceCoords implements Renderer. On rebuild failure both
// handles keep their previous coordinates and the error is only logged.
func (r *HarfBuzzRenderer) UpdateInstanceCoords(coords map[string]float64) {
	if coords == nil {
		coords = map[string]float64{}
	}
	r.cfg.Coords = coords
	if err := r.applyVariations(); err != nil {
		Logger().Warn("variation update failed, keeping previous coordinates",
			"engine", EngineHarfBuzz, "error", err)
	}
}

// UpdateTracking implements Renderer.
func (r *HarfBuzzRenderer) UpdateTracking(tracking float64) {
	if math.IsNaN(tracking) || math.IsInf(tracking, 0) {
		tracking = 0
	}
	r.cfg.Tracking = tracking
}

// UpdateDimensions implements Renderer. Width and height only affect the
// next canvas allocation; a font size change resets the rasterizer pixel
// size (the shaping face is upem-scaled and needs no rebuild).
func (r *HarfBuzzRenderer) UpdateDimensions(width, height, fontSize int) {
	if width > 0 {
		r.cfg.Width = width
	}
	if height > 0 {
		r.cfg.Height = height
	}
	if fontSize > 0 && fontSize != r.cfg.FontSize {
		r.cfg.FontSize = fontSize
		r.rast.SetPixelSize(float64(fontSize))
	}
}

// Summary implements Renderer.
func (r *HarfBuzzRenderer) Summary() Summary {
	return Summary{
		Engine:   EngineHarfBuzz,
		Font:     fontName(&r.cfg),
		Coords:   copyCoords(r.cfg.Coords),
		Features: copyFeatures(r.cfg.Features),
		Size:     r.cfg.FontSize,
	}
}

func copyCoords(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyFeatures(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
