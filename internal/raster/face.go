// Package raster turns glyph outlines into 8-bit coverage bitmaps.
//
// A Face wraps a sized font handle that is independent from the shaping
// handle: the two must be kept synchronized on every variation update,
// which callers do through SetDesignCoords.
package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"

	"github.com/typeproof/typeproof/internal/fvar"
	"github.com/typeproof/typeproof/internal/glyphcache"
)

// cacheLimit bounds the per-face bitmap cache. A benchmark run touches a
// few dozen distinct glyphs; the limit only guards against pathological
// inputs.
const cacheLimit = 256

// Bitmap is a rasterized glyph: a coverage bitmap plus its bearings.
// Pix holds Height rows of Width samples, top row first; each sample is
// the coverage of that pixel in [0, 255].
//
// Left is the horizontal distance from the glyph origin to the leftmost
// bitmap column; Top is the vertical distance from the baseline up to the
// topmost bitmap row. Both may be negative.
type Bitmap struct {
	Pix           []uint8
	Width, Height int
	Left, Top     int
}

// Face is a rasterizer font handle at a fixed pixel size.
//
// Face carries mutable per-glyph load state and is not safe for
// concurrent use.
type Face struct {
	face  *font.Face
	axes  []fvar.Axis
	upem  float64
	size  float64
	cache *glyphcache.Cache[font.GID, *Bitmap]
}

// NewFace wraps a parsed font as a rasterizer handle. axes is the font's
// ordered variation-axis list (nil for a static font); size is the pixel
// size glyphs are rendered at.
func NewFace(face *font.Face, axes []fvar.Axis, size float64) *Face {
	upem := float64(face.Upem())
	if upem <= 0 {
		upem = 1000
	}
	return &Face{
		face:  face,
		axes:  axes,
		upem:  upem,
		size:  size,
		cache: glyphcache.New[font.GID, *Bitmap](cacheLimit),
	}
}

// Size returns the current pixel size.
func (f *Face) Size() float64 { return f.size }

// SetPixelSize changes the pixel size used by subsequent LoadGlyph calls.
// Cached bitmaps are rendered at the old size and are dropped.
func (f *Face) SetPixelSize(size float64) {
	if size != f.size {
		f.size = size
		f.cache.Clear()
	}
}

// Axes returns the font's ordered variation-axis list.
func (f *Face) Axes() []fvar.Axis { return f.axes }

// SetDesignCoords applies a full set of 16.16 fixed-point design
// coordinates, one per axis in the font's own axis order. Partial or
// reordered arrays are rejected: submitting them would silently move the
// wrong axes.
func (f *Face) SetDesignCoords(coords []int32) error {
	if len(coords) != len(f.axes) {
		return fmt.Errorf("raster: %d design coords for %d axes", len(coords), len(f.axes))
	}
	if len(coords) == 0 {
		return nil
	}
	vars := make([]font.Variation, len(coords))
	for i, ax := range f.axes {
		packed, err := fvar.PackTag(ax.Tag)
		if err != nil {
			return err
		}
		vars[i] = font.Variation{
			Tag:   font.Tag(packed),
			Value: float32(coords[i]) / 65536,
		}
	}
	f.face.SetVariations(vars)
	f.cache.Clear()
	return nil
}

// LoadGlyph rasterizes a glyph to a coverage bitmap at the current pixel
// size, serving repeated loads from the bitmap cache. Glyphs with no
// outline (spaces, .notdef in some fonts) return a zero-sized bitmap. A
// glyph that cannot be decoded returns an error.
//
// Callers must treat the returned bitmap as read-only; it may be shared
// with later loads of the same glyph.
func (f *Face) LoadGlyph(gid font.GID) (*Bitmap, error) {
	if bm, ok := f.cache.Get(gid); ok {
		return bm, nil
	}
	bm, err := f.loadGlyph(gid)
	if err != nil {
		return nil, err
	}
	f.cache.Set(gid, bm)
	return bm, nil
}

func (f *Face) loadGlyph(gid font.GID) (*Bitmap, error) {
	data := f.face.GlyphData(gid)
	if data == nil {
		return nil, fmt.Errorf("raster: glyph %d has no data", gid)
	}
	outline, ok := data.(font.GlyphOutline)
	if !ok {
		return nil, fmt.Errorf("raster: glyph %d has unsupported format %T", gid, data)
	}
	if len(outline.Segments) == 0 {
		return &Bitmap{}, nil
	}

	scale := f.size / f.upem

	// Outline points are font units with Y up; bitmap rows run top-down.
	// Bounds are taken over all on-curve and control points, which can
	// only overestimate the ink box.
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, seg := range outline.Segments {
		for i := 0; i < segPointCount(seg.Op); i++ {
			x := float64(seg.Args[i].X) * scale
			y := -float64(seg.Args[i].Y) * scale
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
	}

	x0 := int(math.Floor(minX))
	y0 := int(math.Floor(minY))
	x1 := int(math.Ceil(maxX))
	y1 := int(math.Ceil(maxY))
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return &Bitmap{}, nil
	}

	rast := vector.NewRasterizer(w, h)
	fx0, fy0 := float32(x0), float32(y0)
	tx := func(p font.SegmentPoint) (float32, float32) {
		return p.X*float32(scale) - fx0, -p.Y*float32(scale) - fy0
	}

	open := false
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			if open {
				rast.ClosePath()
			}
			x, y := tx(seg.Args[0])
			rast.MoveTo(x, y)
			open = true
		case ot.SegmentOpLineTo:
			x, y := tx(seg.Args[0])
			rast.LineTo(x, y)
		case ot.SegmentOpQuadTo:
			cx, cy := tx(seg.Args[0])
			x, y := tx(seg.Args[1])
			rast.QuadTo(cx, cy, x, y)
		case ot.SegmentOpCubeTo:
			c1x, c1y := tx(seg.Args[0])
			c2x, c2y := tx(seg.Args[1])
			x, y := tx(seg.Args[2])
			rast.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	if open {
		rast.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &Bitmap{
		Pix:    mask.Pix,
		Width:  w,
		Height: h,
		Left:   x0,
		Top:    -y0,
	}, nil
}

// segPointCount returns how many of a segment's Args are meaningful.
func segPointCount(op ot.SegmentOp) int {
	switch op {
	case ot.SegmentOpQuadTo:
		return 2
	case ot.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
