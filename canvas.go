package typeproof

import "image"

// Canvas is a fixed-size grid of 8-bit grayscale samples, row-major with
// row 0 at the top. 0 is black ink, 255 is the white background. A fresh
// canvas is all-white.
//
// A Canvas is created per RenderText call and owned exclusively by that
// call's result; renderers never cache canvases across calls.
type Canvas struct {
	width  int
	height int
	pix    []uint8
}

// NewCanvas creates a white canvas of the given dimensions.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = 0xff
	}
	return &Canvas{width: width, height: height, pix: pix}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Pix returns the raw sample buffer, height*width bytes, row-major.
func (c *Canvas) Pix() []uint8 { return c.pix }

// At returns the sample at (x, y). Out-of-bounds reads return 255.
func (c *Canvas) At(x, y int) uint8 {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return 0xff
	}
	return c.pix[y*c.width+x]
}

// Set writes the sample at (x, y). Out-of-bounds writes are ignored.
func (c *Canvas) Set(x, y int, v uint8) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.pix[y*c.width+x] = v
}

// InkCount returns the number of non-white samples.
func (c *Canvas) InkCount() int {
	n := 0
	for _, v := range c.pix {
		if v != 0xff {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the canvas.
func (c *Canvas) Clone() *Canvas {
	pix := make([]uint8, len(c.pix))
	copy(pix, c.pix)
	return &Canvas{width: c.width, height: c.height, pix: pix}
}

// Equal reports whether two canvases have identical dimensions and samples.
func (c *Canvas) Equal(other *Canvas) bool {
	if other == nil || c.width != other.width || c.height != other.height {
		return false
	}
	for i, v := range c.pix {
		if v != other.pix[i] {
			return false
		}
	}
	return true
}

// ToImage returns the canvas as an image.Gray sharing the sample buffer.
func (c *Canvas) ToImage() *image.Gray {
	return &image.Gray{
		Pix:    c.pix,
		Stride: c.width,
		Rect:   image.Rect(0, 0, c.width, c.height),
	}
}
