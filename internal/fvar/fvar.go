// Package fvar parses the variation-axis table of a variable font and
// provides the 4-character tag packing shared by both rendering engines.
package fvar

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-text/typesetting/font/opentype/tables"
)

// Axis describes one variation axis of a font, in the order the font
// declares it. The order is significant: rasterizer design-coordinate
// arrays must be submitted aligned to it.
type Axis struct {
	// Tag is the 4-character axis tag, e.g. "wght".
	Tag string

	// Min, Default and Max are design coordinates.
	Min     float64
	Default float64
	Max     float64
}

// Parse decodes the raw bytes of an fvar table into the font's ordered
// axis list. A nil or empty input yields no axes.
func Parse(data []byte) ([]Axis, error) {
	if len(data) == 0 {
		return nil, nil
	}
	fv, _, err := tables.ParseFvar(data)
	if err != nil {
		return nil, fmt.Errorf("fvar: %w", err)
	}

	axes := make([]Axis, 0, len(fv.Axis))
	for _, rec := range fv.Axis {
		axes = append(axes, Axis{
			Tag:     UnpackTag(uint32(rec.Tag)),
			Min:     float64(rec.Minimum),
			Default: float64(rec.Default),
			Max:     float64(rec.Maximum),
		})
	}
	return axes, nil
}

// FloatToFixed converts a design coordinate to 16.16 fixed point, with
// the integer truncation the reference pipeline applies before shifting.
func FloatToFixed(v float64) int32 {
	return int32(v) << 16
}

// PackTag packs a 4-character ASCII tag into a 32-bit big-endian integer.
// Shorter tags are padded with spaces, longer ones truncated. Non-ASCII
// or empty tags are rejected: native APIs key axes by these integers, so
// an unpackable tag cannot be expressed at all.
func PackTag(tag string) (uint32, error) {
	if tag == "" {
		return 0, errors.New("fvar: empty axis tag")
	}
	var b [4]byte
	b[0], b[1], b[2], b[3] = ' ', ' ', ' ', ' '
	for i := 0; i < len(tag) && i < 4; i++ {
		c := tag[i]
		if c > 0x7f {
			return 0, fmt.Errorf("fvar: non-ASCII axis tag %q", tag)
		}
		b[i] = c
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// UnpackTag is the inverse of PackTag, used for diagnostics.
func UnpackTag(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return string(b[:])
}
