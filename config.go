package typeproof

import "os"

// Default rendering parameters shared by both engines.
const (
	// DefaultWidth and DefaultHeight are the default canvas dimensions
	// in pixels.
	DefaultWidth  = 3000
	DefaultHeight = 1200

	// DefaultFontSize is the default font size in points.
	DefaultFontSize = 100

	// DefaultBaselineRatio is the fraction of the canvas height reserved
	// above the text baseline: baseline Y = height * ratio, measured from
	// the top.
	DefaultBaselineRatio = 0.75

	// DefaultMargin is the left margin of the run origin in pixels.
	DefaultMargin = 10
)

// Config holds the font identity and style parameters of a renderer.
// A Config is owned by the renderer instance it was constructed with and is
// mutated in place by the Update* hooks; it is never shared between
// renderer instances.
type Config struct {
	// FontPath is the path of a TTF/OTF/TTC font file. The file is read
	// once at construction and cached in memory, so variation updates
	// never touch the disk again.
	FontPath string

	// FontData optionally supplies the font bytes directly. When set,
	// FontPath is used only for diagnostics.
	FontData []byte

	// FontSize is the font size in points.
	FontSize int

	// Width and Height are the canvas dimensions in pixels.
	Width  int
	Height int

	// Coords maps 4-character variation-axis tags (e.g. "wght") to design
	// coordinates.
	Coords map[string]float64

	// Features maps OpenType feature tags (e.g. "smcp") to integer
	// selector values.
	Features map[string]int

	// Tracking is uniform extra inter-glyph spacing in 1/1000 em units.
	// The effective added spacing per glyph is tracking/1000 * FontSize
	// pixels.
	Tracking float64

	// BaselineRatio overrides DefaultBaselineRatio when non-zero.
	BaselineRatio float64

	// Margin overrides DefaultMargin when non-zero.
	Margin float64
}

// DefaultConfig returns a Config with the default canvas dimensions and
// font size. The caller still has to set FontPath or FontData.
func DefaultConfig() Config {
	return Config{
		FontSize:      DefaultFontSize,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		BaselineRatio: DefaultBaselineRatio,
		Margin:        DefaultMargin,
	}
}

// withDefaults fills zero-valued fields so backends never have to guard
// against a partially filled Config.
func (c Config) withDefaults() Config {
	if c.FontSize <= 0 {
		c.FontSize = DefaultFontSize
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.BaselineRatio <= 0 || c.BaselineRatio >= 1 {
		c.BaselineRatio = DefaultBaselineRatio
	}
	if c.Margin <= 0 {
		c.Margin = DefaultMargin
	}
	if c.Coords == nil {
		c.Coords = map[string]float64{}
	}
	if c.Features == nil {
		c.Features = map[string]int{}
	}
	return c
}

// loadFontData returns the configured font bytes, reading FontPath once
// when no in-memory buffer was supplied.
func (c *Config) loadFontData() ([]byte, error) {
	if len(c.FontData) > 0 {
		return c.FontData, nil
	}
	data, err := os.ReadFile(c.FontPath)
	if err != nil {
		return nil, err
	}
	return data, nil
}
