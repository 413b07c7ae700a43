package typeproof

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Engine names, in factory preference order.
const (
	// EngineCoreText delegates shaping and drawing to macOS CoreText.
	EngineCoreText = "coretext"

	// EngineHarfBuzz shapes with go-text/typesetting and composites
	// rasterized glyphs manually.
	EngineHarfBuzz = "harfbuzz"
)

// Renderer is the lifecycle and mutation surface shared by both engines,
// so callers can swap engines without changing call sites.
//
// RenderText is a pure function of the current renderer state and its
// input: identical state and text produce byte-identical canvases. The
// Update* hooks mutate the renderer in place and fail soft — on an internal
// rebuild failure the renderer keeps its previous working handles and logs
// a warning instead of returning an error.
//
// A Renderer is not safe for concurrent use: the underlying font handles
// carry per-glyph load state, so at most one RenderText call (and no
// Update* call) may be in flight per instance.
type Renderer interface {
	// RenderText renders a single shaped run of text onto a fresh canvas.
	RenderText(text string) (*Canvas, error)

	// UpdateInstanceCoords replaces the variation coordinates and rebuilds
	// the dependent font handles. Fail-soft.
	UpdateInstanceCoords(coords map[string]float64)

	// UpdateTracking replaces the tracking value (1/1000 em units).
	// Never fails; non-finite input falls back to 0.
	UpdateTracking(tracking float64)

	// UpdateDimensions updates the canvas width/height and/or font size.
	// Arguments <= 0 leave the corresponding value unchanged. A font size
	// change rebuilds the sized font handles; fail-soft.
	UpdateDimensions(width, height, fontSize int)

	// Summary returns a diagnostic record for logging and benchmarking.
	Summary() Summary

	// Engine returns the engine name ("coretext" or "harfbuzz").
	Engine() string

	// Close releases native font handles. The renderer must not be used
	// afterwards.
	Close() error
}

// Summary is a diagnostic record of a renderer's current configuration,
// suitable for benchmark logs.
type Summary struct {
	Engine   string             `json:"engine"`
	Font     string             `json:"font"`
	Coords   map[string]float64 `json:"coords"`
	Features map[string]int     `json:"features"`
	Size     int                `json:"size"`
}

// engine couples a capability probe with a constructor. Probes never fail:
// they only report whether construction can succeed on this
// platform/toolchain.
type engine struct {
	name      string
	available func() bool
	open      func(Config) (Renderer, error)
}

// engines lists all known engines in preference order. The coretext entry
// resolves to a platform-specific implementation via build tags.
var engines = []engine{
	{EngineCoreText, coreTextAvailable, newCoreText},
	{EngineHarfBuzz, harfBuzzAvailable, newHarfBuzz},
}

// Engines returns the names of all known engines in preference order,
// including ones unavailable on this platform.
func Engines() []string {
	names := make([]string, len(engines))
	for i, e := range engines {
		names[i] = e.name
	}
	return names
}

// Available reports whether the named engine can be constructed on the
// current platform. Unknown names report false.
func Available(name string) bool {
	for _, e := range engines {
		if e.name == name {
			return e.available()
		}
	}
	return false
}

// New constructs the named engine with the given configuration.
func New(name string, cfg Config) (Renderer, error) {
	for _, e := range engines {
		if e.name == name {
			return e.open(cfg)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// FirstAvailable constructs the first engine, in preference order, whose
// probe passes and whose constructor succeeds. A failed construction is
// logged and the next engine is tried; it never aborts the scan.
func FirstAvailable(cfg Config) (Renderer, error) {
	for _, e := range engines {
		if !e.available() {
			continue
		}
		r, err := e.open(cfg)
		if err != nil {
			Logger().Warn("engine construction failed, trying next",
				"engine", e.name, "error", err)
			continue
		}
		return r, nil
	}
	return nil, ErrNoEngine
}

// SaveImage writes a rendered canvas to disk, delegating encoding to the
// imaging package (format selected by file extension). Parent directories
// are created as needed. It fails when the extension names no known
// encoder or the path cannot be written.
func SaveImage(c *Canvas, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("typeproof: create output directory %s: %w", dir, err)
		}
	}
	return imaging.Save(c.ToImage(), path)
}

// fontName returns the display name of the configured font source.
func fontName(cfg *Config) string {
	if cfg.FontPath != "" {
		return filepath.Base(cfg.FontPath)
	}
	return "(memory)"
}
