package typeproof

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by both engines.
var (
	// ErrEngineUnavailable is returned when an engine cannot be constructed
	// on the current platform or toolchain.
	ErrEngineUnavailable = errors.New("typeproof: engine unavailable")

	// ErrUnknownEngine is returned by New for an unrecognized engine name.
	ErrUnknownEngine = errors.New("typeproof: unknown engine")

	// ErrNoEngine is returned by FirstAvailable when no engine could be
	// constructed.
	ErrNoEngine = errors.New("typeproof: no rendering engine available")

	// ErrFontLoad is returned when the font bytes cannot be read or parsed.
	ErrFontLoad = errors.New("typeproof: font could not be loaded")
)

// InitError reports a failure to construct a renderer. It is fatal to that
// renderer instance; callers iterating engines are expected to catch it and
// try an alternate engine.
type InitError struct {
	Engine string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("typeproof: %s renderer init: %v", e.Engine, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// RenderError reports a mid-render failure of the native drawing surface or
// image readback. Fatal to that call only; the renderer stays usable.
type RenderError struct {
	Engine string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("typeproof: %s render: %v", e.Engine, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// GlyphLoadError reports that the rasterizer could not decode a specific
// glyph. It is fatal to the render call: silent glyph drops would corrupt
// benchmark comparisons, so a missing bitmap is surfaced, never masked.
type GlyphLoadError struct {
	GID uint32
	Err error
}

func (e *GlyphLoadError) Error() string {
	return fmt.Sprintf("typeproof: failed to load glyph %d: %v", e.GID, e.Err)
}

func (e *GlyphLoadError) Unwrap() error { return e.Err }
