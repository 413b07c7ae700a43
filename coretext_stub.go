//go:build !darwin || !cgo

package typeproof

import "fmt"

func coreTextAvailable() bool { return false }

func newCoreText(cfg Config) (Renderer, error) {
	return nil, &InitError{
		Engine: EngineCoreText,
		Err:    fmt.Errorf("%w: requires macOS with cgo enabled", ErrEngineUnavailable),
	}
}
