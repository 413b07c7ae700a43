// Package typeproof is a reference text-rendering pipeline used to validate
// and benchmark production text engines by independently reproducing their
// output through two interchangeable rendering strategies.
//
// A renderer converts a Unicode string plus a font and style configuration
// into a fixed-size grayscale pixel grid suitable for pixel-level comparison.
// Two engines are provided:
//
//   - "coretext": delegates the entire shape+draw step to the macOS CoreText
//     layout subsystem. Only available on darwin with cgo; serves as ground
//     truth on that platform.
//   - "harfbuzz": explicit two-stage pipeline — HarfBuzz-style shaping via
//     go-text/typesetting followed by per-glyph rasterization and manual
//     alpha compositing. Cross-platform; the primary comparison target.
//
// # Example usage
//
//	cfg := typeproof.DefaultConfig()
//	cfg.FontPath = "Roboto-Regular.ttf"
//	cfg.Coords = map[string]float64{"wght": 700}
//
//	r, err := typeproof.FirstAvailable(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	canvas, err := r.RenderText("Hello")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = typeproof.SaveImage(canvas, "out/hello.png")
//
// Renderers are pooled by mutating them in place between renders: the
// Update* hooks amortize font handle reconstruction across many calls.
// A renderer instance is not safe for concurrent use; callers requiring
// parallel rendering must use one instance per worker.
//
// The pipeline renders exactly one shaped run onto one fixed canvas. Line
// breaking, multi-line layout and bidi paragraph segmentation are out of
// scope.
package typeproof
