// Command typeproof renders a line of text to a grayscale PNG with a
// chosen engine, for cross-engine pixel comparison.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/typeproof/typeproof"
)

func main() {
	var (
		fontPath = flag.String("font", "", "path to the font file (required)")
		text     = flag.String("text", "Hamburgefonstiv", "text to render")
		size     = flag.Int("size", typeproof.DefaultFontSize, "font size in pixels")
		width    = flag.Int("width", typeproof.DefaultWidth, "canvas width")
		height   = flag.Int("height", typeproof.DefaultHeight, "canvas height")
		tracking = flag.Float64("tracking", 0, "letter tracking in 1/1000 em")
		coords   = flag.String("var", "", "variation coordinates, e.g. wght=820,wdth=75")
		feats    = flag.String("feat", "", "OpenType features, e.g. smcp=1,liga=0")
		engine   = flag.String("engine", "auto", "engine: auto, coretext or harfbuzz")
		output   = flag.String("o", "typeproof.png", "output image file")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *fontPath == "" {
		pterm.Error.Println("missing required -font flag")
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		typeproof.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := typeproof.DefaultConfig()
	cfg.FontPath = *fontPath
	cfg.FontSize = *size
	cfg.Width = *width
	cfg.Height = *height
	cfg.Tracking = *tracking

	var err error
	if cfg.Coords, err = parseCoords(*coords); err != nil {
		fail("invalid -var: %v", err)
	}
	if cfg.Features, err = parseFeatures(*feats); err != nil {
		fail("invalid -feat: %v", err)
	}

	var r typeproof.Renderer
	if *engine == "auto" {
		r, err = typeproof.FirstAvailable(cfg)
	} else {
		r, err = typeproof.New(*engine, cfg)
	}
	if err != nil {
		fail("cannot open engine: %v", err)
	}
	defer r.Close()

	canvas, err := r.RenderText(*text)
	if err != nil {
		fail("render failed: %v", err)
	}
	if err := typeproof.SaveImage(canvas, *output); err != nil {
		fail("cannot save image: %v", err)
	}

	printSummary(r.Summary(), canvas, *output)
}

func fail(format string, args ...any) {
	pterm.Error.Printf(format+"\n", args...)
	os.Exit(1)
}

// parseCoords parses "wght=820,wdth=75" into a coordinate map.
func parseCoords(s string) (map[string]float64, error) {
	if s == "" {
		return nil, nil
	}
	out := map[string]float64{}
	for _, pair := range strings.Split(s, ",") {
		tag, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("expected tag=value, got %q", pair)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value for %q: %v", tag, err)
		}
		out[tag] = v
	}
	return out, nil
}

// parseFeatures parses "smcp=1,liga=0" into a feature map.
func parseFeatures(s string) (map[string]int, error) {
	if s == "" {
		return nil, nil
	}
	out := map[string]int{}
	for _, pair := range strings.Split(s, ",") {
		tag, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("expected tag=value, got %q", pair)
		}
		v, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("bad value for %q: %v", tag, err)
		}
		out[tag] = v
	}
	return out, nil
}

func printSummary(s typeproof.Summary, canvas *typeproof.Canvas, output string) {
	data := [][]string{
		{"Engine", s.Engine},
		{"Font", s.Font},
		{"Size", strconv.Itoa(s.Size)},
		{"Canvas", fmt.Sprintf("%dx%d", canvas.Width(), canvas.Height())},
		{"Ink pixels", strconv.Itoa(canvas.InkCount())},
		{"Output", output},
	}
	if len(s.Coords) > 0 {
		data = append(data, []string{"Variations", formatCoords(s.Coords)})
	}
	if len(s.Features) > 0 {
		data = append(data, []string{"Features", formatFeatures(s.Features)})
	}
	pterm.DefaultTable.WithData(data).Render()
}

func formatCoords(coords map[string]float64) string {
	parts := make([]string, 0, len(coords))
	for tag, v := range coords {
		parts = append(parts, fmt.Sprintf("%s=%g", tag, v))
	}
	return strings.Join(parts, " ")
}

func formatFeatures(feats map[string]int) string {
	parts := make([]string, 0, len(feats))
	for tag, v := range feats {
		parts = append(parts, fmt.Sprintf("%s=%d", tag, v))
	}
	return strings.Join(parts, " ")
}
