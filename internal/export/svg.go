package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/inertia/internal/sim"
)

// SVGOptions controls TimelineToSVG. Guides are horizontal reference
// values such as the bounds and the resting target.
type SVGOptions struct {
	Width       int
	Height      int
	StrokeColor string
	GuideColor  string
	Guides      []float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:       640,
		Height:      240,
		StrokeColor: "#00ccff",
		GuideColor:  "#444466",
	}
}

// TimelineToSVG renders value over time as a single path.
func TimelineToSVG(tl *sim.Timeline, opts SVGOptions) string {
	if tl == nil || tl.Len() < 2 {
		return ""
	}

	minX, maxX := tl.Times[0], tl.Times[len(tl.Times)-1]
	minY, maxY := tl.Values[0], tl.Values[0]
	for _, v := range tl.Values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	for _, g := range opts.Guides {
		minY = math.Min(minY, g)
		maxY = math.Max(maxY, g)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	w, h := float64(opts.Width), float64(opts.Height)
	px := func(t float64) float64 { return (t - minX) / rangeX * w }
	py := func(v float64) float64 { return h - (v-minY)/rangeY*h }

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	for _, g := range opts.Guides {
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="4 4"/>
`, py(g), opts.Width, py(g), opts.GuideColor)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, opts.StrokeColor)
	for i := range tl.Values {
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", px(tl.Times[i]), py(tl.Values[i]))
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px(tl.Times[i]), py(tl.Values[i]))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func WriteSVG(w io.Writer, tl *sim.Timeline, opts SVGOptions) error {
	svg := TimelineToSVG(tl, opts)
	if svg == "" {
		return fmt.Errorf("export: timeline needs at least two samples")
	}
	_, err := io.WriteString(w, svg)
	return err
}
