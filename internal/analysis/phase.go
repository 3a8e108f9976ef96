package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/inertia/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds a trajectory in (value, velocity) space.
type PhasePortrait struct {
	Points []Point
}

func NewPhasePortrait(tl *sim.Timeline) *PhasePortrait {
	portrait := &PhasePortrait{Points: make([]Point, 0, tl.Len())}
	for i := range tl.Values {
		portrait.Points = append(portrait.Points, Point{X: tl.Values[i], Y: tl.Velocities[i]})
	}
	return portrait
}

// ToASCII plots the portrait with value across and velocity up.
func (portrait *PhasePortrait) ToASCII(width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
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
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	// Zero velocity axis first, so points draw over it.
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			canvas[r][c] = '─'
		}
	}

	for _, p := range portrait.Points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	// Start and rest markers
	first, last := portrait.Points[0], portrait.Points[len(portrait.Points)-1]
	canvas[row(first.Y)][col(first.X)] = 'S'
	canvas[row(last.Y)][col(last.X)] = 'R'

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the linearly interpolated times (ms) at which the
// value passes through level in either direction. Samples sitting
// exactly on level count once, on arrival.
func Crossings(tl *sim.Timeline, level float64) []float64 {
	var times []float64
	for i := 1; i < tl.Len(); i++ {
		prev, curr := tl.Values[i-1]-level, tl.Values[i]-level
		if prev == 0 || (prev < 0) == (curr < 0) && curr != 0 {
			continue
		}
		frac := prev / (prev - curr)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		times = append(times, tl.Times[i-1]+frac*(tl.Times[i]-tl.Times[i-1]))
	}
	return times
}
