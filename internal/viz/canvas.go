package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights a dot at (x, y) in sub-pixel coordinates; the canvas is
// Width*2 by Height*4 dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

func (c *Canvas) HLine(y, x0, x1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		c.Set(x, y)
	}
}

func (c *Canvas) VLine(x, y0, y1 int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Track maps values in [lo, hi] onto the horizontal dot axis.
type Track struct {
	lo, hi float64
}

// NewTrack spans every value and guide with a 5% margin either side.
func NewTrack(values, guides []float64) Track {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range [][]float64{values, guides} {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return Track{lo: -1, hi: 1}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return Track{lo: lo - pad, hi: hi + pad}
}

// X returns the dot column of v on a canvas with the given dot width.
func (t Track) X(v float64, dots int) int {
	x := int(math.Round((v - t.lo) / (t.hi - t.lo) * float64(dots-1)))
	return max(0, min(dots-1, x))
}

// DrawTrack draws a rail, a tick per guide and a block at value.
func (c *Canvas) DrawTrack(t Track, value float64, guides []float64) {
	dots, mid := c.Width*2, c.Height*2
	c.HLine(mid, 0, dots-1)
	for _, g := range guides {
		c.VLine(t.X(g, dots), 0, c.Height*4-1)
	}
	x := t.X(value, dots)
	for dx := -1; dx <= 1; dx++ {
		c.VLine(x+dx, mid-3, mid+3)
	}
}
