package viz

import (
	"strings"

	"github.com/san-kum/liquidsim/internal/particle"
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

// Canvas is a grid of braille cells. Each cell holds 2x4 dots, so the
// drawable area is (Width*2) x (Height*4) dots.
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

// Dots returns the drawable size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set turns on the dot at (x, y). Out of range dots are ignored.
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

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Count returns the number of dots that are on.
func (c *Canvas) Count() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - brailleBlank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps a world rectangle onto a canvas, flipping y so that world
// up is screen up.
type Viewport struct {
	View   particle.AABB
	Canvas *Canvas
}

// Project returns the dot under world point p.
func (v Viewport) Project(p particle.Vec) (int, int) {
	w, h := v.Canvas.Dots()
	sx := (p.X - v.View.Lower.X) / (v.View.Upper.X - v.View.Lower.X)
	sy := (v.View.Upper.Y - p.Y) / (v.View.Upper.Y - v.View.Lower.Y)
	return int(sx * float64(w-1)), int(sy * float64(h-1))
}

// Plot sets one dot per position.
func (v Viewport) Plot(positions []particle.Vec) {
	for _, p := range positions {
		v.Canvas.Set(v.Project(p))
	}
}

// Frame outlines the view rectangle.
func (v Viewport) Frame() {
	w, h := v.Canvas.Dots()
	v.Canvas.DrawLine(0, 0, w-1, 0)
	v.Canvas.DrawLine(0, h-1, w-1, h-1)
	v.Canvas.DrawLine(0, 0, 0, h-1)
	v.Canvas.DrawLine(w-1, 0, w-1, h-1)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
