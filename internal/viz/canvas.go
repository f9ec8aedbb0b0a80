package viz

import "strings"

const brailleBase = 0x2800

// dotBits maps a sub-pixel (column, row) inside a cell to its braille dot:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Canvas is a braille pixel grid; each terminal cell holds 2x4 sub-pixels.
type Canvas struct {
	Width, Height int
	cells         []uint8
}

// NewCanvas returns an empty canvas of w by h terminal cells.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, cells: make([]uint8, w*h)}
}

// locate returns the cell index and dot mask of sub-pixel (x, y).
func (c *Canvas) locate(x, y int) (int, uint8, bool) {
	if x < 0 || y < 0 || x >= 2*c.Width || y >= 4*c.Height {
		return 0, 0, false
	}
	return (y/4)*c.Width + x/2, dotBits[x%2][y%4], true
}

// Set lights the sub-pixel at (x, y); points off the canvas are ignored.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if i, bit, ok := c.locate(x, y); ok {
		c.cells[i] |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if i, bit, ok := c.locate(x, y); ok {
		c.cells[i] &^= bit
	}
}

func (c *Canvas) Lit(x, y int) bool {
	i, bit, ok := c.locate(x, y)
	return ok && c.cells[i]&bit != 0
}

func (c *Canvas) Clear() { clear(c.cells) }

// DrawLine rasterises the segment with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, sx := absInt(x1-x0), sign(x1-x0)
	dy, sy := -absInt(y1-y0), sign(y1-y0)
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a circle of radius r around (cx, cy) with the midpoint algorithm.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	x, y := r, 0
	d := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Width * c.Height * 4)
	for row := 0; row < c.Height; row++ {
		for _, bits := range c.cells[row*c.Width : (row+1)*c.Width] {
			b.WriteRune(rune(brailleBase + int(bits)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
