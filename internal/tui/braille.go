package tui

// brailleBuf is a dot canvas with 2x4 dots per terminal cell.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// dotBits maps a dot position within a cell to its braille bit.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setDot sets the dot at (dx, dy). Dots off the canvas are ignored.
func (b *brailleBuf) setDot(dx, dy int) {
	if dx < 0 || dy < 0 {
		return
	}
	cx, cy := dx/2, dy/4
	if cx >= b.w || cy >= b.h {
		return
	}
	b.m[cy][cx] |= dotBits[dx%2][dy%4]
}

// line draws a line between two dots using Bresenham. Endpoints far off the
// canvas are clipped first so huge zooms stay cheap.
func (b *brailleBuf) line(x0, y0, x1, y1 int) {
	if !b.clip(&x0, &y0, &x1, &y1) {
		return
	}
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setDot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// rect outlines the dot rectangle spanning (x0, y0) to (x1, y1).
func (b *brailleBuf) rect(x0, y0, x1, y1 int) {
	b.line(x0, y0, x1, y0)
	b.line(x1, y0, x1, y1)
	b.line(x1, y1, x0, y1)
	b.line(x0, y1, x0, y0)
}

// clip limits axis-aligned lines to one dot outside the canvas. Other lines
// are left alone; only rectangles are drawn.
func (b *brailleBuf) clip(x0, y0, x1, y1 *int) bool {
	maxX, maxY := b.w*2, b.h*4
	if *y0 == *y1 {
		if *y0 < 0 || *y0 >= maxY {
			return false
		}
		*x0, *x1 = clampInt(*x0, -1, maxX), clampInt(*x1, -1, maxX)
	}
	if *x0 == *x1 {
		if *x0 < 0 || *x0 >= maxX {
			return false
		}
		*y0, *y1 = clampInt(*y0, -1, maxY), clampInt(*y1, -1, maxY)
	}
	return true
}

func (b *brailleBuf) toRunes() [][]rune {
	out := make([][]rune, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			mask := b.m[y][x]
			if mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = row
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
