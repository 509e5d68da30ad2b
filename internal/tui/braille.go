package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cell is one terminal cell of the canvas. A glyph replaces the braille
// dots, e.g. for labels and handles.
type cell struct {
	mask  uint8
	role  string
	glyph rune
}

// farMicro bounds the coordinates a line may have before it is skipped.
const farMicro = 1 << 15

type brailleBuf struct {
	w, h int // in cells
	c    [][]cell
	pen  string // role applied by subsequent drawing
}

func newBrailleBuf(w, h int) *brailleBuf {
	c := make([][]cell, h)
	for i := range c {
		c[i] = make([]cell, w)
	}
	return &brailleBuf{w: w, h: h, c: c}
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	c := &b.c[cy][cx]
	c.mask |= bit
	c.role = b.pen
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	// skip segments outside the canvas; zooming in can produce huge values
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) || (x0 >= b.w*2 && x1 >= b.w*2) || (y0 >= b.h*4 && y1 >= b.h*4) {
		return
	}
	if abs(x0) > farMicro || abs(x1) > farMicro || abs(y0) > farMicro || abs(y1) > farMicro {
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
		b.setPixel(x0, y0)
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

// drawRingMicro outlines a closed ring of micro points.
func (b *brailleBuf) drawRingMicro(r [][2]int) {
	for i := 0; i < len(r); i++ {
		a := r[i]
		c := r[(i+1)%len(r)]
		b.drawLineMicro(a[0], a[1], c[0], c[1])
	}
}

// fillRingMicro fills a ring with the even-odd rule per scanline. Only every
// other micro-pixel is set so outlines stay readable on top.
func (b *brailleBuf) fillRingMicro(r [][2]int) {
	if len(r) < 3 {
		return
	}
	hMic := b.h * 4
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for i := 0; i < len(r); i++ {
			a := r[i]
			c := r[(i+1)%len(r)]
			if a[1] == c[1] { // horizontal edge: skip
				continue
			}
			y0, y1 := a[1], c[1]
			x0, x1 := a[0], c[0]
			if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
				t := float64(yMic-y0) / float64(y1-y0)
				xs = append(xs, int(float64(x0)+t*float64(x1-x0)))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			xstart, xend := xs[i], min(xs[i+1], b.w*2-1)
			for xMic := max(0, xstart); xMic <= xend; xMic++ {
				if (xMic+yMic)%2 == 0 {
					b.setPixel(xMic, yMic)
				}
			}
		}
	}
}

// text writes s starting at cell (cx, cy), centred horizontally.
func (b *brailleBuf) text(cx, cy int, s string) {
	if cy < 0 || cy >= b.h {
		return
	}
	rs := []rune(s)
	x := cx - len(rs)/2
	for _, r := range rs {
		if x >= 0 && x < b.w {
			b.c[cy][x] = cell{glyph: r, role: b.pen}
		}
		x++
	}
}

func (b *brailleBuf) glyph(cx, cy int, r rune) {
	if cx < 0 || cy < 0 || cx >= b.w || cy >= b.h {
		return
	}
	b.c[cy][cx] = cell{glyph: r, role: b.pen}
}

// toLines renders the canvas, styling runs of cells that share a role.
func (b *brailleBuf) toLines(style func(role string) lipgloss.Style) []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		var sb strings.Builder
		var run []rune
		runRole := ""
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runRole == "" {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(style(runRole).Render(string(run)))
			}
			run = run[:0]
		}
		for x := 0; x < b.w; x++ {
			c := b.c[y][x]
			r, role := ' ', ""
			switch {
			case c.glyph != 0:
				r, role = c.glyph, c.role
			case c.mask != 0:
				r, role = rune(0x2800+int(c.mask)), c.role
			}
			if role != runRole {
				flush()
				runRole = role
			}
			run = append(run, r)
		}
		flush()
		out[y] = sb.String()
	}
	return out
}
