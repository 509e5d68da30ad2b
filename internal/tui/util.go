package tui

import (
	"fmt"
	"math"
	"strings"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func padRight(s string, n int) string {
	if n <= 0 {
		return s
	}
	return s + strings.Repeat(" ", n)
}

// degrees formats a rectangle angle in radians as degrees in [0, 360).
func degrees(rad float64) string {
	d := math.Mod(rad*180/math.Pi, 360)
	if d < 0 {
		d += 360
	}
	return fmt.Sprintf("%.1f°", d)
}

func zoneLabel(z *string, names map[string]string) string {
	if z == nil {
		return "-"
	}
	if n, ok := names[*z]; ok && n != "" {
		return n
	}
	return *z
}
