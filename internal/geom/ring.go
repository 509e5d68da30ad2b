package geom

// Ring is a polygon ring of (lon, lat) pairs. Persisted bay geometry is
// always a closed ring: first and last vertex identical.
type Ring [][2]float64

// IsClosed reports whether the first and last vertex coincide.
func (r Ring) IsClosed() bool {
	return len(r) >= 2 && r[0] == r[len(r)-1]
}

// Closed returns a copy of r with the first vertex appended if needed.
func (r Ring) Closed() Ring {
	out := r.Clone()
	if len(out) > 0 && !out.IsClosed() {
		out = append(out, out[0])
	}
	return out
}

// Open returns the distinct vertices of r, dropping the closing one.
func (r Ring) Open() Ring {
	if r.IsClosed() {
		return r[:len(r)-1]
	}
	return r
}

func (r Ring) Clone() Ring {
	if r == nil {
		return nil
	}
	out := make(Ring, len(r))
	copy(out, r)
	return out
}

// Centroid is the vertex average of the open ring.
func (r Ring) Centroid() [2]float64 {
	open := r.Open()
	if len(open) == 0 {
		return [2]float64{}
	}
	var c [2]float64
	for _, p := range open {
		c[0] += p[0]
		c[1] += p[1]
	}
	n := float64(len(open))
	return [2]float64{c[0] / n, c[1] / n}
}

func (r Ring) BBox() BBox {
	var d Data
	for _, p := range r {
		d.grow(p)
	}
	return d.BBox
}

// Contains reports whether p lies inside the ring (even-odd rule).
func (r Ring) Contains(p [2]float64) bool {
	open := r.Open()
	n := len(open)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := open[i][0], open[i][1]
		xj, yj := open[j][0], open[j][1]
		if (yi > p[1]) != (yj > p[1]) {
			x := (xj-xi)*(p[1]-yi)/(yj-yi) + xi
			if p[0] < x {
				inside = !inside
			}
		}
	}
	return inside
}
