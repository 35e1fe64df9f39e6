package geometry

// DisplayMatching returns the display that overlaps r the most. When r does
// not overlap any display, the display nearest to r's center is returned.
// The boolean is false only when displays is empty.
func DisplayMatching(displays []Display, r Rect) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}

	best := -1
	bestArea := 0
	for i := range displays {
		area := displays[i].Bounds.Intersection(r).Area()
		if area > bestArea {
			best = i
			bestArea = area
		}
	}
	if best >= 0 {
		return displays[best], true
	}
	return NearestDisplay(displays, r.Center())
}

// NearestDisplay returns the display containing p, or the display whose
// bounds are closest to p. The boolean is false only when displays is empty.
func NearestDisplay(displays []Display, p Point) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}

	best := 0
	bestDist := -1
	for i := range displays {
		b := displays[i].Bounds
		if b.Contains(p.X, p.Y) {
			return displays[i], true
		}
		d := distanceSquared(b, p)
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return displays[best], true
}

func distanceSquared(r Rect, p Point) int {
	dx := 0
	switch {
	case p.X < r.X:
		dx = r.X - p.X
	case p.X >= r.X+r.Width:
		dx = p.X - (r.X + r.Width - 1)
	}
	dy := 0
	switch {
	case p.Y < r.Y:
		dy = r.Y - p.Y
	case p.Y >= r.Y+r.Height:
		dy = p.Y - (r.Y + r.Height - 1)
	}
	return dx*dx + dy*dy
}
