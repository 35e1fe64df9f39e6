package geometry

// Rect describes a rectangular region in virtual desktop coordinates.
// The origin is the top-left corner of the desktop spanning all displays.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a position in virtual desktop coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Display describes one monitor and its usable work area.
type Display struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Bounds Rect   `json:"bounds"`
	Usable Rect   `json:"usable"`
}

// Gap is the fixed offset between the main window and the satellite.
type Gap struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Valid reports whether the rect has a positive area.
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Contains reports whether (x, y) lies inside r. The right and bottom edges
// are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Center returns the center point, truncated toward the origin.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Intersection returns the overlapping region of r and o, or the zero Rect
// when they do not overlap.
func (r Rect) Intersection(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Area returns width*height, or 0 for an invalid rect.
func (r Rect) Area() int {
	if !r.Valid() {
		return 0
	}
	return r.Width * r.Height
}

// WithPosition returns a copy of r moved to (x, y). Size is unchanged.
func (r Rect) WithPosition(x, y int) Rect {
	r.X = x
	r.Y = y
	return r
}

// IsOnLeftSide reports whether a window at x with the given width sits in the
// left half of the display. The comparison is made on doubled coordinates so
// odd widths are not truncated. A window centered exactly on the display's
// midline counts as left.
func IsOnLeftSide(d Display, x, appWidth int) bool {
	return 2*x+appWidth <= 2*d.Bounds.X+d.Bounds.Width
}

// SatelliteTarget returns where the satellite window belongs next to main.
// Only the position changes; the satellite keeps its own width and height.
func SatelliteTarget(main, satellite Rect, isOnLeft bool, gap Gap) Rect {
	x := main.X - satellite.Width - gap.X
	if isOnLeft {
		x = main.X + main.Width + gap.X
	}
	return satellite.WithPosition(x, main.Y+gap.Y)
}

// SquareSide returns the side length of the square that fits the given size,
// clamped to [minSide, maxSide].
func SquareSide(width, height, minSide, maxSide int) int {
	return ClampSide(min(width, height), minSide, maxSide)
}

// ClampSide clamps a side length to [minSide, maxSide]. A non-positive bound
// is treated as unset.
func ClampSide(side, minSide, maxSide int) int {
	if minSide > 0 && side < minSide {
		side = minSide
	}
	if maxSide > 0 && side > maxSide {
		side = maxSide
	}
	return side
}

// CenterOver returns a width x height rect centered on parent.
func CenterOver(parent Rect, width, height int) Rect {
	return Rect{
		X:      parent.X + parent.Width/2 - width/2,
		Y:      parent.Y + parent.Height/2 - height/2,
		Width:  width,
		Height: height,
	}
}

// CenterIn is CenterOver for a work area; it exists for readability at call
// sites that center on a display.
func CenterIn(area Rect, width, height int) Rect {
	return CenterOver(area, width, height)
}
