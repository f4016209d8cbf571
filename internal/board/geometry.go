package board

import "math"

// Defaults for the dashboard board: 20px snap grid, positions clamped to
// ±400 around the chart center, moves under 1px discarded as no-ops.
const (
	DefaultGridSize    = 20.0
	DefaultMaxDistance = 400.0
	DefaultThreshold   = 1.0

	MinBoxWidth  = 120.0
	MaxBoxWidth  = 500.0
	MinBoxHeight = 70.0
	MaxBoxHeight = 400.0

	// Fallback box size for tasks that have never been resized.
	DefaultBoxWidth  = 180.0
	DefaultBoxHeight = 100.0
)

// Point is a 2D board coordinate relative to the chart center.
type Point struct {
	X, Y float64
}

// Size is a task box size in pixels.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned region of the board.
type Rect struct {
	X, Y, Width, Height float64
}

// Inflate grows the rect by buffer on every side.
func (r Rect) Inflate(buffer float64) Rect {
	return Rect{
		X:      r.X - buffer,
		Y:      r.Y - buffer,
		Width:  r.Width + 2*buffer,
		Height: r.Height + 2*buffer,
	}
}

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// SnapToGrid rounds v to the nearest multiple of grid. grid <= 0 disables
// snapping.
func SnapToGrid(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// DragSpec parameterizes drop planning. Zero values for Grid/MaxDistance/
// Threshold mean the board defaults; Forbidden lists regions (header bars,
// toolbars) where drops are rejected outright.
type DragSpec struct {
	Grid        float64
	MaxDistance float64
	Threshold   float64
	Forbidden   []Rect
}

func (s DragSpec) normalized() DragSpec {
	if s.Grid == 0 {
		s.Grid = DefaultGridSize
	}
	if s.MaxDistance == 0 {
		s.MaxDistance = DefaultMaxDistance
	}
	if s.Threshold == 0 {
		s.Threshold = DefaultThreshold
	}
	return s
}

// PlanDrag computes the snapped, clamped target position for a drag that
// started at origin and moved by delta. The boolean is false when the
// operation must not change any state: the move is below the threshold, or
// the drop point lands in a forbidden region.
func PlanDrag(origin, delta Point, spec DragSpec) (Point, bool) {
	spec = spec.normalized()

	target := Point{
		X: Clamp(SnapToGrid(origin.X+delta.X, spec.Grid), -spec.MaxDistance, spec.MaxDistance),
		Y: Clamp(SnapToGrid(origin.Y+delta.Y, spec.Grid), -spec.MaxDistance, spec.MaxDistance),
	}

	for _, zone := range spec.Forbidden {
		if zone.Contains(target) {
			return origin, false
		}
	}

	if math.Abs(target.X-origin.X) < spec.Threshold && math.Abs(target.Y-origin.Y) < spec.Threshold {
		return origin, false
	}
	return target, true
}

// PlanResize applies a pointer delta to a box size, clamped to the board's
// min/max dimensions. The boolean is false when nothing changed.
func PlanResize(current Size, delta Point) (Size, bool) {
	next := Size{
		Width:  Clamp(current.Width+delta.X, MinBoxWidth, MaxBoxWidth),
		Height: Clamp(current.Height+delta.Y, MinBoxHeight, MaxBoxHeight),
	}
	if next == current {
		return current, false
	}
	return next, true
}

// SlotAngle returns the angle (radians, starting at twelve o'clock, going
// clockwise) for slot i of n boxes arranged around the progress chart.
func SlotAngle(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return 2*math.Pi*float64(i)/float64(n) - math.Pi/2
}

// SlotPosition places slot i of n on a circle of the given radius around
// center, snapped to the board grid.
func SlotPosition(center Point, radius float64, i, n int) Point {
	angle := SlotAngle(i, n)
	return Point{
		X: SnapToGrid(center.X+radius*math.Cos(angle), DefaultGridSize),
		Y: SnapToGrid(center.Y+radius*math.Sin(angle), DefaultGridSize),
	}
}
