package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapToGrid(t *testing.T) {
	require.Equal(t, 20.0, SnapToGrid(11, 20))
	require.Equal(t, 0.0, SnapToGrid(9, 20))
	require.Equal(t, -40.0, SnapToGrid(-33, 20))
	require.Equal(t, 13.0, SnapToGrid(13, 0)) // disabled grid
}

func TestPlanDrag_SnapAndClamp(t *testing.T) {
	origin := Point{X: 0, Y: 0}

	target, ok := PlanDrag(origin, Point{X: 47, Y: -33}, DragSpec{})
	require.True(t, ok)
	require.Equal(t, Point{X: 40, Y: -40}, target)

	// Far beyond the board clamps to the max distance.
	target, ok = PlanDrag(origin, Point{X: 10000, Y: 10000}, DragSpec{})
	require.True(t, ok)
	require.Equal(t, Point{X: DefaultMaxDistance, Y: DefaultMaxDistance}, target)
}

func TestPlanDrag_BelowThresholdIsNoOp(t *testing.T) {
	origin := Point{X: 20, Y: 20}
	target, ok := PlanDrag(origin, Point{X: 0.4, Y: 0.4}, DragSpec{})
	require.False(t, ok)
	require.Equal(t, origin, target)
}

func TestPlanDrag_ForbiddenZoneRejectsEntirely(t *testing.T) {
	header := Rect{X: -400, Y: -400, Width: 800, Height: 60}.Inflate(50)
	origin := Point{X: 0, Y: 200}

	target, ok := PlanDrag(origin, Point{X: 0, Y: -500}, DragSpec{Forbidden: []Rect{header}})
	require.False(t, ok)
	require.Equal(t, origin, target) // no state change at all

	// The same drag away from the zone goes through.
	_, ok = PlanDrag(origin, Point{X: 0, Y: 100}, DragSpec{Forbidden: []Rect{header}})
	require.True(t, ok)
}

func TestPlanResize_Clamps(t *testing.T) {
	size, ok := PlanResize(Size{Width: 200, Height: 100}, Point{X: 1000, Y: -1000})
	require.True(t, ok)
	require.Equal(t, Size{Width: MaxBoxWidth, Height: MinBoxHeight}, size)

	// Already at the max: growing further changes nothing.
	size, ok = PlanResize(Size{Width: MaxBoxWidth, Height: MaxBoxHeight}, Point{X: 50, Y: 50})
	require.False(t, ok)
	require.Equal(t, Size{Width: MaxBoxWidth, Height: MaxBoxHeight}, size)
}

func TestSlotPosition_OnGrid(t *testing.T) {
	center := Point{X: 0, Y: 0}
	for i := 0; i < 6; i++ {
		p := SlotPosition(center, 300, i, 6)
		require.Zero(t, int(p.X)%int(DefaultGridSize), "x of slot %d on grid", i)
		require.Zero(t, int(p.Y)%int(DefaultGridSize), "y of slot %d on grid", i)
	}

	// First slot sits straight above the center.
	top := SlotPosition(center, 300, 0, 6)
	require.Equal(t, 0.0, top.X)
	require.Equal(t, -300.0, top.Y)
}
