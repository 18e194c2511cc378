package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/opencraft-go/corecraft/internal/proto"
)

func TestDiffAndBroadcastMovementNoChangeEmitsEntityMovement(t *testing.T) {
	w := testWorld()
	mover, _, _ := testPlayer(1, mgl64.Vec3{0, 0, 0})
	observer, out, _ := testPlayer(2, mgl64.Vec3{})
	w.order = append(w.order, mover, observer)

	w.diffAndBroadcastMovement()

	require.Len(t, out, 1)
	_, ok := (<-out).(*proto.EntityMovement)
	require.True(t, ok)
}

func TestDiffAndBroadcastMovementSmallDeltaEmitsEntityPosition(t *testing.T) {
	w := testWorld()
	mover, _, _ := testPlayer(1, mgl64.Vec3{0, 0, 0})
	mover.Position = mgl64.Vec3{1, 0, -1}
	observer, out, _ := testPlayer(2, mgl64.Vec3{})
	w.order = append(w.order, mover, observer)

	w.diffAndBroadcastMovement()

	pkt, ok := (<-out).(*proto.EntityPosition)
	require.True(t, ok)
	require.EqualValues(t, 1*4096, pkt.DX)
	require.EqualValues(t, -1*4096, pkt.DZ)
}

func TestDiffAndBroadcastMovementLargeDeltaEmitsTeleport(t *testing.T) {
	w := testWorld()
	mover, _, _ := testPlayer(1, mgl64.Vec3{0, 0, 0})
	mover.Position = mgl64.Vec3{100, 0, 0}
	observer, out, _ := testPlayer(2, mgl64.Vec3{})
	w.order = append(w.order, mover, observer)

	w.diffAndBroadcastMovement()

	pkt, ok := (<-out).(*proto.EntityTeleport)
	require.True(t, ok)
	require.Equal(t, 100.0, pkt.X)
}

func TestDiffAndBroadcastMovementRotationOnlyEmitsRotationAndHeadLook(t *testing.T) {
	w := testWorld()
	mover, _, _ := testPlayer(1, mgl64.Vec3{})
	mover.Yaw = 90
	observer, out, _ := testPlayer(2, mgl64.Vec3{})
	w.order = append(w.order, mover, observer)

	w.diffAndBroadcastMovement()

	require.Len(t, out, 2)
	_, ok := (<-out).(*proto.EntityRotation)
	require.True(t, ok)
	_, ok = (<-out).(*proto.EntityHeadLook)
	require.True(t, ok)
}

func TestDiffAndBroadcastMovementRollsPreviousStateForward(t *testing.T) {
	w := testWorld()
	mover, _, _ := testPlayer(1, mgl64.Vec3{})
	mover.Position = mgl64.Vec3{2, 0, 0}
	mover.Yaw = 45
	w.order = append(w.order, mover)

	w.diffAndBroadcastMovement()

	require.Equal(t, mover.Position, mover.PrevPosition)
	require.Equal(t, mover.Yaw, mover.PrevYaw)
}

func TestDeltaFixedConvertsBlockDeltaToFixedPoint(t *testing.T) {
	require.EqualValues(t, 4096, deltaFixed(1))
	require.EqualValues(t, -2048, deltaFixed(-0.5))
}

func TestWithinDeltaRangeBoundary(t *testing.T) {
	require.True(t, withinDeltaRange(8, -8, 0))
	require.False(t, withinDeltaRange(8.1, 0, 0))
}
