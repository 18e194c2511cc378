package world

import (
	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
)

// deltaRange is the ±8.0-block window EntityPosition's i16 fixed-point delta
// can represent; outside it the move must be a full EntityTeleport (spec
// §4.5 step 3).
const deltaRange = 8.0

// diffAndBroadcastMovement implements spec §4.5 step 3: for every attached
// player, diff this tick's position/rotation against last tick's and emit
// the minimal movement packet to every other player, then roll the
// previous-state fields forward.
func (w *World) diffAndBroadcastMovement() {
	for _, p := range w.order {
		dx := p.Position.X() - p.PrevPosition.X()
		dy := p.Position.Y() - p.PrevPosition.Y()
		dz := p.Position.Z() - p.PrevPosition.Z()
		moved := dx != 0 || dy != 0 || dz != 0
		rotated := p.Yaw != p.PrevYaw || p.Pitch != p.PrevPitch

		entityID := proto.VarInt(p.ID)

		switch {
		case !moved && !rotated:
			w.broadcast(&proto.EntityMovement{EntityID: entityID}, p)

		case moved && !rotated:
			if withinDeltaRange(dx, dy, dz) {
				w.broadcast(&proto.EntityPosition{
					EntityID: entityID,
					DX:       deltaFixed(dx),
					DY:       deltaFixed(dy),
					DZ:       deltaFixed(dz),
					OnGround: p.OnGround,
				}, p)
			} else {
				w.broadcastTeleport(p, entityID)
			}

		case !moved && rotated:
			yaw, pitch := proto.AngleFromDegrees(p.Yaw), proto.AngleFromDegrees(p.Pitch)
			w.broadcast(&proto.EntityRotation{EntityID: entityID, Yaw: yaw, Pitch: pitch, OnGround: p.OnGround}, p)
			w.broadcast(&proto.EntityHeadLook{EntityID: entityID, HeadYaw: yaw}, p)

		default:
			if withinDeltaRange(dx, dy, dz) {
				yaw, pitch := proto.AngleFromDegrees(p.Yaw), proto.AngleFromDegrees(p.Pitch)
				w.broadcast(&proto.EntityPositionAndRotation{
					EntityID: entityID,
					DX:       deltaFixed(dx),
					DY:       deltaFixed(dy),
					DZ:       deltaFixed(dz),
					Yaw:      yaw,
					Pitch:    pitch,
					OnGround: p.OnGround,
				}, p)
				w.broadcast(&proto.EntityHeadLook{EntityID: entityID, HeadYaw: yaw}, p)
			} else {
				w.broadcastTeleport(p, entityID)
				w.broadcast(&proto.EntityHeadLook{EntityID: entityID, HeadYaw: proto.AngleFromDegrees(p.Yaw)}, p)
			}
		}

		p.PrevPosition = p.Position
		p.PrevYaw = p.Yaw
		p.PrevPitch = p.Pitch
	}
}

func withinDeltaRange(dx, dy, dz float64) bool {
	return inRange(dx) && inRange(dy) && inRange(dz)
}

func inRange(d float64) bool {
	return d >= -deltaRange && d <= deltaRange
}

// deltaFixed converts a block-space delta to EntityPosition's Δ*4096
// fixed-point i16 representation (spec §4.5 step 3).
func deltaFixed(d float64) int16 {
	return int16(d * 4096)
}

func (w *World) broadcastTeleport(p *player.Player, entityID proto.VarInt) {
	w.broadcast(&proto.EntityTeleport{
		EntityID: entityID,
		X:        p.Position.X(),
		Y:        p.Position.Y(),
		Z:        p.Position.Z(),
		Yaw:      proto.AngleFromDegrees(p.Yaw),
		Pitch:    proto.AngleFromDegrees(p.Pitch),
		OnGround: p.OnGround,
	}, p)
}
