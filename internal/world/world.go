// Package world implements the tick-driven authoritative game-state task:
// one goroutine owns a chunk grid and every attached player, draining
// admission/input channels each tick, diffing movement, streaming chunks,
// and broadcasting the results (spec §4.5), generalized from the teacher's
// Game.Serve/onTick select loop (game.go) and shardserver/chunk.go's
// per-chunk mutate-then-multicast pattern.
package world

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opencraft-go/corecraft/internal/chat"
	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
)

// TickRate is the world's fixed simulation rate (spec §4.5 "20 Hz tick").
const TickRate = 20

// TickPeriod is the wall-clock period a tick aims for; overrun ticks are
// skipped rather than caught up (spec §4.5).
const TickPeriod = time.Second / TickRate

// MapSize bounds the chunk grid to [-MapSize-1, MapSize] in each axis,
// including the one-chunk empty border spec §4.5's chunk streaming section
// requires clients to receive so border blocks render correctly.
const MapSize = 8

// latencyBroadcastPeriod is "every 100 ticks (5s)" for the PlayerInfo
// UpdateLatency snapshot (spec §4.5 step 4).
const latencyBroadcastPeriod = 100

// AddPlayer admits a new or transferred player onto the world's player set.
type AddPlayer struct {
	Player *player.Player
}

// MovePlayer asks this world to hand p off to destination, forwarding it as
// an AddPlayer there and dropping it here (spec §4.5 step 1, "on MovePlayer
// hand the player off to another world by forwarding AddPlayer to it").
type MovePlayer struct {
	Player      *player.Player
	Destination chan<- AddPlayer
}

// World owns one tick-driven chunk grid and its attached players. It has no
// exported mutable fields; all interaction goes through its channels, per
// spec §5's "one task per world" topology.
type World struct {
	log *logrus.Entry

	admission chan AddPlayer
	transfer  chan MovePlayer

	columns map[player.ChunkCoord]*Column
	players map[player.ID]*player.Player
	// order holds attached players in admission order. Go's map iteration
	// order is randomized per range, but spec §5 requires broadcasts within
	// (and here, across) a tick to visit destinations in a fixed order, so
	// every broadcast walks this slice instead of ranging players directly.
	order []*player.Player

	tick int64
}

// New creates an empty world ready to Run.
func New(log *logrus.Entry) *World {
	return &World{
		log:       log,
		admission: make(chan AddPlayer, 64),
		transfer:  make(chan MovePlayer, 16),
		columns:   make(map[player.ChunkCoord]*Column),
		players:   make(map[player.ID]*player.Player),
	}
}

// Admission returns the channel new (or incoming-transfer) players are sent
// to.
func (w *World) Admission() chan<- AddPlayer {
	return w.admission
}

// Transfer returns the channel MovePlayer handoff requests are sent to.
func (w *World) Transfer() chan<- MovePlayer {
	return w.transfer
}

// Run drives the tick loop until ctx is cancelled (spec §5's shutdown
// signal: "each task selects on it and exits after flushing its current
// packet").
func (w *World) Run(ctx context.Context) {
	ticker := time.NewTicker(TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.onTick()
		}
	}
}

// onTick executes exactly the five steps of spec §4.5.
func (w *World) onTick() {
	w.tick++

	w.drainAdmission()
	w.drainPlayerInputs()
	w.diffAndBroadcastMovement()

	if w.tick%latencyBroadcastPeriod == 0 {
		w.broadcastLatency()
	}
}

// drainAdmission handles step 1: admit new players, greet them, forward
// MovePlayer handoffs to their destination world, and collect anyone whose
// outbound channel has been dropped.
func (w *World) drainAdmission() {
	for {
		select {
		case add := <-w.admission:
			w.players[add.Player.ID] = add.Player
			w.order = append(w.order, add.Player)
			w.greet(add.Player)
		case move := <-w.transfer:
			w.removePlayer(move.Player.ID)
			move.Destination <- AddPlayer{Player: move.Player}
		default:
			w.reapDisconnected()
			return
		}
	}
}

// reapDisconnected removes any player whose inbound channel has been closed
// by its owning session task (spec §4.5 step 1 "players whose outbound
// channel is dropped are removed").
func (w *World) reapDisconnected() {
	var gone []player.ID
	for _, p := range w.order {
		select {
		case _, ok := <-p.In:
			if !ok {
				gone = append(gone, p.ID)
			}
		default:
		}
	}
	for _, id := range gone {
		w.removePlayer(id)
	}
}

// removePlayer drops id from both the lookup map and the stable order
// slice.
func (w *World) removePlayer(id player.ID) {
	delete(w.players, id)
	for i, p := range w.order {
		if p.ID == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// drainPlayerInputs handles step 2: non-blocking drain of each player's
// serverbound queue.
func (w *World) drainPlayerInputs() {
	for _, p := range w.order {
		for {
			select {
			case msg, ok := <-p.In:
				if !ok {
					goto next
				}
				if msg.Disconnect {
					continue
				}
				w.handlePacket(p, msg.Packet)
			default:
				goto next
			}
		}
	next:
	}
}

// handlePacket dispatches one serverbound packet to its handler. Malformed
// movement is ignored rather than applied (spec §4.5 "Failure semantics"). A
// panicking handler is recovered so it terminates only that packet, not the
// world task (spec §7: "a panicking handler terminates only that handler's
// packet, not the world task").
func (w *World) handlePacket(p *player.Player, pkt proto.IPacket) {
	defer func() {
		if r := recover(); r != nil {
			w.log.WithField("type", fmt.Sprintf("%T", pkt)).WithField("panic", r).Error("recovered from panicking packet handler")
		}
	}()

	switch m := pkt.(type) {
	case *proto.PlayerPosition:
		w.applyMove(p, &m.X, &m.Y, &m.Z, nil, nil, m.OnGround)
	case *proto.PlayerPositionAndRotation:
		w.applyMove(p, &m.X, &m.Y, &m.Z, &m.Yaw, &m.Pitch, m.OnGround)
	case *proto.PlayerRotation:
		w.applyMove(p, nil, nil, nil, &m.Yaw, &m.Pitch, m.OnGround)
	case *proto.PlayerMovement:
		p.OnGround = m.OnGround
	case *proto.ChatMessageServerbound:
		w.broadcastChat(p, m.Message)
	case *proto.HeldItemChangeServerbound:
		p.HeldSlot = m.Slot
	case *proto.CreativeInventoryAction:
		if m.Slot >= 0 && int(m.Slot) < len(p.Inventory) {
			p.Inventory[m.Slot] = m.ClickedItem
		}
	case *proto.PlayerDigging:
		if proto.PlayerDiggingStatus(m.Status) == proto.DiggingFinished {
			w.SetBlock(m.Pos, 0)
		}
	case *proto.PlayerBlockPlacement:
		w.SetBlock(placementTarget(m.Pos, m.Face), defaultPlacedBlock)
	case *proto.ClientSettings:
		p.Settings.ViewDist = m.ViewDistance
	case *proto.EntityAction, *proto.AnimationServerbound, *proto.KeepAliveResponse, *proto.TeleportConfirm:
		// Acknowledged but no world-state effect in this scope.
	default:
		w.log.WithField("type", fmt.Sprintf("%T", pkt)).Debug("dropped unhandled play packet")
	}
}

// worldBoundXZ and worldBoundY are the Player invariant's position bounds
// (spec §3: "-16·MAP_SIZE .. 16·MAP_SIZE on X/Z and 0..256 on Y").
const worldBoundXZ = 16 * MapSize
const worldBoundY = 256

func (w *World) applyMove(p *player.Player, x, y, z *float64, yaw, pitch *float32, onGround bool) bool {
	if !isFinite3(x, y, z) || !isFiniteAngles(yaw, pitch) {
		return false
	}
	if !withinWorldBounds(x, y, z, p.Position) {
		return false
	}
	if x != nil {
		p.Position[0] = *x
	}
	if y != nil {
		p.Position[1] = *y
	}
	if z != nil {
		p.Position[2] = *z
	}
	if yaw != nil {
		p.Yaw = *yaw
	}
	if pitch != nil {
		p.Pitch = *pitch
	}
	p.OnGround = onGround
	w.streamChunks(p)
	return true
}

// withinWorldBounds reports whether the candidate position (x, y, z
// overriding the corresponding component of current where non-nil) stays
// inside the Player invariant's world bounds.
func withinWorldBounds(x, y, z *float64, current [3]float64) bool {
	cx, cy, cz := current[0], current[1], current[2]
	if x != nil {
		cx = *x
	}
	if y != nil {
		cy = *y
	}
	if z != nil {
		cz = *z
	}
	if cx < -worldBoundXZ || cx > worldBoundXZ || cz < -worldBoundXZ || cz > worldBoundXZ {
		return false
	}
	if cy < 0 || cy > worldBoundY {
		return false
	}
	return true
}

func isFinite3(x, y, z *float64) bool {
	for _, v := range []*float64{x, y, z} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return false
		}
	}
	return true
}

func isFiniteAngles(yaw, pitch *float32) bool {
	for _, v := range []*float32{yaw, pitch} {
		if v != nil && (math.IsNaN(float64(*v)) || math.IsInf(float64(*v), 0)) {
			return false
		}
	}
	return true
}

func (w *World) broadcastChat(from *player.Player, message string) {
	json, err := chat.Marshal(chat.Text(from.Username + ": " + message))
	if err != nil {
		w.log.WithError(err).Warn("failed to marshal chat message")
		return
	}
	w.broadcast(&proto.ChatMessageClientbound{JSON: json, Position: 0}, nil)
}

func (w *World) broadcastLatency() {
	for _, p := range w.order {
		w.broadcast(&proto.PlayerInfoUpdateLatency{
			UUID: proto.FromStd(p.UUID),
			Ping: proto.VarInt(p.TickPing),
		}, nil)
	}
}

// broadcast sends pkt to every attached player except except, walking the
// stable order slice so repeated calls within a tick visit destinations in
// the same order (spec §5's per-tick ordering guarantee).
func (w *World) broadcast(pkt proto.IPacket, except *player.Player) {
	for _, p := range w.order {
		if p == except {
			continue
		}
		p.Send(pkt)
	}
}
