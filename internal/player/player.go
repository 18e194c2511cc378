// Package player holds the per-connection game state a world task owns for
// each attached client: identity, authoritative position/rotation, view
// distance, loaded-chunk set, and the two buffered channels a session task
// uses to exchange packets with the world (spec §5's per-player MPSC pair),
// generalized from the teacher's player.Player struct (player/player.go).
package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/opencraft-go/corecraft/internal/proto"
)

// ID identifies a player's entity uniquely within a world.
type ID int32

// Inbound is a serverbound packet or control event handed from the session
// task to the owning world task.
type Inbound struct {
	Packet     proto.IPacket
	Disconnect bool
}

// Outbound is delivered to the session task for framing and writing to the
// socket.
type Outbound = proto.IPacket

// Settings mirrors the client's ClientSettings packet fields the world
// needs (view distance drives chunk streaming radius).
type Settings struct {
	Locale     string
	ViewDist   int8
	ChatMode   int32
	ChatColors bool
	SkinParts  uint8
	MainHand   int32
}

// Player is the authoritative per-player state a world owns between ticks.
type Player struct {
	ID       ID
	UUID     uuid.UUID
	Username string

	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Yaw      float32
	Pitch    float32
	OnGround bool

	// PrevPosition/PrevYaw/PrevPitch hold last tick's position and rotation
	// so the world can diff and emit the minimal movement packet (spec §4.5
	// step 3). No previous on-ground value is kept, so on-ground is not part
	// of the diff.
	PrevPosition mgl64.Vec3
	PrevYaw      float32
	PrevPitch    float32

	Settings      Settings
	TickPing      int32
	LastKeepAlive int64 // Unix nanos of the last inbound KeepAlive response.

	LoadedChunks map[ChunkCoord]struct{}
	LastChunkPos ChunkCoord
	HasSentChunk bool // false until the first UpdateViewPosition/chunk burst.

	Inventory [46]proto.ItemStack
	HeldSlot  int16

	Out chan<- Outbound
	In  <-chan Inbound
}

// ChunkCoord is a chunk-grid coordinate (floor(x/16), floor(z/16)).
type ChunkCoord struct {
	X, Z int32
}

// NewPlayer constructs a Player at the given spawn position with empty
// loaded-chunk bookkeeping; Out/In are wired by the caller since they are
// owned by the accepting session task.
func NewPlayer(id ID, playerUUID uuid.UUID, username string, spawn mgl64.Vec3, out chan<- Outbound, in <-chan Inbound) *Player {
	p := &Player{
		ID:           id,
		UUID:         playerUUID,
		Username:     username,
		Position:     spawn,
		PrevPosition: spawn,
		LoadedChunks: make(map[ChunkCoord]struct{}),
		HeldSlot:     -1,
		Out:          out,
		In:           in,
	}
	return p
}

// Send enqueues a clientbound packet on the buffered Out channel. It never
// drops a packet: while the buffer is full, it blocks the caller (the world
// tick) until the session task drains it.
func (p *Player) Send(pkt Outbound) {
	p.Out <- pkt
}

// ChunkPos floors the player's current position to a chunk coordinate.
func (p *Player) ChunkPos() ChunkCoord {
	return ChunkCoord{
		X: int32(math.Floor(p.Position.X() / 16)),
		Z: int32(math.Floor(p.Position.Z() / 16)),
	}
}
