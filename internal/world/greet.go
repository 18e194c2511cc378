package world

import (
	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
)

const spawnDimension = 0
const brandChannel = "minecraft:brand"
const brandName = "corecraft"

// greet runs the ordered, atomic packet sequence spec §4.5 requires for a
// newly-admitted player before any other tick work touches it: respawn into
// the world, reset client UI state, exchange player-list/spawn visibility
// with every already-attached player, and stream the initial chunk burst.
func (w *World) greet(p *player.Player) {
	// A player arriving via MovePlayer carries its previous world's chunk
	// bookkeeping; forgetting it here would make streamChunks below believe
	// this world's chunks around the unchanged position are already loaded
	// and skip sending them (spec §4.5 "greet a newly-admitted player").
	p.LoadedChunks = make(map[player.ChunkCoord]struct{})
	p.LastChunkPos = player.ChunkCoord{}
	p.HasSentChunk = false

	p.Send(&proto.Respawn{Dimension: spawnDimension, HashedSeed: 0, Gamemode: 0, LevelType: "default"})
	p.Send(&proto.PlayerPositionAndLook{X: p.Position.X(), Y: p.Position.Y(), Z: p.Position.Z(), Yaw: p.Yaw, Pitch: p.Pitch})

	empty := make(proto.ItemStackSlice, 46)
	p.Send(&proto.WindowItems{WindowID: 0, Slots: empty})

	p.Send(&proto.WorldBorderInitialize{
		X: 0, Z: 0,
		OldDiameter: float64(2 * (MapSize + 1) * 16),
		NewDiameter: float64(2 * (MapSize + 1) * 16),
		Speed:       0,
		PortalTeleportBoundary: 29999984,
		WarningTime:            15,
		WarningBlocks:          5,
	})
	p.Send(&proto.PluginMessageClientbound{Channel: brandChannel, Data: proto.Bytes(brandName)})

	p.Send(&proto.TitleReset{})
	p.Send(&proto.TitleSetTitle{JSON: `{"text":""}`})
	p.Send(&proto.TitleSetSubtitle{JSON: `{"text":""}`})
	p.Send(&proto.TitleSetActionBar{JSON: `{"text":""}`})
	p.Send(&proto.TitleSetDisplayTime{FadeIn: 0, Stay: 0, FadeOut: 0})

	p.Send(&proto.PlayerListHeaderAndFooter{HeaderJSON: `{"text":""}`, FooterJSON: `{"text":""}`})
	p.Send(&proto.DeclareCommands{Nodes: proto.CommandNodeList{{Kind: proto.NodeRoot}}, RootIndex: 0})

	w.broadcast(&proto.PlayerInfoAddPlayer{
		UUID: proto.FromStd(p.UUID), Name: proto.BString16(p.Username),
		Gamemode: 0, Ping: proto.VarInt(p.TickPing),
	}, p)
	for _, other := range w.order {
		if other == p {
			continue
		}
		p.Send(&proto.PlayerInfoAddPlayer{
			UUID: proto.FromStd(other.UUID), Name: proto.BString16(other.Username),
			Gamemode: 0, Ping: proto.VarInt(other.TickPing),
		})
	}

	for _, other := range w.order {
		if other == p {
			continue
		}
		spawnEach(p, other)
		spawnEach(other, p)
	}

	w.streamChunks(p)
}

// spawnEach sends viewer everything it needs to see subject: SpawnPlayer,
// its skin-parts metadata, and its current head rotation.
func spawnEach(viewer, subject *player.Player) {
	viewer.Send(&proto.SpawnPlayer{
		EntityID: proto.VarInt(subject.ID),
		UUID:     proto.FromStd(subject.UUID),
		X:        subject.Position.X(), Y: subject.Position.Y(), Z: subject.Position.Z(),
		Yaw: proto.AngleFromDegrees(subject.Yaw), Pitch: proto.AngleFromDegrees(subject.Pitch),
	})
	viewer.Send(&proto.EntityMetadataSkinParts{EntityID: proto.VarInt(subject.ID), SkinParts: subject.Settings.SkinParts})
	viewer.Send(&proto.EntityHeadLook{EntityID: proto.VarInt(subject.ID), HeadYaw: proto.AngleFromDegrees(subject.Yaw)})
}
