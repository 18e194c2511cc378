package world

import (
	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
)

// clampViewDistance returns min(viewDistance+2, 16), the load radius spec
// §4.5's greeting and chunk-streaming sections both use.
func clampViewDistance(viewDistance int8) int32 {
	d := int32(viewDistance) + 2
	if d > 16 {
		d = 16
	}
	if d < 1 {
		d = 1
	}
	return d
}

// chunksInRadius lists every chunk coordinate within radius of center,
// clamped to the world's [-MapSize-1, MapSize] grid (the one-chunk empty
// border spec §4.5 requires so clients can render border blocks).
func chunksInRadius(center player.ChunkCoord, radius int32) []player.ChunkCoord {
	var out []player.ChunkCoord
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			c := player.ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			if c.X < -MapSize-1 || c.X > MapSize || c.Z < -MapSize-1 || c.Z > MapSize {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// streamChunks implements spec §4.5's chunk-streaming paragraph: on each
// position change, if the floored chunk coordinate differs from the last
// sent one, send UpdateViewPosition, compute and send the newly-needed
// chunks, retain still-in-radius loaded chunks, and update bookkeeping.
func (w *World) streamChunks(p *player.Player) {
	pos := p.ChunkPos()
	if p.HasSentChunk && pos == p.LastChunkPos {
		return
	}

	p.Send(&proto.UpdateViewPosition{ChunkX: proto.VarInt(pos.X), ChunkZ: proto.VarInt(pos.Z)})

	radius := clampViewDistance(p.Settings.ViewDist)
	needed := chunksInRadius(pos, radius)

	neededSet := make(map[player.ChunkCoord]struct{}, len(needed))
	for _, c := range needed {
		neededSet[c] = struct{}{}
		if _, already := p.LoadedChunks[c]; already {
			continue
		}
		w.sendChunk(p, c)
	}

	retained := make(map[player.ChunkCoord]struct{}, len(neededSet))
	for c := range p.LoadedChunks {
		if _, stillNeeded := neededSet[c]; stillNeeded {
			retained[c] = struct{}{}
		}
	}
	for c := range neededSet {
		retained[c] = struct{}{}
	}

	p.LoadedChunks = retained
	p.LastChunkPos = pos
	p.HasSentChunk = true
}

// sendChunk encodes and sends one column, materialising an empty one if the
// world has never touched it (border chunks are all-air).
func (w *World) sendChunk(p *player.Player, coord player.ChunkCoord) {
	col, ok := w.columns[coord]
	if !ok {
		col = NewColumn(coord.X, coord.Z)
	}

	data, err := col.Encode()
	if err != nil {
		w.log.WithError(err).Warn("failed to encode chunk column")
		return
	}

	p.Send(&proto.ChunkData{
		ChunkX:         coord.X,
		ChunkZ:         coord.Z,
		FullChunk:      true,
		PrimaryBitMask: proto.VarInt(col.PrimaryBitMask()),
		Heightmap:      proto.NBTCompound{},
		Biomes:         make(proto.Int32Array, 1024),
		Data:           data,
		BlockEntities:  nil,
	})
}
