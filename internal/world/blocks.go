package world

import (
	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
)

// defaultPlacedBlock stands in for a real item-to-block-state registry,
// which is out of scope here; every placement places the same block id.
const defaultPlacedBlock = 1

// faceOffsets maps PlayerBlockPlacement's Face (0=-Y,1=+Y,2=-Z,3=+Z,4=-X,5=+X)
// to the adjacent block position a placement actually targets.
var faceOffsets = [6]proto.Position{
	{X: 0, Y: -1, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: -1},
	{X: 0, Y: 0, Z: 1},
	{X: -1, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
}

// placementTarget resolves the block position a placement against clicked
// affects, given the clicked block and the face the cursor hit.
func placementTarget(clicked proto.Position, face proto.VarInt) proto.Position {
	if face < 0 || int(face) >= len(faceOffsets) {
		return clicked
	}
	off := faceOffsets[face]
	return proto.Position{X: clicked.X + off.X, Y: clicked.Y + off.Y, Z: clicked.Z + off.Z}
}

// columnAt returns the column a world position falls in, creating one on
// demand so Set can materialise it (Get on a missing column is simply air).
func (w *World) columnAt(chunkX, chunkZ int32) *Column {
	coord := player.ChunkCoord{X: chunkX, Z: chunkZ}
	col, ok := w.columns[coord]
	if !ok {
		col = NewColumn(chunkX, chunkZ)
		w.columns[coord] = col
	}
	return col
}

// SetBlock runs the authoritative set-block algorithm (spec §4.5): sanity
// check bounds, update the owning section's palette/packed data, drop the
// section if it went fully air, and broadcast the change only to players who
// have the chunk loaded. Setting a position to its current value is a no-op
// and transmits nothing (spec's "second call short-circuits" idempotence
// requirement). Positions outside the chunk grid or the 0..256 vertical
// range are rejected rather than materialising an out-of-bounds column.
func (w *World) SetBlock(pos proto.Position, globalBlockID int32) {
	if pos.Y < 0 || pos.Y >= 256 {
		return
	}
	chunkX, chunkZ := pos.X>>4, pos.Z>>4
	if chunkX < -MapSize || chunkX >= MapSize || chunkZ < -MapSize || chunkZ >= MapSize {
		return
	}
	localX, localZ := int(pos.X&15), int(pos.Z&15)
	localY := int(pos.Y)

	coord := player.ChunkCoord{X: chunkX, Z: chunkZ}
	col, ok := w.columns[coord]
	if !ok {
		if globalBlockID == 0 {
			return
		}
		col = w.columnAt(chunkX, chunkZ)
	}

	if col.Get(localX, localY, localZ) == globalBlockID {
		return
	}
	col.Set(localX, localY, localZ, globalBlockID)

	pkt := &proto.BlockChange{Pos: pos, BlockID: proto.VarInt(globalBlockID)}
	for _, p := range w.order {
		if _, loaded := p.LoadedChunks[coord]; loaded {
			p.Send(pkt)
		}
	}
}
