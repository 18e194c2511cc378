package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
)

func TestSetBlockBroadcastsOnlyToPlayersWithChunkLoaded(t *testing.T) {
	w := testWorld()
	watching, outWatching, _ := testPlayer(1, mgl64.Vec3{})
	blind, outBlind, _ := testPlayer(2, mgl64.Vec3{})
	w.order = append(w.order, watching, blind)

	pos := proto.Position{X: 3, Y: 70, Z: 3}
	watching.LoadedChunks[chunkOf(pos)] = struct{}{}

	w.SetBlock(pos, 5)

	require.Len(t, outWatching, 1)
	require.Empty(t, outBlind)
	pkt := (<-outWatching).(*proto.BlockChange)
	require.EqualValues(t, 5, pkt.BlockID)
}

func TestSetBlockIdempotentSecondCallSendsNothing(t *testing.T) {
	w := testWorld()
	p, out, _ := testPlayer(1, mgl64.Vec3{})
	w.order = append(w.order, p)
	pos := proto.Position{X: 0, Y: 0, Z: 0}
	p.LoadedChunks[chunkOf(pos)] = struct{}{}

	w.SetBlock(pos, 9)
	require.Len(t, out, 1)
	<-out

	w.SetBlock(pos, 9)
	require.Empty(t, out)
}

func TestSetBlockAirOnUntouchedColumnIsNoop(t *testing.T) {
	w := testWorld()
	p, out, _ := testPlayer(1, mgl64.Vec3{})
	w.order = append(w.order, p)
	pos := proto.Position{X: 50, Y: 50, Z: 50}
	p.LoadedChunks[chunkOf(pos)] = struct{}{}

	w.SetBlock(pos, 0)

	require.Empty(t, out)
	require.NotContains(t, w.columns, chunkOf(pos))
}

func TestPlacementTargetAppliesFaceOffset(t *testing.T) {
	clicked := proto.Position{X: 0, Y: 0, Z: 0}
	require.Equal(t, proto.Position{X: 0, Y: 1, Z: 0}, placementTarget(clicked, 1))
	require.Equal(t, proto.Position{X: -1, Y: 0, Z: 0}, placementTarget(clicked, 4))
}

func chunkOf(pos proto.Position) player.ChunkCoord {
	return player.ChunkCoord{X: pos.X >> 4, Z: pos.Z >> 4}
}
