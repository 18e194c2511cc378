package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
)

func TestClampViewDistanceAddsBorderAndCapsAt16(t *testing.T) {
	require.EqualValues(t, 4, clampViewDistance(2))
	require.EqualValues(t, 16, clampViewDistance(20))
}

func TestChunksInRadiusClampsToMapBorder(t *testing.T) {
	chunks := chunksInRadius(player.ChunkCoord{X: MapSize, Z: MapSize}, 2)
	for _, c := range chunks {
		require.LessOrEqual(t, c.X, int32(MapSize))
		require.LessOrEqual(t, c.Z, int32(MapSize))
		require.GreaterOrEqual(t, c.X, int32(-MapSize-1))
		require.GreaterOrEqual(t, c.Z, int32(-MapSize-1))
	}
}

func TestStreamChunksSendsViewPositionAndChunksOnFirstCall(t *testing.T) {
	w := testWorld()
	p, out, _ := testPlayer(1, mgl64.Vec3{0, 20, 0})

	w.streamChunks(p)

	require.True(t, p.HasSentChunk)
	require.NotEmpty(t, p.LoadedChunks)
	require.NotEmpty(t, out)

	first, ok := (<-out).(*proto.UpdateViewPosition)
	require.True(t, ok)
	require.EqualValues(t, 0, first.ChunkX)
}

func TestStreamChunksSkipsWhenChunkUnchanged(t *testing.T) {
	w := testWorld()
	p, out, _ := testPlayer(1, mgl64.Vec3{0, 20, 0})

	w.streamChunks(p)
	for len(out) > 0 {
		<-out
	}

	w.streamChunks(p)
	require.Empty(t, out)
}

func TestStreamChunksResendsOnlyNewlyNeededChunks(t *testing.T) {
	w := testWorld()
	p, out, _ := testPlayer(1, mgl64.Vec3{0, 20, 0})
	p.Settings.ViewDist = 1

	w.streamChunks(p)
	for len(out) > 0 {
		<-out
	}
	firstLoaded := len(p.LoadedChunks)

	p.Position = mgl64.Vec3{16, 20, 0}
	w.streamChunks(p)

	require.NotEqual(t, player.ChunkCoord{X: 0, Z: 0}, p.LastChunkPos)
	require.NotEmpty(t, out)
	require.NotZero(t, firstLoaded)
}
