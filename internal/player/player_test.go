package player

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChunkPosFloorsNegativeCoordinates(t *testing.T) {
	out := make(chan Outbound, 1)
	in := make(chan Inbound, 1)
	p := NewPlayer(1, uuid.New(), "Steve", mgl64.Vec3{-1, 64, -17}, out, in)

	pos := p.ChunkPos()
	require.EqualValues(t, -1, pos.X)
	require.EqualValues(t, -2, pos.Z)
}

func TestChunkPosFloorsPositiveCoordinates(t *testing.T) {
	out := make(chan Outbound, 1)
	in := make(chan Inbound, 1)
	p := NewPlayer(1, uuid.New(), "Steve", mgl64.Vec3{31.9, 64, 0}, out, in)

	pos := p.ChunkPos()
	require.EqualValues(t, 1, pos.X)
	require.EqualValues(t, 0, pos.Z)
}

func TestSendEnqueuesOnOutboundChannel(t *testing.T) {
	out := make(chan Outbound, 1)
	in := make(chan Inbound, 1)
	p := NewPlayer(1, uuid.New(), "Steve", mgl64.Vec3{}, out, in)

	var pkt Outbound
	p.Send(pkt)
	require.Len(t, out, 1)
}
