package proto

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHandshakeRoundTrip(t *testing.T) {
	var ps Serializer
	in := Handshake{Protocol: 754, Address: "localhost", Port: 25565, Next: VarInt(NextStateStatus)}

	var buf bytes.Buffer
	require.NoError(t, ps.WriteBody(&buf, &in))

	var out Handshake
	require.NoError(t, ps.ReadBody(&buf, &out))
	require.Equal(t, in, out)
}

func TestLoginSuccessRoundTrip(t *testing.T) {
	var ps Serializer
	id := FromStd(uuid.New())
	in := LoginSuccess{UUID: id, Username: "Notch"}

	var buf bytes.Buffer
	require.NoError(t, ps.WriteBody(&buf, &in))

	var out LoginSuccess
	require.NoError(t, ps.ReadBody(&buf, &out))
	require.Equal(t, in.UUID, out.UUID)
	require.Equal(t, in.Username, out.Username)
}

func TestEncryptionRequestRoundTrip(t *testing.T) {
	var ps Serializer
	in := EncryptionRequest{
		ServerID:    "",
		PublicKey:   Bytes{1, 2, 3, 4},
		VerifyToken: Bytes{5, 6, 7, 8},
	}

	var buf bytes.Buffer
	require.NoError(t, ps.WriteBody(&buf, &in))

	var out EncryptionRequest
	require.NoError(t, ps.ReadBody(&buf, &out))
	require.Equal(t, in, out)
}

func TestPlayerDiggingRoundTrip(t *testing.T) {
	var ps Serializer
	in := PlayerDigging{Status: VarInt(DiggingFinished), Pos: Position{X: 10, Z: -20, Y: 64}, Face: 1}

	var buf bytes.Buffer
	require.NoError(t, ps.WriteBody(&buf, &in))

	var out PlayerDigging
	require.NoError(t, ps.ReadBody(&buf, &out))
	require.Equal(t, in, out)
}

func TestCatalogRoundTripsID(t *testing.T) {
	id, err := TypeID(PhaseLogin, Serverbound, &LoginStart{})
	require.NoError(t, err)
	require.Equal(t, int32(0), id)

	id, err = TypeID(PhaseLogin, Serverbound, &EncryptionResponse{})
	require.NoError(t, err)
	require.Equal(t, int32(1), id)

	pkt, err := New(PhaseLogin, Serverbound, 0)
	require.NoError(t, err)
	_, ok := pkt.(*LoginStart)
	require.True(t, ok)
}

func TestBoundedStringRejectsOverlong(t *testing.T) {
	var ps Serializer
	long := make([]byte, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'a')
	}
	in := Handshake{Protocol: 1, Address: BString255(long), Port: 1, Next: 1}

	var buf bytes.Buffer
	require.NoError(t, ps.WriteBody(&buf, &in))

	var out Handshake
	require.Error(t, ps.ReadBody(&buf, &out))
}

func TestPositionPackRoundTrip(t *testing.T) {
	cases := []Position{
		{X: 0, Z: 0, Y: 0},
		{X: -1, Z: -1, Y: -1},
		{X: 33554431, Z: -33554432, Y: 2047},
		{X: -33554432, Z: 33554431, Y: -2048},
	}
	for _, p := range cases {
		got := UnpackPosition(p.Pack())
		require.Equal(t, p, got)
	}
}

func TestAngleDegreesRoundTrip(t *testing.T) {
	a := AngleFromDegrees(90)
	require.InDelta(t, 90.0, float64(a.Degrees()), 1.5)
}
