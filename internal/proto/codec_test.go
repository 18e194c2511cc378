package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePacketRoundTrip(t *testing.T) {
	in := &Handshake{Protocol: 754, Address: "localhost", Port: 25565, Next: VarInt(NextStateStatus)}

	body, err := EncodePacket(PhaseHandshake, Serverbound, in)
	require.NoError(t, err)

	out, err := DecodePacket(PhaseHandshake, Serverbound, body)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestDecodePacketRejectsUnknownDiscriminant(t *testing.T) {
	_, err := DecodePacket(PhaseLogin, Serverbound, []byte{0x7f})
	require.Error(t, err)
}

func TestEncodePacketRejectsUnregisteredType(t *testing.T) {
	_, err := EncodePacket(PhaseHandshake, Clientbound, &Handshake{})
	require.Error(t, err)
}
