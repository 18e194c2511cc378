package auth

import (
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignedBigIntHexPositiveVector(t *testing.T) {
	sum := sha1.Sum([]byte("Notch"))
	require.Equal(t, "4ed1f46bbe04bc756bcb17c0c7ce3e4632f06a48", SignedBigIntHex(sum[:]))
}

func TestSignedBigIntHexLeadingZeroVector(t *testing.T) {
	sum := sha1.Sum([]byte("simon"))
	require.Equal(t, "88e16a1019277b15d58faf0541e11910eb756f6", SignedBigIntHex(sum[:]))
}

func TestSignedBigIntHexKnownNegative(t *testing.T) {
	sum := sha1.Sum([]byte("jeb_"))
	require.Equal(t, "-7c9d5b0044c130109a5d7b5fb5c317c02b4e28c1", SignedBigIntHex(sum[:]))
}

func TestServerIDHashDeterministic(t *testing.T) {
	secret := []byte("sixteen byte key")[:16]
	pubDER := []byte("fake-der-bytes")
	a := ServerIDHash(secret, pubDER)
	b := ServerIDHash(secret, pubDER)
	require.Equal(t, a, b)
}
