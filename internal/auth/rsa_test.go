package auth

import (
	crand "crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPairSizeAndDER(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	require.Equal(t, KeyBits, kp.Private.N.BitLen())
	require.NotEmpty(t, kp.DER)
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	token, err := NewVerifyToken()
	require.NoError(t, err)
	require.Len(t, token, VerifyTokenSize)

	ciphertext, err := rsa.EncryptPKCS1v15(crand.Reader, &kp.Private.PublicKey, token)
	require.NoError(t, err)

	decrypted, err := kp.Decrypt(ciphertext)
	require.NoError(t, err)
	require.True(t, VerifyToken(token, decrypted))
}

func TestVerifyTokenRejectsMismatch(t *testing.T) {
	require.False(t, VerifyToken([]byte{1, 2, 3}, []byte{1, 2, 4}))
	require.False(t, VerifyToken([]byte{1, 2, 3}, []byte{1, 2}))
}

func TestSharedSecretDecryptRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	secret, err := NewSharedSecret()
	require.NoError(t, err)
	require.Len(t, secret, SharedSecretSize)

	ciphertext, err := rsa.EncryptPKCS1v15(crand.Reader, &kp.Private.PublicKey, secret)
	require.NoError(t, err)

	decrypted, err := kp.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, secret, decrypted)
}
