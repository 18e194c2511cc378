package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"

	"github.com/opencraft-go/corecraft/internal/protoerr"
)

// KeyBits is the RSA key size spec §4.4 step 2 requires.
const KeyBits = 4096

// VerifyTokenSize is the length of the random challenge sent with
// EncryptionRequest.
const VerifyTokenSize = 32

// KeyPair holds the process-lifetime RSA key (spec §4.6 "generated once at
// start; lifetime = process").
type KeyPair struct {
	Private *rsa.PrivateKey
	DER     []byte // DER-encoded SubjectPublicKeyInfo, sent verbatim on the wire.
}

// GenerateKeyPair creates a fresh 4096-bit RSA key and pre-encodes its DER
// SPKI form.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindCrypto, "generate RSA key", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindCrypto, "marshal RSA public key", err)
	}
	return &KeyPair{Private: priv, DER: der}, nil
}

// NewVerifyToken generates the random challenge bytes spec §4.4 step 2
// requires.
func NewVerifyToken() ([]byte, error) {
	token := make([]byte, VerifyTokenSize)
	if _, err := rand.Read(token); err != nil {
		return nil, protoerr.Wrap(protoerr.KindCrypto, "generate verify token", err)
	}
	return token, nil
}

// Decrypt performs RSA-PKCS1v15 decryption of ciphertext with kp's private
// key, used for both the verify token and the shared secret (spec §4.4
// steps 4-5).
func (kp *KeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, kp.Private, ciphertext)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindCrypto, "RSA decrypt", err)
	}
	return plaintext, nil
}

// VerifyToken checks a decrypted verify-token response against the token the
// server issued (spec §4.4 step 4).
func VerifyToken(issued, received []byte) bool {
	if len(issued) != len(received) {
		return false
	}
	var diff byte
	for i := range issued {
		diff |= issued[i] ^ received[i]
	}
	return diff == 0
}
