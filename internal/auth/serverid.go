// Package auth implements the Login-phase cryptographic handshake: RSA key
// exchange, the server-id hash, and Mojang session verification (spec
// §4.4 steps 2-8), generalized from the teacher's server_auth.IAuthenticator
// interface shape in server_auth/server_auth.go (there, a single HTTP GET to
// a checkserver.jsp endpoint; here, the modern hasJoined JSON endpoint plus
// the RSA/AES steps the Beta protocol never needed).
package auth

import (
	"crypto/sha1"
	"math/big"
)

// ServerIDHash computes the lowercase, sign-aware hex digest spec §4.4 step 7
// and §8 require: sha1(sharedSecret || publicKeyDER) interpreted as a
// two's-complement signed bignum.
func ServerIDHash(sharedSecret, publicKeyDER []byte) string {
	h := sha1.New()
	h.Write(sharedSecret)
	h.Write(publicKeyDER)
	digest := h.Sum(nil)
	return SignedBigIntHex(digest)
}

// SignedBigIntHex treats digest as a two's-complement signed big integer and
// formats it as lowercase hex, with a leading '-' for negative values and no
// leading zeros — exactly Mojang's java.math.BigInteger(digest).toString(16).
func SignedBigIntHex(digest []byte) string {
	negative := digest[0]&0x80 != 0
	n := new(big.Int).SetBytes(digest)
	if negative {
		// Two's complement negation: n = n - 2^(8*len(digest))
		modulus := new(big.Int).Lsh(big.NewInt(1), uint(len(digest)*8))
		n.Sub(n, modulus)
		n.Neg(n)
		return "-" + n.Text(16)
	}
	return n.Text(16)
}
