// Package frame implements the length-prefixed, optionally compressed,
// optionally encrypted byte framing that every packet body travels over
// (spec §4.3/§6). The reader/writer pair is the VarInt-length discipline the
// teacher's ReadPacket/WritePacket layer assumes an already-framed stream
// provides; this package is what produces that stream.
package frame

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"github.com/opencraft-go/corecraft/internal/protoerr"
)

// cfb8Stream implements AES-128/CFB8: a one-byte-at-a-time shift-register
// feedback mode. crypto/cipher's NewCFBEncrypter/Decrypter implement CFB
// with a feedback segment equal to the block size (CFB-128 for AES), not
// CFB8, so the segment-shift has to be hand-rolled over the block cipher
// directly; this is the one primitive in the login flow stdlib doesn't
// supply ready-made.
type cfb8Stream struct {
	block     cipher.Block
	register  []byte
	encrypt   bool
	scratch   []byte
}

func newCFB8(block cipher.Block, iv []byte, encrypt bool) *cfb8Stream {
	register := make([]byte, len(iv))
	copy(register, iv)
	return &cfb8Stream{
		block:    block,
		register: register,
		encrypt:  encrypt,
		scratch:  make([]byte, block.BlockSize()),
	}
}

func (s *cfb8Stream) XORKeyStream(dst, src []byte) {
	for i, b := range src {
		s.block.Encrypt(s.scratch, s.register)
		var out byte
		if s.encrypt {
			out = b ^ s.scratch[0]
			s.shift(out)
		} else {
			out = b ^ s.scratch[0]
			s.shift(b)
		}
		dst[i] = out
	}
}

func (s *cfb8Stream) shift(feedback byte) {
	n := len(s.register)
	copy(s.register, s.register[1:])
	s.register[n-1] = feedback
}

type cipherReader struct {
	r      io.Reader
	stream cipher.Stream
}

func (c *cipherReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.stream.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

type cipherWriter struct {
	w      io.Writer
	stream cipher.Stream
}

func (c *cipherWriter) Write(p []byte) (int, error) {
	out := make([]byte, len(p))
	c.stream.XORKeyStream(out, p)
	return c.w.Write(out)
}

// NewCipherPair wraps r and w with AES-128/CFB8 decrypt/encrypt streams
// using key = IV = secret, the shared-secret installation spec §4.4 step 6
// requires. secret must be 16 bytes.
func NewCipherPair(r io.Reader, w io.Writer, secret []byte) (io.Reader, io.Writer, error) {
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, nil, protoerr.Wrap(protoerr.KindCrypto, "build AES cipher", err)
	}
	decrypt := newCFB8(block, secret, false)
	encrypt := newCFB8(block, secret, true)
	return &cipherReader{r: r, stream: decrypt}, &cipherWriter{w: w, stream: encrypt}, nil
}
