package frame

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/opencraft-go/corecraft/internal/protoerr"
	"github.com/opencraft-go/corecraft/internal/varint"
)

// maxFrameBytes bounds both the outer frame length and the claimed
// uncompressed length before any allocation, per spec §4.3 step (e).
const maxFrameBytes = 1<<21 - 1

// Conn is the per-connection framing state: the raw socket (or its cipher
// wrapper once installed) plus the negotiated compression threshold. A
// negative threshold disables compression, matching C6's read-mostly i32
// convention (spec §4.6).
type Conn struct {
	r         io.Reader
	w         io.Writer
	threshold int32
}

// New wraps an accepted socket before any cipher or compression is
// negotiated.
func New(rw io.ReadWriter) *Conn {
	return &Conn{r: rw, w: rw, threshold: -1}
}

// NewReaderWriter is New for callers that already split their reader and
// writer — e.g. the session task, which wraps the socket's read side in a
// bufio.Reader to peek the legacy-ping marker byte before any VarInt framing
// begins (spec §4.4 "peeks one buffered byte from the socket").
func NewReaderWriter(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: r, w: w, threshold: -1}
}

// InstallCipher replaces the underlying reader/writer with an AES-128/CFB8
// pair (spec §4.4 step 6). All framing after this point is encrypted.
func (c *Conn) InstallCipher(secret []byte) error {
	r, w, err := NewCipherPair(c.r, c.w, secret)
	if err != nil {
		return err
	}
	c.r, c.w = r, w
	return nil
}

// SetCompressionThreshold installs the zlib threshold negotiated during
// login (spec §4.4 step 9); a negative value disables compression.
func (c *Conn) SetCompressionThreshold(threshold int32) {
	c.threshold = threshold
}

// CompressionEnabled reports whether a non-negative threshold is installed.
func (c *Conn) CompressionEnabled() bool {
	return c.threshold >= 0
}

// ReadVarIntLength reads a single VarInt from the connection, one byte at a
// time, enforcing the 5-byte cap. It MUST NOT be interleaved with any other
// read between its first and last byte (spec §4.3 "slow-loris" / §5
// "atomicity").
func (c *Conn) ReadVarIntLength() (int32, error) {
	return varint.ReadInt32(c.r)
}

// ReadFrame reads and decodes one complete packet body, applying
// decompression if enabled. The returned bytes are the raw packet body
// (discriminant + fields), ready for a proto.Serializer to read from.
func (c *Conn) ReadFrame() ([]byte, error) {
	frameLen, err := c.ReadVarIntLength()
	if err != nil {
		return nil, err
	}
	if frameLen < 0 || frameLen > maxFrameBytes {
		return nil, protoerr.New(protoerr.KindMalformed, "packet too big")
	}

	raw := make([]byte, frameLen)
	if _, err := io.ReadFull(c.r, raw); err != nil {
		return nil, protoerr.Wrap(protoerr.KindIO, "read frame body", err)
	}

	if !c.CompressionEnabled() {
		return raw, nil
	}

	br := bytes.NewReader(raw)
	uncompressedLen, err := varint.ReadInt32(br)
	if err != nil {
		return nil, err
	}
	if uncompressedLen < 0 || uncompressedLen > maxFrameBytes {
		return nil, protoerr.New(protoerr.KindMalformed, "packet too big")
	}
	if uncompressedLen == 0 {
		body := make([]byte, br.Len())
		if _, err := io.ReadFull(br, body); err != nil {
			return nil, protoerr.Wrap(protoerr.KindIO, "read uncompressed body", err)
		}
		return body, nil
	}

	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindMalformed, "open zlib stream", err)
	}
	defer zr.Close()

	body := make([]byte, uncompressedLen)
	if _, err := io.ReadFull(zr, body); err != nil {
		return nil, protoerr.Wrap(protoerr.KindMalformed, "decompress body", err)
	}
	// Confirm the stream doesn't carry trailing bytes past the claimed length.
	var extra [1]byte
	if n, _ := zr.Read(extra[:]); n != 0 {
		return nil, protoerr.New(protoerr.KindMalformed, "decompressed body longer than declared")
	}
	return body, nil
}

// WriteFrame encodes and emits one packet body, applying compression framing
// if enabled (spec §4.3 steps a-d).
func (c *Conn) WriteFrame(body []byte) error {
	if !c.CompressionEnabled() {
		if err := varint.WriteInt32(c.w, int32(len(body))); err != nil {
			return err
		}
		_, err := c.w.Write(body)
		if err != nil {
			return protoerr.Wrap(protoerr.KindIO, "write uncompressed frame", err)
		}
		return nil
	}

	if int32(len(body)) < c.threshold {
		var prefix bytes.Buffer
		if err := varint.WriteInt32(&prefix, 0); err != nil {
			return err
		}
		frameLen := int32(prefix.Len() + len(body))
		if err := varint.WriteInt32(c.w, frameLen); err != nil {
			return err
		}
		if _, err := c.w.Write(prefix.Bytes()); err != nil {
			return protoerr.Wrap(protoerr.KindIO, "write frame prefix", err)
		}
		_, err := c.w.Write(body)
		if err != nil {
			return protoerr.Wrap(protoerr.KindIO, "write uncompressed-in-compressed frame", err)
		}
		return nil
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(body); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "zlib compress body", err)
	}
	if err := zw.Close(); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "close zlib writer", err)
	}

	var uncompressedLenBuf bytes.Buffer
	if err := varint.WriteInt32(&uncompressedLenBuf, int32(len(body))); err != nil {
		return err
	}
	frameLen := int32(uncompressedLenBuf.Len() + compressed.Len())
	if err := varint.WriteInt32(c.w, frameLen); err != nil {
		return err
	}
	if _, err := c.w.Write(uncompressedLenBuf.Bytes()); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write compressed frame prefix", err)
	}
	_, err := c.w.Write(compressed.Bytes())
	if err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write compressed frame body", err)
	}
	return nil
}
