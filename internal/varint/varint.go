// Package varint implements the 7-bit little-endian-grouped variable length
// integers used to frame every Minecraft packet (spec §3/§4.1).
//
// The read/write pair follows the same no-allocation, one-byte-at-a-time
// discipline as the teacher's PacketSerializer.readUint8/writeUint8 in
// proto/serialize.go, generalized to the grouped continuation-bit encoding
// the Beta-era protocol the teacher implements never needed.
package varint

import (
	"io"

	"github.com/opencraft-go/corecraft/internal/protoerr"
)

const (
	// MaxVarIntBytes is the longest a VarInt encoding of an int32 can be.
	MaxVarIntBytes = 5
	// MaxVarLongBytes is the longest a VarLong encoding of an int64 can be.
	MaxVarLongBytes = 10

	segmentBits = 0x7f
	continueBit = 0x80
)

// ReadInt32 decodes a VarInt from r, capping at MaxVarIntBytes groups.
func ReadInt32(r io.Reader) (int32, error) {
	var result uint32
	var buf [1]byte
	for i := 0; i < MaxVarIntBytes; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, protoerr.Wrap(protoerr.KindIO, "read VarInt byte", err)
		}
		b := buf[0]
		result |= uint32(b&segmentBits) << (7 * uint(i))
		if b&continueBit == 0 {
			return int32(result), nil
		}
	}
	return 0, protoerr.New(protoerr.KindMalformed, "VarInt too big")
}

// WriteInt32 writes v as a minimal-length VarInt.
func WriteInt32(w io.Writer, v int32) error {
	u := uint32(v)
	var buf [MaxVarIntBytes]byte
	n := 0
	for {
		b := byte(u & segmentBits)
		u >>= 7
		if u != 0 {
			b |= continueBit
		}
		buf[n] = b
		n++
		if u == 0 {
			break
		}
	}
	_, err := w.Write(buf[:n])
	if err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write VarInt", err)
	}
	return nil
}

// ReadInt64 decodes a VarLong, capping at MaxVarLongBytes groups.
func ReadInt64(r io.Reader) (int64, error) {
	var result uint64
	var buf [1]byte
	for i := 0; i < MaxVarLongBytes; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, protoerr.Wrap(protoerr.KindIO, "read VarLong byte", err)
		}
		b := buf[0]
		result |= uint64(b&segmentBits) << (7 * uint(i))
		if b&continueBit == 0 {
			return int64(result), nil
		}
	}
	return 0, protoerr.New(protoerr.KindMalformed, "VarLong too big")
}

// WriteInt64 writes v as a minimal-length VarLong.
func WriteInt64(w io.Writer, v int64) error {
	u := uint64(v)
	var buf [MaxVarLongBytes]byte
	n := 0
	for {
		b := byte(u & segmentBits)
		u >>= 7
		if u != 0 {
			b |= continueBit
		}
		buf[n] = b
		n++
		if u == 0 {
			break
		}
	}
	_, err := w.Write(buf[:n])
	if err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write VarLong", err)
	}
	return nil
}

// Size returns the number of bytes WriteInt32 would emit for v, needed by
// variable-prefix length calculations in the frame layer.
func Size(v int32) int {
	u := uint32(v)
	n := 1
	for u >>= 7; u != 0; u >>= 7 {
		n++
	}
	return n
}

// SizeInt64 is Size for VarLong values.
func SizeInt64(v int64) int {
	u := uint64(v)
	n := 1
	for u >>= 7; u != 0; u >>= 7 {
		n++
	}
	return n
}
