package proto

import (
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/opencraft-go/corecraft/internal/nbt"
	"github.com/opencraft-go/corecraft/internal/protoerr"
	"github.com/opencraft-go/corecraft/internal/varint"
)

// NBTCompound embeds an unnamed NBT root compound as a packet field.
type NBTCompound nbt.Compound

func (c *NBTCompound) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	compound, err := nbt.Read(reader)
	if err != nil {
		return err
	}
	*c = NBTCompound(compound)
	return nil
}

func (c *NBTCompound) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	return nbt.Write(writer, nbt.Compound(*c))
}

// Int32Array is a VarInt-count-prefixed array of big-endian i32 values, used
// for the chunk biome array.
type Int32Array []int32

func (a *Int32Array) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	n, err := varint.ReadInt32(reader)
	if err != nil {
		return err
	}
	if n < 0 || n > 1<<16 {
		return protoerr.New(protoerr.KindMalformed, "int32 array length out of range")
	}
	values := make([]int32, n)
	for i := range values {
		if values[i], err = ps.ReadInt32Fixed(reader); err != nil {
			return err
		}
	}
	*a = values
	return nil
}

func (a *Int32Array) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	if err := varint.WriteInt32(writer, int32(len(*a))); err != nil {
		return err
	}
	for _, v := range *a {
		if err := ps.WriteInt32Fixed(writer, v); err != nil {
			return err
		}
	}
	return nil
}

// CompoundList is a VarInt-count-prefixed array of NBT compounds, used for a
// chunk's block-entity list.
type CompoundList []nbt.Compound

func (l *CompoundList) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	n, err := varint.ReadInt32(reader)
	if err != nil {
		return err
	}
	if n < 0 || n > 4096 {
		return protoerr.New(protoerr.KindMalformed, "compound list length out of range")
	}
	items := make([]nbt.Compound, n)
	for i := range items {
		compound, err := nbt.Read(reader)
		if err != nil {
			return err
		}
		items[i] = compound
	}
	*l = items
	return nil
}

func (l *CompoundList) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	if err := varint.WriteInt32(writer, int32(len(*l))); err != nil {
		return err
	}
	for _, c := range *l {
		if err := nbt.Write(writer, c); err != nil {
			return err
		}
	}
	return nil
}

// Bytes is a VarInt-length-prefixed raw byte string, used for the RSA
// ciphertexts and public key DER blobs exchanged during login. It implements
// IMarshaler since a bare []byte field has no Kind the generic switch can
// dispatch on its own (mirrors the teacher's ItemSlot/ChunkData escape hatch
// in proto/proto.go).
type Bytes []byte

func (b *Bytes) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	n, err := varint.ReadInt32(reader)
	if err != nil {
		return err
	}
	if n < 0 || n > 1<<20 {
		return protoerr.New(protoerr.KindMalformed, "byte blob length out of range")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "read byte blob", err)
	}
	*b = buf
	return nil
}

func (b *Bytes) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	if err := varint.WriteInt32(writer, int32(len(*b))); err != nil {
		return err
	}
	_, err := writer.Write(*b)
	if err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write byte blob", err)
	}
	return nil
}

// UUID wraps google/uuid.UUID for wire transport as two raw big-endian u64
// halves, the format every Java Edition UUID-bearing packet field uses.
type UUID uuid.UUID

func (u *UUID) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	var buf [16]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "read UUID", err)
	}
	copy(u[:], buf[:])
	return nil
}

func (u *UUID) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	if _, err := writer.Write(u[:]); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write UUID", err)
	}
	return nil
}

// Std returns the google/uuid view of u.
func (u UUID) Std() uuid.UUID { return uuid.UUID(u) }

// FromStd wraps a google/uuid.UUID for wire transport.
func FromStd(id uuid.UUID) UUID { return UUID(id) }

// Position packs a block coordinate into the 64-bit X:26 Z:26 Y:12 layout
// spec §3/§6 defines, sign-extending each field on decode.
type Position struct {
	X, Z int32
	Y    int32
}

func (p Position) Pack() uint64 {
	x := uint64(uint32(p.X)) & 0x3ffffff
	z := uint64(uint32(p.Z)) & 0x3ffffff
	y := uint64(uint32(p.Y)) & 0xfff
	return x<<38 | z<<12 | y
}

func UnpackPosition(v uint64) Position {
	x := signExtend(int64(v>>38), 26)
	z := signExtend(int64(v>>12), 26)
	y := signExtend(int64(v), 12)
	return Position{X: int32(x), Z: int32(z), Y: int32(y)}
}

func signExtend(v int64, bits uint) int64 {
	v &= (1 << bits) - 1
	shift := 64 - bits
	return v << shift >> shift
}

func (p *Position) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	v, err := ps.ReadUint64(reader)
	if err != nil {
		return err
	}
	*p = UnpackPosition(v)
	return nil
}

func (p *Position) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	return ps.WriteUint64(writer, p.Pack())
}

// BString255 is a protocol String bounded to 255 characters (not bytes), the
// BString<N> wrapper spec §3/§4.2 requires for the Handshake address field.
type BString255 string

func (s *BString255) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	v, err := ps.ReadBoundedString(reader, 255)
	if err != nil {
		return err
	}
	*s = BString255(v)
	return nil
}

func (s *BString255) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	return ps.WriteString(writer, string(*s))
}

// BString20 is a protocol String bounded to 20 characters, used for the
// Encryption Request server_id field (always empty in practice).
type BString20 string

func (s *BString20) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	v, err := ps.ReadBoundedString(reader, 20)
	if err != nil {
		return err
	}
	*s = BString20(v)
	return nil
}

func (s *BString20) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	return ps.WriteString(writer, string(*s))
}

// BString16 is a protocol String bounded to 16 characters, used for player
// usernames.
type BString16 string

func (s *BString16) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	v, err := ps.ReadBoundedString(reader, 16)
	if err != nil {
		return err
	}
	*s = BString16(v)
	return nil
}

func (s *BString16) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	return ps.WriteString(writer, string(*s))
}

// Angle encodes a rotation as one byte: the fraction of a full turn,
// (degrees/360) mod 1, scaled to 256 steps.
type Angle uint8

func AngleFromDegrees(degrees float32) Angle {
	frac := degrees / 360.0
	frac -= math.Floor(float64(frac))
	return Angle(uint8(frac * 256))
}

func (a Angle) Degrees() float32 {
	return float32(a) * 360.0 / 256.0
}

// writeVarIntLen writes n as a VarInt length prefix; readVarIntLen reads one
// and rejects values outside [0, max]. Neither is called within the package:
// slice types such as Declare Commands' node list carry their own
// IMarshaler.
func writeVarIntLen(w io.Writer, n int) error {
	return varint.WriteInt32(w, int32(n))
}

func readVarIntLen(r io.Reader, max int32) (int32, error) {
	n, err := varint.ReadInt32(r)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > max {
		return 0, protoerr.New(protoerr.KindMalformed, "array length out of range")
	}
	return n, nil
}
