// Package proto implements the Minecraft Java Edition packet catalog (C2):
// the typed packet variants for each of the four session phases, and a
// reflection-driven (de)serializer over the primitive codec (C1).
//
// The serializer's shape — a struct walked field-by-field through a shared
// reflect.Value switch, with an escape hatch for types that know how to
// (de)serialize themselves — is carried over from the teacher's
// proto/serialize.go PacketSerializer, generalized from the teacher's
// fixed-width, UCS-2-string Beta protocol to VarInt discriminants, VarInt
// length-prefixed UTF-8 strings, and typed VarInt/VarLong wire integers.
package proto

import (
	"encoding/binary"
	"io"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/opencraft-go/corecraft/internal/protoerr"
	"github.com/opencraft-go/corecraft/internal/varint"
)

// VarInt and VarLong are distinct wire types from fixed-width int32/int64:
// struct fields declared with these types are encoded with the 7-bit grouped
// encoding instead of fixed big-endian width.
type VarInt int32
type VarLong int64

var (
	varIntType  = reflect.TypeOf(VarInt(0))
	varLongType = reflect.TypeOf(VarLong(0))
)

// IMarshaler lets a field customize its own wire representation, the same
// escape hatch the teacher's IMarshaler interface provides for struct and
// slice fields the generic switch cannot handle.
type IMarshaler interface {
	MinecraftUnmarshal(reader io.Reader, ps *Serializer) error
	MinecraftMarshal(writer io.Writer, ps *Serializer) error
}

// Serializer reads and writes packet bodies. It holds no state across calls
// and is safe to use concurrently, unlike the teacher's PacketSerializer
// (whose scratch buffer forced single-goroutine use) — field widths here are
// all known up front so there is nothing to keep in scratch space.
type Serializer struct{}

func (ps *Serializer) readData(reader io.Reader, value reflect.Value) (err error) {
	typ := value.Type()
	switch typ {
	case varIntType:
		v, err := varint.ReadInt32(reader)
		if err != nil {
			return err
		}
		value.SetInt(int64(v))
		return nil
	case varLongType:
		v, err := varint.ReadInt64(reader)
		if err != nil {
			return err
		}
		value.SetInt(v)
		return nil
	}

	if value.CanAddr() {
		if valueMarshaller, ok := value.Addr().Interface().(IMarshaler); ok {
			return valueMarshaller.MinecraftUnmarshal(reader, ps)
		}
	}

	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			value.Set(reflect.New(typ.Elem()))
		}
		return ps.readData(reader, value.Elem())

	case reflect.Struct:
		for i := 0; i < value.NumField(); i++ {
			if err = ps.readData(reader, value.Field(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice:
		return protoerr.New(protoerr.KindProtocol, "slice field without IMarshaler")

	case reflect.Bool:
		v, err := ps.ReadBool(reader)
		if err != nil {
			return err
		}
		value.SetBool(v)

	case reflect.Int8:
		v, err := ps.ReadInt8(reader)
		if err != nil {
			return err
		}
		value.SetInt(int64(v))
	case reflect.Int16:
		v, err := ps.ReadInt16(reader)
		if err != nil {
			return err
		}
		value.SetInt(int64(v))
	case reflect.Int32:
		v, err := ps.ReadInt32Fixed(reader)
		if err != nil {
			return err
		}
		value.SetInt(int64(v))
	case reflect.Int64:
		v, err := ps.ReadInt64Fixed(reader)
		if err != nil {
			return err
		}
		value.SetInt(v)
	case reflect.Uint8:
		v, err := ps.ReadUint8(reader)
		if err != nil {
			return err
		}
		value.SetUint(uint64(v))
	case reflect.Uint16:
		v, err := ps.ReadUint16(reader)
		if err != nil {
			return err
		}
		value.SetUint(uint64(v))
	case reflect.Uint32:
		v, err := ps.ReadUint32(reader)
		if err != nil {
			return err
		}
		value.SetUint(uint64(v))
	case reflect.Uint64:
		v, err := ps.ReadUint64(reader)
		if err != nil {
			return err
		}
		value.SetUint(v)

	case reflect.Float32:
		v, err := ps.ReadFloat32(reader)
		if err != nil {
			return err
		}
		value.SetFloat(float64(v))
	case reflect.Float64:
		v, err := ps.ReadFloat64(reader)
		if err != nil {
			return err
		}
		value.SetFloat(v)

	case reflect.String:
		s, err := ps.ReadString(reader, 1<<21)
		if err != nil {
			return err
		}
		value.SetString(s)

	default:
		return protoerr.New(protoerr.KindProtocol, "unimplemented packet field kind "+value.Kind().String())
	}
	return nil
}

func (ps *Serializer) writeData(writer io.Writer, value reflect.Value) (err error) {
	typ := value.Type()
	switch typ {
	case varIntType:
		return varint.WriteInt32(writer, int32(value.Int()))
	case varLongType:
		return varint.WriteInt64(writer, value.Int())
	}

	if value.CanAddr() {
		if valueMarshaller, ok := value.Addr().Interface().(IMarshaler); ok {
			return valueMarshaller.MinecraftMarshal(writer, ps)
		}
	}

	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return protoerr.New(protoerr.KindProtocol, "nil pointer packet field")
		}
		return ps.writeData(writer, value.Elem())

	case reflect.Struct:
		for i := 0; i < value.NumField(); i++ {
			if err = ps.writeData(writer, value.Field(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice:
		return protoerr.New(protoerr.KindProtocol, "slice field without IMarshaler")

	case reflect.Bool:
		return ps.WriteBool(writer, value.Bool())
	case reflect.Int8:
		return ps.WriteInt8(writer, int8(value.Int()))
	case reflect.Int16:
		return ps.WriteInt16(writer, int16(value.Int()))
	case reflect.Int32:
		return ps.WriteInt32Fixed(writer, int32(value.Int()))
	case reflect.Int64:
		return ps.WriteInt64Fixed(writer, value.Int())
	case reflect.Uint8:
		return ps.WriteUint8(writer, uint8(value.Uint()))
	case reflect.Uint16:
		return ps.WriteUint16(writer, uint16(value.Uint()))
	case reflect.Uint32:
		return ps.WriteUint32(writer, uint32(value.Uint()))
	case reflect.Uint64:
		return ps.WriteUint64(writer, value.Uint())
	case reflect.Float32:
		return ps.WriteFloat32(writer, float32(value.Float()))
	case reflect.Float64:
		return ps.WriteFloat64(writer, value.Float())
	case reflect.String:
		return ps.WriteString(writer, value.String())
	default:
		return protoerr.New(protoerr.KindProtocol, "unimplemented packet field kind "+value.Kind().String())
	}
}

// ReadBody decodes pkt's fields (in declared order) from reader. The VarInt
// discriminant itself is handled by the phase dispatcher, not here.
func (ps *Serializer) ReadBody(reader io.Reader, pkt any) error {
	v := reflect.ValueOf(pkt)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return protoerr.New(protoerr.KindProtocol, "packet not passed as a non-nil pointer")
	}
	return ps.readData(reader, v.Elem())
}

// WriteBody encodes pkt's fields (in declared order) to writer.
func (ps *Serializer) WriteBody(writer io.Writer, pkt any) error {
	v := reflect.Indirect(reflect.ValueOf(pkt))
	return ps.writeData(writer, v)
}

// --- primitive reads/writes, big-endian fixed width per spec §4.1 ---

func (ps *Serializer) ReadBool(r io.Reader) (bool, error) {
	v, err := ps.ReadUint8(r)
	return v != 0, err
}

func (ps *Serializer) WriteBool(w io.Writer, v bool) error {
	if v {
		return ps.WriteUint8(w, 1)
	}
	return ps.WriteUint8(w, 0)
}

func (ps *Serializer) ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, protoerr.Wrap(protoerr.KindIO, "read u8", err)
	}
	return buf[0], nil
}

func (ps *Serializer) WriteUint8(w io.Writer, v uint8) error {
	if _, err := w.Write([]byte{v}); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write u8", err)
	}
	return nil
}

func (ps *Serializer) ReadInt8(r io.Reader) (int8, error) {
	v, err := ps.ReadUint8(r)
	return int8(v), err
}

func (ps *Serializer) WriteInt8(w io.Writer, v int8) error {
	return ps.WriteUint8(w, uint8(v))
}

func (ps *Serializer) ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, protoerr.Wrap(protoerr.KindIO, "read u16", err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (ps *Serializer) WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write u16", err)
	}
	return nil
}

func (ps *Serializer) ReadInt16(r io.Reader) (int16, error) {
	v, err := ps.ReadUint16(r)
	return int16(v), err
}

func (ps *Serializer) WriteInt16(w io.Writer, v int16) error {
	return ps.WriteUint16(w, uint16(v))
}

func (ps *Serializer) ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, protoerr.Wrap(protoerr.KindIO, "read u32", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (ps *Serializer) WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write u32", err)
	}
	return nil
}

func (ps *Serializer) ReadInt32Fixed(r io.Reader) (int32, error) {
	v, err := ps.ReadUint32(r)
	return int32(v), err
}

func (ps *Serializer) WriteInt32Fixed(w io.Writer, v int32) error {
	return ps.WriteUint32(w, uint32(v))
}

func (ps *Serializer) ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, protoerr.Wrap(protoerr.KindIO, "read u64", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func (ps *Serializer) WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write u64", err)
	}
	return nil
}

func (ps *Serializer) ReadInt64Fixed(r io.Reader) (int64, error) {
	v, err := ps.ReadUint64(r)
	return int64(v), err
}

func (ps *Serializer) WriteInt64Fixed(w io.Writer, v int64) error {
	return ps.WriteUint64(w, uint64(v))
}

func (ps *Serializer) ReadFloat32(r io.Reader) (float32, error) {
	v, err := ps.ReadUint32(r)
	return math.Float32frombits(v), err
}

func (ps *Serializer) WriteFloat32(w io.Writer, v float32) error {
	return ps.WriteUint32(w, math.Float32bits(v))
}

func (ps *Serializer) ReadFloat64(r io.Reader) (float64, error) {
	v, err := ps.ReadUint64(r)
	return math.Float64frombits(v), err
}

func (ps *Serializer) WriteFloat64(w io.Writer, v float64) error {
	return ps.WriteUint64(w, math.Float64bits(v))
}

// ReadString reads a VarInt-length-prefixed UTF-8 protocol string, rejecting
// a byte length above maxBytes before allocating (spec §4.1/§4.2).
func (ps *Serializer) ReadString(r io.Reader, maxBytes int32) (string, error) {
	n, err := varint.ReadInt32(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxBytes {
		return "", protoerr.New(protoerr.KindMalformed, "string length out of range")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", protoerr.Wrap(protoerr.KindIO, "read string bytes", err)
	}
	if !utf8.Valid(buf) {
		return "", protoerr.New(protoerr.KindMalformed, "string is not valid UTF-8")
	}
	return string(buf), nil
}

// ReadBoundedString is ReadString followed by the BString<N> character-count
// check (chars, not bytes) spec §4.2 requires.
func (ps *Serializer) ReadBoundedString(r io.Reader, maxChars int) (string, error) {
	s, err := ps.ReadString(r, 1<<21)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(s) > maxChars {
		return "", protoerr.New(protoerr.KindMalformed, "string exceeds maximum character count")
	}
	return s, nil
}

func (ps *Serializer) WriteString(w io.Writer, s string) error {
	if err := varint.WriteInt32(w, int32(len(s))); err != nil {
		return err
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "write string bytes", err)
	}
	return nil
}
