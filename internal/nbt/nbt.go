// Package nbt implements the Minecraft NBT named-tag binary tree, used for
// chunk heightmaps, entity metadata blobs and the like.
//
// An NBT structure can be built with code such as:
//
//	root := Compound{
//	  "Data": Compound{
//	    "Byte": &Byte{1},
//	    "List": &List{TagByte, []ITag{&Byte{1}, &Byte{2}}},
//	  },
//	}
//
// The root of a structure read with Read is always a Compound with an empty
// name, matching every NBT document the Notchian server ever produces.
package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/opencraft-go/corecraft/internal/protoerr"
)

// ITag is the interface implemented by every node in an NBT tree.
type ITag interface {
	String() string
	Type() TagType
	Read(io.Reader) error
	Write(io.Writer) error
	Lookup(path string) ITag
}

// TagType is the one-byte header identifying the kind of tag that follows.
type TagType byte

const (
	TagEnd       = TagType(0)
	TagByte      = TagType(1)
	TagShort     = TagType(2)
	TagInt       = TagType(3)
	TagLong      = TagType(4)
	TagFloat     = TagType(5)
	TagDouble    = TagType(6)
	TagByteArray = TagType(7)
	TagString    = TagType(8)
	TagList      = TagType(9)
	TagCompound  = TagType(10)
	TagIntArray  = TagType(11)
	TagLongArray = TagType(12)
)

// NewTag creates a new zero-valued tag of the given type. TagEnd is invalid.
func (tt TagType) NewTag() (tag ITag, err error) {
	switch tt {
	case TagByte:
		tag = new(Byte)
	case TagShort:
		tag = new(Short)
	case TagInt:
		tag = new(Int)
	case TagLong:
		tag = new(Long)
	case TagFloat:
		tag = new(Float)
	case TagDouble:
		tag = new(Double)
	case TagByteArray:
		tag = new(ByteArray)
	case TagString:
		tag = new(String)
	case TagList:
		tag = new(List)
	case TagCompound:
		tag = make(Compound)
	case TagIntArray:
		tag = new(IntArray)
	case TagLongArray:
		tag = new(LongArray)
	default:
		err = protoerr.New(protoerr.KindMalformed, fmt.Sprintf("unknown NBT tag type %#x", byte(tt)))
	}
	return
}

func (tt *TagType) read(reader io.Reader) error {
	return binary.Read(reader, binary.BigEndian, tt)
}

func (tt TagType) write(writer io.Writer) error {
	return binary.Write(writer, binary.BigEndian, tt)
}

type Byte struct{ Value int8 }

func (b *Byte) String() string      { return fmt.Sprintf("Byte(%d)", b.Value) }
func (*Byte) Type() TagType         { return TagByte }
func (*Byte) Lookup(string) ITag    { return nil }
func (b *Byte) Read(r io.Reader) error  { return binary.Read(r, binary.BigEndian, &b.Value) }
func (b *Byte) Write(w io.Writer) error { return binary.Write(w, binary.BigEndian, &b.Value) }

type Short struct{ Value int16 }

func (s *Short) String() string      { return fmt.Sprintf("Short(%d)", s.Value) }
func (*Short) Type() TagType         { return TagShort }
func (*Short) Lookup(string) ITag    { return nil }
func (s *Short) Read(r io.Reader) error  { return binary.Read(r, binary.BigEndian, &s.Value) }
func (s *Short) Write(w io.Writer) error { return binary.Write(w, binary.BigEndian, &s.Value) }

type Int struct{ Value int32 }

func (i *Int) String() string      { return fmt.Sprintf("Int(%d)", i.Value) }
func (*Int) Type() TagType         { return TagInt }
func (*Int) Lookup(string) ITag    { return nil }
func (i *Int) Read(r io.Reader) error  { return binary.Read(r, binary.BigEndian, &i.Value) }
func (i *Int) Write(w io.Writer) error { return binary.Write(w, binary.BigEndian, &i.Value) }

type Long struct{ Value int64 }

func (l *Long) String() string      { return fmt.Sprintf("Long(%d)", l.Value) }
func (*Long) Type() TagType         { return TagLong }
func (*Long) Lookup(string) ITag    { return nil }
func (l *Long) Read(r io.Reader) error  { return binary.Read(r, binary.BigEndian, &l.Value) }
func (l *Long) Write(w io.Writer) error { return binary.Write(w, binary.BigEndian, &l.Value) }

type Float struct{ Value float32 }

func (f *Float) String() string      { return fmt.Sprintf("Float(%f)", f.Value) }
func (*Float) Type() TagType         { return TagFloat }
func (*Float) Lookup(string) ITag    { return nil }
func (f *Float) Read(r io.Reader) error  { return binary.Read(r, binary.BigEndian, &f.Value) }
func (f *Float) Write(w io.Writer) error { return binary.Write(w, binary.BigEndian, &f.Value) }

type Double struct{ Value float64 }

func (d *Double) String() string      { return fmt.Sprintf("Double(%f)", d.Value) }
func (*Double) Type() TagType         { return TagDouble }
func (*Double) Lookup(string) ITag    { return nil }
func (d *Double) Read(r io.Reader) error  { return binary.Read(r, binary.BigEndian, &d.Value) }
func (d *Double) Write(w io.Writer) error { return binary.Write(w, binary.BigEndian, &d.Value) }

type ByteArray struct{ Value []byte }

func (b *ByteArray) String() string   { return fmt.Sprintf("ByteArray(%x)", b.Value) }
func (*ByteArray) Type() TagType      { return TagByteArray }
func (*ByteArray) Lookup(string) ITag { return nil }

func (b *ByteArray) Read(reader io.Reader) (err error) {
	var length Int
	if err = length.Read(reader); err != nil {
		return
	}
	if length.Value < 0 {
		return protoerr.New(protoerr.KindMalformed, "NBT ByteArray negative length")
	}
	bs := make([]byte, length.Value)
	if _, err = io.ReadFull(reader, bs); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "read NBT ByteArray", err)
	}
	b.Value = bs
	return nil
}

func (b *ByteArray) Write(writer io.Writer) (err error) {
	length := Int{int32(len(b.Value))}
	if err = length.Write(writer); err != nil {
		return
	}
	_, err = writer.Write(b.Value)
	return
}

// IntArray holds a TagIntArray payload: a VarInt-free i32 count followed by
// that many big-endian i32 values.
type IntArray struct{ Value []int32 }

func (a *IntArray) String() string   { return fmt.Sprintf("IntArray(%v)", a.Value) }
func (*IntArray) Type() TagType      { return TagIntArray }
func (*IntArray) Lookup(string) ITag { return nil }

func (a *IntArray) Read(reader io.Reader) (err error) {
	var length Int
	if err = length.Read(reader); err != nil {
		return
	}
	if length.Value < 0 {
		return protoerr.New(protoerr.KindMalformed, "NBT IntArray negative length")
	}
	values := make([]int32, length.Value)
	for i := range values {
		if err = binary.Read(reader, binary.BigEndian, &values[i]); err != nil {
			return protoerr.Wrap(protoerr.KindIO, "read NBT IntArray element", err)
		}
	}
	a.Value = values
	return nil
}

func (a *IntArray) Write(writer io.Writer) (err error) {
	length := Int{int32(len(a.Value))}
	if err = length.Write(writer); err != nil {
		return
	}
	for _, v := range a.Value {
		if err = binary.Write(writer, binary.BigEndian, v); err != nil {
			return
		}
	}
	return nil
}

// LongArray holds a TagLongArray payload: an i32 count followed by that many
// big-endian i64 values.
type LongArray struct{ Value []int64 }

func (a *LongArray) String() string   { return fmt.Sprintf("LongArray(%v)", a.Value) }
func (*LongArray) Type() TagType      { return TagLongArray }
func (*LongArray) Lookup(string) ITag { return nil }

func (a *LongArray) Read(reader io.Reader) (err error) {
	var length Int
	if err = length.Read(reader); err != nil {
		return
	}
	if length.Value < 0 {
		return protoerr.New(protoerr.KindMalformed, "NBT LongArray negative length")
	}
	values := make([]int64, length.Value)
	for i := range values {
		if err = binary.Read(reader, binary.BigEndian, &values[i]); err != nil {
			return protoerr.Wrap(protoerr.KindIO, "read NBT LongArray element", err)
		}
	}
	a.Value = values
	return nil
}

func (a *LongArray) Write(writer io.Writer) (err error) {
	length := Int{int32(len(a.Value))}
	if err = length.Write(writer); err != nil {
		return
	}
	for _, v := range a.Value {
		if err = binary.Write(writer, binary.BigEndian, v); err != nil {
			return
		}
	}
	return nil
}

// String is the NBT string tag: a u16-length-prefixed UTF-8 byte run. This is
// distinct from the protocol String in internal/proto, which is VarInt-prefixed.
type String struct{ Value string }

func (s *String) String() string   { return fmt.Sprintf("String(%q)", s.Value) }
func (*String) Type() TagType      { return TagString }
func (*String) Lookup(string) ITag { return nil }

func (s *String) Read(reader io.Reader) (err error) {
	var length Short
	if err = length.Read(reader); err != nil {
		return
	}
	if length.Value < 0 {
		return protoerr.New(protoerr.KindMalformed, "NBT String negative length")
	}
	bs := make([]byte, length.Value)
	if _, err = io.ReadFull(reader, bs); err != nil {
		return protoerr.Wrap(protoerr.KindIO, "read NBT String", err)
	}
	if !utf8.Valid(bs) {
		return protoerr.New(protoerr.KindMalformed, "NBT String is not valid UTF-8")
	}
	s.Value = string(bs)
	return nil
}

func (s *String) Write(writer io.Writer) (err error) {
	length := Short{int16(len(s.Value))}
	if err = length.Write(writer); err != nil {
		return
	}
	_, err = writer.Write([]byte(s.Value))
	return
}

// List is a homogeneous sequence of tags sharing one TagType.
type List struct {
	TagType TagType
	Value   []ITag
}

func (l *List) String() string {
	subStrs := make([]string, len(l.Value))
	for i := range l.Value {
		subStrs[i] = l.Value[i].String()
	}
	return fmt.Sprintf("List(%s)", strings.Join(subStrs, ", "))
}

func (*List) Type() TagType      { return TagList }
func (*List) Lookup(string) ITag { return nil }

func (l *List) Read(reader io.Reader) (err error) {
	if err = l.TagType.read(reader); err != nil {
		return
	}
	var length Int
	if err = length.Read(reader); err != nil {
		return
	}
	if length.Value < 0 {
		return protoerr.New(protoerr.KindMalformed, "NBT List negative length")
	}
	if length.Value == 0 {
		l.Value = nil
		return nil
	}
	list := make([]ITag, length.Value)
	for i := range list {
		tag, terr := l.TagType.NewTag()
		if terr != nil {
			return terr
		}
		if err = tag.Read(reader); err != nil {
			return
		}
		list[i] = tag
	}
	l.Value = list
	return nil
}

func (l *List) Write(writer io.Writer) (err error) {
	if len(l.Value) == 0 {
		if err = TagEnd.write(writer); err != nil {
			return
		}
		return (&Int{0}).Write(writer)
	}
	if err = l.TagType.write(writer); err != nil {
		return
	}
	length := Int{int32(len(l.Value))}
	if err = length.Write(writer); err != nil {
		return
	}
	for _, tag := range l.Value {
		if tag.Type() != l.TagType {
			return protoerr.New(protoerr.KindMalformed, "NBT List is not homogeneous")
		}
		if err = tag.Write(writer); err != nil {
			return
		}
	}
	return nil
}

// Compound is an unordered set of named tags terminated on the wire by a
// TagEnd marker.
type Compound map[string]ITag

func (c Compound) String() string {
	subStrs := make([]string, 0, len(c))
	for k, v := range c {
		subStrs = append(subStrs, fmt.Sprintf("%q: %s", k, v))
	}
	return fmt.Sprintf("Compound(%s)", strings.Join(subStrs, ", "))
}

func NewCompound() Compound { return make(Compound) }

func (Compound) Type() TagType { return TagCompound }

func readTagAndName(reader io.Reader) (tag ITag, name string, err error) {
	var tagType TagType
	if err = tagType.read(reader); err != nil {
		return nil, "", protoerr.Wrap(protoerr.KindIO, "read NBT tag header", err)
	}
	if tagType == TagEnd {
		return nil, "", nil
	}
	var nameTag String
	if err = nameTag.Read(reader); err != nil {
		return
	}
	name = nameTag.Value
	if tag, err = tagType.NewTag(); err != nil {
		return
	}
	err = tag.Read(reader)
	return
}

func (c Compound) Read(reader io.Reader) (err error) {
	for k := range c {
		delete(c, k)
	}
	for {
		tag, name, terr := readTagAndName(reader)
		if terr != nil {
			return terr
		}
		if tag == nil {
			break
		}
		c[name] = tag
	}
	return nil
}

func writeTagAndName(writer io.Writer, tag ITag, name string) (err error) {
	if err = tag.Type().write(writer); err != nil {
		return
	}
	nameTag := String{name}
	if err = nameTag.Write(writer); err != nil {
		return
	}
	return tag.Write(writer)
}

func (c Compound) Write(writer io.Writer) (err error) {
	for name, tag := range c {
		if err = writeTagAndName(writer, tag, name); err != nil {
			return
		}
	}
	return TagEnd.write(writer)
}

func (c Compound) Lookup(path string) (tag ITag) {
	components := strings.SplitN(path, "/", 2)
	tag, ok := c[components[0]]
	if !ok {
		return nil
	}
	if len(components) >= 2 {
		return tag.Lookup(components[1])
	}
	return tag
}

func (c Compound) Set(key string, tag ITag) { c[key] = tag }

// Read reads an unnamed root Compound, as every NBT document on the wire is.
func Read(reader io.Reader) (Compound, error) {
	itag, name, err := readTagAndName(reader)
	if err != nil {
		return nil, err
	}
	if name != "" {
		return nil, protoerr.New(protoerr.KindMalformed, "NBT root name should be empty")
	}
	if itag == nil {
		return nil, protoerr.New(protoerr.KindMalformed, "NBT end tag found at top level")
	}
	tag, ok := itag.(Compound)
	if !ok {
		return nil, protoerr.New(protoerr.KindMalformed, "NBT top level tag is not a Compound")
	}
	return tag, nil
}

// Write writes tag as the unnamed root Compound.
func Write(writer io.Writer, tag Compound) error {
	return writeTagAndName(writer, tag, "")
}
