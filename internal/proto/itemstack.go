package proto

import (
	"io"

	"github.com/opencraft-go/corecraft/internal/nbt"
	"github.com/opencraft-go/corecraft/internal/protoerr"
	"github.com/opencraft-go/corecraft/internal/varint"
)

// ItemStack is a single inventory slot: either empty, or an item id, a
// count, and an optional NBT compound of extra data. It implements
// IMarshaler because its wire shape (a presence bool gating the rest) isn't
// expressible through the generic field walk, the same escape hatch the
// teacher's ItemSlot type needed in proto/proto.go.
type ItemStack struct {
	Present bool
	ItemID  VarInt
	Count   int8
	NBT     nbt.Compound
}

// Empty is the zero-value "no item" slot.
var Empty = ItemStack{}

func (s *ItemStack) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	present, err := ps.ReadBool(reader)
	if err != nil {
		return err
	}
	s.Present = present
	if !present {
		s.ItemID, s.Count, s.NBT = 0, 0, nil
		return nil
	}
	id, err := varint.ReadInt32(reader)
	if err != nil {
		return err
	}
	s.ItemID = VarInt(id)
	count, err := ps.ReadInt8(reader)
	if err != nil {
		return err
	}
	s.Count = count

	hasNBT, err := ps.ReadBool(reader)
	if err != nil {
		return err
	}
	if !hasNBT {
		s.NBT = nil
		return nil
	}
	compound, err := nbt.Read(reader)
	if err != nil {
		return err
	}
	s.NBT = compound
	return nil
}

func (s *ItemStack) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	if err := ps.WriteBool(writer, s.Present); err != nil {
		return err
	}
	if !s.Present {
		return nil
	}
	if err := varint.WriteInt32(writer, int32(s.ItemID)); err != nil {
		return err
	}
	if err := ps.WriteInt8(writer, s.Count); err != nil {
		return err
	}
	if s.NBT == nil {
		return ps.WriteBool(writer, false)
	}
	if err := ps.WriteBool(writer, true); err != nil {
		return err
	}
	return nbt.Write(writer, s.NBT)
}

// ItemStackSlice is a VarInt-count-prefixed array of slots, used by
// WindowItems (play_clientbound.go WindowItems.Slots). The count is written
// and read as a VarInt; decoding rejects counts outside 0..256.
type ItemStackSlice []ItemStack

func (s *ItemStackSlice) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	n, err := varint.ReadInt32(reader)
	if err != nil {
		return err
	}
	if n < 0 || n > 256 {
		return protoerr.New(protoerr.KindMalformed, "item slice length out of range")
	}
	items := make([]ItemStack, n)
	for i := range items {
		if err := items[i].MinecraftUnmarshal(reader, ps); err != nil {
			return err
		}
	}
	*s = items
	return nil
}

func (s *ItemStackSlice) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	if err := varint.WriteInt32(writer, int32(len(*s))); err != nil {
		return err
	}
	for i := range *s {
		if err := (*s)[i].MinecraftMarshal(writer, ps); err != nil {
			return err
		}
	}
	return nil
}

