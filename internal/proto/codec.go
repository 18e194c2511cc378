package proto

import (
	"bytes"

	"github.com/opencraft-go/corecraft/internal/protoerr"
	"github.com/opencraft-go/corecraft/internal/varint"
)

// DecodePacket turns one frame body (as produced by frame.Conn.ReadFrame)
// into a typed packet: the leading VarInt is the catalog discriminant for
// (phase, direction), the remainder is walked by a Serializer.
func DecodePacket(phase Phase, direction Direction, body []byte) (IPacket, error) {
	r := bytes.NewReader(body)
	id, err := varint.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	pkt, err := New(phase, direction, id)
	if err != nil {
		return nil, err
	}
	var ps Serializer
	if err := ps.ReadBody(r, pkt); err != nil {
		return nil, protoerr.Wrap(protoerr.KindMalformed, "decode packet body", err)
	}
	return pkt, nil
}

// EncodePacket renders pkt as one frame body: its catalog discriminant
// followed by its fields, ready for frame.Conn.WriteFrame.
func EncodePacket(phase Phase, direction Direction, pkt IPacket) ([]byte, error) {
	id, err := TypeID(phase, direction, pkt)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := varint.WriteInt32(&buf, id); err != nil {
		return nil, err
	}
	var ps Serializer
	if err := ps.WriteBody(&buf, pkt); err != nil {
		return nil, protoerr.Wrap(protoerr.KindProtocol, "encode packet body", err)
	}
	return buf.Bytes(), nil
}
