package proto

import (
	"fmt"
	"reflect"

	"github.com/opencraft-go/corecraft/internal/protoerr"
)

// Phase is one of the four session states; packet identity is phase
// dependent (spec §3 "Session state").
type Phase int

const (
	PhaseHandshake Phase = iota
	PhaseStatus
	PhaseLogin
	PhasePlay
)

func (p Phase) String() string {
	switch p {
	case PhaseHandshake:
		return "handshake"
	case PhaseStatus:
		return "status"
	case PhaseLogin:
		return "login"
	case PhasePlay:
		return "play"
	default:
		return "unknown"
	}
}

// Direction is which side originates the packet.
type Direction int

const (
	Serverbound Direction = iota
	Clientbound
)

// IPacket is the marker interface every packet variant implements. It
// carries no methods of its own (the wire id and field list come from the
// catalog registration below) — this mirrors the teacher's IPacket in
// proto/proto.go, generalized from a single flat table to one table per
// (phase, direction) pair since packet identity here is phase-dependent.
type IPacket interface {
	isPacket()
}

// Packet embeds into every concrete packet struct to satisfy IPacket.
type Packet struct{}

func (Packet) isPacket() {}

type catalogKey struct {
	phase     Phase
	direction Direction
}

type catalog struct {
	idToType map[int32]reflect.Type
	typeToID map[reflect.Type]int32
}

var catalogs = map[catalogKey]*catalog{}

// Register assigns wire id `id` to every packet type in order within a
// (phase, direction) pair. Reserved/unimplemented variants pass a pointer to
// an empty, unexported placeholder struct (e.g. &reservedServerDifficulty{})
// so the discriminant slot stays occupied (spec §4.2 "reserve their
// discriminant slot").
func Register(phase Phase, direction Direction, packets ...IPacket) {
	key := catalogKey{phase, direction}
	c, ok := catalogs[key]
	if !ok {
		c = &catalog{idToType: map[int32]reflect.Type{}, typeToID: map[reflect.Type]int32{}}
		catalogs[key] = c
	}
	for i, pkt := range packets {
		t := reflect.TypeOf(pkt)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		id := int32(i)
		c.idToType[id] = t
		c.typeToID[t] = id
	}
}

// TypeID returns the wire discriminant registered for pkt's concrete type in
// the given (phase, direction) catalog.
func TypeID(phase Phase, direction Direction, pkt IPacket) (int32, error) {
	c, ok := catalogs[catalogKey{phase, direction}]
	if !ok {
		return 0, protoerr.New(protoerr.KindProtocol, fmt.Sprintf("no packet catalog for phase %s", phase))
	}
	t := reflect.TypeOf(pkt)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	id, ok := c.typeToID[t]
	if !ok {
		return 0, protoerr.New(protoerr.KindProtocol, fmt.Sprintf("packet type %s not registered for phase %s", t, phase))
	}
	return id, nil
}

// New allocates a zero-valued packet for the given wire id in (phase,
// direction), returning protoerr.KindProtocol if the id is unknown.
func New(phase Phase, direction Direction, id int32) (IPacket, error) {
	c, ok := catalogs[catalogKey{phase, direction}]
	if !ok {
		return nil, protoerr.New(protoerr.KindProtocol, fmt.Sprintf("no packet catalog for phase %s", phase))
	}
	t, ok := c.idToType[id]
	if !ok {
		return nil, protoerr.New(protoerr.KindProtocol, fmt.Sprintf("unknown packet id 0x%02x in phase %s", id, phase))
	}
	v := reflect.New(t)
	return v.Interface().(IPacket), nil
}
