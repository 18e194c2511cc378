package proto

// NextState is the Handshake packet's declared-discriminant enum (spec §3
// "Session state", §4.2 "enums with explicit discriminants").
type NextState VarInt

const (
	NextStateStatus NextState = 1
	NextStateLogin  NextState = 2
)

// Handshake is the sole Handshake-phase packet: protocol version, the
// address/port the client believes it dialed, and the requested next phase.
type Handshake struct {
	Packet
	Protocol VarInt
	Address  BString255
	Port     uint16
	Next     VarInt
}

func init() {
	Register(PhaseHandshake, Serverbound, &Handshake{})
}
