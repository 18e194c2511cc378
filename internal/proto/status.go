package proto

// StatusRequest asks for the JSON server-list document. It carries no
// fields.
type StatusRequest struct {
	Packet
}

// StatusResponseBody (clientbound StatusResponse) carries the JSON document as
// a plain protocol string; internal/chat builds the document.
type StatusResponseBody struct {
	Packet
	JSON string
}

// PingRequest/PongResponse round-trip an opaque payload to measure latency.
type PingRequest struct {
	Packet
	Payload int64
}

type PongResponse struct {
	Packet
	Payload int64
}

func init() {
	Register(PhaseStatus, Serverbound, &StatusRequest{}, &PingRequest{})
	Register(PhaseStatus, Clientbound, &StatusResponseBody{}, &PongResponse{})
}
