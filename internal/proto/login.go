package proto

// LoginStart is the first Login-phase packet: the client's chosen username.
type LoginStart struct {
	Packet
	Name BString16
}

// EncryptionResponse answers an EncryptionRequest with RSA-encrypted values.
type EncryptionResponse struct {
	Packet
	SharedSecret Bytes
	VerifyToken  Bytes
}

// Disconnect closes the connection with a user-visible reason (valid in
// Login and Play phases).
type Disconnect struct {
	Packet
	Reason string
}

// EncryptionRequest begins the RSA key exchange (spec §4.4 steps 2-3).
type EncryptionRequest struct {
	Packet
	ServerID    BString20
	PublicKey   Bytes
	VerifyToken Bytes
}

// LoginSuccess transitions the connection to Play.
type LoginSuccess struct {
	Packet
	UUID     UUID
	Username BString16
}

// SetCompression installs the zlib compression threshold for all further
// framing (spec §4.3/§4.4 step 9).
type SetCompression struct {
	Packet
	Threshold VarInt
}

func init() {
	Register(PhaseLogin, Serverbound, &LoginStart{}, &EncryptionResponse{})
	Register(PhaseLogin, Clientbound, &Disconnect{}, &EncryptionRequest{}, &LoginSuccess{}, &SetCompression{})
}
