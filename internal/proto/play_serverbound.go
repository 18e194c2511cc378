package proto

// TeleportConfirm acknowledges a clientbound PlayerPositionAndLook.
type TeleportConfirm struct {
	Packet
	TeleportID VarInt
}

// ClientSettings captures the player's locale/view-distance/chat/skin prefs.
type ClientSettings struct {
	Packet
	Locale        string
	ViewDistance  int8
	ChatMode      VarInt
	ChatColors    bool
	SkinParts     uint8
	MainHand      VarInt
}

// KeepAliveResponse answers a clientbound KeepAlive with the same id.
type KeepAliveResponse struct {
	Packet
	ID int64
}

// PlayerPosition is sent when only position changes.
type PlayerPosition struct {
	Packet
	X, Y, Z  float64
	OnGround bool
}

// PlayerPositionAndRotation is sent when both position and rotation change.
type PlayerPositionAndRotation struct {
	Packet
	X, Y, Z     float64
	Yaw, Pitch  float32
	OnGround    bool
}

// PlayerRotation is sent when only rotation changes.
type PlayerRotation struct {
	Packet
	Yaw, Pitch float32
	OnGround   bool
}

// PlayerMovement is sent when neither position nor rotation changes (an
// on-ground flag refresh only).
type PlayerMovement struct {
	Packet
	OnGround bool
}

// PlayerDiggingStatus mirrors the client's dig-action enum.
type PlayerDiggingStatus VarInt

const (
	DiggingStarted PlayerDiggingStatus = iota
	DiggingCancelled
	DiggingFinished
	DropItemStack
	DropItem
	ShootArrowOrFinishEating
	SwapItemInHand
)

// PlayerDigging reports a dig start/cancel/finish at a block position. The
// Status field carries a PlayerDiggingStatus value but is typed VarInt so
// the generic serializer encodes it with VarInt grouping rather than fixed
// big-endian width.
type PlayerDigging struct {
	Packet
	Status VarInt
	Pos    Position
	Face   int8
}

// PlayerBlockPlacement reports a block placement attempt.
type PlayerBlockPlacement struct {
	Packet
	Hand                             VarInt
	Pos                              Position
	Face                             VarInt
	CursorX, CursorY, CursorZ        float32
	InsideBlock                      bool
}

// ChatMessageServerbound is a chat line typed by the player.
type ChatMessageServerbound struct {
	Packet
	Message string
}

// PluginMessageServerbound is an opaque channel-addressed payload.
type PluginMessageServerbound struct {
	Packet
	Channel string
	Data    Bytes
}

// HeldItemChangeServerbound reports the newly selected hotbar slot.
type HeldItemChangeServerbound struct {
	Packet
	Slot int16
}

// CreativeInventoryAction sets a slot directly (creative mode only).
type CreativeInventoryAction struct {
	Packet
	Slot     int16
	ClickedItem ItemStack
}

// EntityAction reports a non-movement entity state change (sneak, sprint,
// leave bed, jump-with-horse, ...); Action is a VarInt enum discriminant.
type EntityAction struct {
	Packet
	EntityID  VarInt
	Action    VarInt
	JumpBoost VarInt
}

// AnimationServerbound reports a hand swing.
type AnimationServerbound struct {
	Packet
	Hand VarInt
}

func init() {
	Register(PhasePlay, Serverbound,
		&TeleportConfirm{},
		&ClientSettings{},
		&KeepAliveResponse{},
		&PlayerPosition{},
		&PlayerPositionAndRotation{},
		&PlayerRotation{},
		&PlayerMovement{},
		&PlayerDigging{},
		&PlayerBlockPlacement{},
		&ChatMessageServerbound{},
		&PluginMessageServerbound{},
		&HeldItemChangeServerbound{},
		&CreativeInventoryAction{},
		&EntityAction{},
		&AnimationServerbound{},
	)
}
