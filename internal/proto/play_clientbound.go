package proto

// JoinGame brings the client into the world after login.
type JoinGame struct {
	Packet
	EntityID            int32
	Gamemode            uint8
	Dimension           int32
	HashedSeed          int64
	MaxPlayers          uint8
	LevelType           string
	ViewDistance        VarInt
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
}

// Respawn re-initializes the client for a new dimension without a full
// reconnect.
type Respawn struct {
	Packet
	Dimension  int32
	HashedSeed int64
	Gamemode   uint8
	LevelType  string
}

// reservedServerDifficulty occupies ServerDifficulty's discriminant slot.
// The difficulty setting is out of scope here; this reserves the id so
// later catalog entries don't shift when it's implemented.
type reservedServerDifficulty struct {
	Packet
}

// reservedChangeGameState occupies ChangeGameState's discriminant slot
// (weather/gamemode/demo-message game-state changes), out of scope here.
type reservedChangeGameState struct {
	Packet
}

// ChunkData carries one pre-encoded chunk column. Section is left as an
// opaque pre-serialized Data blob (the packed-bits palette format is built
// by internal/world, which owns block semantics the packet catalog does
// not) — see internal/world/section.go.
type ChunkData struct {
	Packet
	ChunkX, ChunkZ int32
	FullChunk      bool
	PrimaryBitMask VarInt
	Heightmap      NBTCompound
	Biomes         Int32Array
	Data           Bytes
	BlockEntities  CompoundList
}

// BlockChange reports a single authoritative block update.
type BlockChange struct {
	Packet
	Pos     Position
	BlockID VarInt
}

// KeepAliveClientbound is the server's periodic heartbeat.
type KeepAliveClientbound struct {
	Packet
	ID int64
}

// UpdateViewPosition tells the client which chunk it's considered "in" for
// streaming purposes.
type UpdateViewPosition struct {
	Packet
	ChunkX, ChunkZ VarInt
}

// UpdateViewDistance adjusts the client's render/simulation distance.
type UpdateViewDistance struct {
	Packet
	ViewDistance VarInt
}

// PlayerPositionAndLookFlags is the bit-flag set on PlayerPositionAndLook
// indicating which fields are deltas rather than absolutes (spec §4.2
// "bit-flag sets ... single u8").
type PlayerPositionAndLookFlags uint8

const (
	FlagRelativeX PlayerPositionAndLookFlags = 1 << iota
	FlagRelativeY
	FlagRelativeZ
	FlagRelativeYaw
	FlagRelativePitch
)

// PlayerPositionAndLook teleports the client to an authoritative position.
type PlayerPositionAndLook struct {
	Packet
	X, Y, Z    float64
	Yaw, Pitch float32
	Flags      PlayerPositionAndLookFlags
	TeleportID VarInt
}

// --- per-tick entity movement diff variants (spec §4.5) ---

type EntityMovement struct {
	Packet
	EntityID VarInt
}

type EntityPosition struct {
	Packet
	EntityID       VarInt
	DX, DY, DZ     int16
	OnGround       bool
}

type EntityPositionAndRotation struct {
	Packet
	EntityID   VarInt
	DX, DY, DZ int16
	Yaw, Pitch Angle
	OnGround   bool
}

type EntityRotation struct {
	Packet
	EntityID   VarInt
	Yaw, Pitch Angle
	OnGround   bool
}

type EntityTeleport struct {
	Packet
	EntityID   VarInt
	X, Y, Z    float64
	Yaw, Pitch Angle
	OnGround   bool
}

type EntityHeadLook struct {
	Packet
	EntityID VarInt
	HeadYaw  Angle
}

// --- player list / spawn ---

type PlayerInfoAddPlayer struct {
	Packet
	UUID       UUID
	Name       BString16
	Gamemode   VarInt
	Ping       VarInt
	DisplayName string
}

type PlayerInfoUpdateLatency struct {
	Packet
	UUID UUID
	Ping VarInt
}

type PlayerInfoUpdateGamemode struct {
	Packet
	UUID     UUID
	Gamemode VarInt
}

type PlayerInfoUpdateDisplayName struct {
	Packet
	UUID        UUID
	DisplayName string
}

type PlayerInfoRemove struct {
	Packet
	UUID UUID
}

type SpawnPlayer struct {
	Packet
	EntityID   VarInt
	UUID       UUID
	X, Y, Z    float64
	Yaw, Pitch Angle
}

// EntityMetadataSkinParts is the skin-parts bit-flag metadata entry sent on
// player spawn (spec §4.2 "bit-flag sets").
type EntityMetadataSkinParts struct {
	Packet
	EntityID  VarInt
	SkinParts uint8
}

type EntityAnimationClientbound struct {
	Packet
	EntityID  VarInt
	Animation uint8
}

type EntityStatus struct {
	Packet
	EntityID VarInt
	Status   int8
}

// --- chat / title / window / misc ---

type ChatMessageClientbound struct {
	Packet
	JSON     string
	Position int8
	Sender   UUID
}

type TitleSetTitle struct {
	Packet
	JSON string
}

type TitleSetSubtitle struct {
	Packet
	JSON string
}

type TitleSetActionBar struct {
	Packet
	JSON string
}

type TitleSetDisplayTime struct {
	Packet
	FadeIn, Stay, FadeOut int32
}

type TitleReset struct {
	Packet
}

type WorldBorderInitialize struct {
	Packet
	X, Z               float64
	OldDiameter        float64
	NewDiameter        float64
	Speed              VarLong
	PortalTeleportBoundary VarInt
	WarningTime        VarInt
	WarningBlocks      VarInt
}

type PlayerListHeaderAndFooter struct {
	Packet
	HeaderJSON string
	FooterJSON string
}

type PluginMessageClientbound struct {
	Packet
	Channel string
	Data    Bytes
}

type SetSlot struct {
	Packet
	WindowID int8
	Slot     int16
	SlotData ItemStack
}

type WindowItems struct {
	Packet
	WindowID uint8
	Slots    ItemStackSlice
}

func init() {
	Register(PhasePlay, Clientbound,
		&JoinGame{},
		&reservedServerDifficulty{},
		&Respawn{},
		&ChunkData{},
		&BlockChange{},
		&KeepAliveClientbound{},
		&UpdateViewPosition{},
		&UpdateViewDistance{},
		&PlayerPositionAndLook{},
		&EntityMovement{},
		&EntityPosition{},
		&EntityPositionAndRotation{},
		&EntityRotation{},
		&EntityTeleport{},
		&EntityHeadLook{},
		&PlayerInfoAddPlayer{},
		&PlayerInfoUpdateLatency{},
		&PlayerInfoUpdateGamemode{},
		&PlayerInfoUpdateDisplayName{},
		&PlayerInfoRemove{},
		&SpawnPlayer{},
		&EntityMetadataSkinParts{},
		&EntityAnimationClientbound{},
		&EntityStatus{},
		&ChatMessageClientbound{},
		&TitleSetTitle{},
		&TitleSetSubtitle{},
		&TitleSetActionBar{},
		&TitleSetDisplayTime{},
		&TitleReset{},
		&WorldBorderInitialize{},
		&reservedChangeGameState{},
		&PlayerListHeaderAndFooter{},
		&PluginMessageClientbound{},
		&SetSlot{},
		&WindowItems{},
		&DeclareCommands{},
		&Disconnect{},
	)
}
