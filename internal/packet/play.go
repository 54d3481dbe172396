package packet

import (
	"io"

	"github.com/google/uuid"

	"github.com/ironvein/blocksrv/internal/nbt"
	"github.com/ironvein/blocksrv/internal/varint"
)

// PlayLogin is the clientbound packet that hands a finished connection
// off into the Play state.
type PlayLogin struct {
	EntityID           int32
	Hardcore           bool
	DimensionNames     []varint.Identifier
	MaxPlayers         int32
	ViewDistance       int32
	SimulationDistance int32
	ReducedDebugInfo   bool
	RespawnScreen      bool
	IsDebug            bool
	IsFlat             bool
	DimensionType      int32
	DimensionName      varint.Identifier
	SeaLevel           int32
	GameMode           byte
}

func (PlayLogin) ID() int32 { return 0x2B }
func (p PlayLogin) Encode(w io.Writer) error {
	if err := writeInt32(w, p.EntityID); err != nil {
		return err
	}
	if err := writeBool(w, p.Hardcore); err != nil {
		return err
	}
	if err := writeVarInt(w, int32(len(p.DimensionNames))); err != nil {
		return err
	}
	for _, d := range p.DimensionNames {
		if err := writeString(w, d.String()); err != nil {
			return err
		}
	}
	if err := writeVarInt(w, p.MaxPlayers); err != nil {
		return err
	}
	if err := writeVarInt(w, p.ViewDistance); err != nil {
		return err
	}
	if err := writeVarInt(w, p.SimulationDistance); err != nil {
		return err
	}
	if err := writeBool(w, p.ReducedDebugInfo); err != nil {
		return err
	}
	if err := writeBool(w, p.RespawnScreen); err != nil {
		return err
	}
	if err := writeBool(w, p.IsDebug); err != nil {
		return err
	}
	if err := writeBool(w, p.IsFlat); err != nil {
		return err
	}
	if err := writeBool(w, false); err != nil { // has death location
		return err
	}
	if err := writeVarInt(w, 0); err != nil { // portal cooldown
		return err
	}
	if err := writeVarInt(w, p.SeaLevel); err != nil {
		return err
	}
	return writeByte(w, p.GameMode)
}

// ServerLinks is the clientbound packet advertising out-of-band links
// (website, bug report, ...); the core sends an empty list.
type ServerLinks struct {
	Links []ServerLink
}

type ServerLink struct {
	Label string
	URL   string
}

func (ServerLinks) ID() int32 { return 0x43 }
func (p ServerLinks) Encode(w io.Writer) error {
	if err := writeVarInt(w, int32(len(p.Links))); err != nil {
		return err
	}
	for _, l := range p.Links {
		if err := writeBool(w, true); err != nil { // built-in label id vs text component
			return err
		}
		if err := writeVarInt(w, 0); err != nil {
			return err
		}
		if err := writeString(w, l.URL); err != nil {
			return err
		}
	}
	return nil
}

// GameEvent signals a state change to the client; EventStartWaitingChunks
// is used at login to hold the client's render loop until chunks arrive.
type GameEvent struct {
	Event byte
	Value float32
}

const EventStartWaitingChunks byte = 13

func (GameEvent) ID() int32 { return 0x22 }
func (p GameEvent) Encode(w io.Writer) error {
	if err := writeByte(w, p.Event); err != nil {
		return err
	}
	return writeFloat32(w, p.Value)
}

// SynchronizePlayerPosition is the clientbound absolute teleport; Flags
// bit0..5 indicate which fields are relative rather than absolute (the
// core always sends fully absolute, Flags = 0).
type SynchronizePlayerPosition struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	Flags      byte
	TeleportID int32
}

func (SynchronizePlayerPosition) ID() int32 { return 0x41 }
func (p SynchronizePlayerPosition) Encode(w io.Writer) error {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if err := writeFloat64(w, v); err != nil {
			return err
		}
	}
	if err := writeFloat32(w, p.Yaw); err != nil {
		return err
	}
	if err := writeFloat32(w, p.Pitch); err != nil {
		return err
	}
	if err := writeByte(w, p.Flags); err != nil {
		return err
	}
	return writeVarInt(w, p.TeleportID)
}

// AcceptPlayerPosition is the serverbound acknowledgement carrying back
// the teleport id.
type AcceptPlayerPosition struct {
	TeleportID int32
}

func (AcceptPlayerPosition) ID() int32 { return 0x00 }
func (p AcceptPlayerPosition) Encode(w io.Writer) error { return writeVarInt(w, p.TeleportID) }

func decodeAcceptPlayerPosition(r io.Reader) (Packet, error) {
	id, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	return AcceptPlayerPosition{TeleportID: id}, nil
}

// MovePlayerPos is the serverbound position-only movement update.
type MovePlayerPos struct {
	X, Y, Z  float64
	OnGround bool
}

func (MovePlayerPos) ID() int32 { return 0x1D }
func (p MovePlayerPos) Encode(w io.Writer) error {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if err := writeFloat64(w, v); err != nil {
			return err
		}
	}
	return writeBool(w, p.OnGround)
}

func decodeMovePlayerPos(r io.Reader) (Packet, error) {
	x, err := readFloat64(r)
	if err != nil {
		return nil, err
	}
	y, err := readFloat64(r)
	if err != nil {
		return nil, err
	}
	z, err := readFloat64(r)
	if err != nil {
		return nil, err
	}
	onGround, err := readBool(r)
	if err != nil {
		return nil, err
	}
	return MovePlayerPos{X: x, Y: y, Z: z, OnGround: onGround}, nil
}

// MovePlayerPosRot is the serverbound position+rotation movement update.
type MovePlayerPosRot struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	OnGround   bool
}

func (MovePlayerPosRot) ID() int32 { return 0x1E }
func (p MovePlayerPosRot) Encode(w io.Writer) error {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if err := writeFloat64(w, v); err != nil {
			return err
		}
	}
	if err := writeFloat32(w, p.Yaw); err != nil {
		return err
	}
	if err := writeFloat32(w, p.Pitch); err != nil {
		return err
	}
	return writeBool(w, p.OnGround)
}

func decodeMovePlayerPosRot(r io.Reader) (Packet, error) {
	x, err := readFloat64(r)
	if err != nil {
		return nil, err
	}
	y, err := readFloat64(r)
	if err != nil {
		return nil, err
	}
	z, err := readFloat64(r)
	if err != nil {
		return nil, err
	}
	yaw, err := readFloat32(r)
	if err != nil {
		return nil, err
	}
	pitch, err := readFloat32(r)
	if err != nil {
		return nil, err
	}
	onGround, err := readBool(r)
	if err != nil {
		return nil, err
	}
	return MovePlayerPosRot{X: x, Y: y, Z: z, Yaw: yaw, Pitch: pitch, OnGround: onGround}, nil
}

// MovePlayerRot is the serverbound rotation-only movement update.
type MovePlayerRot struct {
	Yaw, Pitch float32
	OnGround   bool
}

func (MovePlayerRot) ID() int32 { return 0x1F }
func (p MovePlayerRot) Encode(w io.Writer) error {
	if err := writeFloat32(w, p.Yaw); err != nil {
		return err
	}
	if err := writeFloat32(w, p.Pitch); err != nil {
		return err
	}
	return writeBool(w, p.OnGround)
}

func decodeMovePlayerRot(r io.Reader) (Packet, error) {
	yaw, err := readFloat32(r)
	if err != nil {
		return nil, err
	}
	pitch, err := readFloat32(r)
	if err != nil {
		return nil, err
	}
	onGround, err := readBool(r)
	if err != nil {
		return nil, err
	}
	return MovePlayerRot{Yaw: yaw, Pitch: pitch, OnGround: onGround}, nil
}

// KeepAlive is used both ways; the id field differs per direction, both
// modeled by the same struct for simplicity since the wire shape is
// identical.
type KeepAlive struct {
	ID int64
}

func (KeepAlive) ID() int32 { return 0x26 }
func (p KeepAlive) Encode(w io.Writer) error { return writeInt64(w, p.ID) }

func decodeKeepAlive(r io.Reader) (Packet, error) {
	id, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	return KeepAlive{ID: id}, nil
}

// Disconnect closes a Play-stage connection with a reason.
type Disconnect struct {
	Reason nbt.Compound
}

func (Disconnect) ID() int32 { return 0x1D }
func (p Disconnect) Encode(w io.Writer) error { return nbt.WriteNetwork(w, p.Reason) }

// SystemChat sends a server-originated chat line.
type SystemChat struct {
	Content  nbt.Compound
	Overlay  bool
}

func (SystemChat) ID() int32 { return 0x72 }
func (p SystemChat) Encode(w io.Writer) error {
	if err := nbt.WriteNetwork(w, p.Content); err != nil {
		return err
	}
	return writeBool(w, p.Overlay)
}

// DisguisedChatMessage echoes a player's own chat line back without
// going through the signed-chat pipeline; kept per the Open Question in
// spec.md §4.F. Its id and field layout are unverified against a
// current client version.
type DisguisedChatMessage struct {
	Message nbt.Compound
}

func (DisguisedChatMessage) ID() int32 { return 0x21 }
func (p DisguisedChatMessage) Encode(w io.Writer) error {
	return nbt.WriteNetwork(w, p.Message)
}

// ChatCommand is a serverbound "/"-less command line.
type ChatCommand struct {
	Command string
}

func (ChatCommand) ID() int32 { return 0x05 }
func (p ChatCommand) Encode(w io.Writer) error { return writeString(w, p.Command) }

func decodeChatCommand(r io.Reader) (Packet, error) {
	cmd, err := readString(r)
	if err != nil {
		return nil, err
	}
	return ChatCommand{Command: cmd}, nil
}

// ChatMessage is a serverbound player chat line (unsigned subset only;
// the core treats chat as disguised/echoed, not signed).
type ChatMessage struct {
	Message   string
	Timestamp int64
}

func (ChatMessage) ID() int32 { return 0x06 }
func (p ChatMessage) Encode(w io.Writer) error {
	if err := writeString(w, p.Message); err != nil {
		return err
	}
	return writeInt64(w, p.Timestamp)
}

func decodeChatMessage(r io.Reader) (Packet, error) {
	msg, err := readString(r)
	if err != nil {
		return nil, err
	}
	ts, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	return ChatMessage{Message: msg, Timestamp: ts}, nil
}

// SwingArm is the serverbound "I swung an arm" notification.
type SwingArm struct {
	Hand int32
}

func (SwingArm) ID() int32 { return 0x38 }
func (p SwingArm) Encode(w io.Writer) error { return writeVarInt(w, p.Hand) }

func decodeSwingArm(r io.Reader) (Packet, error) {
	hand, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	return SwingArm{Hand: hand}, nil
}

// Animation is the clientbound broadcast of another player's SwingArm.
type Animation struct {
	EntityID int32
	Animation byte
}

func (Animation) ID() int32 { return 0x03 }
func (p Animation) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.EntityID); err != nil {
		return err
	}
	return writeByte(w, p.Animation)
}

// PlayerAction is the serverbound digging/dropping/etc. notification.
type PlayerAction struct {
	Action   int32
	X, Y, Z  int32
	Face     byte
	Sequence int32
}

func (PlayerAction) ID() int32 { return 0x24 }
func (p PlayerAction) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.Action); err != nil {
		return err
	}
	if err := writePosition(w, p.X, p.Y, p.Z); err != nil {
		return err
	}
	if err := writeByte(w, p.Face); err != nil {
		return err
	}
	return writeVarInt(w, p.Sequence)
}

func decodePlayerAction(r io.Reader) (Packet, error) {
	action, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	x, y, z, err := readPosition(r)
	if err != nil {
		return nil, err
	}
	face, err := readByte(r)
	if err != nil {
		return nil, err
	}
	seq, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	return PlayerAction{Action: action, X: x, Y: y, Z: z, Face: face, Sequence: seq}, nil
}

// UseItemOn is the serverbound "right click on a block" notification.
type UseItemOn struct {
	Hand                          int32
	X, Y, Z                       int32
	Face                          int32
	CursorX, CursorY, CursorZ     float32
	InsideBlock                   bool
	Sequence                      int32
}

func (UseItemOn) ID() int32 { return 0x3C }
func (p UseItemOn) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.Hand); err != nil {
		return err
	}
	if err := writePosition(w, p.X, p.Y, p.Z); err != nil {
		return err
	}
	if err := writeVarInt(w, p.Face); err != nil {
		return err
	}
	if err := writeFloat32(w, p.CursorX); err != nil {
		return err
	}
	if err := writeFloat32(w, p.CursorY); err != nil {
		return err
	}
	if err := writeFloat32(w, p.CursorZ); err != nil {
		return err
	}
	if err := writeBool(w, p.InsideBlock); err != nil {
		return err
	}
	return writeVarInt(w, p.Sequence)
}

func decodeUseItemOn(r io.Reader) (Packet, error) {
	hand, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	x, y, z, err := readPosition(r)
	if err != nil {
		return nil, err
	}
	face, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	cx, err := readFloat32(r)
	if err != nil {
		return nil, err
	}
	cy, err := readFloat32(r)
	if err != nil {
		return nil, err
	}
	cz, err := readFloat32(r)
	if err != nil {
		return nil, err
	}
	inside, err := readBool(r)
	if err != nil {
		return nil, err
	}
	seq, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	return UseItemOn{
		Hand: hand, X: x, Y: y, Z: z, Face: face,
		CursorX: cx, CursorY: cy, CursorZ: cz,
		InsideBlock: inside, Sequence: seq,
	}, nil
}

// BlockAction is the clientbound block action (an action id and
// parameter for one block); kept per the Open Question in spec.md §4.F.
// Nothing in the server sends it: a block is re-synced after an
// invalid edit with UpdateSectionBlocks (see level.ResyncBlock).
type BlockAction struct {
	X, Y, Z    int32
	ActionID   byte
	ActionParam byte
	BlockType  int32
}

func (BlockAction) ID() int32 { return 0x08 }
func (p BlockAction) Encode(w io.Writer) error {
	if err := writePosition(w, p.X, p.Y, p.Z); err != nil {
		return err
	}
	if err := writeByte(w, p.ActionID); err != nil {
		return err
	}
	if err := writeByte(w, p.ActionParam); err != nil {
		return err
	}
	return writeVarInt(w, p.BlockType)
}

// SetHeldItem is the serverbound hotbar-slot-changed notification.
type SetHeldItem struct {
	Slot int16
}

func (SetHeldItem) ID() int32 { return 0x33 }
func (p SetHeldItem) Encode(w io.Writer) error { return writeInt16(w, p.Slot) }

func decodeSetHeldItem(r io.Reader) (Packet, error) {
	slot, err := readInt16(r)
	if err != nil {
		return nil, err
	}
	return SetHeldItem{Slot: slot}, nil
}

// AddEntity introduces a new entity to a viewer.
type AddEntity struct {
	EntityID   int32
	UUID       uuid.UUID
	Type       int32
	X, Y, Z    float64
	Pitch, Yaw byte
	HeadYaw    byte
	Data       int32
	VelX, VelY, VelZ int16
}

func (AddEntity) ID() int32 { return 0x01 }
func (p AddEntity) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.EntityID); err != nil {
		return err
	}
	if err := writeUUID(w, p.UUID); err != nil {
		return err
	}
	if err := writeVarInt(w, p.Type); err != nil {
		return err
	}
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if err := writeFloat64(w, v); err != nil {
			return err
		}
	}
	if err := writeByte(w, p.Pitch); err != nil {
		return err
	}
	if err := writeByte(w, p.Yaw); err != nil {
		return err
	}
	if err := writeByte(w, p.HeadYaw); err != nil {
		return err
	}
	if err := writeVarInt(w, p.Data); err != nil {
		return err
	}
	for _, v := range []int16{p.VelX, p.VelY, p.VelZ} {
		if err := writeInt16(w, v); err != nil {
			return err
		}
	}
	return nil
}

// RemoveEntities is the (plural, batched) clientbound despawn packet,
// per the redesign flag in spec.md §9/§4.I: every place an entity leaves
// a viewer's known set must emit this.
type RemoveEntities struct {
	EntityIDs []int32
}

func (RemoveEntities) ID() int32 { return 0x47 }
func (p RemoveEntities) Encode(w io.Writer) error {
	if err := writeVarInt(w, int32(len(p.EntityIDs))); err != nil {
		return err
	}
	for _, id := range p.EntityIDs {
		if err := writeVarInt(w, id); err != nil {
			return err
		}
	}
	return nil
}

// MoveEntityPos is a short position-only delta, each axis scaled by
// 4096 and packed into an int16.
type MoveEntityPos struct {
	EntityID         int32
	DeltaX, DeltaY, DeltaZ int16
	OnGround         bool
}

func (MoveEntityPos) ID() int32 { return 0x2F }
func (p MoveEntityPos) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.EntityID); err != nil {
		return err
	}
	for _, v := range []int16{p.DeltaX, p.DeltaY, p.DeltaZ} {
		if err := writeInt16(w, v); err != nil {
			return err
		}
	}
	return writeBool(w, p.OnGround)
}

// MoveEntityPosRot is a short position delta plus quantized rotation.
type MoveEntityPosRot struct {
	EntityID               int32
	DeltaX, DeltaY, DeltaZ int16
	Yaw, Pitch             byte
	OnGround               bool
}

func (MoveEntityPosRot) ID() int32 { return 0x30 }
func (p MoveEntityPosRot) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.EntityID); err != nil {
		return err
	}
	for _, v := range []int16{p.DeltaX, p.DeltaY, p.DeltaZ} {
		if err := writeInt16(w, v); err != nil {
			return err
		}
	}
	if err := writeByte(w, p.Yaw); err != nil {
		return err
	}
	if err := writeByte(w, p.Pitch); err != nil {
		return err
	}
	return writeBool(w, p.OnGround)
}

// MoveEntityRot is a rotation-only update.
type MoveEntityRot struct {
	EntityID   int32
	Yaw, Pitch byte
	OnGround   bool
}

func (MoveEntityRot) ID() int32 { return 0x31 }
func (p MoveEntityRot) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.EntityID); err != nil {
		return err
	}
	if err := writeByte(w, p.Yaw); err != nil {
		return err
	}
	if err := writeByte(w, p.Pitch); err != nil {
		return err
	}
	return writeBool(w, p.OnGround)
}

// EntityPositionSync is the clientbound absolute fallback used whenever
// a delta would overflow the short-form encoding, and every
// force_sync tick.
type EntityPositionSync struct {
	EntityID   int32
	X, Y, Z    float64
	VelX, VelY, VelZ float64
	Yaw, Pitch float32
	OnGround   bool
}

func (EntityPositionSync) ID() int32 { return 0x32 }
func (p EntityPositionSync) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.EntityID); err != nil {
		return err
	}
	for _, v := range []float64{p.X, p.Y, p.Z, p.VelX, p.VelY, p.VelZ} {
		if err := writeFloat64(w, v); err != nil {
			return err
		}
	}
	if err := writeFloat32(w, p.Yaw); err != nil {
		return err
	}
	if err := writeFloat32(w, p.Pitch); err != nil {
		return err
	}
	return writeBool(w, p.OnGround)
}

// RotateHead updates an entity's head yaw independent of body rotation.
type RotateHead struct {
	EntityID int32
	HeadYaw  byte
}

func (RotateHead) ID() int32 { return 0x48 }
func (p RotateHead) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.EntityID); err != nil {
		return err
	}
	return writeByte(w, p.HeadYaw)
}

// UpdateSectionBlocks rewrites several blocks within one already-loaded
// section.
type UpdateSectionBlocks struct {
	SectionX, SectionY, SectionZ int32
	Blocks                       []SectionBlockChange
}

type SectionBlockChange struct {
	X, Y, Z   byte // 0..15 local coordinates
	BlockID   int32
}

func (UpdateSectionBlocks) ID() int32 { return 0x4A }
func (p UpdateSectionBlocks) Encode(w io.Writer) error {
	packedSection := (int64(p.SectionX&0x3FFFFF) << 42) | (int64(p.SectionY&0xFFFFF) << 0) | (int64(p.SectionZ&0x3FFFFF) << 20)
	if err := writeInt64(w, packedSection); err != nil {
		return err
	}
	if err := writeVarInt(w, int32(len(p.Blocks))); err != nil {
		return err
	}
	for _, b := range p.Blocks {
		pos := (int64(b.X) << 8) | (int64(b.Z) << 4) | int64(b.Y)
		encoded := (int64(b.BlockID) << 12) | pos
		if err := writeVarLong(w, encoded); err != nil {
			return err
		}
	}
	return nil
}

var playTable = map[int32]func(io.Reader) (Packet, error){
	0x00: decodeAcceptPlayerPosition,
	0x05: decodeChatCommand,
	0x06: decodeChatMessage,
	0x1D: decodeMovePlayerPos,
	0x1E: decodeMovePlayerPosRot,
	0x1F: decodeMovePlayerRot,
	0x24: decodePlayerAction,
	0x26: decodeKeepAlive,
	0x33: decodeSetHeldItem,
	0x38: decodeSwingArm,
	0x3C: decodeUseItemOn,
}

// DecodePlay dispatches a raw play-stage serverbound packet body.
func DecodePlay(id int32, body []byte) (Packet, error) {
	return decodeFrom(StagePlay, playTable, id, body)
}
