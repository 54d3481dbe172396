package session

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironvein/blocksrv/internal/command"
	"github.com/ironvein/blocksrv/internal/config"
	"github.com/ironvein/blocksrv/internal/entity"
	"github.com/ironvein/blocksrv/internal/level"
	"github.com/ironvein/blocksrv/internal/netconn"
	"github.com/ironvein/blocksrv/internal/packet"
	"github.com/ironvein/blocksrv/internal/tablist"
	"github.com/ironvein/blocksrv/internal/text"
	"github.com/ironvein/blocksrv/internal/varint"
)

// keepAliveInterval is the liveness period spec.md §4.L calls for: once
// this much time has passed since the last KeepAlive was sent, either
// the previous one is still unanswered (fail the connection) or a fresh
// one goes out.
const keepAliveInterval = 10 * time.Second

// spawnPosition is the fixed world-space point every new session starts
// at; the core carries no spawn-finding logic (it is out of scope), so
// every player spawns at the same coordinate regardless of what's there.
var spawnPosition = entity.Pos{X: 8.5, Y: 64, Z: 8.5}

// PlayerSession is the play-stage half of a connection: it drives the
// per-tick keep-alive/packet-drain/position loop and the viewer-facing
// chunk stream, after ClientHandler hands a Ready connection off to it.
type PlayerSession struct {
	conn   *netconn.Connection
	sender *netconn.Sender
	log    zerolog.Logger
	cfg    config.ServerConfig

	identity Identity
	entityID int32

	level      *level.Level
	loader     *level.ChunkLoader
	entities   *entity.Manager
	tabList    *tablist.TabList
	dispatcher *command.Dispatcher

	self *entity.Handler

	mu       sync.Mutex
	pos      entity.Pos
	flying   bool
	heldSlot int16

	keepAliveID      int64
	keepAliveSentAt  time.Time
	keepAlivePending bool
}

// NewPlayerSession runs the construction sequence from spec.md §4.L and
// returns a session ready for its caller to start calling Tick and
// StreamChunks on.
func NewPlayerSession(
	ready *Ready,
	entityID int32,
	cfg config.ServerConfig,
	lvl *level.Level,
	entities *entity.Manager,
	tabList *tablist.TabList,
	dispatcher *command.Dispatcher,
	log zerolog.Logger,
) (*PlayerSession, error) {
	s := &PlayerSession{
		conn:       ready.Conn,
		sender:     ready.Sender,
		log:        log.With().Str("player", ready.Identity.Name).Logger(),
		cfg:        cfg,
		identity:   ready.Identity,
		entityID:   entityID,
		level:      lvl,
		loader:     level.NewChunkLoader(int32(ready.ViewDistance)),
		entities:   entities,
		tabList:    tabList,
		dispatcher: dispatcher,
		pos:        spawnPosition,
	}
	s.self = entity.NewHandler(entityID, ready.Identity.UUID, 122 /* minecraft:player */, spawnPosition)

	dimensionName := cfg.Registries.DimensionType[0].ID

	if err := s.Send(packet.PlayLogin{
		EntityID:           entityID,
		Hardcore:           false,
		DimensionNames:     []varint.Identifier{dimensionName},
		MaxPlayers:         cfg.MaxPlayers,
		ViewDistance:       int32(ready.ViewDistance),
		SimulationDistance: cfg.SimulationDistance,
		ReducedDebugInfo:   false,
		RespawnScreen:      true,
		IsDebug:            false,
		IsFlat:             false,
		DimensionType:      0,
		DimensionName:      dimensionName,
		SeaLevel:           63,
		GameMode:           0,
	}); err != nil {
		return nil, err
	}
	if err := s.Send(packet.ServerLinks{}); err != nil {
		return nil, err
	}
	flat, root := dispatcher.Graph()
	if err := s.Send(buildCommandsPacket(flat, root)); err != nil {
		return nil, err
	}
	if err := s.Send(packet.GameEvent{Event: packet.EventStartWaitingChunks}); err != nil {
		return nil, err
	}
	if err := s.Send(packet.SynchronizePlayerPosition{
		X: spawnPosition.X, Y: spawnPosition.Y, Z: spawnPosition.Z,
		Yaw: spawnPosition.Yaw, Pitch: spawnPosition.Pitch,
		TeleportID: 1,
	}); err != nil {
		return nil, err
	}
	welcome := text.Colored(fmt.Sprintf("%s joined the game", ready.Identity.Name), "yellow")
	if err := s.Send(packet.SystemChat{Content: welcome.Compound()}); err != nil {
		return nil, err
	}

	s.loader.UpdateCenter(chunkPosOf(spawnPosition))
	entities.Add(s.self)
	entities.AddViewer(s)

	if err := tabList.Insert(tablist.Player{UUID: ready.Identity.UUID, Name: ready.Identity.Name}); err != nil {
		return nil, err
	}
	if err := tabList.AddViewer(s); err != nil {
		return nil, err
	}

	return s, nil
}

// OwnUUID satisfies entity.Viewer: the manager never sends a player its
// own AddEntity/sync packets.
func (s *PlayerSession) OwnUUID() uuid.UUID { return s.identity.UUID }

// EntityID returns the entity id this session's player was allocated at
// connect time, so a caller tracking sessions by id (internal/mcserver)
// can key its map without reaching into unexported fields.
func (s *PlayerSession) EntityID() int32 { return s.entityID }

// Send encodes and writes one clientbound packet.
func (s *PlayerSession) Send(p packet.Packet) error {
	body, err := packet.Encode(p)
	if err != nil {
		return err
	}
	return s.sender.Send(body)
}

// Close deregisters the session from every manager it joined, for a
// clean departure (connection closed, keep-alive timeout, protocol
// error).
func (s *PlayerSession) Close() {
	s.entities.Remove(s.entityID)
	s.entities.RemoveViewer(s)
	s.tabList.RemoveViewer(s)
	_ = s.tabList.Drop(s.identity.UUID)
	_ = s.conn.Close()
}

// Tick runs the per-connection sequence spec.md §4.L lists: keep-alive
// liveness, draining whatever play packets have arrived, then pushing
// this tick's position to the shared entity handle.
func (s *PlayerSession) Tick() error {
	if err := s.tickKeepAlive(); err != nil {
		return err
	}
	if err := s.drainIncoming(); err != nil {
		return err
	}
	s.mu.Lock()
	pos := s.pos
	s.mu.Unlock()
	s.self.SetPosition(pos)
	s.loader.UpdateCenter(chunkPosOf(pos))
	return nil
}

// Latency returns the most recent keep-alive round-trip sample, for the
// tab-info worker's periodic Update Latency refresh.
func (s *PlayerSession) Latency() time.Duration { return s.conn.Latency() }

// StreamChunks advances this viewer's chunk loader by one step: unload
// one stale chunk if any are queued, otherwise load and send the
// nearest pending one. Called repeatedly by the server's level
// broadcaster loop rather than once per game tick, so bandwidth isn't
// tied to the 20Hz tick rate.
func (s *PlayerSession) StreamChunks() error {
	if pos, ok := s.loader.NextToUnload(); ok {
		return s.Send(packet.ForgetLevelChunk{ChunkX: pos.X, ChunkZ: pos.Z})
	}
	pos, ok := s.loader.NextToLoad()
	if !ok {
		return nil
	}
	chunk, err := s.level.LoadChunk(pos)
	if err != nil {
		return err
	}
	encoded, err := level.EncodeChunkPacket(chunk, s.level.States, s.level.Biomes, s.level.MinSectionY(), s.level.MaxSectionY())
	if err != nil {
		return err
	}
	return s.Send(encoded)
}

// ApplyLevelDiff flushes one chunk's pending edits to this viewer if it
// currently holds that chunk: a full reload (forget + resend) once the
// flush-policy threshold is crossed, or per-section patches otherwise.
func (s *PlayerSession) ApplyLevelDiff(pos level.ChunkPos, action level.FlushAction, sections map[int8][]level.SectionChange) error {
	if !s.loader.Holds(pos) {
		return nil
	}
	switch action {
	case level.FlushReload:
		if err := s.Send(packet.ForgetLevelChunk{ChunkX: pos.X, ChunkZ: pos.Z}); err != nil {
			return err
		}
		s.loader.ForceReload(pos)
		return nil
	case level.FlushSections:
		for sectionY, changes := range sections {
			if err := s.Send(level.BuildSectionUpdate(pos, sectionY, changes)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *PlayerSession) tickKeepAlive() error {
	now := time.Now()
	if s.keepAliveSentAt.IsZero() {
		s.keepAliveSentAt = now
		return nil
	}
	if now.Sub(s.keepAliveSentAt) < keepAliveInterval {
		return nil
	}
	if s.keepAlivePending {
		return &KeepAliveError{Elapsed: now.Sub(s.keepAliveSentAt).String()}
	}
	s.keepAliveID = rand.Int63()
	s.keepAlivePending = true
	s.keepAliveSentAt = now
	return s.Send(packet.KeepAlive{ID: s.keepAliveID})
}

// drainIncoming processes every play packet the client has already sent
// without blocking the tick on one that hasn't arrived yet.
func (s *PlayerSession) drainIncoming() error {
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
		body, err := s.conn.ReadPacket()
		if isTimeout(err) {
			_ = s.conn.SetReadDeadline(time.Time{})
			return nil
		}
		if err != nil {
			return err
		}
		id, rest, err := splitID(body)
		if err != nil {
			return err
		}
		p, err := packet.DecodePlay(id, rest)
		if err != nil {
			s.log.Debug().Err(err).Msg("play: ignoring undecodable packet")
			continue
		}
		if err := s.handle(p); err != nil {
			return err
		}
	}
}

func (s *PlayerSession) handle(p packet.Packet) error {
	switch pk := p.(type) {
	case packet.KeepAlive:
		if s.keepAlivePending && pk.ID == s.keepAliveID {
			s.conn.RecordLatency(time.Since(s.keepAliveSentAt))
			s.keepAlivePending = false
		}
	case packet.AcceptPlayerPosition:
		// teleport acknowledged; no state to reconcile.
	case packet.MovePlayerPos:
		s.mu.Lock()
		s.pos.X, s.pos.Y, s.pos.Z = pk.X, pk.Y, pk.Z
		s.mu.Unlock()
	case packet.MovePlayerPosRot:
		s.mu.Lock()
		s.pos.X, s.pos.Y, s.pos.Z = pk.X, pk.Y, pk.Z
		s.pos.Yaw, s.pos.Pitch, s.pos.HeadYaw = pk.Yaw, pk.Pitch, pk.Yaw
		s.mu.Unlock()
	case packet.MovePlayerRot:
		s.mu.Lock()
		s.pos.Yaw, s.pos.Pitch, s.pos.HeadYaw = pk.Yaw, pk.Pitch, pk.Yaw
		s.mu.Unlock()
	case packet.SetHeldItem:
		s.mu.Lock()
		s.heldSlot = pk.Slot
		s.mu.Unlock()
	case packet.SwingArm:
		return s.entities.Broadcast(s, packet.Animation{EntityID: s.entityID, Animation: 0})
	case packet.PlayerAction:
		resync, err := level.ResyncBlock(s.level, pk.X, pk.Y, pk.Z)
		if err != nil {
			return err
		}
		return s.Send(resync)
	case packet.UseItemOn:
		resync, err := level.ResyncBlock(s.level, pk.X, pk.Y, pk.Z)
		if err != nil {
			return err
		}
		return s.Send(resync)
	case packet.ChatCommand:
		return s.executeCommand(pk.Command)
	case packet.ChatMessage:
		echo := text.Of(fmt.Sprintf("<%s> %s", s.identity.Name, pk.Message))
		return s.Send(packet.DisguisedChatMessage{Message: echo.Compound()})
	default:
		s.log.Debug().Str("type", fmt.Sprintf("%T", p)).Msg("play: unhandled packet kind")
	}
	return nil
}

func (s *PlayerSession) executeCommand(line string) error {
	s.mu.Lock()
	pos := s.pos
	s.mu.Unlock()

	sender := command.Sender{
		Name:     s.identity.Name,
		Position: command.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z},
		Forward:  lookVector(pos.Yaw, pos.Pitch),
		Reply: func(message string) error {
			return s.Send(packet.SystemChat{Content: text.Of(message).Compound()})
		},
	}
	if err := s.dispatcher.Execute(sender, line); err != nil {
		return sender.Reply(err.Error())
	}
	return nil
}

// lookVector converts yaw/pitch (degrees, vanilla convention) into the
// unit vector a sender is facing, used for `^`-local command arguments.
func lookVector(yaw, pitch float32) command.Vec3 {
	yawRad := float64(yaw) * math.Pi / 180
	pitchRad := float64(pitch) * math.Pi / 180
	return command.Vec3{
		X: -math.Sin(yawRad) * math.Cos(pitchRad),
		Y: -math.Sin(pitchRad),
		Z: math.Cos(yawRad) * math.Cos(pitchRad),
	}
}

func chunkPosOf(p entity.Pos) level.ChunkPos {
	return level.ChunkPos{X: int32(math.Floor(p.X / 16)), Z: int32(math.Floor(p.Z / 16))}
}
