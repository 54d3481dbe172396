// Package session implements the per-connection client handler state
// machine (spec.md §4.G) and the play-stage player session (§4.L): the
// bridge between a raw netconn.Connection and the game-facing managers
// (level, entity, tab list, command) that own gameplay state.
package session

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironvein/blocksrv/internal/config"
	"github.com/ironvein/blocksrv/internal/netconn"
	"github.com/ironvein/blocksrv/internal/packet"
	"github.com/ironvein/blocksrv/internal/proto"
	"github.com/ironvein/blocksrv/internal/registry"
	"github.com/ironvein/blocksrv/internal/varint"
)

// configurationTimeout is the quiescence gate before Finish Configuration
// is sent once mayFinish is set. spec.md §4.G calls this "≈1s in release;
// shorter in debug" — this module has no debug/release split, so it
// always uses the release value.
const configurationTimeout = 1 * time.Second

// pollInterval bounds how long a single ReadPacket call blocks while a
// handler is waiting on a timer (the configuration quiescence gate): long
// enough to avoid busy-looping, short enough that the gate fires close to
// configurationTimeout after the last packet.
const pollInterval = 100 * time.Millisecond

// Ready is what a ClientHandler hands back once a connection has reached
// Play: everything internal/mcserver needs to construct a PlayerSession
// without this package knowing anything about levels, entities, or the
// tab list.
type Ready struct {
	Conn         *netconn.Connection
	Sender       *netconn.Sender
	Identity     Identity
	ViewDistance int8
}

// OnlineCounter reports the current player count for Status Response.
type OnlineCounter func() int32

// ClientHandler drives one accepted connection from Handshake through
// Login and Configuration. Run blocks until the connection closes (status
// pings, failed logins) or reaches Play, in which case it returns a
// Ready for the caller to hand off to a PlayerSession.
type ClientHandler struct {
	conn   *netconn.Connection
	sender *netconn.Sender
	cfg    config.ServerConfig
	log    zerolog.Logger
	online OnlineCounter

	state    State
	identity Identity

	configuredInitial bool
	lastPacketTime    time.Time
	mayFinish         bool
	finishSent        bool
	viewDistance      int8
}

// NewClientHandler wraps a freshly accepted connection.
func NewClientHandler(conn *netconn.Connection, sender *netconn.Sender, cfg config.ServerConfig, online OnlineCounter, log zerolog.Logger) *ClientHandler {
	return &ClientHandler{
		conn:   conn,
		sender: sender,
		cfg:    cfg,
		log:    log,
		online: online,
		state:  StateHandshake,
	}
}

// Run drives the handler to completion. A nil Ready with a nil error
// means the connection served a status/ping exchange and closed cleanly.
func (h *ClientHandler) Run() (*Ready, error) {
	if err := h.runHandshake(); err != nil {
		return nil, err
	}
	switch h.state {
	case StateStatus:
		return nil, h.runStatus()
	case StateLogin:
		if err := h.runLogin(); err != nil {
			return nil, err
		}
		if err := h.runConfiguration(); err != nil {
			return nil, err
		}
		return &Ready{Conn: h.conn, Sender: h.sender, Identity: h.identity, ViewDistance: h.viewDistance}, nil
	default:
		return nil, fmt.Errorf("session: unreachable state %s after handshake", h.state)
	}
}

// Rule 1: receive exactly one Intention packet; switch to Status or
// Login. An unsupported protocol version (anything but the server's
// constant or -1, the client's ping-probe sentinel) closes the
// connection with InvalidProtocolVersion.
func (h *ClientHandler) runHandshake() error {
	body, err := h.conn.ReadPacket()
	if err != nil {
		return err
	}
	id, rest, err := splitID(body)
	if err != nil {
		return err
	}
	p, err := packet.DecodeHandshake(id, rest)
	if err != nil {
		return err
	}
	intention, ok := p.(packet.Intention)
	if !ok {
		return &ProtocolError{State: StateHandshake, Detail: "expected Intention"}
	}
	if intention.ProtocolVersion != h.cfg.ProtocolVersion && intention.ProtocolVersion != -1 {
		return fmt.Errorf("%w: got %d, want %d or -1", ErrInvalidProtocolVersion, intention.ProtocolVersion, h.cfg.ProtocolVersion)
	}
	switch intention.NextState {
	case packet.NextStateStatus:
		h.state = StateStatus
	case packet.NextStateLogin:
		h.state = StateLogin
	default:
		return &ProtocolError{State: StateHandshake, Detail: fmt.Sprintf("unsupported next state %d", intention.NextState)}
	}
	return nil
}

// Rule 2: respond to Request with a fresh JSON response; echo Ping
// verbatim; close after the ping.
func (h *ClientHandler) runStatus() error {
	for i := 0; i < 2; i++ {
		body, err := h.conn.ReadPacket()
		if err != nil {
			return err
		}
		id, rest, err := splitID(body)
		if err != nil {
			return err
		}
		p, err := packet.DecodeStatus(id, rest)
		if err != nil {
			return err
		}
		switch pk := p.(type) {
		case packet.StatusRequest:
			json, err := buildStatusJSON(h.cfg, h.online())
			if err != nil {
				return err
			}
			if err := h.send(packet.StatusResponse{JSON: json}); err != nil {
				return err
			}
		case packet.PingRequest:
			if err := h.send(packet.PongResponse{Payload: pk.Payload}); err != nil {
				return err
			}
			return h.conn.Close()
		default:
			return &ProtocolError{State: StateStatus, Detail: "unexpected packet"}
		}
	}
	return nil
}

// Rule 3: on Hello, record identity; if compression is configured, send
// Set Compression then switch the handler; send Finished; on
// Acknowledged, move to Configuration and reset the configuration timer.
func (h *ClientHandler) runLogin() error {
	body, err := h.conn.ReadPacket()
	if err != nil {
		return err
	}
	id, rest, err := splitID(body)
	if err != nil {
		return err
	}
	p, err := packet.DecodeLogin(id, rest)
	if err != nil {
		return err
	}
	hello, ok := p.(packet.LoginHello)
	if !ok {
		return &ProtocolError{State: StateLogin, Detail: "expected Login Hello"}
	}
	h.identity = Identity{Name: hello.Name, UUID: hello.UUID}

	if h.cfg.CompressionThreshold >= 0 {
		if err := h.send(packet.LoginCompression{Threshold: h.cfg.CompressionThreshold}); err != nil {
			return err
		}
		handler, err := proto.NewCompressionHandler(int(h.cfg.CompressionThreshold), h.cfg.CompressionLevel)
		if err != nil {
			return err
		}
		h.conn.EnableCompression(handler)
	}

	if err := h.send(packet.LoginFinished{UUID: h.identity.UUID, Name: h.identity.Name}); err != nil {
		return err
	}

	body, err = h.conn.ReadPacket()
	if err != nil {
		return err
	}
	id, rest, err = splitID(body)
	if err != nil {
		return err
	}
	p, err = packet.DecodeLogin(id, rest)
	if err != nil {
		return err
	}
	if _, ok := p.(packet.LoginAcknowledged); !ok {
		return &ProtocolError{State: StateLogin, Detail: "expected Login Acknowledged"}
	}
	h.state = StateConfiguration
	h.lastPacketTime = time.Now()
	return nil
}

// Rule 4: on entry, send brand and known-packs request exactly once.
// Accept client information, custom-payload, known-packs; on the
// client's known-packs reply, push full registry data. Set mayFinish.
// Once mayFinish and no new packet has arrived for configurationTimeout,
// send Finish Configuration; thereafter the only acceptable inbound
// packet is the client's own Finish Configuration acknowledgement.
func (h *ClientHandler) runConfiguration() error {
	h.viewDistance = int8(h.cfg.ViewDistance)
	if err := h.enterConfiguration(); err != nil {
		return err
	}

	for {
		if h.finishSent {
			return h.awaitFinishAcknowledgement()
		}
		if h.mayFinish && time.Since(h.lastPacketTime) >= configurationTimeout {
			if err := h.send(packet.FinishConfiguration{}); err != nil {
				return err
			}
			h.finishSent = true
			continue
		}

		deadline := h.lastPacketTime.Add(configurationTimeout)
		if !h.mayFinish {
			deadline = time.Now().Add(pollInterval)
		}
		_ = h.conn.SetReadDeadline(deadline)
		body, err := h.conn.ReadPacket()
		if isTimeout(err) {
			continue
		}
		_ = h.conn.SetReadDeadline(time.Time{})
		if err != nil {
			return err
		}
		h.lastPacketTime = time.Now()

		id, rest, err := splitID(body)
		if err != nil {
			return err
		}
		p, err := packet.DecodeConfiguration(id, rest)
		if err != nil {
			return err
		}
		switch pk := p.(type) {
		case packet.ClientInformation:
			h.viewDistance = pk.ViewDistance
		case packet.CustomPayload:
			h.log.Debug().Str("channel", pk.Channel).Msg("configuration custom payload")
		case packet.ServerboundKnownPacks:
			if err := h.pushRegistries(); err != nil {
				return err
			}
			h.mayFinish = true
		default:
			return &ProtocolError{State: StateConfiguration, Detail: "unexpected packet"}
		}
	}
}

func (h *ClientHandler) enterConfiguration() error {
	if h.configuredInitial {
		return nil
	}
	if err := h.send(packet.CustomPayload{Channel: "minecraft:brand", Data: []byte(h.cfg.ProtocolBrand)}); err != nil {
		return err
	}
	if err := h.send(packet.ClientboundKnownPacks{Packs: []packet.KnownPack{
		{Namespace: "minecraft", ID: "core", Version: "1.21.x"},
	}}); err != nil {
		return err
	}
	h.configuredInitial = true
	return nil
}

func (h *ClientHandler) awaitFinishAcknowledgement() error {
	body, err := h.conn.ReadPacket()
	if err != nil {
		return err
	}
	id, rest, err := splitID(body)
	if err != nil {
		return err
	}
	p, err := packet.DecodeConfiguration(id, rest)
	if err != nil {
		return err
	}
	if _, ok := p.(packet.AcknowledgeFinishConfiguration); !ok {
		return &ProtocolError{State: StateConfiguration, Detail: "expected Acknowledge Finish Configuration"}
	}
	h.state = StatePlay
	return nil
}

func (h *ClientHandler) pushRegistries() error {
	bundles := []struct {
		id      string
		entries []registry.Entry
	}{
		{"minecraft:dimension_type", h.cfg.Registries.DimensionType},
		{"minecraft:damage_type", h.cfg.Registries.DamageType},
		{"minecraft:worldgen/biome", h.cfg.Registries.Biome},
	}
	for _, b := range bundles {
		entries := make([]packet.RegistryEntry, len(b.entries))
		for i, e := range b.entries {
			entries[i] = packet.RegistryEntry{ID: e.ID, Data: e.Data}
		}
		rd := packet.RegistryData{Registry: varint.ParseIdentifier(b.id), Entries: entries}
		if err := h.send(rd); err != nil {
			return err
		}
	}

	// This server has no gameplay feature that conditions itself on tag
	// membership, so every registry's tag set is sent empty; clients
	// still require the packet itself, per spec.md §4.G rule 4.
	tags := make([]packet.TagRegistry, len(bundles))
	for i, b := range bundles {
		tags[i] = packet.TagRegistry{Registry: b.id, Tags: map[string][]int32{}}
	}
	return h.send(packet.UpdateTags{Registries: tags})
}

func (h *ClientHandler) send(p packet.Packet) error {
	body, err := packet.Encode(p)
	if err != nil {
		return err
	}
	return h.sender.Send(body)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func splitID(body []byte) (int32, []byte, error) {
	return packet.SplitID(body)
}
