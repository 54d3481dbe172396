// Package mcserver wires every other package into a running server:
// the listening socket, the 20Hz tick driver, and the two background
// workers spec.md §4.M/§5 calls for (a tab-info updater and a level
// broadcaster), observing the lock order world/level → entities →
// tab_list by never holding more than one of those packages' locks at
// once from this package's own goroutines.
package mcserver

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironvein/blocksrv/internal/command"
	"github.com/ironvein/blocksrv/internal/config"
	"github.com/ironvein/blocksrv/internal/entity"
	"github.com/ironvein/blocksrv/internal/level"
	"github.com/ironvein/blocksrv/internal/netconn"
	"github.com/ironvein/blocksrv/internal/session"
	"github.com/ironvein/blocksrv/internal/tablist"
)

const (
	// tickInterval is the 20Hz per-connection/entity tick spec.md §4.M
	// names.
	tickInterval = 50 * time.Millisecond

	// tabInfoInterval is how often the tab-info updater refreshes each
	// connected player's latency sample.
	tabInfoInterval = 500 * time.Millisecond

	// broadcasterIdle is the "tiny sleep" spec.md §4.M asks the level
	// broadcaster to take between passes, so it isn't a true busy loop.
	broadcasterIdle = time.Millisecond

	// Vanilla overworld section-Y bounds (-64..319 in block coordinates).
	// Dimension selection is out of scope, so every level loads with
	// these bounds regardless of which dimension name configuration
	// advertises.
	overworldMinSectionY int8 = -4
	overworldMaxSectionY int8 = 19
)

// Server binds a listening socket, accepts connections into
// session.ClientHandler, promotes finished ones into
// session.PlayerSession, and drives the tick/broadcast loops spec.md
// §4.M/§5 describe.
type Server struct {
	cfg        config.ServerConfig
	log        zerolog.Logger
	listener   net.Listener
	level      *level.Level
	entities   *entity.Manager
	tabList    *tablist.TabList
	dispatcher *command.Dispatcher

	nextEntityID int32

	mu       sync.Mutex
	sessions map[int32]*session.PlayerSession

	closeOnce sync.Once
	done      chan struct{}
}

// New binds cfg.BindAddress and constructs a Server ready for Serve.
func New(cfg config.ServerConfig, log zerolog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:        cfg,
		log:        log,
		listener:   listener,
		level:      level.NewLevel(cfg.WorldDirectory, overworldMinSectionY, overworldMaxSectionY),
		entities:   entity.NewManager(),
		tabList:    tablist.New(),
		dispatcher: command.NewDispatcher(),
		sessions:   make(map[int32]*session.PlayerSession),
		done:       make(chan struct{}),
	}
	registerCommands(s.dispatcher, s.PlayerCount)
	return s, nil
}

// PlayerCount reports the number of sessions currently in Play, used
// both for the Status Response and the "list" command.
func (s *Server) PlayerCount() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int32(len(s.sessions))
}

// Serve accepts connections until the listener is closed, starting the
// tick driver and background workers first. It returns once Accept
// fails (including as a result of Stop) and every background worker
// has joined, so a caller doing `Stop(); Serve returns` knows the tick,
// tab-info, and level-broadcast loops have actually exited rather than
// racing them on the way out.
func (s *Server) Serve() error {
	var group errgroup.Group
	group.Go(func() error { s.tickLoop(); return nil })
	group.Go(func() error { s.tabInfoLoop(); return nil })
	group.Go(func() error { s.levelBroadcastLoop(); return nil })

	var acceptErr error
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
			default:
				acceptErr = err
			}
			break
		}
		go s.handleConn(conn)
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return acceptErr
}

// Stop closes the listener and signals every background loop to exit.
// In-flight connections are not forcibly closed; they wind down as
// their own I/O fails.
func (s *Server) Stop() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.listener.Close()
}

func (s *Server) handleConn(raw net.Conn) {
	conn, sender := netconn.New(raw)
	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()

	handler := session.NewClientHandler(conn, sender, s.cfg, s.PlayerCount, log)
	ready, err := handler.Run()
	if err != nil {
		log.Debug().Err(err).Msg("connection closed before reaching play")
		return
	}
	if ready == nil {
		return // status/ping exchange; already closed cleanly.
	}

	entityID := atomic.AddInt32(&s.nextEntityID, 1)
	ps, err := session.NewPlayerSession(ready, entityID, s.cfg, s.level, s.entities, s.tabList, s.dispatcher, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to start player session")
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[entityID] = ps
	s.mu.Unlock()
	log.Info().Str("player", ready.Identity.Name).Msg("player joined")
}

func (s *Server) snapshotSessions() []*session.PlayerSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session.PlayerSession, 0, len(s.sessions))
	for _, ps := range s.sessions {
		out = append(out, ps)
	}
	return out
}

func (s *Server) disconnect(ps *session.PlayerSession, cause error) {
	s.mu.Lock()
	delete(s.sessions, ps.EntityID())
	s.mu.Unlock()
	s.log.Info().Err(cause).Msg("player disconnected")
	ps.Close()
}

// tickLoop runs the 20Hz per-connection tick (keep-alive, packet drain,
// position push) followed by the entity manager's own broadcast tick.
// A connection whose Tick fails (protocol error, keep-alive timeout) is
// torn down immediately rather than retried.
func (s *Server) tickLoop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			for _, ps := range s.snapshotSessions() {
				if err := ps.Tick(); err != nil {
					s.disconnect(ps, err)
				}
			}
			if err := s.entities.Tick(); err != nil {
				s.log.Error().Err(err).Msg("entity broadcast tick failed")
			}
		}
	}
}

// tabInfoLoop is the 500ms tab-info updater spec.md §4.M/§5 names. The
// distilled spec leaves its payload undefined beyond "stats"; this
// module has none worth reporting, so it refreshes each player's
// keep-alive latency sample instead — the one piece of per-player state
// the tab list's own wire format already carries (SUPPLEMENTED FEATURES,
// Connection.Latency).
func (s *Server) tabInfoLoop() {
	ticker := time.NewTicker(tabInfoInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			for _, ps := range s.snapshotSessions() {
				if err := s.tabList.UpdateLatency(ps.OwnUUID(), ps.Latency()); err != nil {
					s.log.Debug().Err(err).Msg("tab-info latency refresh failed")
				}
			}
		}
	}
}

// levelBroadcastLoop is the level's dedicated flush thread: on every
// pass, first drain every chunk's accumulated diff to whichever viewers
// hold it, then let each viewer's loader advance by one load/unload
// step. Diffs are drained before the load/unload step runs so an
// UpdateSectionBlocks for a chunk always precedes any reload that the
// same pass's threshold check triggers for it.
func (s *Server) levelBroadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		sessions := s.snapshotSessions()

		for _, pos := range s.level.DirtyChunks() {
			action, changes := s.level.TakeDiff(pos)
			for _, ps := range sessions {
				if err := ps.ApplyLevelDiff(pos, action, changes); err != nil {
					s.log.Warn().Err(err).Msg("level diff flush failed")
				}
			}
		}

		for _, ps := range sessions {
			if err := ps.StreamChunks(); err != nil {
				s.log.Warn().Err(err).Msg("chunk stream failed")
			}
		}

		time.Sleep(broadcasterIdle)
	}
}
