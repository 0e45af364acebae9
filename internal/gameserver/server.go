// Package gameserver runs the simulation loop: it owns the clock and the one
// active session, and exchanges messages with that session's connection
// worker through mailboxes only.
package gameserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cryptdancer/internal/bridge"
	"github.com/cory-johannsen/cryptdancer/internal/config"
	"github.com/cory-johannsen/cryptdancer/internal/game/clock"
	"github.com/cory-johannsen/cryptdancer/internal/game/dungeon"
	"github.com/cory-johannsen/cryptdancer/internal/game/levels"
	"github.com/cory-johannsen/cryptdancer/internal/game/session"
	"github.com/cory-johannsen/cryptdancer/internal/mailbox"
	"github.com/cory-johannsen/cryptdancer/internal/protocol"
	"github.com/cory-johannsen/cryptdancer/internal/storage/postgres"
	"github.com/cory-johannsen/cryptdancer/internal/transport"
)

// ErrSessionActive is logged when a connection is refused because another
// session is in progress.
var ErrSessionActive = errors.New("a session is already active")

// journalTimeout bounds a single journal write.
const journalTimeout = 5 * time.Second

// Server is the simulation loop. Run must be called from exactly one goroutine.
type Server struct {
	cfg      config.Config
	conns    <-chan net.Conn
	rotation *levels.Rotation
	journal  Journal
	logger   *zap.Logger
	now      func() time.Time

	active  *activeSession
	records sync.WaitGroup
}

// activeSession is everything the loop holds for the connected client.
type activeSession struct {
	id      uuid.UUID
	level   levels.Level
	remote  string
	started time.Time

	ctrl  *session.Controller
	clock *clock.Clock
	in    *bridge.Inbox
	out   *bridge.Outbox

	// done is closed when the bridge goroutine returns.
	done   chan struct{}
	cancel context.CancelFunc
	// closing is set once the EndConnection sentinel has been handed to the bridge.
	closing bool
	// gone is set when the bridge reported that the client went away.
	gone bool
}

// NewServer creates a simulation loop consuming connections from conns.
//
// Precondition: conns, rotation, journal and logger must be non-nil.
// Postcondition: Returns a Server ready to Run.
func NewServer(cfg config.Config, conns <-chan net.Conn, rotation *levels.Rotation, journal Journal, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		conns:    conns,
		rotation: rotation,
		journal:  journal,
		logger:   logger,
		now:      time.Now,
	}
}

// Run steps the loop every poll interval until ctx is cancelled.
//
// Postcondition: any active session has been stopped, its connection closed,
// and its result recorded.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Game.PollInterval)
	defer ticker.Stop()

	s.logger.Info("simulation loop started",
		zap.Duration("tick_period", s.cfg.Game.TickPeriod),
		zap.Duration("poll_interval", s.cfg.Game.PollInterval),
	)

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			s.logger.Info("simulation loop stopped")
			return nil
		case <-ticker.C:
		}
		s.step(ctx)
	}
}

// step runs one loop iteration: inbound events, ticks, outbound messages,
// then new connections.
func (s *Server) step(ctx context.Context) {
	if a := s.active; a != nil {
		s.drainInbound(a)
		if s.active != nil && !a.closing {
			for a.clock.Tick() {
				a.ctrl.Tick()
			}
			s.forward(a)
		}
		if s.active != nil && a.closing {
			select {
			case <-a.done:
				s.teardown()
			default:
			}
		}
	}
	s.acceptPending(ctx)
}

func (s *Server) drainInbound(a *activeSession) {
	for {
		ev, ok, err := a.in.TryRecv()
		if !ok || err != nil {
			return
		}
		if ev.Ended {
			a.gone = true
			s.teardown()
			return
		}
		if a.closing || a.ctrl.Ended() {
			continue
		}
		a.ctrl.Submit(ev.Msg)
	}
}

func (s *Server) forward(a *activeSession) {
	for {
		msg, ok := a.ctrl.Response()
		if !ok {
			return
		}
		if err := a.out.Send(msg); err != nil {
			return
		}
		if msg.IsSentinel() {
			a.out.Close()
			a.closing = true
			return
		}
	}
}

func (s *Server) acceptPending(ctx context.Context) {
	for {
		select {
		case conn := <-s.conns:
			if s.active != nil {
				s.logger.Warn("refusing connection",
					zap.String("remote_addr", conn.RemoteAddr().String()),
					zap.Error(ErrSessionActive),
				)
				conn.Close()
				continue
			}
			s.start(ctx, conn)
		default:
			return
		}
	}
}

// start builds a fresh session for conn and launches its bridge.
func (s *Server) start(ctx context.Context, conn net.Conn) {
	start := time.Now()
	level := s.rotation.Next()
	m := dungeon.Generate(level.Seed)

	id := uuid.New()
	in, out := mailbox.Pair[bridge.Event, protocol.ServerMessage]()
	bctx, cancel := context.WithCancel(ctx)

	a := &activeSession{
		id:      id,
		level:   level,
		remote:  conn.RemoteAddr().String(),
		started: s.now(),
		ctrl: session.NewController(m, session.Options{
			ResolveTicks: s.cfg.Game.ResolveTicks,
			EndCountdown: s.cfg.Game.EndCountdown,
		}),
		clock:  clock.NewWithSource(s.cfg.Game.TickPeriod, s.now),
		in:     in,
		out:    out,
		done:   make(chan struct{}),
		cancel: cancel,
	}
	s.active = a

	logger := s.logger.With(zap.String("session_id", id.String()))
	tc := transport.NewConn(conn, s.cfg.Server.ReadTimeout, s.cfg.Server.WriteTimeout)
	tc.SetMaxLineBytes(s.cfg.Server.MaxLineBytes)
	b := bridge.New(tc, in, out, logger)
	go func() {
		defer close(a.done)
		if err := b.Run(bctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("connection worker exited", zap.Error(err))
		}
	}()

	logger.Info("session started",
		zap.String("level", level.Name),
		zap.Uint32("seed", level.Seed),
		zap.String("remote_addr", a.remote),
		zap.Stringer("spawn", m.PlayerPos()),
		zap.Duration("setup", time.Since(start)),
	)
}

// teardown releases the active session and records its result.
func (s *Server) teardown() {
	a := s.active
	s.active = nil

	a.cancel()
	a.out.Close()
	<-a.done
	a.in.Close()

	snap := a.ctrl.Snapshot()
	res := postgres.Result{
		ID:                a.id,
		Seed:              a.level.Seed,
		Outcome:           outcome(snap.State),
		DiamondsCollected: snap.DiamondsCollected,
		Moves:             snap.Moves,
		Digs:              snap.Digs,
		RemoteAddr:        a.remote,
		StartedAt:         a.started,
		EndedAt:           s.now(),
	}

	s.logger.Info("session ended",
		zap.String("session_id", a.id.String()),
		zap.String("outcome", res.Outcome),
		zap.Bool("client_gone", a.gone),
		zap.Int("diamonds_collected", res.DiamondsCollected),
		zap.Int("diamonds_left", snap.DiamondsLeft),
		zap.Int("moves", res.Moves),
		zap.Int("digs", res.Digs),
		zap.Int("ticks", snap.Ticks),
		zap.Duration("duration", res.Duration()),
	)

	s.records.Add(1)
	go func() {
		defer s.records.Done()
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()
		if err := s.journal.Record(ctx, res); err != nil {
			s.logger.Error("recording session", zap.String("session_id", res.ID.String()), zap.Error(err))
		}
	}()
}

// shutdown stops the active session, if any, and waits for pending journal writes.
func (s *Server) shutdown() {
	if s.active != nil {
		s.active.ctrl.Stop()
		s.teardown()
	}
	s.records.Wait()
}

// outcome classifies a finished session for the journal. A session still
// Playing when torn down was abandoned by its client.
func outcome(state session.State) string {
	switch state {
	case session.Won:
		return postgres.OutcomeWon
	case session.Stopped:
		return postgres.OutcomeStopped
	default:
		return postgres.OutcomeDisconnected
	}
}
