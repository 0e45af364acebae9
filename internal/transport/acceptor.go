package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cryptdancer/internal/config"
)

// Acceptor listens on the configured TCP address and hands every accepted
// connection to the simulation loop through Conns. It never decides whether
// a connection is admitted.
type Acceptor struct {
	cfg    config.ServerConfig
	logger *zap.Logger

	conns    chan net.Conn
	listener net.Listener
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewAcceptor creates an acceptor for cfg.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with ListenAndServe.
func NewAcceptor(cfg config.ServerConfig, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:    cfg,
		logger: logger,
		conns:  make(chan net.Conn),
		quit:   make(chan struct{}),
	}
}

// Conns delivers accepted connections. The receiver owns each connection.
func (a *Acceptor) Conns() <-chan net.Conn {
	return a.conns
}

// ListenAndServe starts the TCP listener and accepts connections until Stop
// is called. This method blocks until the acceptor is stopped.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
				a.logger.Error("accepting connection", zap.Error(err))
				continue
			}
		}

		a.logger.Debug("connection accepted",
			zap.String("remote_addr", conn.RemoteAddr().String()),
		)

		select {
		case a.conns <- conn:
		case <-a.quit:
			conn.Close()
			return nil
		}
	}
}

// Stop closes the listener. Connections already handed out are unaffected.
//
// Postcondition: ListenAndServe returns.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	a.running = false

	close(a.quit)
	if a.listener != nil {
		a.listener.Close()
	}

	a.logger.Info("acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning returns whether the acceptor is currently accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
