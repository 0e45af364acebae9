// Package bridge runs the per-connection worker that moves lines between a
// client socket and the simulation loop's mailboxes.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cryptdancer/internal/mailbox"
	"github.com/cory-johannsen/cryptdancer/internal/protocol"
	"github.com/cory-johannsen/cryptdancer/internal/transport"
)

// Event is what the bridge forwards to the simulation loop: either a decoded
// client command or the notice that the connection is gone.
type Event struct {
	Msg   protocol.ClientMessage
	Ended bool
}

// Inbox carries events from the bridge to the simulation loop.
type Inbox = mailbox.Mailbox[Event]

// Outbox carries server messages from the simulation loop to the bridge.
type Outbox = mailbox.Mailbox[protocol.ServerMessage]

// Bridge owns one client connection for its whole life.
type Bridge struct {
	conn   *transport.Conn
	in     *Inbox
	out    *Outbox
	logger *zap.Logger
}

// New creates a bridge for conn.
//
// Precondition: conn, in, out and logger must be non-nil.
// Postcondition: Returns a Bridge ready to Run. The bridge owns conn from now on.
func New(conn *transport.Conn, in *Inbox, out *Outbox, logger *zap.Logger) *Bridge {
	return &Bridge{
		conn:   conn,
		in:     in,
		out:    out,
		logger: logger.With(zap.String("remote_addr", conn.RemoteAddr())),
	}
}

// Run greets the client and then alternates between reading commands and
// writing replies until the session ends or the connection fails.
//
// A command is forwarded and then exactly one reply is awaited before the
// next line is read. While no line arrives, each read timeout is used to
// poll for a message initiated by the server.
//
// Cancelling ctx closes the connection, which unblocks a pending read at once.
//
// Postcondition: the connection is closed. When the client went away an
// Ended event has been sent to the inbox.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = b.conn.Close() })
	defer stop()

	if err := b.conn.WriteLine([]byte(protocol.Greeting)); err != nil {
		b.ended()
		return fmt.Errorf("writing greeting: %w", err)
	}
	b.logger.Info("client connected")

	for {
		line, err := b.conn.ReadLine()
		switch {
		case err == nil:
		case transport.IsTimeout(err):
			done, err := b.poll(ctx)
			if done || err != nil {
				return err
			}
			continue
		case ctx.Err() != nil:
			b.ended()
			return ctx.Err()
		case errors.Is(err, io.EOF):
			b.logger.Info("client disconnected")
			b.ended()
			return nil
		case errors.Is(err, transport.ErrLineTooLong):
			b.logger.Warn("client line too long, closing")
			b.ended()
			return fmt.Errorf("reading from client: %w", err)
		default:
			b.logger.Warn("reading from client", zap.Error(err))
			b.ended()
			return fmt.Errorf("reading from client: %w", err)
		}

		msg := protocol.DecodeClient(line)
		b.logger.Debug("command received", zap.Stringer("command", msg))
		if err := b.in.Send(Event{Msg: msg}); err != nil {
			return nil
		}

		reply, err := b.out.Recv(ctx)
		if errors.Is(err, mailbox.ErrClosed) {
			return nil
		}
		if err != nil {
			b.ended()
			return err
		}
		if done, err := b.deliver(reply); done || err != nil {
			return err
		}
	}
}

// poll writes at most one pending server message without blocking.
func (b *Bridge) poll(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		b.ended()
		return true, err
	}
	msg, ok, err := b.out.TryRecv()
	if err != nil {
		return true, nil
	}
	if !ok {
		return false, nil
	}
	return b.deliver(msg)
}

// deliver writes msg, reporting done for the EndConnection sentinel.
func (b *Bridge) deliver(msg protocol.ServerMessage) (bool, error) {
	if msg.IsSentinel() {
		b.logger.Info("closing connection")
		return true, nil
	}
	if err := b.conn.WriteLine(msg.Encode()); err != nil {
		b.logger.Warn("writing to client", zap.Error(err))
		b.ended()
		return true, fmt.Errorf("writing to client: %w", err)
	}
	return false, nil
}

func (b *Bridge) ended() {
	_ = b.in.Send(Event{Ended: true})
}
