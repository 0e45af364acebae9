// Package session holds the authoritative state machine of one game session:
// the level, the player's in-flight action, and the replies owed to the client.
package session

import (
	"fmt"

	"github.com/cory-johannsen/cryptdancer/internal/game/dungeon"
	"github.com/cory-johannsen/cryptdancer/internal/protocol"
)

// Default timings, in ticks.
const (
	DefaultResolveTicks = 4
	DefaultEndCountdown = 6
)

// State is the lifecycle state of a session.
type State uint8

const (
	Playing State = iota
	Stopped
	Won
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	case Won:
		return "won"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Terminal reports whether the state no longer accepts commands.
func (s State) Terminal() bool {
	return s != Playing
}

// ActionKind discriminates the in-flight action.
type ActionKind uint8

const (
	Idle ActionKind = iota
	MovingPlayer
	DiggingWall
)

func (k ActionKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case MovingPlayer:
		return "moving"
	case DiggingWall:
		return "digging"
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// Action is the one world mutation waiting for its ticks to elapse.
type Action struct {
	Kind      ActionKind
	Direction dungeon.Direction // MovingPlayer
	Target    dungeon.Position  // DiggingWall
	Progress  int
}

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	ResolveTicks int
	EndCountdown int
}

// Snapshot is a read-only summary of a controller.
type Snapshot struct {
	State             State
	Action            ActionKind
	Player            dungeon.Position
	DiamondsLeft      int
	DiamondsCollected int
	Moves             int
	Digs              int
	Ticks             int
}

// Controller interprets client commands against the map and commits actions
// as ticks elapse. It is owned by the simulation loop and is not safe for
// concurrent use.
//
// A command accepted while an action is in flight is deferred without a
// reply; it is handled, in arrival order, once the action has resolved.
type Controller struct {
	m       *dungeon.Map
	state   State
	action  Action
	resolve int

	countdown int
	ended     bool
	offered   bool

	reply    *protocol.ServerMessage
	deferred []protocol.ClientMessage

	collected int
	moves     int
	digs      int
	ticks     int
}

// NewController starts a Playing session on m.
//
// Precondition: m must be non-nil.
// Postcondition: the controller is Playing with an Idle action and no reply.
func NewController(m *dungeon.Map, opts Options) *Controller {
	if m == nil {
		panic("session: NewController called with nil map")
	}
	if opts.ResolveTicks <= 0 {
		opts.ResolveTicks = DefaultResolveTicks
	}
	if opts.EndCountdown <= 0 {
		opts.EndCountdown = DefaultEndCountdown
	}
	return &Controller{
		m:         m,
		state:     Playing,
		resolve:   opts.ResolveTicks,
		countdown: opts.EndCountdown,
	}
}

// Submit hands the controller one decoded client command.
//
// Precondition: the EndConnection sentinel has not been offered yet.
// Postcondition: while Playing and Idle the reply is buffered for Response;
// while an action is in flight or a reply is pending the command is deferred;
// in a terminal state it is dropped without reply.
func (c *Controller) Submit(msg protocol.ClientMessage) {
	if c.ended {
		panic(fmt.Sprintf("session: command %v submitted after the connection was ended", msg))
	}
	if c.state.Terminal() {
		return
	}
	if c.busy() {
		c.deferred = append(c.deferred, msg)
		return
	}
	c.handle(msg)
}

// busy reports whether a new command must wait.
func (c *Controller) busy() bool {
	return c.action.Kind != Idle || c.reply != nil
}

func (c *Controller) handle(msg protocol.ClientMessage) {
	var reply protocol.ServerMessage
	switch msg.Kind {
	case protocol.EmptyCommand:
		reply = protocol.ErrEmptyCommand()
	case protocol.UnknownCommand:
		reply = protocol.ErrUnknownCommand(msg.Text)
	case protocol.InvalidArguments:
		reply = protocol.Errorf("%s", msg.Text)
	case protocol.EndGameCommand:
		c.state = Stopped
		reply = protocol.ServerMessage{Kind: protocol.EndGame}
	case protocol.GetMap:
		reply = protocol.ServerMessage{Kind: protocol.MapResponse, Text: c.m.Repr()}
	case protocol.Move:
		reply = c.move(msg.Direction)
	default:
		panic(fmt.Sprintf("session: unhandled client message kind %v", msg.Kind))
	}
	c.reply = &reply
}

func (c *Controller) move(d dungeon.Direction) protocol.ServerMessage {
	dest := c.m.PlayerPos().Moved(d)
	kind, ok := c.m.TileAt(dest)
	switch {
	case ok && kind.Walkable():
		c.action = Action{Kind: MovingPlayer, Direction: d}
	case ok && kind.Diggable():
		c.action = Action{Kind: DiggingWall, Target: dest}
	default:
		return protocol.ErrInvalidMove()
	}
	return protocol.ServerMessage{Kind: protocol.ValidMove}
}

// Tick advances the session by one clock period.
//
// Postcondition: an action that reaches its threshold is committed and the
// action returns to Idle; in a terminal state with no action the end
// countdown moves one step, and the EndConnection sentinel is offered once it
// reaches zero.
func (c *Controller) Tick() {
	c.ticks++

	if c.action.Kind != Idle {
		c.action.Progress++
		if c.action.Progress >= c.resolve {
			c.commit()
		}
		return
	}

	if c.state.Terminal() && !c.ended {
		if c.countdown == 0 {
			c.ended = true
			return
		}
		c.countdown--
	}
}

func (c *Controller) commit() {
	switch c.action.Kind {
	case MovingPlayer:
		c.m.MovePlayer(c.action.Direction)
		c.moves++
		if kind, _ := c.m.TileAt(c.m.PlayerPos()); kind == dungeon.Exit && c.m.DiamondCount() == 0 {
			c.state = Won
		}
		if c.m.PickUpDiamond() {
			c.collected++
		}
	case DiggingWall:
		c.m.Dig(c.action.Target)
		c.digs++
	}
	c.action = Action{}
}

// Response returns the next message owed to the bridge, if any.
//
// Postcondition: the direct reply to the last handled command is returned
// first, even while the action it started is in flight. Deferred commands
// are then handled one at a time while Idle. The EndConnection sentinel is
// returned only while Idle, once.
func (c *Controller) Response() (protocol.ServerMessage, bool) {
	if c.reply != nil {
		r := *c.reply
		c.reply = nil
		return r, true
	}
	if c.action.Kind != Idle {
		return protocol.ServerMessage{}, false
	}
	for len(c.deferred) > 0 && !c.state.Terminal() && c.reply == nil {
		next := c.deferred[0]
		c.deferred = c.deferred[1:]
		c.handle(next)
	}
	if c.reply != nil {
		r := *c.reply
		c.reply = nil
		return r, true
	}
	if c.ended && !c.offered {
		c.offered = true
		c.deferred = nil
		return protocol.ServerMessage{Kind: protocol.EndConnection}, true
	}
	return protocol.ServerMessage{}, false
}

// Ended reports whether the EndConnection sentinel has been produced.
func (c *Controller) Ended() bool {
	return c.ended
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Action returns the in-flight action.
func (c *Controller) Action() Action {
	return c.action
}

// Map returns the session map. Callers must not mutate it.
func (c *Controller) Map() *dungeon.Map {
	return c.m
}

// Stop ends a Playing session from the server side, as on shutdown.
func (c *Controller) Stop() {
	if c.state == Playing {
		c.state = Stopped
	}
}

// Snapshot summarizes the session.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:             c.state,
		Action:            c.action.Kind,
		Player:            c.m.PlayerPos(),
		DiamondsLeft:      c.m.DiamondCount(),
		DiamondsCollected: c.collected,
		Moves:             c.moves,
		Digs:              c.digs,
		Ticks:             c.ticks,
	}
}
