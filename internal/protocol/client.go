// Package protocol defines the line protocol spoken between the remote client
// and the game server: the client commands, the server replies, and their
// byte encodings.
package protocol

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/cryptdancer/internal/game/dungeon"
)

// Command words.
const (
	CmdEnd  = "END"
	CmdMap  = "MAP"
	CmdMove = "MOVE"
)

// ClientKind discriminates ClientMessage variants.
type ClientKind uint8

const (
	EmptyCommand ClientKind = iota
	UnknownCommand
	InvalidArguments
	EndGameCommand
	GetMap
	Move
)

func (k ClientKind) String() string {
	switch k {
	case EmptyCommand:
		return "empty"
	case UnknownCommand:
		return "unknown"
	case InvalidArguments:
		return "invalid_arguments"
	case EndGameCommand:
		return "end"
	case GetMap:
		return "map"
	case Move:
		return "move"
	}
	return fmt.Sprintf("ClientKind(%d)", uint8(k))
}

// ArgProblem names what was wrong with an InvalidArguments line.
type ArgProblem uint8

const (
	NoArgProblem ArgProblem = iota
	ExtraArguments
	AbsentArguments
	BadDirection
)

// ClientMessage is one decoded client line.
//
// Text carries the unknown command word for UnknownCommand and the problem
// description for InvalidArguments; Direction is set for Move. For
// InvalidArguments, Problem and Command identify the offending line and Word
// holds the rejected direction word.
type ClientMessage struct {
	Kind      ClientKind
	Text      string
	Direction dungeon.Direction
	Problem   ArgProblem
	Command   string
	Word      string
}

// MoveMessage returns a Move message for d.
func MoveMessage(d dungeon.Direction) ClientMessage {
	return ClientMessage{Kind: Move, Direction: d}
}

// TooManyArguments builds the InvalidArguments message for command.
func TooManyArguments(command string) ClientMessage {
	return ClientMessage{
		Kind:    InvalidArguments,
		Text:    fmt.Sprintf("too many arguments for command «%s»", command),
		Problem: ExtraArguments,
		Command: command,
	}
}

// MissingArguments builds the InvalidArguments message for command.
func MissingArguments(command string) ClientMessage {
	return ClientMessage{
		Kind:    InvalidArguments,
		Text:    fmt.Sprintf("missing arguments for command «%s»", command),
		Problem: AbsentArguments,
		Command: command,
	}
}

// InvalidDirection builds the InvalidArguments message for an unknown direction word.
func InvalidDirection(word string) ClientMessage {
	return ClientMessage{
		Kind:    InvalidArguments,
		Text:    fmt.Sprintf("invalid direction «%s»", word),
		Problem: BadDirection,
		Command: CmdMove,
		Word:    word,
	}
}

// ParseDirection maps an exact, case-sensitive direction word to a Direction.
func ParseDirection(word string) (dungeon.Direction, bool) {
	switch word {
	case "UP":
		return dungeon.Up, true
	case "DOWN":
		return dungeon.Down, true
	case "LEFT":
		return dungeon.Left, true
	case "RIGHT":
		return dungeon.Right, true
	}
	return 0, false
}

// DecodeClient parses one line, already stripped of its terminator.
// Invalid UTF-8 is replaced rather than rejected.
//
// Postcondition: always returns a message; malformed input maps to
// EmptyCommand, UnknownCommand or InvalidArguments.
func DecodeClient(line []byte) ClientMessage {
	fields := strings.Fields(strings.ToValidUTF8(string(line), "�"))
	if len(fields) == 0 {
		return ClientMessage{Kind: EmptyCommand}
	}

	switch cmd := fields[0]; cmd {
	case CmdEnd:
		if len(fields) > 1 {
			return TooManyArguments(CmdEnd)
		}
		return ClientMessage{Kind: EndGameCommand}
	case CmdMap:
		if len(fields) > 1 {
			return TooManyArguments(CmdMap)
		}
		return ClientMessage{Kind: GetMap}
	case CmdMove:
		switch {
		case len(fields) < 2:
			return MissingArguments(CmdMove)
		case len(fields) > 2:
			return TooManyArguments(CmdMove)
		}
		d, ok := ParseDirection(fields[1])
		if !ok {
			return InvalidDirection(fields[1])
		}
		return MoveMessage(d)
	default:
		return ClientMessage{Kind: UnknownCommand, Text: cmd}
	}
}

// Encode renders the message as the line a client would send for it.
//
// Postcondition: DecodeClient(m.Encode()) == m for every message DecodeClient
// can return.
func (m ClientMessage) Encode() []byte {
	switch m.Kind {
	case EmptyCommand:
		return []byte{}
	case UnknownCommand:
		return []byte(m.Text)
	case EndGameCommand:
		return []byte(CmdEnd)
	case GetMap:
		return []byte(CmdMap)
	case Move:
		return []byte(CmdMove + " " + m.Direction.String())
	case InvalidArguments:
		return m.encodeInvalid()
	default:
		return []byte(m.Text)
	}
}

// encodeInvalid picks the shortest line that decodes to the same problem.
// A MOVE with extra arguments keeps a valid direction so that the word count,
// not the direction, is what gets rejected.
func (m ClientMessage) encodeInvalid() []byte {
	switch m.Problem {
	case ExtraArguments:
		if m.Command == CmdMove {
			return []byte(CmdMove + " " + dungeon.Up.String() + " X")
		}
		return []byte(m.Command + " X")
	case AbsentArguments:
		return []byte(m.Command)
	case BadDirection:
		return []byte(CmdMove + " " + m.Word)
	}
	return []byte(m.Text)
}

func (m ClientMessage) String() string {
	switch m.Kind {
	case Move:
		return "move " + m.Direction.String()
	case UnknownCommand, InvalidArguments:
		return m.Kind.String() + ": " + m.Text
	}
	return m.Kind.String()
}
