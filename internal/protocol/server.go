package protocol

import (
	"bytes"
	"fmt"
)

// Greeting is written once when a connection is accepted.
const Greeting = "DÉBUT"

// Reply words.
const (
	replyOK    = "OK"
	replyNOK   = "NOK"
	replyEnd   = "END"
	errorSpace = replyNOK + " "
)

// ServerKind discriminates ServerMessage variants.
type ServerKind uint8

const (
	// EndConnection is a lifecycle sentinel; it is never written to the wire.
	EndConnection ServerKind = iota
	Error
	ValidMove
	MapResponse
	EndGame
)

func (k ServerKind) String() string {
	switch k {
	case EndConnection:
		return "end_connection"
	case Error:
		return "error"
	case ValidMove:
		return "ok"
	case MapResponse:
		return "map"
	case EndGame:
		return "end"
	}
	return fmt.Sprintf("ServerKind(%d)", uint8(k))
}

// ServerMessage is one server reply. Text holds the error reason for Error
// and the map representation for MapResponse.
type ServerMessage struct {
	Kind ServerKind
	Text string
}

// Errorf builds an Error reply.
func Errorf(format string, args ...any) ServerMessage {
	return ServerMessage{Kind: Error, Text: fmt.Sprintf(format, args...)}
}

// ErrEmptyCommand is the reply to a blank line.
func ErrEmptyCommand() ServerMessage { return Errorf("empty command") }

// ErrUnknownCommand is the reply to an unrecognized command word.
func ErrUnknownCommand(word string) ServerMessage { return Errorf("unknown command «%s»", word) }

// ErrInvalidMove is the reply to a move into stone, border, or off the map.
func ErrInvalidMove() ServerMessage { return Errorf("invalid move") }

// IsSentinel reports whether m only signals lifecycle and must not be written.
func (m ServerMessage) IsSentinel() bool {
	return m.Kind == EndConnection
}

// Encode returns the payload bytes, without line terminator.
func (m ServerMessage) Encode() []byte {
	switch m.Kind {
	case Error:
		return []byte(errorSpace + m.Text)
	case ValidMove:
		return []byte(replyOK)
	case MapResponse:
		return []byte(m.Text)
	case EndGame:
		return []byte(replyEnd)
	default:
		return []byte{}
	}
}

// DecodeServer parses one reply line as a client sees it. Any line that is
// not a status word is taken to be a map.
func DecodeServer(line []byte) ServerMessage {
	switch {
	case len(line) == 0:
		return ServerMessage{Kind: EndConnection}
	case bytes.Equal(line, []byte(replyOK)):
		return ServerMessage{Kind: ValidMove}
	case bytes.Equal(line, []byte(replyEnd)):
		return ServerMessage{Kind: EndGame}
	case bytes.HasPrefix(line, []byte(errorSpace)):
		return ServerMessage{Kind: Error, Text: string(line[len(errorSpace):])}
	default:
		return ServerMessage{Kind: MapResponse, Text: string(line)}
	}
}

func (m ServerMessage) String() string {
	switch m.Kind {
	case Error:
		return "error: " + m.Text
	case MapResponse:
		return fmt.Sprintf("map (%d bytes)", len(m.Text))
	}
	return m.Kind.String()
}
