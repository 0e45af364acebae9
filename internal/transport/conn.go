// Package transport provides the TCP side of the line protocol: an acceptor
// handing connections to the simulation loop and a line-oriented connection.
package transport

import (
	"bufio"
	"errors"
	"net"
	"os"
	"sync"
	"time"
)

// DefaultMaxLineBytes is the line length limit of a new Conn.
const DefaultMaxLineBytes = 4096

// ErrLineTooLong is returned by ReadLine when a line outgrows the limit
// before its terminator arrives.
var ErrLineTooLong = errors.New("line too long")

// Conn wraps a TCP connection with newline-framed reads and writes.
//
// Reads are performed by a single goroutine; writes are serialized.
type Conn struct {
	raw     net.Conn
	reader  *bufio.Reader
	partial []byte
	maxLine int
	mu      sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		maxLine:      DefaultMaxLineBytes,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// SetMaxLineBytes limits the length of a line, not counting its "\n".
//
// Precondition: n must be positive and ReadLine must not be running.
func (c *Conn) SetMaxLineBytes(n int) {
	c.maxLine = n
}

// ReadLine reads one line, without its "\n" or "\r\n" terminator.
// Bytes received before a timeout are kept and prefixed to the next line.
//
// Postcondition: Returns the line, or an error: IsTimeout(err) when the read
// deadline passed, io.EOF when the peer closed the stream, ErrLineTooLong
// when more than the line limit arrived without a terminator.
func (c *Conn) ReadLine() ([]byte, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	for {
		chunk, err := c.reader.ReadSlice('\n')
		c.partial = append(c.partial, chunk...)
		n := len(c.partial)
		if err == nil {
			n--
		}
		if n > c.maxLine {
			c.partial = nil
			return nil, ErrLineTooLong
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return nil, err
	}

	line := c.partial[:len(c.partial)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	out := make([]byte, len(line))
	copy(out, line)
	c.partial = c.partial[:0]
	return out, nil
}

// WriteLine sends payload followed by "\n".
//
// Postcondition: payload + "\n" is written to the connection, or an error is returned.
func (c *Conn) WriteLine(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, payload...)
	buf = append(buf, '\n')
	_, err := c.raw.Write(buf)
	return err
}

// Close closes the underlying TCP connection.
//
// Postcondition: The connection is closed and no longer usable.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the peer address, or "<unknown>" when unavailable.
func (c *Conn) RemoteAddr() string {
	if addr := c.raw.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "<unknown>"
}

// IsTimeout reports whether err is a read or write deadline expiry.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
