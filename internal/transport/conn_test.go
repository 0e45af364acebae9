package transport

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func pipeConn(t *testing.T, readTimeout time.Duration) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, readTimeout, time.Second), client
}

func writeAsync(client net.Conn, data string) {
	go func() { _, _ = client.Write([]byte(data)) }()
}

func TestConn_ReadLineStripsTerminators(t *testing.T) {
	conn, client := pipeConn(t, time.Second)
	writeAsync(client, "MOVE UP\r\nMAP\n")

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "MOVE UP", string(line))

	line, err = conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "MAP", string(line))
}

func TestConn_ReadLineEmpty(t *testing.T) {
	conn, client := pipeConn(t, time.Second)
	writeAsync(client, "\r\n")

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Empty(t, line)
}

func TestConn_ReadLineTimeoutKeepsPartial(t *testing.T) {
	conn, client := pipeConn(t, 50*time.Millisecond)
	writeAsync(client, "MO")

	_, err := conn.ReadLine()
	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	writeAsync(client, "VE LEFT\n")
	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "MOVE LEFT", string(line))
}

func TestConn_ReadLineLongerThanBuffer(t *testing.T) {
	conn, client := pipeConn(t, time.Second)
	conn.SetMaxLineBytes(20000)
	long := strings.Repeat("x", 10000)
	writeAsync(client, long+"\n")

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, long, string(line))
}

func TestConn_ReadLineAtLimit(t *testing.T) {
	conn, client := pipeConn(t, time.Second)
	conn.SetMaxLineBytes(8)
	writeAsync(client, "12345678\n")

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(line))
}

func TestConn_ReadLineTooLong(t *testing.T) {
	conn, client := pipeConn(t, time.Second)
	writeAsync(client, strings.Repeat("x", DefaultMaxLineBytes+1)+"\n")

	_, err := conn.ReadLine()
	assert.ErrorIs(t, err, ErrLineTooLong)
	assert.False(t, IsTimeout(err))
}

func TestConn_ReadLineTooLongAcrossTimeouts(t *testing.T) {
	conn, client := pipeConn(t, 30*time.Millisecond)
	conn.SetMaxLineBytes(10)

	writeAsync(client, "MOVE ")
	_, err := conn.ReadLine()
	require.True(t, IsTimeout(err))

	writeAsync(client, "UPUPUPUP")
	_, err = conn.ReadLine()
	assert.ErrorIs(t, err, ErrLineTooLong)
}

func TestConn_ReadLineEOF(t *testing.T) {
	conn, client := pipeConn(t, time.Second)
	client.Close()

	_, err := conn.ReadLine()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, IsTimeout(err))
}

func TestConn_WriteLineAppendsNewline(t *testing.T) {
	conn, client := pipeConn(t, time.Second)

	go func() { _ = conn.WriteLine([]byte("OK")) }()

	buf := make([]byte, 8)
	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := io.ReadFull(client, buf[:3])
	require.NoError(t, err)
	assert.Equal(t, "OK\n", string(buf[:n]))
}

func TestConn_WriteLineTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	conn := NewConn(server, time.Second, 30*time.Millisecond)
	defer conn.Close()

	// nobody reads from client
	err := conn.WriteLine([]byte("OK"))
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(io.EOF))
}

func TestPropertyReadLineRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z0-9 ]{0,40}`), 1, 10).Draw(rt, "lines")

		server, client := net.Pipe()
		defer server.Close()
		defer client.Close()
		conn := NewConn(server, time.Second, time.Second)

		go func() {
			for _, l := range lines {
				_, _ = client.Write([]byte(l + "\r\n"))
			}
		}()

		for _, want := range lines {
			got, err := conn.ReadLine()
			if err != nil {
				rt.Fatalf("reading %q: %v", want, err)
			}
			if string(got) != want {
				rt.Fatalf("got %q, want %q", got, want)
			}
		}
	})
}
