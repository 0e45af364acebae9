package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/cryptdancer/internal/config"
)

func startAcceptor(t *testing.T) (*Acceptor, chan error) {
	t.Helper()
	cfg := config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0, // random port
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	acc := NewAcceptor(cfg, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() {
		errCh <- acc.ListenAndServe()
	}()

	deadline := time.After(2 * time.Second)
	for !acc.IsRunning() || acc.Addr() == "" {
		select {
		case <-deadline:
			t.Fatal("acceptor did not start in time")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	return acc, errCh
}

func TestAcceptorHandsOffConnections(t *testing.T) {
	acc, errCh := startAcceptor(t)

	client, err := net.DialTimeout("tcp", acc.Addr(), 2*time.Second)
	require.NoError(t, err)
	defer client.Close()

	var accepted net.Conn
	select {
	case accepted = <-acc.Conns():
	case <-time.After(2 * time.Second):
		t.Fatal("no connection handed off")
	}
	defer accepted.Close()

	conn := NewConn(accepted, time.Second, time.Second)
	require.NoError(t, conn.WriteLine([]byte("DÉBUT")))

	buf := make([]byte, 32)
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "DÉBUT\n", string(buf[:n]))
	assert.Equal(t, client.LocalAddr().String(), conn.RemoteAddr())

	acc.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	assert.False(t, acc.IsRunning())
}

func TestAcceptorStopWhileHandOffPending(t *testing.T) {
	acc, errCh := startAcceptor(t)

	client, err := net.DialTimeout("tcp", acc.Addr(), 2*time.Second)
	require.NoError(t, err)
	defer client.Close()

	// nobody receives from Conns
	time.Sleep(50 * time.Millisecond)
	acc.Stop()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
}

func TestAcceptorStopIdempotent(t *testing.T) {
	acc, errCh := startAcceptor(t)
	acc.Stop()
	acc.Stop()
	<-errCh
}

func TestAcceptorListenError(t *testing.T) {
	cfg := config.ServerConfig{Host: "256.0.0.1", Port: 1}
	acc := NewAcceptor(cfg, zaptest.NewLogger(t))
	assert.Error(t, acc.ListenAndServe())
}
