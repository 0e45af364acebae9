package mailbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cryptdancer/internal/mailbox"
)

func TestMailbox_TryRecvEmpty(t *testing.T) {
	mb := mailbox.New[int]()
	_, ok, err := mb.TryRecv()
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestMailbox_CloseDrainsThenReportsClosed(t *testing.T) {
	mb := mailbox.New[string]()
	require.NoError(t, mb.Send("a"))
	mb.Close()
	mb.Close()

	v, ok, err := mb.TryRecv()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok, err = mb.TryRecv()
	assert.False(t, ok)
	assert.ErrorIs(t, err, mailbox.ErrClosed)

	assert.ErrorIs(t, mb.Send("b"), mailbox.ErrClosed)
}

func TestMailbox_RecvBlocksUntilSend(t *testing.T) {
	mb := mailbox.New[int]()
	got := make(chan int, 1)
	go func() {
		v, err := mb.Recv(context.Background())
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, mb.Send(7))

	select {
	case v := <-got:
		assert.Equal(t, 7, v)
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not return after Send")
	}
}

func TestMailbox_RecvReturnsOnClose(t *testing.T) {
	mb := mailbox.New[int]()
	errCh := make(chan error, 1)
	go func() {
		_, err := mb.Recv(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	mb.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, mailbox.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not return after Close")
	}
}

func TestMailbox_RecvHonorsContext(t *testing.T) {
	mb := mailbox.New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := mb.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProperty_MailboxIsFIFO(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOf(rapid.Int()).Draw(rt, "values")
		mb := mailbox.New[int]()
		for _, v := range values {
			if err := mb.Send(v); err != nil {
				rt.Fatalf("send: %v", err)
			}
		}
		if mb.Len() != len(values) {
			rt.Fatalf("Len() = %d, want %d", mb.Len(), len(values))
		}
		for i, want := range values {
			got, ok, err := mb.TryRecv()
			if !ok || err != nil || got != want {
				rt.Fatalf("value %d: got (%d, %v, %v), want %d", i, got, ok, err, want)
			}
		}
	})
}

func TestMailbox_ConcurrentProducerConsumer(t *testing.T) {
	mb := mailbox.New[int]()
	const n = 1000
	go func() {
		for i := 0; i < n; i++ {
			_ = mb.Send(i)
		}
		mb.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < n; i++ {
		v, err := mb.Recv(ctx)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	_, err := mb.Recv(ctx)
	assert.ErrorIs(t, err, mailbox.ErrClosed)
}
