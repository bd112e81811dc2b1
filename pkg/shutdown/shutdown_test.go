package shutdown

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/psantana5/elapsed/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logging.Logger {
	l := logging.NewLogger(logging.ERROR, false)
	l.SetOutput(io.Discard)
	return l
}

func TestShutdownRunsHooksLIFO(t *testing.T) {
	m := New(time.Second, quietLogger())

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, m.Shutdown())
	assert.Equal(t, []string{"third", "second", "first"}, order)

	select {
	case <-m.Done():
	default:
		t.Fatal("Done not closed after Shutdown")
	}
}

func TestShutdownCollectsErrors(t *testing.T) {
	m := New(time.Second, quietLogger())
	boom := errors.New("boom")

	ran := false
	m.Register("ok", func(context.Context) error { ran = true; return nil })
	m.Register("bad", func(context.Context) error { return boom })

	err := m.Shutdown()
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
	assert.True(t, ran, "later hooks still run after a failure")
}

func TestShutdownTimeout(t *testing.T) {
	m := New(20*time.Millisecond, quietLogger())
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	err := m.Shutdown()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitReturnsOnTrigger(t *testing.T) {
	m := New(time.Second, quietLogger())
	go m.Trigger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, m.Wait(ctx))
}

func TestWaitReturnsOnContext(t *testing.T) {
	m := New(time.Second, quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)
}

type closer struct{ closed bool }

func (c *closer) Close() error { c.closed = true; return nil }

func TestCloseResource(t *testing.T) {
	c := &closer{}
	m := New(time.Second, quietLogger())
	m.Register("closer", CloseResource(c))
	require.NoError(t, m.Shutdown())
	assert.True(t, c.closed)
}
