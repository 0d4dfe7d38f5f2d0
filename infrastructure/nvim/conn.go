// Package nvim connects to the Neovim instance that started this process as
// a job and issues the host commands the service needs.
package nvim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/neovim/go-client/nvim"
)

// ErrClosed is returned once the connection has been closed locally.
var ErrClosed = errors.New("nvim connection closed")

// Event is an inbound notification or request for one of the registered
// event names.
type Event struct {
	Method string
	Args   []any

	seq   uint64
	reply chan error
}

// Seq numbers events in the order they were received, starting at 1.
func (e Event) Seq() uint64 { return e.seq }

// Conn is a msgpack-RPC session with Neovim. Incoming events are handed out
// one at a time by Next; the editor's call returns once Reply is called for
// its event, so notifications are processed in the order they were sent.
type Conn struct {
	v      *nvim.Nvim
	logger *slog.Logger

	events chan Event
	seq    atomic.Uint64

	served   chan struct{}
	serveErr error

	done      chan struct{}
	closeOnce sync.Once
}

// NewConn starts a session reading from r and writing to w, with a handler
// for each name in events. closer, if non-nil, is closed by Close to unblock
// the reader.
func NewConn(r io.Reader, w io.Writer, closer io.Closer, logger *slog.Logger, events ...string) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if closer == nil {
		closer = io.NopCloser(r)
	}
	logger = logger.With(slog.String("component", "rpc"))

	v, err := nvim.New(r, w, closer, func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	})
	if err != nil {
		return nil, fmt.Errorf("create nvim session: %w", err)
	}

	c := &Conn{
		v:      v,
		logger: logger,
		events: make(chan Event),
		served: make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, name := range events {
		if err := v.RegisterHandler(name, c.handler(name)); err != nil {
			_ = v.Close()
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}

	go func() {
		defer close(c.served)
		c.serveErr = v.Serve()
	}()
	return c, nil
}

// handler queues an event for Next and waits until it has been handled.
func (c *Conn) handler(name string) func(args ...any) error {
	return func(args ...any) error {
		ev := Event{Method: name, Args: args, seq: c.seq.Add(1), reply: make(chan error, 1)}
		select {
		case c.events <- ev:
		case <-c.done:
			return ErrClosed
		}
		select {
		case err := <-ev.reply:
			return err
		case <-c.done:
			return ErrClosed
		}
	}
}

// Next returns the next event. It returns io.EOF once the editor has closed
// the stream and ErrClosed after Close.
func (c *Conn) Next(ctx context.Context) (Event, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case <-c.served:
		return Event{}, c.endErr()
	case <-c.done:
		return Event{}, ErrClosed
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// endErr explains why the session stopped. Only valid after served closed.
func (c *Conn) endErr() error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if c.serveErr == nil || errors.Is(c.serveErr, io.EOF) || errors.Is(c.serveErr, io.ErrClosedPipe) {
		return io.EOF
	}
	return fmt.Errorf("serve: %w", c.serveErr)
}

// Reply completes ev. A request is answered with err, or with nil when err
// is nil; for a notification err is only logged by the session.
func (c *Conn) Reply(ev Event, err error) {
	if ev.reply != nil {
		ev.reply <- err
	}
}

// Request calls a Neovim API method and decodes its result into result,
// which may be nil to discard it.
func (c *Conn) Request(ctx context.Context, method string, result any, args ...any) error {
	return c.wait(ctx, method, func() error {
		return c.v.Request(method, result, args...)
	})
}

// CallFunction calls the Vim function fn and decodes its result into result,
// which may be nil to discard it.
func (c *Conn) CallFunction(ctx context.Context, fn string, result any, args ...any) error {
	return c.wait(ctx, fn, func() error {
		return c.v.Call(fn, result, args...)
	})
}

// wait runs call until it returns or ctx ends. A call abandoned on ctx keeps
// running and its result is dropped.
func (c *Conn) wait(ctx context.Context, what string, call func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	select {
	case <-c.done:
		return fmt.Errorf("%s: %w", what, ErrClosed)
	default:
	}

	errc := make(chan error, 1)
	go func() { errc <- call() }()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", what, ctx.Err())
	case <-c.done:
		return fmt.Errorf("%s: %w", what, ErrClosed)
	}
}

// Close ends the session. Blocked Next calls return ErrClosed.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.v.Close()
	})
	return err
}
