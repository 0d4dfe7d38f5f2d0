package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/helixml/discuss/infrastructure/nvim"
	"github.com/helixml/discuss/internal/log"
)

// Source delivers editor events one at a time.
type Source interface {
	// Next blocks until the next event. It returns io.EOF once the editor
	// has closed the connection.
	Next(ctx context.Context) (nvim.Event, error)
	// Reply completes ev; a request is answered with err.
	Reply(ev nvim.Event, err error)
}

// Loop feeds events from a Source to a Dispatcher, strictly one after the
// other: an event is fully handled before the next one is read.
type Loop struct {
	source     Source
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewLoop creates a Loop.
func NewLoop(source Source, dispatcher *Dispatcher, logger *slog.Logger) *Loop {
	return &Loop{
		source:     source,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run processes events until the editor disconnects, which returns nil, or
// ctx is cancelled, which returns ctx.Err(). Any other read failure ends the
// loop with that error.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("event loop started")

	for {
		ev, err := l.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("event loop stopping", slog.String("reason", ctx.Err().Error()))
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, nvim.ErrClosed) {
				l.logger.Info("editor disconnected")
				return nil
			}
			l.logger.Error("failed to read event", slog.String("error", err.Error()))
			return err
		}

		l.process(ctx, ev)
	}
}

func (l *Loop) process(ctx context.Context, ev nvim.Event) {
	start := time.Now()
	ctx = log.WithCorrelationID(ctx, uuid.NewString())

	l.logger.DebugContext(ctx, "processing event",
		slog.String("event", ev.Method),
		slog.Uint64("seq", ev.Seq()),
		slog.Int("args", len(ev.Args)),
	)

	err := l.dispatcher.Dispatch(ctx, ev.Method, ev.Args)
	l.source.Reply(ev, err)

	l.logger.DebugContext(ctx, "event processed",
		slog.String("event", ev.Method),
		slog.Duration("duration", time.Since(start)),
	)
}
