package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/discuss/domain/command"
	"github.com/helixml/discuss/domain/comment"
)

// ErrUnknownCommand indicates an event name no command is registered for.
var ErrUnknownCommand = errors.New("unknown command")

// Acknowledgements echoed to the editor.
const (
	msgCommentAdded   = "Comment added"
	msgCommentDeleted = "Comment deleted (%d)"
	msgUnknownCommand = "Unknown command: %s"
)

// Dispatcher decodes editor events and carries them out against the store
// and the editor. It holds no state of its own between events.
type Dispatcher struct {
	store       comment.Store
	highlighter *Highlighter
	host        Host
	logger      *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store comment.Store, highlighter *Highlighter, host Host, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:       store,
		highlighter: highlighter,
		host:        host,
		logger:      logger,
	}
}

// Dispatch handles one event to completion. Every failure has already been
// reported to the editor when Dispatch returns it, except
// command.ErrTooFewArgs on show_comment and highlight_comments, which is only
// logged. The returned error is meant for answering requests; it never means
// the service should stop.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []any) error {
	cmd, err := command.Decode(name, args)
	if err != nil {
		return d.rejected(ctx, name, err)
	}

	switch c := cmd.(type) {
	case command.NewComment:
		err = d.newComment(ctx, c)
	case command.ShowComment:
		err = d.showComment(ctx, c)
	case command.DeleteComment:
		err = d.deleteComment(ctx, c)
	case command.HighlightComments:
		err = d.highlightComments(ctx, c)
	case command.Unknown:
		d.logger.InfoContext(ctx, "unknown command", slog.String("event", c.Event))
		d.echo(ctx, d.host.Echo, fmt.Sprintf(msgUnknownCommand, c.Event))
		return fmt.Errorf("%s: %w", c.Event, ErrUnknownCommand)
	}

	var storeErr *comment.StoreError
	if errors.As(err, &storeErr) {
		d.logger.ErrorContext(ctx, "store failure",
			slog.String("event", name),
			slog.String("op", storeErr.Op),
			slog.String("error", storeErr.Err.Error()),
		)
		d.echo(ctx, d.host.EchoError, err.Error())
	}
	return err
}

func (d *Dispatcher) rejected(ctx context.Context, name string, err error) error {
	var invalid *command.ValidationError
	switch {
	case errors.Is(err, command.ErrTooFewArgs):
		d.logger.DebugContext(ctx, "ignoring event", slog.String("event", name), slog.String("error", err.Error()))
		// The editor always hears back about new_comment and delete_comment.
		if name == command.EventNewComment || name == command.EventDeleteComment {
			d.echo(ctx, d.host.Echo, err.Error())
		}
	case errors.As(err, &invalid):
		d.logger.WarnContext(ctx, "invalid event", slog.String("event", name), slog.String("reason", invalid.Reason))
		d.echo(ctx, d.host.EchoWarning, err.Error())
	default:
		d.logger.ErrorContext(ctx, "failed to decode event", slog.String("event", name), slog.String("error", err.Error()))
		d.echo(ctx, d.host.EchoError, err.Error())
	}
	return err
}

func (d *Dispatcher) newComment(ctx context.Context, c command.NewComment) error {
	r, err := d.store.Add(ctx, c.File, c.Start, c.End, c.Text)
	if err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "comment added",
		slog.Int64("id", r.ID()),
		slog.String("file", r.File()),
		slog.Int("start", r.Start()),
		slog.Int("end", r.End()),
	)

	d.highlighter.Place(ctx, r)
	d.echo(ctx, d.host.Echo, msgCommentAdded)
	return nil
}

func (d *Dispatcher) showComment(ctx context.Context, c command.ShowComment) error {
	r, err := d.store.FindContaining(ctx, c.File, c.Line)
	if errors.Is(err, comment.ErrNotFound) {
		d.logger.DebugContext(ctx, "no comment at line", slog.String("file", c.File), slog.Int("line", c.Line))
		return nil
	}
	if err != nil {
		return err
	}

	if err := d.host.Display(ctx, r.Text()); err != nil {
		d.logger.ErrorContext(ctx, "failed to display comment",
			slog.Int64("id", r.ID()),
			slog.String("error", err.Error()),
		)
		d.echo(ctx, d.host.EchoError, fmt.Sprintf("Cannot display comment %d", r.ID()))
		return fmt.Errorf("display comment %d: %w", r.ID(), err)
	}
	return nil
}

func (d *Dispatcher) deleteComment(ctx context.Context, c command.DeleteComment) error {
	removed, err := d.store.DeleteContaining(ctx, c.File, c.Line)
	if err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "comments deleted",
		slog.String("file", c.File),
		slog.Int("line", c.Line),
		slog.Int("count", len(removed)),
	)

	for _, r := range removed {
		d.highlighter.Remove(ctx, r)
	}
	d.echo(ctx, d.host.Echo, fmt.Sprintf(msgCommentDeleted, len(removed)))
	return nil
}

func (d *Dispatcher) highlightComments(ctx context.Context, c command.HighlightComments) error {
	ranges, err := d.store.ListRanges(ctx, c.File)
	if err != nil {
		return err
	}
	d.logger.DebugContext(ctx, "highlighting file", slog.String("file", c.File), slog.Int("ranges", len(ranges)))

	for _, r := range ranges {
		d.highlighter.Place(ctx, r)
	}
	return nil
}

// echo sends a message and logs when the editor does not take it. There is
// nowhere else to report the failure.
func (d *Dispatcher) echo(ctx context.Context, send func(context.Context, string) error, text string) {
	if err := send(ctx, text); err != nil {
		d.logger.WarnContext(ctx, "failed to echo message", slog.String("text", text), slog.String("error", err.Error()))
	}
}
