// Package command decodes editor events into the closed set of commands the
// dispatcher understands.
package command

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Event names sent by the editor.
const (
	EventNewComment        = "new_comment"
	EventShowComment       = "show_comment"
	EventDeleteComment     = "delete_comment"
	EventHighlightComments = "highlight_comments"
)

// ErrTooFewArgs indicates an event carried fewer arguments than its command needs.
var ErrTooFewArgs = errors.New("too few arguments")

// ValidationError reports an argument of the wrong type or an invalid line span.
type ValidationError struct {
	Event  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Event, e.Reason)
}

// Command is one decoded editor event.
type Command interface {
	// Name returns the event name the command was decoded from.
	Name() string
	command()
}

// NewComment attaches Text to lines Start..End of File.
type NewComment struct {
	File  string
	Start int
	End   int
	Text  string
}

// ShowComment asks for the comment covering Line of File.
type ShowComment struct {
	File string
	Line int
}

// DeleteComment removes every comment of File covering Line.
type DeleteComment struct {
	File string
	Line int
}

// HighlightComments re-renders the markers of every comment of File.
type HighlightComments struct {
	File string
}

// Unknown is an event with an unrecognised name.
type Unknown struct {
	Event string
}

// Name implements Command.
func (NewComment) Name() string { return EventNewComment }

// Name implements Command.
func (ShowComment) Name() string { return EventShowComment }

// Name implements Command.
func (DeleteComment) Name() string { return EventDeleteComment }

// Name implements Command.
func (HighlightComments) Name() string { return EventHighlightComments }

// Name implements Command.
func (u Unknown) Name() string { return u.Event }

func (NewComment) command()        {}
func (ShowComment) command()       {}
func (DeleteComment) command()     {}
func (HighlightComments) command() {}
func (Unknown) command()           {}

// Events returns the event names Decode understands.
func Events() []string {
	return []string{EventNewComment, EventShowComment, EventDeleteComment, EventHighlightComments}
}

var minArgs = map[string]int{
	EventNewComment:        4,
	EventShowComment:       2,
	EventDeleteComment:     2,
	EventHighlightComments: 1,
}

// Decode turns an event name and its decoded arguments into a Command.
// Trailing arguments beyond what the command needs are ignored. An unknown
// name always decodes to Unknown.
func Decode(name string, args []any) (Command, error) {
	want, ok := minArgs[name]
	if !ok {
		return Unknown{Event: name}, nil
	}
	if len(args) < want {
		return nil, fmt.Errorf("%s: got %d, want %d: %w", name, len(args), want, ErrTooFewArgs)
	}

	a := argReader{event: name, args: args}
	switch name {
	case EventNewComment:
		cmd := NewComment{
			File:  a.str(0, "file"),
			Start: a.line(1, "start"),
			End:   a.line(2, "end"),
			Text:  a.str(3, "text"),
		}
		if a.err != nil {
			return nil, a.err
		}
		if cmd.Start > cmd.End {
			return nil, &ValidationError{Event: name, Reason: fmt.Sprintf("start %d is after end %d", cmd.Start, cmd.End)}
		}
		return cmd, nil
	case EventShowComment:
		cmd := ShowComment{File: a.str(0, "file"), Line: a.line(1, "line")}
		if a.err != nil {
			return nil, a.err
		}
		return cmd, nil
	case EventDeleteComment:
		cmd := DeleteComment{File: a.str(0, "file"), Line: a.line(1, "line")}
		if a.err != nil {
			return nil, a.err
		}
		return cmd, nil
	default:
		cmd := HighlightComments{File: a.str(0, "file")}
		if a.err != nil {
			return nil, a.err
		}
		return cmd, nil
	}
}

// argReader converts positional arguments, keeping the first failure.
type argReader struct {
	event string
	args  []any
	err   error
}

func (a *argReader) fail(format string, v ...any) {
	if a.err == nil {
		a.err = &ValidationError{Event: a.event, Reason: fmt.Sprintf(format, v...)}
	}
}

func (a *argReader) str(i int, what string) string {
	switch v := a.args[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		a.fail("%s must be a string, got %T", what, v)
		return ""
	}
}

func (a *argReader) line(i int, what string) int {
	n, err := toInt(a.args[i])
	if err != nil {
		a.fail("%s: %v", what, err)
		return 0
	}
	if n < 1 {
		a.fail("%s must be at least 1, got %d", what, n)
		return 0
	}
	return n
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return safecast.Conv[int](n)
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return safecast.Conv[int](n)
	case uint64:
		return safecast.Conv[int](n)
	case uint:
		return safecast.Conv[int](n)
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
