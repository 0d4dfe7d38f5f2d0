package nvim

import (
	"context"
	"fmt"
	"time"

	"github.com/helixml/discuss/domain/marker"
)

// Highlight groups used for messages.
const (
	highlightNone    = ""
	highlightWarning = "WarningMsg"
	highlightError   = "ErrorMsg"
)

// caller issues requests to Neovim.
type caller interface {
	Request(ctx context.Context, method string, result any, args ...any) error
	CallFunction(ctx context.Context, fn string, result any, args ...any) error
}

// Signs names the two sign definitions and how to define them.
type Signs struct {
	Primary       string
	Continued     string
	PrimaryText   string
	ContinuedText string
	Highlight     string
}

// DefaultSigns returns the sign names the editor plugin defines.
func DefaultSigns() Signs {
	return Signs{
		Primary:       "annotation",
		Continued:     "annotationContinued",
		PrimaryText:   ">>",
		ContinuedText: "|",
		Highlight:     "Comment",
	}
}

// Client issues the host commands of the service: sign placement and
// removal, comment display, and messages.
type Client struct {
	conn      caller
	signs     Signs
	displayFn string
	timeout   time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSigns sets the sign names.
func WithSigns(s Signs) ClientOption {
	return func(c *Client) { c.signs = s }
}

// WithDisplayFunction sets the Vim function that receives comment text.
func WithDisplayFunction(name string) ClientOption {
	return func(c *Client) { c.displayFn = name }
}

// WithTimeout bounds every host call. Zero disables the bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client issuing requests over conn.
func NewClient(conn caller, opts ...ClientOption) *Client {
	c := &Client{
		conn:      conn,
		signs:     DefaultSigns(),
		displayFn: "discuss_code#Display_comment",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

func (c *Client) request(ctx context.Context, method string, result any, args ...any) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.conn.Request(ctx, method, result, args...)
}

func (c *Client) callFunction(ctx context.Context, fn string, result any, args ...any) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.conn.CallFunction(ctx, fn, result, args...)
}

func (c *Client) signName(k marker.Kind) string {
	if k == marker.Continuation {
		return c.signs.Continued
	}
	return c.signs.Primary
}

// PlaceMarker places the sign for m.
func (c *Client) PlaceMarker(ctx context.Context, m marker.Marker) error {
	err := c.callFunction(ctx, "sign_place", nil,
		m.Line, m.Group(), c.signName(m.Kind), m.File,
		map[string]any{"lnum": m.Line},
	)
	if err != nil {
		return fmt.Errorf("place %s sign at %s:%d: %w", m.Kind, m.File, m.Line, err)
	}
	return nil
}

// RemoveMarker removes the sign for m. It returns marker.ErrAbsent when the
// sign was not placed.
func (c *Client) RemoveMarker(ctx context.Context, m marker.Marker) error {
	var res int
	err := c.callFunction(ctx, "sign_unplace", &res,
		m.Group(),
		map[string]any{"buffer": m.File, "id": m.Line},
	)
	if err != nil {
		return fmt.Errorf("remove sign at %s:%d: %w", m.File, m.Line, err)
	}
	if res == -1 {
		return fmt.Errorf("remove sign at %s:%d: %w", m.File, m.Line, marker.ErrAbsent)
	}
	return nil
}

// Display hands comment text to the display function.
func (c *Client) Display(ctx context.Context, text string) error {
	if err := c.callFunction(ctx, c.displayFn, nil, text); err != nil {
		return fmt.Errorf("display comment: %w", err)
	}
	return nil
}

// Echo shows an informational message.
func (c *Client) Echo(ctx context.Context, text string) error {
	return c.echo(ctx, text, highlightNone)
}

// EchoWarning shows a warning.
func (c *Client) EchoWarning(ctx context.Context, text string) error {
	return c.echo(ctx, text, highlightWarning)
}

// EchoError shows an error.
func (c *Client) EchoError(ctx context.Context, text string) error {
	return c.echo(ctx, text, highlightError)
}

func (c *Client) echo(ctx context.Context, text, hl string) error {
	chunk := []any{text}
	if hl != highlightNone {
		chunk = append(chunk, hl)
	}
	if err := c.request(ctx, "nvim_echo", nil, []any{chunk}, true, map[string]any{}); err != nil {
		return fmt.Errorf("echo: %w", err)
	}
	return nil
}

// DefineSigns defines the primary and continuation signs.
func (c *Client) DefineSigns(ctx context.Context) error {
	defs := []struct{ name, text string }{
		{c.signs.Primary, c.signs.PrimaryText},
		{c.signs.Continued, c.signs.ContinuedText},
	}
	for _, d := range defs {
		attrs := map[string]any{"text": d.text, "texthl": c.signs.Highlight}
		if err := c.callFunction(ctx, "sign_define", nil, d.name, attrs); err != nil {
			return fmt.Errorf("define sign %s: %w", d.name, err)
		}
	}
	return nil
}
