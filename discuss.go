// Package discuss keeps free-text comments on line ranges of source files
// and shows them in Neovim as signs.
//
// The service runs as a Neovim job speaking msgpack-RPC on stdin/stdout.
// The editor plugin sends new_comment, show_comment, delete_comment and
// highlight_comments; the service stores the ranges and places, removes
// and displays them.
//
// Basic usage:
//
//	client, err := discuss.New(
//	    discuss.WithSQLite(".comment_code.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Serve the editor until it closes the channel
//	err = client.Serve(ctx, os.Stdin, os.Stdout)
//
//	// Or work with the stored ranges directly
//	ranges, err := client.Comments.ListRanges(ctx, "main.go")
package discuss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/helixml/discuss/application/service"
	"github.com/helixml/discuss/domain/command"
	"github.com/helixml/discuss/domain/comment"
	"github.com/helixml/discuss/infrastructure/nvim"
	"github.com/helixml/discuss/infrastructure/persistence"
	"github.com/helixml/discuss/internal/database"
	"github.com/helixml/discuss/internal/log"
)

// Client owns the comment store and serves editor connections.
type Client struct {
	// Comments gives direct access to the stored ranges.
	Comments comment.Store

	db      database.Database
	cfg     *clientConfig
	closers []io.Closer
	logger  *slog.Logger
	closed  atomic.Bool
	mu      sync.Mutex
}

// New opens the store, brings its schema up to date and returns a Client.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.Default().Slog()
	}

	ctx := context.Background()
	db, err := database.NewDatabaseWithLogger(ctx, cfg.dbURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.Migrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("migrate: %w", err), errClose)
	}

	return &Client{
		Comments: persistence.NewCommentStore(db),
		db:       db,
		cfg:      cfg,
		closers:  cfg.closers,
		logger:   logger,
	}, nil
}

// Serve handles editor events read from r until the editor closes r, which
// returns nil, or ctx is cancelled, which returns ctx.Err(). Host commands
// and replies are written to w. One event is handled at a time.
func (c *Client) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	closer, _ := r.(io.Closer)
	conn, err := nvim.NewConn(r, w, closer, c.logger, command.Events()...)
	if err != nil {
		return err
	}

	signs := c.cfg.signs
	host := nvim.NewClient(conn,
		nvim.WithSigns(nvim.Signs{
			Primary:       signs.Primary(),
			Continued:     signs.Continued(),
			PrimaryText:   signs.PrimaryText(),
			ContinuedText: signs.ContinuedText(),
			Highlight:     signs.Highlight(),
		}),
		nvim.WithDisplayFunction(c.cfg.displayFunction),
		nvim.WithTimeout(c.cfg.hostTimeout),
	)

	if signs.Define() {
		if err := host.DefineSigns(ctx); err != nil {
			c.logger.Warn("failed to define signs", slog.String("error", err.Error()))
		}
	}

	highlighter := service.NewHighlighter(host, c.logger)
	dispatcher := service.NewDispatcher(c.Comments, highlighter, host, c.logger)
	loop := service.NewLoop(conn, dispatcher, c.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return loop.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		if err := conn.Close(); err != nil {
			c.logger.Debug("close connection", slog.String("error", err.Error()))
		}
		return nil
	})
	return g.Wait()
}

// Close releases the store and any registered resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	c.logger.Info("discuss client closed")

	// Registered resources go last: one of them may be the log sink.
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close resource: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
