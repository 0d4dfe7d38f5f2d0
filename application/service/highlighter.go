package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/discuss/domain/comment"
	"github.com/helixml/discuss/domain/marker"
)

// Highlighter renders comment ranges as editor signs. A failed line is
// reported to the editor and logged; the remaining lines are still processed.
type Highlighter struct {
	host   Host
	logger *slog.Logger
}

// NewHighlighter creates a Highlighter issuing commands to host.
func NewHighlighter(host Host, logger *slog.Logger) *Highlighter {
	return &Highlighter{
		host:   host,
		logger: logger,
	}
}

// Place puts a primary sign on the first line of r and a continuation sign
// on every later line. It returns the number of lines that failed.
func (h *Highlighter) Place(ctx context.Context, r comment.Range) int {
	failed := 0
	for _, m := range marker.Span(r) {
		if err := h.host.PlaceMarker(ctx, m); err != nil {
			failed++
			h.report(ctx, "place", m, err)
		}
	}
	return failed
}

// Remove takes the signs of r off every line it spans. It returns the
// number of lines that failed, absent signs included.
func (h *Highlighter) Remove(ctx context.Context, r comment.Range) int {
	failed := 0
	for _, m := range marker.Span(r) {
		if err := h.host.RemoveMarker(ctx, m); err != nil {
			failed++
			h.report(ctx, "unplace", m, err)
		}
	}
	return failed
}

func (h *Highlighter) report(ctx context.Context, action string, m marker.Marker, err error) {
	attrs := []any{
		slog.String("file", m.File),
		slog.Int("line", m.Line),
		slog.Int64("range_id", m.RangeID),
		slog.String("kind", m.Kind.String()),
	}

	var msg string
	if errors.Is(err, marker.ErrAbsent) {
		msg = fmt.Sprintf("Cannot %s sign at %s:%d: not placed", action, m.File, m.Line)
		h.logger.WarnContext(ctx, "sign absent", attrs...)
	} else {
		msg = fmt.Sprintf("Cannot %s sign at %s:%d", action, m.File, m.Line)
		h.logger.ErrorContext(ctx, "sign command failed", append(attrs, slog.String("error", err.Error()))...)
	}

	if echoErr := h.host.EchoError(ctx, msg); echoErr != nil {
		h.logger.WarnContext(ctx, "failed to report sign failure", slog.String("error", echoErr.Error()))
	}
}
