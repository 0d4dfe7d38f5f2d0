package service

import (
	"context"

	"github.com/helixml/discuss/domain/marker"
)

// Host is the editor side of the connection: the commands the service
// issues in response to events. Every call blocks until the editor answers.
type Host interface {
	PlaceMarker(ctx context.Context, m marker.Marker) error
	// RemoveMarker returns marker.ErrAbsent when nothing was placed there.
	RemoveMarker(ctx context.Context, m marker.Marker) error
	Display(ctx context.Context, text string) error
	Echo(ctx context.Context, text string) error
	EchoWarning(ctx context.Context, text string) error
	EchoError(ctx context.Context, text string) error
}
