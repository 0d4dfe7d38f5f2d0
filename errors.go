package discuss

import "errors"

// Exported errors for library consumers.
var (
	// ErrNoDatabase indicates no store URL was configured.
	ErrNoDatabase = errors.New("discuss: no database configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("discuss: client is closed")
)
