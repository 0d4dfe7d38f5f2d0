package comment

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound indicates that no range of the file contains the line.
var ErrNotFound = errors.New("no comment at line")

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *StoreError) Error() string {
	return fmt.Sprintf("comment store %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// Store persists comment ranges. Ranges of one file may overlap, and ids
// increase with insertion order.
type Store interface {
	// Add appends a range and returns it with its assigned id.
	Add(ctx context.Context, file string, start, end int, text string) (Range, error)

	// FindContaining returns the oldest range of file containing line, or
	// ErrNotFound.
	FindContaining(ctx context.Context, file string, line int) (Range, error)

	// DeleteContaining removes every range of file containing line and
	// returns them by ascending id. The lookup and the delete are atomic.
	DeleteContaining(ctx context.Context, file string, line int) ([]Range, error)

	// ListRanges returns every range of file by ascending id.
	ListRanges(ctx context.Context, file string) ([]Range, error)

	// Files returns the distinct file names that have at least one range.
	Files(ctx context.Context) ([]string, error)
}
