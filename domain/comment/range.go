// Package comment provides the comment range model and the store contract
// for persisting ranges.
package comment

import "fmt"

// Range attaches a free-text comment to an inclusive, 1-based line span of a
// file. Immutable value object.
type Range struct {
	id    int64
	file  string
	start int
	end   int
	text  string
}

// NewRange creates a Range that has not been persisted yet.
func NewRange(file string, start, end int, text string) Range {
	return Range{
		file:  file,
		start: start,
		end:   end,
		text:  text,
	}
}

// ReconstructRange recreates a Range from persistence.
func ReconstructRange(id int64, file string, start, end int, text string) Range {
	return Range{
		id:    id,
		file:  file,
		start: start,
		end:   end,
		text:  text,
	}
}

// ID returns the store-assigned identifier. Zero until persisted.
func (r Range) ID() int64 { return r.id }

// File returns the file the range belongs to.
func (r Range) File() string { return r.file }

// Start returns the first line.
func (r Range) Start() int { return r.start }

// End returns the last line.
func (r Range) End() int { return r.end }

// Text returns the comment body.
func (r Range) Text() string { return r.text }

// Lines returns the number of lines spanned, or zero for an inverted range.
func (r Range) Lines() int {
	if r.end < r.start {
		return 0
	}
	return r.end - r.start + 1
}

// Contains reports whether line falls inside the range, bounds included.
func (r Range) Contains(line int) bool {
	return r.start <= line && line <= r.end
}

// String returns a readable representation.
func (r Range) String() string {
	return fmt.Sprintf("%d %s:%d-%d", r.id, r.file, r.start, r.end)
}
