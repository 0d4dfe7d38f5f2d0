// Package marker describes the per-line signs shown for a comment range.
package marker

import (
	"errors"
	"strconv"

	"github.com/helixml/discuss/domain/comment"
)

// ErrAbsent indicates a removal targeted a marker that is not placed.
var ErrAbsent = errors.New("marker not placed")

// Kind distinguishes the first line of a range from the lines after it.
type Kind int

// Kind values.
const (
	Primary Kind = iota
	Continuation
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Continuation {
		return "continuation"
	}
	return "primary"
}

// groupPrefix namespaces every sign group owned by this service.
const groupPrefix = "discuss_"

// Marker is one sign on one line. Identity is (file, line, range id), so
// markers of overlapping ranges never collide.
type Marker struct {
	File    string
	Line    int
	RangeID int64
	Kind    Kind
}

// Group returns the sign group owning the marker.
func (m Marker) Group() string {
	return Group(m.RangeID)
}

// Group returns the sign group of a range.
func Group(rangeID int64) string {
	return groupPrefix + strconv.FormatInt(rangeID, 10)
}

// Span returns one marker per line of r: Primary on the first line and
// Continuation on every later line. An inverted range yields nothing.
func Span(r comment.Range) []Marker {
	if r.Lines() == 0 {
		return nil
	}
	markers := make([]Marker, 0, r.Lines())
	for line := r.Start(); line <= r.End(); line++ {
		kind := Continuation
		if line == r.Start() {
			kind = Primary
		}
		markers = append(markers, Marker{
			File:    r.File(),
			Line:    line,
			RangeID: r.ID(),
			Kind:    kind,
		})
	}
	return markers
}
