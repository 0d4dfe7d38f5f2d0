package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/helixml/discuss/domain/comment"
	"github.com/helixml/discuss/domain/marker"
	"github.com/helixml/discuss/infrastructure/nvim"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeHost records editor commands as short strings and keeps a sign table
// keyed the way the editor keys it: group plus line.
type fakeHost struct {
	mu       sync.Mutex
	calls    []string
	signs    map[string]marker.Kind
	failLine int
	failAll  error
}

func newFakeHost() *fakeHost {
	return &fakeHost{signs: map[string]marker.Kind{}}
}

func signKey(m marker.Marker) string {
	return fmt.Sprintf("%s/%s:%d", m.Group(), m.File, m.Line)
}

func (h *fakeHost) record(format string, v ...any) {
	h.calls = append(h.calls, fmt.Sprintf(format, v...))
}

func (h *fakeHost) PlaceMarker(_ context.Context, m marker.Marker) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("place %s %s:%d #%d", m.Kind, m.File, m.Line, m.RangeID)
	if h.failAll != nil {
		return h.failAll
	}
	if m.Line == h.failLine {
		return errors.New("E158: Invalid buffer name")
	}
	h.signs[signKey(m)] = m.Kind
	return nil
}

func (h *fakeHost) RemoveMarker(_ context.Context, m marker.Marker) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("remove %s:%d #%d", m.File, m.Line, m.RangeID)
	if h.failAll != nil {
		return h.failAll
	}
	key := signKey(m)
	if _, ok := h.signs[key]; !ok {
		return marker.ErrAbsent
	}
	delete(h.signs, key)
	return nil
}

func (h *fakeHost) Display(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("display %s", text)
	return h.failAll
}

func (h *fakeHost) Echo(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("echo %s", text)
	return nil
}

func (h *fakeHost) EchoWarning(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("warn %s", text)
	return nil
}

func (h *fakeHost) EchoError(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("error %s", text)
	return nil
}

func (h *fakeHost) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.calls) == 0 {
		return nil
	}
	out := make([]string, len(h.calls))
	copy(out, h.calls)
	return out
}

func (h *fakeHost) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

func (h *fakeHost) SignCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.signs)
}

// failingStore fails every operation the way a lost database connection does.
type failingStore struct{}

func (failingStore) fail(op string) error {
	return &comment.StoreError{Op: op, Err: errors.New("database is locked")}
}

func (s failingStore) Add(context.Context, string, int, int, string) (comment.Range, error) {
	return comment.Range{}, s.fail("add")
}

func (s failingStore) FindContaining(context.Context, string, int) (comment.Range, error) {
	return comment.Range{}, s.fail("find")
}

func (s failingStore) DeleteContaining(context.Context, string, int) ([]comment.Range, error) {
	return nil, s.fail("delete")
}

func (s failingStore) ListRanges(context.Context, string) ([]comment.Range, error) {
	return nil, s.fail("list")
}

func (s failingStore) Files(context.Context) ([]string, error) {
	return nil, s.fail("files")
}

// fakeSource hands out notifications, then reports the editor gone.
type fakeSource struct {
	events  []nvim.Event
	end     error
	replies int
}

func (s *fakeSource) Next(ctx context.Context) (nvim.Event, error) {
	if err := ctx.Err(); err != nil {
		return nvim.Event{}, err
	}
	if len(s.events) == 0 {
		if s.end != nil {
			return nvim.Event{}, s.end
		}
		return nvim.Event{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func (s *fakeSource) Reply(nvim.Event, error) {
	s.replies++
}
