package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/helixml/discuss/domain/command"
	"github.com/helixml/discuss/infrastructure/nvim"
	"github.com/helixml/discuss/infrastructure/persistence"
	"github.com/helixml/discuss/internal/testdb"
)

func notification(method string, args ...any) nvim.Event {
	return nvim.Event{Method: method, Args: args}
}

func TestLoop_ProcessesEventsInOrderUntilEOF(t *testing.T) {
	d, host, _ := newDispatcher(t)
	source := &fakeSource{events: []nvim.Event{
		notification(command.EventNewComment, "a.txt", int64(5), int64(8), "note"),
		notification(command.EventShowComment, "a.txt", int64(6)),
		notification("bogus"),
		notification(command.EventDeleteComment, "a.txt", int64(6)),
		notification(command.EventShowComment, "a.txt", int64(6)),
	}}

	err := NewLoop(source, d, discardLogger()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"place primary a.txt:5 #1",
		"place continuation a.txt:6 #1",
		"place continuation a.txt:7 #1",
		"place continuation a.txt:8 #1",
		"echo Comment added",
		"display note",
		"echo Unknown command: bogus",
		"remove a.txt:5 #1",
		"remove a.txt:6 #1",
		"remove a.txt:7 #1",
		"remove a.txt:8 #1",
		"echo Comment deleted (1)",
	}, host.Calls())
	assert.Equal(t, 5, source.replies)
}

func TestLoop_ContinuesAfterFailures(t *testing.T) {
	host := newFakeHost()
	logger := discardLogger()
	d := NewDispatcher(failingStore{}, NewHighlighter(host, logger), host, logger)
	source := &fakeSource{events: []nvim.Event{
		notification(command.EventNewComment, "a.txt", int64(1), int64(2), "x"),
		notification(command.EventNewComment, "a.txt"),
		notification(command.EventShowComment, "a.txt", int64(1)),
	}}

	err := NewLoop(source, d, logger).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"error comment store add: database is locked",
		"echo new_comment: got 1, want 4: too few arguments",
		"error comment store find: database is locked",
	}, host.Calls())
}

func TestLoop_EndConditions(t *testing.T) {
	protocol := errors.New("read frame: invalid code")

	tests := []struct {
		name string
		end  error
		want error
	}{
		{"editor closed the stream", io.EOF, nil},
		{"connection closed locally", nvim.ErrClosed, nil},
		{"protocol error", protocol, protocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _ := newDispatcher(t)

			err := NewLoop(&fakeSource{end: tt.end}, d, discardLogger()).Run(context.Background())

			assert.Equal(t, tt.want, err)
		})
	}
}

func TestLoop_Cancelled(t *testing.T) {
	d, _, _ := newDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLoop(&fakeSource{}, d, discardLogger()).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

// Requests over a real connection are answered with nil or the error text.
func TestLoop_AnswersRequests(t *testing.T) {
	toConnR, toConnW := io.Pipe()
	fromConnR, fromConnW := io.Pipe()
	conn, err := nvim.NewConn(toConnR, fromConnW, toConnR, discardLogger(), command.Events()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		_ = fromConnR.Close()
		_ = fromConnW.Close()
	})

	host := newFakeHost()
	logger := discardLogger()
	store := persistence.NewCommentStore(testdb.New(t))
	d := NewDispatcher(store, NewHighlighter(host, logger), host, logger)

	done := make(chan error, 1)
	go func() { done <- NewLoop(conn, d, logger).Run(context.Background()) }()

	enc := msgpack.NewEncoder(toConnW)
	dec := msgpack.NewDecoder(fromConnR)
	dec.UseLooseInterfaceDecoding(true)
	roundTrip := func(msgid int, method string, args ...any) []any {
		t.Helper()
		require.NoError(t, enc.Encode([]any{0, msgid, method, args}))
		v, err := dec.DecodeInterfaceLoose()
		require.NoError(t, err)
		reply, ok := v.([]any)
		require.True(t, ok, "reply %#v", v)
		require.Len(t, reply, 4)
		return reply
	}

	reply := roundTrip(7, command.EventNewComment, "a.txt", 1, 2, "note")
	assert.EqualValues(t, 1, reply[0])
	assert.EqualValues(t, 7, reply[1])
	assert.Nil(t, reply[2])

	reply = roundTrip(8, command.EventShowComment, 3, 1)
	assert.EqualValues(t, 8, reply[1])
	require.NotNil(t, reply[2])
	assert.Contains(t, fmt.Sprint(reply[2]), "file must be a string")

	require.NoError(t, toConnW.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after the editor closed the stream")
	}

	ranges, err := store.ListRanges(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Len(t, ranges, 1)
	calls := host.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, []string{
		"place primary a.txt:1 #1",
		"place continuation a.txt:2 #1",
		"echo Comment added",
	}, calls[:3])
	assert.Contains(t, calls[3], "warn show_comment: file must be a string")
}
