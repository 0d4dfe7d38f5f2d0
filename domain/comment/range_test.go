package comment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helixml/discuss/domain/repository"
)

func TestNewRange(t *testing.T) {
	r := NewRange("a.txt", 5, 8, "note")

	assert.Equal(t, int64(0), r.ID())
	assert.Equal(t, "a.txt", r.File())
	assert.Equal(t, 5, r.Start())
	assert.Equal(t, 8, r.End())
	assert.Equal(t, "note", r.Text())
	assert.Equal(t, 4, r.Lines())
}

func TestReconstructRange(t *testing.T) {
	r := ReconstructRange(7, "a.txt", 5, 8, "note")

	assert.Equal(t, int64(7), r.ID())
	assert.Equal(t, "7 a.txt:5-8", r.String())
}

func TestRange_Contains(t *testing.T) {
	r := NewRange("a.txt", 5, 8, "")

	tests := []struct {
		line int
		want bool
	}{
		{4, false},
		{5, true},
		{6, true},
		{8, true},
		{9, false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.line); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestRange_SingleLine(t *testing.T) {
	r := NewRange("a.txt", 3, 3, "")

	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(2))
	assert.Equal(t, 1, r.Lines())
}

func TestRange_Inverted(t *testing.T) {
	r := NewRange("a.txt", 9, 2, "")

	assert.False(t, r.Contains(5))
	assert.Equal(t, 0, r.Lines())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk full")
	var err error = &StoreError{Op: "add", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "comment store add: disk full", err.Error())

	var se *StoreError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "add", se.Op)
}

func TestOptions(t *testing.T) {
	q := repository.Build(WithFile("a.txt"), WithLine(6), WithOldestFirst())

	conds := q.Conditions()
	assert.Len(t, conds, 2)
	assert.Equal(t, "file_name", conds[0].Field())
	assert.Equal(t, "a.txt", conds[0].Value())
	assert.True(t, conds[1].Raw())
	assert.Equal(t, []any{6, 6}, conds[1].Args())

	orders := q.Orders()
	assert.Len(t, orders, 1)
	assert.Equal(t, "id", orders[0].Field())
}
