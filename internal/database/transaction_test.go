package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/helixml/discuss/domain/repository"
)

type noteModel struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Tag  string `gorm:"column:tag"`
	Rank int    `gorm:"column:weight"`
}

func (noteModel) TableName() string { return "notes" }

type note struct {
	id   int64
	tag  string
	rank int
}

type noteMapper struct{}

func (noteMapper) ToDomain(e noteModel) note { return note{id: e.ID, tag: e.Tag, rank: e.Rank} }
func (noteMapper) ToModel(d note) noteModel  { return noteModel{ID: d.id, Tag: d.tag, Rank: d.rank} }

func newNotes(t *testing.T) Repository[note, noteModel] {
	t.Helper()
	db, err := NewDatabase(context.Background(), "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.GORM().AutoMigrate(&noteModel{}))
	return NewRepository[note, noteModel](db, noteMapper{}, "note")
}

func seed(t *testing.T, repo Repository[note, noteModel], notes ...note) {
	t.Helper()
	for _, n := range notes {
		_, err := repo.Create(context.Background(), n)
		require.NoError(t, err)
	}
}

func TestWithTransaction_Commit(t *testing.T) {
	ctx := context.Background()
	repo := newNotes(t)

	err := WithTransaction(ctx, repo.Database(), func(tx *gorm.DB) error {
		return tx.Create(&noteModel{Tag: "a", Rank: 1}).Error
	})
	require.NoError(t, err)

	found, err := repo.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	repo := newNotes(t)
	boom := errors.New("boom")

	err := WithTransaction(ctx, repo.Database(), func(tx *gorm.DB) error {
		if err := tx.Create(&noteModel{Tag: "a"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := repo.Find(ctx)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestWithTransactionResult(t *testing.T) {
	ctx := context.Background()
	repo := newNotes(t)
	seed(t, repo, note{tag: "a", rank: 1}, note{tag: "a", rank: 2}, note{tag: "b", rank: 3})

	deleted, err := WithTransactionResult(ctx, repo.Database(), func(tx *gorm.DB) ([]note, error) {
		found, err := repo.FindIn(tx, repository.WithCondition("tag", "a"), repository.WithOrderAsc("id"))
		if err != nil {
			return nil, err
		}
		ids := make([]int64, len(found))
		for i, n := range found {
			ids[i] = n.id
		}
		if _, err := repo.DeleteIn(tx, repository.WithIDIn(ids)); err != nil {
			return nil, err
		}
		return found, nil
	})
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	assert.Equal(t, 1, deleted[0].rank)
	assert.Equal(t, 2, deleted[1].rank)

	remaining, err := repo.Find(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].tag)
}

func TestWithTransactionResult_ZeroOnError(t *testing.T) {
	ctx := context.Background()
	repo := newNotes(t)

	got, err := WithTransactionResult(ctx, repo.Database(), func(tx *gorm.DB) (int, error) {
		return 42, errors.New("fail")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, got)
}

func TestRepository_FindWithOptions(t *testing.T) {
	ctx := context.Background()
	repo := newNotes(t)
	seed(t, repo,
		note{tag: "a", rank: 5},
		note{tag: "a", rank: 1},
		note{tag: "b", rank: 3},
		note{tag: "c", rank: 9},
	)

	t.Run("raw where", func(t *testing.T) {
		found, err := repo.Find(ctx, repository.WithWhere(`"weight" <= ? AND "weight" >= ?`, 5, 3), repository.WithOrderAsc("weight"))
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, 3, found[0].rank)
		assert.Equal(t, 5, found[1].rank)
	})

	t.Run("in", func(t *testing.T) {
		found, err := repo.Find(ctx, repository.WithConditionIn("tag", []string{"b", "c"}))
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("condition with ordering", func(t *testing.T) {
		found, err := repo.Find(ctx, repository.WithCondition("tag", "a"), repository.WithOrderAsc("weight"))
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, 1, found[0].rank)
		assert.Equal(t, 5, found[1].rank)
	})
}

func TestRepository_FindOne(t *testing.T) {
	ctx := context.Background()
	repo := newNotes(t)
	seed(t, repo, note{tag: "a", rank: 1})

	got, err := repo.FindOne(ctx, repository.WithCondition("tag", "a"))
	require.NoError(t, err)
	assert.Equal(t, 1, got.rank)

	_, err = repo.FindOne(ctx, repository.WithCondition("tag", "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_CreateAssignsID(t *testing.T) {
	ctx := context.Background()
	repo := newNotes(t)

	first, err := repo.Create(ctx, note{tag: "a"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, note{tag: "b"})
	require.NoError(t, err)

	assert.NotZero(t, first.id)
	assert.Greater(t, second.id, first.id)
}
