package persistence

import (
	"context"
	"errors"

	"github.com/helixml/discuss/domain/comment"
	"github.com/helixml/discuss/domain/repository"
	"github.com/helixml/discuss/internal/database"
	"gorm.io/gorm"
)

// CommentMapper maps between comment.Range and CommentModel.
type CommentMapper struct{}

// ToDomain converts a CommentModel to a comment.Range.
func (CommentMapper) ToDomain(e CommentModel) comment.Range {
	return comment.ReconstructRange(e.ID, e.FileName, e.Start, e.End, e.Comment)
}

// ToModel converts a comment.Range to a CommentModel.
func (CommentMapper) ToModel(r comment.Range) CommentModel {
	return CommentModel{
		ID:       r.ID(),
		FileName: r.File(),
		Start:    r.Start(),
		End:      r.End(),
		Comment:  r.Text(),
	}
}

// CommentStore implements comment.Store using GORM.
type CommentStore struct {
	database.Repository[comment.Range, CommentModel]
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db database.Database) CommentStore {
	return CommentStore{
		Repository: database.NewRepository[comment.Range, CommentModel](db, CommentMapper{}, "comment"),
	}
}

func storeErr(op string, err error) error {
	return &comment.StoreError{Op: op, Err: err}
}

// Add appends a range and returns it with its assigned id.
func (s CommentStore) Add(ctx context.Context, file string, start, end int, text string) (comment.Range, error) {
	r, err := s.Create(ctx, comment.NewRange(file, start, end, text))
	if err != nil {
		return comment.Range{}, storeErr("add", err)
	}
	return r, nil
}

// FindContaining returns the oldest range of file containing line.
func (s CommentStore) FindContaining(ctx context.Context, file string, line int) (comment.Range, error) {
	r, err := s.FindOne(ctx, comment.WithFile(file), comment.WithLine(line), comment.WithOldestFirst())
	if errors.Is(err, database.ErrNotFound) {
		return comment.Range{}, comment.ErrNotFound
	}
	if err != nil {
		return comment.Range{}, storeErr("find", err)
	}
	return r, nil
}

// DeleteContaining removes every range of file containing line and returns
// them oldest first.
func (s CommentStore) DeleteContaining(ctx context.Context, file string, line int) ([]comment.Range, error) {
	removed, err := database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) ([]comment.Range, error) {
		found, err := s.FindIn(tx, comment.WithFile(file), comment.WithLine(line), comment.WithOldestFirst())
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return found, nil
		}

		ids := make([]int64, len(found))
		for i, r := range found {
			ids[i] = r.ID()
		}
		if _, err := s.DeleteIn(tx, repository.WithIDIn(ids)); err != nil {
			return nil, err
		}
		return found, nil
	})
	if err != nil {
		return nil, storeErr("delete", err)
	}
	return removed, nil
}

// ListRanges returns every range of file oldest first.
func (s CommentStore) ListRanges(ctx context.Context, file string) ([]comment.Range, error) {
	ranges, err := s.Find(ctx, comment.WithFile(file), comment.WithOldestFirst())
	if err != nil {
		return nil, storeErr("list", err)
	}
	return ranges, nil
}

// Files returns the distinct file names that have ranges, sorted.
func (s CommentStore) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := s.DB(ctx).Model(&CommentModel{}).Distinct("file_name").Order("file_name").Pluck("file_name", &files).Error
	if err != nil {
		return nil, storeErr("files", err)
	}
	return files, nil
}
