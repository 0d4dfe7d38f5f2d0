package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/discuss/domain/repository"
	"gorm.io/gorm"
)

// ErrNotFound indicates the requested entity was not found.
var ErrNotFound = errors.New("entity not found")

// EntityMapper defines the interface for mapping between domain and database model types.
type EntityMapper[D any, E any] interface {
	ToDomain(entity E) D
	ToModel(domain D) E
}

// Repository provides generic persistence operations for database entities
// using repository.Option-based queries.
type Repository[D any, E any] struct {
	db     Database
	mapper EntityMapper[D, E]
	label  string
}

// NewRepository creates a new Repository.
func NewRepository[D any, E any](db Database, mapper EntityMapper[D, E], label string) Repository[D, E] {
	return Repository[D, E]{
		db:     db,
		mapper: mapper,
		label:  label,
	}
}

// Find retrieves entities matching the given options.
func (r Repository[D, E]) Find(ctx context.Context, options ...repository.Option) ([]D, error) {
	return r.FindIn(r.DB(ctx), options...)
}

// FindIn is Find against an explicit session, typically a transaction.
func (r Repository[D, E]) FindIn(db *gorm.DB, options ...repository.Option) ([]D, error) {
	var entities []E
	result := ApplyOptions(db.Model(new(E)), options...).Find(&entities)
	if result.Error != nil {
		return nil, fmt.Errorf("find %s: %w", r.label, result.Error)
	}

	domains := make([]D, len(entities))
	for i, entity := range entities {
		domains[i] = r.mapper.ToDomain(entity)
	}
	return domains, nil
}

// FindOne retrieves the first entity matching the given options.
func (r Repository[D, E]) FindOne(ctx context.Context, options ...repository.Option) (D, error) {
	var entity E
	var zero D
	result := ApplyOptions(r.DB(ctx), options...).Limit(1).Find(&entity)
	if result.Error != nil {
		return zero, fmt.Errorf("find one %s: %w", r.label, result.Error)
	}
	if result.RowsAffected == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, r.label)
	}
	return r.mapper.ToDomain(entity), nil
}

// Create inserts a new entity and returns it with generated columns populated.
func (r Repository[D, E]) Create(ctx context.Context, domain D) (D, error) {
	model := r.mapper.ToModel(domain)
	if result := r.DB(ctx).Create(&model); result.Error != nil {
		var zero D
		return zero, fmt.Errorf("create %s: %w", r.label, result.Error)
	}
	return r.mapper.ToDomain(model), nil
}

// DeleteIn removes entities matching the given options within db.
func (r Repository[D, E]) DeleteIn(db *gorm.DB, options ...repository.Option) (int64, error) {
	result := ApplyConditions(db, options...).Delete(new(E))
	if result.Error != nil {
		return 0, fmt.Errorf("delete %s: %w", r.label, result.Error)
	}
	return result.RowsAffected, nil
}

// DB returns a GORM session bound to ctx.
func (r Repository[D, E]) DB(ctx context.Context) *gorm.DB {
	return r.db.Session(ctx)
}

// Database returns the wrapped database, for transactions.
func (r Repository[D, E]) Database() Database {
	return r.db
}
