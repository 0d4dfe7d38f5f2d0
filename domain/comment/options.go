package comment

import "github.com/helixml/discuss/domain/repository"

// WithFile filters by the "file_name" column.
func WithFile(file string) repository.Option {
	return repository.WithCondition("file_name", file)
}

// WithLine keeps ranges whose inclusive span covers line.
func WithLine(line int) repository.Option {
	return repository.WithWhere(`"start" <= ? AND "end" >= ?`, line, line)
}

// WithOldestFirst orders by ascending id, which is insertion order.
func WithOldestFirst() repository.Option {
	return repository.WithOrderAsc("id")
}
