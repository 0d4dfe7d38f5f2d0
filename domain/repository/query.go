// Package repository provides the store-agnostic query options shared by
// every persistence implementation.
package repository

import "fmt"

// Option applies a modification to a Query.
type Option func(Query) Query

// Query holds conditions and ordering for store lookups.
type Query struct {
	conditions []Condition
	orders     []Order
}

// Build creates a Query from a set of options.
func Build(options ...Option) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns the query conditions.
func (q Query) Conditions() []Condition {
	result := make([]Condition, len(q.conditions))
	copy(result, q.conditions)
	return result
}

// Orders returns the query ordering specifications.
func (q Query) Orders() []Order {
	result := make([]Order, len(q.orders))
	copy(result, q.orders)
	return result
}

// ConditionKind distinguishes how a Condition is rendered.
type ConditionKind int

// ConditionKind values.
const (
	ConditionEqual ConditionKind = iota
	ConditionIn
	ConditionRaw
)

// Condition represents a single query condition.
//
// Equality and IN conditions carry a field and a value. Raw conditions carry
// a parameterised SQL fragment in field and its bind arguments in args.
type Condition struct {
	field string
	value any
	args  []any
	kind  ConditionKind
}

// Field returns the condition field name, or the SQL fragment for raw conditions.
func (c Condition) Field() string { return c.field }

// Value returns the condition value.
func (c Condition) Value() any { return c.value }

// Args returns the bind arguments of a raw condition.
func (c Condition) Args() []any {
	result := make([]any, len(c.args))
	copy(result, c.args)
	return result
}

// Kind returns how the condition is rendered.
func (c Condition) Kind() ConditionKind { return c.kind }

// In returns true if this is an IN condition (value is a slice).
func (c Condition) In() bool { return c.kind == ConditionIn }

// Raw returns true if this is a raw SQL condition.
func (c Condition) Raw() bool { return c.kind == ConditionRaw }

// String returns a readable representation.
func (c Condition) String() string {
	switch c.kind {
	case ConditionIn:
		return fmt.Sprintf("%s IN %v", c.field, c.value)
	case ConditionRaw:
		return fmt.Sprintf("%s %v", c.field, c.args)
	default:
		return fmt.Sprintf("%s = %v", c.field, c.value)
	}
}

// Order represents an ascending sort on one field.
type Order struct {
	field string
}

// Field returns the order field name.
func (o Order) Field() string { return o.field }

// WithCondition adds a field = value equality condition.
// Domain packages use this to define their own typed options.
func WithCondition(field string, value any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, value: value})
		return q
	}
}

// WithConditionIn adds a field IN (values) condition.
func WithConditionIn(field string, values any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, value: values, kind: ConditionIn})
		return q
	}
}

// WithWhere adds a parameterised SQL condition. Identifiers inside clause
// must already be quoted where the dialect requires it.
func WithWhere(clause string, args ...any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: clause, args: args, kind: ConditionRaw})
		return q
	}
}

// WithIDIn filters by the "id" column using IN.
func WithIDIn(ids []int64) Option {
	return WithConditionIn("id", ids)
}

// WithOrderAsc adds ascending ordering on a field.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field})
		return q
	}
}
