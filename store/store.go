package store

import "context"

type Operator string

const (
	OpEqual Operator = "=="
	OpIn    Operator = "in"
)

type Filter struct {
	Path  string
	Op    Operator
	Value any
}

func Eq(path string, value any) Filter {
	return Filter{Path: path, Op: OpEqual, Value: value}
}

func In(path string, values []string) Filter {
	return Filter{Path: path, Op: OpIn, Value: values}
}

// Query describes a filtered, ordered view of one collection. Where
// conditions are ANDed together; WhereAny conditions are ORed with each
// other. Ordering is always ascending.
type Query struct {
	Collection string
	Where      []Filter
	WhereAny   []Filter
	OrderBy    string
}

type Document interface {
	ID() string
	DataTo(v any) error
}

type CancelFunc func()

// Store is the document-store collaborator. Subscribe delivers full result
// sets, each superseding the previous one; within one subscription,
// snapshots arrive in the store's commit order.
type Store interface {
	Documents(ctx context.Context, q Query) ([]Document, error)
	Subscribe(ctx context.Context, q Query, fn func([]Document)) (CancelFunc, error)
	Append(ctx context.Context, collection string, record any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
}
