package search

import (
	"context"

	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
)

// Repository persists the argument tree of a session.
type Repository interface {
	Save(ctx context.Context, id string, tree arguments.Tree) error
	Load(ctx context.Context, id string) (arguments.Tree, error)
	Delete(ctx context.Context, id string) error
}

// IDGenerator issues new session ids.
type IDGenerator func() string
