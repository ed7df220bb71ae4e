package repository

import (
	"context"

	"github.com/gogotex/todo-service/internal/todo"
)

// Repository is the persistence contract shared by the SQL, Mongo and
// in-memory stores. Missing ids are reported as todo.ErrNotFound.
type Repository interface {
	// Create assigns t.ID and stores t.
	Create(ctx context.Context, t *todo.Todo) error
	List(ctx context.Context) ([]todo.Todo, error)
	Get(ctx context.Context, id int64) (*todo.Todo, error)
	// Update replaces the content of the record with the given id.
	Update(ctx context.Context, id int64, content string) (*todo.Todo, error)
	Delete(ctx context.Context, id int64) error
}
