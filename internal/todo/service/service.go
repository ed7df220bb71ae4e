package service

import (
	"context"
	"errors"

	"github.com/gogotex/todo-service/internal/todo"
	"github.com/gogotex/todo-service/internal/todo/repository"
	"github.com/gogotex/todo-service/pkg/logger"
	"github.com/gogotex/todo-service/pkg/metrics"
)

// ListCache is the optional read-through cache for List. Generation must be
// read before loading from the store; SetList drops the snapshot when an
// Invalidate happened after that read.
type ListCache interface {
	GetList(ctx context.Context) ([]todo.Todo, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetList(ctx context.Context, gen int64, list []todo.Todo) (bool, error)
	Invalidate(ctx context.Context) error
}

// TodoService wraps a repository with the list cache and operation metrics.
// Cache failures are logged and never fail a request.
type TodoService struct {
	repo  repository.Repository
	cache ListCache
}

// NewTodoService returns a service over repo. cache may be nil.
func NewTodoService(repo repository.Repository, cache ListCache) *TodoService {
	return &TodoService{repo: repo, cache: cache}
}

func observe(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, todo.ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.Operations.WithLabelValues(op, result).Inc()
}

func (s *TodoService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warnf("todo cache invalidate: %v", err)
	}
}

// Create stores a new todo; the id is always assigned by the store.
func (s *TodoService) Create(ctx context.Context, content string) (*todo.Todo, error) {
	t := &todo.Todo{Content: content}
	err := s.repo.Create(ctx, t)
	observe("create", err)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *TodoService) List(ctx context.Context) ([]todo.Todo, error) {
	var (
		gen      int64
		fillable bool
	)
	if s.cache != nil {
		list, ok, err := s.cache.GetList(ctx)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			logger.Warnf("todo cache read: %v", err)
		case ok:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			observe("list", nil)
			return list, nil
		default:
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}

		if gen, err = s.cache.Generation(ctx); err != nil {
			logger.Warnf("todo cache generation: %v", err)
		} else {
			fillable = true
		}
	}

	list, err := s.repo.List(ctx)
	observe("list", err)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []todo.Todo{}
	}
	if fillable {
		stored, err := s.cache.SetList(ctx, gen, list)
		switch {
		case err != nil:
			logger.Warnf("todo cache fill: %v", err)
		case !stored:
			logger.Debugf("todo cache fill skipped: list changed while loading")
		}
	}
	return list, nil
}

func (s *TodoService) Get(ctx context.Context, id int64) (*todo.Todo, error) {
	t, err := s.repo.Get(ctx, id)
	observe("get", err)
	return t, err
}

// Update replaces the content of todo id. The id itself never changes.
func (s *TodoService) Update(ctx context.Context, id int64, content string) (*todo.Todo, error) {
	t, err := s.repo.Update(ctx, id, content)
	observe("update", err)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	observe("delete", err)
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}
