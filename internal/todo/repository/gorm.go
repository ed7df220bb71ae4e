package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogotex/todo-service/internal/todo"
	"gorm.io/gorm"
)

// GormRepo stores todos in the relational `todo` table through gorm. It works
// with any dialect the database package opens (Postgres, SQLite).
type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// Migrate creates the todo table and its content index when they are absent.
func (r *GormRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&todo.Todo{}); err != nil {
		return fmt.Errorf("create todo table: %w", err)
	}
	return nil
}

func (r *GormRepo) Create(ctx context.Context, t *todo.Todo) error {
	// the id always comes from the sequence
	t.ID = 0
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *GormRepo) List(ctx context.Context) ([]todo.Todo, error) {
	out := []todo.Todo{}
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return out, nil
}

func (r *GormRepo) Get(ctx context.Context, id int64) (*todo.Todo, error) {
	var t todo.Todo
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, todo.ErrNotFound
		}
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return &t, nil
}

// Update looks the row up and rewrites it inside one transaction, so a
// missing id leaves the table untouched.
func (r *GormRepo) Update(ctx context.Context, id int64, content string) (*todo.Todo, error) {
	var t todo.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			return err
		}
		t.Content = content
		return tx.Save(&t).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, todo.ErrNotFound
		}
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	return &t, nil
}

func (r *GormRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&todo.Todo{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete todo %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return todo.ErrNotFound
	}
	return nil
}
