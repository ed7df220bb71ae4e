package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gogotex/todo-service/internal/config"
	"github.com/gogotex/todo-service/internal/database"
	"github.com/gogotex/todo-service/internal/todo"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func newGormRepo(t *testing.T) *GormRepo {
	t.Helper()
	db, err := database.Open(context.Background(), config.DatabaseConfig{
		URL: "sqlite://" + filepath.Join(t.TempDir(), "todo.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	r := NewGormRepo(db)
	require.NoError(t, r.Migrate(context.Background()))
	// a second migrate is a no-op
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

// newMongoDB connects to MONGODB_URI and hands out a throwaway database that
// is dropped when the test ends. It returns nil when MONGODB_URI is unset.
func newMongoDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		return nil
	}
	client, err := database.ConnectMongo(context.Background(), config.MongoDBConfig{URI: uri, Timeout: 10 * time.Second})
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("todo_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func newMongoRepo(t *testing.T, db *mongo.Database) *MongoRepo {
	t.Helper()
	r := NewMongoRepo(db)
	require.NoError(t, r.Migrate(context.Background()))
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

// every store must satisfy the same contract
func stores(t *testing.T) map[string]Repository {
	out := map[string]Repository{
		"memory": NewMemoryRepo(),
		"gorm":   newGormRepo(t),
	}
	if db := newMongoDB(t); db != nil {
		out["mongo"] = newMongoRepo(t, db)
	}
	return out
}

func TestMongoRepo_SequenceSurvivesReconnect(t *testing.T) {
	db := newMongoDB(t)
	if db == nil {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()

	first := newMongoRepo(t, db)
	a := &todo.Todo{Content: "a"}
	require.NoError(t, first.Create(ctx, a))
	require.Equal(t, int64(1), a.ID)
	require.NoError(t, first.Delete(ctx, a.ID))

	// ids are never reused, even after a delete and a fresh repo
	second := newMongoRepo(t, db)
	b := &todo.Todo{Content: "b"}
	require.NoError(t, second.Create(ctx, b))
	require.Equal(t, int64(2), b.ID)

	got, err := second.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, todo.Todo{ID: 2, Content: "b"}, *got)
}

func TestRepositoryRoundTrip(t *testing.T) {
	for name, r := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created := &todo.Todo{Content: "buy milk"}
			require.NoError(t, r.Create(ctx, created))
			require.NotZero(t, created.ID)

			list, err := r.List(ctx)
			require.NoError(t, err)
			require.Contains(t, list, todo.Todo{ID: created.ID, Content: "buy milk"})

			updated, err := r.Update(ctx, created.ID, "buy eggs")
			require.NoError(t, err)
			require.Equal(t, todo.Todo{ID: created.ID, Content: "buy eggs"}, *updated)

			got, err := r.Get(ctx, created.ID)
			require.NoError(t, err)
			require.Equal(t, "buy eggs", got.Content)

			require.NoError(t, r.Delete(ctx, created.ID))

			list, err = r.List(ctx)
			require.NoError(t, err)
			for _, it := range list {
				require.NotEqual(t, created.ID, it.ID)
			}
			_, err = r.Get(ctx, created.ID)
			require.ErrorIs(t, err, todo.ErrNotFound)
		})
	}
}

func TestRepositoryEmptyListIsNotNil(t *testing.T) {
	for name, r := range stores(t) {
		t.Run(name, func(t *testing.T) {
			list, err := r.List(context.Background())
			require.NoError(t, err)
			require.NotNil(t, list)
			require.Empty(t, list)
		})
	}
}

func TestRepositoryMissingID(t *testing.T) {
	for name, r := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, r.Create(ctx, &todo.Todo{Content: "keep me"}))

			_, err := r.Update(ctx, 99999, "nope")
			require.ErrorIs(t, err, todo.ErrNotFound)
			require.ErrorIs(t, r.Delete(ctx, 99999), todo.ErrNotFound)
			_, err = r.Get(ctx, 99999)
			require.ErrorIs(t, err, todo.ErrNotFound)

			list, err := r.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			require.Equal(t, "keep me", list[0].Content)
		})
	}
}

func TestRepositoryCreateIgnoresCallerID(t *testing.T) {
	for name, r := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := &todo.Todo{Content: "a"}
			require.NoError(t, r.Create(ctx, first))

			second := &todo.Todo{ID: first.ID, Content: "b"}
			require.NoError(t, r.Create(ctx, second))
			require.NotEqual(t, first.ID, second.ID)
		})
	}
}

func TestRepositoryEmptyContentAllowed(t *testing.T) {
	for name, r := range stores(t) {
		t.Run(name, func(t *testing.T) {
			it := &todo.Todo{Content: ""}
			require.NoError(t, r.Create(context.Background(), it))
			got, err := r.Get(context.Background(), it.ID)
			require.NoError(t, err)
			require.Equal(t, "", got.Content)
		})
	}
}

func TestRepositoryConcurrentCreatesGetDistinctIDs(t *testing.T) {
	for name, r := range stores(t) {
		t.Run(name, func(t *testing.T) {
			const n = 25
			ids := make([]int64, n)
			errs := make([]error, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					it := &todo.Todo{Content: "parallel"}
					errs[i] = r.Create(context.Background(), it)
					ids[i] = it.ID
				}(i)
			}
			wg.Wait()

			seen := map[int64]bool{}
			for i := 0; i < n; i++ {
				require.NoError(t, errs[i])
				require.False(t, seen[ids[i]], "duplicate id %d", ids[i])
				seen[ids[i]] = true
			}
		})
	}
}
