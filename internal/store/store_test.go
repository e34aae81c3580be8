package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/fleetprice/internal/db"
	"github.com/Simplici0/fleetprice/internal/migrations"
)

// exerciseStore runs the shared contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "app_state"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store error = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "app_state", []byte(`{"config":null,"ui":{"tab":1}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "app_state", []byte(`{"config":null,"ui":{"tab":2}}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, err := s.Get(ctx, "app_state")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"config":null,"ui":{"tab":2}}` {
		t.Fatalf("Get = %s, want last write", got)
	}

	if _, err := s.Get(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get other key error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := migrations.Up(database, migrations.DialectSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	s := NewSQLite(database)
	defer s.Close()
	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	database, err := db.OpenPostgres(context.Background(), dsn, 10*time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := migrations.Up(database, migrations.DialectPostgres); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := database.Exec(`DELETE FROM app_state`); err != nil {
		t.Fatalf("clear app_state: %v", err)
	}

	s := NewPostgres(database)
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	s, err := NewRedis(context.Background(), addr, "", 15)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer s.Close()
	if err := s.client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	exerciseStore(t, s)
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFile(filepath.Join(t.TempDir(), "nested", "state.json")))
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	s := NewFile(filepath.Join(t.TempDir(), "state.json"))
	if err := s.Set(context.Background(), "app_state", []byte("{not json")); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestFileStore_ConcurrentWritersKeepFileValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewFile(path)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := []string{"config", "ui"}[i%2]
			if err := s.Set(ctx, key, []byte(`{"writer":true}`)); err != nil {
				t.Errorf("Set: %v", err)
			}
		}(i)
	}
	wg.Wait()

	for _, key := range []string{"config", "ui"} {
		if _, err := NewFile(path).Get(ctx, key); err != nil {
			t.Fatalf("Get %s after concurrent writes: %v", key, err)
		}
	}
}
