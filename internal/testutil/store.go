package testutil

import (
	"context"
	"testing"

	"github.com/nhle/todolist/internal/store"
)

// NewTestHelper creates a Helper over a fresh in-memory database that is
// already opened. It is closed when the test completes.
func NewTestHelper(t *testing.T, opts ...store.Option) *store.Helper {
	t.Helper()

	h := store.NewHelper(":memory:", opts...)
	if _, err := h.DB(context.Background()); err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	t.Cleanup(func() {
		if err := h.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return h
}

// NewTestStore creates an in-memory SQLiteStore with the schema created.
// It automatically closes the database when the test completes.
func NewTestStore(t *testing.T) (*store.SQLiteStore, *store.Helper) {
	t.Helper()

	h := NewTestHelper(t)
	s, err := store.NewSQLiteStore(context.Background(), h)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	return s, h
}
