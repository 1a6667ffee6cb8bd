//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/okian/abalone/internal/domain/model"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("abalone"),
		postgres.WithUsername("abalone"),
		postgres.WithPassword("abalone"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("terminate postgres: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	return dsn
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	store, err := Open(ctx, dsn, WithMaxConns(4))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.Driver() != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", store.Driver())
	}

	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	subs := []model.Submission{
		model.NewSubmission("Shellfish", []string{"Alice", " Bob"}, 2.5, day.Add(-time.Hour)),
		model.NewSubmission("Shellfish", []string{"Alice"}, 2.1, day.Add(time.Hour)),
		model.NewSubmission("Pearls", nil, 1.9, day.Add(2*time.Hour)),
	}
	for _, s := range subs {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(subs) {
		t.Fatalf("expected %d rows, got %d", len(subs), len(got))
	}
	for i := range subs {
		if got[i].ID != subs[i].ID {
			t.Errorf("row %d out of arrival order", i)
		}
	}
	if got[0].TeamMembers[1] != " Bob" {
		t.Errorf("members not preserved: %q", got[0].TeamMembers)
	}
	if len(got[2].TeamMembers) != 0 {
		t.Errorf("expected empty members, got %q", got[2].TeamMembers)
	}

	n, err := store.CountSince(ctx, "Shellfish", day)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1, got %d", n)
	}

	// Schema creation is idempotent.
	again, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = again.Close()
}

func TestPostgresStore_InsertWithinLimit(t *testing.T) {
	ctx := context.Background()
	store, err := NewPostgresStore(ctx, startPostgres(t), WithMaxConns(8))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	checkInsertWithinLimit(t, store)
}
