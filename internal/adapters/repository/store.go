// Package repository persists submissions behind the Store interface.
//
// Backends: an in-memory store for tests and development, PostgreSQL via a
// pgx pool, and SQLite via modernc.org/sqlite. Each operation acquires its
// own connection and releases it before returning.
package repository

import (
	"context"
	"time"

	"github.com/okian/abalone/internal/domain/model"
	"github.com/okian/abalone/pkg/metrics"
)

// Driver names reported by Store.Driver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store provides append-only access to scored submissions.
type Store interface {
	// Insert persists a scored submission.
	Insert(ctx context.Context, s model.Submission) error

	// List returns every submission in arrival order.
	List(ctx context.Context) ([]model.Submission, error)

	// InsertWithinLimit persists s only while its team has fewer than limit
	// submissions at or after since, checking and writing atomically. It
	// reports whether s was written.
	InsertWithinLimit(ctx context.Context, s model.Submission, since time.Time, limit int) (bool, error)

	// CountSince returns how many submissions team made at or after since.
	CountSince(ctx context.Context, team string, since time.Time) (int, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error

	// Driver names the backend, e.g. "postgres".
	Driver() string
}

// observe records one store operation. Use as
// defer observe("insert", driver, time.Now(), &err).
func observe(op, driver string, start time.Time, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	metrics.RecordStoreOperation(op, driver, e, float64(time.Since(start).Microseconds())/1000)
}
