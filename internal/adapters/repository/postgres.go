package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/abalone/internal/domain/model"
)

// PostgresStore persists submissions in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn, verifies the connection and creates the
// submissions table when missing.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	o := newOptions(opts)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", ErrStorage, err)
	}
	poolConfig.MaxConns = int32(o.maxConns) //nolint:gosec // bounded by config validation
	poolConfig.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", ErrStorage, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrStorage, err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	ddl, err := schema("postgres.sql")
	if err != nil {
		return fmt.Errorf("%w: read schema: %w", ErrStorage, err)
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire: %w", ErrStorage, err)
	}
	defer conn.Release()

	// No arguments: simple protocol, so the multi-statement file runs as one Exec.
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("%w: create schema: %w", ErrStorage, err)
	}
	return nil
}

// Insert writes one submission.
func (s *PostgresStore) Insert(ctx context.Context, sub model.Submission) (err error) {
	defer observe("insert", DriverPostgres, time.Now(), &err)

	members, err := json.Marshal(nonNilMembers(sub.TeamMembers))
	if err != nil {
		return fmt.Errorf("%w: encode members: %w", ErrStorage, err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire: %w", ErrStorage, err)
	}
	defer conn.Release()

	const query = `
		INSERT INTO submissions (id, team_name, team_members, avatar, rmse_score, submitted_at)
		VALUES ($1::uuid, $2, $3::jsonb, $4, $5, $6)
	`
	_, err = conn.Exec(ctx, query,
		sub.ID.String(),
		sub.TeamName,
		string(members),
		nullString(sub.Avatar),
		sub.Score,
		sub.SubmittedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: insert: %w", ErrStorage, err)
	}
	return nil
}

// InsertWithinLimit writes sub unless its team already has limit submissions
// at or after since. A transaction-scoped advisory lock on the team name
// serializes concurrent writers for the same team.
func (s *PostgresStore) InsertWithinLimit(ctx context.Context, sub model.Submission, since time.Time, limit int) (_ bool, err error) {
	defer observe("insert_limited", DriverPostgres, time.Now(), &err)

	members, err := json.Marshal(nonNilMembers(sub.TeamMembers))
	if err != nil {
		return false, fmt.Errorf("%w: encode members: %w", ErrStorage, err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: acquire: %w", ErrStorage, err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, sub.TeamName); err != nil {
		return false, fmt.Errorf("%w: lock team: %w", ErrStorage, err)
	}

	const query = `
		INSERT INTO submissions (id, team_name, team_members, avatar, rmse_score, submitted_at)
		SELECT $1::uuid, $2::text, $3::jsonb, $4::text, $5::double precision, $6::timestamptz
		WHERE (
			SELECT count(*) FROM submissions
			WHERE team_name = $2::text AND submitted_at >= $7::timestamptz
		) < $8::bigint
	`
	tag, err := tx.Exec(ctx, query,
		sub.ID.String(),
		sub.TeamName,
		string(members),
		nullString(sub.Avatar),
		sub.Score,
		sub.SubmittedAt.UTC(),
		since.UTC(),
		int64(limit),
	)
	if err != nil {
		return false, fmt.Errorf("%w: insert: %w", ErrStorage, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns all submissions ordered by arrival.
func (s *PostgresStore) List(ctx context.Context) (_ []model.Submission, err error) {
	defer observe("list", DriverPostgres, time.Now(), &err)

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire: %w", ErrStorage, err)
	}
	defer conn.Release()

	const query = `
		SELECT id::text, team_name, team_members::text, avatar, rmse_score, submitted_at
		FROM submissions
		ORDER BY seq
	`
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStorage, err)
	}
	defer rows.Close()

	var out []model.Submission
	for rows.Next() {
		var (
			id, members string
			avatar      *string
			sub         model.Submission
		)
		if err := rows.Scan(&id, &sub.TeamName, &members, &avatar, &sub.Score, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrStorage, err)
		}
		if err := decodeRow(&sub, id, members, avatar); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStorage, err)
	}
	return out, nil
}

// CountSince counts team's submissions at or after since.
func (s *PostgresStore) CountSince(ctx context.Context, team string, since time.Time) (_ int, err error) {
	defer observe("count", DriverPostgres, time.Now(), &err)

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: acquire: %w", ErrStorage, err)
	}
	defer conn.Release()

	var n int64
	err = conn.QueryRow(ctx,
		`SELECT count(*) FROM submissions WHERE team_name = $1 AND submitted_at >= $2`,
		team, since.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrStorage, err)
	}
	return int(n), nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrStorage, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Driver returns "postgres".
func (s *PostgresStore) Driver() string { return DriverPostgres }

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNilMembers(m []string) []string {
	if m == nil {
		return []string{}
	}
	return m
}

// decodeRow fills the columns shared by the SQL backends.
func decodeRow(sub *model.Submission, id, members string, avatar *string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: bad id %q: %w", ErrStorage, id, err)
	}
	sub.ID = parsed
	if err := json.Unmarshal([]byte(members), &sub.TeamMembers); err != nil {
		return fmt.Errorf("%w: bad team_members for %s: %w", ErrStorage, id, err)
	}
	if avatar != nil {
		sub.Avatar = *avatar
	}
	sub.SubmittedAt = sub.SubmittedAt.UTC()
	return nil
}
