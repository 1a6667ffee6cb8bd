package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/abalone/internal/domain/model"
)

// Fixed width so text comparison in CountSince matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists submissions in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dsn and creates the submissions table
// when missing. dsn is a file path or a file: URI.
func NewSQLiteStore(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	o := newOptions(opts)

	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorage, dsn, err)
	}
	db.SetMaxOpenConns(o.maxConns)

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// Immediate transactions take the write lock before the limit count runs.
	return dsn + sep + "_pragma=busy_timeout(5000)&_txlock=immediate"
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	ddl, err := schema("sqlite.sql")
	if err != nil {
		return fmt.Errorf("%w: read schema: %w", ErrStorage, err)
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: connect: %w", ErrStorage, err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%w: create schema: %w", ErrStorage, err)
	}
	return nil
}

// Insert writes one submission.
func (s *SQLiteStore) Insert(ctx context.Context, sub model.Submission) (err error) {
	defer observe("insert", DriverSQLite, time.Now(), &err)

	members, err := json.Marshal(nonNilMembers(sub.TeamMembers))
	if err != nil {
		return fmt.Errorf("%w: encode members: %w", ErrStorage, err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: connect: %w", ErrStorage, err)
	}
	defer conn.Close()

	const query = `
		INSERT INTO submissions (id, team_name, team_members, avatar, rmse_score, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = conn.ExecContext(ctx, query,
		sub.ID.String(),
		sub.TeamName,
		string(members),
		nullString(sub.Avatar),
		sub.Score,
		sub.SubmittedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("%w: insert: %w", ErrStorage, err)
	}
	return nil
}

// InsertWithinLimit writes sub unless its team already has limit submissions
// at or after since. The count and the insert run in one immediate
// transaction, so concurrent writers are serialized by SQLite's write lock.
func (s *SQLiteStore) InsertWithinLimit(ctx context.Context, sub model.Submission, since time.Time, limit int) (_ bool, err error) {
	defer observe("insert_limited", DriverSQLite, time.Now(), &err)

	members, err := json.Marshal(nonNilMembers(sub.TeamMembers))
	if err != nil {
		return false, fmt.Errorf("%w: encode members: %w", ErrStorage, err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: connect: %w", ErrStorage, err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO submissions (id, team_name, team_members, avatar, rmse_score, submitted_at)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE (
			SELECT count(*) FROM submissions
			WHERE team_name = ? AND submitted_at >= ?
		) < ?
	`
	res, err := tx.ExecContext(ctx, query,
		sub.ID.String(),
		sub.TeamName,
		string(members),
		nullString(sub.Avatar),
		sub.Score,
		sub.SubmittedAt.UTC().Format(sqliteTimeLayout),
		sub.TeamName,
		since.UTC().Format(sqliteTimeLayout),
		limit,
	)
	if err != nil {
		return false, fmt.Errorf("%w: insert: %w", ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %w", ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}
	return n == 1, nil
}

// List returns all submissions ordered by arrival.
func (s *SQLiteStore) List(ctx context.Context) (_ []model.Submission, err error) {
	defer observe("list", DriverSQLite, time.Now(), &err)

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", ErrStorage, err)
	}
	defer conn.Close()

	const query = `
		SELECT id, team_name, team_members, avatar, rmse_score, submitted_at
		FROM submissions
		ORDER BY seq
	`
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStorage, err)
	}
	defer rows.Close()

	var out []model.Submission
	for rows.Next() {
		var (
			id, members, at string
			avatar          sql.NullString
			sub             model.Submission
		)
		if err := rows.Scan(&id, &sub.TeamName, &members, &avatar, &sub.Score, &at); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrStorage, err)
		}
		sub.SubmittedAt, err = time.Parse(sqliteTimeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("%w: bad submitted_at %q: %w", ErrStorage, at, err)
		}
		var av *string
		if avatar.Valid {
			av = &avatar.String
		}
		if err := decodeRow(&sub, id, members, av); err != nil {
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
func (s *SQLiteStore) CountSince(ctx context.Context, team string, since time.Time) (_ int, err error) {
	defer observe("count", DriverSQLite, time.Now(), &err)

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: connect: %w", ErrStorage, err)
	}
	defer conn.Close()

	var n int
	err = conn.QueryRowContext(ctx,
		`SELECT count(*) FROM submissions WHERE team_name = ? AND submitted_at >= ?`,
		team, since.UTC().Format(sqliteTimeLayout),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrStorage, err)
	}
	return n, nil
}

// Ping checks that the database file is usable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrStorage, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Driver returns "sqlite".
func (s *SQLiteStore) Driver() string { return DriverSQLite }
