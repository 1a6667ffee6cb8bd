package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/abalone/internal/domain/model"
)

// MemStore keeps submissions in a slice. Data is lost on restart.
type MemStore struct {
	mu   sync.RWMutex
	subs []model.Submission
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Insert appends a copy of s.
func (m *MemStore) Insert(ctx context.Context, s model.Submission) (err error) {
	defer observe("insert", DriverMemory, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.TeamMembers = append([]string(nil), s.TeamMembers...)

	m.mu.Lock()
	m.subs = append(m.subs, s)
	m.mu.Unlock()
	return nil
}

// InsertWithinLimit appends a copy of s unless its team already has limit
// submissions at or after since.
func (m *MemStore) InsertWithinLimit(ctx context.Context, s model.Submission, since time.Time, limit int) (_ bool, err error) {
	defer observe("insert_limited", DriverMemory, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.TeamMembers = append([]string(nil), s.TeamMembers...)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countLocked(s.TeamName, since) >= limit {
		return false, nil
	}
	m.subs = append(m.subs, s)
	return true, nil
}

// List returns copies of all submissions in insertion order.
func (m *MemStore) List(ctx context.Context) (_ []model.Submission, err error) {
	defer observe("list", DriverMemory, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Submission, len(m.subs))
	for i, s := range m.subs {
		s.TeamMembers = append([]string(nil), s.TeamMembers...)
		out[i] = s
	}
	return out, nil
}

// CountSince counts team's submissions at or after since.
func (m *MemStore) CountSince(ctx context.Context, team string, since time.Time) (_ int, err error) {
	defer observe("count", DriverMemory, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLocked(team, since), nil
}

// countLocked requires m.mu.
func (m *MemStore) countLocked(team string, since time.Time) int {
	n := 0
	for _, s := range m.subs {
		if s.TeamName == team && !s.SubmittedAt.Before(since) {
			n++
		}
	}
	return n
}

// Ping always succeeds.
func (m *MemStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *MemStore) Close() error { return nil }

// Driver returns "memory".
func (m *MemStore) Driver() string { return DriverMemory }
