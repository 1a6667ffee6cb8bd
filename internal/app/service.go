// Package service implements the competition operations behind the HTTP API:
// scoring an upload, recording it, and deriving the leaderboard.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/abalone/internal/adapters/repository"
	"github.com/okian/abalone/internal/domain/model"
	"github.com/okian/abalone/internal/domain/ranking"
	"github.com/okian/abalone/internal/domain/scoring"
	"github.com/okian/abalone/internal/domain/types"
	"github.com/okian/abalone/pkg/logger"
	"github.com/okian/abalone/pkg/metrics"
)

// SuccessMessage is returned with every accepted upload.
const SuccessMessage = "Submission successful"

// SubmitRequest carries one decoded upload.
type SubmitRequest struct {
	TeamName    string
	TeamMembers string // comma-separated, split literally
	FileName    string
	File        io.Reader
}

// Service implements the API dependencies for the competition.
// It keeps no mutable state between requests.
type Service struct {
	store         repository.Store
	scorer        scoring.Scorer
	referenceFile string
	maxMembers    int
	dailyLimit    int
	now           func() time.Time
	logger        logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the submission store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScorer sets the upload scorer.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithReferenceFile sets the path of the reference answers.
func WithReferenceFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.referenceFile = path
		}
	}
}

// WithMaxTeamMembers caps the member list; 0 disables the check.
func WithMaxTeamMembers(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxMembers = n
		}
	}
}

// WithDailySubmissionLimit caps submissions per team per UTC day; 0 disables it.
func WithDailySubmissionLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.dailyLimit = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithStore it uses an in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		scorer:        scoring.NewCSVScorer(),
		referenceFile: "data/Correct_output_to_validate.csv",
		maxMembers:    4,
		dailyLimit:    5,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Submit validates, scores and records one upload.
//
// Client errors wrap ErrMissingFields, ErrWrongFormat, ErrTooManyMembers,
// ErrRateLimited or scoring.ErrValidation. A broken reference file wraps
// scoring.ErrReference and store failures wrap repository.ErrStorage.
// Nothing is written unless scoring succeeds.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (types.UploadResult, error) {
	if req.TeamName == "" || req.TeamMembers == "" || req.File == nil || req.FileName == "" {
		metrics.RecordSubmission(metrics.ResultRejected)
		return types.UploadResult{}, ErrMissingFields
	}
	if !strings.HasSuffix(req.FileName, ".csv") {
		metrics.RecordSubmission(metrics.ResultRejected)
		return types.UploadResult{}, fmt.Errorf("%w: %q", ErrWrongFormat, req.FileName)
	}

	members := model.SplitMembers(req.TeamMembers)
	if n := model.CountMembers(members); s.maxMembers > 0 && n > s.maxMembers {
		metrics.RecordSubmission(metrics.ResultRejected)
		return types.UploadResult{}, fmt.Errorf("%w: %d > %d", ErrTooManyMembers, n, s.maxMembers)
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if s.dailyLimit > 0 {
		// Early rejection only; the write below enforces the limit.
		n, err := s.store.CountSince(ctx, req.TeamName, dayStart)
		if err != nil {
			metrics.RecordSubmission(metrics.ResultFailed)
			return types.UploadResult{}, err
		}
		if n >= s.dailyLimit {
			metrics.RecordSubmission(metrics.ResultRejected)
			return types.UploadResult{}, fmt.Errorf("%w: %d of %d", ErrRateLimited, n, s.dailyLimit)
		}
	}

	result, err := s.score(ctx, req.File)
	if err != nil {
		if errors.Is(err, scoring.ErrValidation) {
			metrics.RecordSubmission(metrics.ResultRejected)
		} else {
			metrics.RecordSubmission(metrics.ResultFailed)
		}
		return types.UploadResult{}, err
	}

	sub := model.NewSubmission(req.TeamName, members, result.RMSE, now)
	if err := s.insert(ctx, sub, dayStart); err != nil {
		if errors.Is(err, ErrRateLimited) {
			metrics.RecordSubmission(metrics.ResultRejected)
		} else {
			metrics.RecordSubmission(metrics.ResultFailed)
		}
		return types.UploadResult{}, err
	}

	metrics.RecordSubmission(metrics.ResultAccepted)
	metrics.RecordRMSE(result.RMSE)
	s.logger.Info(ctx, "submission accepted",
		logger.String("id", sub.ID.String()),
		logger.String("team", sub.TeamName),
		logger.Int("members", len(members)),
		logger.Float64("rmse", result.RMSE),
		logger.Int("rows", result.Rows),
	)
	return types.UploadResult{Message: SuccessMessage, RMSE: result.RMSE}, nil
}

// insert writes sub, holding the team to the daily limit when one is set.
func (s *Service) insert(ctx context.Context, sub model.Submission, dayStart time.Time) error {
	if s.dailyLimit == 0 {
		return s.store.Insert(ctx, sub)
	}
	ok, err := s.store.InsertWithinLimit(ctx, sub, dayStart, s.dailyLimit)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d per day", ErrRateLimited, s.dailyLimit)
	}
	return nil
}

// score opens the reference file for this request only.
func (s *Service) score(ctx context.Context, upload io.Reader) (scoring.Result, error) {
	start := time.Now()

	ref, err := os.Open(s.referenceFile)
	if err != nil {
		return scoring.Result{}, fmt.Errorf("%w: %w", scoring.ErrReference, err)
	}
	defer ref.Close()

	result, err := s.scorer.Score(ctx, ref, upload)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return scoring.Result{}, err
	}
	metrics.RecordScoredRows(result.Rows)
	return result, nil
}

// Leaderboard returns every submission ranked by ascending score.
func (s *Service) Leaderboard(ctx context.Context) ([]types.Entry, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := ranking.Rank(subs)
	metrics.RecordLeaderboardRead(len(entries))
	return entries, nil
}

// Stats summarizes the stored submissions.
func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return types.Stats{}, err
	}

	stats := types.Stats{Submissions: len(subs), Store: s.store.Driver()}
	teams := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		teams[sub.TeamName] = struct{}{}
		if stats.BestScore == nil || sub.Score < *stats.BestScore {
			best := sub.Score
			stats.BestScore = &best
		}
	}
	stats.Teams = len(teams)
	return stats, nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
