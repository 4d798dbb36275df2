package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pavelanni/interviewprep/internal/metrics"
	"github.com/pavelanni/interviewprep/internal/model"
)

var (
	ErrNotFound         = errors.New("challenge not found")
	ErrAttemptLimit     = errors.New("daily attempt limit reached")
	ErrAlreadyCompleted = errors.New("challenge already completed")
)

// DateLayout is the calendar-day format used for challenge dates and the
// per-day attempt cap.
const DateLayout = "2006-01-02"

// Store is the persistence the service needs. *store.Store implements it.
type Store interface {
	GetChallenge(id string) (*model.Challenge, error)
	ChallengeForDate(date string) (*model.Challenge, error)
	ListPoolChallenges() ([]model.Challenge, error)

	CountAttemptsOn(userID int64, challengeID, day string) (int, error)
	HasCompletedChallenge(userID int64, challengeID string) (bool, error)
	RecordAttempt(ctx context.Context, a *model.ChallengeAttempt, day string, upd *model.StreakUpdate) error
	ListAttempts(userID int64, challengeID string) ([]model.ChallengeAttempt, error)

	GetStreak(userID int64) (*model.StreakState, error)
	EnsureStreak(userID int64) error
	SaveStreak(ctx context.Context, s *model.StreakState, entry model.StreakEntry, awarded []model.Achievement) error
	Leaderboard(limit int) ([]model.LeaderboardEntry, error)
}

// Service runs challenge submissions and streak transitions.
type Service struct {
	store Store
	cfg   Config
	now   func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a service. Zero config fields take their defaults.
func NewService(st Store, cfg Config) *Service {
	return &Service{
		store: st,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		locks: make(map[int64]*sync.Mutex),
	}
}

// SetClock replaces the time source. It is meant for tests and the CLI.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// lockUser serializes submissions of one user so that the read-modify-write
// of the streak row cannot interleave.
func (s *Service) lockUser(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Today returns the challenge dated today or, when none is scheduled, a pool
// challenge picked deterministically by day number.
func (s *Service) Today(ctx context.Context) (*model.Challenge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	today := s.now()
	ch, err := s.store.ChallengeForDate(today.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("load dated challenge: %w", err)
	}
	if ch != nil {
		return ch, nil
	}

	pool, err := s.store.ListPoolChallenges()
	if err != nil {
		return nil, fmt.Errorf("list challenge pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNotFound
	}
	y, m, d := today.Date()
	dayNumber := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	picked := pool[int(dayNumber%int64(len(pool)))]
	return &picked, nil
}

// Submit scores a submission and records the attempt. The attempt cap and the
// completed check run before any scoring. A complete attempt advances the
// streak.
func (s *Service) Submit(ctx context.Context, userID int64, challengeID string, req model.SubmissionRequest) (*model.SubmissionResult, error) {
	ch, err := s.store.GetChallenge(challengeID)
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if ch == nil {
		return nil, ErrNotFound
	}

	unlock := s.lockUser(userID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done, err := s.store.HasCompletedChallenge(userID, ch.ID)
	if err != nil {
		return nil, fmt.Errorf("check completion: %w", err)
	}
	if done {
		metrics.ChallengeSubmissionsTotal.WithLabelValues("already_completed").Inc()
		return nil, ErrAlreadyCompleted
	}

	now := s.now()
	day := now.Format(DateLayout)
	used, err := s.store.CountAttemptsOn(userID, ch.ID, day)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if used >= s.cfg.MaxDailyAttempts {
		metrics.ChallengeSubmissionsTotal.WithLabelValues("limit").Inc()
		return nil, fmt.Errorf("%w: maximum of %d attempts per challenge per day", ErrAttemptLimit, s.cfg.MaxDailyAttempts)
	}

	if err := s.store.EnsureStreak(userID); err != nil {
		return nil, fmt.Errorf("create streak: %w", err)
	}

	answer := req.Answer
	if strings.TrimSpace(answer) == "" {
		answer = req.Code
	}
	score, complete := ScoreAnswer(ch.ExpectedAnswer, answer, s.cfg)
	points := CalculatePoints(*ch, score, req.HintsUsed, req.TimeSpent, complete, s.cfg)

	attempt := model.ChallengeAttempt{
		UserID:       userID,
		ChallengeID:  ch.ID,
		Answer:       req.Answer,
		Code:         req.Code,
		Score:        score,
		IsCompleted:  complete,
		PointsEarned: points,
		TimeSpent:    req.TimeSpent,
		HintsUsed:    req.HintsUsed,
		Feedback:     Feedback(score),
		AttemptedAt:  now,
	}
	res := &model.SubmissionResult{
		Attempt:      attempt,
		Score:        score,
		IsCompleted:  complete,
		PointsEarned: points,
		Feedback:     attempt.Feedback,
		AttemptsLeft: s.cfg.MaxDailyAttempts - used - 1,
	}

	var upd *model.StreakUpdate
	outcome := "incomplete"
	if complete {
		outcome = "completed"
		res.Streak, upd, err = s.transition(userID, ch.ID, points, now)
		if err != nil {
			return nil, err
		}
	}
	if err := s.store.RecordAttempt(ctx, &attempt, day, upd); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	res.Attempt.ID = attempt.ID
	if upd != nil {
		res.NewAchievements = upd.Awarded
		countAwarded(userID, upd.Awarded)
	}
	metrics.ChallengeSubmissionsTotal.WithLabelValues(outcome).Inc()

	slog.Info("challenge submission",
		"user_id", userID,
		"challenge_id", ch.ID,
		"score", score,
		"completed", complete,
		"points", points,
	)
	return res, nil
}

// CompleteChallenge applies the streak transition for one completion. A
// second completion on the same calendar day changes nothing.
func (s *Service) CompleteChallenge(ctx context.Context, userID int64, challengeID string, points int) (*model.StreakState, []model.Achievement, error) {
	unlock := s.lockUser(userID)
	defer unlock()
	return s.complete(ctx, userID, challengeID, points)
}

// complete must be called with the user's lock held.
func (s *Service) complete(ctx context.Context, userID int64, challengeID string, points int) (*model.StreakState, []model.Achievement, error) {
	state, upd, err := s.transition(userID, challengeID, points, s.now())
	if err != nil {
		return nil, nil, err
	}
	if upd == nil {
		return state, nil, nil
	}
	if err := s.store.SaveStreak(ctx, upd.State, upd.Entry, upd.Awarded); err != nil {
		return nil, nil, fmt.Errorf("save streak: %w", err)
	}
	countAwarded(userID, upd.Awarded)
	return state, upd.Awarded, nil
}

// transition loads the user's streak and applies one completion at now in
// memory. The update is nil when the day already had a completion.
func (s *Service) transition(userID int64, challengeID string, points int, now time.Time) (*model.StreakState, *model.StreakUpdate, error) {
	state, err := s.store.GetStreak(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load streak: %w", err)
	}
	if state == nil {
		state = NewStreak(userID)
	}
	changed, awarded := Advance(state, now, challengeID, points, s.cfg.Milestones)
	if !changed {
		return state, nil, nil
	}
	return state, &model.StreakUpdate{
		State:   state,
		Entry:   state.StreakHistory[len(state.StreakHistory)-1],
		Awarded: awarded,
	}, nil
}

func countAwarded(userID int64, awarded []model.Achievement) {
	for _, a := range awarded {
		metrics.StreakAchievementsTotal.WithLabelValues(a.Name).Inc()
		slog.Info("achievement earned", "user_id", userID, "name", a.Name)
	}
}

// Streak returns the user's streak, or an empty state before the first attempt.
func (s *Service) Streak(ctx context.Context, userID int64) (*model.StreakState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state, err := s.store.GetStreak(userID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	if state == nil {
		state = NewStreak(userID)
	}
	return state, nil
}

// Attempts lists the user's attempts for a challenge, oldest first.
func (s *Service) Attempts(ctx context.Context, userID int64, challengeID string) ([]model.ChallengeAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch, err := s.store.GetChallenge(challengeID)
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if ch == nil {
		return nil, ErrNotFound
	}
	return s.store.ListAttempts(userID, challengeID)
}

// Leaderboard returns the top users by total points, then current streak.
// limit is clamped to [1, 100] and defaults to 10.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = 10
	case limit > 100:
		limit = 100
	}
	return s.store.Leaderboard(limit)
}
