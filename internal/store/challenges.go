package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/interviewprep/internal/model"
)

const challengeColumns = `id, title, description, category, type, difficulty, expected_answer, points, time_limit, hints, date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (model.Challenge, error) {
	var (
		c     model.Challenge
		hints string
	)
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Type, &c.Difficulty,
		&c.ExpectedAnswer, &c.Points, &c.TimeLimit, &hints, &c.Date)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal([]byte(hints), &c.Hints); err != nil {
		return c, fmt.Errorf("decode hints of challenge %s: %w", c.ID, err)
	}
	return c, nil
}

// InsertChallenge stores a challenge. An empty ID gets a new UUID, and
// empty type, difficulty and points get their defaults.
func (s *Store) InsertChallenge(c *model.Challenge) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Type == "" {
		c.Type = model.ChallengeText
	}
	if c.Difficulty == "" {
		c.Difficulty = model.DifficultyMedium
	}
	if c.Points == 0 {
		c.Points = 100
	}
	if c.Hints == nil {
		c.Hints = []string{}
	}
	hints, err := json.Marshal(c.Hints)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO challenges (`+challengeColumns+`, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.Category, c.Type, c.Difficulty,
		c.ExpectedAnswer, c.Points, c.TimeLimit, string(hints), c.Date, time.Now(),
	)
	return err
}

// GetChallenge returns a challenge by ID, or nil if not found.
func (s *Store) GetChallenge(id string) (*model.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRow(`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ChallengeForDate returns the challenge scheduled for a YYYY-MM-DD date,
// or nil if none is.
func (s *Store) ChallengeForDate(date string) (*model.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRow(
		`SELECT `+challengeColumns+` FROM challenges WHERE date = ? ORDER BY created_at, rowid LIMIT 1`, date,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChallenges returns all challenges, scheduled ones by date first.
func (s *Store) ListChallenges() ([]model.Challenge, error) {
	return s.queryChallenges(`SELECT ` + challengeColumns + ` FROM challenges ORDER BY date DESC, created_at, rowid`)
}

// ListPoolChallenges returns the undated challenges in insertion order.
func (s *Store) ListPoolChallenges() ([]model.Challenge, error) {
	return s.queryChallenges(`SELECT ` + challengeColumns + ` FROM challenges WHERE date = '' ORDER BY created_at, rowid`)
}

func (s *Store) queryChallenges(query string, args ...any) ([]model.Challenge, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	challenges := []model.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

// ChallengeCount returns the number of challenges in the database.
func (s *Store) ChallengeCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM challenges`).Scan(&count)
	return count, err
}

// IsFileImported checks if a file with the given hash has already been imported.
func (s *Store) IsFileImported(hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM imported_files WHERE file_hash = ?`, hash).Scan(&count)
	return count > 0, err
}

// ImportChallenges inserts challenges from one file and records the file
// hash, all in one transaction.
func (s *Store) ImportChallenges(hash, filename string, items []model.ChallengeImport) ([]model.Challenge, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	out := make([]model.Challenge, 0, len(items))
	for _, it := range items {
		c := FromImport(it)
		hints, err := json.Marshal(c.Hints)
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(
			`INSERT INTO challenges (`+challengeColumns+`, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Title, c.Description, c.Category, c.Type, c.Difficulty,
			c.ExpectedAnswer, c.Points, c.TimeLimit, string(hints), c.Date, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert challenge %q: %w", c.Title, err)
		}
		out = append(out, c)
	}

	_, err = tx.Exec(
		`INSERT INTO imported_files (file_hash, filename, challenge_count, imported_at) VALUES (?, ?, ?, ?)`,
		hash, filename, len(out), now,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	slog.Info("imported challenges", "file", filename, "count", len(out))
	return out, nil
}

// FromImport converts an import record into a challenge with a fresh ID and
// defaults filled in.
func FromImport(it model.ChallengeImport) model.Challenge {
	c := model.Challenge{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(it.Title),
		Description:    it.Description,
		Category:       it.Category,
		Type:           it.Type,
		Difficulty:     it.Difficulty,
		ExpectedAnswer: it.ExpectedAnswer,
		Points:         it.Points,
		TimeLimit:      it.TimeLimit,
		Hints:          it.Hints,
		Date:           it.Date,
	}
	if c.Type == "" {
		c.Type = model.ChallengeText
	}
	if c.Difficulty == "" {
		c.Difficulty = model.DifficultyMedium
	}
	if c.Points == 0 {
		c.Points = 100
	}
	if c.Hints == nil {
		c.Hints = []string{}
	}
	return c
}

// RecordAttempt stores an attempt made on the given YYYY-MM-DD day and, when
// upd is not nil, the streak transition it caused in the same transaction.
// Either both are written or neither is.
func (s *Store) RecordAttempt(ctx context.Context, a *model.ChallengeAttempt, day string, upd *model.StreakUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO challenge_attempts
		 (user_id, challenge_id, answer, code, score, is_completed, points_earned, time_spent, hints_used, feedback, attempted_on, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.ChallengeID, a.Answer, a.Code, a.Score, a.IsCompleted, a.PointsEarned,
		a.TimeSpent, a.HintsUsed, a.Feedback, day, a.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if upd != nil {
		if err := saveStreak(ctx, tx, upd.State, upd.Entry, upd.Awarded); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	a.ID = id
	return nil
}

// CountAttemptsOn returns how many attempts a user made on a challenge on a day.
func (s *Store) CountAttemptsOn(userID int64, challengeID, day string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM challenge_attempts WHERE user_id = ? AND challenge_id = ? AND attempted_on = ?`,
		userID, challengeID, day,
	).Scan(&count)
	return count, err
}

// HasCompletedChallenge reports whether any attempt of the user on the
// challenge was complete.
func (s *Store) HasCompletedChallenge(userID int64, challengeID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM challenge_attempts WHERE user_id = ? AND challenge_id = ? AND is_completed = 1`,
		userID, challengeID,
	).Scan(&count)
	return count > 0, err
}

// ListAttempts returns a user's attempts on a challenge, oldest first.
func (s *Store) ListAttempts(userID int64, challengeID string) ([]model.ChallengeAttempt, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, challenge_id, answer, code, score, is_completed, points_earned, time_spent, hints_used, feedback, attempted_at
		 FROM challenge_attempts WHERE user_id = ? AND challenge_id = ? ORDER BY id`,
		userID, challengeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attempts := []model.ChallengeAttempt{}
	for rows.Next() {
		var a model.ChallengeAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.ChallengeID, &a.Answer, &a.Code, &a.Score, &a.IsCompleted,
			&a.PointsEarned, &a.TimeSpent, &a.HintsUsed, &a.Feedback, &a.AttemptedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
