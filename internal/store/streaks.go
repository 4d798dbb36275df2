package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pavelanni/interviewprep/internal/model"
)

// EnsureStreak creates an empty streak row for the user if none exists.
func (s *Store) EnsureStreak(userID int64) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO streaks (user_id) VALUES (?)`, userID)
	return err
}

// GetStreak returns the user's streak with history and achievements, or nil
// if the user has no streak row yet.
func (s *Store) GetStreak(userID int64) (*model.StreakState, error) {
	st := model.StreakState{
		UserID:        userID,
		StreakHistory: []model.StreakEntry{},
		Achievements:  []model.Achievement{},
	}
	var last sql.NullString
	err := s.db.QueryRow(
		`SELECT current_streak, longest_streak, total_points, total_completed, last_challenge_date
		 FROM streaks WHERE user_id = ?`, userID,
	).Scan(&st.CurrentStreak, &st.LongestStreak, &st.TotalPoints, &st.TotalChallengesCompleted, &last)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if last.Valid && last.String != "" {
		d, err := time.ParseInLocation(dateLayout, last.String, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse last challenge date %q: %w", last.String, err)
		}
		st.LastChallengeDate = &d
	}

	rows, err := s.db.Query(
		`SELECT date, challenge_id, points_earned FROM streak_history WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e   model.StreakEntry
			day string
		)
		if err := rows.Scan(&day, &e.ChallengeID, &e.PointsEarned); err != nil {
			return nil, err
		}
		if e.Date, err = time.ParseInLocation(dateLayout, day, time.Local); err != nil {
			return nil, fmt.Errorf("parse history date %q: %w", day, err)
		}
		st.StreakHistory = append(st.StreakHistory, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	arows, err := s.db.Query(
		`SELECT name, description, icon, earned_at FROM achievements WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a model.Achievement
		if err := arows.Scan(&a.Name, &a.Description, &a.Icon, &a.EarnedAt); err != nil {
			return nil, err
		}
		st.Achievements = append(st.Achievements, a)
	}
	return &st, arows.Err()
}

// SaveStreak writes one streak transition atomically: the counters, the new
// history entry and any awarded achievements.
func (s *Store) SaveStreak(ctx context.Context, st *model.StreakState, entry model.StreakEntry, awarded []model.Achievement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveStreak(ctx, tx, st, entry, awarded); err != nil {
		return err
	}
	return tx.Commit()
}

func saveStreak(ctx context.Context, tx *sql.Tx, st *model.StreakState, entry model.StreakEntry, awarded []model.Achievement) error {
	var last any
	if st.LastChallengeDate != nil {
		last = st.LastChallengeDate.Format(dateLayout)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO streaks (user_id, current_streak, longest_streak, total_points, total_completed, last_challenge_date)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   current_streak = excluded.current_streak,
		   longest_streak = excluded.longest_streak,
		   total_points = excluded.total_points,
		   total_completed = excluded.total_completed,
		   last_challenge_date = excluded.last_challenge_date`,
		st.UserID, st.CurrentStreak, st.LongestStreak, st.TotalPoints, st.TotalChallengesCompleted, last,
	)
	if err != nil {
		return fmt.Errorf("upsert streak: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO streak_history (user_id, date, challenge_id, points_earned) VALUES (?, ?, ?, ?)`,
		st.UserID, entry.Date.Format(dateLayout), entry.ChallengeID, entry.PointsEarned,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	for _, a := range awarded {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO achievements (user_id, name, description, icon, earned_at) VALUES (?, ?, ?, ?, ?)`,
			st.UserID, a.Name, a.Description, a.Icon, a.EarnedAt,
		)
		if err != nil {
			return fmt.Errorf("insert achievement %q: %w", a.Name, err)
		}
	}
	return nil
}

// Leaderboard returns active users with a streak row, ordered by total
// points, then current streak, then user ID.
func (s *Store) Leaderboard(limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT u.id, CASE WHEN u.display_name = '' THEN u.username ELSE u.display_name END,
		        st.total_points, st.current_streak, st.longest_streak
		 FROM streaks st JOIN users u ON u.id = st.user_id
		 WHERE u.active = 1
		 ORDER BY st.total_points DESC, st.current_streak DESC, u.id
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.TotalPoints, &e.CurrentStreak, &e.LongestStreak); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
