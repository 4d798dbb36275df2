package model

import "time"

// ChallengeType distinguishes free-text from code challenges.
type ChallengeType string

const (
	ChallengeText ChallengeType = "text"
	ChallengeCode ChallengeType = "code"
)

// Challenge is a daily practice task with a reference answer.
type Challenge struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Category       string        `json:"category"`
	Type           ChallengeType `json:"type"`
	Difficulty     Difficulty    `json:"difficulty"`
	ExpectedAnswer string        `json:"expectedAnswer,omitempty"`
	Points         int           `json:"points"`
	TimeLimit      int           `json:"timeLimit"` // seconds, 0 means unlimited
	Hints          []string      `json:"hints,omitempty"`
	Date           string        `json:"date,omitempty"` // YYYY-MM-DD, empty for pool challenges
}

// ChallengeImport is used for loading challenges from JSON files.
type ChallengeImport struct {
	Title          string        `json:"title" validate:"required"`
	Description    string        `json:"description"`
	Category       string        `json:"category"`
	Type           ChallengeType `json:"type" validate:"omitempty,oneof=text code"`
	Difficulty     Difficulty    `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	ExpectedAnswer string        `json:"expectedAnswer" validate:"required"`
	Points         int           `json:"points" validate:"min=0"`
	TimeLimit      int           `json:"timeLimit" validate:"min=0"`
	Hints          []string      `json:"hints"`
	Date           string        `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ChallengeAttempt is one submission by a user for a challenge.
type ChallengeAttempt struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	ChallengeID  string    `json:"challengeId"`
	Answer       string    `json:"answer,omitempty"`
	Code         string    `json:"code,omitempty"`
	Score        int       `json:"score"`
	IsCompleted  bool      `json:"isCompleted"`
	PointsEarned int       `json:"pointsEarned"`
	TimeSpent    int       `json:"timeSpent"`
	HintsUsed    int       `json:"hintsUsed"`
	Feedback     string    `json:"feedback"`
	AttemptedAt  time.Time `json:"attemptedAt"`
}

// SubmissionRequest is a user's answer to a challenge.
type SubmissionRequest struct {
	Answer    string `json:"answer" validate:"required_without=Code,max=20000"`
	Code      string `json:"code" validate:"required_without=Answer,max=50000"`
	TimeSpent int    `json:"timeSpent" validate:"min=0"`
	HintsUsed int    `json:"hintsUsed" validate:"min=0,max=20"`
}

// StreakEntry records one streak-advancing completion.
type StreakEntry struct {
	Date         time.Time `json:"date"`
	ChallengeID  string    `json:"challengeId"`
	PointsEarned int       `json:"pointsEarned"`
}

// Achievement is a milestone badge earned once per user.
type Achievement struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
	Icon        string    `json:"icon"`
}

// StreakState is a user's daily-challenge progress.
type StreakState struct {
	UserID                   int64         `json:"userId"`
	CurrentStreak            int           `json:"currentStreak"`
	LongestStreak            int           `json:"longestStreak"`
	TotalPoints              int           `json:"totalPoints"`
	TotalChallengesCompleted int           `json:"totalChallengesCompleted"`
	LastChallengeDate        *time.Time    `json:"lastChallengeDate"`
	StreakHistory            []StreakEntry `json:"streakHistory"`
	Achievements             []Achievement `json:"achievements"`
}

// HasAchievement reports whether an achievement with the exact name exists.
func (s *StreakState) HasAchievement(name string) bool {
	for _, a := range s.Achievements {
		if a.Name == name {
			return true
		}
	}
	return false
}

// StreakUpdate is one streak transition to persist: the new counters, the
// history entry that produced them and any achievements awarded with it.
type StreakUpdate struct {
	State   *StreakState
	Entry   StreakEntry
	Awarded []Achievement
}

// SubmissionResult is returned after a challenge submission.
type SubmissionResult struct {
	Attempt         ChallengeAttempt `json:"attempt"`
	Score           int              `json:"score"`
	IsCompleted     bool             `json:"isCompleted"`
	PointsEarned    int              `json:"pointsEarned"`
	Feedback        string           `json:"feedback"`
	AttemptsLeft    int              `json:"attemptsLeft"`
	Streak          *StreakState     `json:"streak,omitempty"`
	NewAchievements []Achievement    `json:"newAchievements,omitempty"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	UserID        int64  `json:"userId"`
	DisplayName   string `json:"displayName"`
	TotalPoints   int    `json:"totalPoints"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}
