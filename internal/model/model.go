package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent is a candidate practising interviews and challenges.
	UserRoleStudent UserRole = "student"
	// UserRoleAdmin manages users and the challenge pool.
	UserRoleAdmin   UserRole = "admin"
)

// User represents a system user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthSession represents a bearer token session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// Difficulty represents question and challenge difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// InterviewStatus represents the status of a mock interview.
type InterviewStatus string

const (
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
)

// Interview is a mock interview session owned by one user.
type Interview struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Category       string          `json:"category"`
	Difficulty     Difficulty      `json:"difficulty"`
	Status         InterviewStatus `json:"status"`
	OverallScore   int             `json:"overall_score"`
	CategoryScores map[string]int  `json:"category_scores,omitempty"`
	Insights       *InsightResult  `json:"insights,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// InterviewResponse is one answered question within an interview.
type InterviewResponse struct {
	ID             int64            `json:"id"`
	InterviewID    int64            `json:"interview_id"`
	Question       string           `json:"question"`
	ExpectedAnswer string           `json:"expected_answer,omitempty"`
	KeyPoints      []string         `json:"key_points,omitempty"`
	Category       string           `json:"category,omitempty"`
	UserAnswer     string           `json:"user_answer"`
	Evaluation     EvaluationResult `json:"evaluation"`
	CreatedAt      time.Time        `json:"created_at"`
}

// InterviewView combines an interview with its responses for display.
type InterviewView struct {
	Interview Interview           `json:"interview"`
	Responses []InterviewResponse `json:"responses"`
}
