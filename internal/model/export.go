package model

import "time"

// InterviewExport is the top-level JSON structure for interview export.
type InterviewExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Provider   string            `json:"provider"`
	Count      int               `json:"count"`
	Results    []CandidateResult `json:"results"`
}

// CandidateResult holds one user's interview data for export.
type CandidateResult struct {
	Username        string           `json:"username"`
	DisplayName     string           `json:"display_name"`
	InterviewNumber int              `json:"interview_number"`
	Category        string           `json:"category"`
	Difficulty      Difficulty       `json:"difficulty"`
	Status          InterviewStatus  `json:"status"`
	StartedAt       time.Time        `json:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	OverallScore    int              `json:"overall_score"`
	CategoryScores  map[string]int   `json:"category_scores,omitempty"`
	PerformanceLvl  PerformanceLevel `json:"performance_level,omitempty"`
	Answers         []AnswerResult   `json:"answers"`
}

// AnswerResult holds per-question data for export.
type AnswerResult struct {
	Question       string   `json:"question"`
	ExpectedAnswer string   `json:"expected_answer,omitempty"`
	KeyPoints      []string `json:"key_points,omitempty"`
	UserAnswer     string   `json:"user_answer"`
	OverallScore   int      `json:"overall_score"`
	Source         Source   `json:"source"`
	Feedback       string   `json:"feedback"`
}
