package model

// Source names the path that produced a score object.
type Source string

const (
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
	SourceEmpty     Source = "empty"
)

// EvaluationRequest is the input to a single answer evaluation.
type EvaluationRequest struct {
	Question       string   `json:"question" validate:"required,max=5000"`
	ExpectedAnswer string   `json:"expectedAnswer,omitempty" validate:"max=10000"`
	UserAnswer     string   `json:"userAnswer" validate:"max=20000"`
	Category       string   `json:"category,omitempty" validate:"max=100"`
	KeyPoints      []string `json:"keyPoints,omitempty" validate:"max=50,dive,max=500"`
}

// KeyPointCoverage records whether an answer mentioned one expected concept.
type KeyPointCoverage struct {
	Point   string `json:"point"`
	Covered bool   `json:"covered"`
}

// EvaluationResult is the multi-dimensional score of one answer.
// All scores are integers in [0, 100].
type EvaluationResult struct {
	OverallScore           int                `json:"overallScore"`
	RelevanceScore         int                `json:"relevanceScore"`
	CompletenessScore      int                `json:"completenessScore"`
	ClarityScore           int                `json:"clarityScore"`
	TechnicalAccuracyScore int                `json:"technicalAccuracyScore"`
	CommunicationScore     int                `json:"communicationScore"`
	ConfidenceScore        int                `json:"confidenceScore"`
	Strengths              []string           `json:"strengths"`
	Improvements           []string           `json:"improvements"`
	Suggestions            []string           `json:"suggestions"`
	DetailedFeedback       string             `json:"detailedFeedback"`
	KeyPointsCovered       []KeyPointCoverage `json:"keyPointsCovered"`
	Source                 Source             `json:"source"`
}

// PerformanceLevel is the coarse band an overall interview score falls into.
type PerformanceLevel string

const (
	PerformanceExcellent        PerformanceLevel = "excellent"
	PerformanceGood             PerformanceLevel = "good"
	PerformanceAverage          PerformanceLevel = "average"
	PerformanceNeedsImprovement PerformanceLevel = "needs-improvement"
	PerformancePoor             PerformanceLevel = "poor"
)

// Valid reports whether p is one of the known levels.
func (p PerformanceLevel) Valid() bool {
	switch p {
	case PerformanceExcellent, PerformanceGood, PerformanceAverage,
		PerformanceNeedsImprovement, PerformancePoor:
		return true
	}
	return false
}

// QuestionResponse is one evaluated answer fed to insight generation.
type QuestionResponse struct {
	Question   string           `json:"question"`
	UserAnswer string           `json:"userAnswer"`
	Category   string           `json:"category,omitempty"`
	Evaluation EvaluationResult `json:"evaluation"`
}

// InsightRequest is the input to interview-level insight generation.
type InsightRequest struct {
	Category       string             `json:"category" validate:"max=100"`
	Difficulty     Difficulty         `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Responses      []QuestionResponse `json:"responses" validate:"max=100"`
	OverallScore   int                `json:"overallScore" validate:"min=0,max=100"`
	CategoryScores map[string]int     `json:"categoryScores"`
}

// InsightResult is the narrative summary of a completed interview.
type InsightResult struct {
	OverallFeedback  string           `json:"overallFeedback"`
	TopStrengths     []string         `json:"topStrengths"`
	AreasToImprove   []string         `json:"areasToImprove"`
	Recommendations  []string         `json:"recommendations"`
	PerformanceLevel PerformanceLevel `json:"performanceLevel"`
	Source           Source           `json:"source"`
}
