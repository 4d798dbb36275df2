package store

import (
	"fmt"

	"github.com/pavelanni/interviewprep/internal/model"
)

// ExportAllInterviews builds export-ready candidate results from all interviews.
func (s *Store) ExportAllInterviews() ([]model.CandidateResult, error) {
	interviews, err := s.ListInterviews()
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}

	// Track interview count per user for interview_number.
	userInterviewCount := make(map[int64]int)

	results := []model.CandidateResult{}
	for _, iv := range interviews {
		userInterviewCount[iv.UserID]++

		responses, err := s.GetResponses(iv.ID)
		if err != nil {
			return nil, fmt.Errorf("get responses of interview %d: %w", iv.ID, err)
		}

		user, err := s.GetUserByID(iv.UserID)
		if err != nil {
			return nil, fmt.Errorf("get user %d: %w", iv.UserID, err)
		}

		var username, displayName string
		if user != nil {
			username = user.Username
			displayName = user.DisplayName
		}

		answers := make([]model.AnswerResult, 0, len(responses))
		for _, r := range responses {
			answers = append(answers, model.AnswerResult{
				Question:       r.Question,
				ExpectedAnswer: r.ExpectedAnswer,
				KeyPoints:      r.KeyPoints,
				UserAnswer:     r.UserAnswer,
				OverallScore:   r.Evaluation.OverallScore,
				Source:         r.Evaluation.Source,
				Feedback:       r.Evaluation.DetailedFeedback,
			})
		}

		cr := model.CandidateResult{
			Username:        username,
			DisplayName:     displayName,
			InterviewNumber: userInterviewCount[iv.UserID],
			Category:        iv.Category,
			Difficulty:      iv.Difficulty,
			Status:          iv.Status,
			StartedAt:       iv.StartedAt,
			CompletedAt:     iv.CompletedAt,
			OverallScore:    iv.OverallScore,
			CategoryScores:  iv.CategoryScores,
			Answers:         answers,
		}
		if iv.Insights != nil {
			cr.PerformanceLvl = iv.Insights.PerformanceLevel
		}
		results = append(results, cr)
	}

	return results, nil
}
