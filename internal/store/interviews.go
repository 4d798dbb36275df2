package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/interviewprep/internal/model"
)

const interviewColumns = `id, user_id, category, difficulty, status, overall_score, category_scores, insights, started_at, completed_at`

func scanInterview(row rowScanner) (model.Interview, error) {
	var (
		iv       model.Interview
		scores   string
		insights sql.NullString
	)
	err := row.Scan(&iv.ID, &iv.UserID, &iv.Category, &iv.Difficulty, &iv.Status, &iv.OverallScore,
		&scores, &insights, &iv.StartedAt, &iv.CompletedAt)
	if err != nil {
		return iv, err
	}
	if err := json.Unmarshal([]byte(scores), &iv.CategoryScores); err != nil {
		return iv, fmt.Errorf("decode category scores of interview %d: %w", iv.ID, err)
	}
	if insights.Valid && insights.String != "" {
		iv.Insights = &model.InsightResult{}
		if err := json.Unmarshal([]byte(insights.String), iv.Insights); err != nil {
			return iv, fmt.Errorf("decode insights of interview %d: %w", iv.ID, err)
		}
	}
	return iv, nil
}

// CreateInterview starts an interview for a user.
func (s *Store) CreateInterview(userID int64, category string, difficulty model.Difficulty) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO interviews (user_id, category, difficulty, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		userID, category, difficulty, model.InterviewInProgress, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetInterview returns an interview by ID, or nil if not found.
func (s *Store) GetInterview(id int64) (*model.Interview, error) {
	iv, err := scanInterview(s.db.QueryRow(`SELECT `+interviewColumns+` FROM interviews WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// ListInterviews returns all interviews, oldest first.
func (s *Store) ListInterviews() ([]model.Interview, error) {
	rows, err := s.db.Query(`SELECT ` + interviewColumns + ` FROM interviews ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var interviews []model.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, iv)
	}
	return interviews, rows.Err()
}

// CompleteInterview stores the final scores and insights and marks the
// interview completed.
func (s *Store) CompleteInterview(id int64, overall int, categoryScores map[string]int, insights model.InsightResult) error {
	scores, err := json.Marshal(categoryScores)
	if err != nil {
		return err
	}
	ins, err := json.Marshal(insights)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE interviews SET status = ?, overall_score = ?, category_scores = ?, insights = ?, completed_at = ? WHERE id = ?`,
		model.InterviewCompleted, overall, string(scores), string(ins), time.Now(), id,
	)
	return err
}

// AddResponse stores one evaluated answer.
func (s *Store) AddResponse(r *model.InterviewResponse) error {
	if r.KeyPoints == nil {
		r.KeyPoints = []string{}
	}
	points, err := json.Marshal(r.KeyPoints)
	if err != nil {
		return err
	}
	eval, err := json.Marshal(r.Evaluation)
	if err != nil {
		return err
	}
	r.CreatedAt = time.Now()
	res, err := s.db.Exec(
		`INSERT INTO interview_responses (interview_id, question, expected_answer, key_points, category, user_answer, evaluation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.InterviewID, r.Question, r.ExpectedAnswer, string(points), r.Category, r.UserAnswer, string(eval), r.CreatedAt,
	)
	if err != nil {
		return err
	}
	r.ID, err = res.LastInsertId()
	return err
}

// GetResponses returns the responses of an interview in answer order.
func (s *Store) GetResponses(interviewID int64) ([]model.InterviewResponse, error) {
	rows, err := s.db.Query(
		`SELECT id, interview_id, question, expected_answer, key_points, category, user_answer, evaluation, created_at
		 FROM interview_responses WHERE interview_id = ? ORDER BY id`, interviewID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	responses := []model.InterviewResponse{}
	for rows.Next() {
		var (
			r            model.InterviewResponse
			points, eval string
		)
		if err := rows.Scan(&r.ID, &r.InterviewID, &r.Question, &r.ExpectedAnswer, &points, &r.Category,
			&r.UserAnswer, &eval, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(points), &r.KeyPoints); err != nil {
			return nil, fmt.Errorf("decode key points of response %d: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(eval), &r.Evaluation); err != nil {
			return nil, fmt.Errorf("decode evaluation of response %d: %w", r.ID, err)
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

// GetInterviewView returns an interview with its responses, or nil if the
// interview does not exist.
func (s *Store) GetInterviewView(id int64) (*model.InterviewView, error) {
	iv, err := s.GetInterview(id)
	if err != nil || iv == nil {
		return nil, err
	}
	responses, err := s.GetResponses(id)
	if err != nil {
		return nil, err
	}
	return &model.InterviewView{Interview: *iv, Responses: responses}, nil
}
