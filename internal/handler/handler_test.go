package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/interviewprep/internal/challenge"
	"github.com/pavelanni/interviewprep/internal/evaluation"
	appI18n "github.com/pavelanni/interviewprep/internal/i18n"
	"github.com/pavelanni/interviewprep/internal/model"
	"github.com/pavelanni/interviewprep/internal/store"
)

const testPassword = "correct-horse"

type testServer struct {
	t      *testing.T
	store  *store.Store
	router http.Handler
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	require.NoError(t, appI18n.Init("en"))

	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := New(st, evaluation.New(nil, evaluation.DefaultConfig()), challenge.NewService(st, challenge.DefaultConfig()), cfg)
	r := chi.NewRouter()
	r.Use(appI18n.Middleware("en"))
	h.Routes(r)
	return &testServer{t: t, store: st, router: r}
}

func (s *testServer) addUser(username string, role model.UserRole) int64 {
	s.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(s.t, err)
	id, err := s.store.CreateUser(model.User{
		Username:     username,
		DisplayName:  "User " + username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	require.NoError(s.t, err)
	return id
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	rec, resp := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": testPassword,
	})
	require.Equal(s.t, http.StatusOK, rec.Code, resp.Message)
	var out loginResponse
	require.NoError(s.t, json.Unmarshal(resp.Data, &out))
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

func (s *testServer) send(req *http.Request, token string) (*httptest.ResponseRecorder, apiResponse) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req, token)
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, Config{})

	rec, resp := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeData[map[string]string](t, resp)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "none", health["provider"])

	rec, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginLogout(t *testing.T) {
	s := newTestServer(t, Config{})
	s.addUser("alice", model.UserRoleStudent)

	rec, resp := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid username or password", resp.Message)

	token := s.login("alice")
	rec, _ = s.do(http.MethodGet, "/api/challenges/streak", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = s.do(http.MethodGet, "/api/challenges/streak", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", resp.Message)
}

func TestAuthErrorsAreLocalized(t *testing.T) {
	s := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/challenges/streak", nil)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")
	rec, resp := s.send(req, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Требуется авторизация", resp.Message)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t, Config{})
	s.addUser("alice", model.UserRoleStudent)
	s.addUser("root", model.UserRoleAdmin)

	rec, _ := s.do(http.MethodGet, "/api/admin/users", s.login("alice"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := s.do(http.MethodGet, "/api/admin/users", s.login("root"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeData[[]model.User](t, resp)
	assert.Len(t, users, 2)
}

func TestEvaluateEndpoint(t *testing.T) {
	s := newTestServer(t, Config{})
	s.addUser("alice", model.UserRoleStudent)
	token := s.login("alice")

	rec, resp := s.do(http.MethodPost, "/api/evaluate", token, model.EvaluationRequest{
		Question:       "What is a goroutine?",
		ExpectedAnswer: "A goroutine is a lightweight thread managed by the Go runtime.",
		UserAnswer:     "A goroutine is a lightweight thread that the Go runtime schedules.",
		KeyPoints:      []string{"lightweight thread", "runtime"},
	})
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)
	res := decodeData[model.EvaluationResult](t, resp)
	assert.Equal(t, model.SourceHeuristic, res.Source)
	assert.Len(t, res.KeyPointsCovered, 2)
	assert.Greater(t, res.OverallScore, 0)

	rec, resp = s.do(http.MethodPost, "/api/evaluate", token, model.EvaluationRequest{
		Question: "What is a channel?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeData[model.EvaluationResult](t, resp)
	assert.Equal(t, model.SourceEmpty, res.Source)
	assert.Equal(t, 0, res.OverallScore)
	assert.Equal(t, evaluation.NoAnswerFeedback, res.DetailedFeedback)

	rec, resp = s.do(http.MethodPost, "/api/evaluate", token, map[string]string{"userAnswer": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Message, "question: required")

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", bytes.NewBufferString("{not json"))
	rec, resp = s.send(req, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", resp.Message)
}

func TestInsightsEndpoint(t *testing.T) {
	s := newTestServer(t, Config{})
	s.addUser("alice", model.UserRoleStudent)
	token := s.login("alice")

	rec, resp := s.do(http.MethodPost, "/api/insights", token, model.InsightRequest{
		Category:       "technical",
		OverallScore:   88,
		CategoryScores: map[string]int{"technical": 90, "communication": 40},
	})
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)
	res := decodeData[model.InsightResult](t, resp)
	assert.Equal(t, model.PerformanceExcellent, res.PerformanceLevel)
	assert.Equal(t, model.SourceHeuristic, res.Source)
	assert.NotEmpty(t, res.Recommendations)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Config{RateLimit: 2})
	s.addUser("alice", model.UserRoleStudent)
	token := s.login("alice")

	body := model.EvaluationRequest{Question: "q", UserAnswer: "a"}
	for i := 0; i < 2; i++ {
		rec, _ := s.do(http.MethodPost, "/api/evaluate", token, body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, resp := s.do(http.MethodPost, "/api/evaluate", token, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests, please slow down", resp.Message)

	// Routes outside the limited group are unaffected.
	rec, _ = s.do(http.MethodGet, "/api/challenges/streak", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInterviewFlow(t *testing.T) {
	s := newTestServer(t, Config{})
	s.addUser("alice", model.UserRoleStudent)
	s.addUser("bob", model.UserRoleStudent)
	alice := s.login("alice")
	bob := s.login("bob")

	rec, resp := s.do(http.MethodPost, "/api/interviews", alice, map[string]string{
		"category": "technical", "difficulty": "hard",
	})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Message)
	iv := decodeData[model.Interview](t, resp)
	assert.Equal(t, model.InterviewInProgress, iv.Status)
	assert.Equal(t, model.DifficultyHard, iv.Difficulty)
	base := fmt.Sprintf("/api/interviews/%d", iv.ID)

	rec, _ = s.do(http.MethodPost, base+"/complete", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	answers := []model.EvaluationRequest{
		{Question: "Explain caching.", ExpectedAnswer: "Caching stores results to reduce latency.", UserAnswer: "A cache keeps results so repeated reads have lower latency."},
		{Question: "Explain indexing.", UserAnswer: ""},
	}
	for _, a := range answers {
		rec, resp = s.do(http.MethodPost, base+"/responses", alice, a)
		require.Equal(t, http.StatusCreated, rec.Code, resp.Message)
		r := decodeData[model.InterviewResponse](t, resp)
		assert.Equal(t, "technical", r.Category)
		assert.NotZero(t, r.ID)
	}

	rec, _ = s.do(http.MethodGet, base, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = s.do(http.MethodPost, base+"/responses", bob, answers[0])
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = s.do(http.MethodPost, base+"/complete", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)
	view := decodeData[model.InterviewView](t, resp)
	assert.Equal(t, model.InterviewCompleted, view.Interview.Status)
	require.NotNil(t, view.Interview.Insights)
	assert.Len(t, view.Responses, 2)
	overall, _ := evaluation.Aggregate([]model.EvaluationResult{view.Responses[0].Evaluation, view.Responses[1].Evaluation})
	assert.Equal(t, overall, view.Interview.OverallScore)

	rec, _ = s.do(http.MethodPost, base+"/complete", alice, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = s.do(http.MethodPost, base+"/responses", alice, answers[0])
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/interviews/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = s.do(http.MethodGet, "/api/interviews/999", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChallengeFlow(t *testing.T) {
	s := newTestServer(t, Config{})
	s.addUser("root", model.UserRoleAdmin)
	s.addUser("alice", model.UserRoleStudent)
	admin := s.login("root")
	alice := s.login("alice")

	rec, _ := s.do(http.MethodGet, "/api/challenges/today", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp := s.do(http.MethodPost, "/api/admin/challenges", admin, model.ChallengeImport{
		Title:          "Search structure",
		ExpectedAnswer: "binary search tree",
		Points:         100,
		Date:           time.Now().Format(challenge.DateLayout),
	})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Message)
	created := decodeData[model.Challenge](t, resp)

	rec, resp = s.do(http.MethodGet, "/api/challenges/today", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(resp.Data), "binary search tree")
	today := decodeData[model.Challenge](t, resp)
	assert.Equal(t, created.ID, today.ID)

	submit := "/api/challenges/" + created.ID + "/submit"
	for i := 0; i < 3; i++ {
		rec, resp = s.do(http.MethodPost, submit, alice, model.SubmissionRequest{Answer: "a heap"})
		require.Equal(t, http.StatusOK, rec.Code, resp.Message)
	}
	rec, resp = s.do(http.MethodPost, submit, alice, model.SubmissionRequest{Answer: "binary search tree"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Message, "maximum of 3 attempts")

	rec, resp = s.do(http.MethodGet, "/api/challenges/"+created.ID+"/attempts", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]model.ChallengeAttempt](t, resp), 3)

	rec, resp = s.do(http.MethodPost, "/api/admin/challenges", admin, model.ChallengeImport{
		Title: "Pool item", ExpectedAnswer: "hash map",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	pool := decodeData[model.Challenge](t, resp)

	rec, resp = s.do(http.MethodPost, "/api/challenges/"+pool.ID+"/submit", alice, model.SubmissionRequest{Answer: "Hash Map"})
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)
	res := decodeData[model.SubmissionResult](t, resp)
	assert.True(t, res.IsCompleted)
	assert.Equal(t, 100, res.Score)
	require.NotNil(t, res.Streak)
	assert.Equal(t, 1, res.Streak.CurrentStreak)

	var wire struct {
		IsCompleted  bool `json:"isCompleted"`
		PointsEarned int  `json:"pointsEarned"`
		Streak       struct {
			CurrentStreak     int     `json:"currentStreak"`
			TotalPoints       int     `json:"totalPoints"`
			LastChallengeDate *string `json:"lastChallengeDate"`
		} `json:"streak"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &wire))
	assert.True(t, wire.IsCompleted)
	assert.Equal(t, 100, wire.PointsEarned)
	assert.Equal(t, 1, wire.Streak.CurrentStreak)
	assert.Equal(t, 100, wire.Streak.TotalPoints)
	assert.NotNil(t, wire.Streak.LastChallengeDate)
	assert.NotContains(t, string(resp.Data), "current_streak")

	rec, resp = s.do(http.MethodPost, "/api/challenges/"+pool.ID+"/submit", alice, model.SubmissionRequest{Answer: "hash map"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "You have already completed this challenge", resp.Message)

	rec, _ = s.do(http.MethodPost, "/api/challenges/missing/submit", alice, model.SubmissionRequest{Answer: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(http.MethodPost, submit, alice, model.SubmissionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = s.do(http.MethodGet, "/api/challenges/streak", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, decodeData[model.StreakState](t, resp).TotalPoints)

	rec, resp = s.do(http.MethodGet, "/api/challenges/leaderboard?limit=5", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decodeData[[]model.LeaderboardEntry](t, resp)
	require.Len(t, board, 1)
	assert.Equal(t, "User alice", board[0].DisplayName)
}

func uploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/challenges/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportChallenges(t *testing.T) {
	s := newTestServer(t, Config{})
	s.addUser("root", model.UserRoleAdmin)
	admin := s.login("root")

	file := []byte(`[
		{"title": "Stack", "expectedAnswer": "LIFO"},
		{"title": "Queue", "expectedAnswer": "FIFO", "difficulty": "easy"}
	]`)

	rec, resp := s.send(uploadRequest(t, "week1.json", file), admin)
	require.Equal(t, http.StatusCreated, rec.Code, resp.Message)
	out := decodeData[importResponse](t, resp)
	assert.Equal(t, "2 challenges imported.", out.Message)
	assert.Len(t, out.Challenges, 2)

	rec, resp = s.send(uploadRequest(t, "week1-copy.json", file), admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This file has already been imported", resp.Message)

	rec, resp = s.send(uploadRequest(t, "broken.json", []byte(`[{"title": "no answer"}]`)), admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Message, "Invalid challenge file")

	count, err := s.store.ChallengeCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec, resp = s.do(http.MethodGet, "/api/admin/challenges", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeData[[]model.Challenge](t, resp)
	require.Len(t, listed, 2)
	assert.Contains(t, string(resp.Data), `"expectedAnswer":"LIFO"`)

	s.addUser("alice", model.UserRoleStudent)
	rec, _ = s.do(http.MethodGet, "/api/admin/challenges", s.login("alice"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserAdministration(t *testing.T) {
	s := newTestServer(t, Config{})
	s.addUser("root", model.UserRoleAdmin)
	admin := s.login("root")

	newUser := map[string]string{
		"username": "carol", "display_name": "Carol", "password": testPassword,
	}
	rec, resp := s.do(http.MethodPost, "/api/admin/users", admin, newUser)
	require.Equal(t, http.StatusCreated, rec.Code, resp.Message)
	u := decodeData[model.User](t, resp)
	assert.Equal(t, model.UserRoleStudent, u.Role)
	assert.NotContains(t, string(resp.Data), "password")

	rec, _ = s.do(http.MethodPost, "/api/admin/users", admin, newUser)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/admin/users", admin, map[string]string{
		"username": "dave", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.login("carol")

	rec, resp = s.do(http.MethodPost, fmt.Sprintf("/api/admin/users/%d/toggle", u.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeData[model.User](t, resp).Active)

	rec, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "carol", "password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/admin/users/999/toggle", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
