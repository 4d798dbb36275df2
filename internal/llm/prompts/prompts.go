package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/interviewprep/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	candidateAnswerRegex    = regexp.MustCompile(`(?i)</?\s*candidate-answer\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

const maxAnswerRunes = 10000

// PromptVariant represents a grading strictness variant.
type PromptVariant string

const (
	// PromptStrict grades senior-level interviews.
	PromptStrict PromptVariant = "strict"
	// PromptStandard is the default grading variant.
	PromptStandard PromptVariant = "standard"
	// PromptLenient grades practice sessions for beginners.
	PromptLenient PromptVariant = "lenient"
)

var guidance = map[PromptVariant]string{
	PromptStrict:   "Grade strictly, as for a senior role: reward precision and depth, penalize vague or partially correct statements.",
	PromptStandard: "Grade fairly: reward correct, relevant and well-structured answers, and note what is missing.",
	PromptLenient:  "Grade encouragingly, as for a beginner: give credit for the right direction even when details are missing.",
}

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	_, ok := guidance[PromptVariant(v)]
	return ok
}

var (
	loadOnce      sync.Once
	loadErr       error
	evalTmpl      *template.Template
	insightsTmpl  *template.Template
	templateFuncs = template.FuncMap{"add": func(a, b int) int { return a + b }}
)

// Load parses the embedded prompt templates. It is safe to call repeatedly.
func Load() error {
	loadOnce.Do(func() {
		evalTmpl, loadErr = parse("templates/evaluate.tmpl")
		if loadErr != nil {
			return
		}
		insightsTmpl, loadErr = parse("templates/insights.tmpl")
	})
	return loadErr
}

func parse(name string) (*template.Template, error) {
	content, err := templateFS.ReadFile(name)
	if err != nil {
		return nil, errors.New("failed to read prompt file " + name + ": " + err.Error())
	}
	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(string(content))
	if err != nil {
		return nil, errors.New("failed to parse prompt template " + name + ": " + err.Error())
	}
	return tmpl, nil
}

// EvalData holds template data for evaluation prompts.
type EvalData struct {
	Question       string
	ExpectedAnswer string
	KeyPoints      []string
	Category       string
	Answer         string
	Guidance       string
}

// ScoreLine is one named score in the insights prompt.
type ScoreLine struct {
	Name  string
	Score int
}

// ResponseLine summarizes one answered question in the insights prompt.
type ResponseLine struct {
	Question string
	Score    int
	Feedback string
}

// InsightsData holds template data for insight prompts.
type InsightsData struct {
	Category       string
	Difficulty     string
	OverallScore   int
	CategoryScores []ScoreLine
	Responses      []ResponseLine
	Guidance       string
}

// BuildEvalPrompt builds an answer-evaluation prompt.
func BuildEvalPrompt(variant PromptVariant, req model.EvaluationRequest) (string, error) {
	if err := Load(); err != nil {
		return "", fmt.Errorf("templates load failed: %w", err)
	}
	g, ok := guidance[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	var points []string
	for _, p := range req.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}

	data := EvalData{
		Question:       strings.TrimSpace(req.Question),
		ExpectedAnswer: strings.TrimSpace(req.ExpectedAnswer),
		KeyPoints:      points,
		Category:       strings.TrimSpace(req.Category),
		Answer:         sanitizeAnswer(req.UserAnswer),
		Guidance:       g,
	}

	var buf bytes.Buffer
	if err := evalTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildInsightsPrompt builds an interview-summary prompt.
func BuildInsightsPrompt(variant PromptVariant, req model.InsightRequest) (string, error) {
	if err := Load(); err != nil {
		return "", fmt.Errorf("templates load failed: %w", err)
	}
	g, ok := guidance[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	names := make([]string, 0, len(req.CategoryScores))
	for name := range req.CategoryScores {
		names = append(names, name)
	}
	sort.Strings(names)
	scores := make([]ScoreLine, 0, len(names))
	for _, name := range names {
		scores = append(scores, ScoreLine{Name: name, Score: req.CategoryScores[name]})
	}

	responses := make([]ResponseLine, 0, len(req.Responses))
	for _, r := range req.Responses {
		responses = append(responses, ResponseLine{
			Question: strings.TrimSpace(r.Question),
			Score:    r.Evaluation.OverallScore,
			Feedback: truncate(r.Evaluation.DetailedFeedback, 300),
		})
	}

	data := InsightsData{
		Category:       req.Category,
		Difficulty:     string(req.Difficulty),
		OverallScore:   req.OverallScore,
		CategoryScores: scores,
		Responses:      responses,
		Guidance:       g,
	}

	var buf bytes.Buffer
	if err := insightsTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeAnswer(answer string) string {
	answer = candidateAnswerRegex.ReplaceAllString(answer, "")
	answer = systemInstructionsRegex.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return "[No answer provided]"
	}
	if utf8.RuneCountInString(answer) > maxAnswerRunes {
		answer = truncate(answer, maxAnswerRunes) + "\n\n[Answer truncated due to length]"
	}
	return answer
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
