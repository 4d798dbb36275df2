package evaluation

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pavelanni/interviewprep/internal/llm"
	"github.com/pavelanni/interviewprep/internal/llm/prompts"
	"github.com/pavelanni/interviewprep/internal/metrics"
	"github.com/pavelanni/interviewprep/internal/model"
)

// NoAnswerFeedback is the detailed feedback of an empty answer.
const NoAnswerFeedback = "No answer provided."

// replyFields wraps a parsed provider reply with default-filling accessors.
type replyFields struct {
	gjson.Result
}

// score reads a numeric field, treating absent or non-numeric values as 0.
func (r replyFields) score(path string) int {
	return clamp(round(r.Get(path).Float()), 0, 100)
}

func (r replyFields) strings(path string) []string {
	return llm.Strings(r.Result, path)
}

// Evaluate scores one answer. It never fails: an empty answer yields the
// fixed zero result, and any provider problem falls back to heuristics.
func (e *Engine) Evaluate(ctx context.Context, req model.EvaluationRequest) model.EvaluationResult {
	var res model.EvaluationResult
	if strings.TrimSpace(req.UserAnswer) == "" {
		res = EmptyAnswerResult(req.KeyPoints)
	} else {
		var err error
		res, err = e.evaluateWithAI(ctx, req)
		if err != nil {
			e.logFallback("evaluate", err)
			res = e.Heuristic(req)
		}
	}

	metrics.EvaluationsTotal.WithLabelValues(string(res.Source)).Inc()
	metrics.EvaluationScore.Observe(float64(res.OverallScore))
	return res
}

func (e *Engine) evaluateWithAI(ctx context.Context, req model.EvaluationRequest) (model.EvaluationResult, error) {
	reply, err := e.generate(ctx, func() (string, error) {
		return prompts.BuildEvalPrompt(e.cfg.Variant, req)
	})
	if err != nil {
		return model.EvaluationResult{}, err
	}

	res := model.EvaluationResult{
		OverallScore:           reply.score("overallScore"),
		RelevanceScore:         reply.score("relevanceScore"),
		CompletenessScore:      reply.score("completenessScore"),
		ClarityScore:           reply.score("clarityScore"),
		TechnicalAccuracyScore: reply.score("technicalAccuracyScore"),
		CommunicationScore:     reply.score("communicationScore"),
		ConfidenceScore:        reply.score("confidenceScore"),
		Strengths:              reply.strings("strengths"),
		Improvements:           reply.strings("improvements"),
		Suggestions:            reply.strings("suggestions"),
		DetailedFeedback:       strings.TrimSpace(reply.Get("detailedFeedback").String()),
		Source:                 model.SourceAI,
	}

	covered := reply.Get("keyPointsCovered")
	if covered.IsArray() {
		res.KeyPointsCovered = []model.KeyPointCoverage{}
		for _, item := range covered.Array() {
			point := strings.TrimSpace(item.Get("point").String())
			if point == "" {
				continue
			}
			res.KeyPointsCovered = append(res.KeyPointsCovered, model.KeyPointCoverage{
				Point:   point,
				Covered: item.Get("covered").Bool(),
			})
		}
	} else {
		res.KeyPointsCovered = uncovered(req.KeyPoints)
	}
	return res, nil
}

// EmptyAnswerResult is the fixed result for a blank answer.
func EmptyAnswerResult(keyPoints []string) model.EvaluationResult {
	return model.EvaluationResult{
		Strengths: []string{},
		Improvements: []string{
			"Provide an answer to the question",
			"Attempt to address the key concepts even when unsure",
		},
		Suggestions: []string{
			"Think aloud: outline what you know before giving a final answer",
		},
		DetailedFeedback: NoAnswerFeedback,
		KeyPointsCovered: uncovered(keyPoints),
		Source:           model.SourceEmpty,
	}
}

// uncovered marks every non-blank key point as not covered.
func uncovered(points []string) []model.KeyPointCoverage {
	out := []model.KeyPointCoverage{}
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, model.KeyPointCoverage{Point: p})
		}
	}
	return out
}
