package evaluation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pavelanni/interviewprep/internal/llm/prompts"
	"github.com/pavelanni/interviewprep/internal/metrics"
	"github.com/pavelanni/interviewprep/internal/model"
)

// PerformanceLevelFor maps an overall score to its band. Each band includes
// its lower bound.
func PerformanceLevelFor(score int) model.PerformanceLevel {
	switch {
	case score >= 85:
		return model.PerformanceExcellent
	case score >= 70:
		return model.PerformanceGood
	case score >= 50:
		return model.PerformanceAverage
	case score >= 30:
		return model.PerformanceNeedsImprovement
	default:
		return model.PerformancePoor
	}
}

// GenerateInsights summarizes an interview. Like Evaluate it always returns a
// usable result.
func (e *Engine) GenerateInsights(ctx context.Context, req model.InsightRequest) model.InsightResult {
	res, err := e.insightsWithAI(ctx, req)
	if err != nil {
		e.logFallback("insights", err)
		res = FallbackInsights(req)
	}
	metrics.InsightsTotal.WithLabelValues(string(res.Source)).Inc()
	return res
}

func (e *Engine) insightsWithAI(ctx context.Context, req model.InsightRequest) (model.InsightResult, error) {
	reply, err := e.generate(ctx, func() (string, error) {
		return prompts.BuildInsightsPrompt(e.cfg.Variant, req)
	})
	if err != nil {
		return model.InsightResult{}, err
	}

	level := model.PerformanceLevel(strings.ToLower(strings.TrimSpace(reply.Get("performanceLevel").String())))
	if !level.Valid() {
		level = PerformanceLevelFor(req.OverallScore)
	}
	return model.InsightResult{
		OverallFeedback:  strings.TrimSpace(reply.Get("overallFeedback").String()),
		TopStrengths:     reply.strings("topStrengths"),
		AreasToImprove:   reply.strings("areasToImprove"),
		Recommendations:  reply.strings("recommendations"),
		PerformanceLevel: level,
		Source:           model.SourceAI,
	}, nil
}

var levelFeedback = map[model.PerformanceLevel]string{
	model.PerformanceExcellent:        "Outstanding performance. Your answers showed depth, precision and clear structure.",
	model.PerformanceGood:             "Good performance. Your answers were solid, with a few areas that could be sharpened.",
	model.PerformanceAverage:          "Average performance. You have a working grasp of the material, but several answers lacked depth.",
	model.PerformanceNeedsImprovement: "Your performance needs improvement. Focus on the fundamentals and practice structured answers.",
	model.PerformancePoor:             "This interview was a difficult one. Revisit the core concepts and practice regularly.",
}

var (
	strengthsAbove = []string{
		"Solid understanding of core concepts",
		"Ability to communicate ideas clearly",
	}
	strengthsBelow = []string{
		"Willingness to attempt every question",
		"A foundation to build on with focused practice",
	}
	improvementsBelow = []string{
		"Provide more detailed and complete explanations",
		"Support answers with concrete examples",
	}
	improvementsAbove = []string{
		"Go deeper into advanced topics and edge cases",
	}
)

var recommendationsByCategory = map[string][]string{
	"technical": {
		"Review data structures and algorithm complexity",
		"Practice coding problems under time pressure",
		"Explain trade-offs explicitly when comparing solutions",
	},
	"behavioral": {
		"Prepare STAR stories for common behavioral questions",
		"Quantify the results of your past work",
		"Practice answering concisely in two minutes or less",
	},
	"system design": {
		"Start every design with requirements and capacity estimates",
		"Study common building blocks: caches, queues, sharding and replication",
		"Discuss failure modes and how the system degrades",
	},
	"hr": {
		"Research the company and role before the interview",
		"Prepare a clear answer about your motivation and career goals",
	},
}

var defaultRecommendations = []string{
	"Practice with mock interviews regularly",
	"Review the questions you scored lowest on and rehearse better answers",
	"Record yourself answering to improve clarity and pacing",
}

// FallbackInsights builds a templated summary from the scores alone.
func FallbackInsights(req model.InsightRequest) model.InsightResult {
	score := clamp(req.OverallScore, 0, 100)
	level := PerformanceLevelFor(score)

	res := model.InsightResult{
		OverallFeedback:  fmt.Sprintf("%s Overall score: %d/100.", levelFeedback[level], score),
		PerformanceLevel: level,
		Source:           model.SourceHeuristic,
	}
	if score >= 50 {
		res.TopStrengths = append([]string{}, strengthsAbove...)
	} else {
		res.TopStrengths = append([]string{}, strengthsBelow...)
	}
	if score < 70 {
		res.AreasToImprove = append([]string{}, improvementsBelow...)
	} else {
		res.AreasToImprove = append([]string{}, improvementsAbove...)
	}

	names := make([]string, 0, len(req.CategoryScores))
	for name := range req.CategoryScores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := req.CategoryScores[name]
		switch {
		case s >= 70:
			res.TopStrengths = append(res.TopStrengths, fmt.Sprintf("Strong in %s (%d/100)", name, s))
		case s < 50:
			res.AreasToImprove = append(res.AreasToImprove, fmt.Sprintf("Practice %s (%d/100)", name, s))
		}
	}

	recs, ok := recommendationsByCategory[strings.ToLower(strings.TrimSpace(req.Category))]
	if !ok {
		recs = defaultRecommendations
	}
	res.Recommendations = append([]string{}, recs...)
	return res
}

// Dimensions are the per-answer scores averaged into interview category scores.
var Dimensions = []string{
	"relevance", "completeness", "clarity", "technicalAccuracy", "communication", "confidence",
}

// Aggregate computes the overall interview score as the rounded mean of the
// answers' overall scores, and the per-dimension means keyed by Dimensions.
func Aggregate(results []model.EvaluationResult) (int, map[string]int) {
	scores := make(map[string]int, len(Dimensions))
	if len(results) == 0 {
		for _, d := range Dimensions {
			scores[d] = 0
		}
		return 0, scores
	}

	var overall int
	sums := make([]int, len(Dimensions))
	for _, r := range results {
		overall += r.OverallScore
		for i, v := range []int{
			r.RelevanceScore, r.CompletenessScore, r.ClarityScore,
			r.TechnicalAccuracyScore, r.CommunicationScore, r.ConfidenceScore,
		} {
			sums[i] += v
		}
	}
	n := float64(len(results))
	for i, d := range Dimensions {
		scores[d] = round(float64(sums[i]) / n)
	}
	return round(float64(overall) / n), scores
}
