package evaluation

import (
	"fmt"
	"math"
	"strings"

	"github.com/pavelanni/interviewprep/internal/model"
	"github.com/pavelanni/interviewprep/internal/nlp"
)

const (
	// neutralScore is used for a dimension that cannot be measured, such as
	// relevance without an expected answer.
	neutralScore = 50

	idealSentenceWords = 15
	minClarity         = 20

	// significantWordLen is the minimum length of a key point word that
	// counts toward coverage.
	significantWordLen = 4
)

// Heuristic scores a non-empty answer without a provider: length for
// completeness, stem overlap for relevance, literal key-point matching and a
// sentiment lexicon for confidence.
func (e *Engine) Heuristic(req model.EvaluationRequest) model.EvaluationResult {
	tokens := nlp.Tokenize(req.UserAnswer)
	words := len(tokens)

	completeness := min(100, round(float64(words)/float64(e.cfg.OptimalWordCount)*100))
	relevance := relevanceScore(req.ExpectedAnswer, req.UserAnswer)
	coverage, keyPoints := e.keyPointCoverage(req.KeyPoints, tokens)
	confidence := clamp(round(50+nlp.Sentiment(tokens)*50), 0, 100)
	clarity := clarityScore(req.UserAnswer, words)

	technical := relevance
	if len(coverage) > 0 {
		technical = keyPoints
	}
	communication := round(float64(completeness+confidence) / 2)

	w := e.cfg.Weights
	overall := clamp(round(float64(relevance)*w.Relevance+
		float64(completeness)*w.Completeness+
		float64(keyPoints)*w.KeyPoints+
		float64(confidence)*w.Confidence), 0, 100)

	res := model.EvaluationResult{
		OverallScore:           overall,
		RelevanceScore:         relevance,
		CompletenessScore:      completeness,
		ClarityScore:           clarity,
		TechnicalAccuracyScore: technical,
		CommunicationScore:     communication,
		ConfidenceScore:        confidence,
		Strengths:              []string{},
		Improvements:           []string{},
		Suggestions:            []string{},
		KeyPointsCovered:       coverage,
		Source:                 model.SourceHeuristic,
	}

	if completeness >= 80 {
		res.Strengths = append(res.Strengths, "Answer is detailed and well developed")
	} else if completeness < 50 {
		res.Improvements = append(res.Improvements, "Expand your answer with more detail and examples")
	}
	if strings.TrimSpace(req.ExpectedAnswer) != "" {
		if relevance >= 70 {
			res.Strengths = append(res.Strengths, "Answer stays close to the expected solution")
		} else if relevance < 50 {
			res.Improvements = append(res.Improvements, "Focus more directly on what the question asks")
		}
	}
	if len(coverage) > 0 {
		if keyPoints >= 70 {
			res.Strengths = append(res.Strengths, "Covers most of the key points")
		}
		if missing := missingPoints(coverage); len(missing) > 0 && keyPoints < 70 {
			res.Improvements = append(res.Improvements, "Address the missing key points: "+strings.Join(missing, ", "))
		}
	}
	if confidence >= 60 {
		res.Strengths = append(res.Strengths, "Confident, positive tone")
	} else if confidence < 50 {
		res.Improvements = append(res.Improvements, "Use more assertive language and avoid hedging")
	}
	if clarity < 60 {
		res.Improvements = append(res.Improvements, "Structure the answer in shorter, clearer sentences")
	}

	if words < e.cfg.OptimalWordCount/2 {
		res.Suggestions = append(res.Suggestions, fmt.Sprintf("Aim for roughly %d words to give a complete answer", e.cfg.OptimalWordCount))
	}
	res.Suggestions = append(res.Suggestions,
		"Use the STAR method (Situation, Task, Action, Result) for behavioral questions",
		"Practice explaining the concept out loud before the interview",
	)

	res.DetailedFeedback = fmt.Sprintf(
		"Automatic evaluation (AI scoring unavailable). Your answer has %d words. "+
			"Relevance %d, completeness %d, key point coverage %d, confidence %d; overall %d/100.",
		words, relevance, completeness, keyPoints, confidence, overall)
	return res
}

// relevanceScore is the percentage of distinct expected-answer stems found
// in the answer.
func relevanceScore(expected, answer string) int {
	if strings.TrimSpace(expected) == "" {
		return neutralScore
	}
	want := nlp.StemSet(expected, 2)
	if len(want) == 0 {
		return neutralScore
	}
	have := nlp.StemSet(answer, 2)
	hits := 0
	for stem := range want {
		if _, ok := have[stem]; ok {
			hits++
		}
	}
	return round(float64(hits) / float64(len(want)) * 100)
}

// keyPointCoverage marks each key point covered when enough of its
// significant words appear among the answer tokens. The score is the
// percentage of covered points, or neutralScore when there are none.
func (e *Engine) keyPointCoverage(points []string, tokens []string) ([]model.KeyPointCoverage, int) {
	present := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		present[t] = struct{}{}
	}

	coverage := []model.KeyPointCoverage{}
	covered := 0
	for _, p := range points {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		words := nlp.Tokenize(p)
		var significant []string
		for _, w := range words {
			if len(w) >= significantWordLen {
				significant = append(significant, w)
			}
		}
		if len(significant) == 0 {
			significant = words
		}

		matched := 0
		for _, w := range significant {
			if _, ok := present[w]; ok {
				matched++
			}
		}
		ok := len(significant) > 0 && float64(matched)/float64(len(significant)) >= e.cfg.KeyPointMatchRatio
		if ok {
			covered++
		}
		coverage = append(coverage, model.KeyPointCoverage{Point: p, Covered: ok})
	}

	if len(coverage) == 0 {
		return coverage, neutralScore
	}
	return coverage, round(float64(covered) / float64(len(coverage)) * 100)
}

// clarityScore peaks at idealSentenceWords words per sentence and loses three
// points per word of deviation, bounded below by minClarity.
func clarityScore(answer string, words int) int {
	sentences := len(nlp.Sentences(answer))
	if sentences == 0 || words == 0 {
		return minClarity
	}
	avg := float64(words) / float64(sentences)
	return clamp(round(100-3*math.Abs(avg-idealSentenceWords)), minClarity, 100)
}

func missingPoints(coverage []model.KeyPointCoverage) []string {
	var out []string
	for _, c := range coverage {
		if !c.Covered {
			out = append(out, c.Point)
		}
	}
	return out
}
