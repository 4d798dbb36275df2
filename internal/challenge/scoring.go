// Package challenge implements daily challenges: answer scoring, points,
// the per-day attempt cap and the streak state machine.
package challenge

import (
	"strings"

	"github.com/pavelanni/interviewprep/internal/model"
)

// Score bands returned by ScoreAnswer.
const (
	ScoreExact     = 100
	ScoreContains  = 85
	ScoreMostWords = 75
	ScoreSomeWords = 50
	ScoreMiss      = 25
)

// Config holds the tuning constants of challenge scoring and bookkeeping.
type Config struct {
	// CompleteRatio is the share of significant expected words that marks an
	// answer complete.
	CompleteRatio float64
	// PartialRatio is the share that earns partial credit.
	PartialRatio float64
	// MinWordLen is the minimum length of a significant word.
	MinWordLen int

	MaxDailyAttempts   int
	HintPenalty        int
	OvertimeFactor     float64
	MinCompletedPoints int

	Milestones []Milestone
}

// DefaultConfig returns the stock constants.
func DefaultConfig() Config {
	return Config{
		CompleteRatio:      0.7,
		PartialRatio:       0.4,
		MinWordLen:         4,
		MaxDailyAttempts:   3,
		HintPenalty:        10,
		OvertimeFactor:     0.8,
		MinCompletedPoints: 10,
		Milestones:         DefaultMilestones,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CompleteRatio <= 0 {
		c.CompleteRatio = def.CompleteRatio
	}
	if c.PartialRatio <= 0 {
		c.PartialRatio = def.PartialRatio
	}
	if c.MinWordLen <= 0 {
		c.MinWordLen = def.MinWordLen
	}
	if c.MaxDailyAttempts <= 0 {
		c.MaxDailyAttempts = def.MaxDailyAttempts
	}
	if c.HintPenalty < 0 {
		c.HintPenalty = def.HintPenalty
	}
	if c.OvertimeFactor <= 0 {
		c.OvertimeFactor = def.OvertimeFactor
	}
	if c.MinCompletedPoints <= 0 {
		c.MinCompletedPoints = def.MinCompletedPoints
	}
	if c.Milestones == nil {
		c.Milestones = def.Milestones
	}
	return c
}

// ScoreAnswer compares a submission with the expected answer, ignoring case
// and surrounding whitespace.
func ScoreAnswer(expected, submitted string, cfg Config) (score int, complete bool) {
	want := strings.ToLower(strings.TrimSpace(expected))
	got := strings.ToLower(strings.TrimSpace(submitted))
	if got == "" {
		return ScoreMiss, false
	}

	switch {
	case want == got:
		return ScoreExact, true
	case want != "" && (strings.Contains(got, want) || strings.Contains(want, got)):
		return ScoreContains, true
	}

	var words []string
	for _, w := range strings.Fields(want) {
		if len(w) >= cfg.MinWordLen {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return ScoreMiss, false
	}
	found := 0
	for _, w := range words {
		if strings.Contains(got, w) {
			found++
		}
	}

	ratio := float64(found) / float64(len(words))
	switch {
	case ratio >= cfg.CompleteRatio:
		return ScoreMostWords, true
	case ratio >= cfg.PartialRatio:
		return ScoreSomeWords, false
	default:
		return ScoreMiss, false
	}
}

// Feedback returns the message shown for a score band.
func Feedback(score int) string {
	switch {
	case score >= ScoreExact:
		return "Perfect! Your answer matches the expected solution."
	case score >= ScoreContains:
		return "Excellent! Your answer contains the expected solution."
	case score >= ScoreMostWords:
		return "Good job! You covered most of the important concepts."
	case score >= ScoreSomeWords:
		return "Partially correct. You covered some concepts but missed important details."
	default:
		return "Not quite. Review the problem and try again."
	}
}

// CalculatePoints converts a score into earned points: the score's share of
// the challenge points, minus the hint penalty, reduced by the overtime factor
// when the time limit was exceeded. A completed attempt earns at least
// MinCompletedPoints; an incomplete one never goes below zero.
func CalculatePoints(ch model.Challenge, score, hintsUsed, timeSpent int, completed bool, cfg Config) int {
	points := ch.Points * score / 100
	points -= cfg.HintPenalty * hintsUsed
	if ch.TimeLimit > 0 && timeSpent > ch.TimeLimit {
		points = int(float64(points) * cfg.OvertimeFactor)
	}
	if completed {
		return max(points, cfg.MinCompletedPoints)
	}
	return max(points, 0)
}
