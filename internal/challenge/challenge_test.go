package challenge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/interviewprep/internal/model"
)

func TestScoreAnswer(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name         string
		expected     string
		submitted    string
		wantScore    int
		wantComplete bool
	}{
		{"exact ignoring case", "Binary Search Tree", "binary search tree", ScoreExact, true},
		{"exact ignoring whitespace", "  O(log n)  ", "o(log n)", ScoreExact, true},
		{"submission contains expected", "hash map", "I would use a hash map here", ScoreContains, true},
		{"expected contains submission", "use a hash map", "hash map", ScoreContains, true},
		{"most significant words", "use a stack to track parentheses", "stack track parentheses", ScoreMostWords, true},
		{"some significant words", "dynamic programming with memoization table", "use dynamic programming", ScoreSomeWords, false},
		{"miss", "linked list", "queue", ScoreMiss, false},
		{"empty submission", "linked list", "   ", ScoreMiss, false},
		{"empty expected", "", "anything", ScoreMiss, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, complete := ScoreAnswer(tt.expected, tt.submitted, cfg)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantComplete, complete)
		})
	}
}

func TestFeedback(t *testing.T) {
	assert.Contains(t, Feedback(ScoreExact), "Perfect")
	assert.Contains(t, Feedback(ScoreContains), "Excellent")
	assert.Contains(t, Feedback(ScoreMostWords), "Good job")
	assert.Contains(t, Feedback(ScoreSomeWords), "Partially")
	assert.Contains(t, Feedback(ScoreMiss), "Not quite")
}

func TestCalculatePoints(t *testing.T) {
	cfg := DefaultConfig()
	ch := model.Challenge{Points: 100, TimeLimit: 60}
	tests := []struct {
		name      string
		score     int
		hints     int
		timeSpent int
		completed bool
		want      int
	}{
		{"full marks", 100, 0, 30, true, 100},
		{"hint penalty", 100, 2, 30, true, 80},
		{"overtime", 100, 0, 90, true, 80},
		{"hints and overtime", 85, 1, 90, true, 60},
		{"incomplete floors at zero", 25, 5, 0, false, 0},
		{"completed floors at minimum", 75, 8, 0, true, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePoints(ch, tt.score, tt.hints, tt.timeSpent, tt.completed, cfg)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no time limit", func(t *testing.T) {
		got := CalculatePoints(model.Challenge{Points: 50}, 100, 0, 10_000, true, cfg)
		assert.Equal(t, 50, got)
	})
}

func at(day int) time.Time {
	return time.Date(2026, time.March, day, 9, 30, 0, 0, time.UTC)
}

func TestAdvanceFirstCompletion(t *testing.T) {
	s := NewStreak(1)
	changed, awarded := Advance(s, at(10), "c1", 40, DefaultMilestones)

	require.True(t, changed)
	assert.Empty(t, awarded)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	assert.Equal(t, 40, s.TotalPoints)
	assert.Equal(t, 1, s.TotalChallengesCompleted)
	require.NotNil(t, s.LastChallengeDate)
	assert.Equal(t, Day(at(10)), *s.LastChallengeDate)
	require.Len(t, s.StreakHistory, 1)
	assert.Equal(t, "c1", s.StreakHistory[0].ChallengeID)
}

func TestAdvanceSameDayIsNoop(t *testing.T) {
	s := NewStreak(1)
	Advance(s, at(10), "c1", 40, DefaultMilestones)
	before := *s

	changed, awarded := Advance(s, at(10).Add(8*time.Hour), "c2", 90, DefaultMilestones)
	assert.False(t, changed)
	assert.Nil(t, awarded)
	assert.Equal(t, before.CurrentStreak, s.CurrentStreak)
	assert.Equal(t, before.TotalPoints, s.TotalPoints)
	assert.Equal(t, before.TotalChallengesCompleted, s.TotalChallengesCompleted)
	assert.Len(t, s.StreakHistory, 1)
}

func TestAdvanceContinuesAndResets(t *testing.T) {
	s := NewStreak(1)
	Advance(s, at(1), "a", 10, DefaultMilestones)
	Advance(s, at(2), "b", 10, DefaultMilestones)
	Advance(s, at(3), "c", 10, DefaultMilestones)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)

	// Skipping a day restarts the streak but keeps the longest.
	Advance(s, at(5), "d", 10, DefaultMilestones)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)
	assert.Equal(t, 40, s.TotalPoints)
	assert.Equal(t, 4, s.TotalChallengesCompleted)
	assert.GreaterOrEqual(t, s.LongestStreak, s.CurrentStreak)
}

func TestAdvanceAcrossMidnight(t *testing.T) {
	s := NewStreak(1)
	late := time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, time.March, 11, 0, 1, 0, 0, time.UTC)

	Advance(s, late, "a", 10, nil)
	changed, _ := Advance(s, early, "b", 10, nil)
	require.True(t, changed)
	assert.Equal(t, 2, s.CurrentStreak)
}

func TestAdvanceStoredDateInOtherZone(t *testing.T) {
	// A stored day read back in UTC while the clock runs ten hours behind.
	hawaii := time.FixedZone("HST", -10*3600)
	stored := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	s := NewStreak(1)
	s.CurrentStreak = 1
	s.LastChallengeDate = &stored
	changed, _ := Advance(s, time.Date(2026, time.March, 10, 20, 0, 0, 0, hawaii), "a", 10, nil)
	assert.False(t, changed, "same calendar day must be a no-op")

	changed, _ = Advance(s, time.Date(2026, time.March, 11, 9, 0, 0, 0, hawaii), "b", 10, nil)
	require.True(t, changed)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, "2026-03-11", s.LastChallengeDate.Format(DateLayout))
}

func TestAdvanceMilestones(t *testing.T) {
	s := NewStreak(1)
	var all []model.Achievement
	for d := 1; d <= 7; d++ {
		_, awarded := Advance(s, at(d), "c", 10, DefaultMilestones)
		all = append(all, awarded...)
	}
	require.Len(t, all, 1)
	assert.Equal(t, "Week Warrior", all[0].Name)
	assert.True(t, s.HasAchievement("Week Warrior"))

	// Reaching 7 again after a reset does not award it twice.
	Advance(s, at(20), "c", 10, DefaultMilestones)
	for d := 21; d <= 26; d++ {
		_, awarded := Advance(s, at(d), "c", 10, DefaultMilestones)
		assert.Empty(t, awarded)
	}
	assert.Equal(t, 7, s.CurrentStreak)
	assert.Len(t, s.Achievements, 1)
}

func TestParseFile(t *testing.T) {
	valid := []byte(`[
		{"title": "Reverse a list", "expectedAnswer": "two pointers", "points": 50},
		{"title": "Dated", "expectedAnswer": "x", "date": "2026-03-10", "difficulty": "hard"}
	]`)
	items, err := ParseFile(valid)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Reverse a list", items[0].Title)
	assert.Equal(t, model.DifficultyHard, items[1].Difficulty)

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{`},
		{"object instead of array", `{"title": "x"}`},
		{"empty array", `[]`},
		{"missing expected answer", `[{"title": "x"}]`},
		{"bad date", `[{"title": "x", "expectedAnswer": "y", "date": "10/03/2026"}]`},
		{"bad difficulty", `[{"title": "x", "expectedAnswer": "y", "difficulty": "insane"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFile))
		})
	}
}

func TestFileHash(t *testing.T) {
	a := FileHash([]byte("abc"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, FileHash([]byte("abc")))
	assert.NotEqual(t, a, FileHash([]byte("abd")))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{MaxDailyAttempts: 5}.withDefaults()
	assert.Equal(t, 5, cfg.MaxDailyAttempts)
	assert.Equal(t, 0.7, cfg.CompleteRatio)
	assert.Equal(t, 0.4, cfg.PartialRatio)
	assert.Equal(t, DefaultMilestones, cfg.Milestones)
}
