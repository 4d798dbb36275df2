package challenge

import (
	"time"

	"github.com/pavelanni/interviewprep/internal/model"
)

// Milestone is a streak length that earns an achievement once.
type Milestone struct {
	Days        int
	Name        string
	Description string
	Icon        string
}

// DefaultMilestones are the streak achievements.
var DefaultMilestones = []Milestone{
	{Days: 7, Name: "Week Warrior", Description: "Completed challenges 7 days in a row", Icon: "🔥"},
	{Days: 30, Name: "Monthly Master", Description: "Completed challenges 30 days in a row", Icon: "🏆"},
	{Days: 60, Name: "Dedication Champion", Description: "Completed challenges 60 days in a row", Icon: "💎"},
	{Days: 100, Name: "Century Club", Description: "Completed challenges 100 days in a row", Icon: "💯"},
	{Days: 365, Name: "Year Legend", Description: "Completed challenges every day for a year", Icon: "👑"},
}

// Day truncates t to local midnight in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDay places the calendar date of a stored day at midnight in loc.
// Stored days carry no meaningful zone, so their date is taken as written.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// NewStreak returns the empty state of a user who never completed a challenge.
func NewStreak(userID int64) *model.StreakState {
	return &model.StreakState{
		UserID:        userID,
		StreakHistory: []model.StreakEntry{},
		Achievements:  []model.Achievement{},
	}
}

// Advance applies one challenge completion at now. It reports false and
// leaves s untouched when s already has a completion on the same calendar
// day. Otherwise the streak continues from yesterday or restarts at 1, and
// any milestone reached exactly is awarded unless already held.
func Advance(s *model.StreakState, now time.Time, challengeID string, points int, milestones []Milestone) (bool, []model.Achievement) {
	today := Day(now)
	yesterday := today.AddDate(0, 0, -1)

	if s.LastChallengeDate != nil {
		last := calendarDay(*s.LastChallengeDate, now.Location())
		switch {
		case last.Equal(today):
			return false, nil
		case last.Equal(yesterday):
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
	} else {
		s.CurrentStreak = 1
	}

	s.LongestStreak = max(s.LongestStreak, s.CurrentStreak)
	s.StreakHistory = append(s.StreakHistory, model.StreakEntry{
		Date:         today,
		ChallengeID:  challengeID,
		PointsEarned: points,
	})
	s.TotalPoints += points
	s.TotalChallengesCompleted++
	s.LastChallengeDate = &today

	var awarded []model.Achievement
	for _, m := range milestones {
		if s.CurrentStreak != m.Days || s.HasAchievement(m.Name) {
			continue
		}
		a := model.Achievement{
			Name:        m.Name,
			Description: m.Description,
			EarnedAt:    now,
			Icon:        m.Icon,
		}
		s.Achievements = append(s.Achievements, a)
		awarded = append(awarded, a)
	}
	return true, awarded
}
