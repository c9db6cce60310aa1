// Package leaderboard summarises the recorded practice sessions.
package leaderboard

import (
	"fmt"

	"github.com/hperssn/practicetimer/internal/domain"
)

// Board holds the headline durations of a history, in seconds.
type Board struct {
	MostRecent int `json:"mostRecent"`
	Longest    int `json:"longest"`
}

// Entry is one rendered line of the leaderboard.
type Entry struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Stats struct {
	TotalSessions  int     `json:"totalSessions"`
	TotalSeconds   int     `json:"totalSeconds"`
	AverageSeconds float64 `json:"averageSeconds"`
}

// Compute returns the board for history. It reports false when there is
// nothing to show.
func Compute(history domain.History) (Board, bool) {
	last, ok := history.Last()
	if !ok {
		return Board{}, false
	}
	longest, _ := history.Max()

	return Board{MostRecent: last, Longest: longest}, true
}

// FormatMinutes renders whole minutes; leftover seconds are dropped.
func FormatMinutes(seconds int) string {
	return fmt.Sprintf("%d minutes", seconds/60)
}

// FormatClock renders seconds as mm:ss, growing the minutes as needed.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (b Board) Entries() []Entry {
	return []Entry{
		{Label: "Most recent", Text: FormatMinutes(b.MostRecent)},
		{Label: "Longest", Text: FormatMinutes(b.Longest)},
	}
}

func Summarize(history domain.History) Stats {
	stats := Stats{
		TotalSessions: len(history),
		TotalSeconds:  history.Total(),
	}
	if stats.TotalSessions > 0 {
		stats.AverageSeconds = float64(stats.TotalSeconds) / float64(stats.TotalSessions)
	}
	return stats
}
