package trend

import (
	"time"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
)

// CalendarDay is one cell of the monthly meal calendar.
type CalendarDay struct {
	Date     ledger.Date `json:"date"`
	Empty    bool        `json:"empty"`
	Foods    []string    `json:"foods"`
	Progress *Progress   `json:"progress,omitempty"`
}

// Calendar lays out a month Monday-first. Weeks holds day numbers with 0
// for padding cells outside the month.
type Calendar struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Weeks [][7]int      `json:"weeks"`
	Days  []CalendarDay `json:"days"`
}

// MonthCalendar builds the calendar for year/month from entries.
func MonthCalendar(entries []ledger.Entry, year int, month time.Month, targets rda.Targets) Calendar {
	first := ledger.NewDate(year, month, 1)
	last := ledger.DateOf(first.Time(time.UTC).AddDate(0, 1, -1))

	totals := make(map[ledger.Date]DailyTotal)
	for _, d := range DailyTotals(entries) {
		if d.Date.Within(first, last) {
			totals[d.Date] = d
		}
	}

	cal := Calendar{Year: year, Month: month, Days: make([]CalendarDay, 0, last.Day)}
	for n := 1; n <= last.Day; n++ {
		date := ledger.NewDate(year, month, n)
		cell := CalendarDay{Date: date, Empty: true, Foods: []string{}}
		if total, ok := totals[date]; ok {
			progress := PercentOfTarget(total.Values, targets)
			cell.Empty = false
			cell.Foods = total.Foods
			cell.Progress = &progress
		}
		cal.Days = append(cal.Days, cell)
	}
	cal.Weeks = monthGrid(first, last.Day)
	return cal
}

func monthGrid(first ledger.Date, days int) [][7]int {
	// Monday = column 0.
	col := (int(first.Time(time.UTC).Weekday()) + 6) % 7
	var (
		weeks [][7]int
		week  [7]int
	)
	for n := 1; n <= days; n++ {
		week[col] = n
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col != 0 {
		weeks = append(weeks, week)
	}
	return weeks
}
