// Package trend reduces ledger entries into per-day totals and expresses
// them against RDA targets. Every function is a pure transform.
package trend

import (
	"sort"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
)

// DefaultWindowDays is the weekly lookback.
const DefaultWindowDays = 7

// displayCap bounds progress values shown to users.
const displayCap = 100.0

// DailyTotal sums every entry sharing a calendar date.
type DailyTotal struct {
	Date    ledger.Date     `json:"date"`
	Values  nutrient.Values `json:"values"`
	Entries int             `json:"entries"`
	Foods   []string        `json:"foods"`
}

// Percent keeps the unclamped ratio next to the value meant for progress bars.
type Percent struct {
	Raw     float64 `json:"raw"`
	Display float64 `json:"display"`
}

// Calories is reported as an absolute figure; its percent is never clamped.
type Calories struct {
	Kcal       float64 `json:"kcal"`
	TargetKcal float64 `json:"targetKcal"`
	RawPercent float64 `json:"rawPercent"`
}

// Progress is one day's intake against targets.
type Progress struct {
	Calories Calories `json:"calories"`
	Protein  Percent  `json:"protein"`
	Calcium  Percent  `json:"calcium"`
	Iron     Percent  `json:"iron"`
	Carbs    Percent  `json:"carbs"`
	Fat      Percent  `json:"fat"`
}

// DayProgress pairs a daily total with its progress.
type DayProgress struct {
	DailyTotal
	Progress Progress `json:"progress"`
}

// Series is a windowed trend. Empty is set when no entry fell in the window.
type Series struct {
	Start ledger.Date   `json:"start"`
	End   ledger.Date   `json:"end"`
	Days  []DayProgress `json:"days"`
	Empty bool          `json:"empty"`
}

// DailyTotals groups entries by date in ascending date order.
func DailyTotals(entries []ledger.Entry) []DailyTotal {
	byDate := make(map[ledger.Date]*DailyTotal)
	for _, e := range entries {
		total, ok := byDate[e.Date]
		if !ok {
			total = &DailyTotal{Date: e.Date, Foods: []string{}}
			byDate[e.Date] = total
		}
		total.Values = total.Values.Add(e.Nutrients)
		total.Entries++
		total.Foods = appendUnique(total.Foods, e.Food)
	}

	out := make([]DailyTotal, 0, len(byDate))
	for _, total := range byDate {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Window returns the inclusive date range [today-windowDays, today].
func Window(today ledger.Date, windowDays int) (ledger.Date, ledger.Date) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return today.AddDays(-windowDays), today
}

// WeeklyTotals keeps entries inside Window(today, windowDays) and totals them per day.
func WeeklyTotals(entries []ledger.Entry, today ledger.Date, windowDays int) []DailyTotal {
	start, end := Window(today, windowDays)
	filtered := make([]ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Date.Within(start, end) {
			filtered = append(filtered, e)
		}
	}
	return DailyTotals(filtered)
}

// PercentOfTarget expresses total against targets. A zero target yields 0%.
func PercentOfTarget(total nutrient.Values, targets rda.Targets) Progress {
	return Progress{
		Calories: Calories{
			Kcal:       total.EnergyKcal,
			TargetKcal: targets.Calories,
			RawPercent: ratio(total.EnergyKcal, targets.Calories),
		},
		Protein: percent(total.ProteinG, targets.ProteinG),
		Calcium: percent(total.CalciumMg, targets.CalciumMg),
		Iron:    percent(total.IronMg, targets.IronMg),
		Carbs:   percent(total.CarbsG, targets.CarbsG),
		Fat:     percent(total.FatG, targets.FatG),
	}
}

// Trend attaches progress to each daily total.
func Trend(days []DailyTotal, targets rda.Targets) []DayProgress {
	out := make([]DayProgress, 0, len(days))
	for _, d := range days {
		out = append(out, DayProgress{DailyTotal: d, Progress: PercentOfTarget(d.Values, targets)})
	}
	return out
}

// Weekly builds the windowed series ending at today.
func Weekly(entries []ledger.Entry, today ledger.Date, windowDays int, targets rda.Targets) Series {
	start, end := Window(today, windowDays)
	days := Trend(WeeklyTotals(entries, today, windowDays), targets)
	return Series{Start: start, End: end, Days: days, Empty: len(days) == 0}
}

// Today returns the progress for a single date; a day without entries
// reports zero intake.
func Today(entries []ledger.Entry, today ledger.Date, targets rda.Targets) DayProgress {
	for _, d := range DailyTotals(entries) {
		if d.Date == today {
			return DayProgress{DailyTotal: d, Progress: PercentOfTarget(d.Values, targets)}
		}
	}
	empty := DailyTotal{Date: today, Foods: []string{}}
	return DayProgress{DailyTotal: empty, Progress: PercentOfTarget(empty.Values, targets)}
}

func ratio(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return actual / target * 100
}

func percent(actual, target float64) Percent {
	raw := ratio(actual, target)
	display := raw
	if display > displayCap {
		display = displayCap
	}
	return Percent{Raw: raw, Display: display}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
