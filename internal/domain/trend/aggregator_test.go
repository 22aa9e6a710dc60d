package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
)

func d(n int) ledger.Date {
	return ledger.NewDate(2024, time.December, n)
}

func entry(date ledger.Date, food string, v nutrient.Values) ledger.Entry {
	return ledger.Entry{Date: date, Food: food, QuantityG: 100, Nutrients: v}
}

var targets = rda.Targets{Calories: 2000, ProteinG: 56, CalciumMg: 1210, IronMg: 15, CarbsG: 250, FatG: 66}

func TestDailyTotalsGroupsByDate(t *testing.T) {
	entries := []ledger.Entry{
		entry(d(3), "두부", nutrient.Values{EnergyKcal: 76, ProteinG: 8}),
		entry(d(1), "사과", nutrient.Values{EnergyKcal: 52}),
		entry(d(3), "밥", nutrient.Values{EnergyKcal: 130, ProteinG: 2}),
		entry(d(3), "두부", nutrient.Values{EnergyKcal: 76, ProteinG: 8}),
	}

	totals := DailyTotals(entries)
	require.Len(t, totals, 2)
	require.Equal(t, d(1), totals[0].Date)
	require.Equal(t, d(3), totals[1].Date)
	require.InDelta(t, 282, totals[1].Values.EnergyKcal, 1e-9)
	require.InDelta(t, 18, totals[1].Values.ProteinG, 1e-9)
	require.Equal(t, 3, totals[1].Entries)
	require.Equal(t, []string{"두부", "밥"}, totals[1].Foods)
}

func TestDailyTotalsEmpty(t *testing.T) {
	totals := DailyTotals(nil)
	require.NotNil(t, totals)
	require.Empty(t, totals)
}

func TestWeeklyTotalsWindow(t *testing.T) {
	entries := []ledger.Entry{
		entry(d(1), "old", nutrient.Values{EnergyKcal: 1}),
		entry(d(3), "edge", nutrient.Values{EnergyKcal: 2}),
		entry(d(10), "today", nutrient.Values{EnergyKcal: 3}),
		entry(d(11), "future", nutrient.Values{EnergyKcal: 4}),
	}

	totals := WeeklyTotals(entries, d(10), 7)
	require.Len(t, totals, 2)
	require.Equal(t, d(3), totals[0].Date)
	require.Equal(t, d(10), totals[1].Date)

	start, end := Window(d(10), 0)
	require.Equal(t, d(3), start)
	require.Equal(t, d(10), end)
}

func TestPercentOfTargetClampsDisplayOnly(t *testing.T) {
	progress := PercentOfTarget(nutrient.Values{EnergyKcal: 3000, ProteinG: 112, CalciumMg: 605, IronMg: 30}, targets)

	require.Equal(t, 100.0, progress.Protein.Display)
	require.InDelta(t, 200, progress.Protein.Raw, 1e-9)
	require.InDelta(t, 50, progress.Calcium.Display, 1e-9)
	require.InDelta(t, 50, progress.Calcium.Raw, 1e-9)
	require.Equal(t, 100.0, progress.Iron.Display)
	require.InDelta(t, 200, progress.Iron.Raw, 1e-9)

	require.Equal(t, 3000.0, progress.Calories.Kcal)
	require.InDelta(t, 150, progress.Calories.RawPercent, 1e-9)
}

func TestPercentOfTargetNeverExceedsCap(t *testing.T) {
	for _, v := range []float64{0, 1, 55.9, 56, 57, 1e6} {
		p := PercentOfTarget(nutrient.Values{ProteinG: v}, targets)
		require.LessOrEqual(t, p.Protein.Display, 100.0)
		require.GreaterOrEqual(t, p.Protein.Raw, p.Protein.Display)
	}
}

func TestPercentOfTargetZeroTarget(t *testing.T) {
	p := PercentOfTarget(nutrient.Values{ProteinG: 10}, rda.Targets{})
	require.Zero(t, p.Protein.Raw)
	require.Zero(t, p.Calories.RawPercent)
}

func TestWeeklySeries(t *testing.T) {
	empty := Weekly(nil, d(10), 7, targets)
	require.True(t, empty.Empty)
	require.Empty(t, empty.Days)

	series := Weekly([]ledger.Entry{entry(d(9), "두부", nutrient.Values{ProteinG: 28})}, d(10), 7, targets)
	require.False(t, series.Empty)
	require.Len(t, series.Days, 1)
	require.InDelta(t, 50, series.Days[0].Progress.Protein.Display, 1e-9)
}

func TestToday(t *testing.T) {
	entries := []ledger.Entry{entry(d(10), "두부", nutrient.Values{IronMg: 3})}

	got := Today(entries, d(10), targets)
	require.InDelta(t, 20, got.Progress.Iron.Display, 1e-9)

	none := Today(entries, d(11), targets)
	require.Zero(t, none.Entries)
	require.Zero(t, none.Progress.Iron.Raw)
}

func TestMonthCalendar(t *testing.T) {
	entries := []ledger.Entry{
		entry(d(2), "두부", nutrient.Values{ProteinG: 56}),
		entry(ledger.NewDate(2025, time.January, 1), "사과", nutrient.Values{}),
	}

	cal := MonthCalendar(entries, 2024, time.December, targets)
	require.Len(t, cal.Days, 31)
	require.True(t, cal.Days[0].Empty)
	require.Nil(t, cal.Days[0].Progress)
	require.False(t, cal.Days[1].Empty)
	require.Equal(t, []string{"두부"}, cal.Days[1].Foods)
	require.InDelta(t, 100, cal.Days[1].Progress.Protein.Display, 1e-9)

	// 2024-12-01 is a Sunday.
	require.Len(t, cal.Weeks, 6)
	require.Equal(t, [7]int{0, 0, 0, 0, 0, 0, 1}, cal.Weeks[0])
	require.Equal(t, [7]int{30, 31, 0, 0, 0, 0, 0}, cal.Weeks[5])
}
