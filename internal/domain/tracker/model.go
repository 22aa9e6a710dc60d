package tracker

import (
	"time"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
	"github.com/yanqian/nutrient-tracker/internal/domain/trend"
)

// Config controls date handling for sessions.
type Config struct {
	WindowDays int
	Location   *time.Location
}

// SaveMealRequest is the explicit "save" action. Date defaults to today
// in the configured location.
type SaveMealRequest struct {
	Date      string  `json:"date,omitempty"`
	Slot      string  `json:"slot,omitempty"`
	Food      string  `json:"food"`
	QuantityG float64 `json:"quantityG"`
}

// SaveMealResult reports the stored entry. Persisted is false when the
// external store rejected the record; the entry remains in the ledger.
type SaveMealResult struct {
	Entry     ledger.Entry `json:"entry"`
	Persisted bool         `json:"persisted"`
}

// SessionInfo is what callers see when a session opens.
type SessionInfo struct {
	ID       string     `json:"id"`
	Owner    string     `json:"owner"`
	Report   rda.Report `json:"report"`
	Restored int        `json:"restored"`
	Skipped  int        `json:"skipped,omitempty"`
}

// Dashboard bundles the today/weekly/month views.
type Dashboard struct {
	Today    trend.DayProgress `json:"today"`
	Weekly   trend.Series      `json:"weekly"`
	Calendar trend.Calendar    `json:"calendar"`
	Targets  rda.Targets       `json:"targets"`
}
