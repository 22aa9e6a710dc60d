package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/nutrient-tracker/internal/domain/detection"
	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
	"github.com/yanqian/nutrient-tracker/internal/domain/trend"
	apperrors "github.com/yanqian/nutrient-tracker/pkg/errors"
)

// Session owns one user's profile and meal ledger. Its lifetime is
// controlled by the Manager that opened it.
type Session struct {
	id       string
	owner    string
	report   rda.Report
	ledger   *ledger.Ledger
	resolver *nutrient.Resolver
	store    ledger.Store
	cfg      Config
	logger   *slog.Logger
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Owner returns the key used with the record store.
func (s *Session) Owner() string { return s.owner }

// Report returns the RDA report computed when the session opened.
func (s *Session) Report() rda.Report { return s.report }

// Targets returns the session's daily targets.
func (s *Session) Targets() rda.Targets { return s.report.Targets }

// Analyze summarizes classifier output against the reference table.
func (s *Session) Analyze(items []detection.Item) detection.Summary {
	return detection.Summarize(s.resolver.Table(), items)
}

// SaveMeal resolves the food, appends the scaled entry, and persists the
// flat record. Unresolved foods are rejected before anything is written.
func (s *Session) SaveMeal(ctx context.Context, req SaveMealRequest, now time.Time) (SaveMealResult, error) {
	if req.Food == "" {
		return SaveMealResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "food cannot be empty", nil)
	}
	if req.QuantityG <= 0 {
		return SaveMealResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "quantityG must be positive", nil)
	}
	slot, err := ledger.ParseSlot(req.Slot)
	if err != nil {
		return SaveMealResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid meal slot", err)
	}
	date := s.today(now)
	if raw := strings.TrimSpace(req.Date); raw != "" {
		date, err = ledger.ParseDate(raw)
		if err != nil {
			return SaveMealResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid date", err)
		}
	}

	res, ok := s.resolver.Resolve(req.Food, req.QuantityG)
	if !ok {
		return SaveMealResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("food %q not found in nutrient table", req.Food), nil)
	}

	entry := s.ledger.Add(ledger.Entry{
		Date:      date,
		Slot:      slot,
		Food:      res.Food,
		QuantityG: res.QuantityG,
		Nutrients: res.Scaled,
	})

	result := SaveMealResult{Entry: entry, Persisted: true}
	if s.store == nil {
		return result, nil
	}
	if err := s.store.Append(ctx, s.owner, entry.ToRecord()); err != nil {
		s.logger.Warn("persist meal failed", "session", s.id, "owner", s.owner, "error", err)
		result.Persisted = false
		return result, apperrors.Wrap(apperrors.CodeStore, "meal saved in session but not persisted", err)
	}
	return result, nil
}

// Meals returns entries dated within [start, end].
func (s *Session) Meals(start, end ledger.Date) []ledger.Entry {
	return s.ledger.Query(start, end)
}

// Entries returns every entry in insertion order.
func (s *Session) Entries() []ledger.Entry {
	return s.ledger.Entries()
}

// Dashboard builds today's progress, the weekly trend and the current month.
func (s *Session) Dashboard(now time.Time, windowDays int) Dashboard {
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}
	today := s.today(now)
	entries := s.ledger.Entries()
	targets := s.report.Targets
	return Dashboard{
		Today:    trend.Today(entries, today, targets),
		Weekly:   trend.Weekly(entries, today, windowDays, targets),
		Calendar: trend.MonthCalendar(entries, today.Year, today.Month, targets),
		Targets:  targets,
	}
}

// Calendar builds the month view for year/month.
func (s *Session) Calendar(year int, month time.Month) trend.Calendar {
	return trend.MonthCalendar(s.ledger.Entries(), year, month, s.report.Targets)
}

// Today returns the calendar date of now in the session's location.
func (s *Session) Today(now time.Time) ledger.Date {
	return s.today(now)
}

func (s *Session) today(now time.Time) ledger.Date {
	loc := s.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return ledger.DateOf(now.In(loc))
}
