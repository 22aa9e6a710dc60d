package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
	"github.com/yanqian/nutrient-tracker/internal/domain/tracker"
	apperrors "github.com/yanqian/nutrient-tracker/pkg/errors"
)

const monthLayout = "2006-01"

type openSessionRequest struct {
	Owner   string      `json:"owner"`
	Profile rda.Profile `json:"profile"`
}

type saveMealResponse struct {
	tracker.SaveMealResult
	Warning string `json:"warning,omitempty"`
}

// OpenSession creates a session, restoring the owner's saved meals.
func (h *Handler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	_, info, err := h.sessions.Open(c.Request.Context(), req.Owner, req.Profile)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// CloseSession tears a session down.
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveMeal appends one resolved meal. A persistence failure still returns
// the entry, flagged as not persisted.
func (h *Handler) SaveMeal(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req tracker.SaveMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	res, err := sess.SaveMeal(c.Request.Context(), req, h.sessions.Now())
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeStore) {
			h.logger.Warn("meal kept in session only", "session", sess.ID(), "error", err)
			c.JSON(http.StatusCreated, saveMealResponse{SaveMealResult: res, Warning: errMessage(err)})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saveMealResponse{SaveMealResult: res})
}

// ListMeals returns entries within ?from=&to= (inclusive, YYYY-MM-DD).
// Without bounds every entry is returned.
func (h *Handler) ListMeals(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	from, to := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if from == "" && to == "" {
		entries := sess.Entries()
		c.JSON(http.StatusOK, gin.H{"meals": entries, "count": len(entries)})
		return
	}

	start := ledger.NewDate(1, time.January, 1)
	end := sess.Today(h.sessions.Now())
	var err error
	if from != "" {
		if start, err = ledger.ParseDate(from); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	}
	if to != "" {
		if end, err = ledger.ParseDate(to); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	}
	if end.Before(start) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "from must not be after to", nil))
		return
	}
	entries := sess.Meals(start, end)
	c.JSON(http.StatusOK, gin.H{"from": start, "to": end, "meals": entries, "count": len(entries)})
}

// Dashboard returns today's progress, the weekly trend and this month.
func (h *Handler) Dashboard(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	window := 0
	if raw := strings.TrimSpace(c.Query("window")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "window must be a positive number of days", err))
			return
		}
		window = parsed
	}
	c.JSON(http.StatusOK, sess.Dashboard(h.sessions.Now(), window))
}

// Calendar returns the month view for ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) Calendar(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	today := sess.Today(h.sessions.Now())
	year, month := today.Year, today.Month
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		parsed, err := time.Parse(monthLayout, raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "month must be YYYY-MM", err))
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}
	c.JSON(http.StatusOK, sess.Calendar(year, month))
}

func (h *Handler) session(c *gin.Context) (*tracker.Session, bool) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return sess, true
}
