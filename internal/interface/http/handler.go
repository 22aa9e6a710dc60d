package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/nutrient-tracker/internal/domain/detection"
	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
	"github.com/yanqian/nutrient-tracker/internal/domain/recommend"
	"github.com/yanqian/nutrient-tracker/internal/domain/tracker"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	sessions     *tracker.Manager
	recommendSvc recommend.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(sessions *tracker.Manager, recommendSvc recommend.Service, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:     sessions,
		recommendSvc: recommendSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

type detectionRequest struct {
	Items []detection.Item `json:"items"`
}

type foodRequest struct {
	Food string `json:"food"`
}

// Health reports liveness and the size of the loaded table.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"foods":    h.sessions.Resolver().Table().Len(),
		"sessions": h.sessions.Len(),
	})
}

// CalculateRDA derives BMI, ideal weight and daily targets from a profile.
func (h *Handler) CalculateRDA(c *gin.Context) {
	var profile rda.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, rda.Calculate(profile))
}

// LookupFood resolves one food at the requested quantity (grams, default 100).
func (h *Handler) LookupFood(c *gin.Context) {
	name := c.Param("name")
	grams := nutrient.ReferenceGrams
	if raw := strings.TrimSpace(c.Query("quantity")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "quantity must be a positive number of grams", err))
			return
		}
		grams = parsed
	}
	res, ok := h.sessions.Resolver().Resolve(name, grams)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "food_not_found", "food not found in nutrient table: "+name, nil))
		return
	}
	c.JSON(http.StatusOK, res)
}

// SummarizeDetections totals classifier output without touching any ledger.
func (h *Handler) SummarizeDetections(c *gin.Context) {
	var req detectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, detection.Summarize(h.sessions.Resolver().Table(), req.Items))
}

// Recommend forwards a free-text diet question.
func (h *Handler) Recommend(c *gin.Context) {
	var req recommend.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.recommendSvc.Recommend(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Vegetarian asks the chat model whether a food is vegetarian.
func (h *Handler) Vegetarian(c *gin.Context) {
	var req foodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.recommendSvc.IsVegetarian(c.Request.Context(), req.Food)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FoodInfo asks the chat model for a food's nutrients and a recipe.
func (h *Handler) FoodInfo(c *gin.Context) {
	var req foodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.recommendSvc.FoodInfo(c.Request.Context(), req.Food)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
