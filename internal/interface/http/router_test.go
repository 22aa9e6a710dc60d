package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/nutrient-tracker/internal/domain/detection"
	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
	"github.com/yanqian/nutrient-tracker/internal/domain/recommend"
	"github.com/yanqian/nutrient-tracker/internal/domain/tracker"
	"github.com/yanqian/nutrient-tracker/internal/infra/config"
	"github.com/yanqian/nutrient-tracker/internal/infra/mealstore"
	apperrors "github.com/yanqian/nutrient-tracker/pkg/errors"
)

func TestRouter_CalculateRDA(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecommender{})

	rec := performRequest(server, http.MethodPost, "/api/v1/rda", `{"gender":"male","age":30,"heightCm":175,"weightKg":70}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got rda.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.InDelta(t, 22.86, got.BMI, 1e-9)
	require.Equal(t, 1210.0, got.Targets.CalciumMg)
	require.Equal(t, 15.0, got.Targets.IronMg)
	require.Equal(t, 56.0, got.Targets.ProteinG)
}

func TestRouter_CalculateRDAInvalidProfile(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecommender{})

	rec := performRequest(server, http.MethodPost, "/api/v1/rda", `{"gender":"male","age":30,"heightCm":0,"weightKg":70}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_LookupFood(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecommender{})

	rec := performRequest(server, http.MethodGet, "/api/v1/foods/tofu?quantity=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got nutrient.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.InDelta(t, 4, got.Scaled.ProteinG, 1e-9)

	missing := performRequest(server, http.MethodGet, "/api/v1/foods/pizza", "")
	require.Equal(t, http.StatusNotFound, missing.Code)
	require.Equal(t, "food_not_found", decodeErrorBody(t, missing.Body.Bytes())["error"]["code"])

	bad := performRequest(server, http.MethodGet, "/api/v1/foods/tofu?quantity=-1", "")
	require.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestRouter_SummarizeDetections(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecommender{})

	rec := performRequest(server, http.MethodPost, "/api/v1/detections/summary",
		`{"items":[{"label":"tofu","confidence":0.9},{"label":"tofu","confidence":0.4},{"label":"pizza","confidence":0.8}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got detection.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Found)
	require.InDelta(t, 8, got.Values.ProteinG, 1e-9)
	require.Equal(t, []string{"pizza"}, got.Unresolved)
}

func TestRouter_SessionLifecycle(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecommender{})

	opened := performRequest(server, http.MethodPost, "/api/v1/sessions",
		`{"owner":"kim","profile":{"gender":"female","age":25,"heightCm":160,"weightKg":50}}`)
	require.Equal(t, http.StatusCreated, opened.Code)
	var info tracker.SessionInfo
	require.NoError(t, json.Unmarshal(opened.Body.Bytes(), &info))
	require.NotEmpty(t, info.ID)
	base := "/api/v1/sessions/" + info.ID

	saved := performRequest(server, http.MethodPost, base+"/meals", `{"food":"tofu","quantityG":200,"slot":"dinner","date":"2024-12-10"}`)
	require.Equal(t, http.StatusCreated, saved.Code)
	var res tracker.SaveMealResult
	require.NoError(t, json.Unmarshal(saved.Body.Bytes(), &res))
	require.True(t, res.Persisted)
	require.InDelta(t, 16, res.Entry.Nutrients.ProteinG, 1e-9)

	unresolved := performRequest(server, http.MethodPost, base+"/meals", `{"food":"pizza","quantityG":100}`)
	require.Equal(t, http.StatusBadRequest, unresolved.Code)

	listed := performRequest(server, http.MethodGet, base+"/meals?from=2024-12-01&to=2024-12-31", "")
	require.Equal(t, http.StatusOK, listed.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(listed.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)

	dash := performRequest(server, http.MethodGet, base+"/dashboard?window=7", "")
	require.Equal(t, http.StatusOK, dash.Code)

	cal := performRequest(server, http.MethodGet, base+"/calendar?month=2024-12", "")
	require.Equal(t, http.StatusOK, cal.Code)
	var month struct {
		Days []struct {
			Empty bool `json:"empty"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(cal.Body.Bytes(), &month))
	require.Len(t, month.Days, 31)
	require.False(t, month.Days[9].Empty)

	badMonth := performRequest(server, http.MethodGet, base+"/calendar?month=12-2024", "")
	require.Equal(t, http.StatusBadRequest, badMonth.Code)

	closed := performRequest(server, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNoContent, closed.Code)

	gone := performRequest(server, http.MethodGet, base+"/dashboard", "")
	require.Equal(t, http.StatusNotFound, gone.Code)
}

func TestRouter_Recommend(t *testing.T) {
	svc := &stubRecommender{
		recommendFn: func(ctx context.Context, req recommend.Request) (recommend.Response, error) {
			require.Equal(t, "high protein lunch", req.Query)
			return recommend.Response{Query: req.Query, Answer: "두부조림"}, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	rec := performRequest(server, http.MethodPost, "/api/v1/recommendations", `{"query":"high protein lunch"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got recommend.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "두부조림", got.Answer)
}

func TestRouter_RecommendUpstreamFailure(t *testing.T) {
	svc := &stubRecommender{
		recommendFn: func(ctx context.Context, req recommend.Request) (recommend.Response, error) {
			return recommend.Response{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt request failed", nil)
		},
	}
	server := newRouterUnderTest(t, svc)

	rec := performRequest(server, http.MethodPost, "/api/v1/recommendations", `{"query":"x"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "llm_error", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_Vegetarian(t *testing.T) {
	svc := &stubRecommender{
		vegetarianFn: func(ctx context.Context, food string) (recommend.VegetarianResult, error) {
			return recommend.VegetarianResult{Food: food, Vegetarian: true, Answer: "Yes"}, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	rec := performRequest(server, http.MethodPost, "/api/v1/vegetarian", `{"food":"tofu"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got recommend.VegetarianResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Vegetarian)
}

func TestRouter_FoodInfo(t *testing.T) {
	svc := &stubRecommender{
		foodInfoFn: func(ctx context.Context, food string) (recommend.FoodInfo, error) {
			return recommend.FoodInfo{Food: food, Answer: "protein 8g"}, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	rec := performRequest(server, http.MethodPost, "/api/v1/food-info", `{"food":"tofu"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got recommend.FoodInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "tofu", got.Food)
	require.Equal(t, "protein 8g", got.Answer)
}

func TestRouter_InvalidJSON(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecommender{})

	rec := performRequest(server, http.MethodPost, "/api/v1/detections/summary", `{"items":"tofu"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestExcludedPatterns(t *testing.T) {
	patterns := []string{"/api/v1/sessions/*/meals"}
	require.True(t, excluded("/api/v1/sessions/abc/meals", patterns))
	require.False(t, excluded("/api/v1/sessions/abc/dashboard", patterns))
}

func performRequest(server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc recommend.Service) *http.Server {
	t.Helper()
	return newRouterWithHTTPConfig(t, svc, config.HTTPConfig{})
}

func newRouterWithHTTPConfig(t *testing.T, svc recommend.Service, httpCfg config.HTTPConfig) *http.Server {
	t.Helper()
	table, err := nutrient.NewTable([]nutrient.Row{
		{Food: "tofu", ReferenceQuantity: "100g", Values: nutrient.Values{EnergyKcal: 76, ProteinG: 8, CalciumMg: 350, IronMg: 5.4}},
	})
	require.NoError(t, err)

	logger := newTestLogger()
	manager := tracker.NewManager(tracker.Config{WindowDays: 7, Location: time.UTC}, nutrient.NewResolver(table), mealstore.NewMemoryStore(), logger)
	handler := NewHandler(manager, svc, logger)
	httpCfg.Address = ":0"
	httpCfg.ReadTimeout = time.Second
	httpCfg.WriteTimeout = time.Second
	return NewRouter(&config.Config{HTTP: httpCfg}, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubRecommender struct {
	recommendFn  func(ctx context.Context, req recommend.Request) (recommend.Response, error)
	vegetarianFn func(ctx context.Context, food string) (recommend.VegetarianResult, error)
	foodInfoFn   func(ctx context.Context, food string) (recommend.FoodInfo, error)
}

func (s *stubRecommender) Recommend(ctx context.Context, req recommend.Request) (recommend.Response, error) {
	if s.recommendFn == nil {
		return recommend.Response{}, nil
	}
	return s.recommendFn(ctx, req)
}

func (s *stubRecommender) IsVegetarian(ctx context.Context, food string) (recommend.VegetarianResult, error) {
	if s.vegetarianFn == nil {
		return recommend.VegetarianResult{}, nil
	}
	return s.vegetarianFn(ctx, food)
}

func (s *stubRecommender) FoodInfo(ctx context.Context, food string) (recommend.FoodInfo, error) {
	if s.foodInfoFn == nil {
		return recommend.FoodInfo{}, nil
	}
	return s.foodInfoFn(ctx, food)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
