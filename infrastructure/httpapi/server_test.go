package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-signalhunt/infrastructure/ingest"
	"github.com/ahrav/go-signalhunt/infrastructure/middleware"
	"github.com/ahrav/go-signalhunt/internal/application"
	"github.com/ahrav/go-signalhunt/internal/domain"
	"github.com/ahrav/go-signalhunt/internal/scoring"
	"github.com/ahrav/go-signalhunt/internal/testutils"
)

func newTestRouter(t *testing.T, rules scoring.Rules, server application.ServerConfig) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := middleware.NewPrometheusMetricsWith(reg)

	scorer, err := scoring.NewScorer(rules, scoring.WithMetrics(metrics))
	require.NoError(t, err)

	return NewRouter(Config{
		Scorer:   scorer,
		Server:   server,
		Gatherer: reg,
		Metrics:  metrics,
	}), reg
}

func exampleRows() []domain.RawRow {
	return []domain.RawRow{
		testutils.Row("Team A", -60, "a1", 1.5, "Best Costume"),
		testutils.Row("Team A", -75, "a2", 0.5),
		testutils.Row("Team B", -65, "a1", 0.2),
		testutils.Row("", -50, "a1", 9),
	}
}

func decodeReport(t *testing.T, body io.Reader) scoring.Report {
	t.Helper()
	var report scoring.Report
	require.NoError(t, json.NewDecoder(body).Decode(&report))
	return report
}

func TestScoreHandler_JSON(t *testing.T) {
	router, _ := newTestRouter(t, scoring.DefaultRules(), application.ServerConfig{})

	body, err := json.Marshal(ScoreRequest{Rows: exampleRows()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	report := decodeReport(t, rec.Body)
	require.Len(t, report.Standings, 2)
	assert.Equal(t, "Team A", report.Standings[0].Team)
	assert.Equal(t, 3, report.RowsScored)
	assert.Equal(t, 1, report.RowsSkipped)
	require.Len(t, report.Teams, 2)
	assert.Equal(t, 1, report.Teams[0].Rank)
	assert.Equal(t, 15.0, report.Teams[0].Awards["Best Costume"])
}

func TestScoreHandler_CSV(t *testing.T) {
	router, _ := newTestRouter(t, scoring.DefaultRules(), application.ServerConfig{})

	var buf bytes.Buffer
	require.NoError(t, ingest.WriteRows(&buf, exampleRows(), true))

	req := httptest.NewRequest(http.MethodPost, "/v1/score", &buf)
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeReport(t, rec.Body)
	require.Len(t, report.Standings, 2)
	assert.Equal(t, "Team A", report.Standings[0].Team)
}

func TestScoreHandler_Errors(t *testing.T) {
	strict := scoring.DefaultRules()
	strict.StrictTags = true

	tests := []struct {
		name        string
		rules       scoring.Rules
		server      application.ServerConfig
		contentType string
		body        string
		wantStatus  int
		wantInError string
	}{
		{
			name:        "malformed json",
			rules:       scoring.DefaultRules(),
			contentType: "application/json",
			body:        `{"rows": [`,
			wantStatus:  http.StatusBadRequest,
			wantInError: "invalid JSON body",
		},
		{
			name:        "unknown json field",
			rules:       scoring.DefaultRules(),
			contentType: "application/json",
			body:        `{"records": []}`,
			wantStatus:  http.StatusBadRequest,
			wantInError: "unknown field",
		},
		{
			name:        "unsupported content type",
			rules:       scoring.DefaultRules(),
			contentType: "application/xml",
			body:        `<rows/>`,
			wantStatus:  http.StatusBadRequest,
			wantInError: "unsupported content type",
		},
		{
			name:        "unresolved area",
			rules:       scoring.DefaultRules(),
			contentType: "text/csv",
			body:        "1,Team A,Tucson House,-60,,,,,,1.2,\n",
			wantStatus:  http.StatusUnprocessableEntity,
			wantInError: "unresolved",
		},
		{
			name:        "unknown tag in strict mode",
			rules:       strict,
			contentType: "text/csv",
			body:        "1,Team A,Tucson House,-60,,,,,a1,1.2,Best Costum\n",
			wantStatus:  http.StatusUnprocessableEntity,
			wantInError: "Best Costume",
		},
		{
			name:        "too many rows",
			rules:       scoring.DefaultRules(),
			server:      application.ServerConfig{MaxRows: 1},
			contentType: "text/csv",
			body:        "1,Team A,,-60,,,,,a1,1\n2,Team B,,-60,,,,,a1,1\n",
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantInError: "too many records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, tt.rules, tt.server)

			req := httptest.NewRequest(http.MethodPost, "/v1/score", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Contains(t, resp["error"], tt.wantInError)
		})
	}
}

func TestCategoriesHandler(t *testing.T) {
	rules := scoring.DefaultRules()
	rules.Categories = rules.Categories.With(map[string]float64{"Found The Mural": 12})
	router, _ := newTestRouter(t, rules, application.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var categories []CategoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&categories))
	assert.Len(t, categories, rules.Categories.Len())

	byName := make(map[string]CategoryResponse, len(categories))
	for _, c := range categories {
		byName[c.Name] = c
	}
	assert.Equal(t, CategoryResponse{Name: "Found The Mural", Points: 12}, byName["Found The Mural"])
	assert.Equal(t, CategoryResponse{Name: domain.CategoryManyAreas, Points: 40, Structural: true}, byName[domain.CategoryManyAreas])
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, scoring.DefaultRules(), application.ServerConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := json.Marshal(ScoreRequest{Rows: exampleRows()})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	metrics := rec.Body.String()
	assert.Contains(t, metrics, `signalhunt_score_runs_total{status="success",unit="scorer"} 1`)
	assert.Contains(t, metrics, `signalhunt_rows_total{outcome="scored",unit="scorer"} 3`)
	assert.Contains(t, metrics, `signalhunt_operations_total{operation="http_requests_total",status="200",unit="httpapi"}`)
}

func TestCORS(t *testing.T) {
	router, _ := newTestRouter(t, scoring.DefaultRules(), application.ServerConfig{
		AllowedOrigins: []string{"https://scores.example.org"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/score", nil)
	req.Header.Set("Origin", "https://scores.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://scores.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestScoreRoute_RateLimited(t *testing.T) {
	router, _ := newTestRouter(t, scoring.DefaultRules(), application.ServerConfig{
		RequestsPerSecond: 0.001,
		Burst:             2,
	})

	body, err := json.Marshal(ScoreRequest{Rows: exampleRows()})
	require.NoError(t, err)

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(body))
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:2222").Code)

	rec := send("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111").Code)

	// Categories are never limited.
	catRec := httptest.NewRecorder()
	catReq := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	catReq.RemoteAddr = "10.0.0.1:4444"
	router.ServeHTTP(catRec, catReq)
	assert.Equal(t, http.StatusOK, catRec.Code)
}

func TestClientLimiter_Allow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewClientLimiter(1, 1)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("a")
	assert.True(t, ok)

	ok, wait := l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	now = now.Add(time.Second)
	ok, _ = l.Allow("a")
	assert.True(t, ok, "token refills after one interval")
}

func TestNewServer(t *testing.T) {
	scorer, err := scoring.NewScorer(scoring.DefaultRules())
	require.NoError(t, err)

	srv := NewServer(Config{Scorer: scorer})
	assert.Equal(t, application.DefaultListen, srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.Positive(t, srv.ReadHeaderTimeout)
}
