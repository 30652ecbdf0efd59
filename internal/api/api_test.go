package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/interlinker/internal/api"
	"github.com/jonesrussell/north-cloud/interlinker/internal/audit"
	"github.com/jonesrussell/north-cloud/interlinker/internal/config"
	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/injector"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
	"github.com/jonesrussell/north-cloud/interlinker/internal/metrics"
)

const keywordDoc = `<h2>Getting started</h2>` +
	`<p>Effective keyword research drives long-term organic growth. ` +
	`Teams that plan content around real search demand see better results over time.</p>`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(t *testing.T, maxBody int64) (*gin.Engine, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	inj, err := injector.New(logger.NewNop(), injector.Options{MinLinks: 1},
		injector.WithRecorder(metrics.NewRecorder(reg)))
	require.NoError(t, err)

	h := api.NewHandler(inj, logger.NewNop(),
		api.WithGatherer(reg),
		api.WithService("interlinker", "test"),
	)
	return api.NewRouter(config.ServerConfig{MaxBodyBytes: maxBody}, logger.NewNop(), h), reg
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "interlinker", resp.Service)
	assert.Equal(t, "test", resp.Version)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Len(t, w.Header().Get(api.RequestIDHeader), 36)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set(api.RequestIDHeader, "upstream-abc123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-abc123", w.Header().Get(api.RequestIDHeader))
}

func TestInject(t *testing.T) {
	t.Parallel()

	router, reg := newRouter(t, 0)

	w := postJSON(t, router, "/api/v1/links/inject", map[string]any{
		"document": keywordDoc,
		"destinations": []domain.LinkTarget{
			{URL: "/guides/keyword-research", Title: "Keyword Research Fundamentals Guide"},
		},
		"current_url": "/blog/post",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Insertions, 1)
	assert.Equal(t, "/guides/keyword-research", result.Insertions[0].URL)
	assert.Contains(t, result.Document, `data-internal-link="semantic"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "interlinker_injector_runs_total 1")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestInject_InvalidOptions(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, 0)

	w := postJSON(t, router, "/api/v1/links/inject", map[string]any{
		"document": keywordDoc,
		"options":  map[string]any{"min_relevance": 2},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, api.CodeInvalidOptions, resp.Code)
	assert.NotEmpty(t, resp.Error)
}

func TestBadJSON(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, 0)

	for _, path := range []string{
		"/api/v1/links/inject",
		"/api/v1/links/audit",
		"/api/v1/anchors/validate",
		"/api/v1/anchors/generate",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"document":`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code, path)
		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), path)
		assert.Equal(t, api.CodeInvalidRequest, resp.Code, path)
	}
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, 64)

	w := postJSON(t, router, "/api/v1/anchors/validate", api.ValidateRequest{
		Phrase: strings.Repeat("keyword research ", 20),
	})
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, api.CodeBodyTooLarge, resp.Code)
}

func TestValidateAnchor(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, 0)

	w := postJSON(t, router, "/api/v1/anchors/validate", api.ValidateRequest{Phrase: "click here"})
	require.Equal(t, http.StatusOK, w.Code)

	var v domain.AnchorValidation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.False(t, v.Valid)
	assert.Equal(t, domain.TierRejected, v.Tier)

	w = postJSON(t, router, "/api/v1/anchors/validate", api.ValidateRequest{
		Phrase:      "Google Search Ranking Factors 2024",
		TargetTitle: "Google Search Ranking Factors",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.True(t, v.Valid)
	assert.Equal(t, domain.TierExcellent, v.Tier)
}

func TestGenerateAnchors(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, 0)

	w := postJSON(t, router, "/api/v1/anchors/generate", api.GenerateRequest{
		Title:         "Keyword Research Fundamentals Guide",
		MaxCandidates: 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Keyword Research Fundamentals", resp.CleanedTitle)
	require.NotEmpty(t, resp.Candidates)
	assert.LessOrEqual(t, len(resp.Candidates), 3)
	assert.Equal(t, "Keyword Research Fundamentals", resp.Candidates[0].Phrase)

	w = postJSON(t, router, "/api/v1/anchors/generate", api.GenerateRequest{Title: "SEO Tips"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cleaned_title":"SEO Tips","candidates":[]}`, w.Body.String())
}

func TestAudit(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t, 0)

	doc := `<p>Read <a href="/a" data-internal-link="semantic" data-score="0.80">keyword research fundamentals</a>` +
		` and <a href="https://example.org/x">elsewhere</a>.</p>`
	w := postJSON(t, router, "/api/v1/links/audit", api.AuditRequest{Document: doc})
	require.Equal(t, http.StatusOK, w.Code)

	var report audit.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.SemanticLinks, 1)
	assert.Equal(t, "/a", report.SemanticLinks[0].Href)
	assert.InDelta(t, 0.80, report.SemanticLinks[0].Score, 1e-9)
	assert.Equal(t, 1, report.InternalLinks)
	assert.Equal(t, 1, report.ExternalLinks)
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(api.RecoveryMiddleware(logger.NewNop()))
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, api.CodeInternal, resp.Code)
}
