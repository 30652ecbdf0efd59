// Package api exposes the link engine over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/north-cloud/interlinker/internal/anchor"
	"github.com/jonesrussell/north-cloud/interlinker/internal/audit"
	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/injector"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
	"github.com/jonesrussell/north-cloud/interlinker/internal/metrics"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidOptions  = "INVALID_OPTIONS"
	CodeBodyTooLarge    = "BODY_TOO_LARGE"
	CodeUnprocessable   = "UNPROCESSABLE_DOCUMENT"
	CodeInternal        = "INTERNAL_ERROR"
	healthStatusHealthy = "healthy"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ValidateRequest is the body of POST /anchors/validate.
type ValidateRequest struct {
	Phrase      string `json:"phrase"`
	TargetTitle string `json:"target_title"`
}

// GenerateRequest is the body of POST /anchors/generate.
type GenerateRequest struct {
	Title         string `json:"title"`
	MaxCandidates int    `json:"max_candidates"`
}

// GenerateResponse lists candidates best first.
type GenerateResponse struct {
	CleanedTitle string                   `json:"cleaned_title"`
	Candidates   []domain.AnchorCandidate `json:"candidates"`
}

// AuditRequest is the body of POST /links/audit.
type AuditRequest struct {
	Document string `json:"document"`
	SiteHost string `json:"site_host,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Handler serves the engine endpoints.
type Handler struct {
	injector *injector.Injector
	gatherer prometheus.Gatherer
	log      logger.Logger
	service  string
	version  string
	started  time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithGatherer exposes g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) HandlerOption {
	return func(h *Handler) {
		h.gatherer = g
	}
}

// WithService sets the name and version reported by /health.
func WithService(name, version string) HandlerOption {
	return func(h *Handler) {
		h.service = name
		h.version = version
	}
}

// NewHandler creates a Handler around inj.
func NewHandler(inj *injector.Injector, log logger.Logger, opts ...HandlerOption) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	h := &Handler{injector: inj, log: log, started: time.Now()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// RegisterRoutes mounts every endpoint on router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(h.gatherer)))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/links/inject", h.Inject)
	v1.POST("/links/audit", h.Audit)
	v1.POST("/anchors/validate", h.ValidateAnchor)
	v1.POST("/anchors/generate", h.GenerateAnchors)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  healthStatusHealthy,
		Service: h.service,
		Version: h.version,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
	})
}

// Inject runs one injection.
func (h *Handler) Inject(c *gin.Context) {
	var req injector.Request
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.injector.Inject(req)
	if err != nil {
		if errors.Is(err, injector.ErrInvalidOptions) {
			respondError(c, http.StatusBadRequest, CodeInvalidOptions, err)
			return
		}
		logger.FromContext(c.Request.Context()).Error("Injection failed", logger.Error(err))
		respondError(c, http.StatusInternalServerError, CodeInternal, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Audit reads provenance-marked links back out of a document.
func (h *Handler) Audit(c *gin.Context) {
	var req AuditRequest
	if !bindJSON(c, &req) {
		return
	}

	var opts []audit.Option
	if req.SiteHost != "" {
		opts = append(opts, audit.WithSiteHost(req.SiteHost))
	}
	report, err := audit.Read(req.Document, opts...)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, CodeUnprocessable, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ValidateAnchor scores a phrase as anchor text.
func (h *Handler) ValidateAnchor(c *gin.Context) {
	var req ValidateRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, anchor.Validate(req.Phrase, req.TargetTitle))
}

// GenerateAnchors derives candidates from a title.
func (h *Handler) GenerateAnchors(c *gin.Context) {
	var req GenerateRequest
	if !bindJSON(c, &req) {
		return
	}

	candidates := anchor.Generate(req.Title, req.MaxCandidates)
	if candidates == nil {
		candidates = []domain.AnchorCandidate{}
	}
	c.JSON(http.StatusOK, GenerateResponse{
		CleanedTitle: anchor.CleanTitle(req.Title),
		Candidates:   candidates,
	})
}

// bindJSON decodes the body into dst and writes the error response on
// failure.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, err)
		return false
	}
	respondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
	return false
}

func respondError(c *gin.Context, status int, code string, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}
