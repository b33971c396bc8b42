// Package handler provides the HTTP handlers of the query service.
package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/biz"
	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/metrics"
	apierrors "github.com/ariel1441/ai-rag-project-sub000/pkg/utils/errors"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/utils/response"
)

// maxQueryRunes bounds query length; anything longer is junk input.
const maxQueryRunes = 512

// QueryHandler exposes the query service over HTTP.
type QueryHandler struct {
	service *biz.Service
}

// NewQueryHandler creates a handler around the service.
func NewQueryHandler(service *biz.Service) *QueryHandler {
	return &QueryHandler{service: service}
}

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	Text string `json:"text" binding:"required"`
	Mode string `json:"mode"`
	TopK int    `json:"top_k"`
}

// Query handles a natural-language query.
func (h *QueryHandler) Query(c *gin.Context) {
	w := response.NewWriter(c)

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		w.Fail(apierrors.ErrQueryInvalidRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		w.Fail(apierrors.ErrQueryEmpty)
		return
	}
	if utf8.RuneCountInString(req.Text) > maxQueryRunes {
		w.Fail(apierrors.ErrQueryTooLong)
		return
	}
	mode := biz.Mode(req.Mode)
	if !mode.Valid() {
		w.Fail(apierrors.ErrQueryInvalidRequest)
		return
	}

	resp, err := h.service.Query(c.Request.Context(), req.Text, mode, req.TopK)
	if err != nil {
		switch {
		case errors.Is(err, biz.ErrRetrievalUnavailable):
			w.Fail(apierrors.ErrRetrievalUnavailable)
		case c.Request.Context().Err() != nil:
			w.Fail(apierrors.ErrQueryTimeout)
		default:
			w.Fail(apierrors.ErrQueryFailed)
		}
		return
	}

	w.OK(resp)
}

// Stats returns index, cache, pool and business statistics.
func (h *QueryHandler) Stats(c *gin.Context) {
	w := response.NewWriter(c)

	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		w.Fail(apierrors.ErrStatsUnavailable)
		return
	}
	w.OK(stats)
}

// ClearCache drops all cached query responses.
func (h *QueryHandler) ClearCache(c *gin.Context) {
	w := response.NewWriter(c)

	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		w.FailWithError(err)
		return
	}
	w.OK(gin.H{"cleared": true})
}

// Metrics renders business counters in Prometheus text format.
func (h *QueryHandler) Metrics(c *gin.Context) {
	c.String(http.StatusOK, metrics.Get().Export("queryd"))
}

// Healthz is the liveness probe.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
