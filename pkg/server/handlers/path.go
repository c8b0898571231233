package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/linkpath"
	"github.com/soundprediction/linkpath/pkg/links"
	"github.com/soundprediction/linkpath/pkg/ranker"
	"github.com/soundprediction/linkpath/pkg/search"
	"github.com/soundprediction/linkpath/pkg/server/dto"
	"github.com/soundprediction/linkpath/pkg/types"
)

// PathHandler handles path search and link lookup requests
type PathHandler struct {
	finder linkpath.PathFinder
	logger *slog.Logger
}

// NewPathHandler creates a new path handler
func NewPathHandler(finder linkpath.PathFinder, logger *slog.Logger) *PathHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathHandler{
		finder: finder,
		logger: logger,
	}
}

// FindPath handles POST /api/v1/path
func (h *PathHandler) FindPath(c *gin.Context) {
	var req dto.FindPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.Normalize()

	res, err := h.finder.FindPath(c.Request.Context(), req.Start, req.Goal, req.MaxDepth)
	if err != nil {
		h.fail(c, "search_failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPathResponse(res))
}

// GetLinks handles GET /api/v1/links/:title
func (h *PathHandler) GetLinks(c *gin.Context) {
	title := strings.TrimSpace(c.Param("title"))
	if err := dto.ValidateTitle(title, types.ErrEmptyTitle); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.finder.GetLinks(c.Request.Context(), title)
	if err != nil {
		h.fail(c, "lookup_failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.LinksResponse{
		Title:          title,
		CanonicalTitle: res.CanonicalTitle,
		Links:          res.Links,
		Count:          len(res.Links),
	})
}

// Resolve handles GET /api/v1/resolve/:title
func (h *PathHandler) Resolve(c *gin.Context) {
	title := strings.TrimSpace(c.Param("title"))
	if err := dto.ValidateTitle(title, types.ErrEmptyTitle); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	canonical, err := h.finder.Resolve(c.Request.Context(), title)
	if err != nil {
		h.fail(c, "lookup_failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.ResolveResponse{Title: title, CanonicalTitle: canonical})
}

func (h *PathHandler) fail(c *gin.Context, code string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	} else {
		h.logger.Info("Request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	writeError(c, status, code, err.Error())
}

// StatusFor maps a search or lookup error to an HTTP status.
func StatusFor(err error) int {
	var embErr *ranker.EmbeddingError
	switch {
	case errors.Is(err, types.ErrEmptyTitle), errors.Is(err, types.ErrInvalidMaxDepth):
		return http.StatusBadRequest
	case errors.Is(err, links.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrBudgetExhausted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	case errors.As(err, &embErr), links.IsLookupError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
