package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"masonry/internal/core"
)

// Ordering is the service surface the handlers depend on.
type Ordering interface {
	GetOrder(ctx context.Context, issueID int64, viewport string) (*core.OrderResponse, error)
	Health(ctx context.Context) core.HealthStatus
	Debug(ctx context.Context, issueID int64) (*core.DebugInfo, error)
}

// Handler holds the HTTP handlers.
type Handler struct {
	svc Ordering
}

// NewHandler creates a handler backed by the given ordering service.
func NewHandler(svc Ordering) *Handler {
	return &Handler{svc: svc}
}

// GetOrder handles GET /api/layout/order?issueId={id}&viewport={name}
func (h *Handler) GetOrder(c echo.Context) error {
	issueID, err := parseIssueID(c.QueryParam("issueId"))
	if err != nil {
		return handleError(c, err)
	}

	resp, err := h.svc.GetOrder(c.Request().Context(), issueID, c.QueryParam("viewport"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Health handles GET /api/layout/health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Health(c.Request().Context()))
}

// Debug handles GET /api/layout/debug?issueId={id} (issueId optional)
func (h *Handler) Debug(c echo.Context) error {
	var issueID int64
	if raw := c.QueryParam("issueId"); raw != "" {
		var err error
		if issueID, err = parseIssueID(raw); err != nil {
			return handleError(c, err)
		}
	}

	info, err := h.svc.Debug(c.Request().Context(), issueID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func parseIssueID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewInvalidRequestError("issueId must be a positive integer", err)
	}
	return id, nil
}

// handleError converts layout errors to appropriate HTTP responses.
func handleError(c echo.Context, err error) error {
	var layoutErr *core.LayoutError
	if errors.As(err, &layoutErr) {
		return c.JSON(layoutErr.HTTPStatusCode(), layoutErr.ToJSON())
	}

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
