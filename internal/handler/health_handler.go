package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"inkwell/internal/db"
)

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(gormDB *gorm.DB) *HealthHandler {
	return &HealthHandler{db: gormDB}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce plain
// @Success 200 {string} string "ok"
// @Failure 503 {object} errors.ErrorResponse
// @Router /healthz [get]
func (h *HealthHandler) Health(c echo.Context) error {
	if err := db.Ping(c.Request().Context(), h.db); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
	}
	return c.String(http.StatusOK, "ok")
}
