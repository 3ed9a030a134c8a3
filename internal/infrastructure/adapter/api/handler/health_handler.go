package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/oracle"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/dto"
)

// Pinger checks a storage dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// OracleStatus exposes the oracle lifecycle
type OracleStatus interface {
	State() oracle.State
}

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports liveness. The oracle never affects the overall status
// because categorization falls back to keyword rules without it.
type HealthHandler struct {
	db           Pinger
	oracle       OracleStatus
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewHealthHandler creates a health handler. db may be nil for the in-memory store.
func NewHealthHandler(db Pinger, oracleStatus OracleStatus, timeProvider coreport.TimeProvider, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{db: db, oracle: oracleStatus, timeProvider: timeProvider, logger: logger}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Database: "memory", Oracle: string(oracle.StateUnavailable)}
	if h.oracle != nil {
		resp.Oracle = string(h.oracle.State())
	}

	if h.db != nil {
		ctx, cancel := h.timeProvider.WithTimeout(c.Request.Context(), coreport.Duration(healthCheckTimeout))
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", map[string]any{"error": err.Error()})
			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "up"
	}

	c.JSON(http.StatusOK, resp)
}
