package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/dto"
)

// maxRecategorizeLimit caps one recategorization request
const maxRecategorizeLimit = 1000

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionRepo  persistence.TransactionRepository
	feedback         usecase.FeedbackUseCase
	recategorizer    usecase.RecategorizeUseCase
	defaultBatchSize int
	logger           coreport.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(
	transactionRepo persistence.TransactionRepository,
	feedback usecase.FeedbackUseCase,
	recategorizer usecase.RecategorizeUseCase,
	defaultBatchSize int,
	logger coreport.Logger,
) *TransactionHandler {
	if defaultBatchSize <= 0 {
		defaultBatchSize = 100
	}
	return &TransactionHandler{
		transactionRepo:  transactionRepo,
		feedback:         feedback,
		recategorizer:    recategorizer,
		defaultBatchSize: defaultBatchSize,
		logger:           logger,
	}
}

// GetByReference handles GET /api/v1/transactions/reference/:ref
func (h *TransactionHandler) GetByReference(c *gin.Context) {
	tx, err := h.transactionRepo.FindByReference(c.Request.Context(), c.Param("ref"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// UpdateCategory handles PUT /api/v1/transactions/:id/category
func (h *TransactionHandler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.CodeInvalidRequest,
			Message: "Invalid transaction ID format",
		})
		return
	}

	var req dto.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", domainerr.ErrInvalidRequest, err))
		return
	}

	tx, err := h.feedback.RecordCorrection(c.Request.Context(), id, req.Category)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// Recategorize handles POST /api/v1/transactions/recategorize?limit=N
func (h *TransactionHandler) Recategorize(c *gin.Context) {
	limit := h.defaultBatchSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRecategorizeLimit {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    domainerr.CodeInvalidRequest,
				Message: fmt.Sprintf("limit must be between 1 and %d", maxRecategorizeLimit),
			})
			return
		}
		limit = n
	}

	updated, err := h.recategorizer.ResumePending(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Recategorization requested", map[string]any{
		"limit":   limit,
		"updated": updated,
	})
	c.JSON(http.StatusOK, dto.RecategorizeResponse{Updated: updated})
}
