package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainerr "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/dto"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryRepo persistence.CategoryRepository
	manager      usecase.CategoryUseCase
}

// NewCategoryHandler creates a new category handler instance
func NewCategoryHandler(categoryRepo persistence.CategoryRepository, manager usecase.CategoryUseCase) *CategoryHandler {
	return &CategoryHandler{categoryRepo: categoryRepo, manager: manager}
}

// List handles GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryRepo.ListActiveCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategoryResponses(categories))
}

// Create handles POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", domainerr.ErrInvalidRequest, err))
		return
	}

	var budget *decimal.Decimal
	if req.MonthlyBudget != nil {
		parsed, err := decimal.NewFromString(*req.MonthlyBudget)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: monthly budget %q is not a number", domainerr.ErrInvalidAmount, *req.MonthlyBudget))
			return
		}
		budget = &parsed
	}

	category, err := h.manager.AddCategory(c.Request.Context(), req.Name, req.Icon, req.Color, budget)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCategoryResponse(category))
}

// SetActive handles PATCH /api/v1/categories/:id/active
func (h *CategoryHandler) SetActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.CodeInvalidRequest,
			Message: "Invalid category ID format",
		})
		return
	}

	var req dto.CategoryStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", domainerr.ErrInvalidRequest, err))
		return
	}

	category, err := h.manager.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategoryResponse(category))
}
