package dto

import "github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"

// CategoryResponse represents a category
type CategoryResponse struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	Icon          string  `json:"icon,omitempty"`
	Color         string  `json:"color,omitempty"`
	MonthlyBudget *string `json:"monthlyBudget,omitempty"`
	IsActive      bool    `json:"isActive"`
}

// NewCategoryResponse maps a domain category
func NewCategoryResponse(c *entity.Category) CategoryResponse {
	resp := CategoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color, IsActive: c.IsActive}
	if c.MonthlyBudget != nil {
		budget := c.MonthlyBudget.StringFixed(entity.MaxDecimalPlaces)
		resp.MonthlyBudget = &budget
	}
	return resp
}

// NewCategoryResponses maps domain categories in order
func NewCategoryResponses(categories []*entity.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}

// CreateCategoryRequest is the body of POST /api/v1/categories.
// MonthlyBudget is a decimal string such as "5000.00".
type CreateCategoryRequest struct {
	Name          string  `json:"name" binding:"required"`
	Icon          string  `json:"icon"`
	Color         string  `json:"color"`
	MonthlyBudget *string `json:"monthlyBudget"`
}

// CategoryStateRequest switches a category on or off
type CategoryStateRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// HealthResponse reports dependency status
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Oracle   string `json:"oracle"`
}
