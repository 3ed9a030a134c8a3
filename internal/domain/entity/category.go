package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
)

// DefaultCategory is the bucket used when nothing else matches. It always exists.
const DefaultCategory = "Others"

// Category is a spending label. Names are unique ignoring case.
// Inactive categories stay attached to historical records but are never offered as candidates.
type Category struct {
	ID            uint64
	Name          string
	Icon          string
	Color         string
	MonthlyBudget *decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
}

// NewCategory creates an active category
func NewCategory(name, icon, color string, monthlyBudget *decimal.Decimal) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", errs.ErrInvalidRequest)
	}
	if monthlyBudget != nil && monthlyBudget.IsNegative() {
		return nil, fmt.Errorf("%w: monthly budget cannot be negative", errs.ErrInvalidAmount)
	}
	return &Category{
		Name:          name,
		Icon:          icon,
		Color:         color,
		MonthlyBudget: monthlyBudget,
		IsActive:      true,
	}, nil
}

// MatchesName compares names case-insensitively
func (c *Category) MatchesName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), c.Name)
}

// CategoryNames extracts names preserving order
func CategoryNames(categories []*Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

func budget(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// DefaultCategories returns the categories seeded into a fresh store
func DefaultCategories() []*Category {
	return []*Category{
		{Name: "Food & Dining", Icon: "restaurant", Color: "#FF6B6B", MonthlyBudget: budget(5000), IsActive: true},
		{Name: "Shopping", Icon: "shopping_cart", Color: "#4ECDC4", MonthlyBudget: budget(10000), IsActive: true},
		{Name: "Transportation", Icon: "directions_car", Color: "#45B7D1", MonthlyBudget: budget(3000), IsActive: true},
		{Name: "Bills & Utilities", Icon: "receipt", Color: "#96CEB4", IsActive: true},
		{Name: "Entertainment", Icon: "movie", Color: "#DDA0DD", MonthlyBudget: budget(2000), IsActive: true},
		{Name: "Healthcare", Icon: "local_hospital", Color: "#F7A072", IsActive: true},
		{Name: "Education", Icon: "school", Color: "#7FB3D5", IsActive: true},
		{Name: "Groceries", Icon: "local_grocery_store", Color: "#82E0AA", IsActive: true},
		{Name: "Investment", Icon: "trending_up", Color: "#F4D03F", IsActive: true},
		{Name: DefaultCategory, Icon: "category", Color: "#B2BABB", IsActive: true},
	}
}
