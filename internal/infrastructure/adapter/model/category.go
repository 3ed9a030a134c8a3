package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category represents the database model for spending categories.
// Case-insensitive uniqueness of Name is enforced by a functional index created in migrations.
type Category struct {
	ID            uint64           `gorm:"primaryKey;autoIncrement"`
	Name          string           `gorm:"not null;size:100"`
	Icon          string           `gorm:"size:64"`
	Color         string           `gorm:"size:16"`
	MonthlyBudget *decimal.Decimal `gorm:"type:numeric(14,2)"`
	IsActive      bool             `gorm:"not null;default:true;index"`
	CreatedAt     time.Time        `gorm:"not null"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}
