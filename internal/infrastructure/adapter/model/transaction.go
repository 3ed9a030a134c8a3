package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents the database model for parsed payments
type Transaction struct {
	ID                 uint64          `gorm:"primaryKey;autoIncrement"`
	Amount             decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Direction          string          `gorm:"not null;size:10"`
	Description        string          `gorm:"not null;type:text"`
	Merchant           *string         `gorm:"size:255"`
	CounterpartyHandle *string         `gorm:"size:255"`
	ReferenceNumber    *string         `gorm:"size:64;uniqueIndex:idx_transactions_reference_number"` // NULLs never collide
	Timestamp          time.Time       `gorm:"column:occurred_at;not null;index"`
	Category           *string         `gorm:"size:100"`
	RawMessage         string          `gorm:"not null;type:text"`
	IsManuallyVerified bool            `gorm:"not null;default:false"`
	UserNote           *string         `gorm:"type:text"`
	AttachmentPath     *string         `gorm:"size:512"`
	CreatedAt          time.Time       `gorm:"not null"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
