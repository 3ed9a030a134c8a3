package dto

import (
	"time"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
)

// TransactionResponse represents a stored or parsed transaction
type TransactionResponse struct {
	ID                 uint64     `json:"id,omitempty"`
	Amount             string     `json:"amount"`
	Direction          string     `json:"direction"`
	Description        string     `json:"description"`
	Merchant           string     `json:"merchant,omitempty"`
	CounterpartyHandle string     `json:"upiId,omitempty"`
	ReferenceNumber    string     `json:"referenceNumber,omitempty"`
	Timestamp          time.Time  `json:"timestamp"`
	Category           string     `json:"category,omitempty"`
	IsManuallyVerified bool       `json:"isManuallyVerified"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
}

// NewTransactionResponse maps a domain transaction; the raw message is never echoed back
func NewTransactionResponse(tx *entity.Transaction) *TransactionResponse {
	if tx == nil {
		return nil
	}
	resp := &TransactionResponse{
		ID:                 tx.ID,
		Amount:             tx.Amount.StringFixed(entity.MaxDecimalPlaces),
		Direction:          string(tx.Direction),
		Description:        tx.Description,
		Merchant:           tx.Merchant,
		CounterpartyHandle: tx.CounterpartyHandle,
		ReferenceNumber:    tx.ReferenceNumber,
		Timestamp:          tx.Timestamp,
		Category:           tx.Category,
		IsManuallyVerified: tx.IsManuallyVerified,
	}
	if !tx.CreatedAt.IsZero() {
		createdAt := tx.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

// CategoryUpdateRequest is the body of a manual category correction
type CategoryUpdateRequest struct {
	Category string `json:"category" binding:"required"`
}

// RecategorizeResponse reports how many pending records were categorized
type RecategorizeResponse struct {
	Updated int `json:"updated"`
}
