package model

import (
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
)

// nullable maps the domain's empty string to SQL NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TransactionFromEntity converts a transaction entity to a database model
func TransactionFromEntity(t *entity.Transaction) *Transaction {
	return &Transaction{
		ID:                 t.ID,
		Amount:             t.Amount,
		Direction:          string(t.Direction),
		Description:        t.Description,
		Merchant:           nullable(t.Merchant),
		CounterpartyHandle: nullable(t.CounterpartyHandle),
		ReferenceNumber:    nullable(t.ReferenceNumber),
		Timestamp:          t.Timestamp,
		Category:           nullable(t.Category),
		RawMessage:         t.RawMessage,
		IsManuallyVerified: t.IsManuallyVerified,
		UserNote:           nullable(t.UserNote),
		AttachmentPath:     nullable(t.AttachmentPath),
		CreatedAt:          t.CreatedAt,
	}
}

// ToEntity converts the model back to a transaction entity
func (m *Transaction) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:                 m.ID,
		Amount:             m.Amount,
		Direction:          entity.Direction(m.Direction),
		Description:        m.Description,
		Merchant:           deref(m.Merchant),
		CounterpartyHandle: deref(m.CounterpartyHandle),
		ReferenceNumber:    deref(m.ReferenceNumber),
		Timestamp:          m.Timestamp,
		Category:           deref(m.Category),
		RawMessage:         m.RawMessage,
		IsManuallyVerified: m.IsManuallyVerified,
		UserNote:           deref(m.UserNote),
		AttachmentPath:     deref(m.AttachmentPath),
		CreatedAt:          m.CreatedAt,
	}
}

// CategoryFromEntity converts a category entity to a database model
func CategoryFromEntity(c *entity.Category) *Category {
	return &Category{
		ID:            c.ID,
		Name:          c.Name,
		Icon:          c.Icon,
		Color:         c.Color,
		MonthlyBudget: c.MonthlyBudget,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
	}
}

// ToEntity converts the model back to a category entity
func (m *Category) ToEntity() *entity.Category {
	return &entity.Category{
		ID:            m.ID,
		Name:          m.Name,
		Icon:          m.Icon,
		Color:         m.Color,
		MonthlyBudget: m.MonthlyBudget,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
	}
}
