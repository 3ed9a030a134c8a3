package dedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

// Detector guards against redelivery of the same bank message.
// The lookup is an early exit; the repository's atomic insert is the final authority.
type Detector struct {
	transactionRepo persistence.TransactionRepository
}

// NewDetector creates a new duplicate detector
func NewDetector(transactionRepo persistence.TransactionRepository) *Detector {
	return &Detector{
		transactionRepo: transactionRepo,
	}
}

// IsDuplicate reports whether a record with the same reference number is already stored.
// Transactions without a reference number are never duplicates.
func (d *Detector) IsDuplicate(ctx context.Context, transaction *entity.Transaction) (bool, error) {
	_, found, err := d.FindExisting(ctx, transaction)
	return found, err
}

// FindExisting returns the stored record sharing the transaction's reference number, if any
func (d *Detector) FindExisting(ctx context.Context, transaction *entity.Transaction) (*entity.Transaction, bool, error) {
	if !transaction.HasReference() {
		return nil, false, nil
	}

	existing, err := d.transactionRepo.FindByReference(ctx, transaction.ReferenceNumber)
	if err != nil {
		if errors.Is(err, errs.ErrTransactionNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up reference %s: %w", transaction.ReferenceNumber, err)
	}

	return existing, true, nil
}

var _ usecase.DuplicateChecker = (*Detector)(nil)
