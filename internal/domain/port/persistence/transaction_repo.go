package persistence

import (
	"context"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
)

// TransactionRepository is the persistence gateway for parsed transactions
type TransactionRepository interface {
	// InsertIfAbsentByReference stores the transaction unless another record already carries
	// the same reference number. The check and the write are a single atomic step; this is the
	// final authority against duplicate persistence when two messages race.
	// A transaction without a reference number is always inserted.
	// On success the transaction's ID and CreatedAt are populated. When the insert is skipped,
	// inserted is false and id is the existing record's ID.
	//
	// Possible errors:
	// - ErrConstraintViolation: If a constraint other than the reference uniqueness fails
	// - ErrDatabaseConnection: If database connection fails
	InsertIfAbsentByReference(ctx context.Context, transaction *entity.Transaction) (inserted bool, id uint64, err error)

	// FindByReference retrieves the record carrying the given reference number
	//
	// Possible errors:
	// - ErrTransactionNotFound: If no record carries that reference number
	// - ErrDatabaseConnection: If database connection fails
	FindByReference(ctx context.Context, referenceNumber string) (*entity.Transaction, error)

	// GetByID retrieves a transaction by its internal ID
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.Transaction, error)

	// Update writes back mutable fields (category, verification flag, note, attachment)
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, transaction *entity.Transaction) error

	// UpdateCategoryIfUnverified sets an automatically resolved category, but only while the
	// record is still unverified and uncategorized. The check and the write are a single atomic
	// step, so a human correction stored in between is never overwritten.
	// applied is false when the record no longer qualifies.
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	UpdateCategoryIfUnverified(ctx context.Context, id uint64, category string) (applied bool, err error)

	// ListUncategorized returns up to limit records with no category that were not manually verified,
	// oldest first. Used to resume categorization interrupted after persistence.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	ListUncategorized(ctx context.Context, limit int) ([]*entity.Transaction, error)
}
