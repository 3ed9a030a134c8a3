package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
)

// Store keeps transactions and categories in memory and is safe for concurrent use.
// Data is lost on restart; it backs tests and the "memory" database driver.
type Store struct {
	timeProvider core.TimeProvider

	mu           sync.RWMutex
	nextTxID     uint64
	nextCatID    uint64
	transactions map[uint64]*entity.Transaction
	byReference  map[string]uint64
	categories   map[string]*entity.Category // keyed by lower-cased name
}

// NewStore creates an empty store
func NewStore(timeProvider core.TimeProvider) *Store {
	return &Store{
		timeProvider: timeProvider,
		transactions: make(map[uint64]*entity.Transaction),
		byReference:  make(map[string]uint64),
		categories:   make(map[string]*entity.Category),
	}
}

// NewSeededStore creates a store holding the default categories
func NewSeededStore(timeProvider core.TimeProvider) *Store {
	s := NewStore(timeProvider)
	for _, c := range entity.DefaultCategories() {
		_ = s.Create(context.Background(), c)
	}
	return s
}

// InsertIfAbsentByReference implements persistence.TransactionRepository
func (s *Store) InsertIfAbsentByReference(ctx context.Context, transaction *entity.Transaction) (bool, uint64, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if transaction.HasReference() {
		if id, exists := s.byReference[transaction.ReferenceNumber]; exists {
			return false, id, nil
		}
	}

	s.nextTxID++
	transaction.ID = s.nextTxID
	transaction.CreatedAt = s.timeProvider.Now()

	s.transactions[transaction.ID] = transaction.Clone()
	if transaction.HasReference() {
		s.byReference[transaction.ReferenceNumber] = transaction.ID
	}
	return true, transaction.ID, nil
}

// FindByReference implements persistence.TransactionRepository
func (s *Store) FindByReference(ctx context.Context, referenceNumber string) (*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byReference[referenceNumber]
	if !exists {
		return nil, errs.ErrTransactionNotFound
	}
	return s.transactions[id].Clone(), nil
}

// GetByID implements persistence.TransactionRepository
func (s *Store) GetByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[id]
	if !exists {
		return nil, errs.ErrTransactionNotFound
	}
	return tx.Clone(), nil
}

// Update implements persistence.TransactionRepository.
// Only the mutable fields are written back.
func (s *Store) Update(ctx context.Context, transaction *entity.Transaction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.transactions[transaction.ID]
	if !exists {
		return errs.ErrTransactionNotFound
	}
	stored.Category = transaction.Category
	stored.IsManuallyVerified = transaction.IsManuallyVerified
	stored.UserNote = transaction.UserNote
	stored.AttachmentPath = transaction.AttachmentPath
	return nil
}

// UpdateCategoryIfUnverified implements persistence.TransactionRepository
func (s *Store) UpdateCategoryIfUnverified(ctx context.Context, id uint64, category string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.transactions[id]
	if !exists {
		return false, errs.ErrTransactionNotFound
	}
	if stored.IsManuallyVerified || stored.IsCategorized() {
		return false, nil
	}
	stored.Category = category
	return true, nil
}

// ListUncategorized implements persistence.TransactionRepository
func (s *Store) ListUncategorized(ctx context.Context, limit int) ([]*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entity.Transaction
	for _, tx := range s.transactions {
		if tx.IsCategorized() || tx.IsManuallyVerified {
			continue
		}
		result = append(result, tx.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the number of stored transactions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

// ListActiveCategories implements persistence.CategoryRepository
func (s *Store) ListActiveCategories(ctx context.Context) ([]*entity.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entity.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if !c.IsActive {
			continue
		}
		copied := *c
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// FindByName implements persistence.CategoryRepository
func (s *Store) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.categories[categoryKey(name)]
	if !exists {
		return nil, errs.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

// FindByID implements persistence.CategoryRepository
func (s *Store) FindByID(ctx context.Context, id uint64) (*entity.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.categoryByID(id)
	if !exists {
		return nil, errs.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

// SetActive implements persistence.CategoryRepository
func (s *Store) SetActive(ctx context.Context, id uint64, active bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.categoryByID(id)
	if !exists {
		return errs.ErrCategoryNotFound
	}
	c.IsActive = active
	return nil
}

// categoryByID scans the name index; callers hold the lock
func (s *Store) categoryByID(id uint64) (*entity.Category, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Create implements persistence.CategoryRepository
func (s *Store) Create(ctx context.Context, category *entity.Category) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseConnection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := categoryKey(category.Name)
	if _, exists := s.categories[key]; exists {
		return fmt.Errorf("%w: category %q already exists", errs.ErrConstraintViolation, category.Name)
	}

	s.nextCatID++
	category.ID = s.nextCatID
	category.CreatedAt = s.timeProvider.Now()
	copied := *category
	s.categories[key] = &copied
	return nil
}

func categoryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var (
	_ persistence.TransactionRepository = (*Store)(nil)
	_ persistence.CategoryRepository    = (*Store)(nil)
)
