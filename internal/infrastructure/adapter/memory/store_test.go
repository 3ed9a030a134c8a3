package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	timeadapter "github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/time"
)

var now = time.Date(2023, 12, 15, 9, 45, 0, 0, time.UTC)

func newTx(t *testing.T, ref string) *entity.Transaction {
	t.Helper()
	tx, err := entity.NewTransaction(decimal.NewFromInt(100), entity.DirectionDebit, "raw", now,
		entity.WithReferenceNumber(ref))
	require.NoError(t, err)
	return tx
}

func TestStore_InsertIfAbsentByReference(t *testing.T) {
	s := NewStore(timeadapter.NewFixedTimeProvider(now))
	ctx := context.Background()

	first := newTx(t, "REF1")
	inserted, id, err := s.InsertIfAbsentByReference(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, id, first.ID)
	assert.Equal(t, now, first.CreatedAt)

	inserted, existing, err := s.InsertIfAbsentByReference(ctx, newTx(t, "REF1"))
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, id, existing)

	// no reference means no dedup key
	for i := 0; i < 2; i++ {
		inserted, _, err = s.InsertIfAbsentByReference(ctx, newTx(t, ""))
		require.NoError(t, err)
		assert.True(t, inserted)
	}
	assert.Equal(t, 3, s.Count())
}

func TestStore_ConcurrentInsertSameReference(t *testing.T) {
	s := NewStore(timeadapter.NewFixedTimeProvider(now))

	var wg sync.WaitGroup
	var mu sync.Mutex
	insertedCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, _, err := s.InsertIfAbsentByReference(context.Background(), newTx(t, "RACE"))
			assert.NoError(t, err)
			if inserted {
				mu.Lock()
				insertedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, insertedCount)
	assert.Equal(t, 1, s.Count())
}

func TestStore_LookupsReturnCopies(t *testing.T) {
	s := NewStore(timeadapter.NewFixedTimeProvider(now))
	ctx := context.Background()

	tx := newTx(t, "REF2")
	_, id, err := s.InsertIfAbsentByReference(ctx, tx)
	require.NoError(t, err)
	tx.Category = "mutated after insert"

	found, err := s.FindByReference(ctx, "REF2")
	require.NoError(t, err)
	assert.Empty(t, found.Category)

	found.Category = "Shopping"
	again, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, again.Category)

	_, err = s.FindByReference(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
	_, err = s.GetByID(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
}

func TestStore_UpdateAndListUncategorized(t *testing.T) {
	s := NewStore(timeadapter.NewFixedTimeProvider(now))
	ctx := context.Background()

	for _, ref := range []string{"A", "B", "C"} {
		_, _, err := s.InsertIfAbsentByReference(ctx, newTx(t, ref))
		require.NoError(t, err)
	}

	b, err := s.FindByReference(ctx, "B")
	require.NoError(t, err)
	b.Category = "Shopping"
	b.Amount = decimal.NewFromInt(1)
	require.NoError(t, s.Update(ctx, b))

	stored, err := s.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", stored.Category)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(100)), "amount is immutable")

	pending, err := s.ListUncategorized(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "A", pending[0].ReferenceNumber)
	assert.Equal(t, "C", pending[1].ReferenceNumber)

	limited, err := s.ListUncategorized(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.ErrorIs(t, s.Update(ctx, &entity.Transaction{ID: 404}), errs.ErrTransactionNotFound)
}

func TestStore_UpdateCategoryIfUnverified(t *testing.T) {
	s := NewStore(timeadapter.NewFixedTimeProvider(now))
	ctx := context.Background()

	pending, verified := newTx(t, "P"), newTx(t, "V")
	for _, tx := range []*entity.Transaction{pending, verified} {
		_, _, err := s.InsertIfAbsentByReference(ctx, tx)
		require.NoError(t, err)
	}
	verified.MarkManuallyVerified("Healthcare")
	require.NoError(t, s.Update(ctx, verified))

	applied, err := s.UpdateCategoryIfUnverified(ctx, pending.ID, "Shopping")
	require.NoError(t, err)
	assert.True(t, applied)

	// already categorized now
	applied, err = s.UpdateCategoryIfUnverified(ctx, pending.ID, "Groceries")
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = s.UpdateCategoryIfUnverified(ctx, verified.ID, "Shopping")
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := s.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", stored.Category)
	stored, err = s.GetByID(ctx, verified.ID)
	require.NoError(t, err)
	assert.Equal(t, "Healthcare", stored.Category)
	assert.True(t, stored.IsManuallyVerified)

	_, err = s.UpdateCategoryIfUnverified(ctx, 404, "Shopping")
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
}

func TestStore_Categories(t *testing.T) {
	s := NewSeededStore(timeadapter.NewFixedTimeProvider(now))
	ctx := context.Background()

	active, err := s.ListActiveCategories(ctx)
	require.NoError(t, err)
	require.Len(t, active, len(entity.DefaultCategories()))
	for i := 1; i < len(active); i++ {
		assert.Less(t, active[i-1].Name, active[i].Name)
	}

	found, err := s.FindByName(ctx, "food & dining")
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", found.Name)

	dup, err := entity.NewCategory("SHOPPING", "", "", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Create(ctx, dup), errs.ErrConstraintViolation)

	_, err = s.FindByName(ctx, "Travel")
	assert.ErrorIs(t, err, errs.ErrCategoryNotFound)

	inactive, err := entity.NewCategory("Archived", "", "", nil)
	require.NoError(t, err)
	inactive.IsActive = false
	require.NoError(t, s.Create(ctx, inactive))

	active, err = s.ListActiveCategories(ctx)
	require.NoError(t, err)
	assert.NotContains(t, entity.CategoryNames(active), "Archived")
}

func TestStore_SetActive(t *testing.T) {
	s := NewSeededStore(timeadapter.NewFixedTimeProvider(now))
	ctx := context.Background()

	shopping, err := s.FindByName(ctx, "Shopping")
	require.NoError(t, err)

	require.NoError(t, s.SetActive(ctx, shopping.ID, false))
	active, err := s.ListActiveCategories(ctx)
	require.NoError(t, err)
	assert.NotContains(t, entity.CategoryNames(active), "Shopping")

	byID, err := s.FindByID(ctx, shopping.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", byID.Name)
	assert.False(t, byID.IsActive)

	require.NoError(t, s.SetActive(ctx, shopping.ID, true))
	active, err = s.ListActiveCategories(ctx)
	require.NoError(t, err)
	assert.Contains(t, entity.CategoryNames(active), "Shopping")

	assert.ErrorIs(t, s.SetActive(ctx, 404, false), errs.ErrCategoryNotFound)
	_, err = s.FindByID(ctx, 404)
	assert.ErrorIs(t, err, errs.ErrCategoryNotFound)
}

func TestStore_CanceledContext(t *testing.T) {
	s := NewStore(timeadapter.NewFixedTimeProvider(now))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.InsertIfAbsentByReference(ctx, newTx(t, "X"))
	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	assert.Zero(t, s.Count())
}
