package categorize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/upi-tracker/mocks/port/core"
	mockpersistence "github.com/amirhossein-jamali/upi-tracker/mocks/port/persistence"
)

func activeCategories() []*entity.Category {
	return []*entity.Category{
		{ID: 1, Name: "Food & Dining", IsActive: true},
		{ID: 2, Name: "Groceries", IsActive: true},
	}
}

func TestFeedbackRecorder_RecordCorrection(t *testing.T) {
	testCases := []struct {
		name          string
		category      string
		mockSetup     func(txRepo *mockpersistence.MockTransactionRepository, catRepo *mockpersistence.MockCategoryRepository)
		expected      string
		expectedError error
	}{
		{
			name:     "active category stored with canonical spelling",
			category: "groceries",
			mockSetup: func(txRepo *mockpersistence.MockTransactionRepository, catRepo *mockpersistence.MockCategoryRepository) {
				catRepo.On("ListActiveCategories", mock.Anything).Return(activeCategories(), nil)
				txRepo.On("GetByID", mock.Anything, uint64(7)).Return(&entity.Transaction{ID: 7, Category: "Food & Dining"}, nil)
				txRepo.On("Update", mock.Anything, mock.MatchedBy(func(tx *entity.Transaction) bool {
					return tx.Category == "Groceries" && tx.IsManuallyVerified
				})).Return(nil)
			},
			expected: "Groceries",
		},
		{
			name:     "default bucket is always accepted",
			category: "others",
			mockSetup: func(txRepo *mockpersistence.MockTransactionRepository, catRepo *mockpersistence.MockCategoryRepository) {
				txRepo.On("GetByID", mock.Anything, uint64(7)).Return(&entity.Transaction{ID: 7}, nil)
				txRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
			},
			expected: entity.DefaultCategory,
		},
		{
			name:     "unknown category",
			category: "Travel",
			mockSetup: func(txRepo *mockpersistence.MockTransactionRepository, catRepo *mockpersistence.MockCategoryRepository) {
				catRepo.On("ListActiveCategories", mock.Anything).Return(activeCategories(), nil)
			},
			expectedError: errs.ErrCategoryNotFound,
		},
		{
			name:     "unknown transaction",
			category: "Groceries",
			mockSetup: func(txRepo *mockpersistence.MockTransactionRepository, catRepo *mockpersistence.MockCategoryRepository) {
				catRepo.On("ListActiveCategories", mock.Anything).Return(activeCategories(), nil)
				txRepo.On("GetByID", mock.Anything, uint64(7)).Return(nil, errs.ErrTransactionNotFound)
			},
			expectedError: errs.ErrTransactionNotFound,
		},
		{
			name:     "update failure",
			category: "Groceries",
			mockSetup: func(txRepo *mockpersistence.MockTransactionRepository, catRepo *mockpersistence.MockCategoryRepository) {
				catRepo.On("ListActiveCategories", mock.Anything).Return(activeCategories(), nil)
				txRepo.On("GetByID", mock.Anything, uint64(7)).Return(&entity.Transaction{ID: 7}, nil)
				txRepo.On("Update", mock.Anything, mock.Anything).Return(errs.ErrDatabaseConnection)
			},
			expectedError: errs.ErrDatabaseConnection,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			txRepo := mockpersistence.NewMockTransactionRepository(t)
			catRepo := mockpersistence.NewMockCategoryRepository(t)
			tc.mockSetup(txRepo, catRepo)

			recorder := NewFeedbackRecorder(txRepo, catRepo, coremocks.NewMockLogger(t).Quiet())
			tx, err := recorder.RecordCorrection(context.Background(), 7, tc.category)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, tx)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, tx.Category)
			assert.True(t, tx.IsManuallyVerified)
		})
	}
}

func TestFeedbackThenCategorizeKeepsCorrection(t *testing.T) {
	txRepo := mockpersistence.NewMockTransactionRepository(t)
	catRepo := mockpersistence.NewMockCategoryRepository(t)
	stored := swiggyTransaction(t)
	stored.ID = 3

	catRepo.On("ListActiveCategories", mock.Anything).Return(activeCategories(), nil)
	txRepo.On("GetByID", mock.Anything, uint64(3)).Return(stored, nil)
	txRepo.On("Update", mock.Anything, stored).Return(nil)

	_, err := NewFeedbackRecorder(txRepo, catRepo, coremocks.NewMockLogger(t).Quiet()).
		RecordCorrection(context.Background(), 3, "Groceries")
	require.NoError(t, err)

	engine := newEngineForTest(t, nil, 0)
	assert.Equal(t, "Groceries", engine.Categorize(context.Background(), stored, []string{"Food & Dining", "Groceries"}))
}
