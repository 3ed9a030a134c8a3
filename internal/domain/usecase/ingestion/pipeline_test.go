package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/categorize"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/dedup"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/parser"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/time"
	coremocks "github.com/amirhossein-jamali/upi-tracker/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/upi-tracker/mocks/port/persistence"
)

const (
	sbiMessage      = "Dear Customer, Rs.1,500.00 debited from your a/c XXXXXXX1234 on 15-12-23 to UPI ID swiggy@paytm. Ref No. 334512345678."
	otpMessage      = "Your OTP for login is 482913. Do not share it with anyone."
	noReferenceText = "Rs.250 credited to your account via UPI"
)

var observedAt = time.Date(2023, 12, 15, 9, 45, 0, 0, time.UTC)

type pipelineFixture struct {
	pipeline *Pipeline
	store    *memory.Store
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	clock := timeadapter.NewFixedTimeProvider(observedAt)
	store := memory.NewSeededStore(clock)
	logger := coremocks.NewMockLogger(t).Quiet()
	engine := categorize.NewEngine(categorize.NewRuleClassifier(), nil, clock, 0, logger)

	return &pipelineFixture{
		pipeline: NewPipeline(parser.NewPatternParser(), dedup.NewDetector(store), engine, store, store, clock, logger),
		store:    store,
	}
}

func TestPipeline_PersistsCategorizedTransaction(t *testing.T) {
	f := newPipelineFixture(t)

	result, err := f.pipeline.ProcessIncomingMessage(context.Background(), sbiMessage, observedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, result.MessageID)
	assert.Equal(t, usecase.StatusPersisted, result.Status)
	assert.Equal(t, usecase.StagePersisted, result.Stage)
	require.NotNil(t, result.Transaction)
	assert.NotZero(t, result.Transaction.ID)

	stored, err := f.store.FindByReference(context.Background(), "334512345678")
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", stored.Category)
	assert.Equal(t, "Paid ₹1500.00 to Swiggy", stored.Description)
	assert.Equal(t, entity.DirectionDebit, stored.Direction)
	assert.Equal(t, observedAt, stored.Timestamp)
}

func TestPipeline_RedeliveryIsDuplicate(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	first, err := f.pipeline.ProcessIncomingMessage(ctx, sbiMessage, observedAt)
	require.NoError(t, err)
	second, err := f.pipeline.ProcessIncomingMessage(ctx, sbiMessage, observedAt.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, usecase.StatusPersisted, first.Status)
	assert.Equal(t, usecase.StatusDuplicate, second.Status)
	assert.NotEqual(t, first.MessageID, second.MessageID)
	assert.Equal(t, 1, f.store.Count())
}

func TestPipeline_ConcurrentRedeliveriesPersistOnce(t *testing.T) {
	f := newPipelineFixture(t)

	const deliveries = 20
	statuses := make(chan usecase.Status, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.pipeline.ProcessIncomingMessage(context.Background(), sbiMessage, observedAt)
			assert.NoError(t, err)
			statuses <- result.Status
		}()
	}
	wg.Wait()
	close(statuses)

	persisted := 0
	for s := range statuses {
		if s == usecase.StatusPersisted {
			persisted++
		} else {
			assert.Equal(t, usecase.StatusDuplicate, s)
		}
	}
	assert.Equal(t, 1, persisted)
	assert.Equal(t, 1, f.store.Count())
}

func TestPipeline_RejectsNonTransactionMessages(t *testing.T) {
	testCases := []struct {
		name    string
		message string
		stage   usecase.Stage
	}{
		{"otp", otpMessage, usecase.StageReceived},
		{"empty", "", usecase.StageReceived},
		{"no amount", "Amount debited from your account via UPI", usecase.StageGated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPipelineFixture(t)

			result, err := f.pipeline.ProcessIncomingMessage(context.Background(), tc.message, observedAt)
			require.NoError(t, err)

			assert.Equal(t, usecase.StatusRejected, result.Status)
			assert.Equal(t, tc.stage, result.Stage)
			assert.Nil(t, result.Transaction)
			assert.Zero(t, f.store.Count())
		})
	}
}

func TestPipeline_MessagesWithoutReferenceAreNotDeduplicated(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := f.pipeline.ProcessIncomingMessage(ctx, noReferenceText, observedAt)
		require.NoError(t, err)
		assert.Equal(t, usecase.StatusPersisted, result.Status)
		assert.Equal(t, entity.DirectionCredit, result.Transaction.Direction)
	}
	assert.Equal(t, 2, f.store.Count())
}

func TestPipeline_ZeroObservedAtUsesClock(t *testing.T) {
	f := newPipelineFixture(t)

	result, err := f.pipeline.ProcessIncomingMessage(context.Background(), sbiMessage, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, observedAt, result.Transaction.Timestamp)
}

func TestPipeline_CanceledContextPersistsNothing(t *testing.T) {
	f := newPipelineFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.pipeline.ProcessIncomingMessage(ctx, sbiMessage, observedAt)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, usecase.StatusFailed, result.Status)
	assert.Zero(t, f.store.Count())
}

func TestPipeline_PersistenceFailureIsSurfaced(t *testing.T) {
	clock := timeadapter.NewFixedTimeProvider(observedAt)
	logger := coremocks.NewMockLogger(t).Quiet()
	categories := memory.NewSeededStore(clock)

	repo := persistencemocks.NewMockTransactionRepository(t)
	repo.On("FindByReference", mock.Anything, "334512345678").Return(nil, errs.ErrTransactionNotFound).Once()
	repo.On("InsertIfAbsentByReference", mock.Anything, mock.AnythingOfType("*entity.Transaction")).
		Return(false, uint64(0), errs.ErrDatabaseConnection).Once()

	engine := categorize.NewEngine(categorize.NewRuleClassifier(), nil, clock, 0, logger)
	p := NewPipeline(parser.NewPatternParser(), dedup.NewDetector(repo), engine, repo, categories, clock, logger)

	result, err := p.ProcessIncomingMessage(context.Background(), sbiMessage, observedAt)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	assert.Equal(t, usecase.StatusFailed, result.Status)
	assert.Equal(t, usecase.StageCategorized, result.Stage)

	var txErr *errs.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, "334512345678", txErr.ReferenceNumber)
}

func TestPipeline_InsertGuardCatchesMissedDuplicate(t *testing.T) {
	clock := timeadapter.NewFixedTimeProvider(observedAt)
	logger := coremocks.NewMockLogger(t).Quiet()
	categories := memory.NewSeededStore(clock)

	repo := persistencemocks.NewMockTransactionRepository(t)
	repo.On("FindByReference", mock.Anything, "334512345678").Return(nil, errs.ErrDatabaseConnection).Once()
	repo.On("InsertIfAbsentByReference", mock.Anything, mock.AnythingOfType("*entity.Transaction")).
		Return(false, uint64(7), nil).Once()

	engine := categorize.NewEngine(categorize.NewRuleClassifier(), nil, clock, 0, logger)
	p := NewPipeline(parser.NewPatternParser(), dedup.NewDetector(repo), engine, repo, categories, clock, logger)

	result, err := p.ProcessIncomingMessage(context.Background(), sbiMessage, observedAt)
	require.NoError(t, err)
	assert.Equal(t, usecase.StatusDuplicate, result.Status)
}

type panickingParser struct{}

func (panickingParser) Parse(context.Context, string, time.Time) (*entity.Transaction, bool) {
	panic("boom")
}

func TestPipeline_RecoversPanics(t *testing.T) {
	clock := timeadapter.NewFixedTimeProvider(observedAt)
	store := memory.NewSeededStore(clock)
	logger := coremocks.NewMockLogger(t).Quiet()
	engine := categorize.NewEngine(categorize.NewRuleClassifier(), nil, clock, 0, logger)

	p := NewPipeline(panickingParser{}, dedup.NewDetector(store), engine, store, store, clock, logger)

	result, err := p.ProcessIncomingMessage(context.Background(), sbiMessage, observedAt)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInternalServer)
	assert.Equal(t, usecase.StatusFailed, result.Status)
	assert.Equal(t, usecase.StageGated, result.Stage)
	assert.Zero(t, store.Count())
}

var _ persistence.TransactionRepository = (*persistencemocks.MockTransactionRepository)(nil)
