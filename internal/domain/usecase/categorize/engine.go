package categorize

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/oracle"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

// DefaultOracleTimeout bounds one categorization call to the oracle
const DefaultOracleTimeout = 3 * core.Second

// Engine categorizes transactions with the semantic oracle first and the keyword rules as fallback
type Engine struct {
	rules        *RuleClassifier
	oracle       oracle.CategoryOracle
	timeProvider core.TimeProvider
	timeout      core.Duration
	logger       core.Logger
}

// NewEngine creates a categorization engine. The oracle may be nil, in which case
// only the rule tier is used. A non-positive timeout uses DefaultOracleTimeout.
func NewEngine(
	rules *RuleClassifier,
	o oracle.CategoryOracle,
	timeProvider core.TimeProvider,
	timeout core.Duration,
	logger core.Logger,
) *Engine {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	return &Engine{
		rules:        rules,
		oracle:       o,
		timeProvider: timeProvider,
		timeout:      timeout,
		logger:       logger,
	}
}

// Categorize returns a category for the transaction, chosen among candidates when given.
// A manually verified transaction keeps its category.
func (e *Engine) Categorize(ctx context.Context, transaction *entity.Transaction, candidates []string) string {
	if transaction.IsManuallyVerified {
		return transaction.Category
	}

	universe := candidates
	if len(universe) == 0 {
		universe = e.rules.CategoryNames()
	}

	if e.oracle != nil {
		if name, ok := e.askOracle(ctx, transaction, universe); ok {
			return name
		}
	}

	return e.rules.ClassifyWithin(transaction.Description, transaction.Merchant, candidates)
}

// Assign categorizes the transaction in place
//
// Possible errors:
// - ErrManuallyVerified: If the transaction category was set by a human
func (e *Engine) Assign(ctx context.Context, transaction *entity.Transaction, candidates []string) error {
	if transaction.IsManuallyVerified {
		return errs.ErrManuallyVerified
	}
	return transaction.ApplyCategory(e.Categorize(ctx, transaction, candidates))
}

func (e *Engine) askOracle(ctx context.Context, transaction *entity.Transaction, universe []string) (string, bool) {
	callCtx, cancel := e.timeProvider.WithTimeout(ctx, e.timeout)
	defer cancel()

	answer, err := e.oracle.SuggestCategory(callCtx, oracle.CategoryQuery{
		Description: transaction.Description,
		Merchant:    transaction.Merchant,
		Amount:      transaction.Amount,
		Candidates:  universe,
	})
	if err != nil {
		e.logOracleFailure(callCtx, err)
		return "", false
	}

	name, ok := ResolveOracleAnswer(answer, universe)
	if !ok {
		e.logger.Debug("Oracle answer did not match any category", map[string]any{
			"answer": answer,
		})
		return "", false
	}
	return name, true
}

func (e *Engine) logOracleFailure(ctx context.Context, err error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, errs.ErrOracleTimeout) {
		err = errs.NewOracleError("categorize", errs.ErrOracleTimeout)
	}

	fields := map[string]any{"error": err.Error()}
	if errors.Is(err, errs.ErrOracleUnavailable) {
		e.logger.Debug("Oracle unavailable, using keyword rules", fields)
		return
	}
	e.logger.Warn("Oracle categorization failed, using keyword rules", fields)
}

var _ usecase.Categorizer = (*Engine)(nil)
