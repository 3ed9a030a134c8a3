package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/categorize"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/parser"
)

// Pipeline runs one message through gate, parse, duplicate check, categorization and persistence.
// Stages run strictly in that order; separate messages share nothing but the repositories.
type Pipeline struct {
	parser          usecase.MessageParser
	duplicates      usecase.DuplicateChecker
	categorizer     usecase.Categorizer
	transactionRepo persistence.TransactionRepository
	categoryRepo    persistence.CategoryRepository
	timeProvider    core.TimeProvider
	logger          core.Logger
}

// NewPipeline creates a new ingestion pipeline
func NewPipeline(
	messageParser usecase.MessageParser,
	duplicates usecase.DuplicateChecker,
	categorizer usecase.Categorizer,
	transactionRepo persistence.TransactionRepository,
	categoryRepo persistence.CategoryRepository,
	timeProvider core.TimeProvider,
	logger core.Logger,
) *Pipeline {
	return &Pipeline{
		parser:          messageParser,
		duplicates:      duplicates,
		categorizer:     categorizer,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// ProcessIncomingMessage ingests one notification text.
//
// Rejections and duplicates are normal outcomes and return a nil error.
// Only persistence failures, and panics recovered inside this call, return an error.
// A zero observedAt is replaced by the current time.
func (p *Pipeline) ProcessIncomingMessage(ctx context.Context, text string, observedAt time.Time) (result *usecase.IngestionResult, err error) {
	result = &usecase.IngestionResult{
		MessageID: uuid.NewString(),
		Stage:     usecase.StageReceived,
	}
	log := p.logger.With(map[string]any{"message_id": result.MessageID})

	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered panic while ingesting message", map[string]any{
				"panic": fmt.Sprint(r),
				"stage": string(result.Stage),
			})
			result.Status = usecase.StatusFailed
			err = fmt.Errorf("%w: panic at stage %s: %v", errs.ErrInternalServer, result.Stage, r)
		}
	}()

	if observedAt.IsZero() {
		observedAt = p.timeProvider.Now()
	}

	if !parser.PassesGate(text) {
		return p.reject(log, result, "gate")
	}
	result.Stage = usecase.StageGated

	tx, ok := p.parser.Parse(ctx, text, observedAt)
	if !ok {
		return p.reject(log, result, "parse")
	}
	result.Stage = usecase.StageParsed
	result.Transaction = tx

	duplicate, err := p.duplicates.IsDuplicate(ctx, tx)
	if err != nil {
		// the atomic insert below still guards against duplicates
		log.Warn("Duplicate lookup failed, relying on insert guard", map[string]any{
			"reference_number": tx.ReferenceNumber,
			"error":            err.Error(),
		})
	}
	if duplicate {
		log.Debug("Duplicate message dropped", map[string]any{
			"reference_number": tx.ReferenceNumber,
		})
		result.Stage = usecase.StageDuplicateChecked
		result.Status = usecase.StatusDuplicate
		return result, nil
	}
	result.Stage = usecase.StageDuplicateChecked

	candidates := categorize.LoadCandidates(ctx, p.categoryRepo, log)
	// freshly parsed, so never manually verified
	tx.Category = p.categorizer.Categorize(ctx, tx, candidates)
	result.Stage = usecase.StageCategorized

	if err := ctx.Err(); err != nil {
		result.Status = usecase.StatusFailed
		return result, errs.NewTransactionError("persist", 0, tx.ReferenceNumber, "canceled before write", err)
	}

	inserted, id, err := p.transactionRepo.InsertIfAbsentByReference(ctx, tx)
	if err != nil {
		result.Status = usecase.StatusFailed
		txErr := errs.NewTransactionError("persist", 0, tx.ReferenceNumber, "insert failed", err)
		log.Error("Failed to persist transaction", txErr.(*errs.TransactionError).LogFields())
		return result, txErr
	}
	if !inserted {
		log.Debug("Duplicate message lost insert race", map[string]any{
			"reference_number": tx.ReferenceNumber,
			"existing_id":      id,
		})
		result.Status = usecase.StatusDuplicate
		return result, nil
	}

	tx.ID = id
	result.Stage = usecase.StagePersisted
	result.Status = usecase.StatusPersisted
	log.Info("Transaction recorded", map[string]any{
		"transaction_id":   tx.ID,
		"direction":        string(tx.Direction),
		"amount":           tx.Amount.StringFixed(2),
		"category":         tx.Category,
		"reference_number": tx.ReferenceNumber,
	})
	return result, nil
}

func (p *Pipeline) reject(log core.Logger, result *usecase.IngestionResult, reason string) (*usecase.IngestionResult, error) {
	log.Debug("Message is not a transaction", map[string]any{
		"reason": reason,
	})
	result.Status = usecase.StatusRejected
	return result, nil
}

var _ usecase.IngestionUseCase = (*Pipeline)(nil)
