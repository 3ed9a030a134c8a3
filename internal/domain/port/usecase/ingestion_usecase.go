package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
)

// Stage is the last pipeline state a message reached
type Stage string

// Pipeline stages, in order
const (
	StageReceived         Stage = "received"
	StageGated            Stage = "gated"
	StageParsed           Stage = "parsed"
	StageDuplicateChecked Stage = "duplicate_checked"
	StageCategorized      Stage = "categorized"
	StagePersisted        Stage = "persisted"
)

// Status is the terminal outcome of one message
type Status string

// Terminal outcomes. Rejected and Duplicate are expected and silent.
const (
	StatusPersisted Status = "persisted"
	StatusRejected  Status = "rejected"
	StatusDuplicate Status = "duplicate"
	StatusFailed    Status = "failed"
)

// IngestionResult describes how one message left the pipeline
type IngestionResult struct {
	MessageID   string
	Stage       Stage
	Status      Status
	Transaction *entity.Transaction
}

// MessageParser turns raw notification text into a transaction, or nothing
type MessageParser interface {
	Parse(ctx context.Context, message string, observedAt time.Time) (*entity.Transaction, bool)
}

// DuplicateChecker decides whether a candidate was already recorded
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, transaction *entity.Transaction) (bool, error)
}

// IngestionUseCase runs the full gate, parse, dedup, categorize, persist sequence for one message
type IngestionUseCase interface {
	ProcessIncomingMessage(ctx context.Context, text string, observedAt time.Time) (*IngestionResult, error)
}
