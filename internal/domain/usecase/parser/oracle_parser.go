package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/oracle"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

// DefaultOracleTimeout bounds one extraction call
const DefaultOracleTimeout = 5 * core.Second

// oracleExtraction is the JSON object the extraction oracle is asked to produce
type oracleExtraction struct {
	IsValid         bool            `json:"isValid"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Merchant        *string         `json:"merchant"`
	UpiID           *string         `json:"upiId"`
	ReferenceNumber *string         `json:"referenceNumber"`
}

// OracleParser delegates field extraction to an ExtractionOracle.
// It fails closed: any error, timeout or unusable answer means "not a transaction".
type OracleParser struct {
	oracle       oracle.ExtractionOracle
	timeProvider core.TimeProvider
	timeout      core.Duration
	logger       core.Logger
}

// NewOracleParser creates an oracle backed parser. A non-positive timeout uses DefaultOracleTimeout.
func NewOracleParser(o oracle.ExtractionOracle, timeProvider core.TimeProvider, timeout core.Duration, logger core.Logger) *OracleParser {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	return &OracleParser{
		oracle:       o,
		timeProvider: timeProvider,
		timeout:      timeout,
		logger:       logger,
	}
}

// Parse implements usecase.MessageParser
func (p *OracleParser) Parse(ctx context.Context, message string, observedAt time.Time) (*entity.Transaction, bool) {
	if !PassesGate(message) {
		return nil, false
	}

	callCtx, cancel := p.timeProvider.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.oracle.ExtractTransaction(callCtx, message)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = errs.NewOracleError("extract", errs.ErrOracleTimeout)
		}
		p.logger.Warn("Oracle extraction failed, message dropped", map[string]any{
			"error": err.Error(),
		})
		return nil, false
	}

	tx, err := decodeExtraction(raw, message, observedAt)
	if err != nil {
		p.logger.Debug("Oracle extraction rejected", map[string]any{
			"reason": err.Error(),
		})
		return nil, false
	}
	return tx, true
}

func decodeExtraction(raw, message string, observedAt time.Time) (*entity.Transaction, error) {
	var ext oracleExtraction
	if err := json.Unmarshal([]byte(CleanModelJSON(raw)), &ext); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrMalformedOracleResponse, err.Error())
	}
	if !ext.IsValid {
		return nil, fmt.Errorf("%w: marked invalid", errs.ErrMalformedOracleResponse)
	}

	direction, err := entity.ParseDirection(ext.Type)
	if err != nil {
		return nil, err
	}

	merchant, handle, reference := optional(ext.Merchant), optional(ext.UpiID), optional(ext.ReferenceNumber)
	tx, err := entity.NewTransaction(ext.Amount, direction, message, observedAt,
		WithExtractedFields(merchant, handle, reference)...,
	)
	if err != nil {
		return nil, err
	}
	tx.Description = Describe(tx.Direction, tx.Amount, tx.Merchant, tx.CounterpartyHandle)
	return tx, nil
}

// optional treats nil, blank and the literal "null" as absent
func optional(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}

// CleanModelJSON strips markdown fences and surrounding chatter from a model answer,
// keeping the outermost JSON object
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}

var _ usecase.MessageParser = (*OracleParser)(nil)
