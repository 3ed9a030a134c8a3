package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	oracleport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/oracle"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/config"
)

// Backend names accepted in oracle.backend
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiOracle answers category and extraction prompts with a Gemini model
type GeminiOracle struct {
	generate generateFunc
	model    string
	logger   coreport.Logger
}

// NewLoader returns a Loader that builds a GeminiOracle from cfg.
// Nothing is contacted until the loader runs.
func NewLoader(cfg config.OracleConfig, logger coreport.Logger) oracleport.Loader {
	if !cfg.Enabled {
		return nil
	}
	return func(ctx context.Context) (oracleport.Backend, error) {
		return NewGeminiOracle(ctx, cfg, logger)
	}
}

// NewGeminiOracle creates the genai client
func NewGeminiOracle(ctx context.Context, cfg config.OracleConfig, logger coreport.Logger) (*GeminiOracle, error) {
	clientCfg := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: cfg.APIVersion},
	}
	switch strings.ToLower(cfg.Backend) {
	case "", BackendGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini api key not configured", errs.ErrOracleUnavailable)
		}
		clientCfg.Backend = genai.BackendGeminiAPI
		clientCfg.APIKey = cfg.APIKey
	case BackendVertex:
		// project and location come from GOOGLE_CLOUD_PROJECT / GOOGLE_CLOUD_LOCATION
		clientCfg.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("%w: unknown oracle backend %q", errs.ErrOracleUnavailable, cfg.Backend)
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGeminiOracle(client.Models.GenerateContent, cfg.Model, logger), nil
}

func newGeminiOracle(generate generateFunc, model string, logger coreport.Logger) *GeminiOracle {
	return &GeminiOracle{
		generate: generate,
		model:    model,
		logger:   logger.With(map[string]any{"oracle_model": model}),
	}
}

// SuggestCategory implements oracle.CategoryOracle
func (o *GeminiOracle) SuggestCategory(ctx context.Context, query oracleport.CategoryQuery) (string, error) {
	return o.ask(ctx, "categorize", BuildCategoryPrompt(query), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: 16,
	})
}

// ExtractTransaction implements oracle.ExtractionOracle
func (o *GeminiOracle) ExtractTransaction(ctx context.Context, message string) (string, error) {
	return o.ask(ctx, "extract", BuildExtractionPrompt(message), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	})
}

func (o *GeminiOracle) ask(ctx context.Context, operation, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := o.generate(ctx, o.model, genai.Text(prompt), cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errs.NewOracleError(operation, errs.ErrOracleTimeout)
		}
		o.logger.Debug("Oracle request failed", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
		return "", errs.NewOracleError(operation, fmt.Errorf("%w: %v", errs.ErrOracleUnavailable, err))
	}
	if resp == nil {
		return "", errs.NewOracleError(operation, errs.ErrMalformedOracleResponse)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errs.NewOracleError(operation, errs.ErrMalformedOracleResponse)
	}
	return text, nil
}

// BuildCategoryPrompt renders the categorization prompt
func BuildCategoryPrompt(query oracleport.CategoryQuery) string {
	merchant := query.Merchant
	if merchant == "" {
		merchant = "Unknown"
	}

	var b strings.Builder
	b.WriteString("Task: Categorize the following transaction into one of the given categories.\n\n")
	b.WriteString("Transaction Details:\n")
	fmt.Fprintf(&b, "- Description: %s\n", query.Description)
	fmt.Fprintf(&b, "- Merchant: %s\n", merchant)
	fmt.Fprintf(&b, "- Amount: %s\n\n", entity.FormatRupees(query.Amount))
	b.WriteString("Available Categories:\n")
	for _, c := range query.Candidates {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("1. Choose ONLY from the given categories\n")
	b.WriteString("2. If uncertain, choose the most likely category\n")
	b.WriteString("3. Reply with just the category name, nothing else\n\n")
	b.WriteString("Category:")
	return b.String()
}

const extractionPrompt = `Task: Extract transaction details from the following SMS message and return as JSON.

SMS Message:
%q

Instructions:
1. Identify if this is a valid UPI/bank transaction message
2. Extract the following information:
   - amount: The transaction amount (number only, no currency symbols)
   - type: Either "DEBIT" or "CREDIT"
   - merchant: The merchant/person name (if available)
   - upiId: The UPI ID (if mentioned, format: xxx@yyy)
   - referenceNumber: Transaction reference/ID number
   - isValid: true if this is a valid transaction, false otherwise

3. Return ONLY a JSON object with these fields. Example:
{
    "isValid": true,
    "amount": 1500.00,
    "type": "DEBIT",
    "merchant": "Swiggy",
    "upiId": "swiggy@paytm",
    "referenceNumber": "123456789"
}

If not a valid transaction, return:
{
    "isValid": false
}

JSON Response:`

// BuildExtractionPrompt renders the structured extraction prompt
func BuildExtractionPrompt(message string) string {
	return fmt.Sprintf(extractionPrompt, message)
}

var _ oracleport.Backend = (*GeminiOracle)(nil)
