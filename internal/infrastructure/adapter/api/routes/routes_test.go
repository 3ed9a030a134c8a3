package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/categorize"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/dedup"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/ingestion"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/oracle"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/parser"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/time"
)

const sbiMessage = "Dear Customer, Rs.1,500.00 debited from your a/c XXXXXXX1234 on 15-12-23 to UPI ID swiggy@paytm. Ref No. 334512345678."

type apiFixture struct {
	router *gin.Engine
	store  *memory.Store
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNoopLogger()
	clock := timeadapter.NewFixedTimeProvider(time.Date(2023, 12, 15, 9, 45, 0, 0, time.UTC))
	store := memory.NewSeededStore(clock)

	engine := categorize.NewEngine(categorize.NewRuleClassifier(), nil, clock, 0, log)
	patterns := parser.NewPatternParser()
	pipeline := ingestion.NewPipeline(patterns, dedup.NewDetector(store), engine, store, store, clock, log)

	dispatcher := ingestion.NewDispatcher(pipeline, ingestion.NewSenderAllowlist(nil), clock, log, 2, 8)
	dispatcher.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = dispatcher.Shutdown(ctx)
	})

	router := gin.New()
	SetupMiddlewares(router, log, clock)
	SetupRoutes(router, Handlers{
		Messages: handler.NewMessageHandler(dispatcher, patterns, pipeline, clock, log),
		Transactions: handler.NewTransactionHandler(store,
			categorize.NewFeedbackRecorder(store, store, log),
			categorize.NewRecategorizer(engine, store, store, log),
			50, log),
		Categories: handler.NewCategoryHandler(store, categorize.NewCategoryManager(store, log)),
		Health:     handler.NewHealthHandler(nil, oracle.NewHandle(nil, log), clock, log),
	})

	return &apiFixture{router: router, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	resp := decode[dto.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.Database)
	assert.Equal(t, string(oracle.StateUnavailable), resp.Oracle)
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, "trace-42", w.Header().Get("X-Request-ID"))
}

func TestIngestMessage(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/messages/ingest", dto.MessageRequest{Message: sbiMessage})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[dto.IngestionResponse](t, w)
	assert.Equal(t, "persisted", first.Status)
	require.NotNil(t, first.Transaction)
	assert.Equal(t, "1500.00", first.Transaction.Amount)
	assert.Equal(t, "DEBIT", first.Transaction.Direction)
	assert.Equal(t, "Food & Dining", first.Transaction.Category)
	assert.Equal(t, "334512345678", first.Transaction.ReferenceNumber)

	w = f.do(t, http.MethodPost, "/api/v1/messages/ingest", dto.MessageRequest{Message: sbiMessage})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", decode[dto.IngestionResponse](t, w).Status)

	w = f.do(t, http.MethodPost, "/api/v1/messages/ingest", dto.MessageRequest{Message: "Your OTP is 482913"})
	require.Equal(t, http.StatusOK, w.Code)
	rejected := decode[dto.IngestionResponse](t, w)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "received", rejected.Stage)
	assert.Nil(t, rejected.Transaction)

	assert.Equal(t, 1, f.store.Count())
}

func TestIngestMessage_InvalidBody(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/messages/ingest", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domainerr.CodeInvalidRequest, decode[dto.ErrorResponse](t, w).Code)
}

func TestParseMessage_DoesNotPersist(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/messages/parse", dto.MessageRequest{Message: sbiMessage})
	require.Equal(t, http.StatusOK, w.Code)
	tx := decode[dto.TransactionResponse](t, w)
	assert.Equal(t, "1500.00", tx.Amount)
	assert.Equal(t, "swiggy@paytm", tx.CounterpartyHandle)
	assert.Zero(t, tx.ID)

	w = f.do(t, http.MethodPost, "/api/v1/messages/parse", dto.MessageRequest{Message: "Your OTP is 482913"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Zero(t, f.store.Count())
}

func TestGetByReference(t *testing.T) {
	f := newAPIFixture(t)
	f.do(t, http.MethodPost, "/api/v1/messages/ingest", dto.MessageRequest{Message: sbiMessage})

	w := f.do(t, http.MethodGet, "/api/v1/transactions/reference/334512345678", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Food & Dining", decode[dto.TransactionResponse](t, w).Category)

	w = f.do(t, http.MethodGet, "/api/v1/transactions/reference/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domainerr.CodeTransactionNotFound, decode[dto.ErrorResponse](t, w).Code)
}

func TestUpdateCategory(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/messages/ingest", dto.MessageRequest{Message: sbiMessage})
	id := decode[dto.IngestionResponse](t, w).Transaction.ID

	path := "/api/v1/transactions/" + jsonNumber(id) + "/category"
	w = f.do(t, http.MethodPut, path, dto.CategoryUpdateRequest{Category: "shopping"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.TransactionResponse](t, w)
	assert.Equal(t, "Shopping", updated.Category)
	assert.True(t, updated.IsManuallyVerified)

	w = f.do(t, http.MethodPut, path, dto.CategoryUpdateRequest{Category: "Pets"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domainerr.CodeCategoryNotFound, decode[dto.ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPut, "/api/v1/transactions/abc/category", dto.CategoryUpdateRequest{Category: "Shopping"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, "/api/v1/transactions/999/category", dto.CategoryUpdateRequest{Category: "Shopping"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecategorize(t *testing.T) {
	f := newAPIFixture(t)

	tx, err := entity.NewTransaction(decimal.RequireFromString("200"), entity.DirectionDebit, "raw",
		time.Now(), entity.WithMerchant("Uber"), entity.WithDescription("Paid ₹200.00 to Uber"))
	require.NoError(t, err)
	_, _, err = f.store.InsertIfAbsentByReference(context.Background(), tx)
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/transactions/recategorize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.RecategorizeResponse](t, w).Updated)

	w = f.do(t, http.MethodPost, "/api/v1/transactions/recategorize", nil)
	assert.Equal(t, 0, decode[dto.RecategorizeResponse](t, w).Updated)

	w = f.do(t, http.MethodPost, "/api/v1/transactions/recategorize?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCategories(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories := decode[[]dto.CategoryResponse](t, w)
	assert.Len(t, categories, len(entity.DefaultCategories()))
}

func TestCreateCategory(t *testing.T) {
	f := newAPIFixture(t)
	budget := "1500"

	w := f.do(t, http.MethodPost, "/api/v1/categories", dto.CreateCategoryRequest{
		Name: " Pets ", Icon: "pets", Color: "#AABBCC", MonthlyBudget: &budget,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.CategoryResponse](t, w)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Pets", created.Name)
	assert.True(t, created.IsActive)
	require.NotNil(t, created.MonthlyBudget)
	assert.Equal(t, "1500.00", *created.MonthlyBudget)

	w = f.do(t, http.MethodGet, "/api/v1/categories", nil)
	assert.Len(t, decode[[]dto.CategoryResponse](t, w), len(entity.DefaultCategories())+1)

	w = f.do(t, http.MethodPost, "/api/v1/categories", dto.CreateCategoryRequest{Name: "pets"})
	assert.Equal(t, http.StatusConflict, w.Code)

	notANumber, negative := "lots", "-5"
	w = f.do(t, http.MethodPost, "/api/v1/categories", dto.CreateCategoryRequest{Name: "Gifts", MonthlyBudget: &notANumber})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPost, "/api/v1/categories", dto.CreateCategoryRequest{Name: "Gifts", MonthlyBudget: &negative})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"icon": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeactivatedCategoryIsNeverAssigned(t *testing.T) {
	f := newAPIFixture(t)
	food, err := f.store.FindByName(context.Background(), "Food & Dining")
	require.NoError(t, err)
	path := "/api/v1/categories/" + jsonNumber(food.ID) + "/active"
	off, on := false, true

	w := f.do(t, http.MethodPatch, path, dto.CategoryStateRequest{Active: &off})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[dto.CategoryResponse](t, w).IsActive)

	w = f.do(t, http.MethodGet, "/api/v1/categories", nil)
	for _, c := range decode[[]dto.CategoryResponse](t, w) {
		assert.NotEqual(t, "Food & Dining", c.Name)
	}

	// Swiggy would land in Food & Dining if it were still active
	w = f.do(t, http.MethodPost, "/api/v1/messages/ingest", dto.MessageRequest{Message: sbiMessage})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, entity.DefaultCategory, decode[dto.IngestionResponse](t, w).Transaction.Category)

	w = f.do(t, http.MethodPatch, path, dto.CategoryStateRequest{Active: &on})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.CategoryResponse](t, w).IsActive)
}

func TestSetCategoryActive_Errors(t *testing.T) {
	f := newAPIFixture(t)
	others, err := f.store.FindByName(context.Background(), entity.DefaultCategory)
	require.NoError(t, err)
	off := false

	w := f.do(t, http.MethodPatch, "/api/v1/categories/"+jsonNumber(others.ID)+"/active", dto.CategoryStateRequest{Active: &off})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, "/api/v1/categories/999/active", dto.CategoryStateRequest{Active: &off})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domainerr.CodeCategoryNotFound, decode[dto.ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPatch, "/api/v1/categories/abc/active", dto.CategoryStateRequest{Active: &off})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, "/api/v1/categories/1/active", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitNotification(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/notifications", dto.NotificationRequest{
		Sender: "com.sbi.upi",
		Title:  "Debit alert",
		Body:   sbiMessage,
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, decode[dto.AcceptedResponse](t, w).Accepted)
	assert.Eventually(t, func() bool { return f.store.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	w = f.do(t, http.MethodPost, "/api/v1/notifications", dto.NotificationRequest{Sender: "com.whatsapp", Body: sbiMessage})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.False(t, decode[dto.AcceptedResponse](t, w).Accepted)

	w = f.do(t, http.MethodPost, "/api/v1/notifications", dto.NotificationRequest{Body: sbiMessage})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func jsonNumber(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
