package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/ingestion"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/dto"
)

// NotificationSubmitter queues notifications for asynchronous ingestion
type NotificationSubmitter interface {
	Submit(ctx context.Context, event ingestion.NotificationEvent) (bool, error)
}

// MessageHandler handles notification intake and message parsing
type MessageHandler struct {
	submitter    NotificationSubmitter
	parser       usecase.MessageParser
	pipeline     usecase.IngestionUseCase
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewMessageHandler creates a new message handler instance
func NewMessageHandler(
	submitter NotificationSubmitter,
	parser usecase.MessageParser,
	pipeline usecase.IngestionUseCase,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *MessageHandler {
	return &MessageHandler{
		submitter:    submitter,
		parser:       parser,
		pipeline:     pipeline,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// SubmitNotification handles POST /api/v1/notifications
func (h *MessageHandler) SubmitNotification(c *gin.Context) {
	var req dto.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", domainerr.ErrInvalidRequest, err))
		return
	}

	event := ingestion.NotificationEvent{
		Sender: req.Sender,
		Title:  req.Title,
		Body:   req.Body,
	}
	if req.ObservedAt != nil {
		event.ObservedAt = *req.ObservedAt
	}

	accepted, err := h.submitter.Submit(c.Request.Context(), event)
	if err != nil {
		if errors.Is(err, ingestion.ErrDispatcherClosed) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
				Code:    domainerr.CodeInternalServer,
				Message: "Ingestion is shutting down",
			})
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{Accepted: accepted})
}

// ParseMessage handles POST /api/v1/messages/parse. Nothing is stored.
func (h *MessageHandler) ParseMessage(c *gin.Context) {
	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", domainerr.ErrInvalidRequest, err))
		return
	}

	observedAt := req.ObservedTime()
	if observedAt.IsZero() {
		observedAt = h.timeProvider.Now()
	}

	tx, ok := h.parser.Parse(c.Request.Context(), req.Message, observedAt)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Code:    domainerr.CodeInvalidRequest,
			Message: "Message does not describe a transaction",
		})
		return
	}

	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// IngestMessage handles POST /api/v1/messages/ingest, running the pipeline synchronously
func (h *MessageHandler) IngestMessage(c *gin.Context) {
	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", domainerr.ErrInvalidRequest, err))
		return
	}

	result, err := h.pipeline.ProcessIncomingMessage(c.Request.Context(), req.Message, req.ObservedTime())
	if err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusOK
	if result.Status == usecase.StatusPersisted {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewIngestionResponse(result))
}
