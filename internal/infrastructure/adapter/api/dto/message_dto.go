package dto

import (
	"time"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

// NotificationRequest is a raw notification posted by a device listener
type NotificationRequest struct {
	Sender     string     `json:"sender" binding:"required"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	ObservedAt *time.Time `json:"observedAt"`
}

// AcceptedResponse tells whether a notification was queued
type AcceptedResponse struct {
	Accepted bool `json:"accepted"`
}

// MessageRequest carries notification text for synchronous parsing or ingestion
type MessageRequest struct {
	Message    string     `json:"message" binding:"required"`
	ObservedAt *time.Time `json:"observedAt"`
}

// ObservedTime returns the observation time, or zero when the client sent none
func (r MessageRequest) ObservedTime() time.Time {
	if r.ObservedAt == nil {
		return time.Time{}
	}
	return *r.ObservedAt
}

// IngestionResponse describes where a message left the pipeline
type IngestionResponse struct {
	MessageID   string               `json:"messageId"`
	Stage       string               `json:"stage"`
	Status      string               `json:"status"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// NewIngestionResponse maps a pipeline result
func NewIngestionResponse(result *usecase.IngestionResult) IngestionResponse {
	return IngestionResponse{
		MessageID:   result.MessageID,
		Stage:       string(result.Stage),
		Status:      string(result.Status),
		Transaction: NewTransactionResponse(result.Transaction),
	}
}
