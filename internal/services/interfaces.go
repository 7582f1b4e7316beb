package services

import (
	"context"

	"github.com/trimwise/trimwise-api/internal/models"
)

// LeadServiceInterface defines the lead submission business logic.
type LeadServiceInterface interface {
	Submit(ctx context.Context, lead models.LeadSubmission, bill *models.Attachment) (*models.SubmissionResult, error)
}

// LeadDispatcher starts best-effort downstream delivery of an accepted lead.
type LeadDispatcher interface {
	Dispatch(lead models.LeadSubmission, bill *models.Attachment, referenceID string)
}

// AttachmentArchiver copies a bill attachment to object storage and returns
// its URL.
type AttachmentArchiver interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
