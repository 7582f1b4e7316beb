package services

import (
	"context"

	"github.com/trimwise/trimwise-api/internal/models"
	"github.com/trimwise/trimwise-api/internal/validation"
	"github.com/trimwise/trimwise-api/pkg/logger"
	"github.com/trimwise/trimwise-api/pkg/metrics"
	"github.com/trimwise/trimwise-api/pkg/refid"
	"github.com/trimwise/trimwise-api/pkg/storage"
	"go.uber.org/zap"
)

// acceptedMessage is shown for every accepted submission, including absorbed
// honeypot hits, so automated submitters cannot tell they were filtered.
const acceptedMessage = "Thanks! Your bill is in our negotiation queue. We'll reach out within one business day."

// LeadService handles lead form submissions: spam filtering, authoritative
// validation, attachment archival and downstream relay.
type LeadService struct {
	dispatcher LeadDispatcher
	archiver   AttachmentArchiver // nil when no archive bucket is configured
}

// NewLeadService creates a new lead service instance.
func NewLeadService(dispatcher LeadDispatcher, archiver AttachmentArchiver) *LeadService {
	return &LeadService{
		dispatcher: dispatcher,
		archiver:   archiver,
	}
}

// Submit processes one lead submission. Validation here is authoritative: the
// wizard runs the same rules client-side, but nothing from the client is
// trusted. The returned error is reserved for internal failures; business
// rejections come back inside the result.
func (s *LeadService) Submit(ctx context.Context, lead models.LeadSubmission, bill *models.Attachment) (*models.SubmissionResult, error) {
	// Bots that fill the hidden field get a response indistinguishable from a
	// real acceptance, and nothing is relayed.
	if lead.IsHoneypotTripped() {
		metrics.LeadSubmissions.WithLabelValues("honeypot").Inc()
		logger.Warn("Honeypot tripped, submission absorbed",
			zap.String("email_domain", emailDomain(lead.Email)))
		return &models.SubmissionResult{
			Success:     true,
			Message:     acceptedMessage,
			ReferenceID: refid.New(),
		}, nil
	}

	lead = lead.Normalized()

	fieldErrors := validation.Validate(lead)
	for k, v := range validation.ValidateAttachment(bill) {
		fieldErrors[k] = v
		metrics.LeadAttachments.WithLabelValues("rejected").Inc()
	}

	if len(fieldErrors) > 0 {
		metrics.LeadSubmissions.WithLabelValues("validation_failed").Inc()
		return &models.SubmissionResult{
			Success: false,
			Error:   "Validation failed",
			Errors:  fieldErrors,
		}, nil
	}

	referenceID := refid.New()

	// Archive the bill before dispatch so relays can link it. Best-effort:
	// the lead is accepted whether or not the copy lands.
	if bill != nil && s.archiver != nil {
		key := storage.ArchiveKey(referenceID, bill.FileName)
		url, err := s.archiver.Upload(ctx, key, bill.ContentType, bill.Data)
		if err != nil {
			metrics.LeadAttachments.WithLabelValues("archive_failed").Inc()
			logger.Error("Failed to archive bill attachment",
				zap.Error(err),
				zap.String("reference_id", referenceID))
		} else {
			metrics.LeadAttachments.WithLabelValues("archived").Inc()
			bill.ArchiveURL = url
		}
	}

	// Relay is fire-and-forget; the user has already been told they
	// succeeded, so delivery failures are the dispatcher's to log.
	s.dispatcher.Dispatch(lead, bill, referenceID)

	metrics.LeadSubmissions.WithLabelValues("success").Inc()
	logger.Info("Lead accepted",
		zap.String("reference_id", referenceID),
		zap.String("bill_category", lead.BillCategory),
		zap.String("state", lead.State))

	return &models.SubmissionResult{
		Success:     true,
		Message:     acceptedMessage,
		ReferenceID: referenceID,
	}, nil
}

// emailDomain extracts the domain for logging without recording the address
// itself.
func emailDomain(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return ""
}
