package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/trimwise/trimwise-api/config"
	"github.com/trimwise/trimwise-api/internal/models"
	apperrors "github.com/trimwise/trimwise-api/pkg/errors"
)

// EmailRelay delivers leads to the sales inbox via SendGrid.
type EmailRelay struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	toEmail   string
	toName    string
}

// NewEmailRelay creates an email relay from the relay configuration.
func NewEmailRelay(cfg config.RelayConfig) *EmailRelay {
	return &EmailRelay{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		toEmail:   cfg.LeadInboxEmail,
		toName:    cfg.LeadInboxName,
	}
}

// Name implements Relay.
func (r *EmailRelay) Name() string { return "email" }

// Deliver implements Relay.
func (r *EmailRelay) Deliver(ctx context.Context, lead models.LeadSubmission, bill *models.Attachment, referenceID string) error {
	from := mail.NewEmail(r.fromName, r.fromEmail)
	to := mail.NewEmail(r.toName, r.toEmail)
	body := buildEmailBody(lead, bill, referenceID)
	message := mail.NewSingleEmail(from, buildEmailSubject(lead), to, body, body)

	resp, err := r.client.SendWithContext(ctx, message)
	if err != nil {
		return apperrors.RelayError(r.Name(), err)
	}
	if resp.StatusCode >= 400 {
		return apperrors.RelayError(r.Name(), fmt.Errorf("sendgrid returned status %d", resp.StatusCode))
	}
	return nil
}

// buildEmailSubject puts the fields the sales team triages by in the subject
// line: name, category, monthly amount.
func buildEmailSubject(lead models.LeadSubmission) string {
	return fmt.Sprintf("New lead: %s (%s, $%.2f/mo)", lead.FullName, lead.BillCategory, lead.MonthlyAmount)
}

func buildEmailBody(lead models.LeadSubmission, bill *models.Attachment, referenceID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reference: %s\n\n", referenceID)
	fmt.Fprintf(&b, "Name: %s\n", lead.FullName)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(&b, "State: %s\n", lead.State)
	fmt.Fprintf(&b, "ZIP: %s\n", lead.ZipCode)
	fmt.Fprintf(&b, "Category: %s\n", lead.BillCategory)
	fmt.Fprintf(&b, "Provider: %s\n", lead.Provider)
	fmt.Fprintf(&b, "Monthly amount: $%.2f\n", lead.MonthlyAmount)
	fmt.Fprintf(&b, "Estimated annual savings: $%.2f\n", lead.EstimatedAnnualSavings())
	fmt.Fprintf(&b, "Signed: %s (consent given)\n", lead.Signature)

	if bill != nil {
		fmt.Fprintf(&b, "\nBill attachment: %s (%s, %d bytes)\n", bill.FileName, bill.ContentType, bill.Size)
		if bill.ArchiveURL != "" {
			fmt.Fprintf(&b, "Bill copy: %s\n", bill.ArchiveURL)
		}
	}

	return b.String()
}
