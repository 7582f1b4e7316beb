package models

import "strings"

// LeadSubmission is the canonical payload produced by the intake wizard and
// re-validated by the submission service. Multipart form field names are the
// public contract; validate tags hold the shared rule set (see
// internal/validation for the custom validators).
type LeadSubmission struct {
	FullName      string  `form:"fullName" json:"fullName" validate:"required,min=2"`
	Email         string  `form:"email" json:"email" validate:"required,email"`
	Phone         string  `form:"phone" json:"phone" validate:"required,us_phone"`
	State         string  `form:"state" json:"state" validate:"required,us_state"`
	ZipCode       string  `form:"zipCode" json:"zipCode" validate:"required,us_zip"`
	BillCategory  string  `form:"billCategory" json:"billCategory" validate:"required,bill_category"`
	Provider      string  `form:"provider" json:"provider" validate:"required"`
	MonthlyAmount float64 `form:"monthlyAmount" json:"monthlyAmount" validate:"gte=20,lte=5000"`
	Signature     string  `form:"signature" json:"signature" validate:"required,esignature"`
	Consent       bool    `form:"consent" json:"consent" validate:"eq=true"`

	// Website is the honeypot field. It is hidden from human users on the
	// form; any non-empty value marks the submission as automated.
	Website string `form:"website" json:"-"`
}

// Attachment is an optional bill document included with a submission.
type Attachment struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte

	// ArchiveURL is set after the attachment has been copied to object
	// storage, when an archive bucket is configured.
	ArchiveURL string
}

// SubmissionResult is returned to the wizard after a submission attempt.
type SubmissionResult struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message,omitempty"`
	ReferenceID string            `json:"referenceId,omitempty"`
	Error       string            `json:"error,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Normalized returns a copy with every string field trimmed and the email
// lower-cased. Validation always operates on the normalized form so the
// wizard and the service cannot disagree on whitespace or casing.
func (l LeadSubmission) Normalized() LeadSubmission {
	l.FullName = strings.TrimSpace(l.FullName)
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	l.Phone = strings.TrimSpace(l.Phone)
	l.State = strings.TrimSpace(l.State)
	l.ZipCode = strings.TrimSpace(l.ZipCode)
	l.BillCategory = strings.ToLower(strings.TrimSpace(l.BillCategory))
	l.Provider = strings.TrimSpace(l.Provider)
	l.Signature = strings.TrimSpace(l.Signature)
	l.Website = strings.TrimSpace(l.Website)
	return l
}

// IsHoneypotTripped reports whether the hidden bot-detection field was filled.
func (l LeadSubmission) IsHoneypotTripped() bool {
	return strings.TrimSpace(l.Website) != ""
}

// EstimatedAnnualSavings returns the marketing savings figure quoted to the
// sales team in the relay email: 20% of the annualized bill.
func (l LeadSubmission) EstimatedAnnualSavings() float64 {
	return l.MonthlyAmount * 12 * 0.20
}
