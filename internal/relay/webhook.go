package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/trimwise/trimwise-api/internal/models"
	apperrors "github.com/trimwise/trimwise-api/pkg/errors"
	"github.com/trimwise/trimwise-api/pkg/httpclient"
	"github.com/trimwise/trimwise-api/pkg/retry"
)

// WebhookRelay forwards leads to a generic webhook URL as a multipart request
// carrying the structured lead (JSON part) and the original bill attachment.
// Requests are authenticated with an HS256-signed bearer token so the
// receiving CRM can reject forgeries.
type WebhookRelay struct {
	client httpclient.Client
	url    string
	secret string
}

// NewWebhookRelay creates a webhook relay. secret may be empty, in which case
// requests are sent unsigned.
func NewWebhookRelay(client httpclient.Client, url, secret string) *WebhookRelay {
	return &WebhookRelay{client: client, url: url, secret: secret}
}

// Name implements Relay.
func (r *WebhookRelay) Name() string { return "webhook" }

// webhookPayload is the JSON part of the multipart webhook request.
type webhookPayload struct {
	ReferenceID            string  `json:"referenceId"`
	FullName               string  `json:"fullName"`
	Email                  string  `json:"email"`
	Phone                  string  `json:"phone"`
	State                  string  `json:"state"`
	ZipCode                string  `json:"zipCode"`
	BillCategory           string  `json:"billCategory"`
	Provider               string  `json:"provider"`
	MonthlyAmount          float64 `json:"monthlyAmount"`
	EstimatedAnnualSavings float64 `json:"estimatedAnnualSavings"`
	BillArchiveURL         string  `json:"billArchiveUrl,omitempty"`
	SubmittedAt            string  `json:"submittedAt"`
}

// Deliver implements Relay.
func (r *WebhookRelay) Deliver(ctx context.Context, lead models.LeadSubmission, bill *models.Attachment, referenceID string) error {
	body, contentType, err := r.buildBody(lead, bill, referenceID)
	if err != nil {
		return err
	}

	err = retry.Do(ctx, retry.WebhookConfig(), "webhookRelay", func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", contentType)

		if r.secret != "" {
			token, signErr := r.signToken(referenceID)
			if signErr != nil {
				return signErr
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, doErr := r.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return apperrors.RelayError(r.Name(), err)
	}
	return nil
}

var partQuoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (r *WebhookRelay) buildBody(lead models.LeadSubmission, bill *models.Attachment, referenceID string) ([]byte, string, error) {
	payload := webhookPayload{
		ReferenceID:            referenceID,
		FullName:               lead.FullName,
		Email:                  lead.Email,
		Phone:                  lead.Phone,
		State:                  lead.State,
		ZipCode:                lead.ZipCode,
		BillCategory:           lead.BillCategory,
		Provider:               lead.Provider,
		MonthlyAmount:          lead.MonthlyAmount,
		EstimatedAnnualSavings: lead.EstimatedAnnualSavings(),
		SubmittedAt:            time.Now().UTC().Format(time.RFC3339),
	}
	if bill != nil {
		payload.BillArchiveURL = bill.ArchiveURL
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="lead"`)
	header.Set("Content-Type", "application/json")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create lead part: %w", err)
	}
	if err := json.NewEncoder(part).Encode(payload); err != nil {
		return nil, "", fmt.Errorf("failed to encode lead payload: %w", err)
	}

	if bill != nil {
		fileHeader := make(textproto.MIMEHeader)
		fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="bill"; filename="%s"`, partQuoteEscaper.Replace(bill.FileName)))
		fileHeader.Set("Content-Type", bill.ContentType)
		filePart, err := w.CreatePart(fileHeader)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create bill part: %w", err)
		}
		if _, err := filePart.Write(bill.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write bill data: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize webhook body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func (r *WebhookRelay) signToken(referenceID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "trimwise-api",
		Subject:   "lead-relay",
		ID:        referenceID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	})

	signed, err := token.SignedString([]byte(r.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign webhook token: %w", err)
	}
	return signed, nil
}
