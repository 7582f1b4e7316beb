package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/trimwise/trimwise-api/internal/models"
	"github.com/trimwise/trimwise-api/pkg/httpclient"
)

// Submitter assembles the single multipart payload for a finished wizard and
// posts it to the lead submission endpoint. The attached bill travels inside
// this one request; nothing is uploaded incrementally.
type Submitter struct {
	client   httpclient.Client
	endpoint string
}

// NewSubmitter creates a submitter targeting the given endpoint URL.
func NewSubmitter(client httpclient.Client, endpoint string) *Submitter {
	return &Submitter{client: client, endpoint: endpoint}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Submit sends the lead and optional bill attachment. A non-nil error means
// the request never produced a usable response (network failure, malformed
// body); server-side rejections come back inside the SubmissionResult.
func (s *Submitter) Submit(ctx context.Context, lead models.LeadSubmission, bill *models.Attachment) (*models.SubmissionResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"fullName":      lead.FullName,
		"email":         lead.Email,
		"phone":         lead.Phone,
		"state":         lead.State,
		"zipCode":       lead.ZipCode,
		"billCategory":  lead.BillCategory,
		"provider":      lead.Provider,
		"monthlyAmount": strconv.FormatFloat(lead.MonthlyAmount, 'f', -1, 64),
		"signature":     lead.Signature,
		"consent":       strconv.FormatBool(lead.Consent),
		// The honeypot travels on every submission; it is empty for humans.
		"website": lead.Website,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if bill != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="bill"; filename="%s"`, quoteEscaper.Replace(bill.FileName)))
		header.Set("Content-Type", bill.ContentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create bill part: %w", err)
		}
		if _, err := part.Write(bill.Data); err != nil {
			return nil, fmt.Errorf("failed to write bill data: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submission request failed: %w", err)
	}
	defer resp.Body.Close()

	var result models.SubmissionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode submission response: %w", err)
	}

	return &result, nil
}
