package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/trimwise/trimwise-api/internal/models"
	"github.com/trimwise/trimwise-api/internal/relay"
)

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(lead models.LeadSubmission, bill *models.Attachment, referenceID string) {
	m.Called(lead, bill, referenceID)
}

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func validLead() models.LeadSubmission {
	return models.LeadSubmission{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		Phone:         "555-123-4567",
		State:         "Texas",
		ZipCode:       "73301",
		BillCategory:  "internet",
		Provider:      "Xfinity",
		MonthlyAmount: 120,
		Signature:     "Jane Doe",
		Consent:       true,
	}
}

func TestSubmit_ValidLeadAccepted(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Once()

	service := NewLeadService(dispatcher, nil)
	resp, err := service.Submit(context.Background(), validLead(), nil)

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ReferenceID)
	assert.True(t, strings.HasPrefix(resp.ReferenceID, "TRW-"))
	assert.Empty(t, resp.Errors)
	dispatcher.AssertExpectations(t)
}

func TestSubmit_HoneypotAbsorbed(t *testing.T) {
	dispatcher := new(mockDispatcher)

	lead := validLead()
	lead.Website = "https://spam.example"

	service := NewLeadService(dispatcher, nil)
	resp, err := service.Submit(context.Background(), lead, nil)

	// A bot must see exactly what a real submitter sees.
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ReferenceID)
	assert.Equal(t, acceptedMessage, resp.Message)
	dispatcher.AssertNotCalled(t, "Dispatch")
}

func TestSubmit_ValidationFailureNotDispatched(t *testing.T) {
	dispatcher := new(mockDispatcher)

	lead := validLead()
	lead.Email = "not-an-email"
	lead.MonthlyAmount = 5

	service := NewLeadService(dispatcher, nil)
	resp, err := service.Submit(context.Background(), lead, nil)

	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "monthlyAmount")
	dispatcher.AssertNotCalled(t, "Dispatch")
}

func TestSubmit_RejectedAttachmentFailsValidation(t *testing.T) {
	dispatcher := new(mockDispatcher)

	bill := &models.Attachment{
		FileName:    "notes.txt",
		ContentType: "text/plain",
		Size:        10,
		Data:        []byte("plain text"),
	}

	service := NewLeadService(dispatcher, nil)
	resp, err := service.Submit(context.Background(), validLead(), bill)

	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Errors, "file")
	dispatcher.AssertNotCalled(t, "Dispatch")
}

func TestSubmit_NormalizesBeforeValidation(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.MatchedBy(func(lead models.LeadSubmission) bool {
		return lead.Email == "jane@example.com" && lead.FullName == "Jane Doe"
	}), mock.Anything, mock.Anything).Once()

	lead := validLead()
	lead.Email = "  JANE@Example.com "
	lead.FullName = " Jane Doe "
	lead.Signature = "Jane Doe "

	service := NewLeadService(dispatcher, nil)
	resp, err := service.Submit(context.Background(), lead, nil)

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	dispatcher.AssertExpectations(t)
}

func TestSubmit_ArchivesAttachmentBeforeDispatch(t *testing.T) {
	dispatcher := new(mockDispatcher)
	archiver := new(mockArchiver)

	bill := &models.Attachment{
		FileName:    "bill.pdf",
		ContentType: "application/pdf",
		Size:        13,
		Data:        []byte("%PDF-1.4 test"),
	}

	archiver.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "bills/") && strings.HasSuffix(key, "/bill.pdf")
	}), "application/pdf", bill.Data).Return("https://archive.example/bill.pdf", nil)

	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(b *models.Attachment) bool {
		return b.ArchiveURL == "https://archive.example/bill.pdf"
	}), mock.Anything).Once()

	service := NewLeadService(dispatcher, archiver)
	resp, err := service.Submit(context.Background(), validLead(), bill)

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	archiver.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestSubmit_ArchiveFailureStillAccepted(t *testing.T) {
	dispatcher := new(mockDispatcher)
	archiver := new(mockArchiver)

	bill := &models.Attachment{
		FileName:    "bill.pdf",
		ContentType: "application/pdf",
		Size:        13,
		Data:        []byte("%PDF-1.4 test"),
	}

	archiver.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("bucket unavailable"))
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(b *models.Attachment) bool {
		return b.ArchiveURL == ""
	}), mock.Anything).Once()

	service := NewLeadService(dispatcher, archiver)
	resp, err := service.Submit(context.Background(), validLead(), bill)

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	dispatcher.AssertExpectations(t)
}

type failingRelay struct{}

func (failingRelay) Name() string { return "failing" }
func (failingRelay) Deliver(context.Context, models.LeadSubmission, *models.Attachment, string) error {
	return errors.New("downstream unavailable")
}

func TestSubmit_RelayFailureDoesNotAffectResponse(t *testing.T) {
	dispatcher := relay.NewDispatcher(time.Second, failingRelay{})

	service := NewLeadService(dispatcher, nil)
	resp, err := service.Submit(context.Background(), validLead(), nil)

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ReferenceID)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, dispatcher.Wait(ctx))
}

func TestSubmit_ReferenceIDsUnique(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything)

	service := NewLeadService(dispatcher, nil)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		resp, err := service.Submit(context.Background(), validLead(), nil)
		assert.NoError(t, err)
		assert.False(t, seen[resp.ReferenceID], "duplicate reference id %s", resp.ReferenceID)
		seen[resp.ReferenceID] = true
	}
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "example.com", emailDomain("jane@example.com"))
	assert.Equal(t, "", emailDomain("no-at-sign"))
}
