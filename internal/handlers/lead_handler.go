package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/trimwise/trimwise-api/internal/models"
	"github.com/trimwise/trimwise-api/internal/services"
	"github.com/trimwise/trimwise-api/pkg/metrics"
)

// LeadHandler accepts multipart lead submissions from the intake wizard.
type LeadHandler struct {
	service services.LeadServiceInterface
}

func NewLeadHandler(service services.LeadServiceInterface) *LeadHandler {
	return &LeadHandler{service: service}
}

// SubmitLead handles POST /api/v1/leads. The rate-limit middleware has
// already run by the time the multipart body is parsed here.
func (h *LeadHandler) SubmitLead(c *gin.Context) {
	lead, bill, err := parseLeadForm(c)
	if err != nil {
		metrics.LeadSubmissions.WithLabelValues("parse_error").Inc()
		respondError(c, http.StatusBadRequest, "Invalid form submission", err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), lead, bill)
	if err != nil {
		metrics.LeadSubmissions.WithLabelValues("internal_error").Inc()
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	if !resp.Success {
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parseLeadForm(c *gin.Context) (models.LeadSubmission, *models.Attachment, error) {
	lead := models.LeadSubmission{
		FullName:     c.PostForm("fullName"),
		Email:        c.PostForm("email"),
		Phone:        c.PostForm("phone"),
		State:        c.PostForm("state"),
		ZipCode:      c.PostForm("zipCode"),
		BillCategory: c.PostForm("billCategory"),
		Provider:     c.PostForm("provider"),
		Signature:    c.PostForm("signature"),
		Website:      c.PostForm("website"),
	}

	// An unparseable amount validates as 0 and fails the bounds rule; the
	// field error message covers both cases.
	if raw := strings.TrimSpace(c.PostForm("monthlyAmount")); raw != "" {
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			lead.MonthlyAmount = amount
		}
	}

	lead.Consent = strings.EqualFold(strings.TrimSpace(c.PostForm("consent")), "true")

	fileHeader, err := c.FormFile("bill")
	if err == http.ErrMissingFile {
		return lead, nil, nil
	}
	if err != nil {
		// A multipart body we cannot parse at all is a malformed request,
		// not a field error.
		if !strings.Contains(err.Error(), "no such file") {
			return lead, nil, err
		}
		return lead, nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return lead, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return lead, nil, err
	}

	return lead, &models.Attachment{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        data,
	}, nil
}
