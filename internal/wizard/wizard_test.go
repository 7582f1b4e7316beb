package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trimwise/trimwise-api/internal/models"
)

// fillStep applies valid values for every field on the current step.
func fillStep(t *testing.T, f Flow, s State) State {
	t.Helper()
	values := map[string]string{
		"fullName":      "Jane Doe",
		"email":         "jane@example.com",
		"phone":         "555-123-4567",
		"state":         "Texas",
		"zipCode":       "73301",
		"billCategory":  "internet",
		"provider":      "Xfinity",
		"monthlyAmount": "120",
		"signature":     "Jane Doe",
		"consent":       "true",
	}
	for _, field := range f.Steps()[s.StepIndex].Fields {
		if field == FileField {
			s = f.AttachBill(s, "bill.pdf", "application/pdf", 13, []byte("%PDF-1.4 test"))
			continue
		}
		s = f.Apply(s, field, values[field])
	}
	return s
}

func TestStart(t *testing.T) {
	f := DefaultFlow()
	s := f.Start()

	assert.Equal(t, 0, s.StepIndex)
	assert.Equal(t, StatusEditing, s.Status)
	assert.Empty(t, s.FieldErrors)
	assert.Nil(t, s.Bill)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	f := DefaultFlow()
	before := f.Start()
	after := f.Apply(before, "fullName", "Jane Doe")

	assert.Empty(t, before.Lead.FullName)
	assert.Equal(t, "Jane Doe", after.Lead.FullName)
}

func TestApply_UnparseableAmountIsFieldError(t *testing.T) {
	f := DefaultFlow()
	s := f.Apply(f.Start(), "monthlyAmount", "lots")

	assert.Contains(t, s.FieldErrors, "monthlyAmount")
	assert.Zero(t, s.Lead.MonthlyAmount)

	// A corrected value clears the stale error.
	s = f.Apply(s, "monthlyAmount", "120")
	assert.NotContains(t, s.FieldErrors, "monthlyAmount")
	assert.Equal(t, 120.0, s.Lead.MonthlyAmount)
}

func TestApply_UnknownFieldIgnored(t *testing.T) {
	f := DefaultFlow()
	before := f.Start()
	after := f.Apply(before, "nickname", "JD")

	assert.Equal(t, before.Lead, after.Lead)
}

func TestNext_BlockedUntilStepValid(t *testing.T) {
	f := DefaultFlow()
	s := f.Start()

	s = f.Next(s)
	assert.Equal(t, 0, s.StepIndex)
	assert.Contains(t, s.FieldErrors, "fullName")
	assert.Contains(t, s.FieldErrors, "email")

	// Errors are scoped to the current step only.
	assert.NotContains(t, s.FieldErrors, "signature")
	assert.NotContains(t, s.FieldErrors, "consent")

	s = fillStep(t, f, s)
	s = f.Next(s)
	assert.Equal(t, 1, s.StepIndex)
	assert.Empty(t, s.FieldErrors)
}

func TestNext_RequiresAttachmentOnUploadStep(t *testing.T) {
	f := ExtendedFlow()
	s := f.Start()
	for i := 0; i < 4; i++ {
		s = fillStep(t, f, s)
		s = f.Next(s)
	}
	assert.Equal(t, "upload", f.Steps()[s.StepIndex].Name)

	// The extended flow's upload step has only the file field; with no
	// attachment the step passes because the bill is optional.
	s = f.Next(s)
	assert.Equal(t, 5, s.StepIndex)
}

func TestAttachBill_RejectsInvalidFile(t *testing.T) {
	f := DefaultFlow()
	s := f.Start()

	s = f.AttachBill(s, "notes.txt", "text/plain", 10, []byte("plain text"))
	assert.Nil(t, s.Bill)
	assert.Contains(t, s.FieldErrors, FileField)

	s = f.AttachBill(s, "bill.pdf", "application/pdf", 13, []byte("%PDF-1.4 test"))
	assert.NotNil(t, s.Bill)
	assert.NotContains(t, s.FieldErrors, FileField)

	s = f.RemoveBill(s)
	assert.Nil(t, s.Bill)
}

func TestBack_PreservesData(t *testing.T) {
	f := DefaultFlow()
	s := fillStep(t, f, f.Start())
	s = f.Next(s)
	assert.Equal(t, 1, s.StepIndex)

	s = f.Back(s)
	assert.Equal(t, 0, s.StepIndex)
	assert.Equal(t, "Jane Doe", s.Lead.FullName)
	assert.Equal(t, "jane@example.com", s.Lead.Email)

	s = f.Back(s)
	assert.Equal(t, 0, s.StepIndex)
}

func advanceToFinalStep(t *testing.T, f Flow) State {
	t.Helper()
	s := f.Start()
	for i := 0; i < len(f.Steps())-1; i++ {
		s = fillStep(t, f, s)
		s = f.Next(s)
	}
	return fillStep(t, f, s)
}

func TestBeginSubmit_ValidatesFinalStep(t *testing.T) {
	f := DefaultFlow()
	s := advanceToFinalStep(t, f)
	s = f.Apply(s, "signature", "Someone Else")

	s = f.BeginSubmit(s)
	assert.Equal(t, StatusEditing, s.Status)
	assert.Contains(t, s.FieldErrors, "signature")

	s = f.Apply(s, "signature", "Jane Doe")
	s = f.BeginSubmit(s)
	assert.Equal(t, StatusSubmitting, s.Status)
}

func TestBeginSubmit_OnlyFromFinalStep(t *testing.T) {
	f := DefaultFlow()
	s := fillStep(t, f, f.Start())

	s = f.BeginSubmit(s)
	assert.Equal(t, StatusEditing, s.Status)
	assert.Equal(t, 0, s.StepIndex)
}

func TestSubmitting_LocksOutEdits(t *testing.T) {
	f := DefaultFlow()
	s := advanceToFinalStep(t, f)
	s = f.BeginSubmit(s)
	assert.Equal(t, StatusSubmitting, s.Status)

	locked := f.Apply(s, "fullName", "Changed")
	assert.Equal(t, "Jane Doe", locked.Lead.FullName)

	locked = f.Next(s)
	assert.Equal(t, s.StepIndex, locked.StepIndex)

	locked = f.Back(s)
	assert.Equal(t, s.StepIndex, locked.StepIndex)

	locked = f.BeginSubmit(s)
	assert.Equal(t, StatusSubmitting, locked.Status)

	locked = f.AttachBill(s, "bill.pdf", "application/pdf", 13, []byte("%PDF-1.4 test"))
	assert.Equal(t, s.Bill, locked.Bill)
}

func TestResolve_NetworkFailureRetainsData(t *testing.T) {
	f := DefaultFlow()
	s := advanceToFinalStep(t, f)
	s = f.BeginSubmit(s)

	s = f.Resolve(s, nil, errors.New("connection refused"))
	assert.Equal(t, StatusFailed, s.Status)
	assert.NotEmpty(t, s.FailureMessage)
	assert.Equal(t, "Jane Doe", s.Lead.FullName)

	// Failed submissions can be retried from the review step.
	s = f.BeginSubmit(s)
	assert.Equal(t, StatusSubmitting, s.Status)
}

func TestResolve_SuccessIsTerminalUntilClose(t *testing.T) {
	f := DefaultFlow()
	s := advanceToFinalStep(t, f)
	s = f.BeginSubmit(s)

	res := &models.SubmissionResult{Success: true, ReferenceID: "TRW-TEST-0001"}
	s = f.Resolve(s, res, nil)
	assert.Equal(t, StatusSucceeded, s.Status)
	assert.Equal(t, res, s.Result)

	// Data is retained on the success screen.
	assert.Equal(t, "Jane Doe", s.Lead.FullName)

	// Navigation and resubmission are locked out after success.
	assert.Equal(t, StatusSucceeded, f.Next(s).Status)
	assert.Equal(t, StatusSucceeded, f.Back(s).Status)
	assert.Equal(t, StatusSucceeded, f.BeginSubmit(s).Status)

	closed := f.Close(s)
	assert.Equal(t, StatusEditing, closed.Status)
	assert.Empty(t, closed.Lead.FullName)
	assert.Nil(t, closed.Result)
	assert.Equal(t, 0, closed.StepIndex)
}

func TestResolve_ServerFieldErrorsRepositionWizard(t *testing.T) {
	f := DefaultFlow()
	s := advanceToFinalStep(t, f)
	s = f.BeginSubmit(s)

	res := &models.SubmissionResult{
		Success: false,
		Error:   "Validation failed",
		Errors: map[string]string{
			"email":     "Please enter a valid email address",
			"signature": "Signature must match your full name exactly",
		},
	}
	s = f.Resolve(s, res, nil)

	// Repositioned at the earliest step containing an offending field.
	assert.Equal(t, StatusEditing, s.Status)
	assert.Equal(t, 0, s.StepIndex)
	assert.Contains(t, s.FieldErrors, "email")
	assert.Contains(t, s.FieldErrors, "signature")
}

func TestResolve_AttachmentErrorRepositionsToBillStep(t *testing.T) {
	f := DefaultFlow()
	s := advanceToFinalStep(t, f)
	s = f.BeginSubmit(s)

	res := &models.SubmissionResult{
		Success: false,
		Errors:  map[string]string{FileField: "File must be a PDF, JPEG or PNG"},
	}
	s = f.Resolve(s, res, nil)

	assert.Equal(t, StatusEditing, s.Status)
	assert.Equal(t, 1, s.StepIndex)
}

func TestResolve_GenericFailureKeepsData(t *testing.T) {
	f := DefaultFlow()
	s := advanceToFinalStep(t, f)
	s = f.BeginSubmit(s)

	res := &models.SubmissionResult{Success: false, Error: "Internal server error"}
	s = f.Resolve(s, res, nil)

	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, "Internal server error", s.FailureMessage)
	assert.Equal(t, "Jane Doe", s.Lead.FullName)
}

func TestResolve_IgnoredOutsideSubmitting(t *testing.T) {
	f := DefaultFlow()
	s := f.Start()

	after := f.Resolve(s, &models.SubmissionResult{Success: true}, nil)
	assert.Equal(t, StatusEditing, after.Status)
	assert.Nil(t, after.Result)
}

func TestFlows_CoverAllContractFields(t *testing.T) {
	required := []string{
		"fullName", "email", "phone", "state", "zipCode",
		"billCategory", "provider", "monthlyAmount", "signature", "consent",
	}
	for _, f := range []Flow{DefaultFlow(), ExtendedFlow()} {
		seen := map[string]bool{}
		for _, step := range f.Steps() {
			for _, field := range step.Fields {
				seen[field] = true
			}
		}
		for _, field := range required {
			assert.True(t, seen[field], "flow missing field %s", field)
		}
	}
}
