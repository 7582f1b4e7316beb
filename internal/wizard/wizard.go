// Package wizard implements the multi-step lead intake form as a data-driven
// state machine. A Flow is an ordered list of steps, each naming the form
// fields it collects; State is an immutable snapshot updated through pure
// transition functions, so every variant of the marketing site's form shares
// one implementation and the whole flow is testable without a UI.
package wizard

import (
	"context"
	"strconv"
	"strings"

	"github.com/trimwise/trimwise-api/internal/models"
	"github.com/trimwise/trimwise-api/internal/validation"
)

// Status is the wizard's lifecycle phase.
type Status int

const (
	// StatusEditing means the user is working through the steps.
	StatusEditing Status = iota
	// StatusSubmitting means a submission is in flight; transitions other
	// than Resolve are ignored so the form cannot double-submit.
	StatusSubmitting
	// StatusSucceeded is terminal until Close; entered data is retained so
	// re-rendering mid-animation never shows empty fields.
	StatusSucceeded
	// StatusFailed means the server reported a non-field failure; entered
	// data is retained for retry.
	StatusFailed
)

// FileField is the pseudo field name steps use to place the bill upload,
// and the key under which attachment errors surface.
const FileField = "file"

// Step names a wizard screen and the form fields it collects.
type Step struct {
	Name   string
	Fields []string
}

// Flow is an ordered step list. Variants differ only in how fields are
// grouped into steps; validation rules are shared regardless of grouping.
type Flow struct {
	steps []Step
}

// NewFlow builds a flow from an explicit step list.
func NewFlow(steps ...Step) Flow {
	return Flow{steps: steps}
}

// DefaultFlow is the compact three-step variant.
func DefaultFlow() Flow {
	return NewFlow(
		Step{Name: "contact", Fields: []string{"fullName", "email", "phone", "state", "zipCode"}},
		Step{Name: "bill", Fields: []string{"billCategory", "provider", "monthlyAmount", FileField}},
		Step{Name: "review", Fields: []string{"signature", "consent"}},
	)
}

// ExtendedFlow is the six-step variant used by the long-form landing pages.
func ExtendedFlow() Flow {
	return NewFlow(
		Step{Name: "name", Fields: []string{"fullName"}},
		Step{Name: "contact", Fields: []string{"email", "phone"}},
		Step{Name: "location", Fields: []string{"state", "zipCode"}},
		Step{Name: "bill", Fields: []string{"billCategory", "provider", "monthlyAmount"}},
		Step{Name: "upload", Fields: []string{FileField}},
		Step{Name: "review", Fields: []string{"signature", "consent"}},
	)
}

// Steps exposes the step list for rendering.
func (f Flow) Steps() []Step {
	return f.steps
}

// State is one snapshot of the wizard. Transition functions return a new
// value and never mutate their input.
type State struct {
	Lead        models.LeadSubmission
	Bill        *models.Attachment
	StepIndex   int
	Status      Status
	FieldErrors map[string]string
	// FailureMessage is set on StatusFailed for the retry affordance.
	FailureMessage string
	// Result holds the server response after a successful submission.
	Result *models.SubmissionResult
}

// Start returns a fresh wizard state at the first step.
func (f Flow) Start() State {
	return State{Status: StatusEditing, FieldErrors: map[string]string{}}
}

// Apply records a single field value. Unknown fields are ignored. A value
// that cannot be parsed for a typed field surfaces as a field error
// immediately; otherwise any stale error on the field is cleared.
func (f Flow) Apply(s State, field, value string) State {
	if s.Status == StatusSubmitting {
		return s
	}

	s.FieldErrors = cloneErrors(s.FieldErrors)
	delete(s.FieldErrors, field)

	switch field {
	case "fullName":
		s.Lead.FullName = value
	case "email":
		s.Lead.Email = value
	case "phone":
		s.Lead.Phone = value
	case "state":
		s.Lead.State = value
	case "zipCode":
		s.Lead.ZipCode = value
	case "billCategory":
		s.Lead.BillCategory = value
	case "provider":
		s.Lead.Provider = value
	case "monthlyAmount":
		amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			s.Lead.MonthlyAmount = 0
			s.FieldErrors[field] = "Monthly amount must be a number"
			return s
		}
		s.Lead.MonthlyAmount = amount
	case "signature":
		s.Lead.Signature = value
	case "consent":
		s.Lead.Consent = strings.EqualFold(strings.TrimSpace(value), "true")
	case "website":
		// Honeypot: real users never see this field, but the state machine
		// still records it so bots that fill every input are caught.
		s.Lead.Website = value
	}
	return s
}

// AttachBill validates the file locally (type and size only; nothing is
// uploaded until final submission) and attaches it on success.
func (f Flow) AttachBill(s State, fileName, contentType string, size int64, data []byte) State {
	if s.Status == StatusSubmitting {
		return s
	}

	s.FieldErrors = cloneErrors(s.FieldErrors)
	delete(s.FieldErrors, FileField)

	att := &models.Attachment{FileName: fileName, ContentType: contentType, Size: size, Data: data}
	if errs := validation.ValidateAttachment(att); len(errs) > 0 {
		for k, v := range errs {
			s.FieldErrors[k] = v
		}
		return s
	}

	s.Bill = att
	return s
}

// RemoveBill detaches a previously attached file.
func (f Flow) RemoveBill(s State) State {
	if s.Status == StatusSubmitting {
		return s
	}
	s.Bill = nil
	s.FieldErrors = cloneErrors(s.FieldErrors)
	delete(s.FieldErrors, FileField)
	return s
}

// Next advances to the following step if every field on the current step
// passes validation; otherwise the step does not change and the failures are
// attached as field errors.
func (f Flow) Next(s State) State {
	if s.Status != StatusEditing || s.StepIndex >= len(f.steps)-1 {
		return s
	}

	if errs := f.validateStep(s, s.StepIndex); len(errs) > 0 {
		s.FieldErrors = errs
		return s
	}

	s.StepIndex++
	s.FieldErrors = map[string]string{}
	return s
}

// Back always succeeds and preserves entered data.
func (f Flow) Back(s State) State {
	if s.Status != StatusEditing || s.StepIndex == 0 {
		return s
	}
	s.StepIndex--
	s.FieldErrors = map[string]string{}
	return s
}

// BeginSubmit validates the final step (consent and signature live there) and
// moves the wizard into the non-interactive Submitting phase. The caller then
// performs the network call and reports back through Resolve.
func (f Flow) BeginSubmit(s State) State {
	if s.Status != StatusEditing && s.Status != StatusFailed {
		return s
	}
	last := len(f.steps) - 1
	if s.StepIndex != last {
		return s
	}

	if errs := f.validateStep(s, last); len(errs) > 0 {
		s.Status = StatusEditing
		s.FieldErrors = errs
		return s
	}

	s.Status = StatusSubmitting
	s.FieldErrors = map[string]string{}
	s.FailureMessage = ""
	return s
}

// Resolve applies the outcome of the in-flight submission.
//
// Server field errors reposition the wizard at the earliest step containing
// an offending field so cross-cutting problems caught only server-side (an
// email rejected by the authoritative rules, say) land the user where they
// can fix them. A generic failure keeps all data and offers retry. Success is
// terminal until Close.
func (f Flow) Resolve(s State, res *models.SubmissionResult, err error) State {
	if s.Status != StatusSubmitting {
		return s
	}

	if err != nil {
		s.Status = StatusFailed
		s.FailureMessage = "We couldn't reach the server. Your details are saved - please try again."
		return s
	}

	if res.Success {
		s.Status = StatusSucceeded
		s.Result = res
		return s
	}

	if len(res.Errors) > 0 {
		s.Status = StatusEditing
		s.FieldErrors = cloneErrors(res.Errors)
		s.StepIndex = f.earliestStepWithError(res.Errors)
		return s
	}

	s.Status = StatusFailed
	s.FailureMessage = res.Error
	if s.FailureMessage == "" {
		s.FailureMessage = "Something went wrong. Your details are saved - please try again."
	}
	return s
}

// Close discards all wizard state. This is the only transition that clears
// entered data; the success screen keeps it so reopening mid-animation never
// flashes empty fields.
func (f Flow) Close(State) State {
	return f.Start()
}

// Submit runs the full submission round trip: final-step validation, the
// network call, and resolution of the response.
func (f Flow) Submit(ctx context.Context, s State, submitter *Submitter) State {
	s = f.BeginSubmit(s)
	if s.Status != StatusSubmitting {
		return s
	}
	res, err := submitter.Submit(ctx, s.Lead, s.Bill)
	return f.Resolve(s, res, err)
}

func (f Flow) validateStep(s State, idx int) map[string]string {
	errs := validation.ValidateFields(s.Lead, f.steps[idx].Fields...)
	if containsField(f.steps[idx].Fields, FileField) {
		for k, v := range validation.ValidateAttachment(s.Bill) {
			errs[k] = v
		}
	}
	return errs
}

func (f Flow) earliestStepWithError(errs map[string]string) int {
	earliest := 0
	found := false
	for i, step := range f.steps {
		for _, field := range step.Fields {
			if _, ok := errs[field]; ok {
				if !found || i < earliest {
					earliest = i
					found = true
				}
			}
		}
		if found {
			break
		}
	}
	return earliest
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func cloneErrors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
