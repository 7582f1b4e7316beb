// Package validation holds the single rule set for lead submissions. Both the
// intake wizard (step-scoped, client side) and the submission service
// (authoritative, server side) call into this package, so the two layers
// cannot drift apart.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/trimwise/trimwise-api/internal/models"
)

const (
	// MaxAttachmentSize is the bill attachment ceiling.
	MaxAttachmentSize = 10 * 1024 * 1024

	// AttachmentErrorKey is the field key used for attachment errors.
	AttachmentErrorKey = "file"

	MinMonthlyAmount = 20
	MaxMonthlyAmount = 5000
)

// allowedAttachmentTypes is the declared MIME type allow-list for bill uploads.
var allowedAttachmentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

var zipRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
var nonDigitRegex = regexp.MustCompile(`\D`)

var validate = newValidator()

// fieldForForm maps public form field names to LeadSubmission struct fields
// for step-scoped partial validation.
var fieldForForm = map[string]string{
	"fullName":      "FullName",
	"email":         "Email",
	"phone":         "Phone",
	"state":         "State",
	"zipCode":       "ZipCode",
	"billCategory":  "BillCategory",
	"provider":      "Provider",
	"monthlyAmount": "MonthlyAmount",
	"signature":     "Signature",
	"consent":       "Consent",
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report errors under the public form field names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "us_phone", func(fl validator.FieldLevel) bool {
		digits := nonDigitRegex.ReplaceAllString(fl.Field().String(), "")
		return len(digits) >= 10 && len(digits) <= 15
	})

	mustRegister(v, "us_state", func(fl validator.FieldLevel) bool {
		return models.IsUSState(fl.Field().String())
	})

	mustRegister(v, "us_zip", func(fl validator.FieldLevel) bool {
		return zipRegex.MatchString(fl.Field().String())
	})

	mustRegister(v, "bill_category", func(fl validator.FieldLevel) bool {
		return models.IsBillCategory(fl.Field().String())
	})

	// The e-signature is a case-insensitive, whitespace-trimmed match against
	// the typed full name. Deliberately not a cryptographic binding; this is
	// the product's consent mechanism as shipped.
	mustRegister(v, "esignature", func(fl validator.FieldLevel) bool {
		sig := strings.TrimSpace(fl.Field().String())
		name := strings.TrimSpace(fl.Parent().FieldByName("FullName").String())
		return sig != "" && strings.EqualFold(sig, name)
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Validate runs the full rule set and returns all failures keyed by form
// field name. Validation never short-circuits so the caller can fix every
// problem in one round trip. An empty map means the lead is valid.
func Validate(lead models.LeadSubmission) map[string]string {
	lead = lead.Normalized()
	return toFieldErrors(validate.Struct(lead))
}

// ValidateFields runs the rules for the given form fields only. This is the
// step-scoped gate the wizard uses on Next: fields on later steps are not
// checked.
func ValidateFields(lead models.LeadSubmission, formFields ...string) map[string]string {
	lead = lead.Normalized()

	structFields := make([]string, 0, len(formFields))
	for _, f := range formFields {
		if sf, ok := fieldForForm[f]; ok {
			structFields = append(structFields, sf)
		}
	}
	if len(structFields) == 0 {
		return map[string]string{}
	}

	return toFieldErrors(validate.StructPartial(lead, structFields...))
}

// ValidateAttachment checks the declared MIME type against the allow-list and
// the size against the ceiling. A nil attachment is valid (the bill upload is
// optional). Errors are keyed under "file".
func ValidateAttachment(att *models.Attachment) map[string]string {
	errs := map[string]string{}
	if att == nil {
		return errs
	}

	if !allowedAttachmentTypes[strings.ToLower(att.ContentType)] {
		errs[AttachmentErrorKey] = "Bill must be a PDF, JPEG or PNG file"
		return errs
	}
	if att.Size > MaxAttachmentSize {
		errs[AttachmentErrorKey] = "Bill file must be 10 MB or smaller"
		return errs
	}
	if att.Size <= 0 {
		errs[AttachmentErrorKey] = "Bill file is empty"
	}
	return errs
}

// toFieldErrors converts validator errors to a field-keyed message map.
func toFieldErrors(err error) map[string]string {
	errs := map[string]string{}
	if err == nil {
		return errs
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["_form"] = "Submission could not be validated"
		return errs
	}

	for _, fe := range validationErrors {
		if _, exists := errs[fe.Field()]; !exists {
			errs[fe.Field()] = messageFor(fe)
		}
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "fullName":
		return "Please enter your full name"
	case "email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Invalid email format"
	case "phone":
		return "Phone number must contain 10 to 15 digits"
	case "state":
		return "Select a valid US state"
	case "zipCode":
		return "ZIP code must be 5 digits, optionally with a -4 suffix"
	case "billCategory":
		return "Select a valid bill category"
	case "provider":
		return "Provider is required"
	case "monthlyAmount":
		return fmt.Sprintf("Monthly amount must be between $%d and $%d", MinMonthlyAmount, MaxMonthlyAmount)
	case "signature":
		return "Signature must match your full name exactly"
	case "consent":
		return "You must agree to the terms to submit"
	default:
		return fe.Field() + " is invalid"
	}
}
