package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/osa911/portfolio/internal/api/dto/v1/contact"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	personNameRegex = regexp.MustCompile(`^[\p{L} '’-]+$`)
)

var fieldLabels = map[string]string{
	"name":    "Name",
	"email":   "Email",
	"reason":  "Reason",
	"message": "Message",
}

// RegisterValidators registers custom validators
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation("email", validateEmail)
	v.RegisterValidation("personname", validatePersonName)

	// Report fields by their JSON name so error maps line up with the form
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateEmail checks if the email is valid
func validateEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// validatePersonName allows letters, spaces, hyphens and apostrophes
func validatePersonName(fl validator.FieldLevel) bool {
	return personNameRegex.MatchString(fl.Field().String())
}

// FieldErrors maps a JSON field name to a human readable message. Every
// failing field is present.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Submission is a contact request that passed every rule. Values are trimmed.
// It is only built by Validator.ValidateContact and cannot be changed after.
type Submission struct {
	name    string
	email   string
	reason  string
	message string
}

func (s Submission) Name() string        { return s.name }
func (s Submission) Email() string       { return s.email }
func (s Submission) Reason() string      { return s.reason }
func (s Submission) ReasonLabel() string { return contact.ReasonLabel(s.reason) }
func (s Submission) Message() string     { return s.message }

// Validator checks contact form input.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the custom rules registered
func New() *Validator {
	v := validator.New()
	RegisterValidators(v)
	return &Validator{validate: v}
}

// ValidateContact trims and validates req. On failure the error is FieldErrors.
func (v *Validator) ValidateContact(req contact.ContactRequest) (Submission, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Reason = strings.TrimSpace(req.Reason)
	req.Message = strings.TrimSpace(req.Message)

	if err := v.validate.Struct(req); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return Submission{}, fmt.Errorf("validate contact request: %w", err)
		}
		return Submission{}, FormatValidationError(fieldErrs)
	}

	return Submission{
		name:    req.Name,
		email:   req.Email,
		reason:  req.Reason,
		message: req.Message,
	}, nil
}

// FormatValidationError turns validator errors into per-field messages
func FormatValidationError(errs validator.ValidationErrors) FieldErrors {
	out := make(FieldErrors, len(errs))
	for _, e := range errs {
		if _, seen := out[e.Field()]; seen {
			continue
		}
		out[e.Field()] = message(e)
	}
	return out
}

func message(e validator.FieldError) string {
	label, ok := fieldLabels[e.Field()]
	if !ok {
		label = e.Field()
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, e.Param())
	case "email":
		return "Please enter a valid email address"
	case "personname":
		return fmt.Sprintf("%s can only contain letters, spaces, hyphens, and apostrophes", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
