package http

import (
	"reflect"
	"regexp"
	"strings"

	"loan-pipeline/internal/domain/loan"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply. Transition rejections also
// carry the loan's from/to status and, for gate blocks, the missing gate.
type ErrorResponse struct {
	Error           string        `json:"error"`
	Kind            string        `json:"kind,omitempty"`
	From            loan.Status   `json:"from_status,omitempty"`
	To              loan.Status   `json:"to_status,omitempty"`
	Gate            loan.GateFlag `json:"gate,omitempty"`
	Reason          string        `json:"reason,omitempty"`
	ExpectedVersion *int64        `json:"expected_version,omitempty"`
	CurrentVersion  *int64        `json:"current_version,omitempty"`
	Details         []FieldError  `json:"details,omitempty"`
}

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their json name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// public ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// positive amount with at most 2 decimal places, given as a JSON number or string
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive() && d.Equal(d.Round(2))
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return loan.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("opgate", func(fl validator.FieldLevel) bool {
		return loan.GateFlag(fl.Field().String()).OperatorGate()
	})
	_ = v.RegisterValidation("feekind", func(fl validator.FieldLevel) bool {
		_, ok := loan.ParseFeeKind(fl.Field().String())
		return ok
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "money":
			out = append(out, FieldError{Field: field, Message: "must be a positive amount with at most 2 decimal places"})
		case "status":
			out = append(out, FieldError{Field: field, Message: "must be a pipeline status"})
		case "opgate":
			out = append(out, FieldError{Field: field, Message: "must be approval_granted or conditions_cleared"})
		case "feekind":
			out = append(out, FieldError{Field: field, Message: "must be underwriting_fee or closing_fee"})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
