// Package validation implements the request validation rules. Validators are
// pure: they collect every violation and return the full detail list, never
// failing fast, so a client sees all problems in one round trip.
package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Detail describes a single validation failure.
type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

const (
	TypeRequiredField     = "REQUIRED_FIELD"
	TypeInvalidFormat     = "INVALID_FORMAT"
	TypeInvalidValue      = "INVALID_VALUE"
	TypeInsufficientFunds = "INSUFFICIENT_FUNDS"
)

var (
	// Local part alnum/dot/underscore/hyphen, domain must contain a dot,
	// TLD at least two letters.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9]+[A-Za-z0-9._-]*[A-Za-z0-9]+@[A-Za-z0-9][A-Za-z0-9.-]*[A-Za-z0-9]\.[A-Za-z]{2,}$`)

	phonePattern = regexp.MustCompile(`^\+\d{2}-\d{4}-\d{4}$`)

	// UK postcode. Input is uppercased before matching.
	postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`)

	sortCodePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}$`)

	// 01 followed by 6 digits.
	accountNumberPattern = regexp.MustCompile(`^01\d{6}$`)

	userIDPattern = regexp.MustCompile(`^usr-[A-Za-z0-9]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their json name so details match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("bank_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("uk_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("uk_postcode", func(fl validator.FieldLevel) bool {
		return postcodePattern.MatchString(strings.ToUpper(fl.Field().String()))
	})
	_ = v.RegisterValidation("sort_code", func(fl validator.FieldLevel) bool {
		return sortCodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("account_number", func(fl validator.FieldLevel) bool {
		return accountNumberPattern.MatchString(fl.Field().String())
	})

	return v
}

// Validate checks a request struct against its validate tags and returns the
// complete list of violations. An empty result signals success.
func Validate(obj any) []Detail {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Detail{{Field: "", Message: "Invalid request", Type: TypeInvalidValue}}
	}

	details := make([]Detail, 0, len(violations))
	for _, violation := range violations {
		details = append(details, Detail{
			Field:   fieldName(violation.Namespace()),
			Message: messageForTag(violation),
			Type:    typeForTag(violation.Tag()),
		})
	}
	return details
}

// fieldName strips the root struct name from the namespace, leaving the
// dotted json path ("address.postcode").
func fieldName(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func typeForTag(tag string) string {
	switch tag {
	case "required":
		return TypeRequiredField
	case "bank_email", "email", "uk_phone", "uk_postcode", "sort_code", "account_number":
		return TypeInvalidFormat
	default:
		return TypeInvalidValue
	}
}

func messageForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "bank_email", "email":
		return "Invalid email format"
	case "uk_phone":
		return "Invalid phone number format. Must be in format: +XX-XXXX-XXXX"
	case "uk_postcode":
		return "Invalid postcode format"
	case "sort_code":
		return "Must be in format: XX-XX-XX where X is a digit"
	case "account_number":
		return "Must be in format: 01 followed by 6 digits"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gt":
		return "Value must be greater than " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	default:
		return "Invalid value"
	}
}

// AccountNumber validates an account number arriving as a path parameter.
func AccountNumber(accountNumber string) *Detail {
	if !accountNumberPattern.MatchString(accountNumber) {
		return &Detail{
			Field:   "accountNumber",
			Message: "Must be in format: 01 followed by 6 digits",
			Type:    TypeInvalidFormat,
		}
	}
	return nil
}

// SortCode validates a sort code string.
func SortCode(sortCode string) *Detail {
	if !sortCodePattern.MatchString(sortCode) {
		return &Detail{
			Field:   "sortCode",
			Message: "Must be in format: XX-XX-XX where X is a digit",
			Type:    TypeInvalidFormat,
		}
	}
	return nil
}

// UserID validates a user identifier arriving as a path parameter.
func UserID(userID string) *Detail {
	if !userIDPattern.MatchString(userID) {
		return &Detail{
			Field:   "userId",
			Message: "Must be in format: usr- followed by alphanumeric characters",
			Type:    TypeInvalidFormat,
		}
	}
	return nil
}

// SufficientFunds checks a withdrawal amount against the current balance.
// A withdrawal of exactly the balance is allowed.
func SufficientFunds(balance, amount float64) *Detail {
	if balance < amount {
		return &Detail{
			Field:   "amount",
			Message: "Insufficient funds for this withdrawal",
			Type:    TypeInsufficientFunds,
		}
	}
	return nil
}
