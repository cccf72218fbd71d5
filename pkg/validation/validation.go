// Package validation holds the field rules shared by employee records, salary periods and
// user accounts.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Monthly hour ceilings for salary periods.
const (
	MaxRegularHoursMonthly   = 184.0
	MaxOvertimeHoursMonthly  = 80.0
	MaxHolidayHoursMonthly   = 64.0
	MaxNightDiffHoursMonthly = 184.0
)

// PasswordRequirements is returned to callers whose password is rejected.
const PasswordRequirements = "Password must be at least 8 characters long and contain: " +
	"1 uppercase letter, 1 lowercase letter, 1 number, and 1 special character (@$!%*?&)"

const passwordSpecials = "@$!%*?&"

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^\(?([0-9]{3})\)?[-. ]?([0-9]{3})[-. ]?([0-9]{4})$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
	zipPattern      = regexp.MustCompile(`^[A-Za-z0-9\s\-]{3,10}$`)
	provincePattern = regexp.MustCompile(`^[A-Za-z\s\.\-]{2,50}$`)

	sanitizer = strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"/", "&#x2F;",
	)
)

// IsValidEmail reports whether the trimmed value looks like an address.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return emailPattern.MatchString(email)
}

// IsValidPhone accepts an empty value or a ten digit number with optional separators.
func IsValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(phone)
}

// IsValidPassword requires 8+ characters drawn from letters, digits and @$!%*?& with at
// least one of each class.
func IsValidPassword(password string) bool {
	if strings.TrimSpace(password) == "" || !passwordCharset.MatchString(password) {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// IsDateNotInFuture compares calendar days in the location of now. A nil date passes.
func IsDateNotInFuture(date *time.Time, now time.Time) bool {
	if date == nil {
		return true
	}
	d := date.In(now.Location())
	dy, dm, dd := d.Date()
	ny, nm, nd := now.Date()
	return !time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).After(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC))
}

func withinCeiling(hours, ceiling float64) bool {
	return hours >= 0 && hours <= ceiling
}

func IsValidRegularHours(hours float64) bool {
	return withinCeiling(hours, MaxRegularHoursMonthly)
}

func IsValidOvertimeHours(hours float64) bool {
	return withinCeiling(hours, MaxOvertimeHoursMonthly)
}

func IsValidHolidayHours(hours float64) bool {
	return withinCeiling(hours, MaxHolidayHoursMonthly)
}

func IsValidNightDiffHours(hours float64) bool {
	return withinCeiling(hours, MaxNightDiffHoursMonthly)
}

// Sanitize trims the input and escapes HTML-significant characters once. It is not
// idempotent: "&" is left alone, so already escaped text is escaped again only where it
// contains one of the five replaced characters.
func Sanitize(input string) string {
	return sanitizer.Replace(strings.TrimSpace(input))
}

// SanitizePtr applies Sanitize to a present value and keeps nil as nil.
func SanitizePtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := Sanitize(*input)
	return &out
}

// IsValidLength reports whether the trimmed value is non-empty and at most maxLength runes.
func IsValidLength(value string, maxLength int) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= maxLength
}

func IsValidZipCode(zip string) bool {
	return zipPattern.MatchString(strings.TrimSpace(zip))
}

func IsValidProvince(province string) bool {
	return provincePattern.MatchString(strings.TrimSpace(province))
}

// Register adds the payroll tags to v: payroll_email, phone and strong_password.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"payroll_email": func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		},
		"phone": func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		},
		"strong_password": func(fl validator.FieldLevel) bool {
			return IsValidPassword(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// New returns a validator with the payroll tags registered. Field errors carry JSON names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Message renders validator field errors as "field: problem" pairs joined by "; ". Any other
// error yields fallback.
func Message(err error, fallback string) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fallback
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+": "+describe(fe))
	}
	return strings.Join(parts, "; ")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "payroll_email", "email", "phone":
		return "invalid format"
	case "strong_password":
		return PasswordRequirements
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}
