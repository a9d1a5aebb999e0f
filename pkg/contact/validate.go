package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError is a user-correctable input violation. Only the first
// violation is reported, in field order name, email, phone, message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{8,15}$`)
)

// Validate checks the raw field values and returns a normalized Submission,
// or the first violation encountered. It is pure and side-effect-free;
// validating the same input twice yields the same verdict.
func Validate(name, email, number, message string) (Submission, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	number = strings.TrimSpace(number)
	message = strings.TrimSpace(message)

	if name == "" {
		return Submission{}, &ValidationError{Field: "name", Message: "* Name is required"}
	}
	if utf8.RuneCountInString(name) < 2 {
		return Submission{}, &ValidationError{Field: "name", Message: "* Name must be at least 2 characters long"}
	}
	if utf8.RuneCountInString(name) > 50 {
		return Submission{}, &ValidationError{Field: "name", Message: "* Name must not exceed 50 characters"}
	}

	if email == "" {
		return Submission{}, &ValidationError{Field: "email", Message: "* Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return Submission{}, &ValidationError{Field: "email", Message: "* Email must be a valid email address"}
	}

	if number == "" {
		return Submission{}, &ValidationError{Field: "number", Message: "* Phone Number is required"}
	}
	if !phonePattern.MatchString(number) {
		return Submission{}, &ValidationError{
			Field:   "number",
			Message: "* Phone Number must be a valid format (8-15 digits, optional spaces, hyphens, or +)",
		}
	}

	if utf8.RuneCountInString(message) > 500 {
		return Submission{}, &ValidationError{Field: "message", Message: "* Message must not exceed 500 characters"}
	}

	return Submission{Name: name, Email: email, Number: number, Message: message}, nil
}
