package v1

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	mbtiPattern      = regexp.MustCompile(`(?i)^[IE][NS][TF][JP]$`)
	eventCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{4,12}$`)
)

// RegisterValidators adds the custom binding tags used by request DTOs:
// "mbti" for Myers-Briggs types and "eventcode" for event join codes.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("mbti", func(fl validator.FieldLevel) bool {
		return mbtiPattern.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register mbti validation: %w", err)
	}
	if err := v.RegisterValidation("eventcode", func(fl validator.FieldLevel) bool {
		return eventCodePattern.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register eventcode validation: %w", err)
	}
	return nil
}

// sanitizeValidationError returns a user-friendly message for validation/binding errors.
// Never expose raw gin/go validation errors to clients (security + UX).
func sanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	// Raw validation errors expose internal structure - return generic message
	if strings.Contains(msg, "validation") ||
		strings.Contains(msg, "Field validation") ||
		strings.Contains(msg, "cannot unmarshal") ||
		strings.Contains(msg, "bind") ||
		strings.Contains(msg, "Key:") {
		return "Invalid request"
	}
	if msg == "EOF" {
		return "Request body is required"
	}
	// Short, safe messages (e.g. "invalid email") can pass through
	if len(msg) < 100 && !strings.Contains(msg, "Error:") {
		return msg
	}
	return "Invalid request"
}
