package srv

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"lowlife.exe.dev/discord"
)

// Field length limits
const (
	MaxItemRefLen   = 64
	MaxSnowflakeLen = 20
	MaxGiveQuantity = 99
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateLength checks if a string exceeds the max length (in runes, not bytes)
func ValidateLength(field, value string, maxLen int) error {
	if utf8.RuneCountInString(value) > maxLen {
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be %d characters or less", maxLen),
		}
	}
	return nil
}

// ValidateRequired checks if a string is non-empty after trimming
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// ValidateItemRef validates an item or instance id given to /inv commands
func ValidateItemRef(ref string) error {
	if err := ValidateRequired("item_id", ref); err != nil {
		return err
	}
	return ValidateLength("item_id", ref, MaxItemRefLen)
}

// ValidateQuantity validates the qty option of /inv give
func ValidateQuantity(qty int64) error {
	if qty < 1 || qty > MaxGiveQuantity {
		return ValidationError{
			Field:   "qty",
			Message: fmt.Sprintf("must be between 1 and %d", MaxGiveQuantity),
		}
	}
	return nil
}

// ValidateSnowflake checks that value is a Discord id
func ValidateSnowflake(field, value string) error {
	if err := ValidateRequired(field, value); err != nil {
		return err
	}
	if err := ValidateLength(field, value, MaxSnowflakeLen); err != nil {
		return err
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return ValidationError{Field: field, Message: "must be a numeric id"}
	}
	return nil
}

// ValidatePublicKey checks the application's hex Ed25519 key
func ValidatePublicKey(hexKey string) error {
	if _, err := discord.ParsePublicKey(hexKey); err != nil {
		return ValidationError{Field: "DISCORD_PUBLIC_KEY", Message: "must be 64 hex characters"}
	}
	return nil
}

// MaxRequestBodySize is the maximum allowed request body size (1MB).
// Interaction payloads are a few KB.
const MaxRequestBodySize = 1 << 20

// LimitRequestBody wraps a handler to limit request body size
func LimitRequestBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
		next.ServeHTTP(w, r)
	})
}
