package llm

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a parsed structure against its validation rules.
func Validate(s any) error {
	return validate.Struct(s)
}

// ExtractJSON strips a surrounding markdown fence (optionally tagged as
// json) from a raw provider response, leaving the payload ready for
// unmarshaling. Responses without fences pass through untouched.
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// DecodeStrict parses a provider response into T and validates it.
// Missing required fields reject the response rather than defaulting;
// every stage that consumes structured output depends on this.
func DecodeStrict[T any](raw string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &out); err != nil {
		return out, NewError(ErrorTypeMalformedResponse, "response is not valid JSON", err)
	}
	if err := validate.Struct(&out); err != nil {
		return out, NewError(ErrorTypeMalformedResponse, "response failed validation", err)
	}
	return out, nil
}

// DecodeStrictSlice parses a provider response into a slice of T,
// validating each element. An empty array is rejected: stages that ask
// for a list need at least one entry to proceed.
func DecodeStrictSlice[T any](raw string) ([]T, error) {
	var out []T
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &out); err != nil {
		return nil, NewError(ErrorTypeMalformedResponse, "response is not a valid JSON array", err)
	}
	if len(out) == 0 {
		return nil, NewError(ErrorTypeMalformedResponse, "response array is empty", nil)
	}
	for i := range out {
		if err := validate.Struct(&out[i]); err != nil {
			return nil, NewError(ErrorTypeMalformedResponse, "response element failed validation", err)
		}
	}
	return out, nil
}
