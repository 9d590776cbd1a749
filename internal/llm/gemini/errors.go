package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HerbHall/paperstream/pkg/llm"
	"google.golang.org/genai"
)

// mapError translates genai and network errors into typed llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "gemini: request timed out or cancelled", err)
	}

	if apiErr, ok := asAPIError(err); ok {
		return mapAPIError(apiErr, err)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return llm.NewProviderError(llm.ErrCodeUnavailable, "gemini: upstream unreachable", err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "gemini: stream failed", err)
}

func asAPIError(err error) (genai.APIError, bool) {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue, true
	}
	var byPtr *genai.APIError
	if errors.As(err, &byPtr) && byPtr != nil {
		return *byPtr, true
	}
	return genai.APIError{}, false
}

func mapAPIError(apiErr genai.APIError, err error) error {
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Status
	}
	lower := strings.ToLower(msg)

	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return llm.NewProviderError(llm.ErrCodeAuthentication, msg, err)
	case apiErr.Code == http.StatusBadRequest && strings.Contains(lower, "api key"):
		return llm.NewProviderError(llm.ErrCodeAuthentication, msg, err)
	case apiErr.Code == http.StatusNotFound:
		return llm.NewProviderError(llm.ErrCodeModelNotFound, msg, err)
	case apiErr.Code == http.StatusTooManyRequests:
		return llm.NewProviderError(llm.ErrCodeRateLimit, msg, err)
	case apiErr.Code == http.StatusBadRequest && strings.Contains(lower, "token") && strings.Contains(lower, "exceed"):
		return llm.NewProviderError(llm.ErrCodeContextLength, msg, err)
	case apiErr.Code == http.StatusGatewayTimeout:
		return llm.NewProviderError(llm.ErrCodeTimeout, msg, err)
	case apiErr.Code >= 500:
		return llm.NewProviderError(llm.ErrCodeServerError, msg, err)
	case apiErr.Code >= 400:
		return llm.NewProviderError(llm.ErrCodeInvalidRequest, msg, err)
	}
	return llm.NewProviderError(llm.ErrCodeServerError, msg, err)
}
