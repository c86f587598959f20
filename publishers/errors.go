package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPageNotFound  = errors.New("page not found in resolved directory")
	ErrMissingToken  = errors.New("page has no access token")
	ErrImageNotFound = errors.New("image not found")
	ErrNotImage      = errors.New("file is not a supported image")
)

type FacebookErrorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func parseFacebookError(body []byte) FacebookErrorResponse {
	var fbError FacebookErrorResponse
	json.Unmarshal(body, &fbError)
	return fbError
}

// AuthError is returned when the page directory cannot be listed with the
// supplied user token. Body holds the upstream response verbatim.
type AuthError struct {
	StatusCode int
	Code       int
	Message    string
	Body       string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return "facebook auth error: " + e.Message
	}
	if e.Message != "" {
		return fmt.Sprintf("facebook auth error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("facebook auth error (status %d): %s", e.StatusCode, e.Body)
}

// Expired reports whether Graph flagged the token as expired or invalid.
// 190: invalid OAuth token, 192: invalid token signature, 467 with a token
// message: session throttled on the token.
func (e *AuthError) Expired() bool {
	switch e.Code {
	case 190, 192:
		return true
	case 467:
		return strings.Contains(strings.ToLower(e.Message), "token")
	}
	return false
}

// DeliveryError wraps a post request that Graph did not accept.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("facebook post failed (status %d): %s", e.StatusCode, e.Body)
}
