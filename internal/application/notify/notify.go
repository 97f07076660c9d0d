// Package notify sends templated emails through GOV.UK Notify.
package notify

import (
	"fmt"
	"strings"
)

// Email is a templated message addressed to one recipient.
type Email struct {
	EmailAddress    string         `json:"email_address"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
	Reference       string         `json:"reference,omitempty"`
	ReplyToID       string         `json:"email_reply_to_id,omitempty"`
}

// YesNo renders a declaration the way the confirmation template expects.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// APIError is a non-2xx response from Notify.
type APIError struct {
	StatusCode int
	Errors     []APIErrorDetail `json:"errors"`
}

type APIErrorDetail struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("notify: status %d", e.StatusCode)
	}
	msgs := make([]string, len(e.Errors))
	for i, d := range e.Errors {
		msgs[i] = d.Error + ": " + d.Message
	}
	return fmt.Sprintf("notify: status %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

// Retryable reports whether Notify may accept the same request later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
