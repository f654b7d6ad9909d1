package handler

import "github.com/devcrm/crm-service/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// resultLabel turns a service outcome into a low-cardinality metrics label.
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if de, ok := domain.AsError(err); ok {
		return string(de.Reason)
	}
	return "error"
}
