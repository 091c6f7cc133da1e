package handler

import "github.com/t1tandr/uevent/internal/interfaces/http/dto"

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// CountData represents count data in response
// @Description Count data
type CountData struct {
	Count int64 `json:"count"`
}

// SubscriptionCheckData reports whether the caller follows a company
// @Description Subscription check
type SubscriptionCheckData struct {
	IsSubscribed bool `json:"isSubscribed"`
}
