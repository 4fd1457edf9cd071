// Package errors provides error codes for the Feishu notifier
package errors

// ErrorCode represents a notifier error code
type ErrorCode string

// Configuration error codes
const (
	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrMissingWebhook indicates the webhook URL is not configured
	ErrMissingWebhook ErrorCode = "MISSING_WEBHOOK"
)

// Platform error codes
const (
	// ErrPlatformRejected indicates Feishu answered with a non-success status or code
	ErrPlatformRejected ErrorCode = "PLATFORM_REJECTED"

	// ErrSignatureInvalid indicates a signature did not verify
	ErrSignatureInvalid ErrorCode = "SIGNATURE_INVALID"

	// ErrTimestampExpired indicates a signed timestamp is outside the accepted window
	ErrTimestampExpired ErrorCode = "TIMESTAMP_EXPIRED"

	// ErrRateLimited indicates the local rate limiter refused to wait for a slot
	ErrRateLimited ErrorCode = "RATE_LIMITED"
)

// Network error codes
const (
	// ErrConnectionFailed indicates the request could not be delivered
	ErrConnectionFailed ErrorCode = "CONNECTION_FAILED"

	// ErrNetworkTimeout indicates the request timed out or was cancelled
	ErrNetworkTimeout ErrorCode = "NETWORK_TIMEOUT"
)

// Processing error codes
const (
	ErrSerializationFailed   ErrorCode = "SERIALIZATION_FAILED"
	ErrDeserializationFailed ErrorCode = "DESERIALIZATION_FAILED"
	ErrInternal              ErrorCode = "INTERNAL_ERROR"
)

// Priority levels for error codes
const (
	PriorityLow      = 1
	PriorityNormal   = 2
	PriorityHigh     = 3
	PriorityCritical = 4
)

// ErrorCodeInfo provides information about an error code
type ErrorCodeInfo struct {
	Code        ErrorCode `json:"code"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
}

// GetErrorCodeInfo returns information about an error code
func GetErrorCodeInfo(code ErrorCode) ErrorCodeInfo {
	info, exists := errorCodeInfoMap[code]
	if !exists {
		return ErrorCodeInfo{
			Code:        code,
			Category:    "unknown",
			Description: "Unknown error code",
			Priority:    PriorityNormal,
		}
	}
	return info
}

// GetCategory returns the category of an error code
func GetCategory(code ErrorCode) string {
	return GetErrorCodeInfo(code).Category
}

// GetPriority returns the priority of an error code
func GetPriority(code ErrorCode) int {
	return GetErrorCodeInfo(code).Priority
}

var errorCodeInfoMap = map[ErrorCode]ErrorCodeInfo{
	ErrInvalidConfig: {
		Code: ErrInvalidConfig, Category: "configuration", Description: "Invalid configuration provided",
		Priority: PriorityHigh,
	},
	ErrMissingWebhook: {
		Code: ErrMissingWebhook, Category: "configuration", Description: "Webhook URL is not configured",
		Priority: PriorityHigh,
	},

	ErrPlatformRejected: {
		Code: ErrPlatformRejected, Category: "platform", Description: "Feishu rejected the message",
		Priority: PriorityNormal,
	},
	ErrSignatureInvalid: {
		Code: ErrSignatureInvalid, Category: "platform", Description: "Signature verification failed",
		Priority: PriorityHigh,
	},
	ErrTimestampExpired: {
		Code: ErrTimestampExpired, Category: "platform", Description: "Signed timestamp outside the accepted window",
		Priority: PriorityNormal,
	},
	ErrRateLimited: {
		Code: ErrRateLimited, Category: "platform", Description: "Send rate limit reached",
		Priority: PriorityLow,
	},

	ErrConnectionFailed: {
		Code: ErrConnectionFailed, Category: "network", Description: "Failed to deliver the request",
		Priority: PriorityNormal,
	},
	ErrNetworkTimeout: {
		Code: ErrNetworkTimeout, Category: "network", Description: "Request timed out or was cancelled",
		Priority: PriorityNormal,
	},

	ErrSerializationFailed: {
		Code: ErrSerializationFailed, Category: "processing", Description: "Failed to encode the request body",
		Priority: PriorityHigh,
	},
	ErrDeserializationFailed: {
		Code: ErrDeserializationFailed, Category: "processing", Description: "Failed to decode the response body",
		Priority: PriorityNormal,
	},
	ErrInternal: {
		Code: ErrInternal, Category: "system", Description: "Internal error",
		Priority: PriorityCritical,
	},
}
