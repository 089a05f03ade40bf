package utils

import "time"

// Application Constants
const (
	AppName    = "GoTransit"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "INR"
	DefaultTimeZone = "UTC"

	// Planning Constants
	DefaultWalkingRadiusKM = 1.0
	MaxLegsPerJourney      = 3
	MaxItineraryCandidates = 5
	PlanSessionTTL         = 15 * time.Minute

	// Provider Constants
	ProviderQuoteTimeout = 4 * time.Second
	QuoteValidityWindow  = 10 * time.Minute

	// Rate Limiting
	DefaultRateLimit = 100
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusFailed  = "failed"
)

// Error Codes
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeBadRequest          = "BAD_REQUEST"
	CodeNoViableLeg         = "NO_VIABLE_LEG"
	CodeNoQuotesAvailable   = "NO_QUOTES_AVAILABLE"
	CodeQuoteExpired        = "QUOTE_EXPIRED"
	CodeProviderRejected    = "PROVIDER_REJECTED"
	CodePaymentFailed       = "PAYMENT_FAILED"
	CodeProviderUnreachable = "PROVIDER_UNREACHABLE"
)

// Error Messages
const (
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrNotFound         = "not found"
	ErrValidationFailed = "validation failed"
	ErrJourneyNotFound  = "journey not found"
	ErrBookingNotFound  = "booking not found"
	ErrPaymentNotFound  = "payment not found"
)

// Cache Keys
const (
	CacheKeyJourneyPrefix  = "plan:journey:"
	CacheKeyCorridorActive = "transit:corridors:active"
)
