package constants

// Context keys shared between middleware and handlers.
const (
	ContextKeyUserID      = "user_id"
	ContextKeyUserRole    = "user_role"
	ContextKeyTokenClaims = "token_claims"
	ContextKeyRequestID   = "request_id"
)

// Pagination defaults.
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Field limits.
const (
	MinPasswordLength        = 6
	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 500
	MaxUserNameLength        = 100
)

const (
	HeaderRequestID = "X-Request-ID"
	BearerPrefix    = "Bearer "
)
