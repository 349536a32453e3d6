package constants

// Context keys shared between middleware and handlers.
const (
	ContextKeyCaller = "caller"
)

// Password rules.
const (
	MinPasswordLength = 8
)

// Pagination limits.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
