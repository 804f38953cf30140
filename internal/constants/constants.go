package constants

// Pagination
const (
	DefaultPageLimit = 10
	MinPageLimit     = 1
	MaxPageLimit     = 100
)

// Task field limits
const (
	MinTitleLength = 1
	MaxTitleLength = 200
	MinPriority    = 1
	MaxPriority    = 5
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Context keys
const (
	ContextKeyTaskID    = "task_id"
	ContextKeyRequestID = "request_id"
)

// HeaderRequestID carries the request correlation id.
const HeaderRequestID = "X-Request-ID"
