package appconfig

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an identity-addressed operation matches no
// row. The web layer maps it to 404.
var ErrNotFound = errors.New("app config not found")

// ErrInvalidSortColumn is returned when sort_by names a column outside the
// allow-list. The web layer maps it to 400.
var ErrInvalidSortColumn = errors.New("invalid sort column")

// UserMessage provides user-friendly error information with a code for
// support reference. Technical detail stays in the server logs.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive substring match)
// to user messages. First match wins, so specific patterns come before
// general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this identifier already exists",
			Action:  "Check the uuid of the record you are creating",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Narrow the filter or try again later",
			Code:    "DB004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Narrow the filter or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "csv",
		msg: UserMessage{
			Message: "Failed to generate the CSV export",
			Action:  "Please try again",
			Code:    "ENC001",
		},
	},
}

// defaultMessage is the fallback when no pattern matches. Support staff
// should check the logs for the original error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. The raw
// error text never reaches the caller.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}
