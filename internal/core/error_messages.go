package core

// # Error Codes Reference
//
// This file maps batch-level failures (the import could not start, a
// request was rejected) to user-friendly messages with codes for support
// reference. Row-level problems are reported as ErrorRecords instead.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A record with this key already exists
//	DB002 - Unique constraint: This value must be unique but already exists
//	DB003 - Foreign key: Referenced record does not exist
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//	DB007 - Deadlock: Database was busy with conflicting operations
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	FILE002 - Invalid workbook: File is not a readable xlsx or CSV file
//	FILE003 - Empty file: The uploaded file has no rows
//	FILE004 - No file: No file was selected
//	FILE005 - No columns: No header matched a known column
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: Too many imports in progress
//	IMP002 - Result expired: Import result not found
//	IMP003 - Unknown template: Template mode is not supported
//	IMP004 - Unknown format: Template format is not supported
//	IMP005 - Unknown kind: Import kind is not supported
//	IMP006 - Store unavailable: Existing records could not be loaded
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check
// application logs for the original technical error when users report ERR000.
//
// Patterns are matched case-insensitively using strings.Contains and the
// first matching pattern wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Another import may have created the same record; run the import again",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate names or emails in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate names or emails in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Make sure the fallback category exists",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "open xlsx",
		msg: UserMessage{
			Message: "File is not a readable xlsx or CSV file",
			Action:  "Save the file as .xlsx or .csv and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "File is not a readable xlsx or CSV file",
			Action:  "Save the file as .xlsx or .csv and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "worksheet is empty",
		msg: UserMessage{
			Message: "The uploaded file has no rows",
			Action:  "Download a template and fill in at least one row",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an xlsx or CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no recognized columns",
		msg: UserMessage{
			Message: "No column header was recognized",
			Action:  "Use the column names from the import template",
			Code:    "FILE005",
		},
	},

	// Import
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "Too many imports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "import result not found",
		msg: UserMessage{
			Message: "Import result not found",
			Action:  "Results are kept for a limited time; run the import again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "unknown template mode",
		msg: UserMessage{
			Message: "Template mode is not supported",
			Action:  "Use products, customers, sales or full",
			Code:    "IMP003",
		},
	},
	{
		pattern: "unknown template format",
		msg: UserMessage{
			Message: "Template format is not supported",
			Action:  "Use xlsx or csv",
			Code:    "IMP004",
		},
	},
	{
		pattern: "unknown import kind",
		msg: UserMessage{
			Message: "Import kind is not supported",
			Action:  "Use auto, products, customers or sales",
			Code:    "IMP005",
		},
	},
	{
		pattern: "load existing records",
		msg: UserMessage{
			Message: "Existing records could not be loaded",
			Action:  "Please try again in a few moments",
			Code:    "IMP006",
		},
	},

	// Request
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback message with code ERR000 is returned.
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
