// Package core provides the business logic for equipment dataset uploads.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Validation Errors (VAL001-VAL099)
//
// Upload rejections. The message of a ValidationError is always shown verbatim.
//
//	VAL002 - Invalid number: a numeric column holds a value that cannot be averaged
//	         Action: Make sure Flowrate, Pressure and Temperature contain only numbers
//	         Patterns: ValidationError{Kind: aggregation}, "invalid number"
//
//	VAL004 - Missing column: one or more required columns are absent
//	         Action: Include Equipment Name, Type, Flowrate, Pressure and Temperature
//	         Patterns: ValidationError{Kind: missing_columns}, "missing required column"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: upload exceeds UPLOAD_MAX_FILE_SIZE
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid CSV: the parser could not produce a table
//	          Patterns: ValidationError{Kind: malformed}, "invalid csv"
//
//	FILE003 - Upload form could not be read
//	          Patterns: "invalid upload form"
//
//	FILE004 - No file: the multipart form has no "file" part
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: the uploaded file has no bytes
//	          Patterns: ValidationError{Kind: empty_upload}, "empty file"
//
// # Dataset Errors (DS001-DS099)
//
//	DS001 - Dataset not found
//	        Patterns: "dataset not found"
//
//	RPT001 - Report could not be rendered
//	         Patterns: "render report"
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Invalid credentials ("invalid credentials")
//	AUTH002 - Invalid or expired token ("invalid token")
//	AUTH003 - Authentication required ("authentication required")
//
// # Database / Request Errors
//
//	DB004 - Connection refused, DB005 - Connection reset, DB006 - Timeout
//	UPL004 - Request cancelled, UPL005 - Request timed out
//	RATE001 - Rate limited
//	VAL001 - Invalid request body or fields, HTTP404 / HTTP405 - Unknown route or method
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// application logs for the original technical error.
//
// # Pattern Matching
//
// Typed errors are checked first. Otherwise patterns are matched
// case-insensitively using strings.Contains and the first match wins, so more
// specific patterns are listed before general ones.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// validationActions maps each rejection kind to its code and suggested action.
var validationActions = map[ValidationKind]UserMessage{
	KindMissingColumns: {
		Action: "Include Equipment Name, Type, Flowrate, Pressure and Temperature columns",
		Code:   "VAL004",
	},
	KindAggregation: {
		Action: "Make sure Flowrate, Pressure and Temperature contain only numbers",
		Code:   "VAL002",
	},
	KindMalformed: {
		Action: "Ensure file is comma-separated with a header row",
		Code:   "FILE002",
	},
	KindEmptyUpload: {
		Action: "Please upload a CSV file with a header row",
		Code:   "FILE005",
	},
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Validation Errors
	// =========================================================================
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "Check that all required columns are present in your file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Make sure Flowrate, Pressure and Temperature contain only numbers",
			Code:    "VAL002",
		},
	},

	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Dataset Errors
	// =========================================================================
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "Dataset not found",
			Action:  "Refresh the history and pick an existing dataset",
			Code:    "DS001",
		},
	},
	{
		pattern: "render report",
		msg: UserMessage{
			Message: "The report could not be generated",
			Action:  "Please try again or contact support",
			Code:    "RPT001",
		},
	},

	// =========================================================================
	// Authentication Errors
	// =========================================================================
	{
		pattern: "invalid credentials",
		msg: UserMessage{
			Message: "Unable to log in with provided credentials",
			Action:  "Check your username and password",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid token",
		msg: UserMessage{
			Message: "Invalid or expired token",
			Action:  "Log in again",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "authentication required",
		msg: UserMessage{
			Message: "Authentication credentials were not provided",
			Action:  "Log in before uploading",
			Code:    "AUTH003",
		},
	},

	// =========================================================================
	// Database Connection Errors
	// =========================================================================
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
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Request Errors
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "invalid upload form",
		msg: UserMessage{
			Message: "The upload form could not be read",
			Action:  "Send the file as multipart/form-data in a field named \"file\"",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body is not valid JSON",
			Action:  "Send a JSON object with username and password",
			Code:    "VAL001",
		},
	},
	{
		pattern: "route not found",
		msg: UserMessage{
			Message: "Page not found",
			Action:  "Check the address",
			Code:    "HTTP404",
		},
	},
	{
		pattern: "method not allowed",
		msg: UserMessage{
			Message: "Method not allowed",
			Action:  "Check the API documentation for supported methods",
			Code:    "HTTP405",
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

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A ValidationError keeps its own message verbatim; other errors are matched
// against known patterns (case-insensitive). If nothing matches, the generic
// ERR000 message is returned.
//
// Example:
//
//	err := errors.New("dataset not found")
//	msg := MapError(err)
//	// msg.Code == "DS001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		msg, ok := validationActions[verr.Kind]
		if !ok {
			msg = UserMessage{Action: defaultMessage.Action, Code: "VAL000"}
		}
		msg.Message = verr.Message
		return msg
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

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error is not the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}
