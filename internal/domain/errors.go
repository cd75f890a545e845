package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeFileUnreadable      ErrorCode = "FILE_UNREADABLE"
	CodeUnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	CodeMalformedPattern    ErrorCode = "MALFORMED_PATTERN"
	CodeUnmatchedDelimiter  ErrorCode = "UNMATCHED_DELIMITER"
	CodeUnresolvedImport    ErrorCode = "UNRESOLVED_IMPORT"
	CodeUnresolvedType      ErrorCode = "UNRESOLVED_TYPE"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeInvalidArgument     ErrorCode = "INVALID_ARGUMENT"
)

const (
	CtxPath     = "path"
	CtxLanguage = "language"
	CtxPattern  = "pattern"
	CtxIndex    = "index"
)

// Error is a categorized failure. Per-file errors are recorded in the index
// rather than returned, so the Code is what callers switch on.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func IsCode(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or "" for uncategorized errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
