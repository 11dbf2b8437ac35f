// Package errors provides standardized error handling for vidhub.
// It defines the error kinds used across the gallery controller, the worker
// bridge and configuration, and helpers for consistent creation, wrapping and
// classification of failures.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Recoverable-local kinds: clamp or no-op, never surfaced to the user
	InvalidIndex
	EmptyInput
	OutOfRange
	// Contract-violation kinds: log and discard the inbound event
	ContractViolation
	StaleEvent
	UnknownMessage
	// Worker and transport kinds
	WorkerUnavailable
	TransportFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
)

// Common error constants for frequently occurring errors
var (
	ErrInvalidIndex      = NewKind("index out of range", InvalidIndex, nil)
	ErrEmptyInput        = NewKind("empty input", EmptyInput, nil)
	ErrWorkerUnavailable = NewBridgeError("worker unavailable", "", WorkerUnavailable, nil)
	ErrInvalidConfig     = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrFileNotFound      = NewFileError("file not found", "", FileNotFound, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// NewKind creates an error of a specific kind
func NewKind(msg string, kind ErrorKind, err error) *ApplicationError {
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: kind,
	}
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// BridgeError represents errors raised while encoding, decoding or
// delivering a message between the gallery and the worker process.
type BridgeError struct {
	ApplicationError
	message string
	context map[string]interface{}
}

// NewBridgeError creates a new bridge error for the named message
func NewBridgeError(msg string, message string, kind ErrorKind, err error) *BridgeError {
	return &BridgeError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the bridge error
func (e *BridgeError) WithContext(key string, value interface{}) *BridgeError {
	e.context[key] = value
	return e
}

// Error returns the bridge error message
func (e *BridgeError) Error() string {
	if e.message != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: message=%s: %v", e.msg, e.message, e.err)
		}
		return fmt.Sprintf("%s: message=%s", e.msg, e.message)
	}
	return e.ApplicationError.Error()
}

// Message returns the wire name of the message involved
func (e *BridgeError) Message() string {
	return e.message
}

// Context returns the context information associated with the error
func (e *BridgeError) Context() map[string]interface{} {
	return e.context
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the outermost classified error in err's chain
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsRecoverable reports whether err is a recoverable-local failure
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case InvalidIndex, EmptyInput, OutOfRange:
		return true
	}
	return false
}

// IsContractViolation checks if the error is a malformed or unknown inbound message
func IsContractViolation(err error) bool {
	switch KindOf(err) {
	case ContractViolation, UnknownMessage:
		return true
	}
	return false
}

// IsStale checks if the error marks an event from a superseded import cycle
func IsStale(err error) bool {
	return KindOf(err) == StaleEvent
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsBridgeError checks if the error is a bridge error
func IsBridgeError(err error) bool {
	var bridgeErr *BridgeError
	return errors.As(err, &bridgeErr)
}
