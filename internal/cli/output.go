package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit statuses.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // failed scenarios, unreachable storage
	ExitCommandError = 2 // bad arguments, rejected item input, bad config
)

// Machine-readable error codes carried in CLIError.Code.
const (
	CodeInvalidInput = "E_INVALID_INPUT"
	CodeStorage      = "E_STORAGE"
	CodeConfig       = "E_CONFIG"
	CodeTestFailed   = "E_TEST_FAILED"
)

// ExitError is returned from RunE to choose the process exit status.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError that unwraps to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to an exit status. Errors that are not an
// ExitError anywhere in their chain exit with ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitFailure
	}
}

// CLIResponse is the envelope written for --format json.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError describes a failed command in a CLIResponse.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or JSON.
//
// Diagnostics go to ErrWriter so they never interleave with JSON on Writer.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func (f *OutputFormatter) json() bool { return f.Format == "json" }

func (f *OutputFormatter) encode(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success writes data. Text output relies on fmt, so views implement
// fmt.Stringer.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.json() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a failure. Details are shown in text mode only when verbose.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.json() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	if _, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if f.Verbose && details != nil {
		_, err := fmt.Fprintf(f.Writer, "Details: %v\n", details)
		return err
	}
	return nil
}

// VerboseLog writes a diagnostic line when Verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, or Writer when none is set.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}
