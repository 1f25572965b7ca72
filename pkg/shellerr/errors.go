// Package shellerr defines the coded errors returned by the supervisor, health probe and
// command proxy. Every error renders to a single human-readable line that a host can show
// in its UI or write to its log without further formatting.
package shellerr

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Error represents an error with additional context for troubleshooting.
type Error struct {
	// Code identifies the error type
	Code Code

	// Message is the primary error message
	Message string

	// Context provides additional details (attempted path, HTTP status, tool name)
	Context map[string]interface{}

	// Cause is the underlying error (if any)
	Cause error

	// Suggestion provides actionable guidance for resolving the error
	Suggestion string
}

// Code identifies categories of errors
type Code string

const (
	// Startup errors, fatal to application launch
	CodeNotResolvable     Code = "NOT_RESOLVABLE"
	CodeBinaryNotFound    Code = "BINARY_NOT_FOUND"
	CodeSpawnFailed       Code = "SPAWN_FAILED"
	CodeSupervisorStopped Code = "SUPERVISOR_STOPPED"

	// Shutdown errors
	CodeTerminationFailed Code = "TERMINATION_FAILED"

	// Health probe outcomes
	CodeUnhealthy     Code = "UNHEALTHY"
	CodeRequestFailed Code = "REQUEST_FAILED"

	// Command proxy outcomes
	CodeToolCallFailed  Code = "TOOL_CALL_FAILED"
	CodeTransportFailed Code = "TRANSPORT_FAILED"

	// Command surface errors
	CodeUnknownCommand   Code = "UNKNOWN_COMMAND"
	CodeInvalidArguments Code = "INVALID_ARGUMENTS"
)

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		contextParts := make([]string, 0, len(keys))
		for _, k := range keys {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("Context: %s", strings.Join(contextParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", e.Cause))
	}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("Suggestion: %s", e.Suggestion))
	}

	return strings.Join(parts, "; ")
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause adds the underlying cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithSuggestion adds an actionable suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// ErrNotResolvable creates an error for a path that cannot be computed
func ErrNotResolvable(what string, cause error) *Error {
	return New(CodeNotResolvable, fmt.Sprintf("Cannot resolve %s", what)).
		WithContext("target", what).
		WithCause(cause)
}

// ErrBinaryNotFound creates an error for a resolved backend binary that is not on disk
func ErrBinaryNotFound(path string) *Error {
	return New(CodeBinaryNotFound, "Backend binary not found").
		WithContext("path", path).
		WithSuggestion(fmt.Sprintf(
			"Build the backend binary and place it at %s (for example: make native)", path))
}

// ErrSpawnFailed creates an error for an OS-level launch failure
func ErrSpawnFailed(path string, cause error) *Error {
	return New(CodeSpawnFailed, "Failed to start backend process").
		WithContext("path", path).
		WithCause(cause).
		WithSuggestion(
			"Common causes:\n" +
				"  1. Binary is not executable (chmod +x)\n" +
				"  2. Binary was built for another platform\n" +
				"  3. Insufficient permissions")
}

// ErrSupervisorStopped creates an error for a start attempted after the supervisor stopped
func ErrSupervisorStopped() *Error {
	return New(CodeSupervisorStopped, "Supervisor already stopped; create a new supervisor to run the backend again")
}

// ErrTerminationFailed creates an error for a backend process that could not be terminated
func ErrTerminationFailed(pid int, cause error) *Error {
	return New(CodeTerminationFailed, "Failed to terminate backend process").
		WithContext("pid", pid).
		WithCause(cause).
		WithSuggestion(forceKillHint(runtime.GOOS, pid))
}

func forceKillHint(goos string, pid int) string {
	if goos == "windows" {
		return fmt.Sprintf("Force kill the process manually: taskkill /F /PID %d", pid)
	}
	return fmt.Sprintf("Force kill the process manually: kill -9 %d", pid)
}

// ErrUnhealthy creates an error for a health endpoint that answered with a non-success status
func ErrUnhealthy(url string, status int) *Error {
	return New(CodeUnhealthy, fmt.Sprintf("Server returned status: %d", status)).
		WithContext("url", url).
		WithContext("status", status)
}

// ErrRequestFailed creates an error for a health request that never got a response
func ErrRequestFailed(url string, cause error) *Error {
	return New(CodeRequestFailed, "Health check failed").
		WithContext("url", url).
		WithCause(cause).
		WithSuggestion(fmt.Sprintf("Verify the backend is running: curl %s", url))
}

// ErrToolCallFailed creates an error for a tool call answered with a non-success status
func ErrToolCallFailed(tool string, status int) *Error {
	return New(CodeToolCallFailed, fmt.Sprintf("MCP tool call failed: %d", status)).
		WithContext("tool", tool).
		WithContext("status", status)
}

// ErrTransportFailed creates an error for a tool call that did not complete an HTTP exchange
func ErrTransportFailed(tool string, cause error) *Error {
	return New(CodeTransportFailed, "Failed to call MCP tool").
		WithContext("tool", tool).
		WithCause(cause)
}

// ErrUnknownCommand creates an error for a command name the host never registered
func ErrUnknownCommand(name string) *Error {
	return New(CodeUnknownCommand, fmt.Sprintf("Unknown command '%s'", name)).
		WithContext("command", name)
}

// ErrInvalidArguments creates an error for command arguments that cannot be decoded
func ErrInvalidArguments(command string, cause error) *Error {
	return New(CodeInvalidArguments, fmt.Sprintf("Invalid arguments for command '%s'", command)).
		WithContext("command", command).
		WithCause(cause)
}

// IsCode checks if an error (or any error it wraps) has the specified code
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first *Error in the chain, or empty string
func CodeOf(err error) Code {
	var shellErr *Error
	if errors.As(err, &shellErr) {
		return shellErr.Code
	}
	return ""
}

// StatusOf returns the HTTP status carried by an UNHEALTHY or TOOL_CALL_FAILED error
func StatusOf(err error) (int, bool) {
	var shellErr *Error
	if !errors.As(err, &shellErr) {
		return 0, false
	}
	status, ok := shellErr.Context["status"].(int)
	return status, ok
}

// SuggestionOf returns the suggestion from an error, or empty string if not available
func SuggestionOf(err error) string {
	var shellErr *Error
	if errors.As(err, &shellErr) {
		return shellErr.Suggestion
	}
	return ""
}
