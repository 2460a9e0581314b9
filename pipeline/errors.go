package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of a run. Operators use the code to
// separate content-level failures from infrastructure stalls.
type ErrorCode string

const (
	// CodeValidation: required configuration is missing (e.g. no voice
	// selected). Never retried.
	CodeValidation ErrorCode = "validation_error"

	// CodeTransient: network/5xx class failure from an external service.
	// Retried a bounded number of times at the step boundary.
	CodeTransient ErrorCode = "transient_service_error"

	// CodeParse: a service response was not valid structured data after
	// stripping known formatting wrappers.
	CodeParse ErrorCode = "parse_error"

	// CodeRenderFatal: the remote render service reported an unrecoverable
	// error for the job.
	CodeRenderFatal ErrorCode = "render_fatal_error"

	// CodeRenderTimeout: the poll attempt budget was exhausted without the
	// job reaching done or fatal. Signals infrastructure stall, not content.
	CodeRenderTimeout ErrorCode = "render_timeout"

	// CodeStepFailure: anything else that killed a step.
	CodeStepFailure ErrorCode = "step_failure"
)

// PipelineError is a classified failure produced by a step or adapter.
type PipelineError struct {
	Code ErrorCode
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewValidationError marks a run-killing configuration problem.
func NewValidationError(format string, args ...interface{}) error {
	return &PipelineError{Code: CodeValidation, Err: fmt.Errorf(format, args...)}
}

// NewTransientError marks a retryable service failure.
func NewTransientError(err error) error {
	return &PipelineError{Code: CodeTransient, Err: err}
}

// NewParseError marks an unparseable service response.
func NewParseError(err error) error {
	return &PipelineError{Code: CodeParse, Err: err}
}

// NewRenderFatalError carries the render service's reported message.
func NewRenderFatalError(message string) error {
	return &PipelineError{Code: CodeRenderFatal, Err: errors.New(message)}
}

// NewRenderTimeoutError marks an exhausted poll budget.
func NewRenderTimeoutError(attempts int) error {
	return &PipelineError{Code: CodeRenderTimeout, Err: fmt.Errorf("render job not finished after %d poll attempts", attempts)}
}

// Classify extracts the error code from err, defaulting to CodeStepFailure
// for unclassified errors.
func Classify(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeStepFailure
}

// IsRetryable reports whether the step retry policy may re-attempt after err.
// Only transient service failures are retryable; validation, parse and render
// outcomes are final.
func IsRetryable(err error) bool {
	return Classify(err) == CodeTransient
}
