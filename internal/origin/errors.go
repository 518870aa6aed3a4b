package origin

import (
	"errors"
	"fmt"
)

const (
	emptyChangeMessageTemplateConstant           = "skipping import of change %d for branch %s. Only tracking changes for branch %s"
	invalidInputMessageTemplateConstant          = "invalid %s: %s"
	cannotResolveRevisionMessageTemplateConstant = "cannot resolve revision %s: %s"
)

// EmptyChangeError signals that a change exists but is outside the tracked
// branch, so the resolution produced nothing to migrate. It is an expected
// outcome, not a failure.
type EmptyChangeError struct {
	ChangeNumber int64
	ChangeBranch string
	TargetBranch string
}

// Error describes why the change was skipped.
func (emptyChangeError EmptyChangeError) Error() string {
	return fmt.Sprintf(emptyChangeMessageTemplateConstant, emptyChangeError.ChangeNumber, emptyChangeError.ChangeBranch, emptyChangeError.TargetBranch)
}

// IsEmptyChange reports whether the error marks a change skipped as empty.
func IsEmptyChange(candidateError error) bool {
	var emptyChangeError EmptyChangeError
	return errors.As(candidateError, &emptyChangeError)
}

// InvalidInputError reports caller-supplied input that cannot be processed.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputMessageTemplateConstant, inputError.FieldName, inputError.Message)
}

// CannotResolveRevisionError reports a reference or revision that could not be
// resolved against the repository.
type CannotResolveRevisionError struct {
	Reference string
	Cause     error
}

// Error describes the resolution failure.
func (resolutionError CannotResolveRevisionError) Error() string {
	return fmt.Sprintf(cannotResolveRevisionMessageTemplateConstant, resolutionError.Reference, resolutionError.Cause)
}

// Unwrap exposes the underlying cause.
func (resolutionError CannotResolveRevisionError) Unwrap() error {
	return resolutionError.Cause
}
