package deploy

import (
	"errors"
	"fmt"
)

var (
	// ErrInput is returned for malformed addresses, seeds, paths and function ids. Nothing has
	// been sent to the network.
	ErrInput = errors.New("invalid input")
	// ErrBuild is returned when the package cannot be built. Nothing has been sent to the network.
	ErrBuild = errors.New("package build failed")
	// ErrSubmission is returned when the node cannot be reached or rejects a transaction.
	ErrSubmission = errors.New("transaction submission failed")
	// ErrConfirmation is returned when a submitted transaction is not committed successfully.
	ErrConfirmation = errors.New("transaction confirmation failed")
	// ErrResourceAddressMismatch is returned when the address the package was built against
	// differs from the address derived after the account was created.
	ErrResourceAddressMismatch = errors.New("resource address mismatch")
)

// StepError is returned by Run. It records the state the run was in when it failed.
type StepError struct {
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed in state %s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
