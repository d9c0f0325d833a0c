// SPDX-License-Identifier: MIT
package ivsapi

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrInvalidArgument = errors.New("ivsapi: invalid argument")
	ErrTransport       = errors.New("ivsapi: host unreachable or transport failure")
	ErrBadResponse     = errors.New("ivsapi: unexpected upstream status or response shape")
)

// APIError wraps the sentinel errors with request context.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Err       error // nested lower-level error (e.g. net.Error)
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("ivsapi: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

func transportErr(op string, err error) error {
	return &APIError{Sentinel: ErrTransport, Operation: op, Err: err}
}

func badResponseErr(op string, status int, err error) error {
	return &APIError{Sentinel: ErrBadResponse, Operation: op, Status: status, Err: err}
}
