package card

import "errors"

// The three transport error kinds are deliberately distinct types: the card
// being withdrawn mid-write and a key mismatch need different operator action,
// and the engine classifies outcomes by the phase that produced them.

type AuthError struct {
	Status StatusCode
}

func (e *AuthError) Error() string {
	return "authenticate failed: " + e.Status.String()
}

type WriteError struct {
	Status StatusCode
}

func (e *WriteError) Error() string {
	return "block write failed: " + e.Status.String()
}

type ReadError struct {
	Status StatusCode
}

func (e *ReadError) Error() string {
	return "block read failed: " + e.Status.String()
}

// Status extracts the transport status code from any of the three error
// kinds, StatusError when the error carries none.
func Status(err error) StatusCode {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Status
	}
	var writeErr *WriteError
	if errors.As(err, &writeErr) {
		return writeErr.Status
	}
	var readErr *ReadError
	if errors.As(err, &readErr) {
		return readErr.Status
	}
	return StatusError
}
