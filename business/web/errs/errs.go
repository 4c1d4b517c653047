// Package errs carries the errors node handlers expect to return, such as a
// rejected block or transaction, and the body sent back to the client.
package errs

import "errors"

// Response is the body returned when a request fails. Fields is set when the
// payload of a proposed block or submitted transaction fails validation.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an error whose message is safe to show the client, like a
// chain or pool rejection, paired with the status to respond with.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps the error with the status the client should see.
func NewTrusted(err error, status int) error {
	return &Trusted{Err: err, Status: status}
}

// Error implements the error interface.
func (t *Trusted) Error() string {
	return t.Err.Error()
}

// Unwrap lets errors.Is reach the rejection reason, for example
// chain.ErrTooOld.
func (t *Trusted) Unwrap() error {
	return t.Err
}

// IsTrusted reports whether a Trusted error is in the chain.
func IsTrusted(err error) bool {
	var t *Trusted
	return errors.As(err, &t)
}

// GetTrusted returns the Trusted error in the chain or nil.
func GetTrusted(err error) *Trusted {
	var t *Trusted
	if !errors.As(err, &t) {
		return nil
	}
	return t
}
