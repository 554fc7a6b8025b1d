package sunat

import "errors"

var (
	// ErrValidation wraps the validate package's errors, nothing was sent.
	ErrValidation = errors.New("sunat: invalid input")
	// ErrTransport means the portal could not be reached or answered with an
	// unexpected status.
	ErrTransport = errors.New("sunat: portal unavailable")
	// ErrSession means the portal kept rejecting the session after a reset.
	// It is always reported wrapped in ErrTransport.
	ErrSession = errors.New("sunat: session rejected")
)
