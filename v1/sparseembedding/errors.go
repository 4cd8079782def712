package sparseembedding

import "errors"

// ErrUnexpectedStatus is returned for responses other than 200.
var ErrUnexpectedStatus = errors.New("sparseembedding: unexpected status")
