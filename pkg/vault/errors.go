package vault

import "errors"

var (
	ErrKeyNotFound   = errors.New("vault: key not found")
	ErrUnavailable   = errors.New("vault: custodian unavailable")
	ErrInvalidConfig = errors.New("vault: invalid configuration")
	ErrMalformedKey  = errors.New("vault: stored key is malformed")
)
