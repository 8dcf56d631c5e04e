package blob

import "errors"

var (
	ErrNotFound      = errors.New("blob: not found")
	ErrInvalidPath   = errors.New("blob: invalid path")
	ErrInvalidConfig = errors.New("blob: invalid configuration")
	ErrWriteFailed   = errors.New("blob: write failed")
	ErrReadFailed    = errors.New("blob: read failed")
	ErrDeleteFailed  = errors.New("blob: delete failed")
	ErrAccessDenied  = errors.New("blob: access denied")
	ErrUnavailable   = errors.New("blob: storage unavailable")
	ErrUnknownDriver = errors.New("blob: unknown driver")
)
