package envelope

import "errors"

var (
	ErrInvalidKeySize   = errors.New("envelope: key must be 32 bytes")
	ErrEncryptionFailed = errors.New("envelope: encryption failed")
	ErrDecryptionFailed = errors.New("envelope: decryption failed")
	ErrInvalidChunkSize = errors.New("envelope: invalid chunk size")
	ErrWriterClosed     = errors.New("envelope: writer already closed")
)
