package files

import "errors"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrEmptyFilename     = errors.New("filename cannot be empty")
	ErrFileTooLarge      = errors.New("file exceeds the per-file size limit")
	ErrTooManyFiles      = errors.New("too many files in one upload")
	ErrTotalSizeExceeded = errors.New("upload exceeds the total size limit")
)
