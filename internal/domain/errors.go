package domain

import "errors"

var (
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrFileTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedProvider   = errors.New("unsupported provider")
	ErrInvalidProviderConfig = errors.New("invalid provider configuration")
	ErrEmptyBatch            = errors.New("no valid files to process")
)
