package storage

import "errors"

var (
	// ErrNotFound means the target id has no matching non-deleted row.
	ErrNotFound = errors.New("row not found")
	// ErrUnknownResource means a slug resolved to no registered content kind.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrUndefinedColumn is returned when a query selected columns the
	// deployed schema does not carry (Postgres 42703). Callers may retry
	// with the reduced column set.
	ErrUndefinedColumn = errors.New("undefined column")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrTooManyFiles    = errors.New("too many files")
)
