package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNoDataFile        = errors.New("no data file found")
	ErrAmbiguousDataFile = errors.New("more than one data file")
	ErrMissingColumn     = errors.New("missing column")
	ErrDecode            = errors.New("decode failed")
	ErrNotImplemented    = errors.New("not implemented")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrNotFound          = errors.New("not found")
)
