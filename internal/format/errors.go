package format

import "errors"

var (
	// ErrSignatureMismatch indicates a page did not start with the capture pattern.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a page header.
	ErrTruncated = errors.New("format: truncated buffer")
)
