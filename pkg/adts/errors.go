package adts

import (
	"errors"
	"fmt"
)

// Source errors. These are reported before any header field is read.
var (
	// ErrSourceUnavailable indicates the byte source could not be opened or read.
	ErrSourceUnavailable = errors.New("adts: source unavailable")

	// ErrEmptyInput indicates the byte source held no data.
	ErrEmptyInput = errors.New("adts: empty input")
)

// Header field errors.
var (
	// ErrSyncNotFound indicates no 0xFFF sync word was found in the buffer.
	ErrSyncNotFound = errors.New("adts: sync word not found")

	// ErrInvalidLayer indicates the two layer bits were not both 0.
	ErrInvalidLayer = errors.New("adts: invalid layer")

	// ErrInvalidProfile indicates the reserved profile code 0 or a code above 4.
	ErrInvalidProfile = errors.New("adts: invalid profile")

	// ErrInvalidSamplingFrequency indicates a sampling frequency index >= 13.
	ErrInvalidSamplingFrequency = errors.New("adts: invalid sampling frequency index")

	// ErrInvalidChannelConfig indicates a reserved channel configuration (8-15).
	ErrInvalidChannelConfig = errors.New("adts: invalid channel configuration")

	// ErrTruncatedHeader indicates the buffer ended before the field's byte.
	ErrTruncatedHeader = errors.New("adts: truncated header")
)

// FieldError records why a single header field could not be decoded.
type FieldError struct {
	Field Field
	Code  uint8 // raw value read from the header, 0 when nothing was read
	Err   error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrSyncNotFound) || errors.Is(e.Err, ErrTruncatedHeader) {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v (code %d)", e.Field, e.Err, e.Code)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
