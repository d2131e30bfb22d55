package domain

import "errors"

var (
	// ErrMalformedRecord means neither title nor artist could be located in a
	// stored record body. Listings filter such records out instead of
	// displaying them.
	ErrMalformedRecord = errors.New("malformed record: title and artist missing")

	// ErrAlreadyApproved rejects a duplicate approval before any write occurs.
	ErrAlreadyApproved = errors.New("record already approved")

	// ErrValidation covers missing required fields, detected before any
	// external call.
	ErrValidation = errors.New("missing required field")

	// ErrNotFound means no record exists under the requested id.
	ErrNotFound = errors.New("record not found")
)
