package repair

import "errors"

var (
	// ErrNoDocument is returned when text contains no brace or bracket pair.
	ErrNoDocument = errors.New("no JSON document found")

	// ErrMalformedDocument is returned when the extracted candidate does not decode.
	ErrMalformedDocument = errors.New("malformed JSON document")
)
