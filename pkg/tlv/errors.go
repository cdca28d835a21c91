package tlv

import "errors"

var (
	// ErrInvalidKind is returned when a control byte's Kind bits don't match
	// any of the values this package understands.
	ErrInvalidKind = errors.New("tlv: invalid kind")

	// ErrTypeMismatch is returned when a field is read with an accessor that
	// doesn't match its encoded Kind (e.g. Uint() on a String field).
	ErrTypeMismatch = errors.New("tlv: type mismatch")

	// ErrNotInContainer is returned by ExitContainer when there is no open
	// Struct or Array to close.
	ErrNotInContainer = errors.New("tlv: not in container")

	// ErrInvalidUTF8 is returned when a String field's bytes aren't valid
	// UTF-8, or when PutString is given a non-UTF-8 string.
	ErrInvalidUTF8 = errors.New("tlv: invalid UTF-8 string")

	// ErrNoElement is returned by a value accessor, EnterContainer or Skip
	// when there is no current field: before the first Next, or after
	// EnterContainer or ExitContainer until the following Next.
	ErrNoElement = errors.New("tlv: no current element")

	// ErrValueAlreadyRead is returned when a field's value accessor is
	// called a second time for the same field.
	ErrValueAlreadyRead = errors.New("tlv: value already read")
)
