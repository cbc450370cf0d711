package domain

import "errors"

// Kind is the semantic category of an error surfaced by the booking core.
type Kind int

const (
	KindInternal          Kind = iota // storage or unexpected failure (500)
	KindValidation                    // missing or malformed input (400)
	KindInvalidTimeFormat             // malformed slot range text (400)
	KindNotFound                      // referenced entity absent (404)
	KindSlotAlreadyBooked             // lost the claim race (409)
	KindDuplicateBooking              // claimant already holds a slot in the meeting (409)
	KindConflict                      // other state conflicts, e.g. taken meeting id (409)
	KindSlotNotFound                  // booking target slot absent (404)
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindInvalidTimeFormat:
		return "invalid_time_format"
	case KindNotFound:
		return "not_found"
	case KindSlotAlreadyBooked:
		return "slot_already_booked"
	case KindDuplicateBooking:
		return "duplicate_booking"
	case KindConflict:
		return "conflict"
	case KindSlotNotFound:
		return "slot_not_found"
	default:
		return "internal_error"
	}
}

// Error carries a Kind alongside a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a domain error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

func NewValidationError(message string, err ...error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: errors.Join(err...)}
}

func NewInvalidTimeFormat(message string, err ...error) *Error {
	return &Error{Kind: KindInvalidTimeFormat, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: errors.Join(err...)}
}

func NewSlotNotFound(message string, err ...error) *Error {
	return &Error{Kind: KindSlotNotFound, Message: message, Err: errors.Join(err...)}
}

func NewSlotAlreadyBooked(message string, err ...error) *Error {
	return &Error{Kind: KindSlotAlreadyBooked, Message: message, Err: errors.Join(err...)}
}

func NewDuplicateBooking(message string, err ...error) *Error {
	return &Error{Kind: KindDuplicateBooking, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: errors.Join(err...)}
}
