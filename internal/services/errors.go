package services

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP layer can pick a status code
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindConflict
	KindDomainRule
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindDomainRule:
		return "domain_rule"
	default:
		return "unexpected"
	}
}

// Error is a classified service failure
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

var (
	ErrDuplicateRequest       = &Error{KindConflict, "match request already exists"}
	ErrRequestInFlight        = &Error{KindConflict, "an identical request is already being processed"}
	ErrMatchRequestNotFound   = &Error{KindNotFound, "match request not found"}
	ErrMatchNotAccepted       = &Error{KindConflict, "no accepted match request exists for these dogs"}
	ErrMatchAlreadyResolved   = &Error{KindConflict, "match request has already been answered"}
	ErrDogNotFound            = &Error{KindNotFound, "dog not found"}
	ErrUserNotFound           = &Error{KindNotFound, "user not found"}
	ErrChatRoomNotFound       = &Error{KindNotFound, "chat room not found"}
	ErrMeetupNotFound         = &Error{KindNotFound, "meet-up not found"}
	ErrForbidden              = &Error{KindAuthorization, "you are not a participant"}
	ErrNotDogOwner            = &Error{KindAuthorization, "you do not own this dog"}
	ErrInvalidTransition      = &Error{KindConflict, "invalid status transition"}
	ErrPuppyModeBlocked       = &Error{KindDomainRule, "meet-up creation is disabled while either dog is in puppy mode"}
	ErrSelfReview             = &Error{KindDomainRule, "you cannot review yourself"}
	ErrMeetupNotCompleted     = &Error{KindDomainRule, "reviews are only allowed for completed meet-ups"}
	ErrDuplicateReview        = &Error{KindConflict, "you have already reviewed this meet-up"}
	ErrVaccinationsIncomplete = &Error{KindDomainRule, "both core vaccinations are required to switch to social mode"}
	ErrSameMode               = &Error{KindValidation, "dog is already in this mode"}
)

// Validation builds a validation error with a formatted message
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// KindOf classifies err; anything unclassified is unexpected
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
