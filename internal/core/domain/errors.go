package domain

import "errors"

// Sentinel errors for the networking service.
var (
	// ErrProfileNotFound indicates no profile row exists for the user.
	// HTTP Status: 404 Not Found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrEventNotFound indicates the event does not exist or cannot be joined.
	// HTTP Status: 404 Not Found
	ErrEventNotFound = errors.New("event not found")

	// ErrEventCodeTaken indicates another event already uses the join code.
	// HTTP Status: 409 Conflict
	ErrEventCodeTaken = errors.New("event code already in use")

	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionExists   = errors.New("connection already exists")
	ErrConnectToSelf      = errors.New("cannot connect to yourself")
	ErrMatchNotFound      = errors.New("match not found")

	// ErrInvalidAnswers indicates a survey question was left unanswered.
	// HTTP Status: 400 Bad Request
	ErrInvalidAnswers = errors.New("both questions must be answered")

	// ErrInvalidID indicates a path or body id is not a UUID.
	// HTTP Status: 400 Bad Request
	ErrInvalidID = errors.New("invalid id")

	// ErrForbidden indicates the session may not act on the resource.
	// HTTP Status: 403 Forbidden
	ErrForbidden = errors.New("forbidden")

	// ErrResolutionSuperseded indicates a newer onboarding resolution for the
	// same user started before this one finished. The result must not drive
	// navigation.
	// HTTP Status: 409 Conflict
	ErrResolutionSuperseded = errors.New("onboarding resolution superseded")

	// ErrExternalService indicates the matching/asset service failed.
	// HTTP Status: 502 Bad Gateway
	ErrExternalService = errors.New("external service error")
)
