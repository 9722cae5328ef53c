package domain

import "errors"

var (
	// ErrInsufficientInventory is returned when the bank holds fewer questions than an attempt needs.
	ErrInsufficientInventory = errors.New("not enough questions in the bank")
	// ErrAlreadyActive is returned when a user starts a quiz while another attempt is in progress.
	ErrAlreadyActive = errors.New("an attempt is already in progress")
	// ErrAttemptNotFound indicates the attempt does not exist or belongs to another user.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptNotActive is returned for any mutation of a completed or abandoned attempt,
	// and for submissions aimed at a position that has already been answered.
	ErrAttemptNotActive = errors.New("attempt is not active")
	// ErrInvalidTiming indicates a negative elapsed time between showing and answering.
	ErrInvalidTiming = errors.New("invalid answer timing")
	// ErrInvalidGrade indicates a grade outside {0,1}.
	ErrInvalidGrade = errors.New("invalid grade")
	// ErrQuestionNotFound indicates a question id that is not in the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuestion is returned for structurally incomplete question records.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrMalformedRecord is returned when a stored record fails validation on load.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrRevisionConflict is returned by attempt stores when a conditional update loses a race.
	ErrRevisionConflict = errors.New("attempt revision conflict")
	// ErrStoreUnavailable wraps transient storage failures; callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUnauthenticated is returned when an operation needs a user identity and none was supplied.
	ErrUnauthenticated = errors.New("authentication required")
)
