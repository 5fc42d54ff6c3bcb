package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for configuration and mapping failures. All of them are
// rejected at the point of entry: the triggering operation is a no-op and
// no store write happens.
var (
	// ErrDuplicateField is returned when adding a target field whose name
	// already exists (case-sensitive exact match).
	ErrDuplicateField = errors.New("field name already exists")

	// ErrFieldIndex is returned when renaming a target field at an index
	// outside the current field list.
	ErrFieldIndex = errors.New("field index out of range")

	// ErrEmptyRuleName is returned when saving a preset without a rule name.
	ErrEmptyRuleName = errors.New("preset rule name is required")

	// ErrPresetNotFound is returned when a preset id does not exist.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrNoColumnsMapped is returned by Ingest when every target field is
	// unmapped. No batch is created and the master worksheet is untouched.
	ErrNoColumnsMapped = errors.New("no columns mapped")
)

// PartialArchiveError reports an archive operation that left the two
// worksheets inconsistent: the archive write and the master write are
// sequential and non-atomic, so an interruption between them can leave
// rows duplicated in both stores or lost from both. The counts let an
// operator reconcile by hand.
type PartialArchiveError struct {
	BatchIDs []string

	// ExpectedArchived is how many rows should have landed in the archive
	// for the named batches; ActualArchived is how many did.
	ExpectedArchived int
	ActualArchived   int

	// RemainingActive is how many rows for the named batches are still in
	// the master worksheet after the operation (should be zero).
	RemainingActive int

	Err error
}

func (e *PartialArchiveError) Error() string {
	msg := fmt.Sprintf("partial archive of batches [%s]: expected %d rows archived, found %d, %d still active",
		strings.Join(e.BatchIDs, ", "), e.ExpectedArchived, e.ActualArchived, e.RemainingActive)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PartialArchiveError) Unwrap() error { return e.Err }

// UnavailableError wraps a store failure (network, auth, missing
// worksheet backend) as a recoverable condition. RetryAfter is a
// suggested backoff for the caller; nothing in the engine retries
// automatically, to avoid hammering a rate-limited collaborator.
type UnavailableError struct {
	Op         string
	Worksheet  string
	RetryAfter time.Duration
	Err        error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %s %q: %v", e.Op, e.Worksheet, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// UserMessage is a user-facing rendering of an error: a short support
// code, what happened, and what the user can do about it.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// MapError converts engine and store errors into user-friendly messages.
// Unrecognized errors fall through to a generic message so internal
// details never leak to clients.
func MapError(err error) UserMessage {
	var partial *PartialArchiveError
	var unavailable *UnavailableError

	switch {
	case errors.Is(err, ErrDuplicateField):
		return UserMessage{
			Code:    "CFG001",
			Message: "A field with this name already exists.",
			Action:  "Choose a different field name.",
		}
	case errors.Is(err, ErrFieldIndex):
		return UserMessage{
			Code:    "CFG002",
			Message: "No field exists at this position.",
			Action:  "Reload the schema and try again.",
		}
	case errors.Is(err, ErrEmptyRuleName):
		return UserMessage{
			Code:    "CFG003",
			Message: "The preset needs a rule name.",
			Action:  "Enter a rule name before saving.",
		}
	case errors.Is(err, ErrPresetNotFound):
		return UserMessage{
			Code:    "CFG004",
			Message: "This preset no longer exists.",
			Action:  "Refresh the preset list.",
		}
	case errors.Is(err, ErrNoColumnsMapped):
		return UserMessage{
			Code:    "MAP001",
			Message: "No columns are mapped, so there is nothing to import.",
			Action:  "Map at least one target field to a source column.",
		}
	case errors.As(err, &partial):
		return UserMessage{
			Code:    "ARC001",
			Message: partial.Error(),
			Action:  "Compare the active and archive worksheets and reconcile the listed batches by hand.",
		}
	case errors.As(err, &unavailable):
		return UserMessage{
			Code:    "STO001",
			Message: "The backing store is unavailable right now.",
			Action:  fmt.Sprintf("Wait %s and try again.", unavailable.RetryAfter),
		}
	default:
		return UserMessage{
			Code:    "GEN001",
			Message: "Something went wrong processing this request.",
			Action:  "Try again; quote the error code if the problem persists.",
		}
	}
}
