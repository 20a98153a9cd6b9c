package training

import "errors"

var (
	// ErrProofRequired is returned when finalizing a session without a proof URL.
	ErrProofRequired = errors.New("proof url required before finalizing")
	// ErrFinalized is returned when changing attendance of a finalized session.
	ErrFinalized = errors.New("training session already finalized")
	// ErrNotPlanned is returned when attendance names someone not on the planned list.
	ErrNotPlanned = errors.New("attendee not planned for session")
	// ErrConflictingAttendance is returned when a name is both present and excused.
	ErrConflictingAttendance = errors.New("attendee both present and excused")
	// ErrEmptyImport is returned when a CSV has no header line.
	ErrEmptyImport = errors.New("empty training import")
)
