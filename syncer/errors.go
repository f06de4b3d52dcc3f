package syncer

import (
	"errors"
	"fmt"
)

// Sentinel errors for the sync engine. Callers branch with errors.Is;
// none of these are retried automatically.
var (
	// ErrConfigInvalid means the persisted sync config failed validation
	// at load time. Fatal for startup, never produced at runtime.
	ErrConfigInvalid = errors.New("sync config invalid")

	// ErrDuplicateServer is returned when adding a guild that is already
	// in the sync list.
	ErrDuplicateServer = errors.New("server already in sync list")

	// ErrUnknownServer is returned for operations referencing a guild
	// that is not in the sync list.
	ErrUnknownServer = errors.New("server not in sync list")

	// ErrValidation covers malformed mutation input (empty label etc).
	ErrValidation = errors.New("validation failed")

	// ErrDuplicatePunishment is returned when proposing a punishment id
	// that already exists in the audit trail.
	ErrDuplicatePunishment = errors.New("punishment already proposed")

	// ErrInvalidState is returned for a confirm/reject that lost a race
	// or arrived after the confirmation was already settled.
	ErrInvalidState = errors.New("confirmation not pending")

	// ErrPermissionDenied marks a hierarchy violation for one target;
	// it never aborts sibling targets.
	ErrPermissionDenied = errors.New("role hierarchy denies action")

	// ErrPunishmentNotFound is returned for operations on an id the
	// audit trail has never seen.
	ErrPunishmentNotFound = errors.New("punishment not found")

	// ErrNotAuthorized is returned when a revoke comes from neither the
	// issuer nor an operator.
	ErrNotAuthorized = errors.New("actor not authorized")
)

// EffectorError wraps a failed remote call. It is recorded as a terminal
// per-target outcome and surfaced to operators; the caller must not
// blindly retry a moderation action.
type EffectorError struct {
	GuildID string
	Op      string
	Err     error
}

func (e *EffectorError) Error() string {
	return fmt.Sprintf("effector %s failed on guild %s: %v", e.Op, e.GuildID, e.Err)
}

func (e *EffectorError) Unwrap() error { return e.Err }
