package model

// Punishment kinds.
const (
	PunishmentTimeout = "timeout"
	PunishmentBan     = "ban"
	PunishmentWarn    = "warn"
)

// Punishment record status. Transitions one way: active -> revoked.
const (
	PunishmentActive  = "active"
	PunishmentRevoked = "revoked"
)

// PunishmentRecord represents a single punishment record in the database.
// The database table will be named 'punishments'.
type PunishmentRecord struct {
	PunishmentID  string `db:"punishment_id"` // Primary key, immutable
	Kind          string `db:"kind"`
	UserID        string `db:"user_id"`
	UserUsername  string `db:"user_username"`
	AdminID       string `db:"admin_id"`
	Reason        string `db:"reason"`
	SourceGuildID string `db:"source_guild_id"`
	Evidence      string `db:"evidence"` // JSON string with message content and file paths
	DurationSec   int64  `db:"duration_sec"`
	ExpiresAt     int64  `db:"expires_at"` // 0 for permanent punishments
	Status        string `db:"status"`
	Timestamp     int64  `db:"timestamp"`
}

// Confirmation states per (punishment, target guild).
const (
	ConfirmPending   = "pending"
	ConfirmConfirmed = "confirmed"
	ConfirmRejected  = "rejected"
	ConfirmExpired   = "expired"
	ConfirmCanceled  = "canceled"
)

// PendingConfirmation tracks one outstanding confirmation gate in the
// 'pending_confirmations' table. At most one open row exists per
// (punishment_id, target_guild_id).
type PendingConfirmation struct {
	PunishmentID  string `db:"punishment_id"`
	TargetGuildID string `db:"target_guild_id"`
	State         string `db:"state"`
	RequestedAt   int64  `db:"requested_at"`
	ExpiresAt     int64  `db:"expires_at"`
	RespondedBy   string `db:"responded_by"`
}

// Resolution events appended to the 'punishment_resolutions' ledger.
const (
	ResolutionProposed     = "proposed"
	ResolutionConfirmed    = "confirmed"
	ResolutionRejected     = "rejected"
	ResolutionExpired      = "expired"
	ResolutionCanceled     = "canceled"
	ResolutionApplied      = "applied"
	ResolutionApplyFailed  = "apply_failed"
	ResolutionRevoked      = "revoked"
	ResolutionRevokeFailed = "revoke_failed"
)

// ResolutionEvent is one append-only entry in a punishment's history.
type ResolutionEvent struct {
	ID            int64  `db:"id"` // Auto-increment
	PunishmentID  string `db:"punishment_id"`
	TargetGuildID string `db:"target_guild_id"`
	Event         string `db:"event"`
	ActorID       string `db:"actor_id"`
	Detail        string `db:"detail"`
	Timestamp     int64  `db:"timestamp"`
}
