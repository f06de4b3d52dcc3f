package syncer

import (
	"context"

	"sync-bot/model"
)

// GuildEffector performs the actual remote changes on one guild. Each
// call must be safe to repeat: granting a held role, applying an already
// applied punishment or revoking a revoked one are no-op successes on
// the remote side.
type GuildEffector interface {
	// GrantRole adds the role to the user in the guild. It reports
	// whether a remote mutation actually happened (false means the user
	// already held the role).
	GrantRole(ctx context.Context, guildID, userID, roleID string) (bool, error)

	// RemoveRole removes the role from the user in the guild. Removing
	// a role the user does not hold is a no-op success.
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error

	// ApplyPunishment executes the punishment (timeout, ban, warn role)
	// against the guild.
	ApplyPunishment(ctx context.Context, guildID string, record *model.PunishmentRecord) error

	// RevokePunishment undoes the punishment on the guild.
	RevokePunishment(ctx context.Context, guildID string, record *model.PunishmentRecord) error
}

// HierarchyGuard answers whether the bot's own highest role in the
// guild outranks the role it is about to hand out.
type HierarchyGuard interface {
	CanAssign(guildID, roleID string) (bool, error)
}

// Notifier is the fire-and-forget notification sink. Implementations
// must not block the caller; failures are logged, never returned.
type Notifier interface {
	NotifyConfirmRequest(targetGuildID string, record *model.PunishmentRecord, expiresAt int64)
	NotifyOutcome(targetGuildID string, record *model.PunishmentRecord, event, actorID, detail string)
}

// Per-target role sync outcome states.
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// TargetOutcome is the result of one guild's slice of a batch; targets
// are independent, one failing never rolls back another.
type TargetOutcome struct {
	Status string
	Reason string
}
