package effector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sync-bot/model"
	"sync-bot/syncer"

	"github.com/bwmarrin/discordgo"
)

// Discord performs the remote changes through one bot session. Calls
// are made repeat-safe here: already-satisfied states (role held, ban
// absent, timeout absent) resolve as no-op successes so retries never
// double-apply.
type Discord struct {
	session  *discordgo.Session
	registry *syncer.Registry
}

func New(session *discordgo.Session, registry *syncer.Registry) *Discord {
	return &Discord{session: session, registry: registry}
}

// GrantRole adds the role unless the member already holds it.
func (d *Discord) GrantRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	member, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isDiscordCode(err, discordgo.ErrCodeUnknownMember) {
			return false, fmt.Errorf("user %s is not a member of guild %s", userID, guildID)
		}
		return false, fmt.Errorf("failed to fetch member %s in guild %s: %w", userID, guildID, err)
	}
	for _, r := range member.Roles {
		if r == roleID {
			return false, nil
		}
	}
	if err := d.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return false, fmt.Errorf("failed to add role %s to %s in guild %s: %w", roleID, userID, guildID, err)
	}
	return true, nil
}

// RemoveRole removes the role; a member without the role is a no-op.
func (d *Discord) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	member, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isDiscordCode(err, discordgo.ErrCodeUnknownMember) {
			return nil
		}
		return fmt.Errorf("failed to fetch member %s in guild %s: %w", userID, guildID, err)
	}
	held := false
	for _, r := range member.Roles {
		if r == roleID {
			held = true
			break
		}
	}
	if !held {
		return nil
	}
	if err := d.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove role %s from %s in guild %s: %w", roleID, userID, guildID, err)
	}
	return nil
}

// ApplyPunishment executes the punishment on the guild.
func (d *Discord) ApplyPunishment(ctx context.Context, guildID string, record *model.PunishmentRecord) error {
	reason := fmt.Sprintf("同步处罚 %s: %s", record.PunishmentID, record.Reason)

	switch record.Kind {
	case model.PunishmentTimeout:
		until := time.Now().Add(time.Duration(record.DurationSec) * time.Second)
		if record.ExpiresAt > 0 {
			until = time.Unix(record.ExpiresAt, 0)
		}
		if until.Before(time.Now()) {
			log.Printf("Timeout for %s already past its expiry, skipping remote call on guild %s", record.PunishmentID, guildID)
			return nil
		}
		if err := d.session.GuildMemberTimeout(guildID, record.UserID, &until, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to timeout %s in guild %s: %w", record.UserID, guildID, err)
		}
		return d.applyWarnedRole(ctx, guildID, record.UserID)

	case model.PunishmentBan:
		if err := d.session.GuildBanCreateWithReason(guildID, record.UserID, reason, 0, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to ban %s in guild %s: %w", record.UserID, guildID, err)
		}
		return nil

	case model.PunishmentWarn:
		return d.applyWarnedRole(ctx, guildID, record.UserID)

	default:
		return fmt.Errorf("unknown punishment kind %q", record.Kind)
	}
}

// RevokePunishment undoes the punishment. States that are already
// absent (no ban, no timeout, no role) count as success.
func (d *Discord) RevokePunishment(ctx context.Context, guildID string, record *model.PunishmentRecord) error {
	switch record.Kind {
	case model.PunishmentTimeout:
		err := d.session.GuildMemberTimeout(guildID, record.UserID, nil, discordgo.WithContext(ctx))
		if err != nil && !isDiscordCode(err, discordgo.ErrCodeUnknownMember) {
			return fmt.Errorf("failed to clear timeout for %s in guild %s: %w", record.UserID, guildID, err)
		}
		return d.removeWarnedRole(ctx, guildID, record.UserID)

	case model.PunishmentBan:
		err := d.session.GuildBanDelete(guildID, record.UserID, discordgo.WithContext(ctx))
		if err != nil && !isDiscordCode(err, discordgo.ErrCodeUnknownBan) {
			return fmt.Errorf("failed to unban %s in guild %s: %w", record.UserID, guildID, err)
		}
		return nil

	case model.PunishmentWarn:
		return d.removeWarnedRole(ctx, guildID, record.UserID)

	default:
		return fmt.Errorf("unknown punishment kind %q", record.Kind)
	}
}

func (d *Discord) applyWarnedRole(ctx context.Context, guildID, userID string) error {
	entry, ok := d.registry.Server(guildID)
	if !ok || entry.WarnedRoleID == "" {
		return nil
	}
	if _, err := d.GrantRole(ctx, guildID, userID, entry.WarnedRoleID); err != nil {
		return fmt.Errorf("failed to apply warned role: %w", err)
	}
	return nil
}

func (d *Discord) removeWarnedRole(ctx context.Context, guildID, userID string) error {
	entry, ok := d.registry.Server(guildID)
	if !ok || entry.WarnedRoleID == "" {
		return nil
	}
	if err := d.RemoveRole(ctx, guildID, userID, entry.WarnedRoleID); err != nil {
		return fmt.Errorf("failed to remove warned role: %w", err)
	}
	return nil
}

func isDiscordCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == code
	}
	return false
}
