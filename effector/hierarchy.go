package effector

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Guard checks Discord's role hierarchy: the bot can only hand out
// roles ranked strictly below its own highest role in that guild.
type Guard struct {
	session *discordgo.Session
}

func NewGuard(session *discordgo.Session) *Guard {
	return &Guard{session: session}
}

func (g *Guard) CanAssign(guildID, roleID string) (bool, error) {
	roles, err := g.session.GuildRoles(guildID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch roles for guild %s: %w", guildID, err)
	}
	positions := make(map[string]int, len(roles))
	for _, r := range roles {
		positions[r.ID] = r.Position
	}

	target, ok := positions[roleID]
	if !ok {
		return false, fmt.Errorf("role %s not found in guild %s", roleID, guildID)
	}

	botMember, err := g.session.GuildMember(guildID, g.session.State.User.ID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch bot member in guild %s: %w", guildID, err)
	}
	botMax := 0
	for _, r := range botMember.Roles {
		if pos, ok := positions[r]; ok && pos > botMax {
			botMax = pos
		}
	}

	return botMax > target, nil
}
