package commands

import (
	"sync-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the full slash command set registered on
// every guild in the sync network.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.SyncManage,
		defs.RoleSync,
		defs.RoleTransfer,
		defs.PunishPropose,
		defs.PunishRevoke,
		defs.PunishRetry,
		defs.PunishQuery,
		defs.SystemStatus,
	}
}
