package sync

import (
	"sync-bot/bot"
	"sync-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// permissionLevel resolves the caller's level from the guild's
// configured role lists. A member holding Manage Server counts as admin
// even when the guild never configured admin roles.
func permissionLevel(b *bot.Bot, i *discordgo.InteractionCreate) string {
	if i.Member == nil {
		return utils.GuestPermission
	}

	var adminRoles, userRoles []string
	if server, ok := b.Registry.Server(i.GuildID); ok {
		adminRoles = server.AdminRoleIDs
		userRoles = server.UserRoleIDs
	}

	level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, adminRoles, userRoles, b.GetConfig().DeveloperUserIDs)
	if level == utils.GuestPermission && i.Member.Permissions&discordgo.PermissionManageServer != 0 {
		return utils.AdminPermission
	}
	return level
}

func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	if utils.IsAdminLevel(permissionLevel(b, i)) {
		return true
	}
	utils.SendErrorResponse(s, i, "你没有权限使用此命令。")
	return false
}
