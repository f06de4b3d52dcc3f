package sync

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"sync-bot/bot"
	"sync-bot/syncer"
	"sync-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleManage dispatches the sync-manage subcommands.
func HandleManage(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireAdmin(s, i, b) {
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		utils.SendErrorResponse(s, i, "缺少子命令。")
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "add-server":
		handleAddServer(s, i, b, sub)
	case "remove-server":
		handleRemoveServer(s, i, b, sub)
	case "add-role":
		handleAddRole(s, i, b, sub)
	case "punishment-sync":
		handlePunishmentSyncToggle(s, i, b, sub)
	case "set-channels":
		handleSetChannels(s, i, b, sub)
	case "set-warned-role":
		handleSetWarnedRole(s, i, b, sub)
	case "list":
		handleList(s, i, b)
	default:
		utils.SendErrorResponse(s, i, "未知的子命令。")
	}
}

func handleAddServer(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, sub *discordgo.ApplicationCommandInteractionDataOption) {
	name := sub.Options[0].StringValue()
	if err := b.Registry.AddServer(i.GuildID, name); err != nil {
		if errors.Is(err, syncer.ErrDuplicateServer) {
			utils.SendErrorResponse(s, i, "此服务器已在同步网络中。")
			return
		}
		log.Printf("Failed to add server %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "添加服务器失败。")
		return
	}
	b.RefreshCommands(i.GuildID)
	utils.SendPublicResponse(s, i, fmt.Sprintf("✅ 服务器 **%s** 已加入同步网络。", name))
}

func handleRemoveServer(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, sub *discordgo.ApplicationCommandInteractionDataOption) {
	guildID := i.GuildID
	if len(sub.Options) > 0 {
		guildID = sub.Options[0].StringValue()
	}
	if err := b.Registry.RemoveServer(guildID); err != nil {
		if errors.Is(err, syncer.ErrUnknownServer) {
			utils.SendErrorResponse(s, i, "此服务器不在同步网络中。")
			return
		}
		log.Printf("Failed to remove server %s: %v", guildID, err)
		utils.SendErrorResponse(s, i, "移除服务器失败。")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("✅ 服务器 `%s` 已移出同步网络，其未决确认已全部取消。", guildID))
}

func handleAddRole(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, sub *discordgo.ApplicationCommandInteractionDataOption) {
	label := sub.Options[0].StringValue()
	role := sub.Options[1].RoleValue(s, i.GuildID)
	if err := b.Registry.AddRoleMapping(label, i.GuildID, role.ID); err != nil {
		switch {
		case errors.Is(err, syncer.ErrUnknownServer):
			utils.SendErrorResponse(s, i, "请先使用 add-server 将此服务器加入同步网络。")
		case errors.Is(err, syncer.ErrValidation):
			utils.SendErrorResponse(s, i, "标签或身份组无效。")
		default:
			log.Printf("Failed to add role mapping %s for guild %s: %v", label, i.GuildID, err)
			utils.SendErrorResponse(s, i, "登记身份组失败。")
		}
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("✅ 标签 **%s** 已映射到 <@&%s>。", label, role.ID))
}

func handlePunishmentSyncToggle(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, sub *discordgo.ApplicationCommandInteractionDataOption) {
	enabled := sub.Options[0].BoolValue()
	if err := b.Registry.SetPunishmentSync(i.GuildID, enabled); err != nil {
		utils.SendErrorResponse(s, i, "设置失败，请确认此服务器已加入同步网络。")
		return
	}
	if enabled {
		utils.SendPublicResponse(s, i, "✅ 本服务器已开启处罚同步。")
	} else {
		utils.SendPublicResponse(s, i, "✅ 本服务器已关闭处罚同步，不再接收新的处罚提案。")
	}
}

func handleSetChannels(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var parts []string
	for _, opt := range sub.Options {
		ch := opt.ChannelValue(s)
		if ch == nil {
			continue
		}
		var err error
		switch opt.Name {
		case "announce":
			err = b.Registry.SetAnnounceChannel(i.GuildID, ch.ID)
			parts = append(parts, fmt.Sprintf("公示频道 <#%s>", ch.ID))
		case "confirm":
			err = b.Registry.SetConfirmChannel(i.GuildID, ch.ID)
			parts = append(parts, fmt.Sprintf("确认频道 <#%s>", ch.ID))
		}
		if err != nil {
			utils.SendErrorResponse(s, i, "设置失败，请确认此服务器已加入同步网络。")
			return
		}
	}
	if len(parts) == 0 {
		utils.SendErrorResponse(s, i, "请至少指定一个频道。")
		return
	}
	utils.SendPublicResponse(s, i, "✅ 已设置 "+strings.Join(parts, "，")+"。")
}

func handleSetWarnedRole(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, sub *discordgo.ApplicationCommandInteractionDataOption) {
	role := sub.Options[0].RoleValue(s, i.GuildID)
	if err := b.Registry.SetWarnedRole(i.GuildID, role.ID); err != nil {
		utils.SendErrorResponse(s, i, "设置失败，请确认此服务器已加入同步网络。")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("✅ 警告身份组已设置为 <@&%s>。", role.ID))
}

func handleList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	servers := b.Registry.Servers()
	if len(servers) == 0 {
		utils.SendSimpleResponse(s, i, "同步网络中还没有服务器。")
		return
	}

	ids := make([]string, 0, len(servers))
	for id := range servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		server := servers[id]
		punish := "关"
		if server.PunishmentSync {
			punish = "开"
		}
		fmt.Fprintf(&sb, "**%s** (`%s`) 处罚同步: %s\n", server.Name, id, punish)
		labels := make([]string, 0, len(server.Roles))
		for label := range server.Roles {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(&sb, "　%s → <@&%s>\n", label, server.Roles[label])
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       "同步网络",
		Color:       0x5865F2,
		Description: sb.String(),
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}
