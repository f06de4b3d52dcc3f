package sync

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"sync-bot/bot"
	"sync-bot/syncer"
	"sync-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleRoleSync pushes a member's mapped roles to every other server
// in the network.
func HandleRoleSync(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireAdmin(s, i, b) {
		return
	}
	if _, ok := b.Registry.Server(i.GuildID); !ok {
		utils.SendErrorResponse(s, i, "此服务器不在同步网络中。")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	data := i.ApplicationCommandData()
	user := data.Options[0].UserValue(s)

	var labels []string
	if len(data.Options) > 1 {
		labels = strings.Fields(data.Options[1].StringValue())
	} else {
		var err error
		labels, err = heldLabels(s, b, i.GuildID, user.ID)
		if err != nil {
			log.Printf("Failed to resolve member %s in guild %s: %v", user.ID, i.GuildID, err)
			utils.SendFollowUpError(s, i.Interaction, "无法获取该成员的身份组。")
			return
		}
	}
	labels = b.Registry.SyncableLabels(labels)
	if len(labels) == 0 {
		utils.SendFollowUpError(s, i.Interaction, "该成员没有可同步的映射身份组。")
		return
	}

	outcomes := b.RoleSync.SyncMemberRoles(context.Background(), user.ID, labels, i.GuildID)
	msg := fmt.Sprintf("标签 **%s** 的同步结果：\n%s", strings.Join(labels, ", "), formatOutcomes(b, outcomes))
	utils.SendFollowUp(s, i.Interaction, msg)
}

// HandleRoleTransfer swaps a member from one mapped role to another on
// every other server.
func HandleRoleTransfer(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireAdmin(s, i, b) {
		return
	}
	if _, ok := b.Registry.Server(i.GuildID); !ok {
		utils.SendErrorResponse(s, i, "此服务器不在同步网络中。")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	data := i.ApplicationCommandData()
	user := data.Options[0].UserValue(s)
	oldLabel := data.Options[1].StringValue()
	newLabel := data.Options[2].StringValue()
	removeOld := true
	for _, opt := range data.Options[3:] {
		if opt.Name == "remove_old" {
			removeOld = opt.BoolValue()
		}
	}

	outcomes := b.RoleSync.TransferMemberRole(context.Background(), user.ID, oldLabel, newLabel, i.GuildID, removeOld)
	if len(outcomes) == 0 {
		utils.SendFollowUpError(s, i.Interaction, "没有其他服务器映射了目标标签。")
		return
	}
	msg := fmt.Sprintf("**%s** → **%s** 的转移结果：\n%s", oldLabel, newLabel, formatOutcomes(b, outcomes))
	utils.SendFollowUp(s, i.Interaction, msg)
}

// heldLabels lists the mapped labels whose role the member currently
// holds in the source guild.
func heldLabels(s *discordgo.Session, b *bot.Bot, guildID, userID string) ([]string, error) {
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(member.Roles))
	for _, roleID := range member.Roles {
		held[roleID] = true
	}

	server, _ := b.Registry.Server(guildID)
	var labels []string
	for label, roleID := range server.Roles {
		if held[roleID] {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels, nil
}

func formatOutcomes(b *bot.Bot, outcomes map[string]syncer.TargetOutcome) string {
	ids := make([]string, 0, len(outcomes))
	for id := range outcomes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		name := id
		if server, ok := b.Registry.Server(id); ok {
			name = server.Name
		}
		outcome := outcomes[id]
		switch outcome.Status {
		case syncer.OutcomeApplied:
			fmt.Fprintf(&sb, "✅ %s\n", name)
		case syncer.OutcomeSkipped:
			fmt.Fprintf(&sb, "⏭️ %s：%s\n", name, outcome.Reason)
		default:
			fmt.Fprintf(&sb, "❌ %s：%s\n", name, outcome.Reason)
		}
	}
	return sb.String()
}
