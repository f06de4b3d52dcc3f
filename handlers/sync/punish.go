package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sync-bot/bot"
	"sync-bot/model"
	"sync-bot/syncer"
	"sync-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandlePunishPropose records a punishment and fans a confirmation
// request out to every punishment-sync guild.
func HandlePunishPropose(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireAdmin(s, i, b) {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	var (
		user     *discordgo.User
		kind     string
		reason   string
		duration string
		evidence string
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			user = opt.UserValue(s)
		case "kind":
			kind = opt.StringValue()
		case "reason":
			reason = opt.StringValue()
		case "duration":
			duration = opt.StringValue()
		case "evidence":
			evidence = opt.StringValue()
		}
	}

	now := time.Now()
	record := &model.PunishmentRecord{
		PunishmentID:  syncer.NewPunishmentID(),
		Kind:          kind,
		UserID:        user.ID,
		UserUsername:  user.Username,
		AdminID:       i.Member.User.ID,
		Reason:        reason,
		SourceGuildID: i.GuildID,
		Evidence:      evidence,
		Status:        model.PunishmentActive,
		Timestamp:     now.Unix(),
	}
	if duration != "" {
		d, err := utils.ParseDuration(duration)
		if err != nil || d <= 0 {
			utils.SendFollowUpError(s, i.Interaction, "无效的时长，请使用如 30m、12h、7d 的格式。")
			return
		}
		record.DurationSec = int64(d.Seconds())
		record.ExpiresAt = now.Add(d).Unix()
	}

	targets, err := b.PunishmentSync.Propose(record)
	if err != nil {
		switch {
		case errors.Is(err, syncer.ErrUnknownServer):
			utils.SendFollowUpError(s, i.Interaction, "此服务器不在同步网络中。")
		case errors.Is(err, syncer.ErrValidation):
			utils.SendFollowUpError(s, i.Interaction, "处罚参数无效。")
		default:
			log.Printf("Failed to propose punishment %s: %v", record.PunishmentID, err)
			utils.SendFollowUpError(s, i.Interaction, "创建处罚提案失败。")
		}
		return
	}

	if len(targets) == 0 {
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf(
			"处罚 `%s` 已记录，但当前没有开启处罚同步的其他服务器。", record.PunishmentID))
		return
	}

	names := make([]string, 0, len(targets))
	for _, guildID := range targets {
		if server, ok := b.Registry.Server(guildID); ok {
			names = append(names, server.Name)
		} else {
			names = append(names, guildID)
		}
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf(
		"处罚 `%s` 已创建，已向 %d 个服务器发送确认请求：%s",
		record.PunishmentID, len(targets), strings.Join(names, "、")))
}

// HandleConfirmButton settles one guild's confirmation gate from the
// 确认执行 / 拒绝执行 buttons.
func HandleConfirmButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	customID := i.MessageComponentData().CustomID
	parts := strings.Split(customID, "_")
	if len(parts) != 4 {
		log.Printf("Invalid punish confirm custom id: %s", customID)
		return
	}
	action, punishmentID, targetGuildID := parts[1], parts[2], parts[3]

	if i.GuildID != targetGuildID {
		utils.SendErrorResponse(s, i, "此确认不属于当前服务器。")
		return
	}
	if !utils.IsAdminLevel(permissionLevel(b, i)) {
		utils.SendErrorResponse(s, i, "你没有权限处理此确认。")
		return
	}

	actorID := i.Member.User.ID
	var err error
	var verdict string
	switch action {
	case "confirm":
		verdict = "已确认"
		err = b.PunishmentSync.Confirm(context.Background(), punishmentID, targetGuildID, actorID)
	case "reject":
		verdict = "已拒绝"
		err = b.PunishmentSync.Reject(punishmentID, targetGuildID, actorID)
	default:
		return
	}

	var effErr *syncer.EffectorError
	switch {
	case err == nil:
	case errors.As(err, &effErr):
		// The confirmation settled, only the remote execution failed.
		verdict = "已确认，但执行失败，可使用处罚重试"
	case errors.Is(err, syncer.ErrInvalidState):
		utils.SendErrorResponse(s, i, "该确认已被处理或已过期。")
		return
	case errors.Is(err, syncer.ErrPunishmentNotFound):
		utils.SendErrorResponse(s, i, "处罚记录不存在。")
		return
	default:
		log.Printf("Failed to settle confirmation %s/%s: %v", punishmentID, targetGuildID, err)
		utils.SendErrorResponse(s, i, "处理确认失败。")
		return
	}

	settleConfirmMessage(s, i, verdict, actorID)
}

// settleConfirmMessage rewrites the request message so the buttons
// disappear and the verdict is visible in place.
func settleConfirmMessage(s *discordgo.Session, i *discordgo.InteractionCreate, verdict, actorID string) {
	embeds := i.Message.Embeds
	if len(embeds) > 0 {
		embeds[0].Fields = append(embeds[0].Fields, &discordgo.MessageEmbedField{
			Name: "处理结果", Value: fmt.Sprintf("%s（<@%s>）", verdict, actorID),
		})
		embeds[0].Footer = nil
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     embeds,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("Failed to update confirm message: %v", err)
	}
}

// HandlePunishRevoke undoes a punishment everywhere it was applied.
func HandlePunishRevoke(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireAdmin(s, i, b) {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	punishmentID := i.ApplicationCommandData().Options[0].StringValue()
	err := b.PunishmentSync.Revoke(context.Background(), punishmentID, i.Member.User.ID)
	switch {
	case err == nil:
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ 处罚 `%s` 已在所有服务器撤销。", punishmentID))
	case errors.Is(err, syncer.ErrPunishmentNotFound):
		utils.SendFollowUpError(s, i.Interaction, "处罚记录不存在。")
	case errors.Is(err, syncer.ErrNotAuthorized):
		utils.SendFollowUpError(s, i.Interaction, "只有处罚发起人或操作员可以撤销。")
	default:
		log.Printf("Revoke %s incomplete: %v", punishmentID, err)
		utils.SendFollowUpError(s, i.Interaction, "部分服务器撤销失败，处罚保持生效，可重新执行撤销。")
	}
}

// HandlePunishRetry re-runs a confirmed punishment whose execution
// failed on one guild.
func HandlePunishRetry(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireAdmin(s, i, b) {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	data := i.ApplicationCommandData()
	punishmentID := data.Options[0].StringValue()
	guildID := i.GuildID
	if len(data.Options) > 1 {
		guildID = data.Options[1].StringValue()
	}

	err := b.PunishmentSync.ReapplyFailed(context.Background(), punishmentID, guildID, i.Member.User.ID)
	switch {
	case err == nil:
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ 处罚 `%s` 已在服务器 `%s` 重新执行。", punishmentID, guildID))
	case errors.Is(err, syncer.ErrPunishmentNotFound):
		utils.SendFollowUpError(s, i.Interaction, "处罚记录不存在。")
	case errors.Is(err, syncer.ErrNotAuthorized):
		utils.SendFollowUpError(s, i.Interaction, "只有操作员可以重试处罚。")
	case errors.Is(err, syncer.ErrInvalidState):
		utils.SendFollowUpError(s, i.Interaction, "该服务器没有待重试的执行失败记录。")
	default:
		log.Printf("Retry %s on %s failed: %v", punishmentID, guildID, err)
		utils.SendFollowUpError(s, i.Interaction, "重试仍然失败，详情见处理历史。")
	}
}

// HandlePunishQuery renders a punishment record with its full ledger.
func HandlePunishQuery(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	punishmentID := i.ApplicationCommandData().Options[0].StringValue()
	record, events, err := b.PunishmentSync.Status(punishmentID)
	if err != nil {
		if errors.Is(err, syncer.ErrPunishmentNotFound) {
			utils.SendErrorResponse(s, i, "处罚记录不存在。")
			return
		}
		log.Printf("Failed to query punishment %s: %v", punishmentID, err)
		utils.SendErrorResponse(s, i, "查询处罚记录失败。")
		return
	}

	status := "生效中"
	if record.Status == model.PunishmentRevoked {
		status = "已撤销"
	}

	var history strings.Builder
	for _, ev := range events {
		guildName := "全部"
		if ev.TargetGuildID != "" {
			guildName = ev.TargetGuildID
			if server, ok := b.Registry.Server(ev.TargetGuildID); ok {
				guildName = server.Name
			}
		}
		fmt.Fprintf(&history, "<t:%d:f> %s · %s", ev.Timestamp, eventLabel(ev.Event), guildName)
		if ev.ActorID != "" {
			fmt.Fprintf(&history, " · <@%s>", ev.ActorID)
		}
		history.WriteString("\n")
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("处罚 %s", record.PunishmentID),
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "类型", Value: kindLabel(record.Kind), Inline: true},
			{Name: "状态", Value: status, Inline: true},
			{Name: "时长", Value: durationLabel(record.DurationSec), Inline: true},
			{Name: "用户", Value: fmt.Sprintf("<@%s> (%s)", record.UserID, record.UserUsername), Inline: false},
			{Name: "原因", Value: record.Reason, Inline: false},
			{Name: "处理历史", Value: history.String(), Inline: false},
		},
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func eventLabel(event string) string {
	switch event {
	case model.ResolutionProposed:
		return "提案"
	case model.ResolutionConfirmed:
		return "确认"
	case model.ResolutionRejected:
		return "拒绝"
	case model.ResolutionExpired:
		return "过期"
	case model.ResolutionCanceled:
		return "取消"
	case model.ResolutionApplied:
		return "执行"
	case model.ResolutionApplyFailed:
		return "执行失败"
	case model.ResolutionRevoked:
		return "撤销"
	case model.ResolutionRevokeFailed:
		return "撤销失败"
	default:
		return event
	}
}
