package sync

import (
	"fmt"
	"log"
	"time"

	"sync-bot/model"
	"sync-bot/syncer"
	"sync-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Notifier posts confirmation requests and outcome announcements to the
// channels each member server configured. Sends happen on their own
// goroutine and never report failure to the caller.
type Notifier struct {
	session  *discordgo.Session
	registry *syncer.Registry
}

func NewNotifier(session *discordgo.Session, registry *syncer.Registry) *Notifier {
	return &Notifier{session: session, registry: registry}
}

func (n *Notifier) NotifyConfirmRequest(targetGuildID string, record *model.PunishmentRecord, expiresAt int64) {
	server, ok := n.registry.Server(targetGuildID)
	if !ok || server.PunishmentConfirmChannel == "" {
		return
	}

	sourceName := targetGuildID
	if src, ok := n.registry.Server(record.SourceGuildID); ok {
		sourceName = src.Name
	}

	embed := &discordgo.MessageEmbed{
		Title: "处罚同步确认请求",
		Color: 0xFEE75C,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "处罚 ID", Value: record.PunishmentID, Inline: true},
			{Name: "类型", Value: kindLabel(record.Kind), Inline: true},
			{Name: "发起服务器", Value: sourceName, Inline: true},
			{Name: "用户", Value: fmt.Sprintf("<@%s> (%s)", record.UserID, record.UserUsername), Inline: false},
			{Name: "原因", Value: record.Reason, Inline: false},
			{Name: "时长", Value: durationLabel(record.DurationSec), Inline: true},
			{Name: "确认截止", Value: fmt.Sprintf("<t:%d:R>", expiresAt), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "超时未确认将自动视为过期",
		},
	}
	if record.Evidence != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "证据", Value: record.Evidence,
		})
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "确认执行",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("punish_confirm_%s_%s", record.PunishmentID, targetGuildID),
				},
				discordgo.Button{
					Label:    "拒绝执行",
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("punish_reject_%s_%s", record.PunishmentID, targetGuildID),
				},
			},
		},
	}

	go func() {
		_, err := n.session.ChannelMessageSendComplex(server.PunishmentConfirmChannel, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		})
		if err != nil {
			log.Printf("Failed to send confirm request for %s to guild %s: %v", record.PunishmentID, targetGuildID, err)
		}
	}()
}

func (n *Notifier) NotifyOutcome(targetGuildID string, record *model.PunishmentRecord, event, actorID, detail string) {
	server, ok := n.registry.Server(targetGuildID)
	if !ok || server.PunishmentAnnounceChannel == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: outcomeTitle(event),
		Color: outcomeColor(event),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "处罚 ID", Value: record.PunishmentID, Inline: true},
			{Name: "类型", Value: kindLabel(record.Kind), Inline: true},
			{Name: "用户", Value: fmt.Sprintf("<@%s> (%s)", record.UserID, record.UserUsername), Inline: false},
			{Name: "原因", Value: record.Reason, Inline: false},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if actorID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "操作人", Value: fmt.Sprintf("<@%s>", actorID), Inline: true,
		})
	}
	if detail != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "详情", Value: detail,
		})
	}

	go func() {
		_, err := n.session.ChannelMessageSendEmbed(server.PunishmentAnnounceChannel, embed)
		if err != nil {
			log.Printf("Failed to announce %s for %s to guild %s: %v", event, record.PunishmentID, targetGuildID, err)
		}
	}()
}

func kindLabel(kind string) string {
	switch kind {
	case model.PunishmentTimeout:
		return "禁言"
	case model.PunishmentBan:
		return "封禁"
	case model.PunishmentWarn:
		return "警告"
	default:
		return kind
	}
}

func durationLabel(durationSec int64) string {
	if durationSec <= 0 {
		return "永久"
	}
	return utils.FormatDuration(time.Duration(durationSec) * time.Second)
}

func outcomeTitle(event string) string {
	switch event {
	case model.ResolutionApplied:
		return "处罚已执行"
	case model.ResolutionApplyFailed:
		return "处罚执行失败"
	case model.ResolutionRejected:
		return "处罚提案已拒绝"
	case model.ResolutionExpired:
		return "处罚提案已过期"
	case model.ResolutionCanceled:
		return "处罚提案已取消"
	case model.ResolutionRevoked:
		return "处罚已撤销"
	case model.ResolutionRevokeFailed:
		return "处罚撤销失败"
	default:
		return "处罚状态更新"
	}
}

func outcomeColor(event string) int {
	switch event {
	case model.ResolutionApplied, model.ResolutionRevoked:
		return 0x57F287
	case model.ResolutionApplyFailed, model.ResolutionRevokeFailed:
		return 0xED4245
	default:
		return 0x99AAB5
	}
}
