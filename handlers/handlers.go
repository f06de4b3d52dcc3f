package handlers

import (
	"log"
	"strings"

	"sync-bot/bot"
	synchandlers "sync-bot/handlers/sync"
	"sync-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"sync-manage": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			synchandlers.HandleManage(s, i, b)
		},
		"sync-roles": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			synchandlers.HandleRoleSync(s, i, b)
		},
		"sync-transfer": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			synchandlers.HandleRoleTransfer(s, i, b)
		},
		"punish-sync": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			synchandlers.HandlePunishPropose(s, i, b)
		},
		"punish-revoke": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			synchandlers.HandlePunishRevoke(s, i, b)
		},
		"punish-retry": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			synchandlers.HandlePunishRetry(s, i, b)
		},
		"punish-status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			synchandlers.HandlePunishQuery(s, i, b)
		},
		"system-status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", r.User.Username, r.User.Discriminator)
		if b.GetConfig().LogChannelID != "" {
			utils.LogInfo(s, b.GetConfig().LogChannelID, "System", "启动", "Bot has started successfully.")
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionMessageComponent:
			customID := i.MessageComponentData().CustomID
			if strings.HasPrefix(customID, "punish_confirm_") || strings.HasPrefix(customID, "punish_reject_") {
				synchandlers.HandleConfirmButton(s, i, b)
			}
		}
	})
}
