package bot

import (
	"log"
	"sync/atomic"

	"sync-bot/commands"
	"sync-bot/config"
	"sync-bot/model"
	"sync-bot/syncer"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	Registry           *syncer.Registry
	RoleSync           *syncer.RoleSync
	PunishmentSync     *syncer.PunishmentSync
	AuditDB            *sqlx.DB
	scheduler          *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetAuditDB() *sqlx.DB {
	return b.AuditDB
}

func (b *Bot) GetScheduler() *Scheduler {
	return b.scheduler
}

func New(cfg *model.Config, db *sqlx.DB, registry *syncer.Registry) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.StateEnabled = false

	b := &Bot{
		Session:  dg,
		Registry: registry,
		AuditDB:  db,
	}
	b.config.Store(cfg)
	return b, nil
}

// AttachSyncers wires the coordinators built around the live session.
// Must be called before Run.
func (b *Bot) AttachSyncers(roleSync *syncer.RoleSync, punishSync *syncer.PunishmentSync) {
	b.RoleSync = roleSync
	b.PunishmentSync = punishSync
	b.scheduler = NewScheduler(punishSync, b.GetConfig().Settings.ExpirySweepInterval)
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
	b.AuditDB.Close()
}

// RefreshCommands replaces the guild's slash commands with the current set.
func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.GenerateCommands()
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
	log.Printf("Registered %d commands for guild %s", len(registeredCmds), guildID)
}

func (b *Bot) ReloadConfig() error {
	log.Println("Reloading configuration...")
	newCfg, err := config.Load()
	if err != nil {
		log.Printf("Error reloading config: %v", err)
		return err
	}
	b.config.Store(newCfg)
	log.Println("Configuration reloaded successfully.")
	return nil
}
