package main

import (
	"log"
	"os"
	"path/filepath"

	"sync-bot/bot"
	"sync-bot/config"
	"sync-bot/effector"
	"sync-bot/handlers"
	synchandlers "sync-bot/handlers/sync"
	"sync-bot/syncer"
	"sync-bot/utils/database/auditdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Settings.AuditDBPath), os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	db, err := auditdb.Init(cfg.Settings.AuditDBPath)
	if err != nil {
		log.Fatalf("Error initializing audit database: %v", err)
	}

	registry, err := syncer.LoadRegistry(cfg.Settings.SyncConfigPath)
	if err != nil {
		log.Fatalf("Error loading sync config: %v", err)
	}

	b, err := bot.New(cfg, db, registry)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	eff := effector.New(b.Session, registry)
	guard := effector.NewGuard(b.Session)
	notifier := synchandlers.NewNotifier(b.Session, registry)

	isOperator := func(actorID string) bool {
		for _, id := range cfg.DeveloperUserIDs {
			if id == actorID {
				return true
			}
		}
		return false
	}

	roleSync := syncer.NewRoleSync(registry, eff, guard, cfg.Settings.EffectorTimeout)
	punishSync := syncer.NewPunishmentSync(registry, db, eff, notifier,
		cfg.Settings.ConfirmTimeout, cfg.Settings.EffectorTimeout, isOperator)
	registry.SetCanceler(punishSync)
	b.AttachSyncers(roleSync, punishSync)

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
