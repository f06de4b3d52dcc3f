package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"sync-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables and the
// settings file.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		return nil, fmt.Errorf("APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	cfg := &model.Config{
		BotToken:         token,
		AppID:            appID,
		LogChannelID:     logChannelID,
		DeveloperUserIDs: splitIDs(os.Getenv("DEVELOPER_USER_IDS")),
		Settings:         settings,
	}
	return cfg, nil
}

// loadSettings reads config/settings.yaml via viper, with SYNCBOT_*
// env overrides. A missing file just means defaults.
func loadSettings() (model.Settings, error) {
	v := viper.New()
	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SYNCBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("confirm_timeout", 24*time.Hour)
	v.SetDefault("effector_timeout", 10*time.Second)
	v.SetDefault("expiry_sweep_interval", time.Minute)
	v.SetDefault("audit_db_path", "data/audit.db")
	v.SetDefault("sync_config_path", "config/server_sync/config.json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return model.Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
		log.Println("Warning: settings file not found, using defaults")
	}

	var settings model.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings, nil
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
