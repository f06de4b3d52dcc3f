package model

import "time"

// Settings 存储可调的运行时参数，由 viper 从 settings.yaml 加载
type Settings struct {
	ConfirmTimeout      time.Duration `mapstructure:"confirm_timeout"`
	EffectorTimeout     time.Duration `mapstructure:"effector_timeout"`
	ExpirySweepInterval time.Duration `mapstructure:"expiry_sweep_interval"`
	AuditDBPath         string        `mapstructure:"audit_db_path"`
	SyncConfigPath      string        `mapstructure:"sync_config_path"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken         string
	AppID            string
	LogChannelID     string
	DeveloperUserIDs []string
	Settings         Settings
}
