package model

// ServerEntry 定义了同步网络中一个成员服务器的配置
type ServerEntry struct {
	GuildID                   string            `json:"guilds_id"`
	Name                      string            `json:"name"`
	Roles                     map[string]string `json:"roles"` // label -> role ID in this guild
	PunishmentSync            bool              `json:"punishment_sync"`
	PunishmentAnnounceChannel string            `json:"punishment_announce_channel,omitempty"`
	PunishmentConfirmChannel  string            `json:"punishment_confirm_channel,omitempty"`
	WarnedRoleID              string            `json:"warned_role_id,omitempty"`
	AdminRoleIDs              []string          `json:"admin_role_ids,omitempty"`
	UserRoleIDs               []string          `json:"user_role_ids,omitempty"`
}

// RoleMapping maps one shared label to the concrete role ID in each guild.
type RoleMapping map[string]string // guild ID -> role ID

// SyncConfig is the aggregate persisted as a unit by the registry.
// Servers and RoleMapping always change together (adding a mapping also
// records the role on the server entry), so they live in one file.
type SyncConfig struct {
	Enabled     bool                   `json:"enabled"`
	Servers     map[string]ServerEntry `json:"servers"`
	RoleMapping map[string]RoleMapping `json:"role_mapping"` // label -> per-guild role IDs
}

// NewSyncConfig returns an empty, enabled config with maps allocated.
func NewSyncConfig() *SyncConfig {
	return &SyncConfig{
		Enabled:     true,
		Servers:     make(map[string]ServerEntry),
		RoleMapping: make(map[string]RoleMapping),
	}
}
