package syncer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"sync-bot/model"
)

// ConfirmationCanceler cancels open confirmations targeting a guild.
// Implemented by the punishment coordinator; the registry calls it from
// the RemoveServer cascade.
type ConfirmationCanceler interface {
	CancelByGuild(guildID string) (int, error)
}

// Registry owns the SyncConfig aggregate: the server list and the role
// mappings. Every mutation saves the whole file, matching how the
// config is consumed (reloaded as a unit at startup).
type Registry struct {
	mu       sync.RWMutex
	path     string
	cfg      *model.SyncConfig
	canceler ConfirmationCanceler
}

// LoadRegistry reads and validates the sync config file. A missing file
// yields an empty config rather than an error.
func LoadRegistry(path string) (*Registry, error) {
	cfg := model.NewSyncConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading sync config file %s: %w", path, err)
		}
		log.Printf("Warning: sync config not found at %s, starting empty.", path)
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling sync config from %s: %w", path, err)
	}

	if cfg.Servers == nil {
		cfg.Servers = make(map[string]model.ServerEntry)
	}
	if cfg.RoleMapping == nil {
		cfg.RoleMapping = make(map[string]model.RoleMapping)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Registry{path: path, cfg: cfg}, nil
}

// validateConfig rejects mappings that reference guilds missing from
// the server list.
func validateConfig(cfg *model.SyncConfig) error {
	for label, mapping := range cfg.RoleMapping {
		if label == "" {
			return fmt.Errorf("%w: empty role mapping label", ErrConfigInvalid)
		}
		for guildID := range mapping {
			if _, ok := cfg.Servers[guildID]; !ok {
				return fmt.Errorf("%w: mapping %q references unknown guild %s", ErrConfigInvalid, label, guildID)
			}
		}
	}
	return nil
}

// SetCanceler wires the confirmation canceler used by RemoveServer.
func (r *Registry) SetCanceler(c ConfirmationCanceler) {
	r.mu.Lock()
	r.canceler = c
	r.mu.Unlock()
}

// save persists the aggregate. Caller must hold the write lock.
func (r *Registry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("error creating sync config directory: %w", err)
	}
	data, err := json.MarshalIndent(r.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling sync config: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("error writing sync config to %s: %w", r.path, err)
	}
	return nil
}

// AddServer registers a guild in the sync list.
func (r *Registry) AddServer(guildID, name string) error {
	if guildID == "" {
		return fmt.Errorf("%w: empty guild id", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cfg.Servers[guildID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateServer, guildID)
	}
	r.cfg.Servers[guildID] = model.ServerEntry{
		GuildID: guildID,
		Name:    name,
		Roles:   make(map[string]string),
	}
	return r.save()
}

// RemoveServer deletes the guild and cascades: every mapping entry for
// the guild is removed (mappings left empty are dropped entirely), and
// open confirmations targeting the guild are canceled.
func (r *Registry) RemoveServer(guildID string) error {
	r.mu.Lock()

	if _, ok := r.cfg.Servers[guildID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownServer, guildID)
	}
	delete(r.cfg.Servers, guildID)

	for label, mapping := range r.cfg.RoleMapping {
		if _, ok := mapping[guildID]; ok {
			delete(mapping, guildID)
			if len(mapping) == 0 {
				delete(r.cfg.RoleMapping, label)
			}
		}
	}

	err := r.save()
	canceler := r.canceler
	r.mu.Unlock()
	if err != nil {
		return err
	}

	if canceler != nil {
		n, cerr := canceler.CancelByGuild(guildID)
		if cerr != nil {
			return fmt.Errorf("failed to cancel confirmations for guild %s: %w", guildID, cerr)
		}
		if n > 0 {
			log.Printf("Canceled %d pending confirmations targeting removed guild %s", n, guildID)
		}
	}
	return nil
}

// AddRoleMapping upserts label -> roleID for the guild, recording it
// both on the server entry and in the global mapping the way the
// original config file is laid out.
func (r *Registry) AddRoleMapping(label, guildID, roleID string) error {
	if label == "" || roleID == "" {
		return fmt.Errorf("%w: label and role id are required", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cfg.Servers[guildID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownServer, guildID)
	}
	if entry.Roles == nil {
		entry.Roles = make(map[string]string)
	}
	entry.Roles[label] = roleID
	r.cfg.Servers[guildID] = entry

	if _, ok := r.cfg.RoleMapping[label]; !ok {
		r.cfg.RoleMapping[label] = make(model.RoleMapping)
	}
	r.cfg.RoleMapping[label][guildID] = roleID

	return r.save()
}

// SetPunishmentSync toggles punishment sync participation for a guild.
func (r *Registry) SetPunishmentSync(guildID string, enabled bool) error {
	return r.updateServer(guildID, func(e *model.ServerEntry) {
		e.PunishmentSync = enabled
	})
}

// SetAnnounceChannel sets the guild's punishment announce channel.
func (r *Registry) SetAnnounceChannel(guildID, channelID string) error {
	return r.updateServer(guildID, func(e *model.ServerEntry) {
		e.PunishmentAnnounceChannel = channelID
	})
}

// SetWarnedRole sets the role granted by warn punishments in the guild.
func (r *Registry) SetWarnedRole(guildID, roleID string) error {
	return r.updateServer(guildID, func(e *model.ServerEntry) {
		e.WarnedRoleID = roleID
	})
}

// SetConfirmChannel sets the guild's punishment confirm channel.
func (r *Registry) SetConfirmChannel(guildID, channelID string) error {
	return r.updateServer(guildID, func(e *model.ServerEntry) {
		e.PunishmentConfirmChannel = channelID
	})
}

func (r *Registry) updateServer(guildID string, mutate func(*model.ServerEntry)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cfg.Servers[guildID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownServer, guildID)
	}
	mutate(&entry)
	r.cfg.Servers[guildID] = entry
	return r.save()
}

// Server returns a copy of the guild's entry.
func (r *Registry) Server(guildID string) (model.ServerEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cfg.Servers[guildID]
	return entry, ok
}

// Servers returns a snapshot of all server entries.
func (r *Registry) Servers() map[string]model.ServerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.ServerEntry, len(r.cfg.Servers))
	for id, entry := range r.cfg.Servers {
		out[id] = entry
	}
	return out
}

// SyncTargets returns the guilds participating in punishment sync,
// excluding the source guild.
func (r *Registry) SyncTargets(sourceGuildID string) []model.ServerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var targets []model.ServerEntry
	for id, entry := range r.cfg.Servers {
		if id == sourceGuildID || !entry.PunishmentSync {
			continue
		}
		targets = append(targets, entry)
	}
	return targets
}

// SyncableLabels filters the given labels down to those with a mapping.
func (r *Registry) SyncableLabels(labels []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, label := range labels {
		if _, ok := r.cfg.RoleMapping[label]; ok {
			out = append(out, label)
		}
	}
	return out
}

// ResolveRolesForMember resolves which role the label grants on each
// guild other than the source. Guilds with no entry for a label are
// simply absent from the result.
func (r *Registry) ResolveRolesForMember(labels []string, sourceGuildID string) map[string]map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// result: guild ID -> label -> role ID
	result := make(map[string]map[string]string)
	for _, label := range labels {
		mapping, ok := r.cfg.RoleMapping[label]
		if !ok {
			continue
		}
		for guildID, roleID := range mapping {
			if guildID == sourceGuildID {
				continue
			}
			if _, ok := r.cfg.Servers[guildID]; !ok {
				continue
			}
			if result[guildID] == nil {
				result[guildID] = make(map[string]string)
			}
			result[guildID][label] = roleID
		}
	}
	return result
}

// Enabled reports whether sync is globally enabled.
func (r *Registry) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Enabled
}
