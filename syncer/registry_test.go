package syncer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"sync-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddServerDuplicate(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.AddServer("guild-1", "First"))
	err := reg.AddServer("guild-1", "Again")
	assert.ErrorIs(t, err, ErrDuplicateServer)
}

func TestAddRoleMappingValidation(t *testing.T) {
	reg := newTestRegistry(t)
	seedServers(t, reg, 1)

	assert.ErrorIs(t, reg.AddRoleMapping("", "guild-1", "111"), ErrValidation)
	assert.ErrorIs(t, reg.AddRoleMapping("veteran", "guild-9", "111"), ErrUnknownServer)

	require.NoError(t, reg.AddRoleMapping("veteran", "guild-1", "111"))
	// Upsert replaces the previous role id.
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-1", "222"))
	entry, ok := reg.Server("guild-1")
	require.True(t, ok)
	assert.Equal(t, "222", entry.Roles["veteran"])
}

func TestServerSettingsUpdates(t *testing.T) {
	reg := newTestRegistry(t)
	seedServers(t, reg, 1)

	require.NoError(t, reg.SetPunishmentSync("guild-1", true))
	require.NoError(t, reg.SetAnnounceChannel("guild-1", "chan-a"))
	require.NoError(t, reg.SetConfirmChannel("guild-1", "chan-c"))
	require.NoError(t, reg.SetWarnedRole("guild-1", "role-w"))

	entry, ok := reg.Server("guild-1")
	require.True(t, ok)
	assert.True(t, entry.PunishmentSync)
	assert.Equal(t, "chan-a", entry.PunishmentAnnounceChannel)
	assert.Equal(t, "chan-c", entry.PunishmentConfirmChannel)
	assert.Equal(t, "role-w", entry.WarnedRoleID)

	assert.ErrorIs(t, reg.SetWarnedRole("guild-9", "role-w"), ErrUnknownServer)
}

func TestResolveRolesForMemberExcludesSource(t *testing.T) {
	reg := newTestRegistry(t)
	seedServers(t, reg, 3)
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-1", "111"))
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-2", "222"))
	require.NoError(t, reg.AddRoleMapping("helper", "guild-3", "333"))

	result := reg.ResolveRolesForMember([]string{"veteran", "helper"}, "guild-1")

	assert.NotContains(t, result, "guild-1")
	assert.Equal(t, map[string]string{"veteran": "222"}, result["guild-2"])
	assert.Equal(t, map[string]string{"helper": "333"}, result["guild-3"])
}

func TestResolveRolesForMemberSingleMapping(t *testing.T) {
	reg := newTestRegistry(t)
	seedServers(t, reg, 2)
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-1", "111"))

	result := reg.ResolveRolesForMember([]string{"veteran"}, "guild-2")
	require.Len(t, result, 1)
	assert.Equal(t, map[string]string{"veteran": "111"}, result["guild-1"])
}

type fakeCanceler struct {
	canceled []string
	count    int
}

func (f *fakeCanceler) CancelByGuild(guildID string) (int, error) {
	f.canceled = append(f.canceled, guildID)
	return f.count, nil
}

func TestRemoveServerCascades(t *testing.T) {
	reg := newTestRegistry(t)
	seedServers(t, reg, 2)
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-1", "111"))
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-2", "222"))
	require.NoError(t, reg.AddRoleMapping("helper", "guild-1", "333"))

	canceler := &fakeCanceler{count: 2}
	reg.SetCanceler(canceler)

	require.NoError(t, reg.RemoveServer("guild-1"))

	_, ok := reg.Server("guild-1")
	assert.False(t, ok)
	assert.Equal(t, []string{"guild-1"}, canceler.canceled)

	// guild-1 dropped from the shared mapping, the helper mapping is
	// gone entirely because no guild references it anymore.
	result := reg.ResolveRolesForMember([]string{"veteran", "helper"}, "guild-9")
	require.Len(t, result, 1)
	assert.Equal(t, map[string]string{"veteran": "222"}, result["guild-2"])

	assert.ErrorIs(t, reg.RemoveServer("guild-1"), ErrUnknownServer)
}

func TestLoadRegistryRejectsDanglingReference(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.NewSyncConfig()
	cfg.RoleMapping["veteran"] = model.RoleMapping{"ghost-guild": "111"}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = LoadRegistry(path)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestRegistryPersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.NoError(t, reg.AddServer("guild-1", "First"))
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-1", "111"))
	require.NoError(t, reg.SetPunishmentSync("guild-1", true))
	require.NoError(t, reg.SetConfirmChannel("guild-1", "chan-c"))
	require.NoError(t, reg.SetAnnounceChannel("guild-1", "chan-a"))

	reloaded, err := LoadRegistry(path)
	require.NoError(t, err)
	entry, ok := reloaded.Server("guild-1")
	require.True(t, ok)
	assert.True(t, entry.PunishmentSync)
	assert.Equal(t, "chan-c", entry.PunishmentConfirmChannel)
	assert.Equal(t, "chan-a", entry.PunishmentAnnounceChannel)
	assert.Equal(t, "111", entry.Roles["veteran"])
}

func TestSyncTargetsFiltering(t *testing.T) {
	reg := newTestRegistry(t)
	seedServers(t, reg, 3)
	require.NoError(t, reg.SetPunishmentSync("guild-1", true))
	require.NoError(t, reg.SetPunishmentSync("guild-2", true))
	// guild-3 stays opted out.

	targets := reg.SyncTargets("guild-1")
	require.Len(t, targets, 1)
	assert.Equal(t, "guild-2", targets[0].GuildID)
}
