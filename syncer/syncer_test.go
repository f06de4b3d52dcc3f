package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"sync-bot/model"
)

// fakeEffector records every remote call and can be told to fail per
// guild or per operation.
type fakeEffector struct {
	mu         sync.Mutex
	grantCalls []string // "guild/user/role"
	removes    []string
	applies    []string // "guild/punishment"
	revokes    []string
	heldRoles  map[string]bool // "guild/user/role" -> already held
	failGuilds map[string]error
}

func newFakeEffector() *fakeEffector {
	return &fakeEffector{
		heldRoles:  make(map[string]bool),
		failGuilds: make(map[string]error),
	}
}

func (f *fakeEffector) GrantRole(_ context.Context, guildID, userID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failGuilds[guildID]; err != nil {
		return false, err
	}
	key := guildID + "/" + userID + "/" + roleID
	if f.heldRoles[key] {
		return false, nil
	}
	f.grantCalls = append(f.grantCalls, key)
	f.heldRoles[key] = true
	return true, nil
}

func (f *fakeEffector) RemoveRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failGuilds[guildID]; err != nil {
		return err
	}
	f.removes = append(f.removes, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakeEffector) ApplyPunishment(_ context.Context, guildID string, record *model.PunishmentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failGuilds[guildID]; err != nil {
		return err
	}
	f.applies = append(f.applies, guildID+"/"+record.PunishmentID)
	return nil
}

func (f *fakeEffector) RevokePunishment(_ context.Context, guildID string, record *model.PunishmentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failGuilds[guildID]; err != nil {
		return err
	}
	f.revokes = append(f.revokes, guildID+"/"+record.PunishmentID)
	return nil
}

func (f *fakeEffector) applyCount(guildID, punishmentID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.applies {
		if c == guildID+"/"+punishmentID {
			n++
		}
	}
	return n
}

func (f *fakeEffector) revokeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.revokes)
}

func (f *fakeEffector) setFail(guildID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failGuilds, guildID)
	} else {
		f.failGuilds[guildID] = err
	}
}

// allowAllGuard accepts everything except roles listed in denied.
type allowAllGuard struct {
	denied map[string]bool // "guild/role"
}

func (g *allowAllGuard) CanAssign(guildID, roleID string) (bool, error) {
	if g.denied[guildID+"/"+roleID] {
		return false, nil
	}
	return true, nil
}

// nopNotifier records notifications without delivering anything.
type nopNotifier struct {
	mu       sync.Mutex
	requests []string
	outcomes []string
}

func (n *nopNotifier) NotifyConfirmRequest(targetGuildID string, record *model.PunishmentRecord, _ int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, targetGuildID+"/"+record.PunishmentID)
}

func (n *nopNotifier) NotifyOutcome(targetGuildID string, record *model.PunishmentRecord, event, _, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, targetGuildID+"/"+record.PunishmentID+"/"+event)
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	return reg
}

// seedServers adds n guilds named guild-1..guild-n.
func seedServers(t *testing.T, reg *Registry, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("guild-%d", i)
		if err := reg.AddServer(id, "Server "+id); err != nil {
			t.Fatalf("AddServer(%s): %v", id, err)
		}
		ids = append(ids, id)
	}
	return ids
}
