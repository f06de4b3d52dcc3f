package syncer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// RoleSync computes and applies cross-guild role grants. Targets are
// fully independent: they run concurrently, and one target failing
// never rolls back or aborts another.
type RoleSync struct {
	registry *Registry
	effector GuildEffector
	guard    HierarchyGuard
	timeout  time.Duration
}

func NewRoleSync(registry *Registry, effector GuildEffector, guard HierarchyGuard, timeout time.Duration) *RoleSync {
	return &RoleSync{
		registry: registry,
		effector: effector,
		guard:    guard,
		timeout:  timeout,
	}
}

// SyncMemberRoles grants the member's syncable labels on every mapped
// guild except the source. The result maps guild ID to that guild's
// outcome; granting a role the member already holds counts as applied.
func (rs *RoleSync) SyncMemberRoles(ctx context.Context, userID string, labels []string, sourceGuildID string) map[string]TargetOutcome {
	targets := rs.registry.ResolveRolesForMember(labels, sourceGuildID)

	results := make(map[string]TargetOutcome, len(targets))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for guildID, roles := range targets {
		wg.Add(1)
		go func(guildID string, roles map[string]string) {
			defer wg.Done()
			outcome := rs.syncGuild(ctx, guildID, userID, roles)
			mu.Lock()
			results[guildID] = outcome
			mu.Unlock()
		}(guildID, roles)
	}
	wg.Wait()
	return results
}

// syncGuild grants every resolved role for one guild and folds the
// per-role results into a single outcome.
func (rs *RoleSync) syncGuild(ctx context.Context, guildID, userID string, roles map[string]string) TargetOutcome {
	var granted, denied int
	var reasons []string

	for label, roleID := range roles {
		ok, err := rs.guard.CanAssign(guildID, roleID)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: hierarchy check failed: %v", label, err))
			continue
		}
		if !ok {
			denied++
			reasons = append(reasons, fmt.Sprintf("%s: %v", label, ErrPermissionDenied))
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, rs.timeout)
		mutated, err := rs.effector.GrantRole(callCtx, guildID, userID, roleID)
		cancel()
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		granted++
		if !mutated {
			log.Printf("Role %s (%s) already held by %s in guild %s, skipping remote call", roleID, label, userID, guildID)
		}
	}

	reason := strings.Join(reasons, "; ")
	switch {
	case granted > 0 && len(reasons) == 0:
		return TargetOutcome{Status: OutcomeApplied}
	case granted > 0:
		// Partial: some labels landed, the rest explain themselves.
		return TargetOutcome{Status: OutcomeFailed, Reason: reason}
	case denied == len(roles):
		return TargetOutcome{Status: OutcomeSkipped, Reason: reason}
	default:
		return TargetOutcome{Status: OutcomeFailed, Reason: reason}
	}
}

// TransferMemberRole re-labels a member across the network: the role
// mapped to newLabel is granted on every target, and when removeOld is
// set the role mapped to oldLabel is removed afterwards. Grants and
// removals share the per-target independence of SyncMemberRoles.
func (rs *RoleSync) TransferMemberRole(ctx context.Context, userID, oldLabel, newLabel, sourceGuildID string, removeOld bool) map[string]TargetOutcome {
	grants := rs.registry.ResolveRolesForMember([]string{newLabel}, sourceGuildID)
	removals := map[string]map[string]string{}
	if removeOld {
		removals = rs.registry.ResolveRolesForMember([]string{oldLabel}, sourceGuildID)
	}

	guildIDs := make(map[string]struct{})
	for id := range grants {
		guildIDs[id] = struct{}{}
	}
	for id := range removals {
		guildIDs[id] = struct{}{}
	}

	results := make(map[string]TargetOutcome, len(guildIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for guildID := range guildIDs {
		wg.Add(1)
		go func(guildID string) {
			defer wg.Done()
			outcome := rs.transferGuild(ctx, guildID, userID, grants[guildID][newLabel], removals[guildID][oldLabel])
			mu.Lock()
			results[guildID] = outcome
			mu.Unlock()
		}(guildID)
	}
	wg.Wait()
	return results
}

func (rs *RoleSync) transferGuild(ctx context.Context, guildID, userID, grantRoleID, removeRoleID string) TargetOutcome {
	if grantRoleID != "" {
		ok, err := rs.guard.CanAssign(guildID, grantRoleID)
		if err != nil {
			return TargetOutcome{Status: OutcomeFailed, Reason: fmt.Sprintf("hierarchy check failed: %v", err)}
		}
		if !ok {
			return TargetOutcome{Status: OutcomeSkipped, Reason: ErrPermissionDenied.Error()}
		}

		callCtx, cancel := context.WithTimeout(ctx, rs.timeout)
		_, err = rs.effector.GrantRole(callCtx, guildID, userID, grantRoleID)
		cancel()
		if err != nil {
			return TargetOutcome{Status: OutcomeFailed, Reason: err.Error()}
		}
	}

	if removeRoleID != "" {
		callCtx, cancel := context.WithTimeout(ctx, rs.timeout)
		err := rs.effector.RemoveRole(callCtx, guildID, userID, removeRoleID)
		cancel()
		if err != nil {
			// The grant stays; removal failure downgrades this target only.
			return TargetOutcome{Status: OutcomeFailed, Reason: fmt.Sprintf("old role removal: %v", err)}
		}
	}

	if grantRoleID == "" && removeRoleID == "" {
		return TargetOutcome{Status: OutcomeSkipped, Reason: "no mapping for either label"}
	}
	return TargetOutcome{Status: OutcomeApplied}
}
