package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoleSync(t *testing.T, effector *fakeEffector, guard HierarchyGuard) (*RoleSync, *Registry) {
	t.Helper()
	reg := newTestRegistry(t)
	seedServers(t, reg, 3)
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-1", "111"))
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-2", "222"))
	require.NoError(t, reg.AddRoleMapping("veteran", "guild-3", "333"))
	if guard == nil {
		guard = &allowAllGuard{}
	}
	return NewRoleSync(reg, effector, guard, time.Second), reg
}

func TestSyncMemberRolesGrantsAllTargets(t *testing.T) {
	effector := newFakeEffector()
	rs, _ := newTestRoleSync(t, effector, nil)

	results := rs.SyncMemberRoles(context.Background(), "user-1", []string{"veteran"}, "guild-1")

	require.Len(t, results, 2)
	assert.Equal(t, OutcomeApplied, results["guild-2"].Status)
	assert.Equal(t, OutcomeApplied, results["guild-3"].Status)
	assert.NotContains(t, results, "guild-1")
}

func TestSyncMemberRolesAlreadyHeldIsNoOpSuccess(t *testing.T) {
	effector := newFakeEffector()
	effector.heldRoles["guild-2/user-1/222"] = true
	rs, _ := newTestRoleSync(t, effector, nil)

	results := rs.SyncMemberRoles(context.Background(), "user-1", []string{"veteran"}, "guild-1")

	assert.Equal(t, OutcomeApplied, results["guild-2"].Status)
	// No remote mutation happened for the held role.
	assert.NotContains(t, effector.grantCalls, "guild-2/user-1/222")
	assert.Contains(t, effector.grantCalls, "guild-3/user-1/333")
}

func TestSyncMemberRolesHierarchyDenialSkipsTargetOnly(t *testing.T) {
	effector := newFakeEffector()
	guard := &allowAllGuard{denied: map[string]bool{"guild-2/222": true}}
	rs, _ := newTestRoleSync(t, effector, guard)

	results := rs.SyncMemberRoles(context.Background(), "user-1", []string{"veteran"}, "guild-1")

	assert.Equal(t, OutcomeSkipped, results["guild-2"].Status)
	assert.Contains(t, results["guild-2"].Reason, "role hierarchy")
	// The sibling target is unaffected.
	assert.Equal(t, OutcomeApplied, results["guild-3"].Status)
	assert.NotContains(t, effector.grantCalls, "guild-2/user-1/222")
}

func TestSyncMemberRolesFailureDoesNotAbortSiblings(t *testing.T) {
	effector := newFakeEffector()
	effector.setFail("guild-2", errors.New("api unavailable"))
	rs, _ := newTestRoleSync(t, effector, nil)

	results := rs.SyncMemberRoles(context.Background(), "user-1", []string{"veteran"}, "guild-1")

	assert.Equal(t, OutcomeFailed, results["guild-2"].Status)
	assert.Contains(t, results["guild-2"].Reason, "api unavailable")
	assert.Equal(t, OutcomeApplied, results["guild-3"].Status)
}

func TestTransferMemberRole(t *testing.T) {
	effector := newFakeEffector()
	rs, reg := newTestRoleSync(t, effector, nil)
	require.NoError(t, reg.AddRoleMapping("elder", "guild-2", "444"))

	results := rs.TransferMemberRole(context.Background(), "user-1", "veteran", "elder", "guild-1", true)

	// guild-2 has both labels: new role granted, old removed.
	assert.Equal(t, OutcomeApplied, results["guild-2"].Status)
	assert.Contains(t, effector.grantCalls, "guild-2/user-1/444")
	assert.Contains(t, effector.removes, "guild-2/user-1/222")

	// guild-3 only maps the old label: removal only.
	assert.Equal(t, OutcomeApplied, results["guild-3"].Status)
	assert.Contains(t, effector.removes, "guild-3/user-1/333")
}

func TestTransferMemberRoleKeepOld(t *testing.T) {
	effector := newFakeEffector()
	rs, reg := newTestRoleSync(t, effector, nil)
	require.NoError(t, reg.AddRoleMapping("elder", "guild-2", "444"))

	results := rs.TransferMemberRole(context.Background(), "user-1", "veteran", "elder", "guild-1", false)

	require.Len(t, results, 1)
	assert.Equal(t, OutcomeApplied, results["guild-2"].Status)
	assert.Empty(t, effector.removes)
}
