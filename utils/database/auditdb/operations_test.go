package auditdb

import (
	"path/filepath"
	"testing"
	"time"

	"sync-bot/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord(id string) model.PunishmentRecord {
	return model.PunishmentRecord{
		PunishmentID:  id,
		Kind:          model.PunishmentTimeout,
		UserID:        "user-1",
		UserUsername:  "someone",
		AdminID:       "admin-1",
		Reason:        "test",
		SourceGuildID: "guild-1",
		DurationSec:   3600,
		Status:        model.PunishmentActive,
		Timestamp:     time.Now().Unix(),
	}
}

func TestAddAndGetPunishmentRecord(t *testing.T) {
	db := testDB(t)

	require.NoError(t, AddPunishmentRecord(db, sampleRecord("p1")))

	record, err := GetPunishmentRecordByID(db, "p1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, model.PunishmentTimeout, record.Kind)
	assert.Equal(t, model.PunishmentActive, record.Status)

	missing, err := GetPunishmentRecordByID(db, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := PunishmentExists(db, "p1")
	require.NoError(t, err)
	assert.True(t, exists)

	// The insert transaction also wrote the proposed entry.
	events, err := GetResolutions(db, "p1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.ResolutionProposed, events[0].Event)
}

func TestGetPunishmentRecordsByUserSince(t *testing.T) {
	db := testDB(t)

	old := sampleRecord("p-old")
	old.Timestamp = time.Now().Add(-48 * time.Hour).Unix()
	require.NoError(t, AddPunishmentRecord(db, old))
	require.NoError(t, AddPunishmentRecord(db, sampleRecord("p-new")))

	since := time.Now().Add(-1 * time.Hour)
	records, err := GetPunishmentRecordsByUserID(db, "user-1", &since)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p-new", records[0].PunishmentID)

	all, err := GetPunishmentRecordsByUserID(db, "user-1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMarkPunishmentRevokedOnlyOnce(t *testing.T) {
	db := testDB(t)
	require.NoError(t, AddPunishmentRecord(db, sampleRecord("p1")))

	flipped, err := MarkPunishmentRevoked(db, "p1", "admin-1")
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = MarkPunishmentRevoked(db, "p1", "admin-1")
	require.NoError(t, err)
	assert.False(t, flipped)

	events, err := GetResolutions(db, "p1")
	require.NoError(t, err)
	var revoked int
	for _, ev := range events {
		if ev.Event == model.ResolutionRevoked {
			revoked++
		}
	}
	assert.Equal(t, 1, revoked)
}

func TestResolvePendingConfirmationIsConditional(t *testing.T) {
	db := testDB(t)
	now := time.Now().Unix()
	require.NoError(t, CreatePendingConfirmation(db, model.PendingConfirmation{
		PunishmentID: "p1", TargetGuildID: "guild-2", State: model.ConfirmPending,
		RequestedAt: now, ExpiresAt: now + 60,
	}))

	ok, err := ResolvePendingConfirmation(db, "p1", "guild-2", model.ConfirmConfirmed, "mod-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second resolution loses: the row is no longer pending.
	ok, err = ResolvePendingConfirmation(db, "p1", "guild-2", model.ConfirmExpired, "")
	require.NoError(t, err)
	assert.False(t, ok)

	pc, err := GetConfirmation(db, "p1", "guild-2")
	require.NoError(t, err)
	require.NotNil(t, pc)
	assert.Equal(t, model.ConfirmConfirmed, pc.State)
	assert.Equal(t, "mod-1", pc.RespondedBy)
}

func TestOpenConfirmationQueries(t *testing.T) {
	db := testDB(t)
	now := time.Now().Unix()
	for _, g := range []string{"guild-2", "guild-3"} {
		require.NoError(t, CreatePendingConfirmation(db, model.PendingConfirmation{
			PunishmentID: "p1", TargetGuildID: g, State: model.ConfirmPending,
			RequestedAt: now, ExpiresAt: now + 60,
		}))
	}
	_, err := ResolvePendingConfirmation(db, "p1", "guild-3", model.ConfirmRejected, "mod-3")
	require.NoError(t, err)

	open, err := GetOpenConfirmations(db)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "guild-2", open[0].TargetGuildID)

	byGuild, err := GetOpenConfirmationsByGuild(db, "guild-2")
	require.NoError(t, err)
	assert.Len(t, byGuild, 1)

	byPunishment, err := GetOpenConfirmationsByPunishment(db, "p1")
	require.NoError(t, err)
	assert.Len(t, byPunishment, 1)
}

func TestGetAppliedGuilds(t *testing.T) {
	db := testDB(t)
	require.NoError(t, AddPunishmentRecord(db, sampleRecord("p1")))
	require.NoError(t, AppendResolution(db, model.ResolutionEvent{
		PunishmentID: "p1", TargetGuildID: "guild-2", Event: model.ResolutionApplied, ActorID: "mod-2",
	}))
	require.NoError(t, AppendResolution(db, model.ResolutionEvent{
		PunishmentID: "p1", TargetGuildID: "guild-3", Event: model.ResolutionApplyFailed, ActorID: "mod-3", Detail: "boom",
	}))

	guilds, err := GetAppliedGuilds(db, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"guild-2"}, guilds)
}
