package auditdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sync-bot/model"

	"github.com/jmoiron/sqlx"
)

// AddPunishmentRecord inserts a new punishment record together with its
// initial "proposed" resolution entry, in one transaction.
func AddPunishmentRecord(db *sqlx.DB, record model.PunishmentRecord) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO punishments (punishment_id, kind, user_id, user_username, admin_id, reason, source_guild_id, evidence, duration_sec, expires_at, status, timestamp)
			  VALUES (:punishment_id, :kind, :user_id, :user_username, :admin_id, :reason, :source_guild_id, :evidence, :duration_sec, :expires_at, :status, :timestamp)`
	if _, err := tx.NamedExec(query, record); err != nil {
		return fmt.Errorf("failed to insert punishment record: %w", err)
	}

	if err := appendResolutionTx(tx, model.ResolutionEvent{
		PunishmentID:  record.PunishmentID,
		TargetGuildID: record.SourceGuildID,
		Event:         model.ResolutionProposed,
		ActorID:       record.AdminID,
		Timestamp:     record.Timestamp,
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// PunishmentExists reports whether a punishment id is already recorded.
func PunishmentExists(db *sqlx.DB, punishmentID string) (bool, error) {
	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM punishments WHERE punishment_id = ?", punishmentID)
	if err != nil {
		return false, fmt.Errorf("failed to check punishment %s: %w", punishmentID, err)
	}
	return count > 0, nil
}

// GetPunishmentRecordByID retrieves a single punishment record. Returns
// (nil, nil) when no record exists.
func GetPunishmentRecordByID(db *sqlx.DB, punishmentID string) (*model.PunishmentRecord, error) {
	var record model.PunishmentRecord
	err := db.Get(&record, "SELECT * FROM punishments WHERE punishment_id = ?", punishmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get punishment record by id %s: %w", punishmentID, err)
	}
	return &record, nil
}

// GetPunishmentRecordsByUserID retrieves punishment records for a specific user,
// optionally filtered by a start time.
func GetPunishmentRecordsByUserID(db *sqlx.DB, userID string, since *time.Time) ([]model.PunishmentRecord, error) {
	var records []model.PunishmentRecord
	query := "SELECT * FROM punishments WHERE user_id = ?"
	args := []interface{}{userID}

	if since != nil {
		query += " AND timestamp >= ?"
		args = append(args, since.Unix())
	}
	query += " ORDER BY timestamp DESC"

	if err := db.Select(&records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get punishment records for user %s: %w", userID, err)
	}
	return records, nil
}

// MarkPunishmentRevoked flips the record to revoked and appends the
// revocation entry atomically. Revoking an already-revoked record is a
// no-op success; the reported bool says whether this call did the flip.
func MarkPunishmentRevoked(db *sqlx.DB, punishmentID, actorID string) (bool, error) {
	tx, err := db.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec("UPDATE punishments SET status = ? WHERE punishment_id = ? AND status = ?",
		model.PunishmentRevoked, punishmentID, model.PunishmentActive)
	if err != nil {
		return false, fmt.Errorf("failed to revoke punishment %s: %w", punishmentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for punishment %s: %w", punishmentID, err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := appendResolutionTx(tx, model.ResolutionEvent{
		PunishmentID: punishmentID,
		Event:        model.ResolutionRevoked,
		ActorID:      actorID,
		Timestamp:    time.Now().Unix(),
	}); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// AppendResolution appends one entry to the resolution ledger.
func AppendResolution(db *sqlx.DB, event model.ResolutionEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	query := `INSERT INTO punishment_resolutions (punishment_id, target_guild_id, event, actor_id, detail, timestamp)
			  VALUES (:punishment_id, :target_guild_id, :event, :actor_id, :detail, :timestamp)`
	if _, err := db.NamedExec(query, event); err != nil {
		return fmt.Errorf("failed to append resolution for punishment %s: %w", event.PunishmentID, err)
	}
	return nil
}

func appendResolutionTx(tx *sqlx.Tx, event model.ResolutionEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	query := `INSERT INTO punishment_resolutions (punishment_id, target_guild_id, event, actor_id, detail, timestamp)
			  VALUES (:punishment_id, :target_guild_id, :event, :actor_id, :detail, :timestamp)`
	if _, err := tx.NamedExec(query, event); err != nil {
		return fmt.Errorf("failed to append resolution for punishment %s: %w", event.PunishmentID, err)
	}
	return nil
}

// GetResolutions retrieves a punishment's full resolution history in
// insertion order.
func GetResolutions(db *sqlx.DB, punishmentID string) ([]model.ResolutionEvent, error) {
	var events []model.ResolutionEvent
	err := db.Select(&events, "SELECT * FROM punishment_resolutions WHERE punishment_id = ? ORDER BY id", punishmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolutions for punishment %s: %w", punishmentID, err)
	}
	return events, nil
}

// GetAppliedGuilds returns the guilds where the punishment was actually
// applied, per the resolution ledger.
func GetAppliedGuilds(db *sqlx.DB, punishmentID string) ([]string, error) {
	var guilds []string
	query := "SELECT DISTINCT target_guild_id FROM punishment_resolutions WHERE punishment_id = ? AND event = ?"
	if err := db.Select(&guilds, query, punishmentID, model.ResolutionApplied); err != nil {
		return nil, fmt.Errorf("failed to get applied guilds for punishment %s: %w", punishmentID, err)
	}
	return guilds, nil
}

// CreatePendingConfirmation persists one open confirmation row.
func CreatePendingConfirmation(db *sqlx.DB, pc model.PendingConfirmation) error {
	query := `INSERT INTO pending_confirmations (punishment_id, target_guild_id, state, requested_at, expires_at, responded_by)
			  VALUES (:punishment_id, :target_guild_id, :state, :requested_at, :expires_at, :responded_by)`
	if _, err := db.NamedExec(query, pc); err != nil {
		return fmt.Errorf("failed to insert pending confirmation %s/%s: %w", pc.PunishmentID, pc.TargetGuildID, err)
	}
	return nil
}

// ResolvePendingConfirmation moves an open confirmation to a terminal
// state. The WHERE clause only matches pending rows, so a stale resolve
// reports false without touching the settled row.
func ResolvePendingConfirmation(db *sqlx.DB, punishmentID, targetGuildID, state, respondedBy string) (bool, error) {
	result, err := db.Exec(`UPDATE pending_confirmations SET state = ?, responded_by = ?
		WHERE punishment_id = ? AND target_guild_id = ? AND state = ?`,
		state, respondedBy, punishmentID, targetGuildID, model.ConfirmPending)
	if err != nil {
		return false, fmt.Errorf("failed to resolve pending confirmation %s/%s: %w", punishmentID, targetGuildID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for confirmation %s/%s: %w", punishmentID, targetGuildID, err)
	}
	return affected > 0, nil
}

// GetOpenConfirmations retrieves every confirmation still pending,
// oldest first. Used at startup to re-arm expiry timers.
func GetOpenConfirmations(db *sqlx.DB) ([]model.PendingConfirmation, error) {
	var rows []model.PendingConfirmation
	err := db.Select(&rows, "SELECT * FROM pending_confirmations WHERE state = ? ORDER BY requested_at", model.ConfirmPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get open confirmations: %w", err)
	}
	return rows, nil
}

// GetOpenConfirmationsByGuild retrieves pending confirmations targeting
// one guild. Used by the remove-server cascade.
func GetOpenConfirmationsByGuild(db *sqlx.DB, guildID string) ([]model.PendingConfirmation, error) {
	var rows []model.PendingConfirmation
	err := db.Select(&rows, "SELECT * FROM pending_confirmations WHERE state = ? AND target_guild_id = ?", model.ConfirmPending, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open confirmations for guild %s: %w", guildID, err)
	}
	return rows, nil
}

// GetOpenConfirmationsByPunishment retrieves pending confirmations for
// one punishment across all targets.
func GetOpenConfirmationsByPunishment(db *sqlx.DB, punishmentID string) ([]model.PendingConfirmation, error) {
	var rows []model.PendingConfirmation
	err := db.Select(&rows, "SELECT * FROM pending_confirmations WHERE state = ? AND punishment_id = ?", model.ConfirmPending, punishmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open confirmations for punishment %s: %w", punishmentID, err)
	}
	return rows, nil
}

// GetConfirmation retrieves one confirmation row regardless of state.
// Returns (nil, nil) when the pair was never proposed.
func GetConfirmation(db *sqlx.DB, punishmentID, targetGuildID string) (*model.PendingConfirmation, error) {
	var pc model.PendingConfirmation
	err := db.Get(&pc, "SELECT * FROM pending_confirmations WHERE punishment_id = ? AND target_guild_id = ?", punishmentID, targetGuildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmation %s/%s: %w", punishmentID, targetGuildID, err)
	}
	return &pc, nil
}
