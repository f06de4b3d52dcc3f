package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sync-bot/model"
	"sync-bot/utils/database/auditdb"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Authorizer reports whether an actor counts as an operator for the
// ungated operations (revoke, manual re-apply).
type Authorizer func(actorID string) bool

// PunishmentSync drives the propose -> confirm/reject/expire ->
// apply/revoke lifecycle. The audit database is the commit point for
// every transition: the conditional UPDATE on pending_confirmations
// decides races, the in-memory workflow only drives timers.
type PunishmentSync struct {
	registry *Registry
	db       *sqlx.DB
	workflow *Workflow
	effector GuildEffector
	notifier Notifier
	locks    *keyLocks

	confirmTimeout  time.Duration
	effectorTimeout time.Duration
	isOperator      Authorizer
}

func NewPunishmentSync(registry *Registry, db *sqlx.DB, effector GuildEffector, notifier Notifier,
	confirmTimeout, effectorTimeout time.Duration, isOperator Authorizer) *PunishmentSync {
	return &PunishmentSync{
		registry:        registry,
		db:              db,
		workflow:        NewWorkflow(),
		effector:        effector,
		notifier:        notifier,
		locks:           newKeyLocks(),
		confirmTimeout:  confirmTimeout,
		effectorTimeout: effectorTimeout,
		isOperator:      isOperator,
	}
}

// NewPunishmentID generates a short punishment id.
func NewPunishmentID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Propose records the punishment and opens one confirmation per
// sync-enabled target guild. Returns the target guild IDs that were
// asked to confirm. A known punishment id is rejected before any new
// state is created.
func (ps *PunishmentSync) Propose(record *model.PunishmentRecord) ([]string, error) {
	if record.PunishmentID == "" {
		record.PunishmentID = NewPunishmentID()
	}
	if record.Kind != model.PunishmentTimeout && record.Kind != model.PunishmentBan && record.Kind != model.PunishmentWarn {
		return nil, fmt.Errorf("%w: unknown punishment kind %q", ErrValidation, record.Kind)
	}
	if _, ok := ps.registry.Server(record.SourceGuildID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownServer, record.SourceGuildID)
	}

	exists, err := auditdb.PunishmentExists(ps.db, record.PunishmentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePunishment, record.PunishmentID)
	}

	now := time.Now()
	record.Status = model.PunishmentActive
	if record.Timestamp == 0 {
		record.Timestamp = now.Unix()
	}
	if record.DurationSec > 0 {
		record.ExpiresAt = record.Timestamp + record.DurationSec
	}
	if err := auditdb.AddPunishmentRecord(ps.db, *record); err != nil {
		return nil, err
	}

	expiresAt := now.Add(ps.confirmTimeout).Unix()
	var targets []string
	for _, entry := range ps.registry.SyncTargets(record.SourceGuildID) {
		pc := model.PendingConfirmation{
			PunishmentID:  record.PunishmentID,
			TargetGuildID: entry.GuildID,
			State:         model.ConfirmPending,
			RequestedAt:   now.Unix(),
			ExpiresAt:     expiresAt,
		}
		if err := auditdb.CreatePendingConfirmation(ps.db, pc); err != nil {
			log.Printf("Failed to persist confirmation %s/%s: %v", record.PunishmentID, entry.GuildID, err)
			continue
		}
		ps.armTimer(record.PunishmentID, entry.GuildID, ps.confirmTimeout)
		ps.notifier.NotifyConfirmRequest(entry.GuildID, record, expiresAt)
		targets = append(targets, entry.GuildID)
	}
	return targets, nil
}

func (ps *PunishmentSync) armTimer(punishmentID, targetGuildID string, timeout time.Duration) {
	key := confirmKey(punishmentID, targetGuildID)
	if _, err := ps.workflow.Create(key, timeout, func() {
		ps.expireConfirmation(punishmentID, targetGuildID)
	}); err != nil {
		log.Printf("Failed to arm confirmation timer for %s: %v", key, err)
	}
}

// Confirm moves a pending confirmation to confirmed and applies the
// punishment on the target guild. Late or duplicate responses observe
// ErrInvalidState and never reach the effector.
func (ps *PunishmentSync) Confirm(ctx context.Context, punishmentID, targetGuildID, actorID string) error {
	unlock := ps.locks.Lock(confirmKey(punishmentID, targetGuildID))
	defer unlock()

	if err := ps.settle(punishmentID, targetGuildID, model.ConfirmConfirmed, actorID); err != nil {
		return err
	}

	record, err := auditdb.GetPunishmentRecordByID(ps.db, punishmentID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %s", ErrPunishmentNotFound, punishmentID)
	}

	return ps.apply(ctx, record, targetGuildID, actorID)
}

// Reject moves a pending confirmation to rejected. No effector call.
func (ps *PunishmentSync) Reject(punishmentID, targetGuildID, actorID string) error {
	unlock := ps.locks.Lock(confirmKey(punishmentID, targetGuildID))
	defer unlock()

	if err := ps.settle(punishmentID, targetGuildID, model.ConfirmRejected, actorID); err != nil {
		return err
	}

	if record, err := auditdb.GetPunishmentRecordByID(ps.db, punishmentID); err == nil && record != nil {
		ps.notifier.NotifyOutcome(targetGuildID, record, model.ResolutionRejected, actorID, "")
	}
	return nil
}

// settle performs the exactly-once pending -> terminal transition. The
// conditional UPDATE is the arbiter; the workflow token is settled
// afterwards so its timer stands down. Caller holds the key lock.
func (ps *PunishmentSync) settle(punishmentID, targetGuildID, state, actorID string) error {
	resolved, err := auditdb.ResolvePendingConfirmation(ps.db, punishmentID, targetGuildID, state, actorID)
	if err != nil {
		return err
	}
	if !resolved {
		return fmt.Errorf("%w: %s/%s", ErrInvalidState, punishmentID, targetGuildID)
	}

	if token, ok := ps.workflow.Open(confirmKey(punishmentID, targetGuildID)); ok {
		if _, err := ps.workflow.Respond(token, workflowState(state)); err != nil {
			log.Printf("Failed to settle workflow token %s/%s: %v", punishmentID, targetGuildID, err)
		}
	}

	return auditdb.AppendResolution(ps.db, model.ResolutionEvent{
		PunishmentID:  punishmentID,
		TargetGuildID: targetGuildID,
		Event:         resolutionEvent(state),
		ActorID:       actorID,
	})
}

func workflowState(confirmState string) string {
	switch confirmState {
	case model.ConfirmConfirmed:
		return StateConfirmed
	case model.ConfirmRejected:
		return StateRejected
	default:
		return StateCanceled
	}
}

func resolutionEvent(confirmState string) string {
	switch confirmState {
	case model.ConfirmConfirmed:
		return model.ResolutionConfirmed
	case model.ConfirmRejected:
		return model.ResolutionRejected
	case model.ConfirmExpired:
		return model.ResolutionExpired
	default:
		return model.ResolutionCanceled
	}
}

// apply performs the remote punishment. A failure is terminal for this
// target (APPLY_FAILED): it is recorded and surfaced, never retried
// here — a moderation action must not be silently duplicated.
func (ps *PunishmentSync) apply(ctx context.Context, record *model.PunishmentRecord, targetGuildID, actorID string) error {
	callCtx, cancel := context.WithTimeout(ctx, ps.effectorTimeout)
	err := ps.effector.ApplyPunishment(callCtx, targetGuildID, record)
	cancel()

	if err != nil {
		effErr := &EffectorError{GuildID: targetGuildID, Op: "apply", Err: err}
		if aErr := auditdb.AppendResolution(ps.db, model.ResolutionEvent{
			PunishmentID:  record.PunishmentID,
			TargetGuildID: targetGuildID,
			Event:         model.ResolutionApplyFailed,
			ActorID:       actorID,
			Detail:        err.Error(),
		}); aErr != nil {
			log.Printf("Failed to record apply failure for %s/%s: %v", record.PunishmentID, targetGuildID, aErr)
		}
		ps.notifier.NotifyOutcome(targetGuildID, record, model.ResolutionApplyFailed, actorID, err.Error())
		return effErr
	}

	if err := auditdb.AppendResolution(ps.db, model.ResolutionEvent{
		PunishmentID:  record.PunishmentID,
		TargetGuildID: targetGuildID,
		Event:         model.ResolutionApplied,
		ActorID:       actorID,
	}); err != nil {
		return err
	}
	ps.notifier.NotifyOutcome(targetGuildID, record, model.ResolutionApplied, actorID, "")
	return nil
}

// ReapplyFailed is the explicit operator re-trigger for a target stuck
// in APPLY_FAILED. Valid only when the confirmation was confirmed and
// the latest apply attempt for the target failed.
func (ps *PunishmentSync) ReapplyFailed(ctx context.Context, punishmentID, targetGuildID, actorID string) error {
	if !ps.isOperator(actorID) {
		return fmt.Errorf("%w: %s", ErrNotAuthorized, actorID)
	}

	unlock := ps.locks.Lock(confirmKey(punishmentID, targetGuildID))
	defer unlock()

	pc, err := auditdb.GetConfirmation(ps.db, punishmentID, targetGuildID)
	if err != nil {
		return err
	}
	if pc == nil || pc.State != model.ConfirmConfirmed {
		return fmt.Errorf("%w: %s/%s was never confirmed", ErrInvalidState, punishmentID, targetGuildID)
	}

	events, err := auditdb.GetResolutions(ps.db, punishmentID)
	if err != nil {
		return err
	}
	last := ""
	for _, ev := range events {
		if ev.TargetGuildID != targetGuildID {
			continue
		}
		if ev.Event == model.ResolutionApplied || ev.Event == model.ResolutionApplyFailed {
			last = ev.Event
		}
	}
	if last != model.ResolutionApplyFailed {
		return fmt.Errorf("%w: %s/%s has no failed apply to retry", ErrInvalidState, punishmentID, targetGuildID)
	}

	record, err := auditdb.GetPunishmentRecordByID(ps.db, punishmentID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %s", ErrPunishmentNotFound, punishmentID)
	}
	return ps.apply(ctx, record, targetGuildID, actorID)
}

// expireConfirmation is the timer path: pending -> expired, no effector
// call. Shared by the per-token timer and the startup/sweep paths; the
// DB guard makes concurrent firings resolve exactly once.
func (ps *PunishmentSync) expireConfirmation(punishmentID, targetGuildID string) {
	unlock := ps.locks.Lock(confirmKey(punishmentID, targetGuildID))
	defer unlock()

	resolved, err := auditdb.ResolvePendingConfirmation(ps.db, punishmentID, targetGuildID, model.ConfirmExpired, "")
	if err != nil {
		log.Printf("Failed to expire confirmation %s/%s: %v", punishmentID, targetGuildID, err)
		return
	}
	if !resolved {
		return
	}

	if err := auditdb.AppendResolution(ps.db, model.ResolutionEvent{
		PunishmentID:  punishmentID,
		TargetGuildID: targetGuildID,
		Event:         model.ResolutionExpired,
		ActorID:       "system",
		Detail:        "no response before timeout",
	}); err != nil {
		log.Printf("Failed to record expiry for %s/%s: %v", punishmentID, targetGuildID, err)
	}

	if record, err := auditdb.GetPunishmentRecordByID(ps.db, punishmentID); err == nil && record != nil {
		ps.notifier.NotifyOutcome(targetGuildID, record, model.ResolutionExpired, "", "")
	}
	log.Printf("Confirmation %s/%s expired, not applied", punishmentID, targetGuildID)
}

// Revoke undoes the punishment everywhere it took effect: the source
// guild plus every applied target. It needs no confirmation and is
// idempotent; only the issuer or an operator may call it. If any remote
// revoke fails the record stays active so the operator can re-run.
func (ps *PunishmentSync) Revoke(ctx context.Context, punishmentID, actorID string) error {
	record, err := auditdb.GetPunishmentRecordByID(ps.db, punishmentID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %s", ErrPunishmentNotFound, punishmentID)
	}
	if actorID != record.AdminID && !ps.isOperator(actorID) {
		return fmt.Errorf("%w: %s may not revoke %s", ErrNotAuthorized, actorID, punishmentID)
	}
	if record.Status == model.PunishmentRevoked {
		return nil
	}

	// Close any confirmation gates still waiting on this punishment.
	open, err := auditdb.GetOpenConfirmationsByPunishment(ps.db, punishmentID)
	if err != nil {
		return err
	}
	for _, pc := range open {
		ps.cancelConfirmation(pc.PunishmentID, pc.TargetGuildID, actorID)
	}

	applied, err := auditdb.GetAppliedGuilds(ps.db, punishmentID)
	if err != nil {
		return err
	}
	guilds := append([]string{record.SourceGuildID}, applied...)
	seen := make(map[string]bool)

	var failures []error
	for _, guildID := range guilds {
		if seen[guildID] {
			continue
		}
		seen[guildID] = true

		callCtx, cancel := context.WithTimeout(ctx, ps.effectorTimeout)
		err := ps.effector.RevokePunishment(callCtx, guildID, record)
		cancel()
		if err != nil {
			failures = append(failures, &EffectorError{GuildID: guildID, Op: "revoke", Err: err})
			if aErr := auditdb.AppendResolution(ps.db, model.ResolutionEvent{
				PunishmentID:  punishmentID,
				TargetGuildID: guildID,
				Event:         model.ResolutionRevokeFailed,
				ActorID:       actorID,
				Detail:        err.Error(),
			}); aErr != nil {
				log.Printf("Failed to record revoke failure for %s/%s: %v", punishmentID, guildID, aErr)
			}
			ps.notifier.NotifyOutcome(guildID, record, model.ResolutionRevokeFailed, actorID, err.Error())
			continue
		}
		ps.notifier.NotifyOutcome(guildID, record, model.ResolutionRevoked, actorID, "")
	}

	if len(failures) > 0 {
		// Status stays active so the operator can run revoke again.
		return errors.Join(failures...)
	}

	if _, err := auditdb.MarkPunishmentRevoked(ps.db, punishmentID, actorID); err != nil {
		return err
	}
	return nil
}

// cancelConfirmation moves one open gate to canceled. Used by Revoke
// and the remove-server cascade.
func (ps *PunishmentSync) cancelConfirmation(punishmentID, targetGuildID, actorID string) bool {
	unlock := ps.locks.Lock(confirmKey(punishmentID, targetGuildID))
	defer unlock()

	if err := ps.settle(punishmentID, targetGuildID, model.ConfirmCanceled, actorID); err != nil {
		return false
	}
	return true
}

// CancelByGuild cancels every open confirmation targeting a guild,
// satisfying the remove-server cascade. Reports how many were closed.
func (ps *PunishmentSync) CancelByGuild(guildID string) (int, error) {
	open, err := auditdb.GetOpenConfirmationsByGuild(ps.db, guildID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, pc := range open {
		if ps.cancelConfirmation(pc.PunishmentID, pc.TargetGuildID, "system") {
			count++
		}
	}
	return count, nil
}

// RestorePending reloads outstanding confirmations after a restart:
// overdue ones expire immediately, the rest are re-armed with their
// remaining delay. Nothing pending is ever silently forgotten.
func (ps *PunishmentSync) RestorePending() error {
	open, err := auditdb.GetOpenConfirmations(ps.db)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	restored, expired := 0, 0
	for _, pc := range open {
		remaining := pc.ExpiresAt - now
		if remaining <= 0 {
			ps.expireConfirmation(pc.PunishmentID, pc.TargetGuildID)
			expired++
			continue
		}
		ps.armTimer(pc.PunishmentID, pc.TargetGuildID, time.Duration(remaining)*time.Second)
		restored++
	}
	if restored > 0 || expired > 0 {
		log.Printf("Restored %d pending confirmations, expired %d overdue ones", restored, expired)
	}
	return nil
}

// SweepOverdue expires any pending row past its deadline. Backstop for
// timers lost to races or missed restarts; safe to run concurrently
// with live timers.
func (ps *PunishmentSync) SweepOverdue() {
	open, err := auditdb.GetOpenConfirmations(ps.db)
	if err != nil {
		log.Printf("Failed to load open confirmations for sweep: %v", err)
		return
	}
	now := time.Now().Unix()
	for _, pc := range open {
		if pc.ExpiresAt <= now {
			ps.expireConfirmation(pc.PunishmentID, pc.TargetGuildID)
		}
	}
}

// Status summarises a punishment for operator display.
func (ps *PunishmentSync) Status(punishmentID string) (*model.PunishmentRecord, []model.ResolutionEvent, error) {
	record, err := auditdb.GetPunishmentRecordByID(ps.db, punishmentID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrPunishmentNotFound, punishmentID)
	}
	events, err := auditdb.GetResolutions(ps.db, punishmentID)
	if err != nil {
		return nil, nil, err
	}
	return record, events, nil
}
