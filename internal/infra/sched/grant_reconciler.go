package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/repository"
	"course-platform/internal/infra/metrics"
	"course-platform/internal/usecase"
)

// GrantReconciler periodically repairs the two ways a payment can drift from
// its purchase: a completed payment whose access grant failed (crash or DB
// fault between the status write and the grant), and a pending payment the
// gateway never reported back on. This covers redeliveries that never arrive.
type GrantReconciler struct {
	grants       usecase.AccessGrantUseCase
	payments     repository.PaymentRepository
	interval     time.Duration // how often to scan
	pendingAfter time.Duration // how old a pending payment must be to expire
	log          *zerolog.Logger
}

func NewGrantReconciler(grants usecase.AccessGrantUseCase, payments repository.PaymentRepository, interval, pendingAfter time.Duration, logger *zerolog.Logger) *GrantReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if pendingAfter <= 0 {
		pendingAfter = 24 * time.Hour
	}
	return &GrantReconciler{grants: grants, payments: payments, interval: interval, pendingAfter: pendingAfter, log: logger}
}

func (w *GrantReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *GrantReconciler) tick(ctx context.Context) {
	w.regrant(ctx)
	w.expireStale(ctx)
}

// regrant re-attempts the access grant for completed payments with no granted
// purchase. Grants are idempotent, so racing a late webhook redelivery is safe.
func (w *GrantReconciler) regrant(ctx context.Context) {
	ungranted, err := w.payments.ListCompletedUngranted(ctx, repository.NoTX, 200)
	if err != nil {
		metrics.IncReconcilerRun("regrant", "error")
		w.log.Error().Err(err).Msg("grant-reconciler: list ungranted failed")
		return
	}
	for _, p := range ungranted {
		if _, err := w.grants.Grant(ctx, p.UserID, p.CourseID, p.ID); err != nil {
			w.log.Error().Err(err).Str("payment_id", p.ID).Msg("grant-reconciler: regrant failed")
			continue
		}
		w.log.Info().Str("payment_id", p.ID).Str("user_id", p.UserID).Msg("grant-reconciler: repaired missing grant")
	}
	metrics.IncReconcilerRun("regrant", "ok")
}

// expireStale fails pending payments the gateway has gone silent on. The
// conditional write keeps this harmless if a real notification lands first.
func (w *GrantReconciler) expireStale(ctx context.Context) {
	cutoff := time.Now().Add(-w.pendingAfter)
	stale, err := w.payments.ListPendingOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		metrics.IncReconcilerRun("expire", "error")
		w.log.Error().Err(err).Msg("grant-reconciler: list stale pending failed")
		return
	}
	msg := "expired: no gateway notification received"
	for _, p := range stale {
		won, err := w.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, model.PaymentStatusFailed, nil, &msg)
		if err != nil {
			w.log.Error().Err(err).Str("payment_id", p.ID).Msg("grant-reconciler: expire failed")
			continue
		}
		if won {
			w.log.Info().Str("payment_id", p.ID).Msg("grant-reconciler: expired stale pending payment")
		}
	}
	metrics.IncReconcilerRun("expire", "ok")
}
