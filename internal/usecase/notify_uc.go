package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"course-platform/internal/domain"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/adapter"
	"course-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ NotifyUseCase = (*notifyUC)(nil)

// NotifyOutcome classifies how a gateway notification was handled. Every
// outcome except an error is acknowledged to the gateway as handled; only a
// persistence or grant failure asks it to redeliver.
type NotifyOutcome string

const (
	OutcomeCompleted        NotifyOutcome = "completed"         // pending -> completed, access granted
	OutcomeFailed           NotifyOutcome = "failed"            // pending -> failed
	OutcomeDuplicate        NotifyOutcome = "duplicate"         // payment already terminal, nothing re-applied
	OutcomeNotFound         NotifyOutcome = "not_found"         // unknown order id, no side effects
	OutcomeInvalidSignature NotifyOutcome = "invalid_signature" // digest mismatch, no mutation
	OutcomePending          NotifyOutcome = "pending"           // gateway says still in flight, no transition
)

type NotifyUseCase interface {
	// Handle runs the notification state machine. It is safe to call
	// concurrently for the same order id: the status transition is a single
	// conditional write and the access grant is idempotent, so every replay
	// converges on the same end state.
	Handle(ctx context.Context, n adapter.Notification) (NotifyOutcome, error)
}

type notifyUC struct {
	payments repository.PaymentRepository
	grants   AccessGrantUseCase
	gateway  adapter.PaymentGateway
	log      *zerolog.Logger
}

func NewNotifyUseCase(
	payments repository.PaymentRepository,
	grants AccessGrantUseCase,
	gateway adapter.PaymentGateway,
	logger *zerolog.Logger,
) *notifyUC {
	return &notifyUC{payments: payments, grants: grants, gateway: gateway, log: logger}
}

func (u *notifyUC) Handle(ctx context.Context, n adapter.Notification) (NotifyOutcome, error) {
	log := u.log.With().Str("order_id", n.OrderID).Str("status_code", n.StatusCode).Logger()

	p, err := u.payments.FindByID(ctx, repository.NoTX, n.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			log.Warn().Msg("notification for unknown order")
			return OutcomeNotFound, nil
		}
		return "", err
	}

	// Amount, currency and status code in the payload are attacker-controlled;
	// the keyed digest is the only thing that makes them trustworthy. A failed
	// check mutates nothing, and also covers replays of a valid payload
	// against a different order (the order id is inside the digest).
	if !u.gateway.VerifyNotification(ctx, n) {
		log.Warn().Str("remote_sig", n.Signature).Msg("notification signature rejected")
		return OutcomeInvalidSignature, nil
	}

	if p.Status.Terminal() {
		return u.handleTerminal(ctx, p, &log)
	}

	if u.gateway.Pending(n.StatusCode) {
		// Still in flight at the provider. Acknowledge without a transition;
		// the definitive notification will follow.
		log.Info().Msg("notification reports payment still pending")
		return OutcomePending, nil
	}

	newStatus := model.PaymentStatusFailed
	if u.gateway.Success(n.StatusCode) {
		newStatus = model.PaymentStatusCompleted
	}

	var gatewayPaymentID, statusMessage *string
	if n.GatewayPaymentID != "" {
		gatewayPaymentID = &n.GatewayPaymentID
	}
	if n.StatusMessage != "" {
		statusMessage = &n.StatusMessage
	}

	won, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, newStatus, gatewayPaymentID, statusMessage)
	if err != nil {
		return "", err
	}
	if !won {
		// A concurrent delivery finalized the payment first. Re-read and fall
		// into the idempotent-acknowledge branch; never a conflict error.
		p, err = u.payments.FindByID(ctx, repository.NoTX, p.ID)
		if err != nil {
			return "", err
		}
		return u.handleTerminal(ctx, p, &log)
	}

	log.Info().Str("status", string(newStatus)).Msg("payment finalized")

	if newStatus == model.PaymentStatusCompleted {
		// Payment success and grant success are separable facts: the payment
		// stays completed even if the grant fails, and the returned error makes
		// the gateway redeliver so the grant is retried.
		if _, err := u.grants.Grant(ctx, p.UserID, p.CourseID, p.ID); err != nil {
			return "", err
		}
		return OutcomeCompleted, nil
	}
	return OutcomeFailed, nil
}

// handleTerminal acknowledges a notification for an already-finalized payment.
// The transition is never re-applied, but a completed payment still re-attempts
// the access grant in case a previous delivery recorded completion and then
// failed to grant.
func (u *notifyUC) handleTerminal(ctx context.Context, p *model.Payment, log *zerolog.Logger) (NotifyOutcome, error) {
	if p.Status == model.PaymentStatusCompleted {
		if _, err := u.grants.Grant(ctx, p.UserID, p.CourseID, p.ID); err != nil {
			return "", err
		}
	}
	log.Info().Str("status", string(p.Status)).Msg("duplicate notification acknowledged")
	return OutcomeDuplicate, nil
}
