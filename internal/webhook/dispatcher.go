// Package webhook reconciles inbound provider event notifications into
// sync actions and enrollment status transitions.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/enrollment"
	"github.com/jcarver/ledgerlink/internal/syncer"
)

// Provider event types this system reacts to.
const (
	EventEnrollmentDisconnected = "enrollment.disconnected"
	EventTransactionsProcessed  = "transactions.processed"
)

// Event is the minimal webhook payload shape.
type Event struct {
	Type         string `json:"type"`
	EnrollmentID string `json:"enrollment_id"`
}

//go:generate mockgen -source=dispatcher.go -destination=dispatcher_mock.go -package=webhook
type EnrollmentRepository interface {
	GetByProviderID(ctx context.Context, providerEnrollmentID string) (*enrollment.Enrollment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enrollment.Status) error
}

type Syncer interface {
	SyncTransactions(ctx context.Context, enrollmentID uuid.UUID) error
}

type Dispatcher struct {
	enrollments EnrollmentRepository
	syncer      Syncer
}

func NewDispatcher(enrollments EnrollmentRepository, s Syncer) *Dispatcher {
	return &Dispatcher{enrollments: enrollments, syncer: s}
}

// Dispatch maps one provider event onto its action. An enrollment id that
// does not resolve locally is logged and dropped, not escalated: providers
// replay events for connections deleted on our side.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	e, err := d.enrollments.GetByProviderID(ctx, event.EnrollmentID)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotFound) {
			slog.Info("webhook for unknown enrollment, dropping",
				"event_type", event.Type, "provider_enrollment_id", event.EnrollmentID)

			return nil
		}

		return fmt.Errorf("resolving enrollment %s: %w", event.EnrollmentID, err)
	}

	switch event.Type {
	case EventEnrollmentDisconnected:
		return d.disconnect(ctx, e)
	case EventTransactionsProcessed:
		return d.sync(ctx, e)
	default:
		slog.Info("unrecognized webhook event, ignoring",
			"event_type", event.Type, "enrollment_id", e.ID)

		return nil
	}
}

func (d *Dispatcher) disconnect(ctx context.Context, e *enrollment.Enrollment) error {
	if !e.Status.CanTransition(enrollment.StatusDisconnected) {
		slog.Info("enrollment already disconnected, ignoring",
			"enrollment_id", e.ID, "status", e.Status)

		return nil
	}

	if err := d.enrollments.UpdateStatus(ctx, e.ID, enrollment.StatusDisconnected); err != nil {
		return fmt.Errorf("disconnecting enrollment %s: %w", e.ID, err)
	}

	slog.Info("enrollment disconnected by provider", "enrollment_id", e.ID)

	return nil
}

func (d *Dispatcher) sync(ctx context.Context, e *enrollment.Enrollment) error {
	err := d.syncer.SyncTransactions(ctx, e.ID)
	if err != nil {
		// Another sync already running covers this notification.
		if errors.Is(err, syncer.ErrSyncInProgress) {
			slog.Info("webhook sync skipped, already in progress", "enrollment_id", e.ID)

			return nil
		}

		return fmt.Errorf("webhook-triggered sync for %s: %w", e.ID, err)
	}

	return nil
}
