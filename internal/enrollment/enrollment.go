// Package enrollment models a user's authorized connection to one
// institution via the aggregation provider.
package enrollment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("enrollment not found")

// Status is the enrollment health state. Transitions only degrade:
// Active -> Degraded -> Disconnected, or Active -> Disconnected directly.
// There is no automatic path back; reconnecting is an explicit domain action.
type Status string

const (
	StatusActive       Status = "active"
	StatusDegraded     Status = "degraded"
	StatusDisconnected Status = "disconnected"
)

// CanTransition reports whether moving from s to next is a legal status change.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusDegraded || next == StatusDisconnected
	case StatusDegraded:
		return next == StatusDisconnected
	default:
		return false
	}
}

// Enrollment is one linked institution connection. The access token is held
// only in its encrypted form; plaintext exists transiently during a provider
// call.
type Enrollment struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	EncryptedAccessToken string
	ProviderEnrollmentID string
	InstitutionName      *string
	Status               Status
	LastSyncedDate       *time.Time // watermark: date boundary of the last completed sync window
	LastSyncedAt         *time.Time
	CreatedAt            time.Time
	UpdatedAt            *time.Time
}
