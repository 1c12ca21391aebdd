package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when a status change would move an
// enrollment backwards, e.g. disconnected to active.
var ErrInvalidTransition = errors.New("invalid enrollment status transition")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=enrollment
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Enrollment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Enrollment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Disconnect marks the enrollment disconnected. Disconnecting an already
// disconnected enrollment is rejected rather than silently repeated.
func (s *Service) Disconnect(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !e.Status.CanTransition(StatusDisconnected) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, e.Status, StatusDisconnected)
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusDisconnected); err != nil {
		return nil, fmt.Errorf("updating enrollment status: %w", err)
	}

	e.Status = StatusDisconnected

	return e, nil
}
