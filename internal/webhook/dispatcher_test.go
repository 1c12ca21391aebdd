package webhook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/jcarver/ledgerlink/internal/enrollment"
	"github.com/jcarver/ledgerlink/internal/syncer"
	"github.com/jcarver/ledgerlink/internal/webhook"
)

func TestDispatcher_Dispatch(t *testing.T) {
	localID := uuid.New()

	active := &enrollment.Enrollment{
		ID:                   localID,
		ProviderEnrollmentID: "enr_prov_1",
		Status:               enrollment.StatusActive,
	}

	type testCase struct {
		name      string
		event     webhook.Event
		setupMock func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:  "DisconnectedEvent",
			event: webhook.Event{Type: webhook.EventEnrollmentDisconnected, EnrollmentID: "enr_prov_1"},
			setupMock: func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer) {
				e.EXPECT().GetByProviderID(gomock.Any(), "enr_prov_1").Return(active, nil)
				e.EXPECT().UpdateStatus(gomock.Any(), localID, enrollment.StatusDisconnected).Return(nil)
			},
		},
		{
			name:  "DisconnectedEventAlreadyDisconnected",
			event: webhook.Event{Type: webhook.EventEnrollmentDisconnected, EnrollmentID: "enr_prov_1"},
			setupMock: func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer) {
				gone := &enrollment.Enrollment{ID: localID, Status: enrollment.StatusDisconnected}
				e.EXPECT().GetByProviderID(gomock.Any(), "enr_prov_1").Return(gone, nil)
				// No UpdateStatus: the transition is a no-op.
			},
		},
		{
			name:  "TransactionsProcessedEvent",
			event: webhook.Event{Type: webhook.EventTransactionsProcessed, EnrollmentID: "enr_prov_1"},
			setupMock: func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer) {
				e.EXPECT().GetByProviderID(gomock.Any(), "enr_prov_1").Return(active, nil)
				s.EXPECT().SyncTransactions(gomock.Any(), localID).Return(nil)
			},
		},
		{
			name:  "TransactionsProcessedSyncAlreadyRunning",
			event: webhook.Event{Type: webhook.EventTransactionsProcessed, EnrollmentID: "enr_prov_1"},
			setupMock: func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer) {
				e.EXPECT().GetByProviderID(gomock.Any(), "enr_prov_1").Return(active, nil)
				s.EXPECT().SyncTransactions(gomock.Any(), localID).Return(syncer.ErrSyncInProgress)
			},
		},
		{
			name:  "TransactionsProcessedSyncError",
			event: webhook.Event{Type: webhook.EventTransactionsProcessed, EnrollmentID: "enr_prov_1"},
			setupMock: func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer) {
				e.EXPECT().GetByProviderID(gomock.Any(), "enr_prov_1").Return(active, nil)
				s.EXPECT().SyncTransactions(gomock.Any(), localID).Return(errors.New("provider down"))
			},
			wantErr: true,
		},
		{
			name:  "UnknownEnrollmentDropped",
			event: webhook.Event{Type: webhook.EventTransactionsProcessed, EnrollmentID: "enr_nope"},
			setupMock: func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer) {
				e.EXPECT().GetByProviderID(gomock.Any(), "enr_nope").Return(nil, enrollment.ErrNotFound)
			},
		},
		{
			name:  "UnrecognizedEventIgnored",
			event: webhook.Event{Type: "account.created", EnrollmentID: "enr_prov_1"},
			setupMock: func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer) {
				e.EXPECT().GetByProviderID(gomock.Any(), "enr_prov_1").Return(active, nil)
			},
		},
		{
			name:  "RepositoryError",
			event: webhook.Event{Type: webhook.EventTransactionsProcessed, EnrollmentID: "enr_prov_1"},
			setupMock: func(e *webhook.MockEnrollmentRepository, s *webhook.MockSyncer) {
				e.EXPECT().GetByProviderID(gomock.Any(), "enr_prov_1").Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			enrollments := webhook.NewMockEnrollmentRepository(ctrl)
			syncerMock := webhook.NewMockSyncer(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(enrollments, syncerMock)
			}

			d := webhook.NewDispatcher(enrollments, syncerMock)
			err := d.Dispatch(context.Background(), tt.event)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}
