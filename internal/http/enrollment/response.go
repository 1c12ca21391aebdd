package enrollment

import (
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/enrollment"
)

type enrollmentResponse struct {
	ID                   uuid.UUID  `json:"id"`
	ProviderEnrollmentID string     `json:"enrollment_id"`
	InstitutionName      *string    `json:"institution_name,omitempty"`
	Status               string     `json:"status"`
	LastSyncedDate       *string    `json:"last_synced_date,omitempty"`
	LastSyncedAt         *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

// The encrypted access token never appears in a response body.
func toResponse(e *enrollment.Enrollment) enrollmentResponse {
	resp := enrollmentResponse{
		ID:                   e.ID,
		ProviderEnrollmentID: e.ProviderEnrollmentID,
		InstitutionName:      e.InstitutionName,
		Status:               string(e.Status),
		LastSyncedAt:         e.LastSyncedAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}

	if e.LastSyncedDate != nil {
		d := e.LastSyncedDate.Format(time.DateOnly)
		resp.LastSyncedDate = &d
	}

	return resp
}

func toResponseList(enrollments []*enrollment.Enrollment) []enrollmentResponse {
	resp := make([]enrollmentResponse, len(enrollments))
	for i, e := range enrollments {
		resp[i] = toResponse(e)
	}

	return resp
}
