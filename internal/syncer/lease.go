package syncer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Lease serializes sync runs per enrollment. Without it a webhook-triggered
// sync can race a scheduled one for the same enrollment; the second caller
// is refused, not queued; the overlap window makes skipping safe.
//
// Leases expire after a TTL so a crashed holder cannot wedge an enrollment
// forever. The clock is injectable so expiry is testable without sleeping.
type Lease struct {
	mu   sync.Mutex
	held map[uuid.UUID]time.Time
	ttl  time.Duration
	now  func() time.Time
}

const defaultLeaseTTL = 15 * time.Minute

func NewLease() *Lease {
	return NewLeaseWithClock(defaultLeaseTTL, time.Now)
}

func NewLeaseWithClock(ttl time.Duration, now func() time.Time) *Lease {
	return &Lease{
		held: make(map[uuid.UUID]time.Time),
		ttl:  ttl,
		now:  now,
	}
}

// Acquire takes the lease for an enrollment. It reports false when a live
// lease is already held by someone else.
func (l *Lease) Acquire(enrollmentID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if expiry, ok := l.held[enrollmentID]; ok && now.Before(expiry) {
		return false
	}

	l.held[enrollmentID] = now.Add(l.ttl)

	return true
}

// Release frees the lease. Releasing an unheld lease is a no-op.
func (l *Lease) Release(enrollmentID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, enrollmentID)
}
