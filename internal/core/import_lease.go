package core

// import_lease.go serializes imports and program edits.
//
// A decode clears the repository before it inserts anything, so no other
// writer may run between the clear and the final post-validation. The lease
// is a semaphore with a single slot: writers wait up to maxWait for it and
// then fail with ErrImportInProgress. Reads never take it.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrImportInProgress is returned when the lease stays taken for the whole
// wait. Clients should retry after a short delay.
var ErrImportInProgress = errors.New("another import or edit is in progress, please try again later")

// DefaultLeaseWait is how long a writer waits for the lease before failing.
const DefaultLeaseWait = 30 * time.Second

// ImportLease grants exclusive write access to the repository.
type ImportLease struct {
	slot    chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	holder string
	since  time.Time
}

// NewImportLease creates a lease whose Acquire waits at most maxWait.
func NewImportLease(maxWait time.Duration) *ImportLease {
	if maxWait <= 0 {
		maxWait = DefaultLeaseWait
	}
	return &ImportLease{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the lease for holder, waiting up to maxWait.
// The caller MUST call Release when done (use defer).
func (l *ImportLease) Acquire(ctx context.Context, holder string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slot <- struct{}{}:
		l.mu.Lock()
		l.holder = holder
		l.since = time.Now()
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrImportInProgress
	}
}

// TryAcquire takes the lease without blocking.
func (l *ImportLease) TryAcquire(holder string) bool {
	select {
	case l.slot <- struct{}{}:
		l.mu.Lock()
		l.holder = holder
		l.since = time.Now()
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release gives the lease back.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *ImportLease) Release() {
	l.mu.Lock()
	l.holder = ""
	l.since = time.Time{}
	l.mu.Unlock()

	<-l.slot
}

// WaitForDrain blocks until the lease is free or ctx is cancelled.
// Used on shutdown so a running import is not cut off mid-section.
func (l *ImportLease) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !l.Status().Held {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ImportLeaseStatus is a snapshot of the lease.
type ImportLeaseStatus struct {
	Held   bool      `json:"held"`
	Holder string    `json:"holder,omitempty"`
	Since  time.Time `json:"since,omitempty"`
}

// Status returns the current lease state for monitoring.
func (l *ImportLease) Status() ImportLeaseStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return ImportLeaseStatus{
		Held:   len(l.slot) > 0,
		Holder: l.holder,
		Since:  l.since,
	}
}
