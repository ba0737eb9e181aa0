package adapter

import (
	"sync"

	"pricedesk/internal/domain"
)

// snapshotListeners fans listing snapshots out to registered callbacks
type snapshotListeners struct {
	mu  sync.RWMutex
	fns []func([]domain.Listing)
}

func (l *snapshotListeners) add(fn func([]domain.Listing)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fns = append(l.fns, fn)
}

func (l *snapshotListeners) emit(listings []domain.Listing) {
	l.mu.RLock()
	fns := make([]func([]domain.Listing), len(l.fns))
	copy(fns, l.fns)
	l.mu.RUnlock()

	for _, fn := range fns {
		snapshot := make([]domain.Listing, len(listings))
		copy(snapshot, listings)
		fn(snapshot)
	}
}
