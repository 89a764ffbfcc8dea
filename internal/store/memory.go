package store

import (
	"sync"

	"github.com/jpalmerr/pulsecheck"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// Subscribers receive updates via buffered channels. Updates are sent
// non-blocking; if a subscriber's buffer is full, the report is dropped for
// that subscriber.
type MemoryStore struct {
	mu          sync.RWMutex
	latest      pulsecheck.Report
	hasLatest   bool
	subscribers map[chan pulsecheck.Report]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan pulsecheck.Report]struct{}),
	}
}

// Update stores report as the latest one and notifies all subscribers.
func (m *MemoryStore) Update(report pulsecheck.Report) {
	m.mu.Lock()
	m.latest = report
	m.hasLatest = true
	m.mu.Unlock()

	m.notifySubscribers(report)
}

// Latest returns the most recently stored report.
func (m *MemoryStore) Latest() (pulsecheck.Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.latest, m.hasLatest
}

// Subscribe creates a new subscription and returns a channel for receiving
// reports.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan pulsecheck.Report {
	ch := make(chan pulsecheck.Report, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan pulsecheck.Report) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (m *MemoryStore) SubscriberCount() int {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	return len(m.subscribers)
}

// notifySubscribers sends the report to all active subscribers without
// blocking.
func (m *MemoryStore) notifySubscribers(report pulsecheck.Report) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- report:
		default:
			// subscriber is slow, drop the report
		}
	}
}
