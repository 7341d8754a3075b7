// Package connectivity tracks the host runtime's online/offline signal.
//
// The monitor does no probing of its own: the embedding application feeds
// observations via SetOnline, and the monitor relays state and transition
// edges to subscribers. It deliberately has no sync side effects; reacting
// to a reconnection edge is the trigger's job.
package connectivity

import "sync"

// Monitor holds the last observed connectivity state and fans out
// transition edges to subscribers.
//
// Before the first observation the state is optimistically online, so the
// first paint is never treated as offline; the real value is established
// as soon as the host reports it.
type Monitor struct {
	mu          sync.Mutex
	online      bool
	onlineSubs  []chan struct{}
	offlineSubs []chan struct{}
}

func NewMonitor() *Monitor {
	return &Monitor{online: true}
}

// IsOnline reports the last observed connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records an observation from the host. Only state transitions
// are fanned out; repeated observations of the same state are no-ops.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online

	subs := m.offlineSubs
	if online {
		subs = m.onlineSubs
	}
	for _, ch := range subs {
		// Buffered(1) channels; a pending, undrained edge coalesces with
		// the new one instead of blocking the feeder.
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// OnOnline returns a channel that receives a value on every
// offline→online transition observed after the call.
func (m *Monitor) OnOnline() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{}, 1)
	m.onlineSubs = append(m.onlineSubs, ch)
	return ch
}

// OnOffline returns a channel that receives a value on every
// online→offline transition observed after the call.
func (m *Monitor) OnOffline() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{}, 1)
	m.offlineSubs = append(m.offlineSubs, ch)
	return ch
}
