// Package notifier fans out "audit log changed" pings to live dashboard streams.
package notifier

import (
	"context"
	"sync"
)

// Notifier broadcasts change pings to subscribed listeners.
// A ping carries no payload; listeners re-read whatever they display.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}]struct{}),
	}
}

// Subscribe registers a listener that lives until ctx is done.
// The returned channel has a one-slot buffer and is closed on unsubscribe.
func (n *Notifier) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.listeners, ch)
		n.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Broadcast pings every listener without blocking.
// A listener that has not drained its previous ping keeps just that one.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Listeners returns the number of active subscriptions.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
