package notifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_SubscribeUntilCancel(t *testing.T) {
	n := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch := n.Subscribe(ctx)
	assert.Equal(t, 1, n.Listeners())

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
	assert.Eventually(t, func() bool { return n.Listeners() == 0 }, time.Second, 10*time.Millisecond)
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := n.Subscribe(ctx)
	ch2 := n.Subscribe(ctx)

	n.Broadcast()

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("listener %d did not receive broadcast", i+1)
		}
	}
}

func TestNotifier_BroadcastCoalesces(t *testing.T) {
	n := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := n.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			n.Broadcast()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full listener")
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single coalesced ping")
	default:
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithCancel(context.Background())
			n.Subscribe(ctx)
			n.Broadcast()
			cancel()
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return n.Listeners() == 0 }, time.Second, 10*time.Millisecond)
}
