package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GTDGit/reseller_portal/internal/events"
	"github.com/GTDGit/reseller_portal/internal/models"
)

type recordingPublisher struct {
	mu  sync.Mutex
	got []*events.OrderEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev *events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ev)
	return nil
}

func (r *recordingPublisher) snapshot() []*events.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*events.OrderEvent(nil), r.got...)
}

// blockingPublisher holds every Publish until its context ends.
type blockingPublisher struct {
	started chan struct{}
}

func (b *blockingPublisher) Publish(ctx context.Context, _ *events.OrderEvent) error {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (b *blockingPublisher) Close() error { return nil }

func (r *recordingPublisher) Close() error { return nil }

func TestHub_RoutesByPartner(t *testing.T) {
	hub := NewHub()
	mine, err := hub.Register("a", 1)
	require.NoError(t, err)
	other, err := hub.Register("b", 2)
	require.NoError(t, err)
	defer hub.Unregister(other)

	hub.Publish(&events.OrderEvent{Event: events.OrderCreated, OrderID: "o-1", PartnerID: 1})

	require.Len(t, mine.Events, 1)
	assert.Len(t, other.Events, 0)

	msg := <-mine.Events
	assert.Equal(t, events.OrderCreated, msg.Event)
	var ev events.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, "o-1", ev.OrderID)

	hub.Unregister(mine)
	_, open := <-mine.Events
	assert.False(t, open)
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 0, hub.Streams(1))

	// Closing twice is harmless.
	hub.Unregister(mine)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("a", 1)
	require.NoError(t, err)
	defer hub.Unregister(c)

	for i := 0; i < cap(c.Events)+5; i++ {
		hub.Publish(&events.OrderEvent{PartnerID: 1})
	}
	assert.Len(t, c.Events, cap(c.Events))
}

func TestHub_LimitsStreamsPerPartner(t *testing.T) {
	hub := NewHub()
	for i := 0; i < MaxStreamsPerPartner; i++ {
		_, err := hub.Register(fmt.Sprintf("c%d", i), 7)
		require.NoError(t, err)
	}

	_, err := hub.Register("extra", 7)
	assert.ErrorIs(t, err, ErrTooManyStreams)

	_, err = hub.Register("other-partner", 8)
	assert.NoError(t, err)
	assert.Equal(t, MaxStreamsPerPartner, hub.Streams(7))
}

func runNotifier(t *testing.T, n *HubNotifier) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestHubNotifier_FansOut(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("a", 9)
	require.NoError(t, err)
	defer hub.Unregister(c)
	pub := &recordingPublisher{}

	n := NewHubNotifier(hub, pub)
	runNotifier(t, n)
	o := &models.Order{ID: "o-1", PartnerID: 9, Status: models.OrderReady}
	n.NotifyOrderCreated(o)
	n.NotifyOrderStatusChanged(o)

	assert.Len(t, c.Events, 2)
	require.Eventually(t, func() bool { return len(pub.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	got := pub.snapshot()
	assert.Equal(t, events.OrderCreated, got[0].Event)
	assert.Equal(t, events.OrderStatusChanged, got[1].Event)
}

func TestHubNotifier_SlowPublisherDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub()
	c, err := hub.Register("a", 9)
	require.NoError(t, err)
	defer hub.Unregister(c)
	pub := &blockingPublisher{started: make(chan struct{}, 1)}

	n := NewHubNotifier(hub, pub)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Run(ctx)
	}()

	o := &models.Order{ID: "o-1", PartnerID: 9, Status: models.OrderReady}
	n.NotifyOrderCreated(o)
	<-pub.started

	tests := []struct {
		name  string
		count int
	}{
		{name: "while publisher is stuck", count: 1},
		{name: "beyond queue capacity", count: publishQueueSize + 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			for i := 0; i < tt.count; i++ {
				n.NotifyOrderStatusChanged(o)
			}
			assert.Less(t, time.Since(start), time.Second)
		})
	}
	assert.NotEmpty(t, c.Events)

	cancel()
	<-done
}
