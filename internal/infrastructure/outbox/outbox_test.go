package outbox

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domoutbox "github.com/swiftmart/pos/internal/domain/outbox"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBus_PublishReachesSubscriber(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	got := make(chan domoutbox.Event, 1)
	bus.Subscribe("sale.committed", func(ctx context.Context, e domoutbox.Event) error {
		got <- e
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "sale.committed"}))

	select {
	case e := <-got:
		assert.Equal(t, "sale.committed", e.EventName())
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestBus_FanoutToMultipleHandlers(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	var calls atomic.Int32
	done := make(chan struct{}, 2)
	handler := func(ctx context.Context, e domoutbox.Event) error {
		calls.Add(1)
		done <- struct{}{}
		return nil
	}
	bus.Subscribe("catalog.low_stock", handler)
	bus.Subscribe("catalog.low_stock", handler)

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "catalog.low_stock"}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("fanout incomplete")
		}
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestBus_NoSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "nobody.listens"}))
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	done := make(chan struct{}, 1)
	bus.Subscribe("sale.committed", func(ctx context.Context, e domoutbox.Event) error {
		panic("boom")
	})
	bus.Subscribe("sale.committed", func(ctx context.Context, e domoutbox.Event) error {
		done <- struct{}{}
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "sale.committed"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sibling handler starved by panic")
	}
}

func TestBus_PublishNilEventIsNoop(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.Publish(context.Background(), nil))
}
