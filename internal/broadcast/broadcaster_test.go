// ABOUTME: Tests for the synchronous content broadcaster
// ABOUTME: Covers ordering, no replay, mid-delivery changes, panics, context cleanup

package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolsite/internal/content"
)

func docNamed(name string) content.Document {
	doc := content.Default()
	doc.SchoolName = name
	return doc
}

func TestBroadcaster_DeliversInRegistrationOrder(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var order []string
	b.Subscribe(func(content.Document) { order = append(order, "first") })
	b.Subscribe(func(content.Document) { order = append(order, "second") })
	b.Subscribe(func(content.Document) { order = append(order, "third") })

	b.Publish(docNamed("A"))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBroadcaster_SynchronousDelivery(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var got string
	b.Subscribe(func(doc content.Document) { got = doc.SchoolName })

	b.Publish(docNamed("Hillcrest"))

	// No waiting: delivery completed before Publish returned.
	assert.Equal(t, "Hillcrest", got)
}

func TestBroadcaster_NoReplayForLateSubscribers(t *testing.T) {
	b := New(nil)
	defer b.Close()

	b.Publish(docNamed("early"))

	var received []string
	b.Subscribe(func(doc content.Document) { received = append(received, doc.SchoolName) })
	b.Publish(docNamed("late"))

	assert.Equal(t, []string{"late"}, received)
}

func TestBroadcaster_SubscribeDuringDeliveryWaitsForNextPublish(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var added []string
	b.Subscribe(func(doc content.Document) {
		if doc.SchoolName == "one" {
			b.Subscribe(func(doc content.Document) { added = append(added, doc.SchoolName) })
		}
	})

	b.Publish(docNamed("one"))
	assert.Empty(t, added)

	b.Publish(docNamed("two"))
	assert.Equal(t, []string{"two"}, added)
}

func TestBroadcaster_UnsubscribeDuringDeliveryKeepsInFlight(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var secondID string
	var secondCalls int
	b.Subscribe(func(content.Document) { b.Unsubscribe(secondID) })
	secondID = b.Subscribe(func(content.Document) { secondCalls++ })

	b.Publish(docNamed("one"))
	assert.Equal(t, 1, secondCalls, "in-flight delivery still reaches the removed handler")

	b.Publish(docNamed("two"))
	assert.Equal(t, 1, secondCalls)
	assert.Equal(t, 1, b.Len())
}

func TestBroadcaster_HandlersGetIndependentCopies(t *testing.T) {
	b := New(nil)
	defer b.Close()

	b.Subscribe(func(doc content.Document) { doc.Team[0].Name = "mutated" })
	var seen string
	b.Subscribe(func(doc content.Document) { seen = doc.Team[0].Name })

	doc := docNamed("A")
	b.Publish(doc)

	assert.Equal(t, content.Default().Team[0].Name, seen)
	assert.Equal(t, content.Default().Team[0].Name, doc.Team[0].Name)
}

func TestBroadcaster_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var delivered bool
	b.Subscribe(func(content.Document) { panic("render failed") })
	b.Subscribe(func(content.Document) { delivered = true })

	require.NotPanics(t, func() { b.Publish(docNamed("A")) })
	assert.True(t, delivered)
}

func TestBroadcaster_SubscribeContextCleansUp(t *testing.T) {
	b := New(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	b.SubscribeContext(ctx, func(content.Document) {})
	require.Equal(t, 1, b.Len())

	cancel()

	assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroadcaster_CloseDropsSubscribers(t *testing.T) {
	b := New(nil)

	var calls int
	b.Subscribe(func(content.Document) { calls++ })
	b.Close()

	b.Publish(docNamed("A"))
	assert.Equal(t, 0, calls)
	assert.Empty(t, b.Subscribe(func(content.Document) {}))
	assert.Equal(t, 0, b.Len())
}

func TestDefault_IsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
