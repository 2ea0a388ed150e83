package bus

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var otherTopic = newTopic[BannerVisibility]("other-topic")

func TestPublish_DeliversToTopicSubscriber(t *testing.T) {
	b := New()
	var got []BannerVisibility
	unsubscribe := Subscribe(b, BannerVisibilityChanged, func(v BannerVisibility) {
		got = append(got, v)
	})
	defer unsubscribe()

	otherCalls := 0
	defer Subscribe(b, otherTopic, func(BannerVisibility) { otherCalls++ })()

	n := Publish(b, BannerVisibilityChanged, BannerVisibility{Visible: false, Height: 0})

	assert.Equal(t, 1, n)
	assert.Equal(t, []BannerVisibility{{Visible: false, Height: 0}}, got)
	assert.Zero(t, otherCalls, "handler on a different topic must not run")
}

func TestPublish_NoSubscribersIsDropped(t *testing.T) {
	b := New()
	assert.Zero(t, Publish(b, CartChanged, CollectionChanged{Items: 1}))

	// A later subscriber does not see the earlier message.
	calls := 0
	defer Subscribe(b, CartChanged, func(CollectionChanged) { calls++ })()
	assert.Zero(t, calls)
}

func TestPublish_SubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		defer Subscribe(b, CartChanged, func(CollectionChanged) { order = append(order, i) })()
	}

	Publish(b, CartChanged, CollectionChanged{})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	b := New()
	calls := 0
	unsubscribe := Subscribe(b, WishlistChanged, func(CollectionChanged) { calls++ })
	require.Equal(t, 1, Subscribers(b, WishlistChanged))

	unsubscribe()
	unsubscribe()

	assert.Zero(t, Subscribers(b, WishlistChanged))
	assert.Zero(t, Publish(b, WishlistChanged, CollectionChanged{}))
	assert.Zero(t, calls)
}

func TestUnsubscribe_DuringDelivery(t *testing.T) {
	b := New()
	var second Unsubscribe
	secondCalls := 0

	defer Subscribe(b, CartChanged, func(CollectionChanged) { second() })()
	second = Subscribe(b, CartChanged, func(CollectionChanged) { secondCalls++ })

	Publish(b, CartChanged, CollectionChanged{})
	assert.Zero(t, secondCalls, "handler unsubscribed earlier in the same delivery must not run")
}

func TestSubscribe_DuringDeliveryTakesEffectNextPublish(t *testing.T) {
	b := New()
	lateCalls := 0
	subscribed := false

	defer Subscribe(b, CartChanged, func(CollectionChanged) {
		if !subscribed {
			subscribed = true
			Subscribe(b, CartChanged, func(CollectionChanged) { lateCalls++ })
		}
	})()

	Publish(b, CartChanged, CollectionChanged{})
	assert.Zero(t, lateCalls)

	Publish(b, CartChanged, CollectionChanged{})
	assert.Equal(t, 1, lateCalls)
}

func TestPublish_PanickingHandlerIsContained(t *testing.T) {
	var logs bytes.Buffer
	b := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	after := 0
	defer Subscribe(b, BannerVisibilityChanged, func(BannerVisibility) {
		panic("view already torn down")
	})()
	defer Subscribe(b, BannerVisibilityChanged, func(BannerVisibility) { after++ })()

	var n int
	require.NotPanics(t, func() {
		n = Publish(b, BannerVisibilityChanged, BannerVisibility{Visible: true, Height: 40})
	})
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, after)
	assert.Contains(t, logs.String(), "view already torn down")
}

func TestClose_DropsSubscribers(t *testing.T) {
	b := New()
	calls := 0
	unsubscribe := Subscribe(b, CartChanged, func(CollectionChanged) { calls++ })

	b.Close()
	assert.Zero(t, Publish(b, CartChanged, CollectionChanged{}))
	assert.Zero(t, calls)
	assert.NotPanics(t, func() { unsubscribe() })
}

func TestNilBus(t *testing.T) {
	var b *Bus
	assert.Zero(t, Publish(b, CartChanged, CollectionChanged{}))
	assert.NotPanics(t, func() { Subscribe(b, CartChanged, func(CollectionChanged) {})() })
}

func TestTopicNames(t *testing.T) {
	assert.Equal(t, []string{"banner-visibility-changed", "cart-changed", "wishlist-changed"}, TopicNames())
}
