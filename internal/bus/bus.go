package bus

import (
	"fmt"
	"log/slog"
	"sync"
)

// Bus routes payloads to the subscribers of a topic.
type Bus struct {
	mu     sync.Mutex
	topics map[string]*Signal[any]
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report recovered handler panics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		topics: make(map[string]*Signal[any]),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers payload to every subscriber of topic and returns the
// number of handlers that completed. Returns 0 when nobody is subscribed.
func Publish[P any](b *Bus, topic Topic[P], payload P) int {
	if b == nil {
		return 0
	}
	sig := b.signal(topic.name, false)
	if sig == nil {
		b.logger.Debug("bus message dropped, no subscribers", "topic", topic.name)
		return 0
	}
	return sig.Emit(payload)
}

// Subscribe registers handler for topic.
func Subscribe[P any](b *Bus, topic Topic[P], handler func(P)) Unsubscribe {
	if b == nil || handler == nil {
		return func() {}
	}
	sig := b.signal(topic.name, true)
	return sig.Subscribe(func(v any) {
		p, ok := v.(P)
		if !ok {
			panic(fmt.Sprintf("bus: topic %q carried %T", topic.name, v))
		}
		handler(p)
	})
}

// Subscribers returns the number of live subscriptions on topic.
func Subscribers[P any](b *Bus, topic Topic[P]) int {
	if b == nil {
		return 0
	}
	sig := b.signal(topic.name, false)
	if sig == nil {
		return 0
	}
	return sig.Len()
}

// Close drops every subscription on every topic.
func (b *Bus) Close() {
	b.mu.Lock()
	topics := b.topics
	b.topics = make(map[string]*Signal[any])
	b.mu.Unlock()

	for _, sig := range topics {
		sig.Reset()
	}
}

func (b *Bus) signal(name string, create bool) *Signal[any] {
	b.mu.Lock()
	defer b.mu.Unlock()
	sig, ok := b.topics[name]
	if !ok && create {
		sig = NewSignal[any](b.logger)
		b.topics[name] = sig
	}
	return sig
}
