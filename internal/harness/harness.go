package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/storefront/internal/banner"
	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/kv"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
	"github.com/roach88/storefront/internal/toast"
)

// DefaultNamespace is used when a scenario does not set one.
const DefaultNamespace = "storefront"

// NavHeight is the fixed navigation bar height used by the layout target.
const NavHeight = 64

// Epoch is the manual clock's start time.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness drives one scenario run.
type Harness struct {
	ctx      context.Context
	backend  *kv.MemoryBackend
	adapter  *kv.Adapter
	bus      *bus.Bus
	clock    *testutil.ManualClock
	cart     *store.Cart
	wishlist *store.Wishlist
	banner   *banner.Banner
	toasts   *toast.Scheduler
	nav      banner.NavBar
	content  banner.Content
	logger   *slog.Logger

	seq      int64
	result   *Result
	rejected []store.Rejection
}

// Option configures a run.
type Option func(*Harness)

// WithLogger routes component logs to l. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each run uses a fresh in-memory backend for isolation. A non-nil error
// means the scenario could not be executed (bad args); failed expectations
// and assertions are reported in Result.Errors instead.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		ctx:     context.Background(),
		backend: kv.NewMemoryBackend(),
		clock:   testutil.NewManualClock(Epoch),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		result:  NewResult(),
		content: banner.Content{NavHeight: NavHeight},
	}
	for _, opt := range opts {
		opt(h)
	}

	ns := scenario.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	h.adapter = kv.New(h.backend, kv.WithNamespace(ns), kv.WithLogger(h.logger))
	h.bus = bus.New(bus.WithLogger(h.logger))
	defer h.bus.Close()

	for _, seed := range scenario.Seed {
		h.backend.Seed(h.adapter.Key(seed.Key), seed.Value)
	}

	h.nav.Mount(h.bus)
	h.content.Mount(h.bus)
	defer h.nav.Unmount()
	defer h.content.Unmount()
	h.observeBus()

	h.toasts = toast.New(
		toast.WithClock(h.clock),
		toast.WithIDGenerator(testutil.NewSequenceGenerator("toast")),
		toast.WithLogger(h.logger),
	)
	defer h.toasts.Close()
	h.toasts.Subscribe(func(live []toast.Toast) {
		ids := make([]string, len(live))
		for i, t := range live {
			ids[i] = t.ID
		}
		h.record(EventDelivery, "toasts-changed", nil, "", map[string]interface{}{"live": ids})
	})

	h.load()
	defer h.unload()

	if err := h.executeFlow(scenario.Flow); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, h.state()) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// load builds the persisted components from storage.
func (h *Harness) load() {
	storeOpts := []store.Option{
		store.WithBus(h.bus),
		store.WithLogger(h.logger),
		store.WithRejectHook(func(r store.Rejection) { h.rejected = append(h.rejected, r) }),
	}
	h.cart = store.NewCart(h.ctx, h.adapter, storeOpts...)
	h.wishlist = store.NewWishlist(h.ctx, h.adapter, storeOpts...)
	h.banner = banner.New(h.ctx, h.adapter, banner.WithBus(h.bus), banner.WithLogger(h.logger))
}

func (h *Harness) unload() {
	h.cart.Close()
	h.wishlist.Close()
}

func (h *Harness) observeBus() {
	bus.Subscribe(h.bus, bus.BannerVisibilityChanged, func(v bus.BannerVisibility) {
		h.record(EventDelivery, bus.BannerVisibilityChanged.Name(), nil, "", map[string]interface{}{
			"visible": v.Visible,
			"height":  v.Height,
		})
	})
	for _, topic := range []bus.Topic[bus.CollectionChanged]{bus.CartChanged, bus.WishlistChanged} {
		name := topic.Name()
		bus.Subscribe(h.bus, topic, func(v bus.CollectionChanged) {
			h.record(EventDelivery, name, nil, "", map[string]interface{}{
				"items": v.Items,
				"total": v.Total,
			})
		})
	}
}

func (h *Harness) record(typ, action string, args map[string]interface{}, outcome string, result map[string]interface{}) {
	h.seq++
	h.result.Trace = append(h.result.Trace, TraceEvent{
		Seq:     h.seq,
		Type:    typ,
		Action:  action,
		Args:    args,
		Outcome: outcome,
		Result:  result,
	})
}

// executeFlow runs every step and checks its expect clause.
func (h *Harness) executeFlow(flow []FlowStep) error {
	for i, step := range flow {
		fn, ok := actions[step.Invoke]
		if !ok {
			return fmt.Errorf("flow step %d: unknown action %q", i, step.Invoke)
		}

		h.record(EventInvocation, step.Invoke, step.Args, "", nil)
		h.rejected = nil

		outcome, res, err := fn(h, stepArgs(step.Args))
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
		}
		if len(h.rejected) > 0 {
			outcome = CaseRejected
			res = map[string]interface{}{"reason": h.rejected[0].Err.Error()}
		}
		h.record(EventCompletion, step.Invoke, nil, outcome, res)

		if step.Expect != nil {
			h.checkExpect(i, step, outcome, res)
		}

		h.logger.Debug("flow step completed",
			"step", i,
			"action", step.Invoke,
			"outcome", outcome,
		)
	}
	return nil
}

func (h *Harness) checkExpect(i int, step FlowStep, outcome string, res map[string]interface{}) {
	if step.Expect.Case != outcome {
		h.result.AddError(fmt.Sprintf("flow[%d] %s: expected case %q, got %q", i, step.Invoke, step.Expect.Case, outcome))
		return
	}
	for key, want := range step.Expect.Result {
		got, ok := res[key]
		if !ok || !jsonEqual(want, got) {
			h.result.AddError(fmt.Sprintf("flow[%d] %s: result.%s expected %v, got %v", i, step.Invoke, key, want, got))
		}
	}
}
