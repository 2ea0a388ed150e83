package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/storefront/internal/aggregate"
)

// AssertionError describes one failed assertion. Trace is set for the
// trace_* assertions and printed as the list of invocations.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: want %s, got %s", e.Type, e.Expected, e.Actual)
	if len(e.Trace) == 0 {
		return b.String()
	}
	b.WriteString("\ninvocations:")
	for _, ev := range e.Trace {
		if ev.Type == EventInvocation {
			fmt.Fprintf(&b, "\n  #%d %s %v", ev.Seq, ev.Action, ev.Args)
		}
	}
	return b.String()
}

// State is the final state inspected by final_state and totals.
// Rows are JSON-shaped maps so expectations compare by value.
type State struct {
	Rows   map[string][]map[string]interface{}
	Totals map[string]map[string]interface{}
}

func (h *Harness) state() *State {
	st := &State{
		Rows:   make(map[string][]map[string]interface{}),
		Totals: make(map[string]map[string]interface{}),
	}

	cart := h.cart.All()
	st.Rows[TargetCart] = toRows(cart)
	st.Totals[TargetCart] = map[string]interface{}{
		"items": aggregate.TotalItemCount(cart),
		"total": aggregate.TotalPrice(cart),
	}

	wishlist := h.wishlist.All()
	st.Rows[TargetWishlist] = toRows(wishlist)
	st.Totals[TargetWishlist] = map[string]interface{}{
		"items": aggregate.TotalItemCount(wishlist),
		"total": aggregate.TotalPrice(wishlist),
	}

	toasts := []map[string]interface{}{}
	for _, t := range h.toasts.All() {
		toasts = append(toasts, map[string]interface{}{
			"id":      t.ID,
			"message": t.Message,
			"level":   string(t.Level),
			"ttl_ms":  t.TTL.Milliseconds(),
		})
	}
	st.Rows[TargetToasts] = toasts

	bs := h.banner.State()
	v := bs.Visibility()
	st.Rows[TargetBanner] = []map[string]interface{}{{
		"dismissed": bs.Dismissed,
		"height":    bs.Height,
		"visible":   v.Visible,
	}}

	st.Rows[TargetLayout] = []map[string]interface{}{{
		"offset":      h.nav.Offset(),
		"padding_top": h.content.PaddingTop(),
	}}

	storage := []map[string]interface{}{}
	for _, key := range h.backend.Keys() {
		raw, _ := h.backend.Raw(key)
		storage = append(storage, map[string]interface{}{
			"key":    strings.TrimPrefix(key, h.adapter.Key("")),
			"exists": true,
			"raw":    raw,
		})
	}
	st.Rows[TargetStorage] = storage

	return st
}

func toRows[E any](items []E) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			continue
		}
		var row map[string]interface{}
		if err := json.Unmarshal(data, &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// assertTraceContains passes if some invocation of Action has Args as a subset.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type == EventInvocation && event.Action == assertion.Action {
			if matchArgs(event.Args, assertion.Args) {
				return nil
			}
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("an invocation of %s with args %v", assertion.Action, assertion.Args),
		Actual:   "none",
		Trace:    trace,
	}
}

// assertTraceOrder passes if the invocations of Actions occur in that order,
// possibly with other events in between.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	pos := 0
	for _, want := range assertion.Actions {
		found := false
		for pos < len(trace) {
			event := trace[pos]
			pos++
			if event.Type == EventInvocation && event.Action == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("invocations in order %v", assertion.Actions),
				Actual:   fmt.Sprintf("no %s after the previous one", want),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that an action or topic appears exactly Count times.
// Completions are not counted.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type != EventCompletion && event.Action == assertion.Action {
			count++
		}
	}

	if count != *assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s %d times", assertion.Action, *assertion.Count),
			Actual:   fmt.Sprintf("%d", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState filters the target's rows by Where, then checks Count
// and, when Expect is set, that exactly one row matches it.
func assertFinalState(st *State, assertion Assertion) error {
	var rows []map[string]interface{}
	for _, row := range st.Rows[assertion.Target] {
		if matchArgs(row, assertion.Where) {
			rows = append(rows, row)
		}
	}
	where := describeWhere(assertion.Where)

	if assertion.Count != nil && len(rows) != *assertion.Count {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%d %s rows matching %s", *assertion.Count, assertion.Target, where),
			Actual:   fmt.Sprintf("%d", len(rows)),
		}
	}
	if len(assertion.Expect) == 0 {
		return nil
	}

	switch len(rows) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("a %s row matching %s", assertion.Target, where),
			Actual:   "no such row",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("one %s row matching %s", assertion.Target, where),
			Actual:   fmt.Sprintf("%d rows; narrow the where clause", len(rows)),
		}
	}

	return expectFields(AssertFinalState, rows[0], assertion.Expect)
}

func assertTotals(st *State, assertion Assertion) error {
	return expectFields(AssertTotals, st.Totals[assertion.Target], assertion.Expect)
}

// expectFields compares only the keys named in expect.
func expectFields(typ string, actual, expect map[string]interface{}) error {
	for _, key := range sortedKeys(expect) {
		got, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     typ,
				Expected: fmt.Sprintf("a %q field", key),
				Actual:   fmt.Sprintf("only %v", sortedKeys(actual)),
			}
		}
		if !jsonEqual(expect[key], got) {
			return &AssertionError{
				Type:     typ,
				Expected: fmt.Sprintf("%s=%v", key, expect[key]),
				Actual:   fmt.Sprintf("%s=%v", key, got),
			}
		}
	}
	return nil
}

func describeWhere(where map[string]interface{}) string {
	if len(where) == 0 {
		return "anything"
	}
	parts := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// matchArgs reports whether every key of expected is in actual with an
// equal value.
func matchArgs(actual, expected map[string]interface{}) bool {
	for key, want := range expected {
		got, exists := actual[key]
		if !exists || !jsonEqual(want, got) {
			return false
		}
	}
	return true
}

// jsonEqual compares values by their JSON encoding, so YAML ints, Go ints
// and decoded float64s with the same value are equal.
func jsonEqual(a, b interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return string(ja) == string(jb)
}

// EvaluateAssertions returns one message per failed assertion. st may be
// nil when only trace assertions are used.
func EvaluateAssertions(result *Result, assertions []Assertion, st *State) []string {
	var failures []string
	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			if assertion.Count == nil {
				err = fmt.Errorf("assertion[%d]: trace_count requires count", i)
			} else {
				err = assertTraceCount(result.Trace, assertion)
			}
		case AssertFinalState, AssertTotals:
			switch {
			case st == nil:
				err = fmt.Errorf("assertion[%d]: %s requires final state", i, assertion.Type)
			case assertion.Type == AssertTotals:
				err = assertTotals(st, assertion)
			default:
				err = assertFinalState(st, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}
