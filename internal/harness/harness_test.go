package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Flow: []FlowStep{
			{Invoke: "cart.clear", Args: map[string]interface{}{}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceContains, Action: "cart.clear"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)

	// invocation, cart-changed delivery, completion
	require.Len(t, result.Trace, 3)
	assert.Equal(t, EventInvocation, result.Trace[0].Type)
	assert.Equal(t, EventDelivery, result.Trace[1].Type)
	assert.Equal(t, "cart-changed", result.Trace[1].Action)
	assert.Equal(t, EventCompletion, result.Trace[2].Type)
	assert.Equal(t, CaseChanged, result.Trace[2].Outcome)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "Wrong expectation",
		Flow: []FlowStep{
			{
				Invoke: "cart.remove",
				Args:   map[string]interface{}{"id": "ghost"},
				Expect: &ExpectClause{Case: CaseChanged},
			},
		},
		Assertions: []Assertion{{Type: AssertFinalState, Target: TargetCart, Count: intPtr(0)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected case "changed", got "unchanged"`)
}

func TestRun_ExpectResultMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "result_mismatch",
		Description: "Wrong result",
		Flow: []FlowStep{
			{
				Invoke: "toast.push",
				Args:   map[string]interface{}{"message": "hi"},
				Expect: &ExpectClause{Case: CaseChanged, Result: map[string]interface{}{"id": "toast-9"}},
			},
		},
		Assertions: []Assertion{{Type: AssertFinalState, Target: TargetToasts, Count: intPtr(1)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "result.id")
}

func TestRun_BadArgsIsExecutionError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_args",
		Description: "Price is not a number",
		Flow: []FlowStep{
			{Invoke: "cart.add", Args: map[string]interface{}{"id": "zinc", "price": "cheap"}},
		},
		Assertions: []Assertion{{Type: AssertTraceContains, Action: "cart.add"}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `arg "price"`)
}

func TestRun_Namespace(t *testing.T) {
	scenario := &Scenario{
		Name:        "namespaced",
		Description: "Seeds respect the namespace",
		Namespace:   "shop",
		Seed: []SeedStep{
			{Key: "wishlist", Value: `{"schemaVersion":1,"data":[{"id":"tea","name":"Tea","price":450}]}`},
		},
		Flow: []FlowStep{
			{Invoke: "reload", Args: map[string]interface{}{}, Expect: &ExpectClause{
				Case:   CaseOK,
				Result: map[string]interface{}{"wishlist": 1},
			}},
		},
		Assertions: []Assertion{
			{Type: AssertTotals, Target: TargetWishlist, Expect: map[string]interface{}{"total": 450}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ToastLimitNotAppliedByDefault(t *testing.T) {
	flow := make([]FlowStep, 0, 4)
	for i := 0; i < 4; i++ {
		flow = append(flow, FlowStep{Invoke: "toast.push", Args: map[string]interface{}{"message": "x"}})
	}
	scenario := &Scenario{
		Name:        "many_toasts",
		Description: "Four live toasts",
		Flow:        flow,
		Assertions:  []Assertion{{Type: AssertFinalState, Target: TargetToasts, Count: intPtr(4)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestParseScenario_Strict(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "misspelled key"
flow:
  - invoke: cart.clear
    args: {}
assertion:
  - type: trace_contains
    action: cart.clear
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode scenario")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nflow: [{invoke: cart.clear}]\nassertions: [{type: trace_contains, action: cart.clear}]\n",
			want: "missing name",
		},
		{
			name: "unknown action",
			yaml: "name: n\ndescription: d\nflow: [{invoke: cart.checkout}]\nassertions: [{type: trace_contains, action: x}]\n",
			want: `unknown action "cart.checkout"`,
		},
		{
			name: "empty flow",
			yaml: "name: n\ndescription: d\nflow: []\nassertions: [{type: trace_contains, action: x}]\n",
			want: "flow must have at least one step",
		},
		{
			name: "trace_count without count",
			yaml: "name: n\ndescription: d\nflow: [{invoke: cart.clear}]\nassertions: [{type: trace_count, action: x}]\n",
			want: "trace_count needs a count >= 0",
		},
		{
			name: "unknown target",
			yaml: "name: n\ndescription: d\nflow: [{invoke: cart.clear}]\nassertions: [{type: final_state, target: orders, count: 0}]\n",
			want: `unknown target "orders"`,
		},
		{
			name: "storage without key",
			yaml: "name: n\ndescription: d\nflow: [{invoke: cart.clear}]\nassertions: [{type: final_state, target: storage, count: 0}]\n",
			want: "storage rows are selected by where.key",
		},
		{
			name: "totals on toasts",
			yaml: "name: n\ndescription: d\nflow: [{invoke: cart.clear}]\nassertions: [{type: totals, target: toasts, expect: {items: 0}}]\n",
			want: `totals apply to cart or wishlist, not "toasts"`,
		},
		{
			name: "expect without case",
			yaml: "name: n\ndescription: d\nflow: [{invoke: cart.clear, expect: {result: {a: 1}}}]\nassertions: [{type: trace_contains, action: x}]\n",
			want: "expect.case is missing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario")
}
