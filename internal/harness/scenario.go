package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted storefront session: seed storage, run a flow
// of actions, then check the trace and the resulting state.
type Scenario struct {
	// Name also names the golden file.
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Namespace prefixes every storage key. Defaults to DefaultNamespace.
	Namespace string `yaml:"namespace,omitempty"`

	// Seed writes raw values into storage before the stores load.
	// Keys are un-namespaced.
	Seed []SeedStep `yaml:"seed,omitempty"`

	Flow       []FlowStep  `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions"`
}

// SeedStep is a raw storage write.
type SeedStep struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// FlowStep invokes one action.
type FlowStep struct {
	// Invoke is the action name (e.g., "cart.add").
	Invoke string `yaml:"invoke"`

	Args map[string]interface{} `yaml:"args"`

	// Expect optionally checks the completion.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause is checked against the step's completion event.
type ExpectClause struct {
	// Case is the expected outcome: changed, unchanged, rejected, ok.
	Case string `yaml:"case"`

	// Result is a subset match against the completion result.
	Result map[string]interface{} `yaml:"result,omitempty"`
}

// Assertion is a check run after the flow. Which fields apply depends on Type.
type Assertion struct {
	// Type selects the assertion. See the Assert* constants.
	Type string `yaml:"type"`

	// Action names an action or bus topic (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args is a subset match on invocation args (trace_contains).
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Actions is the expected invocation order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Target names the state to inspect (final_state, totals).
	Target string `yaml:"target,omitempty"`

	// Where filters rows of the target (final_state).
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected field values. Subset match.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number of occurrences or matching rows.
	Count *int `yaml:"count,omitempty"`
}

const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertTotals        = "totals"
)

// Targets inspected by final_state and totals.
const (
	TargetCart     = "cart"
	TargetWishlist = "wishlist"
	TargetToasts   = "toasts"
	TargetBanner   = "banner"
	TargetLayout   = "layout"
	TargetStorage  = "storage"
)

// LoadScenario reads a scenario file. See ParseScenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes scenario YAML. Unknown keys are errors, so a
// misspelled "assertion:" fails instead of silently checking nothing.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	switch {
	case s.Name == "":
		return errors.New("missing name")
	case s.Description == "":
		return errors.New("missing description")
	case len(s.Flow) == 0:
		return errors.New("flow must have at least one step")
	case len(s.Assertions) == 0:
		return errors.New("assertions must have at least one entry")
	}

	for i, seed := range s.Seed {
		if seed.Key == "" {
			return fmt.Errorf("seed[%d]: missing key", i)
		}
	}
	for i, step := range s.Flow {
		if _, ok := actions[step.Invoke]; !ok {
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Invoke)
		}
		if step.Expect != nil && step.Expect.Case == "" {
			return fmt.Errorf("flow[%d]: expect.case is missing", i)
		}
	}
	for i, a := range s.Assertions {
		check, ok := assertionRules[a.Type]
		if !ok {
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
		if err := check(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

// assertionRules holds the per-type shape checks for an Assertion.
var assertionRules = map[string]func(Assertion) error{
	AssertTraceContains: func(a Assertion) error {
		if a.Action == "" {
			return errors.New("trace_contains needs an action")
		}
		return nil
	},
	AssertTraceOrder: func(a Assertion) error {
		if len(a.Actions) == 0 {
			return errors.New("trace_order needs a list of actions")
		}
		return nil
	},
	AssertTraceCount: func(a Assertion) error {
		if a.Action == "" {
			return errors.New("trace_count needs an action")
		}
		if a.Count == nil || *a.Count < 0 {
			return errors.New("trace_count needs a count >= 0")
		}
		return nil
	},
	AssertFinalState: func(a Assertion) error {
		switch a.Target {
		case TargetCart, TargetWishlist, TargetToasts, TargetBanner, TargetLayout:
		case TargetStorage:
			if a.Where["key"] == nil {
				return errors.New("storage rows are selected by where.key")
			}
		default:
			return fmt.Errorf("unknown target %q", a.Target)
		}
		if len(a.Expect) == 0 && a.Count == nil {
			return errors.New("final_state needs expect or count")
		}
		return nil
	},
	AssertTotals: func(a Assertion) error {
		if a.Target != TargetCart && a.Target != TargetWishlist {
			return fmt.Errorf("totals apply to cart or wishlist, not %q", a.Target)
		}
		if len(a.Expect) == 0 {
			return errors.New("totals needs expect")
		}
		return nil
	},
}
