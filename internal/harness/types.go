package harness

// Trace event types.
const (
	EventInvocation = "invocation"
	EventCompletion = "completion"
	EventDelivery   = "event"
)

// Completion cases.
const (
	CaseChanged   = "changed"
	CaseUnchanged = "unchanged"
	CaseRejected  = "rejected"
	CaseOK        = "ok"
)

// TraceEvent is one entry of a scenario trace.
//
// Invocations and completions carry the step's action name. Deliveries carry
// the bus topic (or "toasts-changed") and the payload as Result.
type TraceEvent struct {
	Seq     int64                  `json:"seq"`
	Type    string                 `json:"type"`
	Action  string                 `json:"action"`
	Args    map[string]interface{} `json:"args,omitempty"`
	Outcome string                 `json:"outcome,omitempty"`
	Result  map[string]interface{} `json:"result,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every invocation, delivery and completion in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
