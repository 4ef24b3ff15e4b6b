package harness

// Operation names recorded in the trace.
const (
	OpSubmit = "submit"
	OpExport = "export"
	OpImport = "import"
	OpClear  = "clear"
)

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	Step     int    `json:"step"`
	Device   string `json:"device"`
	Op       string `json:"op"`
	ID       string `json:"id,omitempty"`       // submit: assigned response id
	Snapshot string `json:"snapshot,omitempty"` // export/import: snapshot name
	Records  *int   `json:"records,omitempty"`  // export: records in the snapshot

	Added      *int `json:"added,omitempty"`
	Duplicates *int `json:"duplicates,omitempty"`

	// Error is the survey error code when the step failed.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every step matched its expectation and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final maps each device to its stored ids in append order.
	Final map[string][]string `json:"final"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  make(map[string][]string),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func intPtr(n int) *int { return &n }
