package harness

import "github.com/roach88/storesync/internal/storage"

// StepTrace records what one step did.
type StepTrace struct {
	Index   int    `json:"index"`
	Action  string `json:"action,omitempty"`
	Outcome string `json:"outcome,omitempty"`

	// Value is the completion value; Error the completion error text.
	Value any    `json:"-"`
	Error string `json:"-"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step met its expectation and every assertion
	// held.
	Pass bool `json:"pass"`

	Steps  []StepTrace `json:"steps"`
	Errors []string    `json:"errors,omitempty"`

	// Snapshot is the committed cache after the last step.
	Snapshot *storage.Snapshot `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
