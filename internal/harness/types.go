package harness

import "github.com/roach88/dslashgen/internal/gen"

// Result is the outcome of a scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Config is the configuration the scenario resolved to.
	Config gen.Config `json:"-"`

	// Summary is the structural summary the assertions ran against.
	Summary gen.Summary `json:"summary"`

	// ContentHash is the hash of the rendered artifact.
	ContentHash string `json:"content_hash"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
