package core

import "github.com/arnavsurve/dropreport/pkg/types"

// StepResults maps step names to results and remembers insertion order.
type StepResults struct {
	order  []string
	byName map[string]StepResult
}

func NewStepResults() *StepResults {
	return &StepResults{byName: make(map[string]StepResult)}
}

// Set stores r under name. Replacing an existing entry keeps its position.
func (r *StepResults) Set(name string, res StepResult) {
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = res
}

func (r *StepResults) Get(name string) (StepResult, bool) {
	res, ok := r.byName[name]
	return res, ok
}

// Names returns step names in the order they were first stored.
func (r *StepResults) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *StepResults) Len() int {
	return len(r.order)
}

// Each calls fn for every entry in insertion order.
func (r *StepResults) Each(fn func(name string, res StepResult)) {
	for _, name := range r.order {
		fn(name, r.byName[name])
	}
}

// Values flattens successful results into the shape the report builder
// consumes: decoded JSON for JSON results, the file path for artifacts.
// Error results are left out.
func (r *StepResults) Values() map[string]any {
	out := make(map[string]any, len(r.order))
	r.Each(func(name string, res StepResult) {
		switch res.Kind {
		case types.ResultJSON:
			out[name] = res.Output
		case types.ResultArtifact:
			out[name] = res.ArtifactPath
		}
	})
	return out
}
