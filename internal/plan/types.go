/*
Package plan turns a user's body metrics into AI-generated weekly fitness and
diet plans. It builds the prompts, runs the two generation calls and parses the
markdown tables that come back into structured rows.
*/
package plan

import "fmt"

// Kind selects the prompt template and the table schema of a plan.
type Kind string

const (
	KindFitness Kind = "fitness"
	KindDiet    Kind = "diet"
)

// ParseKind maps a path or form value onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFitness, KindDiet:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown plan kind %q", s)
}

// FitnessRow is one day of the weekly workout table.
type FitnessRow struct {
	Day        string   `json:"day"`
	Exercises  []string `json:"exercises"`
	SetsReps   []string `json:"sets_reps"`
	RestPeriod string   `json:"rest_period"`
	Notes      string   `json:"notes"`
}

// DietRow is one day of the weekly meal table.
type DietRow struct {
	Day       string   `json:"day"`
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
	Snacks    []string `json:"snacks"`
}

// Plan is a parsed AI response: the table rows in source order followed by the
// advisory tips in source order.
type Plan[R FitnessRow | DietRow] struct {
	Rows []R      `json:"rows"`
	Tips []string `json:"tips"`
}

// Result is the outcome of one generation call. Raw holds the model text when
// the call itself succeeded, even if parsing failed afterwards.
type Result[R FitnessRow | DietRow] struct {
	Raw  string
	Plan *Plan[R]
	Err  error
}

// OK reports whether the plan can be displayed.
func (r Result[R]) OK() bool {
	return r.Err == nil && r.Plan != nil
}

// Outcome bundles both plans of one submission. Each side succeeds or fails on
// its own.
type Outcome struct {
	BMI         float64
	BMICategory string
	Fitness     Result[FitnessRow]
	Diet        Result[DietRow]
}
