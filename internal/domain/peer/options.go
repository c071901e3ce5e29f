package peer

import "time"

// Default matcher configuration.
const (
	defaultMinPeers        = 5
	defaultMaxPeers        = 25
	defaultBudgetTolerance = 0.5
)

// Weights assigns the contribution of each matching dimension to the
// similarity score. Weights are normalized to sum to one.
type Weights struct {
	Sector       float64 `json:"sector"`
	SizeClass    float64 `json:"size_class"`
	Geography    float64 `json:"geography"`
	ProgramTypes float64 `json:"program_types"`
	AnnualBudget float64 `json:"annual_budget"`
}

// DefaultWeights returns the standard dimension weights.
func DefaultWeights() Weights {
	return Weights{
		Sector:       0.30,
		SizeClass:    0.20,
		Geography:    0.15,
		ProgramTypes: 0.20,
		AnnualBudget: 0.15,
	}
}

func (w Weights) sum() float64 {
	return w.Sector + w.SizeClass + w.Geography + w.ProgramTypes + w.AnnualBudget
}

func (w Weights) valid() bool {
	for _, v := range []float64{w.Sector, w.SizeClass, w.Geography, w.ProgramTypes, w.AnnualBudget} {
		if v < 0 {
			return false
		}
	}
	return w.sum() > 0
}

func (w Weights) normalized() Weights {
	s := w.sum()
	return Weights{
		Sector:       w.Sector / s,
		SizeClass:    w.SizeClass / s,
		Geography:    w.Geography / s,
		ProgramTypes: w.ProgramTypes / s,
		AnnualBudget: w.AnnualBudget / s,
	}
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWeights overrides the dimension weights. Negative or all-zero weights are ignored.
func WithWeights(w Weights) Option {
	return func(m *Matcher) {
		if w.valid() {
			m.weights = w.normalized()
		}
	}
}

// WithMinPeers sets the default cohort floor.
func WithMinPeers(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.minPeers = n
		}
	}
}

// WithMaxPeers sets the default cohort cap.
func WithMaxPeers(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxPeers = n
		}
	}
}

// WithBudgetTolerance sets the relative budget band (0.5 = within 50%).
func WithBudgetTolerance(t float64) Option {
	return func(m *Matcher) {
		if t > 0 {
			m.budgetTolerance = t
		}
	}
}

// WithClock injects the time source used for last_updated.
func WithClock(now func() time.Time) Option {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}
