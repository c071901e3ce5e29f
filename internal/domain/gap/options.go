package gap

// Weights controls how urgency, impact and addressability combine into a
// priority score. Only the ratios matter.
type Weights struct {
	Urgency        float64 `json:"urgency"`
	Impact         float64 `json:"impact"`
	Addressability float64 `json:"addressability"`
}

// DefaultWeights returns the standard 40/35/25 split.
func DefaultWeights() Weights {
	return Weights{Urgency: 40, Impact: 35, Addressability: 25}
}

func (w Weights) valid() bool {
	return w.Urgency >= 0 && w.Impact >= 0 && w.Addressability >= 0 &&
		w.Urgency+w.Impact+w.Addressability > 0
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWeights replaces the priority weights. Negative or all-zero weights are ignored.
func WithWeights(w Weights) Option {
	return func(a *Analyzer) {
		if w.valid() {
			a.weights = w
		}
	}
}
