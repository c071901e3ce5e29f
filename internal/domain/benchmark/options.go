package benchmark

import (
	"time"

	"github.com/okian/peerbench/internal/domain/gap"
	"github.com/okian/peerbench/internal/domain/peer"
	"github.com/okian/peerbench/internal/domain/plan"
)

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	peer []peer.Option
	gap  []gap.Option
	plan []plan.Option
	now  func() time.Time
}

// WithPeerOptions forwards options to the peer matcher.
func WithPeerOptions(opts ...peer.Option) Option {
	return func(s *settings) { s.peer = append(s.peer, opts...) }
}

// WithPriorityWeights sets the gap priority weights.
func WithPriorityWeights(w gap.Weights) Option {
	return func(s *settings) { s.gap = append(s.gap, gap.WithWeights(w)) }
}

// WithProjections sets the projected-outcome constants.
func WithProjections(p plan.Projections) Option {
	return func(s *settings) { s.plan = append(s.plan, plan.WithProjections(p)) }
}

// WithHeuristics sets the phase sizing heuristics.
func WithHeuristics(h plan.Heuristics) Option {
	return func(s *settings) { s.plan = append(s.plan, plan.WithHeuristics(h)) }
}

// WithClock injects the time source for generated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
