package plan

// Projection is the expected effect of closing one gap.
type Projection struct {
	Improvement float64 `json:"improvement"`
	Confidence  float64 `json:"confidence"`
}

// Projections holds projection constants per addressability level.
type Projections struct {
	Easy      Projection `json:"easy"`
	Moderate  Projection `json:"moderate"`
	Difficult Projection `json:"difficult"`
}

// DefaultProjections returns the standard projection constants.
func DefaultProjections() Projections {
	return Projections{
		Easy:      Projection{Improvement: 15, Confidence: 85},
		Moderate:  Projection{Improvement: 12, Confidence: 75},
		Difficult: Projection{Improvement: 8, Confidence: 65},
	}
}

// Effort is a per-gap quantity by addressability level.
type Effort struct {
	Easy      int `json:"easy"`
	Moderate  int `json:"moderate"`
	Difficult int `json:"difficult"`
}

// Heuristics sizes phases.
type Heuristics struct {
	QuickWinBaseWeeks  int    `json:"quick_win_base_weeks"`
	StrategicBaseWeeks int    `json:"strategic_base_weeks"`
	WeeksPerGap        Effort `json:"weeks_per_gap"`
	StaffHoursPerGap   Effort `json:"staff_hours_per_gap"`
}

// DefaultHeuristics returns the standard phase sizing.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		QuickWinBaseWeeks:  4,
		StrategicBaseWeeks: 12,
		WeeksPerGap:        Effort{Easy: 1, Moderate: 2, Difficult: 4},
		StaffHoursPerGap:   Effort{Easy: 20, Moderate: 40, Difficult: 80},
	}
}

// Option configures a Planner.
type Option func(*Planner)

// WithProjections replaces the projection constants.
func WithProjections(p Projections) Option {
	return func(pl *Planner) {
		for _, v := range []Projection{p.Easy, p.Moderate, p.Difficult} {
			if v.Improvement < 0 || v.Confidence < 0 || v.Confidence > 100 {
				return
			}
		}
		pl.projections = p
	}
}

// WithHeuristics replaces the phase sizing heuristics.
func WithHeuristics(h Heuristics) Option {
	return func(pl *Planner) {
		for _, v := range []int{
			h.QuickWinBaseWeeks, h.StrategicBaseWeeks,
			h.WeeksPerGap.Easy, h.WeeksPerGap.Moderate, h.WeeksPerGap.Difficult,
			h.StaffHoursPerGap.Easy, h.StaffHoursPerGap.Moderate, h.StaffHoursPerGap.Difficult,
		} {
			if v < 0 {
				return
			}
		}
		pl.heuristics = h
	}
}
