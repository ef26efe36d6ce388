package evolve

import "github.com/redseed-project/redseed/internal/core"

// Metrics summarizes a completed run.
type Metrics struct {
	Generations      int     `json:"generations"`
	FirstFitness     float64 `json:"first_fitness"`
	LastFitness      float64 `json:"last_fitness"`
	BestFitness      float64 `json:"best_fitness"`
	TotalAdaptations int     `json:"total_adaptations"`
	TotalBlocked     int     `json:"total_blocked"`
	TotalAttacks     int     `json:"total_attacks"`
}

// Summarize folds a sequence of generation reports into run metrics. An
// empty run yields the zero value.
func Summarize(reports []*core.GenerationReport) Metrics {
	var m Metrics
	if len(reports) == 0 {
		return m
	}

	m.Generations = len(reports)
	m.FirstFitness = reports[0].FitnessScore
	m.LastFitness = reports[len(reports)-1].FitnessScore
	for _, r := range reports {
		if r.FitnessScore > m.BestFitness {
			m.BestFitness = r.FitnessScore
		}
		m.TotalAdaptations += r.AdaptationsApplied
		m.TotalBlocked += r.AttacksBlocked
		m.TotalAttacks += r.AttacksTotal
	}
	return m
}

// Improvement is the fitness gained between the first and last generation.
// Negative when the attackers pulled ahead.
func (m Metrics) Improvement() float64 {
	return m.LastFitness - m.FirstFitness
}
