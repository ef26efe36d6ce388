package evolve

import (
	"context"

	"github.com/redseed-project/redseed/internal/core"
)

const (
	// defenderDominance is the fitness score at which the defenders have
	// effectively won the race.
	defenderDominance = 95.0
	// attackerDominance is the per-pattern success rate at which an attack
	// has broken through for good.
	attackerDominance = 0.8
)

// ArmsRaceResult is the outcome of a bounded arms race run.
type ArmsRaceResult struct {
	Winner         string                   `json:"winner"` // "defender", "attacker", or "stalemate"
	Generations    int                      `json:"generations"`
	FinalFitness   float64                  `json:"final_fitness"`
	TopSuccessRate float64                  `json:"top_success_rate"`
	Reports        []*core.GenerationReport `json:"-"`
}

// RunArmsRace runs generations until one side dominates or the budget runs
// out. The defenders win by holding fitness at or above 95; the attackers
// win when any pattern's success rate reaches 0.8; otherwise it is a
// stalemate.
func (s *Seed) RunArmsRace(ctx context.Context, maxGenerations int) *ArmsRaceResult {
	if maxGenerations <= 0 {
		maxGenerations = s.cfg.Evolution.MaxGenerations
	}

	result := &ArmsRaceResult{Winner: "stalemate"}

	for i := 0; i < maxGenerations; i++ {
		if ctx.Err() != nil {
			break
		}

		report := s.Orchestrator.RunGeneration()
		result.Reports = append(result.Reports, report)
		result.Generations++
		result.FinalFitness = report.FitnessScore
		result.TopSuccessRate = s.topSuccessRate()

		if report.FitnessScore >= defenderDominance {
			result.Winner = "defender"
			s.logger.Info().
				Int("generation", report.Generation).
				Float64("fitness", report.FitnessScore).
				Msg("arms race: defender dominance")
			break
		}
		if result.TopSuccessRate >= attackerDominance {
			result.Winner = "attacker"
			s.logger.Info().
				Int("generation", report.Generation).
				Float64("top_success_rate", result.TopSuccessRate).
				Msg("arms race: attacker dominance")
			break
		}
	}

	return result
}

func (s *Seed) topSuccessRate() float64 {
	top := 0.0
	for _, p := range s.Attacks.Patterns() {
		if rate := p.SuccessRate(); rate > top {
			top = rate
		}
	}
	return top
}
