package attack

import "github.com/redseed-project/redseed/internal/core"

const (
	minDifficulty = 1
	maxDifficulty = 10
)

// Pattern is a live attack pattern: a payload generator plus the running
// statistics the adaptation engine feeds on.
type Pattern struct {
	Description string
	Category    core.Category
	Generate    Generator
	Difficulty  int

	Attempts    int
	Successes   int
	Adaptations int
}

// SuccessRate reports the fraction of attempts that bypassed the defenses.
// A pattern that has never run reports zero.
func (p *Pattern) SuccessRate() float64 {
	if p.Attempts == 0 {
		return 0
	}
	return float64(p.Successes) / float64(p.Attempts)
}

// RecordAttempt folds one execution outcome into the pattern statistics.
func (p *Pattern) RecordAttempt(succeeded bool) {
	p.Attempts++
	if succeeded {
		p.Successes++
	}
}

// RaiseDifficulty escalates the pattern by one step and counts the
// adaptation. Difficulty never leaves [1, 10].
func (p *Pattern) RaiseDifficulty() {
	p.Difficulty = clampDifficulty(p.Difficulty + 1)
	p.Adaptations++
}

// View exports the pattern statistics for reporting.
func (p *Pattern) View() core.PatternView {
	return core.PatternView{
		Category:    p.Category,
		SuccessRate: p.SuccessRate(),
		Difficulty:  p.Difficulty,
		Attempts:    p.Attempts,
		Successes:   p.Successes,
		Adaptations: p.Adaptations,
	}
}

func clampDifficulty(d int) int {
	if d < minDifficulty {
		return minDifficulty
	}
	if d > maxDifficulty {
		return maxDifficulty
	}
	return d
}
