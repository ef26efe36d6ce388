package defense

import "github.com/redseed-project/redseed/internal/core"

// State is the mutable configuration of one defense category. It is created
// once at registry init and lives for the process lifetime; only the
// registry's trigger cycle and the adaptation engine mutate it.
type State struct {
	Category         core.Category
	Active           bool
	Strength         int // clamped to [1,10] on every update
	Threshold        float64
	TimesTriggered   int
	SuccessfulBlocks int
	FalsePositives   int
}

// Effectiveness is the fraction of trigger events that were blocks.
// Zero when the defense has never triggered.
func (s *State) Effectiveness() float64 {
	if s.TimesTriggered == 0 {
		return 0
	}
	return float64(s.SuccessfulBlocks) / float64(s.TimesTriggered)
}

// Strengthen raises strength by amount, clamped to [1,10].
func (s *State) Strengthen(amount int) {
	s.Strength = clampStrength(s.Strength + amount)
}

// Trigger records one evaluation outcome. Every trigger is either a
// successful block or a false positive, so the two counters always sum to
// TimesTriggered.
func (s *State) Trigger(blocked bool) {
	s.TimesTriggered++
	if blocked {
		s.SuccessfulBlocks++
	} else {
		s.FalsePositives++
	}
}

// View returns the read-only snapshot slice for this state.
func (s *State) View() core.DefenseView {
	return core.DefenseView{
		Active:         s.Active,
		Strength:       s.Strength,
		TimesTriggered: s.TimesTriggered,
		Effectiveness:  s.Effectiveness(),
	}
}

func clampStrength(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
