package evolve

import (
	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/attack"
	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/defense"
)

// complementary maps a breached category to the categories that cover the
// same attack surface from another angle. When a category keeps failing,
// its complements are brought online.
var complementary = map[core.Category][]core.Category{
	core.InputValidation:   {core.Sanitization, core.BoundsEnforcement},
	core.TypeChecking:      {core.BoundsEnforcement},
	core.Sanitization:      {core.CryptographicCheck, core.StateProtection},
	core.BoundsEnforcement: {core.RateLimiting},
}

// Adapter applies the per-generation adaptation strategies to both sides
// of the arms race.
type Adapter struct {
	logger  zerolog.Logger
	defense core.DefenseConfig
	attack  core.AttackConfig
}

// NewAdapter builds an adapter from the defense and attack tuning knobs.
func NewAdapter(logger zerolog.Logger, defenseCfg core.DefenseConfig, attackCfg core.AttackConfig) *Adapter {
	return &Adapter{
		logger:  logger.With().Str("component", "adapter").Logger(),
		defense: defenseCfg,
		attack:  attackCfg,
	}
}

// AdaptDefenses applies the defense-side strategies in order and returns
// the number of fixes applied:
//
//  1. strengthen every category named by an issue,
//  2. activate the inactive complements of every breached category,
//  3. if the block rate fell below the emergency threshold, activate
//     everything that is still offline.
func (a *Adapter) AdaptDefenses(reg *defense.Registry, issues []core.Issue, blockedPct float64) int {
	fixes := 0

	for _, issue := range issues {
		if reg.State(issue.Category) == nil {
			continue
		}
		reg.Strengthen(issue.Category, a.defense.StrengthenAmount)
		a.logger.Info().
			Str("category", issue.Category.String()).
			Int("amount", a.defense.StrengthenAmount).
			Msg("strengthened breached defense")
		fixes++
	}

	for _, issue := range issues {
		for _, complement := range complementary[issue.Category] {
			state := reg.State(complement)
			if state == nil || state.Active {
				continue
			}
			reg.Activate(complement)
			a.logger.Info().
				Str("breached", issue.Category.String()).
				Str("activated", complement.String()).
				Msg("activated complementary defense")
			fixes++
		}
	}

	if blockedPct < a.defense.EmergencyThreshold {
		for _, cat := range reg.Categories() {
			state := reg.State(cat)
			if state == nil || state.Active {
				continue
			}
			reg.Activate(cat)
			a.logger.Warn().
				Str("category", cat.String()).
				Float64("block_rate", blockedPct).
				Msg("emergency activation")
			fixes++
		}
	}

	return fixes
}

// AdaptAttacks applies the attack-side strategies: patterns that bypass
// defenses reliably escalate, patterns that keep getting blocked mutate.
// It returns the number of patterns adapted.
func (a *Adapter) AdaptAttacks(patterns []*attack.Pattern) int {
	adapted := 0
	for _, p := range patterns {
		rate := p.SuccessRate()
		switch {
		case rate > a.attack.RaiseThreshold:
			p.RaiseDifficulty()
			a.logger.Info().
				Str("attack", p.Description).
				Float64("success_rate", rate).
				Int("difficulty", p.Difficulty).
				Msg("attack escalated")
			adapted++
		case rate < a.attack.MutateThreshold && p.Attempts > a.attack.MinAttempts:
			if !a.mutate(p) {
				continue
			}
			a.logger.Info().
				Str("attack", p.Description).
				Float64("success_rate", rate).
				Int("difficulty", p.Difficulty).
				Msg("attack mutated")
			adapted++
		}
	}
	return adapted
}

// mutate reshapes a stalled pattern. Only categories whose payloads scale
// with difficulty have a mutation; patterns outside that set are left
// untouched. Reports whether a mutation was applied.
func (a *Adapter) mutate(p *attack.Pattern) bool {
	switch p.Category {
	case core.BoundsEnforcement, core.Sanitization, core.TypeChecking:
		p.RaiseDifficulty()
		return true
	}
	return false
}
