package attack

import (
	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/defense"
)

// Executor runs the attack population against the defense registry and
// produces exploit records for analysis.
type Executor struct {
	logger   zerolog.Logger
	defenses *defense.Registry
	attacks  *Registry
}

// NewExecutor wires an executor to a defense registry and an attack
// population.
func NewExecutor(logger zerolog.Logger, defenses *defense.Registry, attacks *Registry) *Executor {
	return &Executor{
		logger:   logger.With().Str("component", "executor").Logger(),
		defenses: defenses,
		attacks:  attacks,
	}
}

// ExecuteOne runs a single pattern against its target category. A panicking
// generator is absorbed and replaced with an absent payload so a bad
// generator degrades one attempt instead of the whole run. The attempt is
// folded into the pattern statistics: an attack succeeds exactly when the
// defense does not block it.
func (e *Executor) ExecuteOne(p *Pattern) *core.ExploitRecord {
	payload := e.safeGenerate(p)
	blocked, reason := e.defenses.Execute(p.Category, payload)
	p.RecordAttempt(!blocked)

	record := core.NewExploitRecord(p.Category, p.Description, payload, p.Difficulty, blocked, reason)

	e.logger.Debug().
		Str("attack", p.Description).
		Str("category", p.Category.String()).
		Bool("blocked", blocked).
		Str("reason", reason).
		Msg("attack executed")
	return record
}

// ExecuteSuite runs the whole population once and returns the exploit
// records together with the blocked and total counts.
func (e *Executor) ExecuteSuite() ([]*core.ExploitRecord, int, int) {
	patterns := e.attacks.Patterns()
	records := make([]*core.ExploitRecord, 0, len(patterns))
	blocked := 0
	for _, p := range patterns {
		record := e.ExecuteOne(p)
		if record.Blocked {
			blocked++
		}
		records = append(records, record)
	}

	e.logger.Info().
		Int("generation", e.attacks.Generation()).
		Int("blocked", blocked).
		Int("total", len(records)).
		Msg("attack suite complete")
	return records, blocked, len(records)
}

func (e *Executor) safeGenerate(p *Pattern) (payload core.Payload) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Str("attack", p.Description).
				Interface("panic", r).
				Msg("payload generator panicked, substituting absent payload")
			payload = core.Absent{}
		}
	}()
	return p.Generate(e.attacks.Generation())
}
