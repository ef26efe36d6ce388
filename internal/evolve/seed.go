package evolve

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/attack"
	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/defense"
	"github.com/redseed-project/redseed/internal/persist"
)

// Seed is the top-level aggregate: a defense registry, an attack
// population, and the orchestrator that co-evolves them. Commands build
// one Seed and drive it.
type Seed struct {
	logger       zerolog.Logger
	cfg          *core.Config
	Defenses     *defense.Registry
	Attacks      *attack.Registry
	Executor     *attack.Executor
	Store        *persist.Store
	Orchestrator *Orchestrator
}

// NewSeed wires the full component graph from a configuration.
func NewSeed(logger zerolog.Logger, cfg *core.Config) *Seed {
	defenses := defense.NewRegistry(logger)
	attacks := attack.NewRegistry(logger, cfg.Attack.PopulationSize)
	executor := attack.NewExecutor(logger, defenses, attacks)
	adapter := NewAdapter(logger, cfg.Defense, cfg.Attack)
	store := persist.NewStore(logger, cfg.Persistence)

	return &Seed{
		logger:       logger.With().Str("component", "seed").Logger(),
		cfg:          cfg,
		Defenses:     defenses,
		Attacks:      attacks,
		Executor:     executor,
		Store:        store,
		Orchestrator: NewOrchestrator(logger, cfg.Evolution, defenses, attacks, executor, adapter, store),
	}
}

// SetPublisher attaches an event publisher to the generation loop.
func (s *Seed) SetPublisher(p Publisher) {
	s.Orchestrator.SetPublisher(p)
}

// TestDefense runs a single payload through one defense category without
// touching pattern statistics.
func (s *Seed) TestDefense(category core.Category, payload core.Payload) (bool, string) {
	return s.Defenses.Execute(category, payload)
}

// StrengthenDefense raises one category's strength.
func (s *Seed) StrengthenDefense(category core.Category, amount int) {
	s.Defenses.Strengthen(category, amount)
}

// ActivateDefense brings one category online.
func (s *Seed) ActivateDefense(category core.Category) {
	s.Defenses.Activate(category)
}

// DefenseSnapshot exports the current defense configuration.
func (s *Seed) DefenseSnapshot() core.DefenseSnapshot {
	return s.Defenses.Snapshot()
}

// PatternStatus exports per-pattern attack statistics.
func (s *Seed) PatternStatus() map[string]core.PatternView {
	return s.Attacks.Status()
}

// RecordEvolution appends a report to the run history.
func (s *Seed) RecordEvolution(report *core.GenerationReport) {
	s.Orchestrator.RecordEvolution(report)
}

// Resume restores the latest persisted snapshot, if any, and positions the
// loop after it. It reports whether a snapshot was found.
func (s *Seed) Resume() bool {
	report := s.Store.LoadLatest()
	if report == nil {
		return false
	}
	s.Orchestrator.ResumeFrom(report)
	return true
}

// Run executes up to the given number of generations and returns the
// reports produced.
func (s *Seed) Run(ctx context.Context, generations int) []*core.GenerationReport {
	return s.Orchestrator.RunCycle(ctx, generations)
}
