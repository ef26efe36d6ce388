package evolve

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/attack"
	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/defense"
	"github.com/redseed-project/redseed/internal/persist"
)

// Phase is the orchestrator's position in the generation loop.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseExecuting
	PhaseAnalyzing
	PhaseAdapting
	PhaseSnapshotting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseExecuting:
		return "executing"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseAdapting:
		return "adapting"
	case PhaseSnapshotting:
		return "snapshotting"
	default:
		return "unknown"
	}
}

// Publisher receives generation reports and exploit records as they are
// produced. The NATS event bus implements it; a nil publisher disables
// publishing.
type Publisher interface {
	PublishReport(*core.GenerationReport) error
	PublishExploit(*core.ExploitRecord) error
}

// Orchestrator drives the generation loop: execute the attack suite,
// analyze the gaps, adapt both sides, snapshot. One orchestrator owns one
// run; it is not safe for concurrent use.
type Orchestrator struct {
	logger    zerolog.Logger
	cfg       core.EvolutionConfig
	defenses  *defense.Registry
	attacks   *attack.Registry
	executor  *attack.Executor
	adapter   *Adapter
	store     *persist.Store
	publisher Publisher

	phase      Phase
	generation int
	history    []float64
	reports    []*core.GenerationReport

	// breakthroughArmed gates the stagnation response so a flat stretch
	// triggers one breakthrough, not one per generation.
	breakthroughArmed bool
}

// NewOrchestrator wires a generation loop over the given components. store
// and publisher may be nil.
func NewOrchestrator(
	logger zerolog.Logger,
	cfg core.EvolutionConfig,
	defenses *defense.Registry,
	attacks *attack.Registry,
	executor *attack.Executor,
	adapter *Adapter,
	store *persist.Store,
) *Orchestrator {
	return &Orchestrator{
		logger:            logger.With().Str("component", "orchestrator").Logger(),
		cfg:               cfg,
		defenses:          defenses,
		attacks:           attacks,
		executor:          executor,
		adapter:           adapter,
		store:             store,
		phase:             PhaseIdle,
		breakthroughArmed: true,
	}
}

// SetPublisher attaches an event publisher. Publish failures are logged,
// never fatal.
func (o *Orchestrator) SetPublisher(p Publisher) {
	o.publisher = p
}

// Phase reports the current loop phase.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Generation reports the index the next generation will run as.
func (o *Orchestrator) Generation() int {
	return o.generation
}

// History returns the fitness score of every completed generation in order.
func (o *Orchestrator) History() []float64 {
	out := make([]float64, len(o.history))
	copy(out, o.history)
	return out
}

// Reports returns every completed generation report in order.
func (o *Orchestrator) Reports() []*core.GenerationReport {
	return o.reports
}

// LastReport returns the most recent report, or nil before the first
// generation completes.
func (o *Orchestrator) LastReport() *core.GenerationReport {
	if len(o.reports) == 0 {
		return nil
	}
	return o.reports[len(o.reports)-1]
}

// RecordEvolution appends an externally produced report to the run
// history. Drivers that compose generations themselves use it to keep the
// history and stagnation window consistent.
func (o *Orchestrator) RecordEvolution(report *core.GenerationReport) {
	o.reports = append(o.reports, report)
	o.history = append(o.history, report.FitnessScore)
}

// ResumeFrom continues a run from a restored snapshot: the next generation
// picks up after the snapshot's, and its fitness seeds the history.
// Defense counters start fresh; only the loop position carries over.
func (o *Orchestrator) ResumeFrom(report *core.GenerationReport) {
	o.generation = report.Generation + 1
	o.history = append(o.history, report.FitnessScore)
	o.logger.Info().
		Int("generation", o.generation).
		Float64("fitness", report.FitnessScore).
		Msg("resuming from snapshot")
}

func (o *Orchestrator) setPhase(p Phase) {
	o.phase = p
	o.logger.Debug().Str("phase", p.String()).Int("generation", o.generation).Msg("phase change")
}

// RunGeneration executes one full generation and returns its report.
func (o *Orchestrator) RunGeneration() *core.GenerationReport {
	o.attacks.SetGeneration(o.generation)

	o.setPhase(PhaseExecuting)
	records, blocked, total := o.executor.ExecuteSuite()

	o.setPhase(PhaseAnalyzing)
	issues := Analyze(records)
	fitness := core.Fitness(blocked, total)

	o.setPhase(PhaseAdapting)
	fixes := o.adapter.AdaptDefenses(o.defenses, issues, fitness)
	o.adapter.AdaptAttacks(o.attacks.Patterns())

	o.setPhase(PhaseSnapshotting)
	report := &core.GenerationReport{
		ID:                 uuid.NewString(),
		Generation:         o.generation,
		Timestamp:          time.Now().UTC(),
		Exploits:           records,
		Issues:             issues,
		Defenses:           o.defenses.Snapshot(),
		FitnessScore:       fitness,
		AdaptationsApplied: fixes,
		AttacksBlocked:     blocked,
		AttacksTotal:       total,
	}
	o.history = append(o.history, fitness)
	o.reports = append(o.reports, report)

	if o.store != nil && o.store.ShouldSave(o.generation) {
		if _, err := o.store.Save(report); err != nil {
			o.logger.Warn().Err(err).Int("generation", o.generation).Msg("snapshot save failed")
		}
	}
	o.publish(report)

	o.logger.Info().
		Int("generation", o.generation).
		Float64("fitness", fitness).
		Int("blocked", blocked).
		Int("total", total).
		Int("issues", len(issues)).
		Int("fixes", fixes).
		Msg("generation complete")

	o.setPhase(PhaseIdle)
	o.generation++
	return report
}

func (o *Orchestrator) publish(report *core.GenerationReport) {
	if o.publisher == nil {
		return
	}
	for _, rec := range report.Exploits {
		if err := o.publisher.PublishExploit(rec); err != nil {
			o.logger.Warn().Err(err).Str("exploit_id", rec.ID).Msg("exploit publish failed")
		}
	}
	if err := o.publisher.PublishReport(report); err != nil {
		o.logger.Warn().Err(err).Str("report_id", report.ID).Msg("report publish failed")
	}
}

// RunCycle runs up to the given number of generations, stopping early on a
// perfect fitness score or context cancellation. A non-positive count
// falls back to the configured maximum. Returns the reports produced by
// this call.
func (o *Orchestrator) RunCycle(ctx context.Context, generations int) []*core.GenerationReport {
	if generations <= 0 {
		generations = o.cfg.MaxGenerations
	}
	start := len(o.reports)

	for i := 0; i < generations; i++ {
		if err := ctx.Err(); err != nil {
			o.logger.Info().Err(err).Msg("cycle interrupted")
			break
		}

		report := o.RunGeneration()

		if report.FitnessScore >= o.cfg.PerfectFitness {
			o.logger.Info().
				Int("generation", report.Generation).
				Float64("fitness", report.FitnessScore).
				Msg("perfect fitness reached, stopping")
			break
		}

		if o.stagnated() {
			if o.breakthroughArmed {
				o.breakthrough()
				o.breakthroughArmed = false
			}
		} else {
			o.breakthroughArmed = true
		}
	}

	return o.reports[start:]
}

// stagnated reports whether the trailing fitness window is too flat to
// call progress. It needs at least one generation before the window so the
// very first generations never count as stagnation.
func (o *Orchestrator) stagnated() bool {
	span := o.cfg.StagnationSpan
	if span < 1 || len(o.history) < span+1 {
		return false
	}
	window := o.history[len(o.history)-span:]
	lo, hi := window[0], window[0]
	for _, f := range window[1:] {
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return hi-lo < o.cfg.StagnationRange
}

// breakthrough is the stagnation response: every defense is strengthened
// and brought online in one sweep.
func (o *Orchestrator) breakthrough() {
	amount := o.adapter.defense.BreakthroughAmount
	for _, cat := range o.defenses.Categories() {
		o.defenses.Strengthen(cat, amount)
		o.defenses.Activate(cat)
	}
	o.logger.Warn().
		Int("generation", o.generation).
		Int("amount", amount).
		Msg("stagnation detected, defensive breakthrough applied")
}
