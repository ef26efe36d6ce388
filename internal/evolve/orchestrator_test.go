package evolve

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/core"
)

func testSeed() *Seed {
	cfg := core.DefaultConfig()
	cfg.Persistence.Enabled = false
	return NewSeed(zerolog.Nop(), cfg)
}

// misdirect aims every pattern at a category with no registered defense so
// nothing ever gets blocked.
func misdirect(s *Seed) {
	for _, p := range s.Attacks.Patterns() {
		p.Category = core.LogicHardening
	}
}

// ─── RunGeneration ───────────────────────────────────────────────────────────

func TestRunGeneration_ReportInvariants(t *testing.T) {
	s := testSeed()
	report := s.Orchestrator.RunGeneration()

	if report.Generation != 0 {
		t.Errorf("generation = %d, want 0", report.Generation)
	}
	if report.AttacksTotal != 9 || len(report.Exploits) != 9 {
		t.Errorf("attacks total = %d exploits = %d, want 9", report.AttacksTotal, len(report.Exploits))
	}
	if report.AttacksBlocked > report.AttacksTotal {
		t.Errorf("blocked %d > total %d", report.AttacksBlocked, report.AttacksTotal)
	}
	// Issues exist exactly when something got through
	if (len(report.Issues) == 0) != (report.AttacksBlocked == report.AttacksTotal) {
		t.Errorf("issues=%d with %d/%d blocked", len(report.Issues), report.AttacksBlocked, report.AttacksTotal)
	}
	if len(report.Defenses) != 7 {
		t.Errorf("defense snapshot has %d entries, want 7", len(report.Defenses))
	}
	if report.ID == "" {
		t.Error("report missing ID")
	}

	if s.Orchestrator.Generation() != 1 {
		t.Errorf("next generation = %d, want 1", s.Orchestrator.Generation())
	}
	if s.Orchestrator.LastReport() != report {
		t.Error("LastReport should return the report just produced")
	}
	if s.Orchestrator.Phase() != PhaseIdle {
		t.Errorf("phase = %v after generation, want idle", s.Orchestrator.Phase())
	}
}

func TestRunGeneration_DefaultCatalogIsFullyBlocked(t *testing.T) {
	s := testSeed()
	report := s.Orchestrator.RunGeneration()

	if report.FitnessScore != 100 {
		for _, rec := range report.Exploits {
			if !rec.Blocked {
				t.Errorf("unblocked: %s (%s)", rec.Description, rec.Reason)
			}
		}
		t.Fatalf("fitness = %v, want 100 against the default catalog", report.FitnessScore)
	}
	if report.AdaptationsApplied != 0 {
		t.Errorf("adaptations = %d for a clean generation, want 0", report.AdaptationsApplied)
	}
}

// ─── RunCycle ────────────────────────────────────────────────────────────────

func TestRunCycle_StopsAtPerfectFitness(t *testing.T) {
	s := testSeed()
	reports := s.Run(context.Background(), 5)

	if len(reports) != 1 {
		t.Fatalf("ran %d generations, want 1 before stopping at perfect fitness", len(reports))
	}
	if reports[0].FitnessScore != 100 {
		t.Errorf("fitness = %v", reports[0].FitnessScore)
	}
}

func TestRunCycle_HonorsContextCancellation(t *testing.T) {
	s := testSeed()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if reports := s.Run(ctx, 5); len(reports) != 0 {
		t.Errorf("ran %d generations with a cancelled context, want 0", len(reports))
	}
}

func TestRunCycle_EmergencyRespondsToCollapse(t *testing.T) {
	s := testSeed()
	misdirect(s)

	reports := s.Run(context.Background(), 2)
	if len(reports) != 2 {
		t.Fatalf("ran %d generations, want 2", len(reports))
	}
	if reports[0].FitnessScore != 0 {
		t.Errorf("fitness = %v with misdirected patterns, want 0", reports[0].FitnessScore)
	}
	// Zero block rate trips the emergency strategy in the first generation
	if s.Defenses.ActiveCount() != 7 {
		t.Errorf("active count = %d after emergency, want 7", s.Defenses.ActiveCount())
	}
}

// ─── Stagnation ──────────────────────────────────────────────────────────────

func TestStagnated(t *testing.T) {
	s := testSeed()
	o := s.Orchestrator

	o.history = []float64{40, 42, 41}
	if o.stagnated() {
		t.Error("three generations are not enough history to call stagnation")
	}

	o.history = []float64{40, 42, 41, 43}
	if !o.stagnated() {
		t.Error("a flat trailing window should read as stagnation")
	}

	o.history = []float64{40, 42, 41, 60}
	if o.stagnated() {
		t.Error("a jump inside the window should not read as stagnation")
	}
}

func TestRunCycle_BreakthroughFiresOnceWhileFlat(t *testing.T) {
	s := testSeed()
	misdirect(s)

	// Fitness stays flat at 0, so stagnation holds from generation 3 on.
	s.Run(context.Background(), 6)

	// Exactly one breakthrough: input validation went 2 -> 5. A second
	// sweep would have pushed it to 8.
	if got := s.Defenses.State(core.InputValidation).Strength; got != 5 {
		t.Errorf("input validation strength = %d, want 5 after a single breakthrough", got)
	}
	if s.Orchestrator.breakthroughArmed {
		t.Error("breakthrough should stay disarmed while the plateau lasts")
	}
}

// ─── Resume ──────────────────────────────────────────────────────────────────

func TestResumeFrom_AdvancesLoopPosition(t *testing.T) {
	s := testSeed()
	s.Orchestrator.ResumeFrom(&core.GenerationReport{Generation: 7, FitnessScore: 88})

	if got := s.Orchestrator.Generation(); got != 8 {
		t.Errorf("generation = %d, want 8", got)
	}
	history := s.Orchestrator.History()
	if len(history) != 1 || history[0] != 88 {
		t.Errorf("history = %v, want [88]", history)
	}
}

func TestRecordEvolution_FeedsHistory(t *testing.T) {
	s := testSeed()
	s.RecordEvolution(&core.GenerationReport{Generation: 0, FitnessScore: 55})
	s.RecordEvolution(&core.GenerationReport{Generation: 1, FitnessScore: 65})

	history := s.Orchestrator.History()
	if len(history) != 2 || history[1] != 65 {
		t.Errorf("history = %v, want [55 65]", history)
	}
	if s.Orchestrator.LastReport().Generation != 1 {
		t.Errorf("last report generation = %d, want 1", s.Orchestrator.LastReport().Generation)
	}
}

func TestResume_NoSnapshot(t *testing.T) {
	s := testSeed() // persistence disabled
	if s.Resume() {
		t.Error("Resume should report false with persistence disabled")
	}
}

// ─── Metrics ─────────────────────────────────────────────────────────────────

func TestSummarize(t *testing.T) {
	reports := []*core.GenerationReport{
		{FitnessScore: 40, AttacksBlocked: 4, AttacksTotal: 10, AdaptationsApplied: 2},
		{FitnessScore: 70, AttacksBlocked: 7, AttacksTotal: 10, AdaptationsApplied: 1},
		{FitnessScore: 60, AttacksBlocked: 6, AttacksTotal: 10},
	}

	m := Summarize(reports)
	if m.Generations != 3 || m.FirstFitness != 40 || m.LastFitness != 60 || m.BestFitness != 70 {
		t.Errorf("metrics = %+v", m)
	}
	if m.TotalAdaptations != 3 || m.TotalBlocked != 17 || m.TotalAttacks != 30 {
		t.Errorf("totals = %+v", m)
	}
	if m.Improvement() != 20 {
		t.Errorf("improvement = %v, want 20", m.Improvement())
	}

	if zero := Summarize(nil); zero != (Metrics{}) {
		t.Errorf("empty run metrics = %+v, want zero value", zero)
	}
}

// ─── Arms race ───────────────────────────────────────────────────────────────

func TestRunArmsRace_DefenderDominance(t *testing.T) {
	s := testSeed()
	result := s.RunArmsRace(context.Background(), 10)

	if result.Winner != "defender" {
		t.Errorf("winner = %q, want defender", result.Winner)
	}
	if result.Generations != 1 {
		t.Errorf("generations = %d, want 1", result.Generations)
	}
	if result.FinalFitness < defenderDominance {
		t.Errorf("final fitness = %v", result.FinalFitness)
	}
}

func TestRunArmsRace_AttackerDominance(t *testing.T) {
	s := testSeed()
	misdirect(s)

	result := s.RunArmsRace(context.Background(), 10)
	if result.Winner != "attacker" {
		t.Errorf("winner = %q, want attacker", result.Winner)
	}
	if result.TopSuccessRate < attackerDominance {
		t.Errorf("top success rate = %v", result.TopSuccessRate)
	}
}

func TestRunArmsRace_StalemateOnBudget(t *testing.T) {
	s := testSeed()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := s.RunArmsRace(ctx, 10)
	if result.Winner != "stalemate" || result.Generations != 0 {
		t.Errorf("result = %+v, want untouched stalemate", result)
	}
}
