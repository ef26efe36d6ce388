package attack

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/defense"
)

func testHarness(populationSize int) (*defense.Registry, *Registry, *Executor) {
	logger := zerolog.Nop()
	defenses := defense.NewRegistry(logger)
	attacks := NewRegistry(logger, populationSize)
	return defenses, attacks, NewExecutor(logger, defenses, attacks)
}

// ─── Registry ────────────────────────────────────────────────────────────────

func TestNewRegistry_PopulationSelection(t *testing.T) {
	_, attacks, _ := testHarness(4)
	patterns := attacks.Patterns()
	if len(patterns) != 4 {
		t.Fatalf("population = %d, want 4", len(patterns))
	}
	// The population is the catalog prefix, in catalog order
	if patterns[0].Description != "Null injection attack" {
		t.Errorf("first pattern = %q", patterns[0].Description)
	}
	if patterns[3].Category != core.TypeChecking {
		t.Errorf("fourth pattern category = %v", patterns[3].Category)
	}
}

func TestNewRegistry_ClampsPopulation(t *testing.T) {
	logger := zerolog.Nop()
	if got := len(NewRegistry(logger, 0).Patterns()); got != 1 {
		t.Errorf("population for size 0 = %d, want 1", got)
	}
	if got := len(NewRegistry(logger, 999).Patterns()); got != CatalogSize() {
		t.Errorf("population for size 999 = %d, want %d", got, CatalogSize())
	}
}

// ─── Generators ──────────────────────────────────────────────────────────────

func TestGenerators_EvolveWithGeneration(t *testing.T) {
	overflow := bufferOverflow(0).(core.Text)
	if len(overflow) != 500 {
		t.Errorf("gen 0 overflow length = %d, want 500", len(overflow))
	}
	overflow = bufferOverflow(3).(core.Text)
	if len(overflow) != 800 {
		t.Errorf("gen 3 overflow length = %d, want 800", len(overflow))
	}

	early := obfuscatedSQLInjection(0).Render()
	late := obfuscatedSQLInjection(3).Render()
	if early == late {
		t.Error("obfuscated injection should change form at generation 3")
	}
	if !strings.Contains(late, "/*!50000") {
		t.Errorf("late form = %q, want inline comment obfuscation", late)
	}
}

// ─── Executor ────────────────────────────────────────────────────────────────

func TestExecuteOne_BlockedAttack(t *testing.T) {
	_, attacks, exec := testHarness(1) // null injection only
	p := attacks.Patterns()[0]

	rec := exec.ExecuteOne(p)
	if !rec.Blocked {
		t.Fatalf("null injection should be blocked, reason=%q", rec.Reason)
	}
	if p.Attempts != 1 || p.Successes != 0 {
		t.Errorf("pattern stats = %d/%d, want 1/0", p.Attempts, p.Successes)
	}
	if rec.Severity != core.SeverityLow {
		t.Errorf("severity = %v for difficulty %d", rec.Severity, p.Difficulty)
	}
}

func TestExecuteOne_SuccessfulAttack(t *testing.T) {
	_, attacks, exec := testHarness(1)
	p := attacks.Patterns()[0]
	// Aim the pattern at a category with no registered defense
	p.Category = core.LogicHardening

	rec := exec.ExecuteOne(p)
	if rec.Blocked {
		t.Fatal("attack on an unregistered category should succeed")
	}
	if rec.Reason != "defense not found" {
		t.Errorf("reason = %q", rec.Reason)
	}
	if p.SuccessRate() != 1.0 {
		t.Errorf("success rate = %v, want 1.0", p.SuccessRate())
	}
}

func TestExecuteOne_PanickingGenerator(t *testing.T) {
	_, attacks, exec := testHarness(1)
	p := attacks.Patterns()[0]
	p.Generate = func(int) core.Payload { panic("bad generator") }

	rec := exec.ExecuteOne(p)
	if rec.Payload.Kind() != core.KindAbsent {
		t.Errorf("substitute payload kind = %v, want absent", rec.Payload.Kind())
	}
	// The absent substitute still goes through the defense
	if !rec.Blocked {
		t.Error("absent substitute should be caught by input validation")
	}
}

func TestExecuteSuite_Counts(t *testing.T) {
	_, attacks, exec := testHarness(9)

	records, blocked, total := exec.ExecuteSuite()
	if total != 9 || len(records) != 9 {
		t.Fatalf("total = %d records = %d, want 9", total, len(records))
	}
	if blocked < 0 || blocked > total {
		t.Fatalf("blocked = %d out of %d", blocked, total)
	}
	// The default defenses catch the whole default catalog
	if blocked != total {
		for _, rec := range records {
			if !rec.Blocked {
				t.Errorf("unblocked: %s (%s)", rec.Description, rec.Reason)
			}
		}
	}
	for _, p := range attacks.Patterns() {
		if p.Attempts != 1 {
			t.Errorf("%s attempts = %d, want 1", p.Description, p.Attempts)
		}
	}
}

func TestExecuteSuite_StrengtheningNeverLosesGround(t *testing.T) {
	defenses, attacks, exec := testHarness(9)

	_, blocked1, _ := exec.ExecuteSuite()
	for _, cat := range defenses.Categories() {
		defenses.Strengthen(cat, 5)
	}
	attacks.SetGeneration(1)
	_, blocked2, _ := exec.ExecuteSuite()

	if blocked2 < blocked1 {
		t.Errorf("blocked dropped from %d to %d after strengthening every defense", blocked1, blocked2)
	}
}

// ─── Pattern stats ───────────────────────────────────────────────────────────

func TestPattern_RaiseDifficultyClamps(t *testing.T) {
	p := &Pattern{Difficulty: 9}
	p.RaiseDifficulty()
	p.RaiseDifficulty()
	if p.Difficulty != 10 {
		t.Errorf("difficulty = %d, want clamp at 10", p.Difficulty)
	}
	if p.Adaptations != 2 {
		t.Errorf("adaptations = %d, want 2", p.Adaptations)
	}
}

func TestPattern_SuccessRate(t *testing.T) {
	p := &Pattern{}
	if p.SuccessRate() != 0 {
		t.Errorf("fresh pattern success rate = %v, want 0", p.SuccessRate())
	}
	p.RecordAttempt(true)
	p.RecordAttempt(false)
	p.RecordAttempt(false)
	p.RecordAttempt(true)
	if p.SuccessRate() != 0.5 {
		t.Errorf("success rate = %v, want 0.5", p.SuccessRate())
	}
}
