package defense

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/core"
)

func testRegistry() *Registry {
	return NewRegistry(zerolog.Nop())
}

// ─── Seeding ─────────────────────────────────────────────────────────────────

func TestNewRegistry_Seed(t *testing.T) {
	r := testRegistry()

	if got := len(r.Categories()); got != 7 {
		t.Fatalf("seeded %d categories, want 7", got)
	}
	if got := r.ActiveCount(); got != 5 {
		t.Errorf("active count = %d, want 5", got)
	}
	for _, cat := range []core.Category{core.RateLimiting, core.CryptographicCheck} {
		if r.State(cat).Active {
			t.Errorf("%s should start inactive", cat)
		}
	}
	if got := r.State(core.InputValidation).Strength; got != 2 {
		t.Errorf("input validation strength = %d, want 2", got)
	}
}

// ─── Input validation ────────────────────────────────────────────────────────

func TestExecute_InputValidation(t *testing.T) {
	r := testRegistry()

	blocked, reason := r.Execute(core.InputValidation, core.Absent{})
	if !blocked || !strings.Contains(reason, "null") {
		t.Errorf("null payload: blocked=%v reason=%q", blocked, reason)
	}

	blocked, reason = r.Execute(core.InputValidation, core.Text(""))
	if !blocked || !strings.Contains(reason, "empty") {
		t.Errorf("empty payload: blocked=%v reason=%q", blocked, reason)
	}

	if blocked, _ := r.Execute(core.InputValidation, core.Text("hello")); blocked {
		t.Error("plain text should pass at default strength")
	}

	// Below strength 4 collections pass base-type validation
	if blocked, _ := r.Execute(core.InputValidation, core.Sequence{core.Text("x")}); blocked {
		t.Error("sequence should pass validation at strength 2")
	}

	r.Strengthen(core.InputValidation, 2) // strength 4
	blocked, reason = r.Execute(core.InputValidation, core.Sequence{core.Text("x")})
	if !blocked || !strings.Contains(reason, "base type") {
		t.Errorf("sequence at strength 4: blocked=%v reason=%q", blocked, reason)
	}
}

// ─── Type checking / state protection ────────────────────────────────────────

func TestExecute_TypeChecking(t *testing.T) {
	r := testRegistry()

	if blocked, _ := r.Execute(core.TypeChecking, core.Sequence{core.Text("a")}); !blocked {
		t.Error("sequence should be rejected")
	}
	if blocked, _ := r.Execute(core.TypeChecking, core.Mapping{{Key: "k", Value: core.Text("v")}}); !blocked {
		t.Error("mapping should be rejected")
	}
	if blocked, _ := r.Execute(core.TypeChecking, core.Text("fine")); blocked {
		t.Error("text should pass type check")
	}
}

func TestExecute_StateProtection(t *testing.T) {
	r := testRegistry()

	corruption := core.Mapping{
		{Key: "_protected", Value: core.Text("corrupted")},
		{Key: "_internal", Value: core.Text("compromised")},
	}
	blocked, reason := r.Execute(core.StateProtection, corruption)
	if !blocked || !strings.Contains(reason, "state injection") {
		t.Errorf("state corruption: blocked=%v reason=%q", blocked, reason)
	}

	injection := core.Mapping{
		{Key: "eval", Value: core.Text("exec('malicious_code')")},
	}
	blocked, reason = r.Execute(core.StateProtection, injection)
	if !blocked || !strings.Contains(reason, "code injection") {
		t.Errorf("code injection: blocked=%v reason=%q", blocked, reason)
	}

	// The markers only matter inside collections
	if blocked, _ := r.Execute(core.StateProtection, core.Text("eval")); blocked {
		t.Error("scalar text should pass state protection")
	}
}

// ─── Bounds ──────────────────────────────────────────────────────────────────

func TestExecute_Bounds(t *testing.T) {
	r := testRegistry()

	// Strength 1 permits up to 23 characters
	long := core.Text(strings.Repeat("A", 200))
	if blocked, _ := r.Execute(core.BoundsEnforcement, long); !blocked {
		t.Error("200-char string should exceed bounds at strength 1")
	}
	if blocked, _ := r.Execute(core.BoundsEnforcement, core.Text(strings.Repeat("A", 20))); blocked {
		t.Error("20-char string should pass at strength 1")
	}
	if blocked, _ := r.Execute(core.BoundsEnforcement, core.Text(strings.Repeat("A", 24))); !blocked {
		t.Error("24-char string should exceed the strength-1 limit of 23")
	}

	// Raising strength widens the permitted length
	r.Strengthen(core.BoundsEnforcement, 9) // strength 10, limit 50
	if blocked, _ := r.Execute(core.BoundsEnforcement, core.Text(strings.Repeat("A", 40))); blocked {
		t.Error("40-char string should pass at strength 10")
	}
}

// ─── Sanitization ────────────────────────────────────────────────────────────

func TestExecute_Sanitization(t *testing.T) {
	r := testRegistry()

	blocked, reason := r.Execute(core.Sanitization, core.Text("'; DROP TABLE users--"))
	if !blocked {
		t.Errorf("SQL injection should be rejected, reason=%q", reason)
	}
	if blocked, _ := r.Execute(core.Sanitization, core.Text("plain input")); blocked {
		t.Error("benign text should pass sanitization")
	}

	// drop is matched case-insensitively via the uppercased rendering
	if blocked, _ := r.Execute(core.Sanitization, core.Text("drop everything")); !blocked {
		t.Error("lowercase drop should still match")
	}

	// Angle brackets only matter once the strict set kicks in at strength 8
	if blocked, _ := r.Execute(core.Sanitization, core.Text("<script>")); blocked {
		t.Error("angle brackets should pass at strength 2")
	}
	r.Strengthen(core.Sanitization, 6) // strength 8
	if blocked, _ := r.Execute(core.Sanitization, core.Text("<script>")); !blocked {
		t.Error("angle brackets should be rejected at strength 8")
	}
}

// ─── Rate limiting ───────────────────────────────────────────────────────────

func TestExecute_RateLimit_CounterSurvivesToggles(t *testing.T) {
	r := testRegistry()

	// Inactive: skipped entirely, counter untouched
	blocked, reason := r.Execute(core.RateLimiting, core.Text("x"))
	if blocked || reason != "defense inactive" {
		t.Fatalf("inactive execute: blocked=%v reason=%q", blocked, reason)
	}
	if r.rateCount != 0 {
		t.Fatalf("rateCount = %d after inactive execute, want 0", r.rateCount)
	}

	r.Activate(core.RateLimiting)
	for i := 0; i < 4; i++ {
		if blocked, _ := r.Execute(core.RateLimiting, core.Text("x")); blocked {
			t.Fatalf("strength 1 should never trip the limit (call %d)", i)
		}
	}
	if r.rateCount != 4 {
		t.Fatalf("rateCount = %d, want 4", r.rateCount)
	}

	// Strengthen to 5: limit is strength*2 = 10, counter carries over
	r.Strengthen(core.RateLimiting, 4)
	for i := 0; i < 6; i++ {
		if blocked, _ := r.Execute(core.RateLimiting, core.Text("x")); blocked {
			t.Fatalf("call %d should still be under the limit", i)
		}
	}
	// Count is now 10; the next call exceeds it and resets
	blocked, reason = r.Execute(core.RateLimiting, core.Text("x"))
	if !blocked || !strings.Contains(reason, "rate limit") {
		t.Fatalf("11th call: blocked=%v reason=%q", blocked, reason)
	}
	if r.rateCount != 0 {
		t.Errorf("rateCount = %d after block, want 0", r.rateCount)
	}
}

// ─── Crypto check ────────────────────────────────────────────────────────────

func TestExecute_CryptoCheck(t *testing.T) {
	r := testRegistry()
	r.Activate(core.CryptographicCheck)

	// Below strength 7 the check is a pass-through
	if blocked, _ := r.Execute(core.CryptographicCheck, core.Text("ab'")); blocked {
		t.Error("crypto check should pass below strength 7")
	}

	r.Strengthen(core.CryptographicCheck, 6) // strength 7
	if blocked, _ := r.Execute(core.CryptographicCheck, core.Text("ab'")); !blocked {
		t.Error("odd-length quoted text should fail the crypto check")
	}
	if blocked, _ := r.Execute(core.CryptographicCheck, core.Text("abc'")); blocked {
		t.Error("even-length text should pass the crypto check")
	}
}

// ─── Execute edge cases ──────────────────────────────────────────────────────

func TestExecute_UnknownCategory(t *testing.T) {
	r := testRegistry()

	blocked, reason := r.Execute(core.LogicHardening, core.Text("x"))
	if blocked || reason != "defense not found" {
		t.Errorf("unknown category: blocked=%v reason=%q", blocked, reason)
	}
}

func TestExecute_InactiveSkipsCounters(t *testing.T) {
	r := testRegistry()

	r.Execute(core.CryptographicCheck, core.Text("x"))
	st := r.State(core.CryptographicCheck)
	if st.TimesTriggered != 0 {
		t.Errorf("inactive defense recorded %d triggers, want 0", st.TimesTriggered)
	}
}

func TestExecute_RecordsTriggers(t *testing.T) {
	r := testRegistry()

	r.Execute(core.InputValidation, core.Absent{})      // block
	r.Execute(core.InputValidation, core.Text("hello")) // pass

	st := r.State(core.InputValidation)
	if st.TimesTriggered != 2 || st.SuccessfulBlocks != 1 || st.FalsePositives != 1 {
		t.Errorf("counters = %d/%d/%d, want 2/1/1",
			st.TimesTriggered, st.SuccessfulBlocks, st.FalsePositives)
	}
	if eff := st.Effectiveness(); eff != 0.5 {
		t.Errorf("effectiveness = %v, want 0.5", eff)
	}
}

// ─── Strength clamp ──────────────────────────────────────────────────────────

func TestStrengthen_Clamps(t *testing.T) {
	r := testRegistry()

	r.Strengthen(core.TypeChecking, 100)
	if got := r.State(core.TypeChecking).Strength; got != 10 {
		t.Errorf("strength = %d, want clamp at 10", got)
	}
	r.Strengthen(core.TypeChecking, -100)
	if got := r.State(core.TypeChecking).Strength; got != 1 {
		t.Errorf("strength = %d, want clamp at 1", got)
	}
}

// ─── Snapshot ────────────────────────────────────────────────────────────────

func TestSnapshot(t *testing.T) {
	r := testRegistry()
	r.Execute(core.Sanitization, core.Text("'; DROP TABLE users--"))

	snap := r.Snapshot()
	if len(snap) != 7 {
		t.Fatalf("snapshot has %d entries, want 7", len(snap))
	}
	view, ok := snap[core.Sanitization.String()]
	if !ok {
		t.Fatalf("snapshot missing %s", core.Sanitization)
	}
	if !view.Active || view.TimesTriggered != 1 || view.Effectiveness != 1.0 {
		t.Errorf("sanitization view = %+v", view)
	}

	// Snapshot is a copy: mutating it does not touch the registry
	view.Strength = 99
	if r.State(core.Sanitization).Strength == 99 {
		t.Error("snapshot mutation leaked into registry state")
	}
}
