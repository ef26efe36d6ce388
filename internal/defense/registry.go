package defense

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/core"
)

// dangerousPatterns is the base sanitization blacklist. Matched against the
// uppercased rendering of the payload, in this order.
var dangerousPatterns = []string{"'", `"`, ";", "--", "/*", "*/", "DROP", "DELETE", "UNION"}

// strictPatterns extends the blacklist once sanitization reaches strength 8.
var strictPatterns = []string{"<", ">", "{", "}", "[", "]"}

// Registry owns the fixed set of defense mechanisms and evaluates payloads
// against them. Evaluation dispatches over the category enum; there is no
// per-category subclassing.
type Registry struct {
	logger zerolog.Logger
	states map[core.Category]*State
	order  []core.Category

	// rateCount backs the rate-limiting defense. It advances on every
	// rate-limit evaluation, active or not, and survives activation
	// toggles. That matches the long-standing behavior of the mechanism;
	// do not reset it in Activate.
	rateCount int
}

// NewRegistry builds a registry seeded with the seven concrete categories
// at their default strengths. Rate limiting and the cryptographic check
// start inactive.
func NewRegistry(logger zerolog.Logger) *Registry {
	r := &Registry{
		logger: logger.With().Str("component", "defense_registry").Logger(),
		states: make(map[core.Category]*State),
	}

	seed := []struct {
		category core.Category
		active   bool
		strength int
	}{
		{core.InputValidation, true, 2},
		{core.TypeChecking, true, 1},
		{core.BoundsEnforcement, true, 1},
		{core.Sanitization, true, 2},
		{core.StateProtection, true, 1},
		{core.RateLimiting, false, 1},
		{core.CryptographicCheck, false, 1},
	}

	for _, s := range seed {
		r.states[s.category] = &State{
			Category:  s.category,
			Active:    s.active,
			Strength:  s.strength,
			Threshold: 0.5,
		}
		r.order = append(r.order, s.category)
	}

	return r
}

// Execute evaluates a payload against a category and records the trigger
// outcome on its counters. An inactive category is skipped entirely: the
// call returns without touching counters. Faults never escape this
// boundary.
func (r *Registry) Execute(category core.Category, value core.Payload) (blocked bool, reason string) {
	st, ok := r.states[category]
	if !ok {
		return false, "defense not found"
	}
	if !st.Active {
		return false, "defense inactive"
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("category", category.String()).
				Interface("panic", rec).
				Msg("defense evaluation panicked")
			blocked = false
			reason = fmt.Sprintf("defense execution error: %v", rec)
		}
	}()

	blocked, reason = r.evaluate(st, value)
	st.Trigger(blocked)
	return blocked, reason
}

// Evaluate runs the category predicate without recording a trigger event.
func (r *Registry) Evaluate(category core.Category, value core.Payload) (bool, string) {
	st, ok := r.states[category]
	if !ok {
		return false, "defense not found"
	}
	if !st.Active {
		return false, "defense inactive"
	}
	return r.evaluate(st, value)
}

func (r *Registry) evaluate(st *State, value core.Payload) (bool, string) {
	switch st.Category {
	case core.InputValidation:
		return evalInputValidation(st, value)
	case core.TypeChecking:
		return evalTypeChecking(value)
	case core.BoundsEnforcement:
		return evalBounds(st, value)
	case core.Sanitization:
		return evalSanitization(st, value)
	case core.StateProtection:
		return evalStateProtection(value)
	case core.RateLimiting:
		return r.evalRateLimit(st)
	case core.CryptographicCheck:
		return evalCryptoCheck(st, value)
	default:
		return false, "no check defined"
	}
}

func evalInputValidation(st *State, value core.Payload) (bool, string) {
	if value.Kind() == core.KindAbsent {
		return true, "rejected: null value"
	}
	if t, ok := value.(core.Text); ok && t == "" {
		return true, "rejected: empty string"
	}
	if st.Strength >= 4 {
		if k := value.Kind(); k != core.KindText && k != core.KindNumber {
			return true, "rejected: invalid base type"
		}
	}
	return false, "passed validation"
}

func evalTypeChecking(value core.Payload) (bool, string) {
	switch value.Kind() {
	case core.KindSequence, core.KindMapping:
		return true, fmt.Sprintf("rejected: %s type", value.Kind())
	}
	return false, "passed type check"
}

func evalBounds(st *State, value core.Payload) (bool, string) {
	// Permitted length shrinks as strength drops: 23 at strength 1,
	// 50 at strength 10.
	maxLen := 50 - (10-st.Strength)*3

	if t, ok := value.(core.Text); ok && len(t) > maxLen {
		return true, fmt.Sprintf("rejected: string too long (%d > %d)", len(t), maxLen)
	}

	switch v := value.(type) {
	case core.Sequence:
		if 2*len(v) > maxLen {
			return true, "rejected: collection too large"
		}
	case core.Mapping:
		if 2*len(v) > maxLen {
			return true, "rejected: collection too large"
		}
	}

	return false, "passed bounds check"
}

func evalSanitization(st *State, value core.Payload) (bool, string) {
	patterns := dangerousPatterns
	if st.Strength >= 8 {
		patterns = append(append([]string{}, dangerousPatterns...), strictPatterns...)
	}

	rendered := strings.ToUpper(value.Render())
	for _, p := range patterns {
		if strings.Contains(rendered, p) {
			return true, fmt.Sprintf("rejected: dangerous pattern %q", p)
		}
	}

	return false, "passed sanitization"
}

func evalStateProtection(value core.Payload) (bool, string) {
	switch value.Kind() {
	case core.KindSequence, core.KindMapping:
		rendered := value.Render()
		if strings.Contains(rendered, "_protected") || strings.Contains(rendered, "_private") {
			return true, "rejected: state injection attempt"
		}
		if strings.Contains(rendered, "exec") || strings.Contains(rendered, "eval") {
			return true, "rejected: code injection attempt"
		}
	}
	return false, "passed state protection"
}

func (r *Registry) evalRateLimit(st *State) (bool, string) {
	r.rateCount++

	if st.Strength >= 5 && r.rateCount > st.Strength*2 {
		r.rateCount = 0
		return true, "rejected: rate limit exceeded"
	}

	return false, "passed rate limit"
}

func evalCryptoCheck(st *State, value core.Payload) (bool, string) {
	if st.Strength >= 7 {
		if t, ok := value.(core.Text); ok {
			if len(t)%2 != 0 && strings.Contains(string(t), "'") {
				return true, "rejected: crypto validation failed"
			}
		}
	}
	return false, "passed crypto check"
}

// Activate enables a category. Unknown categories are ignored.
func (r *Registry) Activate(category core.Category) {
	if st, ok := r.states[category]; ok && !st.Active {
		st.Active = true
		r.logger.Debug().Str("category", category.String()).Msg("defense activated")
	}
}

// Strengthen raises a category's strength, clamped to [1,10]. Unknown
// categories are ignored.
func (r *Registry) Strengthen(category core.Category, amount int) {
	if st, ok := r.states[category]; ok {
		st.Strengthen(amount)
		r.logger.Debug().
			Str("category", category.String()).
			Int("strength", st.Strength).
			Msg("defense strengthened")
	}
}

// State returns the state for a category, or nil when not registered.
func (r *Registry) State(category core.Category) *State {
	return r.states[category]
}

// Categories returns the registered categories in seed order.
func (r *Registry) Categories() []core.Category {
	out := make([]core.Category, len(r.order))
	copy(out, r.order)
	return out
}

// ActiveCount returns how many categories are currently active.
func (r *Registry) ActiveCount() int {
	n := 0
	for _, st := range r.states {
		if st.Active {
			n++
		}
	}
	return n
}

// Snapshot returns an immutable view of every category's configuration.
func (r *Registry) Snapshot() core.DefenseSnapshot {
	snap := make(core.DefenseSnapshot, len(r.states))
	for _, c := range r.order {
		snap[c.String()] = r.states[c].View()
	}
	return snap
}
