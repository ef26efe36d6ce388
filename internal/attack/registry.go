package attack

import (
	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/core"
)

// Registry holds the live attack population and the current generation
// index the generators are evaluated against.
type Registry struct {
	logger     zerolog.Logger
	patterns   []*Pattern
	generation int
}

// NewRegistry builds a population from the first populationSize entries of
// the catalog. Sizes outside [1, CatalogSize()] are clamped so callers
// always get a non-empty population.
func NewRegistry(logger zerolog.Logger, populationSize int) *Registry {
	if populationSize < 1 {
		populationSize = 1
	}
	if populationSize > len(catalog) {
		populationSize = len(catalog)
	}

	r := &Registry{
		logger:   logger.With().Str("component", "attack").Logger(),
		patterns: make([]*Pattern, 0, populationSize),
	}
	for _, entry := range catalog[:populationSize] {
		r.patterns = append(r.patterns, &Pattern{
			Description: entry.description,
			Category:    entry.category,
			Generate:    entry.generate,
			Difficulty:  entry.difficulty,
		})
	}

	r.logger.Info().
		Int("population", len(r.patterns)).
		Msg("attack registry initialized")
	return r
}

// SetGeneration updates the generation index generators receive.
func (r *Registry) SetGeneration(generation int) {
	r.generation = generation
}

// Generation reports the current generation index.
func (r *Registry) Generation() int {
	return r.generation
}

// Patterns returns the live population. Callers mutate pattern statistics
// through the returned pointers; the slice itself must not be modified.
func (r *Registry) Patterns() []*Pattern {
	return r.patterns
}

// Status exports per-pattern statistics keyed by description.
func (r *Registry) Status() map[string]core.PatternView {
	out := make(map[string]core.PatternView, len(r.patterns))
	for _, p := range r.patterns {
		out[p.Description] = p.View()
	}
	return out
}
