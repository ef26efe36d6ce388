package core

import (
	"time"

	"github.com/google/uuid"
)

// ExploitRecord is the outcome of running one attack pattern against its
// target defense. Immutable once created.
type ExploitRecord struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Payload     Payload   `json:"payload"`
	Severity    Severity  `json:"severity"`
	Difficulty  int       `json:"difficulty"`
	Blocked     bool      `json:"blocked"`
	Reason      string    `json:"reason"`
}

// NewExploitRecord creates an ExploitRecord with a generated ID and current
// timestamp. Severity is derived from difficulty.
func NewExploitRecord(category Category, description string, payload Payload, difficulty int, blocked bool, reason string) *ExploitRecord {
	return &ExploitRecord{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Category:    category,
		Description: description,
		Payload:     payload,
		Severity:    SeverityForDifficulty(difficulty),
		Difficulty:  difficulty,
		Blocked:     blocked,
		Reason:      reason,
	}
}

// Issue marks a defense category that failed to block at least one attack
// in a generation.
type Issue struct {
	Category     Category `json:"category"`
	Description  string   `json:"description"`
	Severity     Severity `json:"severity"`
	FailureCount int      `json:"failure_count"`
}

// DefenseView is the read-only per-category slice of a defense snapshot.
type DefenseView struct {
	Active         bool    `json:"active"`
	Strength       int     `json:"strength"`
	TimesTriggered int     `json:"triggered"`
	Effectiveness  float64 `json:"effectiveness"`
}

// DefenseSnapshot maps wire category names to their current view.
type DefenseSnapshot map[string]DefenseView

// PatternView is the read-only state export for one attack pattern.
type PatternView struct {
	Category    Category `json:"category"`
	SuccessRate float64  `json:"success_rate"`
	Difficulty  int      `json:"difficulty"`
	Attempts    int      `json:"attempts"`
	Successes   int      `json:"successes"`
	Adaptations int      `json:"adaptations"`
}

// GenerationReport is the finalized record of one generation:
// execute -> analyze -> adapt -> snapshot. Immutable once appended to
// history.
type GenerationReport struct {
	ID                 string           `json:"id"`
	Generation         int              `json:"generation"`
	Timestamp          time.Time        `json:"timestamp"`
	Exploits           []*ExploitRecord `json:"exploits"`
	Issues             []Issue          `json:"issues"`
	Defenses           DefenseSnapshot  `json:"defenses"`
	FitnessScore       float64          `json:"fitness_score"`
	AdaptationsApplied int              `json:"adaptations_applied"`
	AttacksBlocked     int              `json:"attacks_blocked"`
	AttacksTotal       int              `json:"attacks_total"`
}

// Fitness computes the blocked percentage for a blocked/total pair.
func Fitness(blocked, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(blocked) / float64(total) * 100
}
