package evolve

import (
	"fmt"
	"sort"

	"github.com/redseed-project/redseed/internal/core"
)

// criticalFailureCount is the number of bypasses in one generation past
// which a defense gap is escalated to critical.
const criticalFailureCount = 2

// Analyze groups the unblocked exploit records of a generation by target
// category and turns each group into an issue. Issues are ordered by
// category wire name so reports are stable.
func Analyze(records []*core.ExploitRecord) []core.Issue {
	failures := make(map[core.Category]int)
	for _, rec := range records {
		if rec.Blocked {
			continue
		}
		failures[rec.Category]++
	}
	if len(failures) == 0 {
		return nil
	}

	categories := make([]core.Category, 0, len(failures))
	for cat := range failures {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].String() < categories[j].String()
	})

	issues := make([]core.Issue, 0, len(categories))
	for _, cat := range categories {
		count := failures[cat]
		severity := core.SeverityHigh
		if count > criticalFailureCount {
			severity = core.SeverityCritical
		}
		issues = append(issues, core.Issue{
			Category:     cat,
			Description:  fmt.Sprintf("defense gap in %s: %d attacks bypassed", cat, count),
			Severity:     severity,
			FailureCount: count,
		})
	}
	return issues
}
