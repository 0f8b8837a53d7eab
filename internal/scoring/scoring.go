// Package scoring computes points for terminal task transitions. It is pure:
// callers pass a snapshot and rules, nothing here touches the store.
package scoring

import (
	"time"

	"race-planner/internal/model"
)

// Rules configures point computation per bucket. Injected by the host; the
// engine carries no built-in values beyond DefaultRules.
type Rules struct {
	// Base points awarded on finish, keyed by the task's scoring category.
	Base map[model.Bucket]int `yaml:"base"`
	// LatePenaltyAfterDays is the grace period after the deadline before the
	// lateness penalty applies.
	LatePenaltyAfterDays int `yaml:"latePenaltyAfterDays"`
	// LatePenaltyPoints is added to the penalty when the grace period is
	// exceeded. Normally negative.
	LatePenaltyPoints int `yaml:"latePenaltyPoints"`
	// DNFPenaltyPoints is the full score of a dnf'd task. Normally negative.
	DNFPenaltyPoints int `yaml:"dnfPenaltyPoints"`
}

// DefaultRules returns the stock point values.
func DefaultRules() Rules {
	return Rules{
		Base: map[model.Bucket]int{
			model.BucketPractice:   3,
			model.BucketQualifying: 5,
			model.BucketSprint:     8,
			model.BucketRace:       10,
			model.BucketEndurance:  12,
			model.BucketPaddock:    0,
		},
		LatePenaltyAfterDays: 3,
		LatePenaltyPoints:    -5,
		DNFPenaltyPoints:     -10,
	}
}

// Result is the outcome of scoring one terminal transition.
type Result struct {
	Base    int
	Bonus   int
	Penalty int
	Total   int
}

// Finish scores a finish transition. Lateness is counted in whole days from
// the start of the deadline date; deadline == nil means no penalty possible.
// Bonus is a reserved extension point and stays zero.
func Finish(rules Rules, category model.Bucket, deadline *time.Time, finishedAt time.Time) Result {
	r := Result{Base: rules.Base[category]}
	if deadline != nil {
		if late := LateDays(*deadline, finishedAt); late >= rules.LatePenaltyAfterDays {
			r.Penalty = rules.LatePenaltyPoints
		}
	}
	r.Total = r.Base + r.Bonus + r.Penalty
	return r
}

// DNF scores a dnf transition: no base, no bonus, the dnf penalty as total.
func DNF(rules Rules) Result {
	r := Result{Penalty: rules.DNFPenaltyPoints}
	r.Total = r.Base + r.Bonus + r.Penalty
	return r
}

// LateDays returns how many whole days finishedAt lies past the start of the
// deadline date. Negative when finished before the deadline day.
func LateDays(deadline, finishedAt time.Time) int {
	loc := finishedAt.Location()
	d := deadline.In(loc)
	startOfDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	diff := finishedAt.Sub(startOfDay)
	days := int(diff / (24 * time.Hour))
	if diff < 0 && diff%(24*time.Hour) != 0 {
		days--
	}
	return days
}
