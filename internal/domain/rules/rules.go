// Package rules implements the pluggable constraint predicates the schedule
// generator consults for every candidate shift.
package rules

import (
	"github.com/shiftwork/scheduling-service/internal/domain/model"
)

// Context carries the running state for the staff member being assigned on the
// current day. All counters refer to shifts already committed.
type Context struct {
	// PreviousShift is the shift assigned to this staff on the prior day, or
	// empty on the first day of the period.
	PreviousShift model.ShiftType
	// DayOffsThisWeek counts DayOffs this staff already has in the current
	// 7-day window from period start.
	DayOffsThisWeek int
	// DaysRemainingInWeek counts future days in the current week, excluding today.
	DaysRemainingInWeek int
	// MorningCount tallies Morning shifts committed for today across all staff.
	MorningCount int
	// EveningCount tallies Evening shifts committed for today across all staff.
	EveningCount int
}

// Rule is a pure predicate over (context, candidate shift). A candidate is
// feasible only if every rule in the composed list admits it.
type Rule interface {
	// Name identifies the rule in logs and infeasibility diagnostics.
	Name() string
	// IsValid reports whether the candidate shift is admissible.
	IsValid(ctx *Context, candidate model.ShiftType) bool
}

// Config selects which built-in rules are composed and with which parameters.
// Nil pointers omit the corresponding rule.
type Config struct {
	MinDayOffPerWeek      *int
	MaxDayOffPerWeek      *int
	NoMorningAfterEvening bool
	MaxDailyShiftDiff     *int
}

// Build composes the ordered rule list from the config. Rules whose parameter
// is absent are omitted.
func Build(cfg Config) []Rule {
	var out []Rule
	if cfg.NoMorningAfterEvening {
		out = append(out, NoMorningAfterEvening{})
	}
	if cfg.MaxDayOffPerWeek != nil {
		out = append(out, MaxDayOff{Max: *cfg.MaxDayOffPerWeek})
	}
	if cfg.MinDayOffPerWeek != nil {
		out = append(out, MinDayOff{Min: *cfg.MinDayOffPerWeek})
	}
	if cfg.MaxDailyShiftDiff != nil {
		out = append(out, DailyBalance{MaxDiff: *cfg.MaxDailyShiftDiff})
	}
	return out
}

// Evaluate runs the composed rule list and returns true when every rule admits
// the candidate.
func Evaluate(list []Rule, ctx *Context, candidate model.ShiftType) bool {
	for _, r := range list {
		if !r.IsValid(ctx, candidate) {
			return false
		}
	}
	return true
}
