package rules

import (
	"github.com/shiftwork/scheduling-service/internal/domain/model"
)

// NoMorningAfterEvening rejects a Morning shift on the day after an Evening shift.
type NoMorningAfterEvening struct{}

// Name implements Rule.
func (NoMorningAfterEvening) Name() string { return "no_morning_after_evening" }

// IsValid implements Rule.
func (NoMorningAfterEvening) IsValid(ctx *Context, candidate model.ShiftType) bool {
	return !(candidate == model.ShiftMorning && ctx.PreviousShift == model.ShiftEvening)
}

// MaxDayOff caps DayOffs per staff per week.
type MaxDayOff struct {
	Max int
}

// Name implements Rule.
func (r MaxDayOff) Name() string { return "max_day_off_per_week" }

// IsValid implements Rule.
func (r MaxDayOff) IsValid(ctx *Context, candidate model.ShiftType) bool {
	if candidate != model.ShiftDayOff {
		return true
	}
	return ctx.DayOffsThisWeek < r.Max
}

// MinDayOff rejects a working shift when taking it would make the weekly
// DayOff minimum unreachable in the days left this week.
type MinDayOff struct {
	Min int
}

// Name implements Rule.
func (r MinDayOff) Name() string { return "min_day_off_per_week" }

// IsValid implements Rule.
func (r MinDayOff) IsValid(ctx *Context, candidate model.ShiftType) bool {
	if candidate == model.ShiftDayOff {
		return true
	}
	return ctx.DayOffsThisWeek+ctx.DaysRemainingInWeek >= r.Min
}

// DailyBalance bounds the per-day imbalance between Morning and Evening shifts.
type DailyBalance struct {
	MaxDiff int
}

// Name implements Rule.
func (r DailyBalance) Name() string { return "max_daily_shift_diff" }

// IsValid implements Rule.
func (r DailyBalance) IsValid(ctx *Context, candidate model.ShiftType) bool {
	m, e := ctx.MorningCount, ctx.EveningCount
	switch candidate {
	case model.ShiftMorning:
		m++
	case model.ShiftEvening:
		e++
	default:
		return true
	}
	diff := m - e
	if diff < 0 {
		diff = -diff
	}
	return diff <= r.MaxDiff
}
