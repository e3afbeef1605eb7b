// Package schedule implements the constraint-propagating greedy generator
// that turns a staff roster into a 28-day shift plan.
package schedule

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shiftwork/scheduling-service/internal/domain/model"
	"github.com/shiftwork/scheduling-service/internal/domain/rules"
)

const (
	// PeriodDays is the length of one scheduling period.
	PeriodDays  = 28
	daysPerWeek = 7
)

// NoValidShiftError reports the first (staff, day) pair for which no candidate
// shift satisfied the rule list. The partial schedule is discarded.
type NoValidShiftError struct {
	StaffID uuid.UUID
	Day     int
}

func (e *NoValidShiftError) Error() string {
	return fmt.Sprintf("no valid shift found for staff %s on day %d", e.StaffID, e.Day)
}

// staffState tracks per-staff counters carried across days.
type staffState struct {
	previousShift model.ShiftType
	weeklyDayOffs int
}

// Generate produces one assignment per staff per day over the 28-day period,
// or a NoValidShiftError if the rule list blocks every candidate somewhere.
//
// Staff processing order alternates forward/reverse by day parity, and the
// candidate shift order swaps Morning/Evening on odd days. Without the
// alternation the first staff in the roster would monopolize Morning shifts
// and the last would absorb the DayOffs. DayOff is always tried last so the
// greedy pass does not consume the weekly allowance early.
//
// The same input always yields identical output.
func Generate(staffIDs []uuid.UUID, periodBegin model.Date, ruleList []rules.Rule) ([]model.NewShiftAssignment, error) {
	states := make(map[uuid.UUID]*staffState, len(staffIDs))
	for _, id := range staffIDs {
		states[id] = &staffState{}
	}

	evenOrder := []model.ShiftType{model.ShiftMorning, model.ShiftEvening, model.ShiftDayOff}
	oddOrder := []model.ShiftType{model.ShiftEvening, model.ShiftMorning, model.ShiftDayOff}

	assignments := make([]model.NewShiftAssignment, 0, len(staffIDs)*PeriodDays)

	for day := 0; day < PeriodDays; day++ {
		date := periodBegin.AddDays(day)
		dayInWeek := day % daysPerWeek
		daysRemainingInWeek := daysPerWeek - 1 - dayInWeek

		if dayInWeek == 0 {
			for _, st := range states {
				st.weeklyDayOffs = 0
			}
		}

		candidates := evenOrder
		if day%2 == 1 {
			candidates = oddOrder
		}

		morningCount := 0
		eveningCount := 0

		for i := 0; i < len(staffIDs); i++ {
			idx := i
			if day%2 == 1 {
				idx = len(staffIDs) - 1 - i
			}
			staffID := staffIDs[idx]
			st := states[staffID]

			assigned := false
			for _, candidate := range candidates {
				ctx := &rules.Context{
					PreviousShift:       st.previousShift,
					DayOffsThisWeek:     st.weeklyDayOffs,
					DaysRemainingInWeek: daysRemainingInWeek,
					MorningCount:        morningCount,
					EveningCount:        eveningCount,
				}
				if !rules.Evaluate(ruleList, ctx, candidate) {
					continue
				}

				switch candidate {
				case model.ShiftMorning:
					morningCount++
				case model.ShiftEvening:
					eveningCount++
				case model.ShiftDayOff:
					st.weeklyDayOffs++
				}
				st.previousShift = candidate

				assignments = append(assignments, model.NewShiftAssignment{
					StaffID:   staffID,
					Date:      date,
					ShiftType: candidate,
				})
				assigned = true
				break
			}

			if !assigned {
				return nil, &NoValidShiftError{StaffID: staffID, Day: day}
			}
		}
	}

	return assignments, nil
}
