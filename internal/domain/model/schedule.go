package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle status of a schedule job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusPending indicates a job is waiting to be processed.
	JobStatusPending JobStatus = "PENDING"
	// JobStatusProcessing indicates a background task is generating the schedule.
	JobStatusProcessing JobStatus = "PROCESSING"
	// JobStatusCompleted indicates assignments were generated and persisted.
	JobStatusCompleted JobStatus = "COMPLETED"
	// JobStatusFailed indicates the job failed terminally.
	JobStatusFailed JobStatus = "FAILED"
	// JobStatusWaitingForRetry indicates the job is parked until the data
	// service recovers.
	JobStatusWaitingForRetry JobStatus = "WAITING_FOR_RETRY"
)

// Valid returns true if the JobStatus is a known value.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusWaitingForRetry:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToUpper(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", string(text))
	}
	*s = v
	return nil
}

// ShiftType is the atom of assignment: one shift slot on one day.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ShiftType string

const (
	// ShiftMorning is the morning shift.
	ShiftMorning ShiftType = "MORNING"
	// ShiftEvening is the evening shift.
	ShiftEvening ShiftType = "EVENING"
	// ShiftDayOff marks a day with no shift.
	ShiftDayOff ShiftType = "DAY_OFF"
)

// Valid returns true if the ShiftType is a known value.
func (s ShiftType) Valid() bool {
	return s == ShiftMorning || s == ShiftEvening || s == ShiftDayOff
}

// UnmarshalText implements encoding.TextUnmarshaler for ShiftType.
func (s *ShiftType) UnmarshalText(text []byte) error {
	v := ShiftType(strings.ToUpper(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid ShiftType: %q", string(text))
	}
	*s = v
	return nil
}

// ScheduleJob is a durable record of one schedule-generation request.
type ScheduleJob struct {
	ID              uuid.UUID `json:"id"`
	StaffGroupID    uuid.UUID `json:"staff_group_id"`
	PeriodBeginDate Date      `json:"period_begin_date"`
	Status          JobStatus `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ShiftAssignment is one persisted (staff, date, shift) cell of a schedule.
type ShiftAssignment struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	StaffID   uuid.UUID `json:"staff_id"`
	Date      Date      `json:"date"`
	ShiftType ShiftType `json:"shift_type"`
}

// NewShiftAssignment is a shift assignment before it has a database-generated ID.
type NewShiftAssignment struct {
	StaffID   uuid.UUID `json:"staff_id"`
	Date      Date      `json:"date"`
	ShiftType ShiftType `json:"shift_type"`
}

// ScheduleResult is the composite payload returned for a completed job.
type ScheduleResult struct {
	ScheduleID      uuid.UUID         `json:"schedule_id"`
	PeriodBeginDate Date              `json:"period_begin_date"`
	StaffGroupID    uuid.UUID         `json:"staff_group_id"`
	Assignments     []ShiftAssignment `json:"assignments"`
}
