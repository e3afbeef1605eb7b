// Package model defines the core data types shared across the scheduling service.
package model

import (
	"time"

	"github.com/google/uuid"
)

// StaffStatus represents the lifecycle status of a staff member in the catalog.
type StaffStatus string

const (
	// StaffStatusActive indicates the staff member is schedulable.
	StaffStatusActive StaffStatus = "ACTIVE"
	// StaffStatusInactive indicates the staff member is excluded from scheduling.
	StaffStatusInactive StaffStatus = "INACTIVE"
)

// Valid returns true if the StaffStatus is a known value.
func (s StaffStatus) Valid() bool {
	return s == StaffStatusActive || s == StaffStatusInactive
}

// Staff is a member of the external workforce catalog. The scheduling service
// consumes these read-only from the data service.
type Staff struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Position  string      `json:"position"`
	Status    StaffStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
