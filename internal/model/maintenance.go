package model

import "time"

// Maintenance task statuses. Completed and cancelled are terminal.
const (
	MaintenanceScheduled  = "scheduled"
	MaintenanceInProgress = "in-progress"
	MaintenanceCompleted  = "completed"
	MaintenanceCancelled  = "cancelled"
)

// MaintenanceTask is a scheduled or recorded maintenance entry for a tank.
type MaintenanceTask struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TankID        int64      `gorm:"not null;index" json:"tankId"`
	Type          string     `gorm:"size:128;not null" json:"type"`
	Status        string     `gorm:"size:32;not null;default:scheduled" json:"status"`
	ScheduledDate time.Time  `gorm:"not null" json:"scheduledDate"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	Technician    string     `gorm:"size:256" json:"technician,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// MaintenanceTransitionAllowed reports whether a task may move from one
// status to another. scheduled -> in-progress -> completed|cancelled;
// scheduled may also be completed or cancelled directly. Terminal
// states never transition.
func MaintenanceTransitionAllowed(from, to string) bool {
	switch from {
	case MaintenanceScheduled:
		return to == MaintenanceInProgress || to == MaintenanceCompleted || to == MaintenanceCancelled
	case MaintenanceInProgress:
		return to == MaintenanceCompleted || to == MaintenanceCancelled
	default:
		return false
	}
}
