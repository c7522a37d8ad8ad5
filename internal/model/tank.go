package model

import "time"

// Tank status values.
const (
	StatusOnline  = "online"
	StatusWarning = "warning"
	StatusOffline = "offline"
)

// ValidStatus reports whether s is a recognized tank status.
func ValidStatus(s string) bool {
	return s == StatusOnline || s == StatusWarning || s == StatusOffline
}

// Tank represents one monitored storage vessel.
type Tank struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	FillLevel   float64   `gorm:"not null" json:"fillLevel"` // percentage, 0-100
	Temperature float64   `gorm:"not null" json:"temperature"`
	Capacity    float64   `gorm:"not null;default:1000" json:"capacity"` // liters
	Status      string    `gorm:"size:32;not null;default:online" json:"status"`
	LastUpdated time.Time `gorm:"not null" json:"lastUpdated"`

	// Descriptive attributes; these never participate in the
	// mutation/broadcast invariants.
	Location          string     `gorm:"size:256" json:"location,omitempty"`
	Group             string     `gorm:"size:128;column:tank_group" json:"group,omitempty"`
	AlertLowThreshold float64    `json:"alertLowThreshold,omitempty"` // per-tank override, 0 = use default
	TempMaxThreshold  float64    `json:"tempMaxThreshold,omitempty"`
	MaintenanceDays   int        `json:"maintenanceIntervalDays,omitempty"`
	LastMaintenance   *time.Time `json:"lastMaintenance,omitempty"`
	NextMaintenance   *time.Time `json:"nextMaintenance,omitempty"`
	Manufacturer      string     `gorm:"size:256" json:"manufacturer,omitempty"`
}

// CurrentVolume is the held volume in liters derived from the fill
// percentage and the capacity.
func (t Tank) CurrentVolume() float64 {
	return t.FillLevel / 100 * t.Capacity
}
