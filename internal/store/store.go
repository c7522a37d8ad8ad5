package store

import (
	"context"
	"math"
	"time"

	"tank-status-backend/internal/model"
)

// Backend identifies a record-store implementation. Each store reports
// its own tag so callers never need type inspection.
type Backend string

const (
	BackendMemory       Backend = "memory"
	BackendRelational   Backend = "relational"
	BackendDocument     Backend = "document"
	BackendRealtimeTree Backend = "realtimetree"
)

// Store defines the interface for all persistence operations. Every
// backend satisfies the same external contract; callers can only tell
// them apart by Backend() and by behavior under failure.
type Store interface {
	Backend() Backend

	CreateTank(ctx context.Context, tank model.Tank) (model.Tank, error)
	GetTank(ctx context.Context, id int64) (model.Tank, error)
	ListTanks(ctx context.Context) ([]model.Tank, error)
	UpdateTank(ctx context.Context, id int64, patch TankPatch) (model.Tank, error)
	DeleteTank(ctx context.Context, id int64) (bool, error)

	AppendHistory(ctx context.Context, sample model.TankHistory) error
	// ListHistory returns samples newest-first. tankID <= 0 selects all
	// tanks; limit <= 0 means no limit.
	ListHistory(ctx context.Context, tankID int64, limit int) ([]model.TankHistory, error)

	CreateMaintenance(ctx context.Context, task model.MaintenanceTask) (model.MaintenanceTask, error)
	// ListMaintenance returns tasks for one tank, or all when tankID <= 0.
	ListMaintenance(ctx context.Context, tankID int64) ([]model.MaintenanceTask, error)
	UpdateMaintenanceStatus(ctx context.Context, id int64, status string) (model.MaintenanceTask, error)

	Stats(ctx context.Context) (TankStats, error)

	PutSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// TankPatch is a partial tank update. Nil fields are left unchanged by
// the merge.
type TankPatch struct {
	Name              *string    `json:"name"`
	FillLevel         *float64   `json:"fillLevel"`
	Temperature       *float64   `json:"temperature"`
	Capacity          *float64   `json:"capacity"`
	Status            *string    `json:"status"`
	Location          *string    `json:"location"`
	Group             *string    `json:"group"`
	AlertLowThreshold *float64   `json:"alertLowThreshold"`
	TempMaxThreshold  *float64   `json:"tempMaxThreshold"`
	MaintenanceDays   *int       `json:"maintenanceIntervalDays"`
	LastMaintenance   *time.Time `json:"lastMaintenance"`
	NextMaintenance   *time.Time `json:"nextMaintenance"`
	Manufacturer      *string    `json:"manufacturer"`
}

// TankStats is the derived aggregate served by /api/stats.
type TankStats struct {
	TotalCapacity  float64 `json:"totalCapacity"`
	CurrentVolume  float64 `json:"currentVolume"`
	AvgTemperature float64 `json:"avgTemperature"`
	TankCount      int     `json:"tankCount"`
}

// ClampFill clamps a fill level to the valid [0,100] range.
func ClampFill(level float64) float64 {
	return math.Max(0, math.Min(100, level))
}

// applyDefaults fills the documented creation defaults onto a new tank.
func applyDefaults(t *model.Tank, now time.Time) {
	if t.Capacity <= 0 {
		t.Capacity = 1000
	}
	if t.Status == "" {
		t.Status = model.StatusOnline
	}
	t.FillLevel = ClampFill(t.FillLevel)
	t.LastUpdated = now
}

// applyPatch merges non-nil patch fields onto the tank, clamps the fill
// level and restamps lastUpdated.
func applyPatch(t *model.Tank, p TankPatch, now time.Time) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.FillLevel != nil {
		t.FillLevel = ClampFill(*p.FillLevel)
	}
	if p.Temperature != nil {
		t.Temperature = *p.Temperature
	}
	if p.Capacity != nil {
		t.Capacity = *p.Capacity
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.Group != nil {
		t.Group = *p.Group
	}
	if p.AlertLowThreshold != nil {
		t.AlertLowThreshold = *p.AlertLowThreshold
	}
	if p.TempMaxThreshold != nil {
		t.TempMaxThreshold = *p.TempMaxThreshold
	}
	if p.MaintenanceDays != nil {
		t.MaintenanceDays = *p.MaintenanceDays
	}
	if p.LastMaintenance != nil {
		t.LastMaintenance = p.LastMaintenance
	}
	if p.NextMaintenance != nil {
		t.NextMaintenance = p.NextMaintenance
	}
	if p.Manufacturer != nil {
		t.Manufacturer = *p.Manufacturer
	}
	t.LastUpdated = now
}

// computeStats derives the aggregate from a tank list.
func computeStats(tanks []model.Tank) TankStats {
	stats := TankStats{TankCount: len(tanks)}
	var tempSum float64
	for _, t := range tanks {
		stats.TotalCapacity += t.Capacity
		stats.CurrentVolume += t.CurrentVolume()
		tempSum += t.Temperature
	}
	if len(tanks) > 0 {
		stats.AvgTemperature = math.Round(tempSum/float64(len(tanks))*10) / 10
	}
	stats.CurrentVolume = math.Round(stats.CurrentVolume*10) / 10
	return stats
}
