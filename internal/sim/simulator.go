package sim

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"tank-status-backend/config"
	"tank-status-backend/internal/model"
	"tank-status-backend/internal/store"
)

// Broadcaster receives the updated record after a successful tick.
type Broadcaster interface {
	TankUpdated(tank model.Tank)
}

// AlertDispatcher is handed tanks that just crossed into warning.
type AlertDispatcher interface {
	Dispatch(tankID int64)
}

// Service perturbs one randomly chosen tank per tick to emulate live
// sensor drift.
type Service struct {
	cfg    *config.SimulatorConfig
	store  store.Store
	events Broadcaster
	alerts AlertDispatcher
	rng    *rand.Rand
}

// NewService creates the simulator. rng may be nil, in which case a
// time-seeded source is used; tests inject a deterministic one. alerts
// may be nil when push notifications are disabled.
func NewService(cfg *config.SimulatorConfig, s store.Store, events Broadcaster, alerts AlertDispatcher, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		cfg:    cfg,
		store:  s,
		events: events,
		alerts: alerts,
		rng:    rng,
	}
}

// Run starts the tick loop and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Simulator is disabled. Not starting.")
		return
	}
	log.Println("Starting tank drift simulator...")

	s.TickOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Simulator shutting down.")
			return
		case <-timer.C:
			s.TickOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// TickOnce performs one drift cycle. A failed tick is logged and
// skipped; it never stops the loop.
func (s *Service) TickOnce(ctx context.Context) {
	tanks, err := s.store.ListTanks(ctx)
	if err != nil {
		log.Printf("Simulator tick skipped: list tanks: %v", err)
		return
	}
	if len(tanks) == 0 {
		return
	}

	tank := tanks[s.rng.Intn(len(tanks))]

	fillDelta := (s.rng.Float64()*2 - 1) * s.cfg.FillJitter
	tempDelta := (s.rng.Float64()*2 - 1) * s.cfg.TempJitter

	newFill := store.ClampFill(tank.FillLevel + fillDelta)
	newTemp := math.Round((tank.Temperature+tempDelta)*10) / 10

	low := tank.AlertLowThreshold
	if low <= 0 {
		low = s.cfg.LowThreshold
	}
	newStatus := NextStatus(tank.Status, newFill, low, s.cfg.HysteresisBand)

	patch := store.TankPatch{
		FillLevel:   &newFill,
		Temperature: &newTemp,
	}
	if newStatus != tank.Status {
		patch.Status = &newStatus
	}

	updated, err := s.store.UpdateTank(ctx, tank.ID, patch)
	if err != nil {
		log.Printf("Simulator tick skipped: update tank %d: %v", tank.ID, err)
		return
	}

	sample := model.TankHistory{
		TankID:      updated.ID,
		RecordedAt:  updated.LastUpdated,
		FillLevel:   updated.FillLevel,
		Temperature: updated.Temperature,
		Status:      updated.Status,
	}
	if err := s.store.AppendHistory(ctx, sample); err != nil {
		log.Printf("Warning: could not append history for tank %d: %v", updated.ID, err)
	}

	s.events.TankUpdated(updated)

	if tank.Status == model.StatusOnline && updated.Status == model.StatusWarning && s.alerts != nil {
		s.alerts.Dispatch(updated.ID)
	}
}

// NextStatus recomputes a tank's status from its new fill level. A tank
// flips to warning below the low threshold and reverts to online only
// once it crosses back above low+band, which prevents flapping at the
// boundary. Operator-set offline is never overridden.
func NextStatus(current string, fill, low, band float64) string {
	if current == model.StatusOffline {
		return model.StatusOffline
	}
	if fill < low {
		return model.StatusWarning
	}
	if current == model.StatusWarning && fill <= low+band {
		return model.StatusWarning
	}
	return model.StatusOnline
}
