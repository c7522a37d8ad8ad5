package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"tank-status-backend/internal/model"
)

// memoryStore is the in-memory backend: a guarded map keyed by tank id
// with a monotonic counter. Ids are never reused, even after deletes.
type memoryStore struct {
	mu sync.RWMutex

	tanks  map[int64]model.Tank
	nextID int64

	history    []model.TankHistory
	nextHistID int64

	maintenance map[int64]model.MaintenanceTask
	nextMaintID int64

	subscriptions map[string]model.PushSubscription
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		tanks:         make(map[int64]model.Tank),
		nextID:        1,
		nextHistID:    1,
		maintenance:   make(map[int64]model.MaintenanceTask),
		nextMaintID:   1,
		subscriptions: make(map[string]model.PushSubscription),
	}
}

func (s *memoryStore) Backend() Backend { return BackendMemory }

func (s *memoryStore) CreateTank(_ context.Context, tank model.Tank) (model.Tank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tank.ID = s.nextID
	s.nextID++
	applyDefaults(&tank, time.Now().UTC())
	s.tanks[tank.ID] = tank
	return tank, nil
}

func (s *memoryStore) GetTank(_ context.Context, id int64) (model.Tank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tank, ok := s.tanks[id]
	if !ok {
		return model.Tank{}, ErrNotFound
	}
	return tank, nil
}

func (s *memoryStore) ListTanks(_ context.Context) ([]model.Tank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tanks := make([]model.Tank, 0, len(s.tanks))
	for _, t := range s.tanks {
		tanks = append(tanks, t)
	}
	// Monotonic ids give insertion order.
	sort.Slice(tanks, func(i, j int) bool { return tanks[i].ID < tanks[j].ID })
	return tanks, nil
}

func (s *memoryStore) UpdateTank(_ context.Context, id int64, patch TankPatch) (model.Tank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tank, ok := s.tanks[id]
	if !ok {
		return model.Tank{}, ErrNotFound
	}
	applyPatch(&tank, patch, time.Now().UTC())
	s.tanks[id] = tank
	return tank, nil
}

func (s *memoryStore) DeleteTank(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tanks[id]; !ok {
		return false, nil
	}
	delete(s.tanks, id)

	// Cascade-detach dependent records so stale references are never
	// served.
	kept := s.history[:0]
	for _, h := range s.history {
		if h.TankID != id {
			kept = append(kept, h)
		}
	}
	s.history = kept

	for mid, task := range s.maintenance {
		if task.TankID == id {
			delete(s.maintenance, mid)
		}
	}
	return true, nil
}

func (s *memoryStore) AppendHistory(_ context.Context, sample model.TankHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample.ID = s.nextHistID
	s.nextHistID++
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}
	s.history = append(s.history, sample)
	return nil
}

func (s *memoryStore) ListHistory(_ context.Context, tankID int64, limit int) ([]model.TankHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var samples []model.TankHistory
	// Walk backwards: appended order is chronological, result is
	// newest-first.
	for i := len(s.history) - 1; i >= 0; i-- {
		if tankID > 0 && s.history[i].TankID != tankID {
			continue
		}
		samples = append(samples, s.history[i])
		if limit > 0 && len(samples) >= limit {
			break
		}
	}
	return samples, nil
}

func (s *memoryStore) CreateMaintenance(_ context.Context, task model.MaintenanceTask) (model.MaintenanceTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tanks[task.TankID]; !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}
	task.ID = s.nextMaintID
	s.nextMaintID++
	if task.Status == "" {
		task.Status = model.MaintenanceScheduled
	}
	task.CreatedAt = time.Now().UTC()
	s.maintenance[task.ID] = task
	return task, nil
}

func (s *memoryStore) ListMaintenance(_ context.Context, tankID int64) ([]model.MaintenanceTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []model.MaintenanceTask
	for _, t := range s.maintenance {
		if tankID > 0 && t.TankID != tankID {
			continue
		}
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (s *memoryStore) UpdateMaintenanceStatus(_ context.Context, id int64, status string) (model.MaintenanceTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.maintenance[id]
	if !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}
	if !model.MaintenanceTransitionAllowed(task.Status, status) {
		return model.MaintenanceTask{}, ErrInvalidTransition
	}
	task.Status = status
	if status == model.MaintenanceCompleted {
		now := time.Now().UTC()
		task.CompletedDate = &now
	}
	s.maintenance[id] = task
	return task, nil
}

func (s *memoryStore) Stats(ctx context.Context) (TankStats, error) {
	tanks, err := s.ListTanks(ctx)
	if err != nil {
		return TankStats{}, err
	}
	return computeStats(tanks), nil
}

func (s *memoryStore) PutSubscription(_ context.Context, sub model.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.subscriptions[sub.Endpoint]; ok {
		sub.CreatedAt = existing.CreatedAt
	} else if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	s.subscriptions[sub.Endpoint] = sub
	return nil
}

func (s *memoryStore) DeleteSubscription(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subscriptions, endpoint)
	return nil
}

func (s *memoryStore) ListSubscriptions(_ context.Context) ([]model.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]model.PushSubscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Endpoint < subs[j].Endpoint })
	return subs, nil
}
