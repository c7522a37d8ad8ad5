package store

import (
	"context"

	"tank-status-backend/internal/model"
)

// stubStore is a placeholder for backends that are selectable but not
// built yet. Every operation fails with ErrNotImplemented.
type stubStore struct {
	backend Backend
}

// NewStubStore creates a placeholder store reporting the given tag.
func NewStubStore(backend Backend) Store {
	return &stubStore{backend: backend}
}

func (s *stubStore) Backend() Backend { return s.backend }

func (s *stubStore) CreateTank(context.Context, model.Tank) (model.Tank, error) {
	return model.Tank{}, ErrNotImplemented
}

func (s *stubStore) GetTank(context.Context, int64) (model.Tank, error) {
	return model.Tank{}, ErrNotImplemented
}

func (s *stubStore) ListTanks(context.Context) ([]model.Tank, error) {
	return nil, ErrNotImplemented
}

func (s *stubStore) UpdateTank(context.Context, int64, TankPatch) (model.Tank, error) {
	return model.Tank{}, ErrNotImplemented
}

func (s *stubStore) DeleteTank(context.Context, int64) (bool, error) {
	return false, ErrNotImplemented
}

func (s *stubStore) AppendHistory(context.Context, model.TankHistory) error {
	return ErrNotImplemented
}

func (s *stubStore) ListHistory(context.Context, int64, int) ([]model.TankHistory, error) {
	return nil, ErrNotImplemented
}

func (s *stubStore) CreateMaintenance(context.Context, model.MaintenanceTask) (model.MaintenanceTask, error) {
	return model.MaintenanceTask{}, ErrNotImplemented
}

func (s *stubStore) ListMaintenance(context.Context, int64) ([]model.MaintenanceTask, error) {
	return nil, ErrNotImplemented
}

func (s *stubStore) UpdateMaintenanceStatus(context.Context, int64, string) (model.MaintenanceTask, error) {
	return model.MaintenanceTask{}, ErrNotImplemented
}

func (s *stubStore) Stats(context.Context) (TankStats, error) {
	return TankStats{}, ErrNotImplemented
}

func (s *stubStore) PutSubscription(context.Context, model.PushSubscription) error {
	return ErrNotImplemented
}

func (s *stubStore) DeleteSubscription(context.Context, string) error {
	return ErrNotImplemented
}

func (s *stubStore) ListSubscriptions(context.Context) ([]model.PushSubscription, error) {
	return nil, ErrNotImplemented
}
