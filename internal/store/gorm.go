package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tank-status-backend/internal/model"
)

// gormStore is the relational backend.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Backend() Backend { return BackendRelational }

// wrapDBErr classifies a gorm error into the store taxonomy.
func wrapDBErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}

func (s *gormStore) CreateTank(ctx context.Context, tank model.Tank) (model.Tank, error) {
	tank.ID = 0 // let the database assign the id
	applyDefaults(&tank, time.Now().UTC())
	if err := s.db.WithContext(ctx).Create(&tank).Error; err != nil {
		return model.Tank{}, wrapDBErr("create tank", err)
	}
	return tank, nil
}

func (s *gormStore) GetTank(ctx context.Context, id int64) (model.Tank, error) {
	var tank model.Tank
	if err := s.db.WithContext(ctx).First(&tank, id).Error; err != nil {
		return model.Tank{}, wrapDBErr("get tank", err)
	}
	return tank, nil
}

func (s *gormStore) ListTanks(ctx context.Context) ([]model.Tank, error) {
	var tanks []model.Tank
	if err := s.db.WithContext(ctx).Order("id").Find(&tanks).Error; err != nil {
		return nil, wrapDBErr("list tanks", err)
	}
	return tanks, nil
}

func (s *gormStore) UpdateTank(ctx context.Context, id int64, patch TankPatch) (model.Tank, error) {
	var tank model.Tank
	// Read-merge-write inside one transaction so a migration to
	// multi-process does not introduce lost updates.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tank, id).Error; err != nil {
			return err
		}
		applyPatch(&tank, patch, time.Now().UTC())
		return tx.Save(&tank).Error
	})
	if err != nil {
		return model.Tank{}, wrapDBErr("update tank", err)
	}
	return tank, nil
}

func (s *gormStore) DeleteTank(ctx context.Context, id int64) (bool, error) {
	existed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Tank{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		existed = true
		// Cascade-detach dependent records.
		if err := tx.Where("tank_id = ?", id).Delete(&model.TankHistory{}).Error; err != nil {
			return err
		}
		return tx.Where("tank_id = ?", id).Delete(&model.MaintenanceTask{}).Error
	})
	if err != nil {
		return false, wrapDBErr("delete tank", err)
	}
	return existed, nil
}

func (s *gormStore) AppendHistory(ctx context.Context, sample model.TankHistory) error {
	sample.ID = 0
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&sample).Error; err != nil {
		return wrapDBErr("append history", err)
	}
	return nil
}

func (s *gormStore) ListHistory(ctx context.Context, tankID int64, limit int) ([]model.TankHistory, error) {
	q := s.db.WithContext(ctx).Order("recorded_at DESC, id DESC")
	if tankID > 0 {
		q = q.Where("tank_id = ?", tankID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var samples []model.TankHistory
	if err := q.Find(&samples).Error; err != nil {
		return nil, wrapDBErr("list history", err)
	}
	return samples, nil
}

func (s *gormStore) CreateMaintenance(ctx context.Context, task model.MaintenanceTask) (model.MaintenanceTask, error) {
	task.ID = 0
	if task.Status == "" {
		task.Status = model.MaintenanceScheduled
	}
	task.CreatedAt = time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tank model.Tank
		if err := tx.Select("id").First(&tank, task.TankID).Error; err != nil {
			return err
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return model.MaintenanceTask{}, wrapDBErr("create maintenance", err)
	}
	return task, nil
}

func (s *gormStore) ListMaintenance(ctx context.Context, tankID int64) ([]model.MaintenanceTask, error) {
	q := s.db.WithContext(ctx).Order("id")
	if tankID > 0 {
		q = q.Where("tank_id = ?", tankID)
	}
	var tasks []model.MaintenanceTask
	if err := q.Find(&tasks).Error; err != nil {
		return nil, wrapDBErr("list maintenance", err)
	}
	return tasks, nil
}

func (s *gormStore) UpdateMaintenanceStatus(ctx context.Context, id int64, status string) (model.MaintenanceTask, error) {
	var task model.MaintenanceTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}
		if !model.MaintenanceTransitionAllowed(task.Status, status) {
			return ErrInvalidTransition
		}
		task.Status = status
		if status == model.MaintenanceCompleted {
			now := time.Now().UTC()
			task.CompletedDate = &now
		}
		return tx.Save(&task).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return model.MaintenanceTask{}, err
		}
		return model.MaintenanceTask{}, wrapDBErr("update maintenance status", err)
	}
	return task, nil
}

func (s *gormStore) Stats(ctx context.Context) (TankStats, error) {
	tanks, err := s.ListTanks(ctx)
	if err != nil {
		return TankStats{}, err
	}
	return computeStats(tanks), nil
}

func (s *gormStore) PutSubscription(ctx context.Context, sub model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(&sub).Error
	if err != nil {
		return wrapDBErr("put subscription", err)
	}
	return nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return wrapDBErr("delete subscription", err)
	}
	return nil
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, wrapDBErr("list subscriptions", err)
	}
	return subs, nil
}
