package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tank-status-backend/internal/model"
)

var testDBSeq atomic.Int64

// Each test gets its own named in-memory database; a bare ":memory:"
// DSN would give every pooled connection a different database.
func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Tank{},
		&model.TankHistory{},
		&model.MaintenanceTask{},
		&model.PushSubscription{},
	))
	return NewGormStore(db)
}

// Both full backends must satisfy byte-for-byte the same external
// contract; the tests run against each.
func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("relational", func(t *testing.T) {
		fn(t, newSQLiteStore(t))
	})
}

func TestCreateReadRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		created, err := s.CreateTank(ctx, model.Tank{
			Name:        "Tank A",
			FillLevel:   65,
			Temperature: 23.8,
			Capacity:    2000,
			Status:      model.StatusOnline,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.False(t, created.LastUpdated.IsZero())

		got, err := s.GetTank(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, created.FillLevel, got.FillLevel)
		assert.Equal(t, created.Temperature, got.Temperature)
		assert.Equal(t, created.Capacity, got.Capacity)
		assert.Equal(t, created.Status, got.Status)
	})
}

func TestCreateDefaults(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		created, err := s.CreateTank(ctx, model.Tank{Name: "Bare"})
		require.NoError(t, err)
		assert.Equal(t, float64(1000), created.Capacity)
		assert.Equal(t, model.StatusOnline, created.Status)
		assert.Equal(t, float64(0), created.FillLevel)
	})
}

func TestIDsAreMonotonicAndNeverReused(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		first, err := s.CreateTank(ctx, model.Tank{Name: "one"})
		require.NoError(t, err)
		second, err := s.CreateTank(ctx, model.Tank{Name: "two"})
		require.NoError(t, err)
		assert.Greater(t, second.ID, first.ID)

		existed, err := s.DeleteTank(ctx, second.ID)
		require.NoError(t, err)
		assert.True(t, existed)

		third, err := s.CreateTank(ctx, model.Tank{Name: "three"})
		require.NoError(t, err)
		assert.Greater(t, third.ID, second.ID, "deleted ids must never be reused")
	})
}

func TestUpdatePartialMerge(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		created, err := s.CreateTank(ctx, model.Tank{
			Name:        "Tank B",
			FillLevel:   78,
			Temperature: 24.2,
			Capacity:    1500,
			Location:    "Hall 2",
		})
		require.NoError(t, err)

		newFill := 50.0
		updated, err := s.UpdateTank(ctx, created.ID, TankPatch{FillLevel: &newFill})
		require.NoError(t, err)

		assert.Equal(t, 50.0, updated.FillLevel)
		// Fields absent from the patch stay untouched.
		assert.Equal(t, "Tank B", updated.Name)
		assert.Equal(t, 24.2, updated.Temperature)
		assert.Equal(t, 1500.0, updated.Capacity)
		assert.Equal(t, "Hall 2", updated.Location)
		assert.False(t, updated.LastUpdated.Before(created.LastUpdated))
	})
}

func TestUpdateClampsFillLevel(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		created, err := s.CreateTank(ctx, model.Tank{Name: "Clamped", FillLevel: 50})
		require.NoError(t, err)

		over := 180.0
		updated, err := s.UpdateTank(ctx, created.ID, TankPatch{FillLevel: &over})
		require.NoError(t, err)
		assert.Equal(t, 100.0, updated.FillLevel)

		under := -42.0
		updated, err = s.UpdateTank(ctx, created.ID, TankPatch{FillLevel: &under})
		require.NoError(t, err)
		assert.Equal(t, 0.0, updated.FillLevel)
	})
}

func TestNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.GetTank(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)

		fill := 10.0
		_, err = s.UpdateTank(ctx, 9999, TankPatch{FillLevel: &fill})
		assert.ErrorIs(t, err, ErrNotFound)

		existed, err := s.DeleteTank(ctx, 9999)
		require.NoError(t, err)
		assert.False(t, existed)
	})
}

func TestDeleteThenRead(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		created, err := s.CreateTank(ctx, model.Tank{Name: "Doomed"})
		require.NoError(t, err)

		existed, err := s.DeleteTank(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, existed)

		_, err = s.GetTank(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteCascadeDetachesDependents(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		tank, err := s.CreateTank(ctx, model.Tank{Name: "Parent"})
		require.NoError(t, err)
		other, err := s.CreateTank(ctx, model.Tank{Name: "Bystander"})
		require.NoError(t, err)

		require.NoError(t, s.AppendHistory(ctx, model.TankHistory{TankID: tank.ID, FillLevel: 40, Status: model.StatusOnline}))
		require.NoError(t, s.AppendHistory(ctx, model.TankHistory{TankID: other.ID, FillLevel: 60, Status: model.StatusOnline}))

		_, err = s.CreateMaintenance(ctx, model.MaintenanceTask{
			TankID:        tank.ID,
			Type:          "inspection",
			ScheduledDate: time.Now().Add(24 * time.Hour),
		})
		require.NoError(t, err)

		existed, err := s.DeleteTank(ctx, tank.ID)
		require.NoError(t, err)
		require.True(t, existed)

		samples, err := s.ListHistory(ctx, 0, 0)
		require.NoError(t, err)
		for _, sample := range samples {
			assert.NotEqual(t, tank.ID, sample.TankID, "stale history references must not be served")
		}

		tasks, err := s.ListMaintenance(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestListHistoryNewestFirstWithLimit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		tank, err := s.CreateTank(ctx, model.Tank{Name: "Sampled"})
		require.NoError(t, err)

		base := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < 5; i++ {
			require.NoError(t, s.AppendHistory(ctx, model.TankHistory{
				TankID:      tank.ID,
				RecordedAt:  base.Add(time.Duration(i) * time.Minute),
				FillLevel:   float64(40 + i),
				Temperature: 20,
				Status:      model.StatusOnline,
			}))
		}

		samples, err := s.ListHistory(ctx, tank.ID, 3)
		require.NoError(t, err)
		require.Len(t, samples, 3)
		assert.Equal(t, 44.0, samples[0].FillLevel)
		assert.Equal(t, 43.0, samples[1].FillLevel)
		assert.Equal(t, 42.0, samples[2].FillLevel)
	})
}

func TestMaintenanceStatusTransitions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		tank, err := s.CreateTank(ctx, model.Tank{Name: "Serviced"})
		require.NoError(t, err)

		task, err := s.CreateMaintenance(ctx, model.MaintenanceTask{
			TankID:        tank.ID,
			Type:          "cleaning",
			ScheduledDate: time.Now().Add(48 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, model.MaintenanceScheduled, task.Status)

		task, err = s.UpdateMaintenanceStatus(ctx, task.ID, model.MaintenanceInProgress)
		require.NoError(t, err)
		assert.Equal(t, model.MaintenanceInProgress, task.Status)

		task, err = s.UpdateMaintenanceStatus(ctx, task.ID, model.MaintenanceCompleted)
		require.NoError(t, err)
		assert.Equal(t, model.MaintenanceCompleted, task.Status)
		require.NotNil(t, task.CompletedDate)

		// Completed is terminal.
		_, err = s.UpdateMaintenanceStatus(ctx, task.ID, model.MaintenanceInProgress)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestMaintenanceForUnknownTank(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.CreateMaintenance(ctx, model.MaintenanceTask{
			TankID:        777,
			Type:          "inspection",
			ScheduledDate: time.Now(),
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStats(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		empty, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, TankStats{}, empty)

		_, err = s.CreateTank(ctx, model.Tank{Name: "A", FillLevel: 50, Temperature: 20, Capacity: 2000})
		require.NoError(t, err)
		_, err = s.CreateTank(ctx, model.Tank{Name: "B", FillLevel: 25, Temperature: 21, Capacity: 1000})
		require.NoError(t, err)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3000.0, stats.TotalCapacity)
		assert.Equal(t, 1250.0, stats.CurrentVolume) // 1000 + 250
		assert.Equal(t, 20.5, stats.AvgTemperature)
		assert.Equal(t, 2, stats.TankCount)
	})
}

func TestSubscriptionLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		sub := model.PushSubscription{
			Endpoint: "https://example.com/push/abc",
			P256DH:   "key",
			Auth:     "auth",
		}
		require.NoError(t, s.PutSubscription(ctx, sub))

		// Replacing the same endpoint updates the keys.
		sub.P256DH = "rotated"
		require.NoError(t, s.PutSubscription(ctx, sub))

		subs, err := s.ListSubscriptions(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "rotated", subs[0].P256DH)

		require.NoError(t, s.DeleteSubscription(ctx, sub.Endpoint))
		subs, err = s.ListSubscriptions(ctx)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})
}

func TestListTanksInsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		names := []string{"first", "second", "third"}
		for _, n := range names {
			_, err := s.CreateTank(ctx, model.Tank{Name: n})
			require.NoError(t, err)
		}

		tanks, err := s.ListTanks(ctx)
		require.NoError(t, err)
		require.Len(t, tanks, 3)
		for i, n := range names {
			assert.Equal(t, n, tanks[i].Name)
		}
	})
}

func TestSeedOnlyPopulatesEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, Seed(ctx, s))
	tanks, err := s.ListTanks(ctx)
	require.NoError(t, err)
	require.Len(t, tanks, 4)
	assert.Equal(t, "Tank A", tanks[0].Name)
	assert.Equal(t, model.StatusWarning, tanks[2].Status)

	// A second seed must not duplicate.
	require.NoError(t, Seed(ctx, s))
	tanks, err = s.ListTanks(ctx)
	require.NoError(t, err)
	assert.Len(t, tanks, 4)
}

func TestBackendTags(t *testing.T) {
	assert.Equal(t, BackendMemory, NewMemoryStore().Backend())
	assert.Equal(t, BackendDocument, NewStubStore(BackendDocument).Backend())
	assert.Equal(t, BackendRealtimeTree, NewStubStore(BackendRealtimeTree).Backend())
}

func TestStubBackendFailsEveryOperation(t *testing.T) {
	ctx := context.Background()
	s := NewStubStore(BackendDocument)

	_, err := s.CreateTank(ctx, model.Tank{Name: "x"})
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = s.GetTank(ctx, 1)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = s.ListTanks(ctx)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = s.DeleteTank(ctx, 1)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = s.Stats(ctx)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestOpenSelectsBackend(t *testing.T) {
	s, err := Open("memory", nil)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, s.Backend())

	s, err = Open("document", nil)
	require.NoError(t, err)
	assert.Equal(t, BackendDocument, s.Backend())

	_, err = Open("relational", nil)
	assert.Error(t, err, "relational backend requires a database connection")

	_, err = Open("cassandra", nil)
	assert.Error(t, err)
}
