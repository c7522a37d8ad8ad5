package store

import (
	"context"
	"fmt"

	"tank-status-backend/internal/model"
)

// sampleTanks are the demo vessels created on first start of an empty
// store.
var sampleTanks = []model.Tank{
	{Name: "Tank A", FillLevel: 65, Temperature: 23.8, Capacity: 2000, Status: model.StatusOnline},
	{Name: "Tank B", FillLevel: 78, Temperature: 24.2, Capacity: 1500, Status: model.StatusOnline},
	{Name: "Tank C", FillLevel: 22, Temperature: 25.7, Capacity: 3000, Status: model.StatusWarning},
	{Name: "Tank D", FillLevel: 43, Temperature: 24.3, Capacity: 1000, Status: model.StatusOnline},
}

// Seed inserts the sample tanks if the store holds no records yet.
func Seed(ctx context.Context, s Store) error {
	tanks, err := s.ListTanks(ctx)
	if err != nil {
		return fmt.Errorf("seed: list tanks: %w", err)
	}
	if len(tanks) > 0 {
		return nil
	}
	for _, tank := range sampleTanks {
		if _, err := s.CreateTank(ctx, tank); err != nil {
			return fmt.Errorf("seed: create %q: %w", tank.Name, err)
		}
	}
	return nil
}
