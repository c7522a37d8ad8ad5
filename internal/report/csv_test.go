package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tank-status-backend/internal/model"
)

func parseCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestStatusReport(t *testing.T) {
	updated := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	body, err := Status([]model.Tank{
		{ID: 1, Name: "Tank A", FillLevel: 65, Temperature: 23.8, Capacity: 2000, Status: model.StatusOnline, Location: "Hall 1", LastUpdated: updated},
		{ID: 2, Name: "Tank C", FillLevel: 22, Temperature: 25.7, Capacity: 3000, Status: model.StatusWarning},
	})
	require.NoError(t, err)

	rows := parseCSV(t, body)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "name", "fillLevel", "temperature", "capacity", "status", "location", "lastUpdated"}, rows[0])
	assert.Equal(t, []string{"1", "Tank A", "65", "23.8", "2000", "online", "Hall 1", "2026-08-30T12:00:00Z"}, rows[1])
	assert.Equal(t, "", rows[2][7], "zero timestamps render empty")
}

func TestStatusReportEmpty(t *testing.T) {
	body, err := Status(nil)
	require.NoError(t, err)
	rows := parseCSV(t, body)
	assert.Len(t, rows, 1, "header only")
}

func TestHistoryReport(t *testing.T) {
	at := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	body, err := History([]model.TankHistory{
		{TankID: 1, RecordedAt: at, FillLevel: 64.5, Temperature: 23.9, Status: model.StatusOnline},
	})
	require.NoError(t, err)

	rows := parseCSV(t, body)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "2026-08-30T09:30:00Z", "64.5", "23.9", "online"}, rows[1])
}

func TestMaintenanceReport(t *testing.T) {
	scheduled := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	completed := scheduled.Add(2 * time.Hour)
	body, err := Maintenance([]model.MaintenanceTask{
		{ID: 1, TankID: 2, Type: "inspection", Status: model.MaintenanceCompleted, ScheduledDate: scheduled, CompletedDate: &completed, Technician: "R. Diaz"},
		{ID: 2, TankID: 2, Type: "cleaning", Status: model.MaintenanceScheduled, ScheduledDate: scheduled},
	})
	require.NoError(t, err)

	rows := parseCSV(t, body)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-09-01T10:00:00Z", rows[1][5])
	assert.Equal(t, "", rows[2][5], "open tasks have no completion date")
}

func TestFilenameCarriesTypeAndDate(t *testing.T) {
	name := Filename(TypeStatus)
	assert.Contains(t, name, "status")
	assert.Contains(t, name, time.Now().UTC().Format("2006-01-02"))
	assert.Contains(t, name, ".csv")
}
