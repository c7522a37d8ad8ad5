// Package report renders the downloadable CSV report bodies.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"tank-status-backend/internal/model"
)

// Report types accepted by /api/reports/:type.
const (
	TypeStatus      = "status"
	TypeHistory     = "history"
	TypeMaintenance = "maintenance"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Status renders one row per tank with its current readings.
func Status(tanks []model.Tank) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "name", "fillLevel", "temperature", "capacity", "status", "location", "lastUpdated"}); err != nil {
		return nil, err
	}
	for _, t := range tanks {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Name,
			formatFloat(t.FillLevel),
			formatFloat(t.Temperature),
			formatFloat(t.Capacity),
			t.Status,
			t.Location,
			formatTime(t.LastUpdated),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// History renders recorded sensor samples, newest first.
func History(samples []model.TankHistory) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"tankId", "recordedAt", "fillLevel", "temperature", "status"}); err != nil {
		return nil, err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatInt(s.TankID, 10),
			formatTime(s.RecordedAt),
			formatFloat(s.FillLevel),
			formatFloat(s.Temperature),
			s.Status,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Maintenance renders scheduled and historical maintenance tasks.
func Maintenance(tasks []model.MaintenanceTask) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "tankId", "type", "status", "scheduledDate", "completedDate", "technician"}); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		completed := ""
		if t.CompletedDate != nil {
			completed = formatTime(*t.CompletedDate)
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			strconv.FormatInt(t.TankID, 10),
			t.Type,
			t.Status,
			formatTime(t.ScheduledDate),
			completed,
			t.Technician,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Filename suggests a download name for the given report type.
func Filename(reportType string) string {
	return fmt.Sprintf("tank-%s-report-%s.csv", reportType, time.Now().UTC().Format("2006-01-02"))
}
