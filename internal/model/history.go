package model

import "time"

// TankHistory is one recorded sensor sample for a tank. Samples are
// appended on each simulator persist and never mutated.
type TankHistory struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TankID      int64     `gorm:"not null;index" json:"tankId"`
	RecordedAt  time.Time `gorm:"not null;index" json:"recordedAt"`
	FillLevel   float64   `gorm:"not null" json:"fillLevel"`
	Temperature float64   `gorm:"not null" json:"temperature"`
	Status      string    `gorm:"size:32;not null" json:"status"`
}
