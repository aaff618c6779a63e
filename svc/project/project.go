package project

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a construction project.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Project is a construction site under SST management.
type Project struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Status      Status    `json:"status"`
	SafetyScore int       `json:"safety_score"`
	Progress    int       `json:"progress"`
	Manager     string    `json:"manager"`

	// Lat/Lng stay nil until the geocode backfill resolves the address.
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location is the subset of project fields shown on the stats map.
type Location struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Status  Status    `json:"status"`
	Lat     *float64  `json:"lat"`
	Lng     *float64  `json:"lng"`
}
