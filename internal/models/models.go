// Package models provides data model definitions for the PawTrail core.
package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// UUID is a wrapper around string for UUID type safety.
type UUID string

// Value implements driver.Valuer for UUID.
func (u UUID) Value() (driver.Value, error) {
	return string(u), nil
}

// Scan implements sql.Scanner for UUID.
func (u *UUID) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*u = ""
	case string:
		*u = UUID(v)
	case []byte:
		*u = UUID(v)
	default:
		return fmt.Errorf("cannot scan %T into UUID", value)
	}
	return nil
}

// String returns the string representation of the UUID.
func (u UUID) String() string {
	return string(u)
}

// PetStatus describes where a pet currently stands.
type PetStatus string

const (
	PetStatusHome    PetStatus = "home"
	PetStatusMissing PetStatus = "missing"
	PetStatusFound   PetStatus = "found"
)

// Pet represents a cached pet record.
// Local marks a record whose identity was minted on this device and has not
// yet been confirmed by the backend.
type Pet struct {
	ID              UUID      `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Species         string    `db:"species" json:"species"`
	Breed           string    `db:"breed" json:"breed,omitempty"`
	PhotoURL        string    `db:"photo_url" json:"photo_url,omitempty"`
	Status          PetStatus `db:"status" json:"status"`
	LastSeenAddress string    `db:"last_seen_address" json:"last_seen_address,omitempty"`
	LastSeenLat     *float64  `db:"last_seen_lat" json:"last_seen_lat,omitempty"`
	LastSeenLng     *float64  `db:"last_seen_lng" json:"last_seen_lng,omitempty"`
	Local           bool      `db:"is_local" json:"is_local"`
	LastSyncedAt    int64     `db:"last_synced_at" json:"last_synced_at"`
}

// TableName returns the table name for Pet.
func (Pet) TableName() string {
	return "pets"
}

// Alert represents a cached lost-pet alert.
type Alert struct {
	ID           UUID    `db:"id" json:"id"`
	PetID        UUID    `db:"pet_id" json:"pet_id"`
	Region       string  `db:"region" json:"region"`
	RadiusKm     float64 `db:"radius_km" json:"radius_km"`
	Message      string  `db:"message" json:"message,omitempty"`
	CreatedAt    int64   `db:"created_at" json:"created_at"`
	Local        bool    `db:"is_local" json:"is_local"`
	LastSyncedAt int64   `db:"last_synced_at" json:"last_synced_at"`
}

// TableName returns the table name for Alert.
func (Alert) TableName() string {
	return "alerts"
}

// CreatedAtTime returns the CreatedAt as time.Time.
func (a *Alert) CreatedAtTime() time.Time {
	return time.Unix(a.CreatedAt, 0)
}

// SuccessStory represents a cached reunion story.
type SuccessStory struct {
	ID           UUID   `db:"id" json:"id"`
	PetID        UUID   `db:"pet_id" json:"pet_id"`
	Title        string `db:"title" json:"title"`
	Story        string `db:"story" json:"story"`
	ResolvedAt   int64  `db:"resolved_at" json:"resolved_at"`
	Local        bool   `db:"is_local" json:"is_local"`
	LastSyncedAt int64  `db:"last_synced_at" json:"last_synced_at"`
}

// TableName returns the table name for SuccessStory.
func (SuccessStory) TableName() string {
	return "success_stories"
}
