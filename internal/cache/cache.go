// Package cache provides the local read model: the last-known-good copy of
// remote records, served while offline. The cache is a read-through mirror,
// not a source of truth; a later upsert always wins.
package cache

import (
	"database/sql"
	"time"

	apperrors "github.com/hylee/pawtrail/internal/errors"
	"github.com/hylee/pawtrail/internal/models"
)

// Store persists cached records in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a cache store on top of an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// stamp marks a record as synced now when no explicit stamp is present.
func stamp(lastSyncedAt int64) int64 {
	if lastSyncedAt != 0 {
		return lastSyncedAt
	}
	return time.Now().Unix()
}

// =====================================================
// Pet operations
// =====================================================

// UpsertPet inserts or replaces a pet by primary key.
func (s *Store) UpsertPet(pet *models.Pet) error {
	pet.LastSyncedAt = stamp(pet.LastSyncedAt)
	query := `
	INSERT INTO pets (id, name, species, breed, photo_url, status,
		last_seen_address, last_seen_lat, last_seen_lng, is_local, last_synced_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name, species = excluded.species, breed = excluded.breed,
		photo_url = excluded.photo_url, status = excluded.status,
		last_seen_address = excluded.last_seen_address,
		last_seen_lat = excluded.last_seen_lat, last_seen_lng = excluded.last_seen_lng,
		is_local = excluded.is_local, last_synced_at = excluded.last_synced_at
	`
	_, err := s.db.Exec(query, pet.ID, pet.Name, pet.Species, pet.Breed, pet.PhotoURL,
		pet.Status, pet.LastSeenAddress, nullFloat(pet.LastSeenLat), nullFloat(pet.LastSeenLng),
		pet.Local, pet.LastSyncedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCache, "failed to upsert pet", err)
	}
	return nil
}

// GetPet retrieves a single cached pet.
func (s *Store) GetPet(id string) (*models.Pet, error) {
	query := petColumns + ` WHERE id = ?`
	pet, err := scanPet(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, "pet not cached")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCache, "failed to get pet", err)
	}
	return pet, nil
}

// ListPets returns all cached pets ordered by name.
func (s *Store) ListPets() ([]*models.Pet, error) {
	query := petColumns + ` ORDER BY name ASC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCache, "failed to list pets", err)
	}
	defer rows.Close()

	var pets []*models.Pet
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCache, "failed to scan pet", err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCache, "failed to iterate pets", err)
	}
	return pets, nil
}

// DeletePet removes a single cached pet.
func (s *Store) DeletePet(id string) error {
	if _, err := s.db.Exec(`DELETE FROM pets WHERE id = ?`, id); err != nil {
		return apperrors.Wrap(apperrors.ErrCache, "failed to delete pet", err)
	}
	return nil
}

// =====================================================
// Alert operations
// =====================================================

// UpsertAlert inserts or replaces an alert by primary key.
func (s *Store) UpsertAlert(alert *models.Alert) error {
	alert.LastSyncedAt = stamp(alert.LastSyncedAt)
	if alert.CreatedAt == 0 {
		alert.CreatedAt = time.Now().Unix()
	}
	query := `
	INSERT INTO alerts (id, pet_id, region, radius_km, message, created_at, is_local, last_synced_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		pet_id = excluded.pet_id, region = excluded.region, radius_km = excluded.radius_km,
		message = excluded.message, created_at = excluded.created_at,
		is_local = excluded.is_local, last_synced_at = excluded.last_synced_at
	`
	_, err := s.db.Exec(query, alert.ID, alert.PetID, alert.Region, alert.RadiusKm,
		alert.Message, alert.CreatedAt, alert.Local, alert.LastSyncedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCache, "failed to upsert alert", err)
	}
	return nil
}

// GetAlert retrieves a single cached alert.
func (s *Store) GetAlert(id string) (*models.Alert, error) {
	query := alertColumns + ` WHERE id = ?`
	alert, err := scanAlert(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, "alert not cached")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCache, "failed to get alert", err)
	}
	return alert, nil
}

// ListAlerts returns all cached alerts, most recent first.
func (s *Store) ListAlerts() ([]*models.Alert, error) {
	query := alertColumns + ` ORDER BY created_at DESC, id ASC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCache, "failed to list alerts", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCache, "failed to scan alert", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCache, "failed to iterate alerts", err)
	}
	return alerts, nil
}

// DeleteAlert removes a single cached alert. Used to discard placeholders
// once the authoritative record arrives.
func (s *Store) DeleteAlert(id string) error {
	if _, err := s.db.Exec(`DELETE FROM alerts WHERE id = ?`, id); err != nil {
		return apperrors.Wrap(apperrors.ErrCache, "failed to delete alert", err)
	}
	return nil
}

// =====================================================
// Success story operations
// =====================================================

// UpsertSuccessStory inserts or replaces a success story by primary key.
func (s *Store) UpsertSuccessStory(story *models.SuccessStory) error {
	story.LastSyncedAt = stamp(story.LastSyncedAt)
	query := `
	INSERT INTO success_stories (id, pet_id, title, story, resolved_at, is_local, last_synced_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		pet_id = excluded.pet_id, title = excluded.title, story = excluded.story,
		resolved_at = excluded.resolved_at, is_local = excluded.is_local,
		last_synced_at = excluded.last_synced_at
	`
	_, err := s.db.Exec(query, story.ID, story.PetID, story.Title, story.Story,
		story.ResolvedAt, story.Local, story.LastSyncedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCache, "failed to upsert success story", err)
	}
	return nil
}

// ListSuccessStories returns all cached stories, most recently resolved first.
func (s *Store) ListSuccessStories() ([]*models.SuccessStory, error) {
	query := `
	SELECT id, pet_id, title, story, resolved_at, is_local, last_synced_at
	FROM success_stories ORDER BY resolved_at DESC, id ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCache, "failed to list success stories", err)
	}
	defer rows.Close()

	var stories []*models.SuccessStory
	for rows.Next() {
		var st models.SuccessStory
		if err := rows.Scan(&st.ID, &st.PetID, &st.Title, &st.Story,
			&st.ResolvedAt, &st.Local, &st.LastSyncedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCache, "failed to scan success story", err)
		}
		stories = append(stories, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCache, "failed to iterate success stories", err)
	}
	return stories, nil
}

// DeleteSuccessStory removes a single cached story.
func (s *Store) DeleteSuccessStory(id string) error {
	if _, err := s.db.Exec(`DELETE FROM success_stories WHERE id = ?`, id); err != nil {
		return apperrors.Wrap(apperrors.ErrCache, "failed to delete success story", err)
	}
	return nil
}

// =====================================================
// Scan helpers
// =====================================================

const petColumns = `
	SELECT id, name, species, breed, photo_url, status,
		   last_seen_address, last_seen_lat, last_seen_lng, is_local, last_synced_at
	FROM pets`

const alertColumns = `
	SELECT id, pet_id, region, radius_km, message, created_at, is_local, last_synced_at
	FROM alerts`

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPet(row scanner) (*models.Pet, error) {
	var pet models.Pet
	var lat, lng sql.NullFloat64
	err := row.Scan(&pet.ID, &pet.Name, &pet.Species, &pet.Breed, &pet.PhotoURL,
		&pet.Status, &pet.LastSeenAddress, &lat, &lng, &pet.Local, &pet.LastSyncedAt)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		pet.LastSeenLat = &lat.Float64
	}
	if lng.Valid {
		pet.LastSeenLng = &lng.Float64
	}
	return &pet, nil
}

func scanAlert(row scanner) (*models.Alert, error) {
	var alert models.Alert
	err := row.Scan(&alert.ID, &alert.PetID, &alert.Region, &alert.RadiusKm,
		&alert.Message, &alert.CreatedAt, &alert.Local, &alert.LastSyncedAt)
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
