// Package cache tests for the local read model.
package cache

import (
	"testing"

	"github.com/hylee/pawtrail/internal/db"
	apperrors "github.com/hylee/pawtrail/internal/errors"
	"github.com/hylee/pawtrail/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewStore(database.DB)
}

// TestUpsertPetInsertAndReplace verifies last-writer-wins semantics.
func TestUpsertPetInsertAndReplace(t *testing.T) {
	s := setupStore(t)

	pet := &models.Pet{ID: "p1", Name: "Biscuit", Species: "dog", Status: models.PetStatusHome}
	if err := s.UpsertPet(pet); err != nil {
		t.Fatalf("UpsertPet failed: %v", err)
	}

	pet.Status = models.PetStatusMissing
	pet.LastSeenAddress = "Test Street"
	if err := s.UpsertPet(pet); err != nil {
		t.Fatalf("UpsertPet (replace) failed: %v", err)
	}

	got, err := s.GetPet("p1")
	if err != nil {
		t.Fatalf("GetPet failed: %v", err)
	}
	if got.Status != models.PetStatusMissing {
		t.Errorf("status = %s, want missing", got.Status)
	}
	if got.LastSeenAddress != "Test Street" {
		t.Errorf("lastSeenAddress = %q, want %q", got.LastSeenAddress, "Test Street")
	}
	if got.LastSyncedAt == 0 {
		t.Error("lastSyncedAt should be stamped")
	}
}

// TestGetPetNotCached verifies the not-found code.
func TestGetPetNotCached(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetPet("nope")
	if err == nil {
		t.Fatal("expected error for uncached pet")
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("error code = %v, want NOT_FOUND", err)
	}
}

// TestListPetsOrderedByName verifies the stable read order for pets.
func TestListPetsOrderedByName(t *testing.T) {
	s := setupStore(t)

	for _, name := range []string{"Ziggy", "Apollo", "Misha"} {
		if err := s.UpsertPet(&models.Pet{ID: models.UUID("pet-" + name), Name: name, Status: models.PetStatusHome}); err != nil {
			t.Fatalf("UpsertPet failed: %v", err)
		}
	}

	pets, err := s.ListPets()
	if err != nil {
		t.Fatalf("ListPets failed: %v", err)
	}
	if len(pets) != 3 {
		t.Fatalf("count = %d, want 3", len(pets))
	}

	want := []string{"Apollo", "Misha", "Ziggy"}
	for i, pet := range pets {
		if pet.Name != want[i] {
			t.Errorf("pets[%d] = %s, want %s", i, pet.Name, want[i])
		}
	}
}

// TestPetCoordinates verifies nullable coordinates survive a round trip.
func TestPetCoordinates(t *testing.T) {
	s := setupStore(t)

	lat, lng := 51.5072, -0.1276
	if err := s.UpsertPet(&models.Pet{ID: "p1", Name: "Nimbus", Status: models.PetStatusMissing,
		LastSeenLat: &lat, LastSeenLng: &lng}); err != nil {
		t.Fatalf("UpsertPet failed: %v", err)
	}
	if err := s.UpsertPet(&models.Pet{ID: "p2", Name: "Orbit", Status: models.PetStatusHome}); err != nil {
		t.Fatalf("UpsertPet failed: %v", err)
	}

	withCoords, _ := s.GetPet("p1")
	if withCoords.LastSeenLat == nil || *withCoords.LastSeenLat != lat {
		t.Errorf("lastSeenLat = %v, want %v", withCoords.LastSeenLat, lat)
	}

	withoutCoords, _ := s.GetPet("p2")
	if withoutCoords.LastSeenLat != nil {
		t.Errorf("lastSeenLat = %v, want nil", withoutCoords.LastSeenLat)
	}
}

// TestAlertsOrderedByRecency verifies alerts list newest-first.
func TestAlertsOrderedByRecency(t *testing.T) {
	s := setupStore(t)

	olds := &models.Alert{ID: "a1", PetID: "p1", Region: "North", CreatedAt: 1000}
	news := &models.Alert{ID: "a2", PetID: "p1", Region: "South", CreatedAt: 2000}
	if err := s.UpsertAlert(olds); err != nil {
		t.Fatalf("UpsertAlert failed: %v", err)
	}
	if err := s.UpsertAlert(news); err != nil {
		t.Fatalf("UpsertAlert failed: %v", err)
	}

	alerts, err := s.ListAlerts()
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("count = %d, want 2", len(alerts))
	}
	if alerts[0].ID != "a2" || alerts[1].ID != "a1" {
		t.Errorf("order = [%s, %s], want [a2, a1]", alerts[0].ID, alerts[1].ID)
	}
}

// TestPlaceholderAlertLifecycle verifies a local placeholder can be
// inserted, observed, and superseded.
func TestPlaceholderAlertLifecycle(t *testing.T) {
	s := setupStore(t)

	placeholder := &models.Alert{ID: "local-1", PetID: "p1", Region: "East", Local: true}
	if err := s.UpsertAlert(placeholder); err != nil {
		t.Fatalf("UpsertAlert failed: %v", err)
	}

	got, err := s.GetAlert("local-1")
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	if !got.Local {
		t.Error("placeholder should be marked local")
	}

	// Supersede: drop the placeholder, insert the authoritative record.
	if err := s.DeleteAlert("local-1"); err != nil {
		t.Fatalf("DeleteAlert failed: %v", err)
	}
	if err := s.UpsertAlert(&models.Alert{ID: "srv-9", PetID: "p1", Region: "East"}); err != nil {
		t.Fatalf("UpsertAlert failed: %v", err)
	}

	alerts, _ := s.ListAlerts()
	if len(alerts) != 1 {
		t.Fatalf("count = %d, want 1", len(alerts))
	}
	if alerts[0].ID != "srv-9" || alerts[0].Local {
		t.Errorf("surviving alert = %+v, want authoritative srv-9", alerts[0])
	}
}

// TestSuccessStoriesOrderedByResolvedAt verifies story recency ordering.
func TestSuccessStoriesOrderedByResolvedAt(t *testing.T) {
	s := setupStore(t)

	s.UpsertSuccessStory(&models.SuccessStory{ID: "s1", PetID: "p1", Title: "Home again", ResolvedAt: 100})
	s.UpsertSuccessStory(&models.SuccessStory{ID: "s2", PetID: "p2", Title: "Found at the park", ResolvedAt: 200})

	stories, err := s.ListSuccessStories()
	if err != nil {
		t.Fatalf("ListSuccessStories failed: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("count = %d, want 2", len(stories))
	}
	if stories[0].ID != "s2" {
		t.Errorf("stories[0] = %s, want s2", stories[0].ID)
	}
}

// TestDeletePet verifies single-record removal.
func TestDeletePet(t *testing.T) {
	s := setupStore(t)

	s.UpsertPet(&models.Pet{ID: "p1", Name: "Biscuit", Status: models.PetStatusHome})
	if err := s.DeletePet("p1"); err != nil {
		t.Fatalf("DeletePet failed: %v", err)
	}

	if _, err := s.GetPet("p1"); err == nil {
		t.Error("expected pet to be gone")
	}
}
