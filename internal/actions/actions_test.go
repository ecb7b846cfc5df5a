// Package actions tests for typed action payloads.
package actions

import (
	"encoding/json"
	"testing"
)

// TestEncodeDecodeRoundTrip verifies each kind survives the persistence
// boundary.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	lat := 40.7128
	lng := -74.006

	reqs := []Request{
		MarkPetLost{PetID: "p1", LastSeenAddress: "5th Ave", Latitude: &lat, Longitude: &lng, Notes: "ran off"},
		MarkPetFound{PetID: "p1", Notes: "home safe"},
		ReportSighting{PetID: "p1", Address: "Park St", Description: "near the pond", SightedAt: 1700000000},
		CreateAlert{LocalID: "local-1", PetID: "p1", Region: "Brooklyn", RadiusKm: 5, Message: "please look out"},
		UpdatePet{PetID: "p1", Name: "Biscuit", Species: "dog"},
	}

	for _, req := range reqs {
		raw, err := Encode(req)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", req.Kind(), err)
		}

		decoded, err := Decode(req.Kind(), raw)
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", req.Kind(), err)
		}

		if decoded.Kind() != req.Kind() {
			t.Errorf("kind = %s, want %s", decoded.Kind(), req.Kind())
		}

		// Compare via re-encoding; the structs have no unexported state.
		reRaw, err := Encode(decoded)
		if err != nil {
			t.Fatalf("re-Encode(%s) failed: %v", req.Kind(), err)
		}
		if string(reRaw) != string(raw) {
			t.Errorf("%s round trip mismatch:\n got %s\nwant %s", req.Kind(), reRaw, raw)
		}
	}
}

// TestDecodeUnknownKind verifies unknown kinds are rejected.
func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode(Kind("teleport_pet"), json.RawMessage(`{}`))
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}

// TestDecodeMalformedPayload verifies garbage payloads are rejected.
func TestDecodeMalformedPayload(t *testing.T) {
	_, err := Decode(KindMarkPetLost, json.RawMessage(`{not json`))
	if err == nil {
		t.Error("expected error for malformed payload")
	}
}

// TestValid verifies the closed kind set.
func TestValid(t *testing.T) {
	for _, k := range []Kind{KindMarkPetLost, KindMarkPetFound, KindReportSighting, KindCreateAlert, KindUpdatePet} {
		if !Valid(k) {
			t.Errorf("Valid(%s) = false, want true", k)
		}
	}
	if Valid(Kind("teleport_pet")) {
		t.Error("Valid(teleport_pet) = true, want false")
	}
}

// TestCreateAlertLocalIDOmitted verifies the placeholder id is omitted when
// empty so online creations carry no local marker.
func TestCreateAlertLocalIDOmitted(t *testing.T) {
	raw, err := Encode(CreateAlert{PetID: "p1", Region: "Queens", RadiusKm: 2})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := m["local_id"]; ok {
		t.Error("empty local_id should be omitted from payload")
	}
}
