// Package actions defines the closed set of mutation requests that can be
// queued for offline replay. Each kind has its own typed request struct;
// JSON appears only at the persistence boundary, so replay dispatch stays
// exhaustive-checked instead of poking at an opaque map.
package actions

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a mutation request type.
type Kind string

const (
	KindMarkPetLost    Kind = "mark_pet_lost"
	KindMarkPetFound   Kind = "mark_pet_found"
	KindReportSighting Kind = "report_sighting"
	KindCreateAlert    Kind = "create_alert"
	KindUpdatePet      Kind = "update_pet"
)

// Valid reports whether k is a known action kind.
func Valid(k Kind) bool {
	switch k {
	case KindMarkPetLost, KindMarkPetFound, KindReportSighting, KindCreateAlert, KindUpdatePet:
		return true
	}
	return false
}

// Request is a typed mutation request. Exactly one struct implements it per
// Kind.
type Request interface {
	Kind() Kind
}

// MarkPetLost reports a pet missing, optionally with where it was last seen.
type MarkPetLost struct {
	PetID           string   `json:"pet_id"`
	LastSeenAddress string   `json:"last_seen_address,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// Kind implements Request.
func (MarkPetLost) Kind() Kind { return KindMarkPetLost }

// MarkPetFound reports a missing pet as found.
type MarkPetFound struct {
	PetID string `json:"pet_id"`
	Notes string `json:"notes,omitempty"`
}

// Kind implements Request.
func (MarkPetFound) Kind() Kind { return KindMarkPetFound }

// ReportSighting logs a sighting of a missing pet.
type ReportSighting struct {
	PetID       string   `json:"pet_id"`
	Address     string   `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description string   `json:"description,omitempty"`
	SightedAt   int64    `json:"sighted_at"`
}

// Kind implements Request.
func (ReportSighting) Kind() Kind { return KindReportSighting }

// CreateAlert creates a neighborhood alert for a missing pet.
// LocalID is the id of the placeholder cache record synthesized when the
// alert was created offline; empty when the alert was created online.
type CreateAlert struct {
	LocalID  string  `json:"local_id,omitempty"`
	PetID    string  `json:"pet_id"`
	Region   string  `json:"region"`
	RadiusKm float64 `json:"radius_km"`
	Message  string  `json:"message,omitempty"`
}

// Kind implements Request.
func (CreateAlert) Kind() Kind { return KindCreateAlert }

// UpdatePet updates a pet's profile fields. Empty fields are left unchanged
// by the backend.
type UpdatePet struct {
	PetID    string `json:"pet_id"`
	Name     string `json:"name,omitempty"`
	Species  string `json:"species,omitempty"`
	Breed    string `json:"breed,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Kind implements Request.
func (UpdatePet) Kind() Kind { return KindUpdatePet }

// Encode serializes a request for durable storage.
func Encode(req Request) (json.RawMessage, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", req.Kind(), err)
	}
	return raw, nil
}

// Decode reconstructs a typed request from a stored payload. The switch is
// exhaustive over the closed Kind set; an unknown kind is a permanent error.
func Decode(kind Kind, raw json.RawMessage) (Request, error) {
	var (
		req Request
		err error
	)
	switch kind {
	case KindMarkPetLost:
		var r MarkPetLost
		err = json.Unmarshal(raw, &r)
		req = r
	case KindMarkPetFound:
		var r MarkPetFound
		err = json.Unmarshal(raw, &r)
		req = r
	case KindReportSighting:
		var r ReportSighting
		err = json.Unmarshal(raw, &r)
		req = r
	case KindCreateAlert:
		var r CreateAlert
		err = json.Unmarshal(raw, &r)
		req = r
	case KindUpdatePet:
		var r UpdatePet
		err = json.Unmarshal(raw, &r)
		req = r
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return req, nil
}
