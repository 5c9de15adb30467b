// Package dataset loads the source record collections (symptoms, diseases,
// doctor profiles), lowers them to graph entities and edges, and keeps a
// SQLite snapshot cache so repeated runs skip the JSON parse.
package dataset

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrEmptyID        = errors.New("id is required")
	ErrNoSymptoms     = errors.New("disease lists no symptoms")
	ErrEmptySpecialty = errors.New("specialty is required")
	ErrNegativeFee    = errors.New("fee cannot be negative")
	ErrBadLocation    = errors.New("location must be [lat, lon]")
)

// SymptomRecord is one entry of symptoms.json.
type SymptomRecord struct {
	ID string `json:"id"`
}

// Validate checks a symptom record.
func (r SymptomRecord) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	return nil
}

// DiseaseRecord is one entry of diseases.json. Doctors lists providers
// known to treat the disease directly; it may be empty, in which case
// doctors are reachable only through the required specialty.
type DiseaseRecord struct {
	ID        string   `json:"id"`
	Symptoms  []string `json:"symptoms"`
	Specialty string   `json:"specialty"`
	Doctors   []string `json:"doctors,omitempty"`
}

// Validate checks a disease record.
func (r DiseaseRecord) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if len(r.Symptoms) == 0 {
		return fmt.Errorf("%w: %q", ErrNoSymptoms, r.ID)
	}
	if r.Specialty == "" {
		return fmt.Errorf("%w: disease %q", ErrEmptySpecialty, r.ID)
	}
	return nil
}

// DoctorRecord is one entry of doctors.json.
type DoctorRecord struct {
	ID        string    `json:"id"`
	Specialty string    `json:"specialty"`
	Fee       float64   `json:"fee"`
	Location  []float64 `json:"location"` // [lat, lon]
	Insurance []string  `json:"insurance,omitempty"`
}

// Validate checks a doctor record.
func (r DoctorRecord) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.Specialty == "" {
		return fmt.Errorf("%w: doctor %q", ErrEmptySpecialty, r.ID)
	}
	if r.Fee < 0 {
		return fmt.Errorf("%w: doctor %q", ErrNegativeFee, r.ID)
	}
	if len(r.Location) != 0 && len(r.Location) != 2 {
		return fmt.Errorf("%w: doctor %q", ErrBadLocation, r.ID)
	}
	return nil
}

// Records holds the three validated source collections.
type Records struct {
	Symptoms []SymptomRecord
	Diseases []DiseaseRecord
	Doctors  []DoctorRecord
}

// Validate checks every record.
func (r *Records) Validate() error {
	for _, s := range r.Symptoms {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("symptom: %w", err)
		}
	}
	for _, d := range r.Diseases {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("disease: %w", err)
		}
	}
	for _, d := range r.Doctors {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("doctor: %w", err)
		}
	}
	return nil
}
