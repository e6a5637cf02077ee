package patient

import (
	"time"
)

// Sex values accepted at registration.
const (
	SexMale   = "male"
	SexFemale = "female"
	SexOther  = "other"
)

// Patient is a registered patient with the medical-history side record
// folded in. History lists are stored as JSONB next to the patient row and
// default to empty.
type Patient struct {
	PatientID    string    `json:"patient_id"`
	Name         string    `json:"name"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Age          int       `json:"age"`
	Sex          string    `json:"sex"`
	Contact      string    `json:"contact"`
	Address      string    `json:"address"`
	RegisteredAt time.Time `json:"registered_at"`

	ChronicConditions  []string `json:"chronic_conditions"`
	Allergies          []string `json:"allergies"`
	CurrentMedications []string `json:"current_medications"`

	ConsultationCount int `json:"consultation_count"`
}

// History carries the writable medical-history lists for a patient.
type History struct {
	ChronicConditions  []string `json:"chronic_conditions"`
	Allergies          []string `json:"allergies"`
	CurrentMedications []string `json:"current_medications"`
}
