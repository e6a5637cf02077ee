package consultation

import (
	"encoding/json"
	"time"
)

// QAPair is one answered intake question.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Fields is the payload bundle of a new consultation. ChiefComplaint is
// stored in plaintext for history listings; every other field is encrypted
// into its own column and never reaches the database in plaintext.
type Fields struct {
	ChiefComplaint   string
	Symptoms         json.RawMessage
	Analysis         string
	Diagnosis        string
	TreatmentSummary string
	QAPairs          []QAPair
	FullReport       string
}

// Consultation is a fully decrypted record. Fields whose ciphertext failed
// authentication are left zero; the read itself still succeeds.
type Consultation struct {
	ConsultationID   string          `json:"consultation_id"`
	PatientID        string          `json:"patient_id"`
	OccurredAt       time.Time       `json:"occurred_at"`
	ChiefComplaint   string          `json:"chief_complaint"`
	Symptoms         json.RawMessage `json:"symptoms,omitempty"`
	Analysis         string          `json:"analysis,omitempty"`
	Diagnosis        string          `json:"diagnosis,omitempty"`
	TreatmentSummary string          `json:"treatment_summary,omitempty"`
	QAPairs          []QAPair        `json:"qa_pairs,omitempty"`
	FullReport       string          `json:"full_report,omitempty"`
}

// Summary is the per-visit line of a patient's consultation history.
type Summary struct {
	ConsultationID   string    `json:"consultation_id"`
	OccurredAt       time.Time `json:"occurred_at"`
	ChiefComplaint   string    `json:"chief_complaint"`
	Diagnosis        string    `json:"diagnosis,omitempty"`
	TreatmentSummary string    `json:"treatment_summary,omitempty"`
}

// EncryptedRecord is the storage shape of a consultation: the plaintext
// metadata plus one ciphertext per sensitive field and the per-row IV.
type EncryptedRecord struct {
	ConsultationID string
	PatientID      string
	OccurredAt     time.Time
	ChiefComplaint string

	EncSymptoms   []byte
	EncAnalysis   []byte
	EncDiagnosis  []byte
	EncTreatment  []byte
	EncQAPairs    []byte
	EncFullReport []byte
	IV            []byte
}
