package intake

import (
	"github.com/intake/intake/internal/domain/patient"
)

// Symptom is one extracted symptom.
type Symptom struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Duration string `json:"duration"`
}

// Symptoms is the structured result of symptom extraction.
type Symptoms struct {
	ChiefComplaint string    `json:"chief_complaint"`
	Symptoms       []Symptom `json:"symptoms"`
}

// AnalysisResult is returned by AnalyzeSymptoms: the extracted symptoms plus
// the questionnaire and last-visit context.
type AnalysisResult struct {
	Patient        *patient.Patient `json:"patient"`
	Symptoms       Symptoms         `json:"symptoms"`
	Questions      []string         `json:"questions"`
	HasHistory     bool             `json:"has_history"`
	HistoryContext string           `json:"history_context,omitempty"`
}

// ReportResult is returned by GenerateReport after the consultation has been
// persisted.
type ReportResult struct {
	ConsultationID string `json:"consultation_id"`
	PatientReport  string `json:"patient_report"`
	VisitNumber    int    `json:"visit_number"`
	QACount        int    `json:"qa_count"`
}
