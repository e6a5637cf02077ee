package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/intake/intake/internal/domain/consultation"
	"github.com/intake/intake/internal/domain/patient"
	"github.com/intake/intake/internal/platform/llm"
)

// PatientDirectory is the slice of the patient service the intake flow
// needs.
type PatientDirectory interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
}

// ConsultationStore persists finished consultations.
type ConsultationStore interface {
	Add(ctx context.Context, patientID string, f *consultation.Fields) (string, error)
	History(ctx context.Context, patientID string) ([]consultation.Summary, error)
}

const (
	fallbackDiagnosis = "AI assessment - requires physician review"
	fallbackTreatment = "See prescription in report"
)

type Service struct {
	patients      PatientDirectory
	consultations ConsultationStore
	model         llm.Client
	logger        zerolog.Logger
	reportsDir    string
	now           func() time.Time
}

func NewService(patients PatientDirectory, consultations ConsultationStore, model llm.Client, logger zerolog.Logger, reportsDir string) *Service {
	return &Service{
		patients:      patients,
		consultations: consultations,
		model:         model,
		logger:        logger,
		reportsDir:    reportsDir,
		now:           time.Now,
	}
}

// AnalyzeSymptoms extracts structured symptoms from free text and returns
// them with the fixed questionnaire and the patient's last-visit context.
// Model failures never fail the request; extraction falls back to a
// deterministic structure.
func (s *Service) AnalyzeSymptoms(ctx context.Context, patientID, text string) (*AnalysisResult, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	symptoms := s.extractSymptoms(ctx, text)

	result := &AnalysisResult{
		Patient:   p,
		Symptoms:  symptoms,
		Questions: Questions,
	}

	history, err := s.consultations.History(ctx, patientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID).Msg("history lookup failed")
	} else if len(history) > 0 {
		result.HasHistory = true
		result.HistoryContext = fmt.Sprintf("Previous visit: %s", history[0].ChiefComplaint)
	}

	return result, nil
}

// GenerateReport produces the assessment report from the extracted symptoms
// and questionnaire answers, persists the consultation and writes the report
// text to disk (best effort).
func (s *Service) GenerateReport(ctx context.Context, patientID string, symptoms Symptoms, answers []string) (*ReportResult, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	analysis := s.generateAnalysis(ctx, p, symptoms, answers)

	visitNumber := p.ConsultationCount + 1
	report := frameReport(p, analysis, visitNumber, s.now())

	qaPairs := buildQAPairs(answers)
	symptomsJSON, err := json.Marshal(symptoms)
	if err != nil {
		return nil, fmt.Errorf("marshal symptoms: %w", err)
	}

	consultationID, err := s.consultations.Add(ctx, patientID, &consultation.Fields{
		ChiefComplaint:   symptoms.ChiefComplaint,
		Symptoms:         symptomsJSON,
		Analysis:         analysis,
		Diagnosis:        fallbackDiagnosis,
		TreatmentSummary: fallbackTreatment,
		QAPairs:          qaPairs,
		FullReport:       report,
	})
	if err != nil {
		return nil, err
	}

	s.writeReportFile(consultationID, report)

	return &ReportResult{
		ConsultationID: consultationID,
		PatientReport:  report,
		VisitNumber:    visitNumber,
		QACount:        len(qaPairs),
	}, nil
}

// extractSymptoms asks the model for structured symptoms. JSON is recovered
// from the response by the first-{/last-} substring; any failure yields the
// deterministic fallback.
func (s *Service) extractSymptoms(ctx context.Context, text string) Symptoms {
	prompt := fmt.Sprintf(`Extract symptoms from this text. Return ONLY JSON format.

Patient says: %q

Return exactly this JSON structure:
{
    "chief_complaint": "main reason for visit",
    "symptoms": [{"name": "symptom", "severity": "mild/moderate/severe", "duration": "how long"}]
}

Only JSON, no explanations.`, text)

	content, err := s.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: "Extract symptoms. Return ONLY valid JSON."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("symptom extraction failed")
		return fallbackSymptoms(text)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		s.logger.Warn().Msg("no JSON object in symptom extraction response")
		return fallbackSymptoms(text)
	}

	var symptoms Symptoms
	if err := json.Unmarshal([]byte(content[start:end+1]), &symptoms); err != nil {
		s.logger.Warn().Err(err).Msg("malformed JSON in symptom extraction response")
		return fallbackSymptoms(text)
	}
	return symptoms
}

func fallbackSymptoms(text string) Symptoms {
	return Symptoms{
		ChiefComplaint: truncate(text, 100),
		Symptoms: []Symptom{
			{Name: text, Severity: "unknown", Duration: "unknown"},
		},
	}
}

// generateAnalysis builds the bullet-point report body. On model failure the
// canned fallback report is used instead.
func (s *Service) generateAnalysis(ctx context.Context, p *patient.Patient, symptoms Symptoms, answers []string) string {
	var qa strings.Builder
	for i := 0; i < len(Questions) && i < len(answers); i++ {
		fmt.Fprintf(&qa, "Q: %s\nA: %s\n", Questions[i], answers[i])
	}

	symptomsJSON, _ := json.MarshalIndent(symptoms.Symptoms, "", "  ")

	prompt := fmt.Sprintf(`You are a medical doctor. Generate a comprehensive medical report in BULLET POINT format.

PATIENT INFORMATION:
- Age: %d years
- Sex: %s
- Chronic Conditions: %s
- Current Medications: %s
- Allergies: %s

CHIEF COMPLAINT: %s

SYMPTOMS: %s

PATIENT ANSWERS TO 10 QUESTIONS:
%s

Generate a CONCISE medical report with these sections, bullet points only:

CLINICAL SUMMARY
DIFFERENTIAL DIAGNOSIS (each condition with HIGH/MEDIUM/LOW probability and ICD-10 code)
RECOMMENDED TESTS (each ROUTINE or URGENT)
IMMEDIATE CARE PLAN
PRESCRIPTION (numbered: drug, dose, frequency, duration)
LIFESTYLE RECOMMENDATIONS
RED FLAG WARNINGS
URGENCY LEVEL: ROUTINE/URGENT/EMERGENCY
Follow-up: [X days] - [Reason]
SPECIALIST REFERRAL: YES/NO - [If yes, which specialty]

Use ONLY bullet points. Be concise. Include specific medical details.`,
		p.Age, p.Sex,
		listOrNone(p.ChronicConditions),
		listOrNone(p.CurrentMedications),
		listOrNone(p.Allergies),
		orDefault(symptoms.ChiefComplaint, "Not specified"),
		string(symptomsJSON),
		qa.String(),
	)

	analysis, err := s.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a medical doctor. Respond in BULLET POINTS only. Be concise and specific."},
		{Role: "user", Content: prompt},
	})
	if err != nil || strings.TrimSpace(analysis) == "" {
		s.logger.Warn().Err(err).Msg("report generation failed, using fallback report")
		return fallbackAnalysis(p, symptoms)
	}
	return analysis
}

func fallbackAnalysis(p *patient.Patient, symptoms Symptoms) string {
	chief := symptoms.ChiefComplaint
	if chief == "" {
		chief = "multiple symptoms"
	}

	return fmt.Sprintf(`CLINICAL SUMMARY
- %d-year-old %s presenting with %s
- Symptoms require further clinical evaluation
- Patient is stable, no immediate emergency indicators

DIFFERENTIAL DIAGNOSIS
- Viral Upper Respiratory Infection - MEDIUM - ICD-10: J06.9
- Influenza - MEDIUM - ICD-10: J11.1
- Bacterial Infection - LOW - ICD-10: A49.9

RECOMMENDED TESTS
- Complete Blood Count (CBC) - ROUTINE
- C-Reactive Protein (CRP) - ROUTINE
- Chest X-ray (if indicated) - ROUTINE

IMMEDIATE CARE PLAN
- Rest and adequate hydration (2-3 liters/day)
- Monitor temperature regularly
- Avoid strenuous activities

PRESCRIPTION
1. Paracetamol - Dose: 500mg - Frequency: Every 6 hours as needed - Duration: 5 days
2. Ibuprofen - Dose: 400mg - Frequency: Every 8 hours with food - Duration: 5 days
3. Vitamin C - Dose: 1000mg - Frequency: Once daily - Duration: 7 days

LIFESTYLE RECOMMENDATIONS
- Maintain proper sleep hygiene (7-8 hours)
- Eat nutritious, balanced meals
- Practice good hand hygiene

RED FLAG WARNINGS
- High fever (>103F/39.5C) not responding to medication
- Difficulty breathing or chest pain
- Severe persistent headache or confusion

URGENCY LEVEL: ROUTINE
Follow-up: 3-5 days - Reassess symptoms and review test results

SPECIALIST REFERRAL: NO - General physician follow-up adequate`,
		p.Age, strings.ToLower(p.Sex), chief)
}

// frameReport wraps the analysis body in the assessment-report frame with
// the disclaimer block.
func frameReport(p *patient.Patient, analysis string, visitNumber int, now time.Time) string {
	divider := strings.Repeat("=", 63)

	return fmt.Sprintf(`PATIENT HEALTH ASSESSMENT REPORT
%s

Date: %s
Patient: %s (ID: %s)
Visit: #%d

%s

%s

%s

IMPORTANT DISCLAIMER

- This is an AI-assisted preliminary assessment
- NOT a substitute for professional medical advice
- ALWAYS consult a qualified healthcare provider
- Do NOT start medications without doctor approval
- Seek emergency care for RED FLAGS

%s`,
		divider,
		now.Format("January 02, 2006 at 03:04 PM"),
		p.Name, p.PatientID,
		visitNumber,
		divider,
		analysis,
		divider,
		divider,
	)
}

func buildQAPairs(answers []string) []consultation.QAPair {
	n := len(answers)
	if n > len(Questions) {
		n = len(Questions)
	}
	pairs := make([]consultation.QAPair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, consultation.QAPair{Question: Questions[i], Answer: answers[i]})
	}
	return pairs
}

// writeReportFile keeps a plaintext copy of the report on disk. Failure is
// logged and ignored; the encrypted row is the durable record.
func (s *Service) writeReportFile(consultationID, report string) {
	if s.reportsDir == "" {
		return
	}
	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		s.logger.Warn().Err(err).Msg("create reports directory failed")
		return
	}
	path := filepath.Join(s.reportsDir, fmt.Sprintf("patient_report_%s.txt", consultationID))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("write report file failed")
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
