package consultation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intake/intake/internal/platform/crypto"
)

type Service struct {
	repo   Repository
	cipher *crypto.RecordCipher
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, cipher *crypto.RecordCipher, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cipher: cipher,
		logger: logger,
		now:    time.Now,
	}
}

// Add encrypts the six sensitive fields independently and persists the
// consultation in a single insert. Consultations are immutable once stored.
func (s *Service) Add(ctx context.Context, patientID string, f *Fields) (string, error) {
	if strings.TrimSpace(patientID) == "" {
		return "", fmt.Errorf("patient_id is required")
	}

	now := s.now()
	rec := &EncryptedRecord{
		ConsultationID: newConsultationID(now),
		PatientID:      patientID,
		OccurredAt:     now,
		ChiefComplaint: f.ChiefComplaint,
	}

	var err error
	if rec.EncSymptoms, rec.IV, err = s.cipher.Encrypt(f.Symptoms); err != nil {
		return "", fmt.Errorf("encrypt symptoms: %w", err)
	}
	if rec.EncAnalysis, _, err = s.cipher.Encrypt(f.Analysis); err != nil {
		return "", fmt.Errorf("encrypt analysis: %w", err)
	}
	if rec.EncDiagnosis, _, err = s.cipher.Encrypt(f.Diagnosis); err != nil {
		return "", fmt.Errorf("encrypt diagnosis: %w", err)
	}
	if rec.EncTreatment, _, err = s.cipher.Encrypt(f.TreatmentSummary); err != nil {
		return "", fmt.Errorf("encrypt treatment summary: %w", err)
	}
	if rec.EncQAPairs, _, err = s.cipher.Encrypt(f.QAPairs); err != nil {
		return "", fmt.Errorf("encrypt qa pairs: %w", err)
	}
	if rec.EncFullReport, _, err = s.cipher.Encrypt(f.FullReport); err != nil {
		return "", fmt.Errorf("encrypt full report: %w", err)
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return "", err
	}
	return rec.ConsultationID, nil
}

// Get decrypts every populated column of the consultation. A column that
// fails authentication is logged and surfaced as an absent field; the read
// itself still succeeds.
func (s *Service) Get(ctx context.Context, consultationID string) (*Consultation, error) {
	rec, err := s.repo.GetByID(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	return s.decrypt(rec), nil
}

// History returns the patient's consultations newest first, with diagnosis
// and treatment summary decrypted per row.
func (s *Service) History(ctx context.Context, patientID string) ([]Summary, error) {
	recs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		sum := Summary{
			ConsultationID: rec.ConsultationID,
			OccurredAt:     rec.OccurredAt,
			ChiefComplaint: rec.ChiefComplaint,
		}
		s.decryptField(rec.ConsultationID, "diagnosis", rec.EncDiagnosis, &sum.Diagnosis)
		s.decryptField(rec.ConsultationID, "treatment_summary", rec.EncTreatment, &sum.TreatmentSummary)
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *Service) decrypt(rec *EncryptedRecord) *Consultation {
	cons := &Consultation{
		ConsultationID: rec.ConsultationID,
		PatientID:      rec.PatientID,
		OccurredAt:     rec.OccurredAt,
		ChiefComplaint: rec.ChiefComplaint,
	}
	s.decryptField(rec.ConsultationID, "symptoms", rec.EncSymptoms, &cons.Symptoms)
	s.decryptField(rec.ConsultationID, "analysis", rec.EncAnalysis, &cons.Analysis)
	s.decryptField(rec.ConsultationID, "diagnosis", rec.EncDiagnosis, &cons.Diagnosis)
	s.decryptField(rec.ConsultationID, "treatment_summary", rec.EncTreatment, &cons.TreatmentSummary)
	s.decryptField(rec.ConsultationID, "qa_pairs", rec.EncQAPairs, &cons.QAPairs)
	s.decryptField(rec.ConsultationID, "full_report", rec.EncFullReport, &cons.FullReport)
	return cons
}

// decryptField decrypts one column in place. Failure leaves the target zero
// so a corrupted column degrades to an absent field instead of failing the
// whole read.
func (s *Service) decryptField(consultationID, field string, ciphertext []byte, out any) {
	if len(ciphertext) == 0 {
		return
	}
	if err := s.cipher.Decrypt(ciphertext, out); err != nil {
		s.logger.Warn().
			Str("consultation_id", consultationID).
			Str("field", field).
			Err(err).
			Msg("consultation field failed authentication")
	}
}

// newConsultationID builds "CONS_<YYYYMMDDHHMMSS>_<4 hex>". The timestamp
// keeps IDs readable and roughly sortable; the random suffix closes the
// same-second collision window.
func newConsultationID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("CONS_%s_%s", now.Format("20060102150405"), suffix)
}
