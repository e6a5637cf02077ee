package consultation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intake/intake/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const consCols = `consultation_id, patient_id, occurred_at, chief_complaint,
	encrypted_symptoms, encrypted_analysis, encrypted_diagnosis, encrypted_treatment,
	encrypted_qa_pairs, encrypted_full_report, encryption_iv`

func (r *repoPG) Insert(ctx context.Context, rec *EncryptedRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consultations (
			consultation_id, patient_id, occurred_at, chief_complaint,
			encrypted_symptoms, encrypted_analysis, encrypted_diagnosis, encrypted_treatment,
			encrypted_qa_pairs, encrypted_full_report, encryption_iv
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ConsultationID, rec.PatientID, rec.OccurredAt, rec.ChiefComplaint,
		rec.EncSymptoms, rec.EncAnalysis, rec.EncDiagnosis, rec.EncTreatment,
		rec.EncQAPairs, rec.EncFullReport, rec.IV,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrPatientNotFound
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, consultationID string) (*EncryptedRecord, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consCols+` FROM consultations WHERE consultation_id = $1`, consultationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*EncryptedRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+consCols+` FROM consultations WHERE patient_id = $1 ORDER BY occurred_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*EncryptedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanRecord(row pgx.Row) (*EncryptedRecord, error) {
	var rec EncryptedRecord
	err := row.Scan(
		&rec.ConsultationID, &rec.PatientID, &rec.OccurredAt, &rec.ChiefComplaint,
		&rec.EncSymptoms, &rec.EncAnalysis, &rec.EncDiagnosis, &rec.EncTreatment,
		&rec.EncQAPairs, &rec.EncFullReport, &rec.IV,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
