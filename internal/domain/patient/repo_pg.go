package patient

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

const patientCols = `p.patient_id, p.name, p.date_of_birth, p.age, p.sex, p.contact, p.address,
	p.registered_at,
	COALESCE(mh.chronic_conditions, '[]'::jsonb),
	COALESCE(mh.allergies, '[]'::jsonb),
	COALESCE(mh.current_medications, '[]'::jsonb),
	(SELECT COUNT(*) FROM consultations c WHERE c.patient_id = p.patient_id)`

const patientFrom = ` FROM patients p LEFT JOIN medical_history mh ON mh.patient_id = p.patient_id`

// Create inserts the patient row and its empty medical-history side row in
// one transaction. A primary-key collision surfaces as ErrConflict so the
// service can regenerate the ID.
func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	ctx = db.WithTx(ctx, tx)

	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (patient_id, name, date_of_birth, age, sex, contact, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.PatientID, p.Name, p.DateOfBirth, p.Age, p.Sex, p.Contact, p.Address,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert patient: %w", err)
	}

	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_history (patient_id, chronic_conditions, allergies, current_medications)
		VALUES ($1, '[]'::jsonb, '[]'::jsonb, '[]'::jsonb)`,
		p.PatientID,
	)
	if err != nil {
		return fmt.Errorf("insert medical history: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, patientID string) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+patientFrom+` WHERE p.patient_id = $1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+patientFrom+` ORDER BY p.registered_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

// Delete removes the patient row; history and consultations follow via
// ON DELETE CASCADE.
func (r *repoPG) Delete(ctx context.Context, patientID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE patient_id = $1`, patientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateHistory(ctx context.Context, patientID string, h *History) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_history
		SET chronic_conditions = $2, allergies = $3, current_medications = $4
		WHERE patient_id = $1`,
		patientID, emptyIfNil(h.ChronicConditions), emptyIfNil(h.Allergies), emptyIfNil(h.CurrentMedications),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.PatientID, &p.Name, &p.DateOfBirth, &p.Age, &p.Sex, &p.Contact, &p.Address,
		&p.RegisteredAt,
		&p.ChronicConditions, &p.Allergies, &p.CurrentMedications,
		&p.ConsultationCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
