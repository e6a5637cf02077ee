package consultation

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no consultation exists for the given ID.
	ErrNotFound = errors.New("consultation not found")
	// ErrPatientNotFound is returned when the referenced patient does not
	// exist.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrPersistence wraps storage faults that are not constraint
	// violations.
	ErrPersistence = errors.New("consultation persistence failure")
)

type Repository interface {
	Insert(ctx context.Context, rec *EncryptedRecord) error
	GetByID(ctx context.Context, consultationID string) (*EncryptedRecord, error)
	ListByPatient(ctx context.Context, patientID string) ([]*EncryptedRecord, error)
}
