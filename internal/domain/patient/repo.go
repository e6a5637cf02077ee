package patient

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no patient exists for the given ID.
	ErrNotFound = errors.New("patient not found")
	// ErrConflict is returned when a generated patient ID collides with an
	// existing row.
	ErrConflict = errors.New("patient id conflict")
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, patientID string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Delete(ctx context.Context, patientID string) error
	UpdateHistory(ctx context.Context, patientID string, h *History) error
}
