package patient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

var validSexes = map[string]bool{
	SexMale:   true,
	SexFemale: true,
	SexOther:  true,
}

// RegisterInput carries the registration fields. DateOfBirth is the wire
// format YYYY-MM-DD.
type RegisterInput struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	Age         int    `json:"age"`
	Sex         string `json:"sex"`
	Contact     string `json:"contact"`
	Address     string `json:"address"`
}

// Register validates the input, assigns a PT-prefixed identifier and inserts
// the patient with its empty medical history. Sex is matched
// case-insensitively and stored lowercase. A generated ID that collides
// with an existing row is regenerated once; a second collision returns
// ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", fmt.Errorf("name is required")
	}
	sex := strings.ToLower(strings.TrimSpace(in.Sex))
	if !validSexes[sex] {
		return "", fmt.Errorf("invalid sex: %q (must be male, female or other)", in.Sex)
	}
	if in.Age < 0 || in.Age > 150 {
		return "", fmt.Errorf("invalid age: %d", in.Age)
	}
	dob, err := time.Parse("2006-01-02", in.DateOfBirth)
	if err != nil {
		return "", fmt.Errorf("invalid date_of_birth: %w", err)
	}

	p := &Patient{
		Name:        in.Name,
		DateOfBirth: dob,
		Age:         in.Age,
		Sex:         sex,
		Contact:     in.Contact,
		Address:     in.Address,
	}

	p.PatientID = newPatientID(in.Name, s.now())
	err = s.repo.Create(ctx, p)
	if errors.Is(err, ErrConflict) {
		p.PatientID = newPatientID(in.Name, s.now())
		err = s.repo.Create(ctx, p)
	}
	if err != nil {
		return "", err
	}
	return p.PatientID, nil
}

func (s *Service) Get(ctx context.Context, patientID string) (*Patient, error) {
	return s.repo.GetByID(ctx, patientID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Delete(ctx context.Context, patientID string) error {
	return s.repo.Delete(ctx, patientID)
}

func (s *Service) UpdateHistory(ctx context.Context, patientID string, h *History) error {
	return s.repo.UpdateHistory(ctx, patientID, h)
}

// newPatientID derives an identifier from the patient name and the current
// time: "PT" followed by the first 8 hex characters of
// SHA-256(name + timestamp), uppercased.
func newPatientID(name string, now time.Time) string {
	sum := sha256.Sum256([]byte(name + now.Format(time.RFC3339Nano)))
	return "PT" + strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}
