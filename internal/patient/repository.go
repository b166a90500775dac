package patient

import (
	"context"
	"errors"
	"fmt"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
	"medication-adherence/internal/platform/store"
)

type Repository interface {
	List(ctx context.Context) ([]adherence.Patient, error)
	GetByID(ctx context.Context, id string) (adherence.Patient, error)
	Interventions(ctx context.Context, patientID string) ([]adherence.Intervention, error)
	Notes(ctx context.Context, patientID string) ([]Note, error)
	SaveNote(ctx context.Context, n Note) error
}

// Tables names the record tables the repository reads.
type Tables struct {
	Patients      string
	Interventions string
	Notes         string
}

type storeRepo struct {
	st     store.Store
	tables Tables
}

func NewRepository(st store.Store, tables Tables) Repository {
	return &storeRepo{st: st, tables: tables}
}

func (r *storeRepo) List(ctx context.Context) ([]adherence.Patient, error) {
	docs, err := r.st.Scan(ctx, r.tables.Patients)
	if err != nil {
		return nil, fmt.Errorf("scan patients: %w", err)
	}
	return store.DecodeAll[adherence.Patient](docs)
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (adherence.Patient, error) {
	var p adherence.Patient
	if err := r.st.Get(ctx, r.tables.Patients, id, &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return p, apperr.NotFound("Patient not found")
		}
		return p, fmt.Errorf("get patient %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

func (r *storeRepo) Interventions(ctx context.Context, patientID string) ([]adherence.Intervention, error) {
	docs, err := r.st.Query(ctx, r.tables.Interventions, store.PatientCreatedAt, patientID, false)
	if err != nil {
		return nil, fmt.Errorf("query interventions: %w", err)
	}
	return store.DecodeAll[adherence.Intervention](docs)
}

// Notes returns the patient's notes, newest first.
func (r *storeRepo) Notes(ctx context.Context, patientID string) ([]Note, error) {
	docs, err := r.st.Query(ctx, r.tables.Notes, store.PatientCreatedAt, patientID, true)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	return store.DecodeAll[Note](docs)
}

func (r *storeRepo) SaveNote(ctx context.Context, n Note) error {
	if err := r.st.Put(ctx, r.tables.Notes, n.ID, n); err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	return nil
}
