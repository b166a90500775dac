package dashboard

import (
	"context"
	"errors"
	"fmt"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
	"medication-adherence/internal/platform/store"
)

// PatientLister reads the full patient table.
type PatientLister interface {
	List(ctx context.Context) ([]adherence.Patient, error)
}

type AlertRepository interface {
	Save(ctx context.Context, a Alert) error
	Acknowledge(ctx context.Context, id, by, at string) (Alert, error)
	Active(ctx context.Context) ([]Alert, error)
}

type alertRepo struct {
	st    store.Store
	table string
}

func NewAlertRepository(st store.Store, table string) AlertRepository {
	return &alertRepo{st: st, table: table}
}

func (r *alertRepo) Save(ctx context.Context, a Alert) error {
	if err := r.st.Put(ctx, r.table, a.ID, a); err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

func (r *alertRepo) Acknowledge(ctx context.Context, id, by, at string) (Alert, error) {
	doc, err := r.st.Update(ctx, r.table, id, map[string]any{
		"acknowledgedAt": at,
		"acknowledgedBy": by,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Alert{}, apperr.NotFound("Alert not found")
		}
		return Alert{}, fmt.Errorf("acknowledge alert %s: %w", id, err)
	}
	return store.Decode[Alert](doc)
}

// Active returns unacknowledged alerts in store order.
func (r *alertRepo) Active(ctx context.Context) ([]Alert, error) {
	docs, err := r.st.Scan(ctx, r.table, store.NotExists("acknowledgedAt"))
	if err != nil {
		return nil, fmt.Errorf("scan alerts: %w", err)
	}
	return store.DecodeAll[Alert](docs)
}
