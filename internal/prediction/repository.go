package prediction

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"medication-adherence/internal/platform/apperr"
	"medication-adherence/internal/platform/store"
)

type JobRepository interface {
	Save(ctx context.Context, j Job) error
	Get(ctx context.Context, id string) (Job, error)
	Update(ctx context.Context, id string, fields map[string]any) (Job, error)
	// List returns jobs newest first.
	List(ctx context.Context) ([]Job, error)
}

type ScheduleRepository interface {
	Save(ctx context.Context, s Schedule) error
	Get(ctx context.Context, id string) (Schedule, error)
	Update(ctx context.Context, id string, fields map[string]any) (Schedule, error)
	Delete(ctx context.Context, id string) error
	// List returns schedules newest first.
	List(ctx context.Context) ([]Schedule, error)
}

// records is the shared store access for both tables.
type records[T any] struct {
	st       store.Store
	table    string
	notFound string
}

func (r records[T]) save(ctx context.Context, key string, v T) error {
	if err := r.st.Put(ctx, r.table, key, v); err != nil {
		return fmt.Errorf("save %s/%s: %w", r.table, key, err)
	}
	return nil
}

func (r records[T]) get(ctx context.Context, key string) (T, error) {
	var v T
	if err := r.st.Get(ctx, r.table, key, &v); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return v, apperr.NotFound("%s", r.notFound)
		}
		return v, fmt.Errorf("get %s/%s: %w", r.table, key, err)
	}
	return v, nil
}

func (r records[T]) update(ctx context.Context, key string, fields map[string]any) (T, error) {
	doc, err := r.st.Update(ctx, r.table, key, fields)
	if err != nil {
		var zero T
		if errors.Is(err, store.ErrNotFound) {
			return zero, apperr.NotFound("%s", r.notFound)
		}
		return zero, fmt.Errorf("update %s/%s: %w", r.table, key, err)
	}
	return store.Decode[T](doc)
}

func (r records[T]) list(ctx context.Context, createdAt func(T) string) ([]T, error) {
	docs, err := r.st.Scan(ctx, r.table)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.table, err)
	}
	items, err := store.DecodeAll[T](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]) > createdAt(items[j])
	})
	return items, nil
}

type jobRepo struct{ records[Job] }

func NewJobRepository(st store.Store, table string) JobRepository {
	return &jobRepo{records[Job]{st: st, table: table, notFound: "Job not found"}}
}

func (r *jobRepo) Save(ctx context.Context, j Job) error { return r.save(ctx, j.JobID, j) }
func (r *jobRepo) Get(ctx context.Context, id string) (Job, error) { return r.get(ctx, id) }
func (r *jobRepo) Update(ctx context.Context, id string, fields map[string]any) (Job, error) {
	return r.update(ctx, id, fields)
}
func (r *jobRepo) List(ctx context.Context) ([]Job, error) {
	return r.list(ctx, func(j Job) string { return j.CreatedAt })
}

type scheduleRepo struct{ records[Schedule] }

func NewScheduleRepository(st store.Store, table string) ScheduleRepository {
	return &scheduleRepo{records[Schedule]{st: st, table: table, notFound: "Schedule not found"}}
}

func (r *scheduleRepo) Save(ctx context.Context, s Schedule) error { return r.save(ctx, s.ScheduleID, s) }
func (r *scheduleRepo) Get(ctx context.Context, id string) (Schedule, error) {
	return r.get(ctx, id)
}
func (r *scheduleRepo) Update(ctx context.Context, id string, fields map[string]any) (Schedule, error) {
	return r.update(ctx, id, fields)
}
func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	if err := r.st.Delete(ctx, r.table, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", r.table, id, err)
	}
	return nil
}
func (r *scheduleRepo) List(ctx context.Context) ([]Schedule, error) {
	return r.list(ctx, func(s Schedule) string { return s.CreatedAt })
}
