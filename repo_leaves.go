package staffdeck

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Leaves interface {
	Get(ctx context.Context, id uuid.UUID) (*LeaveApplication, error)
	List(ctx context.Context) ([]*LeaveApplication, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*LeaveApplication, error)
	CountPending(ctx context.Context) (int, error)
	Create(ctx context.Context, record *LeaveApplication) (*LeaveApplication, error)
	Update(ctx context.Context, record *LeaveApplication) (*LeaveApplication, error)
	SetStatus(ctx context.Context, id uuid.UUID, status LeaveStatus) (*LeaveApplication, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type leaves struct {
	repository.Repository[*LeaveApplication]
	db *bun.DB
}

var _ Leaves = (*leaves)(nil)

func NewLeavesRepository(db *bun.DB) Leaves {
	repo := repository.NewRepository[*LeaveApplication](db, repository.ModelHandlers[*LeaveApplication]{
		NewRecord: func() *LeaveApplication { return &LeaveApplication{} },
		GetID: func(l *LeaveApplication) uuid.UUID {
			if l == nil {
				return uuid.Nil
			}
			return l.ID
		},
		SetID: func(l *LeaveApplication, id uuid.UUID) {
			if l != nil {
				l.ID = id
			}
		},
	})

	return &leaves{
		Repository: repo,
		db:         db,
	}
}

func (r *leaves) Get(ctx context.Context, id uuid.UUID) (*LeaveApplication, error) {
	return r.Repository.GetByID(ctx, id.String())
}

func (r *leaves) List(ctx context.Context) ([]*LeaveApplication, error) {
	records := []*LeaveApplication{}
	err := r.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.applied_date DESC").
		Scan(ctx)
	return records, err
}

func (r *leaves) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*LeaveApplication, error) {
	records := []*LeaveApplication{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.employee_id = ?", employeeID.String()).
		OrderExpr("?TableAlias.applied_date DESC").
		Scan(ctx)
	return records, err
}

func (r *leaves) CountPending(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*LeaveApplication)(nil)).
		Where("?TableAlias.status = ?", LeaveStatusPending).
		Count(ctx)
}

func (r *leaves) Create(ctx context.Context, record *LeaveApplication) (*LeaveApplication, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = LeaveStatusPending
	}
	return r.Repository.Create(ctx, record)
}

func (r *leaves) Update(ctx context.Context, record *LeaveApplication) (*LeaveApplication, error) {
	return r.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
}

func (r *leaves) SetStatus(ctx context.Context, id uuid.UUID, status LeaveStatus) (*LeaveApplication, error) {
	_, err := r.db.NewUpdate().
		Model((*LeaveApplication)(nil)).
		Set("status = ?", status).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *leaves) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*LeaveApplication)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}
	return nil
}
