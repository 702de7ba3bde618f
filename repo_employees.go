package staffdeck

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EmployeeStats is the directory aggregate shown on the dashboard.
// PendingLeaves and DevicesInUse come from the other stores and are
// filled in by the controller.
type EmployeeStats struct {
	Total            int            `json:"total"`
	AvailableForTask int            `json:"available_for_task"`
	UsingTransport   int            `json:"using_transport"`
	AverageWorkload  float64        `json:"average_workload"`
	Bandwidth        map[string]int `json:"bandwidth"`
	PendingLeaves    int            `json:"pending_leaves"`
	DevicesInUse     int            `json:"devices_in_use"`
}

type Employees interface {
	Get(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	Create(ctx context.Context, record *Employee) (*Employee, error)
	Update(ctx context.Context, record *Employee) (*Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*EmployeeStats, error)
}

type employees struct {
	repository.Repository[*Employee]
	db *bun.DB
}

var _ Employees = (*employees)(nil)

func NewEmployeesRepository(db *bun.DB) Employees {
	repo := repository.NewRepository[*Employee](db, repository.ModelHandlers[*Employee]{
		NewRecord: func() *Employee { return &Employee{} },
		GetID: func(e *Employee) uuid.UUID {
			if e == nil {
				return uuid.Nil
			}
			return e.ID
		},
		SetID: func(e *Employee, id uuid.UUID) {
			if e != nil {
				e.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &employees{
		Repository: repo,
		db:         db,
	}
}

func (r *employees) Get(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return r.Repository.GetByID(ctx, id.String())
}

func (r *employees) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	return r.Repository.GetByIdentifier(ctx, email)
}

func (r *employees) List(ctx context.Context) ([]*Employee, error) {
	records := []*Employee{}
	err := r.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at DESC").
		Scan(ctx)
	return records, err
}

func (r *employees) Create(ctx context.Context, record *Employee) (*Employee, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.BandwidthStatus == "" {
		record.BandwidthStatus = BandwidthAvailable
	}
	return r.Repository.Create(ctx, record)
}

func (r *employees) Update(ctx context.Context, record *Employee) (*Employee, error) {
	return r.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
}

func (r *employees) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Employee)(nil)).
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

func (r *employees) Stats(ctx context.Context) (*EmployeeStats, error) {
	stats := &EmployeeStats{Bandwidth: map[string]int{}}

	total, err := r.db.NewSelect().Model((*Employee)(nil)).Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.Total = total

	available, err := r.db.NewSelect().Model((*Employee)(nil)).
		Where("?TableAlias.available_for_task = ?", true).
		Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.AvailableForTask = available

	transport, err := r.db.NewSelect().Model((*Employee)(nil)).
		Where("?TableAlias.use_transport = ?", true).
		Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.UsingTransport = transport

	if err := r.db.NewSelect().Model((*Employee)(nil)).
		ColumnExpr("COALESCE(AVG(?TableAlias.workload), 0)").
		Scan(ctx, &stats.AverageWorkload); err != nil {
		return nil, err
	}

	var bands []struct {
		Status string `bun:"bandwidth_status"`
		Count  int    `bun:"count"`
	}
	if err := r.db.NewSelect().Model((*Employee)(nil)).
		ColumnExpr("?TableAlias.bandwidth_status").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("?TableAlias.bandwidth_status").
		Scan(ctx, &bands); err != nil {
		return nil, err
	}
	for _, b := range bands {
		stats.Bandwidth[b.Status] = b.Count
	}

	return stats, nil
}
