package staffdeck

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DeviceStats is the inventory aggregate shown on the dashboard.
type DeviceStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByType   map[string]int `json:"by_type"`
	Recent   []*Device      `json:"recent"`
}

type Devices interface {
	Get(ctx context.Context, id uuid.UUID) (*Device, error)
	List(ctx context.Context) ([]*Device, error)
	CountInUse(ctx context.Context) (int, error)
	Create(ctx context.Context, record *Device) (*Device, error)
	Update(ctx context.Context, record *Device) (*Device, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*DeviceStats, error)
}

type devices struct {
	repository.Repository[*Device]
	db *bun.DB
}

var _ Devices = (*devices)(nil)

func NewDevicesRepository(db *bun.DB) Devices {
	repo := repository.NewRepository[*Device](db, repository.ModelHandlers[*Device]{
		NewRecord: func() *Device { return &Device{} },
		GetID: func(d *Device) uuid.UUID {
			if d == nil {
				return uuid.Nil
			}
			return d.ID
		},
		SetID: func(d *Device, id uuid.UUID) {
			if d != nil {
				d.ID = id
			}
		},
	})

	return &devices{
		Repository: repo,
		db:         db,
	}
}

func (r *devices) Get(ctx context.Context, id uuid.UUID) (*Device, error) {
	return r.Repository.GetByID(ctx, id.String())
}

func (r *devices) List(ctx context.Context) ([]*Device, error) {
	records := []*Device{}
	err := r.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at DESC").
		Scan(ctx)
	return records, err
}

func (r *devices) CountInUse(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Device)(nil)).
		Where("?TableAlias.status = ?", DeviceStatusInUse).
		Count(ctx)
}

func (r *devices) Create(ctx context.Context, record *Device) (*Device, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = DeviceStatusAvailable
	}
	return r.Repository.Create(ctx, record)
}

func (r *devices) Update(ctx context.Context, record *Device) (*Device, error) {
	return r.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
}

func (r *devices) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Device)(nil)).
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

func (r *devices) Stats(ctx context.Context) (*DeviceStats, error) {
	stats := &DeviceStats{
		ByStatus: map[string]int{},
		ByType:   map[string]int{},
	}

	total, err := r.db.NewSelect().Model((*Device)(nil)).Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.Total = total

	var byStatus []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	if err := r.db.NewSelect().Model((*Device)(nil)).
		ColumnExpr("?TableAlias.status").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("?TableAlias.status").
		Scan(ctx, &byStatus); err != nil {
		return nil, err
	}
	for _, s := range byStatus {
		stats.ByStatus[s.Status] = s.Count
	}

	var byType []struct {
		Type  string `bun:"type"`
		Count int    `bun:"count"`
	}
	if err := r.db.NewSelect().Model((*Device)(nil)).
		ColumnExpr("?TableAlias.type").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("?TableAlias.type").
		Scan(ctx, &byType); err != nil {
		return nil, err
	}
	for _, t := range byType {
		stats.ByType[t.Type] = t.Count
	}

	recent := []*Device{}
	if err := r.db.NewSelect().
		Model(&recent).
		OrderExpr("?TableAlias.created_at DESC").
		Limit(5).
		Scan(ctx); err != nil {
		return nil, err
	}
	stats.Recent = recent

	return stats, nil
}
