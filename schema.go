package staffdeck

import (
	"context"

	"github.com/uptrace/bun"
)

// CreateSchema creates all tables if they do not exist. Intended for
// the sqlite deployment; a managed database would use migrations.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Employee)(nil),
		(*LeaveApplication)(nil),
		(*Device)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
