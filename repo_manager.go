package staffdeck

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Employees() Employees
	Leaves() Leaves
	Devices() Devices
}

type mngr struct {
	db        *bun.DB
	users     Users
	employees Employees
	leaves    Leaves
	devices   Devices
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		employees: NewEmployeesRepository(db),
		leaves:    NewLeavesRepository(db),
		devices:   NewDevicesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.employees == nil {
		return errors.New("repository employees should be initialized")
	}

	if m.leaves == nil {
		return errors.New("repository leaves should be initialized")
	}

	if m.devices == nil {
		return errors.New("repository devices should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Employees() Employees {
	return m.employees
}

func (m mngr) Leaves() Leaves {
	return m.leaves
}

func (m mngr) Devices() Devices {
	return m.devices
}
