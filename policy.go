package staffdeck

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// OwnerLookup resolves which employee record an actor owns. The
// dashboard matches the directory row by the account's email.
type OwnerLookup func(ctx context.Context, actor *User) (uuid.UUID, error)

// Policy answers ownership and admin questions for protected resources.
type Policy struct {
	lookup OwnerLookup
	logger Logger
}

func NewPolicy(employees Employees) *Policy {
	return &Policy{
		logger: defLogger{},
		lookup: func(ctx context.Context, actor *User) (uuid.UUID, error) {
			emp, err := employees.GetByEmail(ctx, actor.Email)
			if err != nil {
				return uuid.Nil, err
			}
			return emp.ID, nil
		},
	}
}

func (p *Policy) WithLogger(logger Logger) *Policy {
	if logger != nil {
		p.logger = logger
	}
	return p
}

func (p *Policy) WithOwnerLookup(lookup OwnerLookup) *Policy {
	if lookup != nil {
		p.lookup = lookup
	}
	return p
}

// RequireAdmin rejects non admin actors.
func (p *Policy) RequireAdmin(actor *User) error {
	if actor == nil || !actor.IsAdmin {
		return ErrAdminRequired
	}
	return nil
}

// Authorize allows admins through, otherwise requires the actor to own
// the resource. An actor with no matching employee row cannot own
// anything.
func (p *Policy) Authorize(ctx context.Context, actor *User, ownerID uuid.UUID) error {
	if actor == nil {
		return ErrNotResourceOwner
	}
	if actor.IsAdmin {
		return nil
	}

	own, err := p.lookup(ctx, actor)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrOwnerNotFound
		}
		return err
	}

	if own != ownerID {
		p.logger.Debug("ownership mismatch: actor employee %s, resource owner %s", own, ownerID)
		return ErrNotResourceOwner
	}
	return nil
}

// OwnerID resolves the actor's employee row without authorizing
// anything. Used when creating resources on the actor's own behalf.
func (p *Policy) OwnerID(ctx context.Context, actor *User) (uuid.UUID, error) {
	if actor == nil {
		return uuid.Nil, ErrNotResourceOwner
	}
	id, err := p.lookup(ctx, actor)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return uuid.Nil, ErrOwnerNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}
