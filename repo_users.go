package staffdeck

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var completePasswordResetSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_token_digest" = NULL,
	"reset_token_expires" = NULL
WHERE
	"usr"."id" = ?
	AND "usr"."reset_token_digest" = ?
RETURNING *;`

// Users persists accounts. Reset token handling works on digests only;
// plaintext tokens never reach this layer.
type Users interface {
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetDigest(ctx context.Context, digest string, now time.Time) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	UpdateProfile(ctx context.Context, user *User) (*User, error)
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*User, error)

	SetResetToken(ctx context.Context, id uuid.UUID, digest string, expires time.Time) error
	CompletePasswordReset(ctx context.Context, id uuid.UUID, digest, passwordHash string) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.Repository.GetByIdentifier(ctx, email)
}

func (a *users) GetByResetDigest(ctx context.Context, digest string, now time.Time) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.reset_token_digest = ?", digest).
		Where("?TableAlias.reset_token_expires > ?", now).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"lookup": "reset_token_digest"})
		}
		return nil, err
	}
	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) UpdateProfile(ctx context.Context, user *User) (*User, error) {
	return a.Repository.Update(ctx, user, repository.UpdateByID(user.ID.String()))
}

func (a *users) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*User, error) {
	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_admin = ?", isAdmin).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return a.Get(ctx, id)
}

func (a *users) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expires time.Time) error {
	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("reset_token_digest = ?", digest).
		Set("reset_token_expires = ?", expires).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	return err
}

// CompletePasswordReset consumes a reset token. The digest guard keeps
// two racing finalizes from both succeeding with the same token: only
// the row still carrying the digest matches.
func (a *users) CompletePasswordReset(ctx context.Context, id uuid.UUID, digest, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, a.db, completePasswordResetSQL, passwordHash, id.String(), digest)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
