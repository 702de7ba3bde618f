package staffdeck

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserResponse struct {
	User    *User
	Token   string
	Success bool
}

type RegisterUserHandler struct {
	repo       RepositoryManager
	tokens     TokenService
	bcryptCost int
}

func NewRegisterUserHandler(repo RepositoryManager, tokens TokenService, bcryptCost int) *RegisterUserHandler {
	if bcryptCost <= 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &RegisterUserHandler{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPasswordWithCost(event.Password, h.bcryptCost)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Name = strings.TrimSpace(event.Name)
		user.Email = strings.ToLower(strings.TrimSpace(event.Email))
		if event.UseHashid {
			if id, err := hashid.NewUUID(user.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	token, err := h.tokens.Generate(user.ID.String())
	if err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{
			User:    user,
			Token:   token,
			Success: true,
		})
	}

	return nil
}
