package staffdeck

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type FinalizePasswordResetMessage struct {
	Token      string `json:"token"`
	Password   string `json:"password"`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

type FinalizePasswordResetResponse struct {
	User    *User
	Success bool
}

// FinalizePasswordResetHandler consumes a reset token. The password
// update and the token invalidation happen in one statement, so a token
// can never be replayed against the new password.
type FinalizePasswordResetHandler struct {
	repo       RepositoryManager
	mailer     Mailer
	bcryptCost int
	logger     Logger
}

func NewFinalizePasswordResetHandler(repo RepositoryManager, mailer Mailer, bcryptCost int) *FinalizePasswordResetHandler {
	if bcryptCost <= 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &FinalizePasswordResetHandler{
		repo:       repo,
		mailer:     mailer,
		bcryptCost: bcryptCost,
		logger:     defLogger{},
	}
}

func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Token == "" {
		return ErrResetTokenInvalid
	}

	digest := HashResetToken(event.Token)
	user, err := h.repo.Users().GetByResetDigest(ctx, digest, time.Now())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrResetTokenInvalid
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	hash, err := HashPasswordWithCost(event.Password, h.bcryptCost)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := h.repo.Users().CompletePasswordReset(ctx, user.ID, digest, hash); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrResetTokenInvalid
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to complete password reset")
	}

	// Confirmation is best effort; the reset already succeeded.
	go func(to, name string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		body := fmt.Sprintf("<p>Hello %s,</p><p>Your password was changed. If this was not you, contact your administrator immediately.</p>", name)
		if err := h.mailer.Send(ctx, to, "Your password was changed", body); err != nil {
			h.logger.Error("reset confirmation mail failed for %s: %v", to, err)
		}
	}(user.Email, user.Name)

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{
			User:    user,
			Success: true,
		})
	}

	return nil
}
