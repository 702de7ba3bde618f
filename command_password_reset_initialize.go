package staffdeck

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	// Delivered is true only when a reset email actually went out.
	// Callers must not expose it; the HTTP response stays generic.
	Delivered bool
	Success   bool
}

// InitializePasswordResetHandler issues a reset token and mails the
// link. The mail send is synchronous: a delivery failure for a real
// account is the one branch the caller reports as a server error.
type InitializePasswordResetHandler struct {
	repo        RepositoryManager
	mailer      Mailer
	frontendURL string
	logger      Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, mailer Mailer, frontendURL string) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:        repo,
		mailer:      mailer,
		frontendURL: frontendURL,
		logger:      defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &InitializePasswordResetResponse{}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// Unknown accounts get the same outward result as known
			// ones so the endpoint cannot be used to enumerate emails.
			resp.Success = true
			if event.OnResponse != nil {
				event.OnResponse(resp)
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	plaintext, digest, err := GenerateResetToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(ResetTokenTTL)
	if err := h.repo.Users().SetResetToken(ctx, user.ID, digest, expires); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	link := fmt.Sprintf("%s/reset-password/%s", h.frontendURL, plaintext)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>You requested a password reset. The link below is valid for %d minutes:</p><p><a href=%q>%s</a></p><p>If you did not request this, ignore this email.</p>",
		user.Name,
		int(ResetTokenTTL.Minutes()),
		link,
		link,
	)

	if err := h.mailer.Send(ctx, user.Email, "Password Reset Request", body); err != nil {
		h.logger.Error("reset mail delivery failed for user %s: %v", user.ID, err)
		return ErrMailDelivery
	}

	resp.Delivered = true
	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
