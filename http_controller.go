package staffdeck

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// AuthController serves the /api/auth surface.
type AuthController struct {
	Debug         bool
	UseHashid     bool
	Logger        Logger
	Repo          RepositoryManager
	Auther        *Auther
	Errors        *ErrorHandler
	Register      *RegisterUserHandler
	ResetInit     *InitializePasswordResetHandler
	ResetFinalize *FinalizePasswordResetHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithAuthRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthErrors(eh *ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Errors = eh
		return c
	}
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithRegisterHandler(h *RegisterUserHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = h
		return c
	}
}

func WithResetHandlers(init *InitializePasswordResetHandler, finalize *FinalizePasswordResetHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ResetInit = init
		c.ResetFinalize = finalize
		return c
	}
}

func WithAuthDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithHashidIDs(enabled bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.UseHashid = enabled
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Errors == nil {
		c.Errors = NewErrorHandler(false, c.Logger)
	}

	return c
}

// RegisterPayload is the signup body. There is no admin flag here:
// accounts always start unprivileged and are elevated through the
// admin-only endpoint.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.Errors.Handle(c, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	var resp *RegisterUserResponse
	err := a.Register.Execute(c.Context(), RegisterUserMessage{
		Name:      payload.Name,
		Email:     payload.Email,
		Password:  payload.Password,
		UseHashid: a.UseHashid,
		OnResponse: func(r *RegisterUserResponse) {
			resp = r
		},
	})
	if err != nil {
		return a.Errors.Handle(c, err)
	}

	return respond(c, fiber.StatusCreated, fiber.Map{
		"token": resp.Token,
		"user":  resp.User.PublicView(),
	})
}

// LoginPayload is the credentials body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.Errors.Handle(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	token, user, err := a.Auther.Login(c.Context(), email, payload.Password)
	if err != nil {
		return a.Errors.Handle(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  user.PublicView(),
	})
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	token, ok := TokenFromCtx(c)
	if !ok {
		return respond(c, fiber.StatusBadRequest, fiber.Map{
			"success": false,
			"message": "No token provided",
		})
	}

	if err := a.Auther.Logout(c.Context(), token); err != nil {
		return a.Errors.Handle(c, err)
	}

	return respondMessage(c, fiber.StatusOK, "Logged out successfully")
}

func (a *AuthController) ProfileGet(c *fiber.Ctx) error {
	user, ok := UserFromCtx(c)
	if !ok {
		return a.Errors.Handle(c, ErrMissingToken)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"user": user.PublicView()})
}

// UpdateProfilePayload carries the mutable account fields. Both are
// optional but at least one must be present.
type UpdateProfilePayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (r UpdateProfilePayload) Validate() error {
	if r.Name == nil && r.Email == nil {
		return validation.Errors{
			"payload": fmt.Errorf("at least one of name or email is required"),
		}
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
	)
}

func (a *AuthController) ProfilePut(c *fiber.Ctx) error {
	user, ok := UserFromCtx(c)
	if !ok {
		return a.Errors.Handle(c, ErrMissingToken)
	}

	payload := new(UpdateProfilePayload)
	if err := c.BodyParser(payload); err != nil {
		return a.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.Errors.Handle(c, err)
	}

	record := &User{ID: user.ID}
	if payload.Name != nil {
		record.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Email != nil {
		record.Email = strings.ToLower(strings.TrimSpace(*payload.Email))
	}

	updated, err := a.Repo.Users().UpdateProfile(c.Context(), record)
	if err != nil {
		if isUniqueViolation(err) {
			return a.Errors.Handle(c, ErrEmailTaken)
		}
		return a.Errors.Handle(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{"user": updated.PublicView()})
}

// ForgotPasswordPayload requests a reset link.
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.Errors.Handle(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	err := a.ResetInit.Execute(c.Context(), InitializePasswordResetMessage{
		Email: email,
	})
	if err != nil {
		return a.Errors.Handle(c, err)
	}

	return respondMessage(c, fiber.StatusOK,
		"If an account with that email exists, a password reset link has been sent")
}

// ResetPasswordPayload consumes a reset link token.
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) ResetPasswordPost(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.Errors.Handle(c, err)
	}

	err := a.ResetFinalize.Execute(c.Context(), FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.Password,
	})
	if err != nil {
		return a.Errors.Handle(c, err)
	}

	return respondMessage(c, fiber.StatusOK, "Password has been reset successfully")
}

// SetAdminPayload toggles account privileges.
type SetAdminPayload struct {
	IsAdmin *bool `json:"is_admin"`
}

func (r SetAdminPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsAdmin, validation.NotNil),
	)
}

func (a *AuthController) SetAdminPatch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return a.Errors.Handle(c, goerrors.New("invalid user id", goerrors.CategoryBadInput))
	}

	payload := new(SetAdminPayload)
	if err := c.BodyParser(payload); err != nil {
		return a.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.Errors.Handle(c, err)
	}

	updated, err := a.Repo.Users().SetAdmin(c.Context(), id, *payload.IsAdmin)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return respondMessage(c, fiber.StatusNotFound, "User not found")
		}
		return a.Errors.Handle(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{"user": updated.PublicView()})
}
