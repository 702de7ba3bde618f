package staffdeck

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Locals keys set by the auth middleware.
const (
	LocalsUserKey  = "user"
	LocalsTokenKey = "token"
)

// UserFromCtx returns the authenticated user stored by the auth
// middleware.
func UserFromCtx(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals(LocalsUserKey).(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// TokenFromCtx returns the raw bearer token stored by the auth
// middleware.
func TokenFromCtx(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(LocalsTokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func respond(c *fiber.Ctx, status int, body fiber.Map) error {
	if _, ok := body["success"]; !ok {
		body["success"] = status < 400
	}
	return c.Status(status).JSON(body)
}

func respondData(c *fiber.Ctx, status int, data any) error {
	return respond(c, status, fiber.Map{"data": data})
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return respond(c, status, fiber.Map{"message": message})
}

// ErrorHandler renders errors as JSON envelopes. In production unknown
// errors collapse to a generic message; structured errors always carry
// their crafted message.
type ErrorHandler struct {
	Production bool
	Logger     Logger
}

func NewErrorHandler(production bool, logger Logger) *ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &ErrorHandler{Production: production, Logger: logger}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if verr, ok := err.(validation.Errors); ok {
		fields := map[string]string{}
		for name, ferr := range verr {
			fields[name] = ferr.Error()
		}
		return respond(c, fiber.StatusBadRequest, fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  fields,
		})
	}

	if repository.IsRecordNotFound(err) {
		return respondMessage(c, fiber.StatusNotFound, "Record not found")
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		status := HTTPStatus(richErr)
		if status >= 500 {
			h.Logger.Error("request failed (actor %s): %v", actorID(c), err)
		}
		return respondMessage(c, status, richErr.Message)
	}

	h.Logger.Error("unhandled error (actor %s): %v", actorID(c), err)
	if h.Production {
		return respondMessage(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return respondMessage(c, fiber.StatusInternalServerError, err.Error())
}

// actorID names the authenticated user for log lines, or "anonymous".
func actorID(c *fiber.Ctx) string {
	if user, ok := FromContext(c.UserContext()); ok {
		return user.ID.String()
	}
	if user, ok := UserFromCtx(c); ok {
		return user.ID.String()
	}
	return "anonymous"
}

// RequireAdmin gates a route group to admin accounts. It assumes the
// auth middleware already ran.
func RequireAdmin(eh *ErrorHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromCtx(c)
		if !ok || !user.IsAdmin {
			return eh.Handle(c, ErrAdminRequired)
		}
		return c.Next()
	}
}
