package staffdeck

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/staffdeck/staffdeck/middleware/authware"
)

// RouteOptions collects everything MountRoutes wires into the app.
type RouteOptions struct {
	Auth      *AuthController
	Employees *EmployeesController
	Leaves    *LeavesController
	Devices   *DevicesController
	Auther    *Auther
	Errors    *ErrorHandler
	// RateLimit, when set, guards the whole /api group.
	RateLimit fiber.Handler
}

// MountRoutes registers the full HTTP surface on the app.
func MountRoutes(app *fiber.App, opts RouteOptions) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	if opts.RateLimit != nil {
		api.Use(opts.RateLimit)
	}

	protect := authware.New(authware.Config{
		Authenticator: authware.AuthenticatorFunc(func(ctx context.Context, token string) (any, error) {
			return opts.Auther.Authenticate(ctx, token)
		}),
		ErrorHandler: opts.Errors.Handle,
		ContextKey:   LocalsUserKey,
		TokenKey:     LocalsTokenKey,
		ContextEnricher: func(ctx context.Context, principal any) context.Context {
			if user, ok := principal.(*User); ok {
				return WithContext(ctx, user)
			}
			return ctx
		},
	})
	admin := RequireAdmin(opts.Errors)

	auth := api.Group("/auth")
	auth.Post("/register", opts.Auth.RegisterPost)
	auth.Post("/login", opts.Auth.LoginPost)
	auth.Post("/forgot-password", opts.Auth.ForgotPasswordPost)
	auth.Post("/reset-password", opts.Auth.ResetPasswordPost)
	auth.Post("/logout", protect, opts.Auth.LogoutPost)
	auth.Get("/me", protect, opts.Auth.ProfileGet)
	auth.Get("/profile", protect, opts.Auth.ProfileGet)
	auth.Put("/profile", protect, opts.Auth.ProfilePut)
	auth.Patch("/users/:id/admin", protect, admin, opts.Auth.SetAdminPatch)

	employees := api.Group("/employees", protect)
	employees.Get("/", opts.Employees.List)
	employees.Get("/stats", opts.Employees.Stats)
	employees.Get("/:id", opts.Employees.Get)
	employees.Post("/", admin, opts.Employees.Create)
	employees.Put("/:id", admin, opts.Employees.Update)
	employees.Delete("/:id", admin, opts.Employees.Delete)

	leaves := api.Group("/leaves", protect)
	leaves.Get("/", opts.Leaves.List)
	leaves.Get("/employee/:employeeId", opts.Leaves.ListByEmployee)
	leaves.Get("/:id", opts.Leaves.Get)
	leaves.Post("/", opts.Leaves.Create)
	leaves.Put("/:id", opts.Leaves.Update)
	leaves.Delete("/:id", opts.Leaves.Delete)
	leaves.Patch("/:id/status", opts.Leaves.SetStatus)

	devices := api.Group("/devices", protect)
	devices.Get("/", opts.Devices.List)
	devices.Get("/stats", opts.Devices.Stats)
	devices.Get("/:id", opts.Devices.Get)
	devices.Post("/", admin, opts.Devices.Create)
	devices.Put("/:id", admin, opts.Devices.Update)
	devices.Patch("/:id/assign", admin, opts.Devices.Assign)
	devices.Delete("/:id", admin, opts.Devices.Delete)
}
