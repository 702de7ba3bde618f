package staffdeck

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

var (
	ErrLeaveNotPending = goerrors.New("Only pending applications can be updated", goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode("LEAVE_NOT_PENDING")

	ErrNotSupervisor = goerrors.New("Only the assigned supervisor can update this application", goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode("NOT_SUPERVISOR")
)

// LeavesController serves the /api/leaves surface. Every route requires
// authentication; ownership and supervisor checks run per handler.
type LeavesController struct {
	Repo   RepositoryManager
	Policy *Policy
	Errors *ErrorHandler
	Logger Logger
}

func NewLeavesController(repo RepositoryManager, policy *Policy, eh *ErrorHandler) *LeavesController {
	return &LeavesController{
		Repo:   repo,
		Policy: policy,
		Errors: eh,
		Logger: defLogger{},
	}
}

const leaveDateLayout = "2006-01-02"

type LeavePayload struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

func (r LeavePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StartDate, validation.Required, validation.Date(leaveDateLayout)),
		validation.Field(&r.EndDate, validation.Required, validation.Date(leaveDateLayout)),
		validation.Field(&r.Reason, validation.Required, validation.Length(1, 500)),
	)
}

type LeaveStatusPayload struct {
	Status string `json:"status"`
}

func (r LeaveStatusPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required,
			validation.In(LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected)),
	)
}

func (l *LeavesController) List(c *fiber.Ctx) error {
	records, err := l.Repo.Leaves().List(c.Context())
	if err != nil {
		return l.Errors.Handle(c, err)
	}
	return respondData(c, fiber.StatusOK, records)
}

func (l *LeavesController) ListByEmployee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("employeeId"))
	if err != nil {
		return l.Errors.Handle(c, goerrors.New("invalid employee id", goerrors.CategoryBadInput))
	}

	records, err := l.Repo.Leaves().ListByEmployee(c.Context(), employeeID)
	if err != nil {
		return l.Errors.Handle(c, err)
	}
	return respondData(c, fiber.StatusOK, records)
}

func (l *LeavesController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return l.Errors.Handle(c, goerrors.New("invalid leave id", goerrors.CategoryBadInput))
	}

	record, err := l.Repo.Leaves().Get(c.Context(), id)
	if err != nil {
		return l.Errors.Handle(c, err)
	}
	return respondData(c, fiber.StatusOK, record)
}

// Create submits a leave application. Non admins always file for their
// own employee row; admins may file for any employee by id.
func (l *LeavesController) Create(c *fiber.Ctx) error {
	actor, ok := UserFromCtx(c)
	if !ok {
		return l.Errors.Handle(c, ErrMissingToken)
	}

	payload := new(LeavePayload)
	if err := c.BodyParser(payload); err != nil {
		return l.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return l.Errors.Handle(c, err)
	}

	var employeeID uuid.UUID
	var err error
	if actor.IsAdmin && payload.EmployeeID != "" {
		employeeID, err = uuid.Parse(payload.EmployeeID)
		if err != nil {
			return l.Errors.Handle(c, goerrors.New("invalid employee id", goerrors.CategoryBadInput))
		}
	} else {
		employeeID, err = l.Policy.OwnerID(c.Context(), actor)
		if err != nil {
			return l.Errors.Handle(c, err)
		}
	}

	employee, err := l.Repo.Employees().Get(c.Context(), employeeID)
	if err != nil {
		return l.Errors.Handle(c, err)
	}

	record := &LeaveApplication{
		EmployeeID:    employee.ID,
		EmployeeName:  employee.Name,
		EmployeeEmail: employee.Email,
		Supervisor:    employee.Supervisor,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		Reason:        payload.Reason,
		Status:        LeaveStatusPending,
		AppliedDate:   time.Now().Format(leaveDateLayout),
	}

	created, err := l.Repo.Leaves().Create(c.Context(), record)
	if err != nil {
		return l.Errors.Handle(c, err)
	}

	return respondData(c, fiber.StatusCreated, created)
}

// Update edits an application. Owners may edit only while the
// application is still pending; admins may edit at any stage.
func (l *LeavesController) Update(c *fiber.Ctx) error {
	actor, ok := UserFromCtx(c)
	if !ok {
		return l.Errors.Handle(c, ErrMissingToken)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return l.Errors.Handle(c, goerrors.New("invalid leave id", goerrors.CategoryBadInput))
	}

	payload := new(LeavePayload)
	if err := c.BodyParser(payload); err != nil {
		return l.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return l.Errors.Handle(c, err)
	}

	record, err := l.Repo.Leaves().Get(c.Context(), id)
	if err != nil {
		return l.Errors.Handle(c, err)
	}

	if err := l.Policy.Authorize(c.Context(), actor, record.EmployeeID); err != nil {
		return l.Errors.Handle(c, err)
	}

	if !actor.IsAdmin && record.Status != LeaveStatusPending {
		return l.Errors.Handle(c, ErrLeaveNotPending)
	}

	record.StartDate = payload.StartDate
	record.EndDate = payload.EndDate
	record.Reason = payload.Reason

	updated, err := l.Repo.Leaves().Update(c.Context(), record)
	if err != nil {
		return l.Errors.Handle(c, err)
	}

	return respondData(c, fiber.StatusOK, updated)
}

func (l *LeavesController) Delete(c *fiber.Ctx) error {
	actor, ok := UserFromCtx(c)
	if !ok {
		return l.Errors.Handle(c, ErrMissingToken)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return l.Errors.Handle(c, goerrors.New("invalid leave id", goerrors.CategoryBadInput))
	}

	record, err := l.Repo.Leaves().Get(c.Context(), id)
	if err != nil {
		return l.Errors.Handle(c, err)
	}

	if err := l.Policy.Authorize(c.Context(), actor, record.EmployeeID); err != nil {
		return l.Errors.Handle(c, err)
	}

	if err := l.Repo.Leaves().Delete(c.Context(), id); err != nil {
		return l.Errors.Handle(c, err)
	}

	return respondMessage(c, fiber.StatusOK, "Leave application deleted successfully")
}

// SetStatus approves or rejects an application. The caller must be an
// admin and must be the supervisor named on the application.
func (l *LeavesController) SetStatus(c *fiber.Ctx) error {
	actor, ok := UserFromCtx(c)
	if !ok {
		return l.Errors.Handle(c, ErrMissingToken)
	}

	if err := l.Policy.RequireAdmin(actor); err != nil {
		return l.Errors.Handle(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return l.Errors.Handle(c, goerrors.New("invalid leave id", goerrors.CategoryBadInput))
	}

	payload := new(LeaveStatusPayload)
	if err := c.BodyParser(payload); err != nil {
		return l.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return l.Errors.Handle(c, err)
	}

	record, err := l.Repo.Leaves().Get(c.Context(), id)
	if err != nil {
		return l.Errors.Handle(c, err)
	}

	if record.Supervisor != actor.Email {
		return l.Errors.Handle(c, ErrNotSupervisor)
	}

	updated, err := l.Repo.Leaves().SetStatus(c.Context(), id, payload.Status)
	if err != nil {
		return l.Errors.Handle(c, err)
	}

	return respondData(c, fiber.StatusOK, updated)
}
