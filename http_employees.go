package staffdeck

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

var ErrEmployeeEmailTaken = goerrors.New("Employee with this email already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode("EMPLOYEE_EMAIL_TAKEN")

// EmployeesController serves the /api/employees surface. Reads are open
// to any authenticated user; mutations are gated to admins by the route
// setup.
type EmployeesController struct {
	Repo          RepositoryManager
	Errors        *ErrorHandler
	Logger        Logger
	DefaultRegion string
}

func NewEmployeesController(repo RepositoryManager, eh *ErrorHandler) *EmployeesController {
	return &EmployeesController{
		Repo:          repo,
		Errors:        eh,
		Logger:        defLogger{},
		DefaultRegion: "US",
	}
}

type EmployeePayload struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Contact          string   `json:"contact"`
	Supervisor       string   `json:"supervisor"`
	AvailableForTask *bool    `json:"available_for_task"`
	UseTransport     *bool    `json:"use_transport"`
	BandwidthStatus  string   `json:"bandwidth_status"`
	CurrentProject   string   `json:"current_project"`
	Workload         *int     `json:"workload"`
	SkillSet         []string `json:"skill_set"`
}

func (r EmployeePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Supervisor, is.Email),
		validation.Field(&r.BandwidthStatus, validation.By(optionalBandwidthStatus)),
		validation.Field(&r.Workload, validation.Min(0), validation.Max(100)),
	)
}

func optionalBandwidthStatus(value any) error {
	s, _ := value.(string)
	if s == "" || IsValidBandwidthStatus(s) {
		return nil
	}
	return fmt.Errorf("must be one of: available, partially-available, busy")
}

// normalizeContact validates a phone number and stores it in E.164
// form. Empty contact is allowed.
func (e *EmployeesController) normalizeContact(contact string) (string, error) {
	if contact == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(contact, e.DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", validation.Errors{
			"contact": fmt.Errorf("must be a valid phone number"),
		}
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (e *EmployeesController) List(c *fiber.Ctx) error {
	records, err := e.Repo.Employees().List(c.Context())
	if err != nil {
		return e.Errors.Handle(c, err)
	}
	return respondData(c, fiber.StatusOK, records)
}

func (e *EmployeesController) Stats(c *fiber.Ctx) error {
	stats, err := e.Repo.Employees().Stats(c.Context())
	if err != nil {
		return e.Errors.Handle(c, err)
	}

	pending, err := e.Repo.Leaves().CountPending(c.Context())
	if err != nil {
		return e.Errors.Handle(c, err)
	}
	stats.PendingLeaves = pending

	inUse, err := e.Repo.Devices().CountInUse(c.Context())
	if err != nil {
		return e.Errors.Handle(c, err)
	}
	stats.DevicesInUse = inUse

	return respondData(c, fiber.StatusOK, stats)
}

func (e *EmployeesController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return e.Errors.Handle(c, goerrors.New("invalid employee id", goerrors.CategoryBadInput))
	}

	record, err := e.Repo.Employees().Get(c.Context(), id)
	if err != nil {
		return e.Errors.Handle(c, err)
	}
	return respondData(c, fiber.StatusOK, record)
}

func (e *EmployeesController) Create(c *fiber.Ctx) error {
	payload := new(EmployeePayload)
	if err := c.BodyParser(payload); err != nil {
		return e.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return e.Errors.Handle(c, err)
	}

	contact, err := e.normalizeContact(payload.Contact)
	if err != nil {
		return e.Errors.Handle(c, err)
	}

	record := &Employee{
		Name:            payload.Name,
		Email:           payload.Email,
		Contact:         contact,
		Supervisor:      payload.Supervisor,
		BandwidthStatus: payload.BandwidthStatus,
		CurrentProject:  payload.CurrentProject,
		SkillSet:        payload.SkillSet,
	}
	if payload.AvailableForTask != nil {
		record.AvailableForTask = *payload.AvailableForTask
	}
	if payload.UseTransport != nil {
		record.UseTransport = *payload.UseTransport
	}
	if payload.Workload != nil {
		record.Workload = *payload.Workload
	}

	created, err := e.Repo.Employees().Create(c.Context(), record)
	if err != nil {
		if isUniqueViolation(err) {
			return e.Errors.Handle(c, ErrEmployeeEmailTaken)
		}
		return e.Errors.Handle(c, err)
	}

	return respondData(c, fiber.StatusCreated, created)
}

func (e *EmployeesController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return e.Errors.Handle(c, goerrors.New("invalid employee id", goerrors.CategoryBadInput))
	}

	payload := new(EmployeePayload)
	if err := c.BodyParser(payload); err != nil {
		return e.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return e.Errors.Handle(c, err)
	}

	record, err := e.Repo.Employees().Get(c.Context(), id)
	if err != nil {
		return e.Errors.Handle(c, err)
	}

	contact, err := e.normalizeContact(payload.Contact)
	if err != nil {
		return e.Errors.Handle(c, err)
	}

	record.Name = payload.Name
	record.Email = payload.Email
	record.Supervisor = payload.Supervisor
	record.CurrentProject = payload.CurrentProject
	if contact != "" {
		record.Contact = contact
	}
	if payload.BandwidthStatus != "" {
		record.BandwidthStatus = payload.BandwidthStatus
	}
	if payload.AvailableForTask != nil {
		record.AvailableForTask = *payload.AvailableForTask
	}
	if payload.UseTransport != nil {
		record.UseTransport = *payload.UseTransport
	}
	if payload.Workload != nil {
		record.Workload = *payload.Workload
	}
	if payload.SkillSet != nil {
		record.SkillSet = payload.SkillSet
	}

	updated, err := e.Repo.Employees().Update(c.Context(), record)
	if err != nil {
		if isUniqueViolation(err) {
			return e.Errors.Handle(c, ErrEmployeeEmailTaken)
		}
		return e.Errors.Handle(c, err)
	}

	return respondData(c, fiber.StatusOK, updated)
}

func (e *EmployeesController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return e.Errors.Handle(c, goerrors.New("invalid employee id", goerrors.CategoryBadInput))
	}

	if err := e.Repo.Employees().Delete(c.Context(), id); err != nil {
		return e.Errors.Handle(c, err)
	}

	return respondMessage(c, fiber.StatusOK, "Employee deleted successfully")
}
