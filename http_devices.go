package staffdeck

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

var (
	ErrDeviceAvailableAssigned = goerrors.New("An assigned device cannot be marked Available", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("DEVICE_AVAILABLE_ASSIGNED")

	ErrDeviceInUseUnassigned = goerrors.New("A device cannot be In Use without an assignee", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("DEVICE_IN_USE_UNASSIGNED")

	ErrAssigneeNotFound = goerrors.New("Assignee is not a known employee", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("DEVICE_ASSIGNEE_UNKNOWN")
)

// DevicesController serves the /api/devices surface. Reads are open to
// any authenticated user; mutations are gated to admins by the route
// setup.
type DevicesController struct {
	Repo   RepositoryManager
	Errors *ErrorHandler
	Logger Logger
}

func NewDevicesController(repo RepositoryManager, eh *ErrorHandler) *DevicesController {
	return &DevicesController{
		Repo:   repo,
		Errors: eh,
		Logger: defLogger{},
	}
}

type DevicePayload struct {
	Type       string `json:"type"`
	Model      string `json:"model"`
	AssignedTo string `json:"assigned_to"`
	Status     string `json:"status"`
}

func (r DevicePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Model, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Status, validation.By(optionalDeviceStatus)),
	)
}

func optionalDeviceStatus(value any) error {
	s, _ := value.(string)
	if s == "" || IsValidDeviceStatus(s) {
		return nil
	}
	return fmt.Errorf("must be one of: In Use, Available, Under Maintenance")
}

type DeviceAssignPayload struct {
	AssignedTo string `json:"assigned_to"`
}

// checkDeviceRules enforces the assignment invariants: an assigned
// device cannot read Available, an unassigned one cannot read In Use,
// and an assignee must exist in the directory.
func (d *DevicesController) checkDeviceRules(c *fiber.Ctx, assignedTo, status string) error {
	if assignedTo != "" && status == DeviceStatusAvailable {
		return ErrDeviceAvailableAssigned
	}
	if assignedTo == "" && status == DeviceStatusInUse {
		return ErrDeviceInUseUnassigned
	}
	if assignedTo != "" {
		if err := d.assigneeExists(c, assignedTo); err != nil {
			return err
		}
	}
	return nil
}

func (d *DevicesController) assigneeExists(c *fiber.Ctx, name string) error {
	employees, err := d.Repo.Employees().List(c.Context())
	if err != nil {
		return err
	}
	for _, emp := range employees {
		if emp.Name == name {
			return nil
		}
	}
	return ErrAssigneeNotFound
}

func (d *DevicesController) List(c *fiber.Ctx) error {
	records, err := d.Repo.Devices().List(c.Context())
	if err != nil {
		return d.Errors.Handle(c, err)
	}
	return respondData(c, fiber.StatusOK, records)
}

func (d *DevicesController) Stats(c *fiber.Ctx) error {
	stats, err := d.Repo.Devices().Stats(c.Context())
	if err != nil {
		return d.Errors.Handle(c, err)
	}
	return respondData(c, fiber.StatusOK, stats)
}

func (d *DevicesController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return d.Errors.Handle(c, goerrors.New("invalid device id", goerrors.CategoryBadInput))
	}

	record, err := d.Repo.Devices().Get(c.Context(), id)
	if err != nil {
		return d.Errors.Handle(c, err)
	}
	return respondData(c, fiber.StatusOK, record)
}

func (d *DevicesController) Create(c *fiber.Ctx) error {
	payload := new(DevicePayload)
	if err := c.BodyParser(payload); err != nil {
		return d.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return d.Errors.Handle(c, err)
	}

	status := payload.Status
	if status == "" {
		if payload.AssignedTo != "" {
			status = DeviceStatusInUse
		} else {
			status = DeviceStatusAvailable
		}
	}

	if err := d.checkDeviceRules(c, payload.AssignedTo, status); err != nil {
		return d.Errors.Handle(c, err)
	}

	record := &Device{
		Type:       payload.Type,
		Model:      payload.Model,
		AssignedTo: payload.AssignedTo,
		Status:     status,
	}

	created, err := d.Repo.Devices().Create(c.Context(), record)
	if err != nil {
		return d.Errors.Handle(c, err)
	}

	return respondData(c, fiber.StatusCreated, created)
}

func (d *DevicesController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return d.Errors.Handle(c, goerrors.New("invalid device id", goerrors.CategoryBadInput))
	}

	payload := new(DevicePayload)
	if err := c.BodyParser(payload); err != nil {
		return d.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return d.Errors.Handle(c, err)
	}

	record, err := d.Repo.Devices().Get(c.Context(), id)
	if err != nil {
		return d.Errors.Handle(c, err)
	}

	record.Type = payload.Type
	record.Model = payload.Model
	record.AssignedTo = payload.AssignedTo
	if payload.Status != "" {
		record.Status = payload.Status
	}

	if err := d.checkDeviceRules(c, record.AssignedTo, record.Status); err != nil {
		return d.Errors.Handle(c, err)
	}

	updated, err := d.Repo.Devices().Update(c.Context(), record)
	if err != nil {
		return d.Errors.Handle(c, err)
	}

	return respondData(c, fiber.StatusOK, updated)
}

// Assign sets or clears the assignee and derives the status: assigned
// devices read In Use, cleared ones read Available. Devices under
// maintenance keep their status when cleared.
func (d *DevicesController) Assign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return d.Errors.Handle(c, goerrors.New("invalid device id", goerrors.CategoryBadInput))
	}

	payload := new(DeviceAssignPayload)
	if err := c.BodyParser(payload); err != nil {
		return d.Errors.Handle(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	record, err := d.Repo.Devices().Get(c.Context(), id)
	if err != nil {
		return d.Errors.Handle(c, err)
	}

	record.AssignedTo = payload.AssignedTo
	if payload.AssignedTo != "" {
		record.Status = DeviceStatusInUse
	} else if record.Status == DeviceStatusInUse {
		record.Status = DeviceStatusAvailable
	}

	if err := d.checkDeviceRules(c, record.AssignedTo, record.Status); err != nil {
		return d.Errors.Handle(c, err)
	}

	updated, err := d.Repo.Devices().Update(c.Context(), record)
	if err != nil {
		return d.Errors.Handle(c, err)
	}

	return respondData(c, fiber.StatusOK, updated)
}

func (d *DevicesController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return d.Errors.Handle(c, goerrors.New("invalid device id", goerrors.CategoryBadInput))
	}

	if err := d.Repo.Devices().Delete(c.Context(), id); err != nil {
		if repository.IsRecordNotFound(err) {
			return respondMessage(c, fiber.StatusNotFound, "Device not found")
		}
		return d.Errors.Handle(c, err)
	}

	return respondMessage(c, fiber.StatusOK, "Device deleted successfully")
}
