package staffdeck

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BandwidthStatus is the employee's availability band
type BandwidthStatus = string

const (
	// BandwidthAvailable means the employee can take new work
	BandwidthAvailable BandwidthStatus = "available"
	// BandwidthPartial means the employee has limited capacity
	BandwidthPartial BandwidthStatus = "partially-available"
	// BandwidthBusy means the employee is fully loaded
	BandwidthBusy BandwidthStatus = "busy"
)

// LeaveStatus is the review state of a leave application
type LeaveStatus = string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// DeviceStatus is the inventory state of a device
type DeviceStatus = string

const (
	DeviceStatusInUse       DeviceStatus = "In Use"
	DeviceStatusAvailable   DeviceStatus = "Available"
	DeviceStatusMaintenance DeviceStatus = "Under Maintenance"
)

// User is the account model. PasswordHash and the reset token fields
// never leave the persistence layer; handlers respond with PublicView.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name         string    `bun:"name,notnull" json:"name,omitempty"`
	Email        string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	IsAdmin      bool      `bun:"is_admin" json:"is_admin"`

	// ResetTokenDigest and ResetTokenExpires are either both set or
	// both null. Only the sha256 digest of the reset token is stored.
	ResetTokenDigest  *string    `bun:"reset_token_digest,nullzero" json:"-"`
	ResetTokenExpires *time.Time `bun:"reset_token_expires,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicUser is the view of a User safe to return over the wire.
type PublicUser struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
}

// PublicView strips credential material from the record.
func (u *User) PublicView() PublicUser {
	return PublicUser{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}
}

// HasActiveReset reports whether the user has an unconsumed reset token
// that has not yet expired.
func (u *User) HasActiveReset(now time.Time) bool {
	return u.ResetTokenDigest != nil &&
		u.ResetTokenExpires != nil &&
		u.ResetTokenExpires.After(now)
}

// Employee is the directory model
type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:emp"`

	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name             string     `bun:"name,notnull" json:"name,omitempty"`
	Email            string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Contact          string     `bun:"contact" json:"contact,omitempty"`
	Supervisor       string     `bun:"supervisor" json:"supervisor,omitempty"`
	AvailableForTask bool       `bun:"available_for_task" json:"available_for_task"`
	UseTransport     bool       `bun:"use_transport" json:"use_transport"`
	BandwidthStatus  string     `bun:"bandwidth_status,notnull,default:'available'" json:"bandwidth_status,omitempty"`
	CurrentProject   string     `bun:"current_project" json:"current_project,omitempty"`
	Workload         int        `bun:"workload" json:"workload"`
	SkillSet         []string   `bun:"skill_set" json:"skill_set,omitempty"`
	CreatedAt        *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// LeaveApplication is a leave request. EmployeeName/Email/Supervisor are
// denormalized from the employee row at submission time so the record
// survives directory edits. Dates are ISO 8601 calendar dates.
type LeaveApplication struct {
	bun.BaseModel `bun:"table:leave_applications,alias:lvs"`

	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EmployeeID    uuid.UUID  `bun:"employee_id,nullzero,type:uuid" json:"employee_id,omitempty"`
	EmployeeName  string     `bun:"employee_name,notnull" json:"employee_name,omitempty"`
	EmployeeEmail string     `bun:"employee_email,notnull" json:"employee_email,omitempty"`
	Supervisor    string     `bun:"supervisor" json:"supervisor,omitempty"`
	StartDate     string     `bun:"start_date,notnull" json:"start_date,omitempty"`
	EndDate       string     `bun:"end_date,notnull" json:"end_date,omitempty"`
	Reason        string     `bun:"reason" json:"reason,omitempty"`
	Status        string     `bun:"status,notnull,default:'pending'" json:"status,omitempty"`
	AppliedDate   string     `bun:"applied_date,notnull" json:"applied_date,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Device is the inventory model
type Device struct {
	bun.BaseModel `bun:"table:devices,alias:dev"`

	ID         uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Type       string     `bun:"type,notnull" json:"type,omitempty"`
	Model      string     `bun:"model,notnull" json:"model,omitempty"`
	AssignedTo string     `bun:"assigned_to" json:"assigned_to,omitempty"`
	Status     string     `bun:"status,notnull,default:'Available'" json:"status,omitempty"`
	CreatedAt  *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt  *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsValidLeaveStatus checks the status against the accepted enum.
func IsValidLeaveStatus(s string) bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	default:
		return false
	}
}

// IsValidDeviceStatus checks the status against the accepted enum.
func IsValidDeviceStatus(s string) bool {
	switch s {
	case DeviceStatusInUse, DeviceStatusAvailable, DeviceStatusMaintenance:
		return true
	default:
		return false
	}
}

// IsValidBandwidthStatus checks the status against the accepted enum.
func IsValidBandwidthStatus(s string) bool {
	switch s {
	case BandwidthAvailable, BandwidthPartial, BandwidthBusy:
		return true
	default:
		return false
	}
}
