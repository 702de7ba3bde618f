package staffdeck_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-repository-bun"

	"github.com/staffdeck/staffdeck"
)

// fakeUsers is an in-memory Users store. Errors mirror the real
// repository: missing records satisfy repository.IsRecordNotFound and
// duplicate emails read like a driver unique violation.
type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*staffdeck.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*staffdeck.User{}}
}

func notFound() error {
	return repository.NewRecordNotFound()
}

func uniqueViolation() error {
	return fmt.Errorf("UNIQUE constraint failed: users.email")
}

func copyUser(u *staffdeck.User) *staffdeck.User {
	c := *u
	return &c
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*staffdeck.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return copyUser(u), nil
	}
	return nil, notFound()
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*staffdeck.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, notFound()
}

func (f *fakeUsers) GetByResetDigest(_ context.Context, digest string, now time.Time) (*staffdeck.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.ResetTokenDigest != nil && *u.ResetTokenDigest == digest &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now) {
			return copyUser(u), nil
		}
	}
	return nil, notFound()
}

func (f *fakeUsers) Register(ctx context.Context, user *staffdeck.User) (*staffdeck.User, error) {
	return f.RegisterTx(ctx, nil, user)
}

func (f *fakeUsers) RegisterTx(_ context.Context, _ bun.IDB, user *staffdeck.User) (*staffdeck.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return nil, uniqueViolation()
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byID[user.ID] = copyUser(user)
	return copyUser(user), nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, user *staffdeck.User) (*staffdeck.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.byID[user.ID]
	if !ok {
		return nil, notFound()
	}
	if user.Email != "" && user.Email != current.Email {
		for _, other := range f.byID {
			if other.ID != user.ID && other.Email == user.Email {
				return nil, uniqueViolation()
			}
		}
		current.Email = user.Email
	}
	if user.Name != "" {
		current.Name = user.Name
	}
	return copyUser(current), nil
}

func (f *fakeUsers) SetAdmin(_ context.Context, id uuid.UUID, isAdmin bool) (*staffdeck.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, notFound()
	}
	u.IsAdmin = isAdmin
	return copyUser(u), nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id uuid.UUID, digest string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return notFound()
	}
	u.ResetTokenDigest = &digest
	exp := expires
	u.ResetTokenExpires = &exp
	return nil
}

func (f *fakeUsers) CompletePasswordReset(_ context.Context, id uuid.UUID, digest, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return notFound()
	}
	if u.ResetTokenDigest == nil || *u.ResetTokenDigest != digest {
		return notFound()
	}
	u.PasswordHash = passwordHash
	u.ResetTokenDigest = nil
	u.ResetTokenExpires = nil
	return nil
}

type fakeEmployees struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*staffdeck.Employee
}

func newFakeEmployees() *fakeEmployees {
	return &fakeEmployees{byID: map[uuid.UUID]*staffdeck.Employee{}}
}

func copyEmployee(e *staffdeck.Employee) *staffdeck.Employee {
	c := *e
	return &c
}

func (f *fakeEmployees) Get(_ context.Context, id uuid.UUID) (*staffdeck.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		return copyEmployee(e), nil
	}
	return nil, notFound()
}

func (f *fakeEmployees) GetByEmail(_ context.Context, email string) (*staffdeck.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.Email == email {
			return copyEmployee(e), nil
		}
	}
	return nil, notFound()
}

func (f *fakeEmployees) List(_ context.Context) ([]*staffdeck.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := []*staffdeck.Employee{}
	for _, e := range f.byID {
		records = append(records, copyEmployee(e))
	}
	return records, nil
}

func (f *fakeEmployees) Create(_ context.Context, record *staffdeck.Employee) (*staffdeck.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.Email == record.Email {
			return nil, uniqueViolation()
		}
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.BandwidthStatus == "" {
		record.BandwidthStatus = staffdeck.BandwidthAvailable
	}
	f.byID[record.ID] = copyEmployee(record)
	return copyEmployee(record), nil
}

func (f *fakeEmployees) Update(_ context.Context, record *staffdeck.Employee) (*staffdeck.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[record.ID]; !ok {
		return nil, notFound()
	}
	f.byID[record.ID] = copyEmployee(record)
	return copyEmployee(record), nil
}

func (f *fakeEmployees) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return notFound()
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEmployees) Stats(_ context.Context) (*staffdeck.EmployeeStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &staffdeck.EmployeeStats{Bandwidth: map[string]int{}}
	var workload int
	for _, e := range f.byID {
		stats.Total++
		if e.AvailableForTask {
			stats.AvailableForTask++
		}
		if e.UseTransport {
			stats.UsingTransport++
		}
		stats.Bandwidth[e.BandwidthStatus]++
		workload += e.Workload
	}
	if stats.Total > 0 {
		stats.AverageWorkload = float64(workload) / float64(stats.Total)
	}
	return stats, nil
}

type fakeLeaves struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*staffdeck.LeaveApplication
}

func newFakeLeaves() *fakeLeaves {
	return &fakeLeaves{byID: map[uuid.UUID]*staffdeck.LeaveApplication{}}
}

func copyLeave(l *staffdeck.LeaveApplication) *staffdeck.LeaveApplication {
	c := *l
	return &c
}

func (f *fakeLeaves) Get(_ context.Context, id uuid.UUID) (*staffdeck.LeaveApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.byID[id]; ok {
		return copyLeave(l), nil
	}
	return nil, notFound()
}

func (f *fakeLeaves) List(_ context.Context) ([]*staffdeck.LeaveApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := []*staffdeck.LeaveApplication{}
	for _, l := range f.byID {
		records = append(records, copyLeave(l))
	}
	return records, nil
}

func (f *fakeLeaves) ListByEmployee(_ context.Context, employeeID uuid.UUID) ([]*staffdeck.LeaveApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := []*staffdeck.LeaveApplication{}
	for _, l := range f.byID {
		if l.EmployeeID == employeeID {
			records = append(records, copyLeave(l))
		}
	}
	return records, nil
}

func (f *fakeLeaves) CountPending(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.byID {
		if l.Status == staffdeck.LeaveStatusPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeLeaves) Create(_ context.Context, record *staffdeck.LeaveApplication) (*staffdeck.LeaveApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = staffdeck.LeaveStatusPending
	}
	f.byID[record.ID] = copyLeave(record)
	return copyLeave(record), nil
}

func (f *fakeLeaves) Update(_ context.Context, record *staffdeck.LeaveApplication) (*staffdeck.LeaveApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[record.ID]; !ok {
		return nil, notFound()
	}
	f.byID[record.ID] = copyLeave(record)
	return copyLeave(record), nil
}

func (f *fakeLeaves) SetStatus(_ context.Context, id uuid.UUID, status staffdeck.LeaveStatus) (*staffdeck.LeaveApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, notFound()
	}
	l.Status = status
	return copyLeave(l), nil
}

func (f *fakeLeaves) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return notFound()
	}
	delete(f.byID, id)
	return nil
}

type fakeDevices struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*staffdeck.Device
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{byID: map[uuid.UUID]*staffdeck.Device{}}
}

func copyDevice(d *staffdeck.Device) *staffdeck.Device {
	c := *d
	return &c
}

func (f *fakeDevices) Get(_ context.Context, id uuid.UUID) (*staffdeck.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.byID[id]; ok {
		return copyDevice(d), nil
	}
	return nil, notFound()
}

func (f *fakeDevices) List(_ context.Context) ([]*staffdeck.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := []*staffdeck.Device{}
	for _, d := range f.byID {
		records = append(records, copyDevice(d))
	}
	return records, nil
}

func (f *fakeDevices) CountInUse(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.byID {
		if d.Status == staffdeck.DeviceStatusInUse {
			n++
		}
	}
	return n, nil
}

func (f *fakeDevices) Create(_ context.Context, record *staffdeck.Device) (*staffdeck.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = staffdeck.DeviceStatusAvailable
	}
	f.byID[record.ID] = copyDevice(record)
	return copyDevice(record), nil
}

func (f *fakeDevices) Update(_ context.Context, record *staffdeck.Device) (*staffdeck.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[record.ID]; !ok {
		return nil, notFound()
	}
	f.byID[record.ID] = copyDevice(record)
	return copyDevice(record), nil
}

func (f *fakeDevices) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return notFound()
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeDevices) Stats(_ context.Context) (*staffdeck.DeviceStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &staffdeck.DeviceStats{
		ByStatus: map[string]int{},
		ByType:   map[string]int{},
	}
	for _, d := range f.byID {
		stats.Total++
		stats.ByStatus[d.Status]++
		stats.ByType[d.Type]++
	}
	return stats, nil
}

// fakeRepo bundles the fakes behind the RepositoryManager interface.
// RunInTx runs the function directly; the fakes have no transactions.
type fakeRepo struct {
	users     *fakeUsers
	employees *fakeEmployees
	leaves    *fakeLeaves
	devices   *fakeDevices
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:     newFakeUsers(),
		employees: newFakeEmployees(),
		leaves:    newFakeLeaves(),
		devices:   newFakeDevices(),
	}
}

func (f *fakeRepo) Validate() error { return nil }
func (f *fakeRepo) MustValidate()   {}

func (f *fakeRepo) RunInTx(ctx context.Context, _ *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

func (f *fakeRepo) Users() staffdeck.Users         { return f.users }
func (f *fakeRepo) Employees() staffdeck.Employees { return f.employees }
func (f *fakeRepo) Leaves() staffdeck.Leaves       { return f.leaves }
func (f *fakeRepo) Devices() staffdeck.Devices     { return f.devices }

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

// recordingMailer captures outgoing mail so tests can pull the reset
// link out of the body.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *recordingMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// lastResetToken pulls the plaintext token out of the most recent reset
// link.
func (m *recordingMailer) lastResetToken() string {
	mail, ok := m.last()
	if !ok {
		return ""
	}
	marker := "/reset-password/"
	i := strings.Index(mail.HTML, marker)
	if i < 0 {
		return ""
	}
	rest := mail.HTML[i+len(marker):]
	end := strings.IndexAny(rest, "\"<& ")
	if end < 0 {
		return rest
	}
	return rest[:end]
}

type failingMailer struct{}

func (failingMailer) Send(context.Context, string, string, string) error {
	return errors.New("smtp connection refused")
}
