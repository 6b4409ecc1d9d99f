package checkin

import (
	"context"
	"errors"
	"image"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/repository"
)

// codeFrame is a frame that carries its QR payload for the fake decoder.
type codeFrame struct {
	*image.Gray
	code string
}

func frame(code string) image.Image {
	return codeFrame{Gray: image.NewGray(image.Rect(0, 0, 1, 1)), code: code}
}

type fakeDecoder struct{}

func (fakeDecoder) Decode(img image.Image) (string, bool) {
	f, ok := img.(codeFrame)
	if !ok || f.code == "" {
		return "", false
	}
	return f.code, true
}

// panickyDecoder panics on the "boom" frame the way a decoder does on a
// malformed image.
type panickyDecoder struct{ fakeDecoder }

func (d panickyDecoder) Decode(img image.Image) (string, bool) {
	if f, ok := img.(codeFrame); ok && f.code == "boom" {
		panic("makeslice: len out of range")
	}
	return d.fakeDecoder.Decode(img)
}

type memRegistrations struct {
	mu    sync.Mutex
	regs  map[string]domain.Registration
	err   error
	gate  chan struct{}
	calls atomic.Int32
}

func newMemRegistrations(regs ...domain.Registration) *memRegistrations {
	m := &memRegistrations{regs: make(map[string]domain.Registration)}
	for _, r := range regs {
		m.regs[r.UserID] = r
	}
	return m
}

func (m *memRegistrations) Create(_ context.Context, reg *domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.regs[reg.UserID]; ok {
		return repository.ErrDuplicate
	}
	reg.ID = uuid.NewString()
	m.regs[reg.UserID] = *reg
	return nil
}

func (m *memRegistrations) GetByUserID(ctx context.Context, userID string) (*domain.Registration, error) {
	m.calls.Add(1)
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	reg, ok := m.regs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &reg, nil
}

func (m *memRegistrations) List(context.Context, int, int) ([]domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Registration, 0, len(m.regs))
	for _, r := range m.regs {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRegistrations) block() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
	return m.gate
}

type memAttendance struct {
	mu        sync.Mutex
	regs      *memRegistrations
	records   map[string]domain.AttendanceRecord
	createErr  error
	deleteErr  error
	createGate chan struct{}
}

func newMemAttendance(regs *memRegistrations) *memAttendance {
	return &memAttendance{regs: regs, records: make(map[string]domain.AttendanceRecord)}
}

func (m *memAttendance) checkIn(userID, name string, at time.Time) domain.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := domain.AttendanceRecord{ID: uuid.NewString(), UserID: userID, FullName: name, CheckInTime: at}
	m.records[userID] = rec
	return rec
}

func (m *memAttendance) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	m.mu.Lock()
	gate := m.createGate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.records[record.UserID]; ok {
		return repository.ErrDuplicate
	}
	record.ID = uuid.NewString()
	m.records[record.UserID] = *record
	return nil
}

func (m *memAttendance) FindByUserID(_ context.Context, userID string) (*domain.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (m *memAttendance) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for userID, rec := range m.records {
		if rec.ID == id {
			delete(m.records, userID)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memAttendance) Roster(context.Context) ([]domain.RosterEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RosterEntry, 0, len(m.records))
	for userID, rec := range m.records {
		m.regs.mu.Lock()
		reg := m.regs.regs[userID]
		m.regs.mu.Unlock()
		out = append(out, domain.RosterEntry{Registration: reg, AttendanceID: rec.ID, CheckInTime: rec.CheckInTime})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out, nil
}

func (m *memAttendance) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *memAttendance) blockCreate() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createGate = make(chan struct{})
	return m.createGate
}

func (m *memAttendance) setCreateErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

// flakyCamera fails to open until fail is cleared.
type flakyCamera struct {
	inner *PushCamera
	fail  atomic.Bool
}

func (c *flakyCamera) Open(ctx context.Context) (FrameStream, error) {
	if c.fail.Load() {
		return nil, errors.New("permission denied")
	}
	return c.inner.Open(ctx)
}
