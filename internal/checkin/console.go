package checkin

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/events"
)

// Options tunes the scan loop timing.
type Options struct {
	// ScanInterval is the pause after a frame without a readable code.
	ScanInterval time.Duration
	// RecoveryDelay pauses scanning after an unknown code or lookup failure.
	RecoveryDelay time.Duration
	// SuccessHold keeps the success message up before scanning resumes.
	SuccessHold time.Duration
	// ResolveTimeout bounds one registration lookup. Zero means no bound.
	ResolveTimeout time.Duration
}

// Deps are the collaborators of a Console.
type Deps struct {
	Camera   Camera
	Decoder  Decoder
	Resolver *Resolver
	Mutator  *Mutator
	Events   events.Dispatcher
	Logger   *zap.Logger
}

// Console is one operator's check-in session.
type Console struct {
	id       string
	camera   Camera
	decoder  Decoder
	resolver *Resolver
	mutator  *Mutator
	events   events.Dispatcher
	logger   *zap.Logger
	opts     Options

	// lifecycle serialises Start, Retry, SwitchMode and Close.
	lifecycle  sync.Mutex
	loopCancel context.CancelFunc
	loopDone   chan struct{}

	mu            sync.Mutex
	resolveCancel context.CancelFunc
	mode          Mode
	state     State
	attendee  *Attendee
	message   *Message
	cameraErr error
	running   bool
	closed    bool
	cycle     uint64
	resumeAt  time.Time
	roster    []domain.RosterEntry
	changed   chan struct{}
}

// NewConsole creates an idle console. Call Start to open the camera.
func NewConsole(id string, mode Mode, deps Deps, opts Options) *Console {
	if mode == "" {
		mode = ModeCheckIn
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		id:       id,
		camera:   deps.Camera,
		decoder:  deps.Decoder,
		resolver: deps.Resolver,
		mutator:  deps.Mutator,
		events:   deps.Events,
		logger:   logger.With(zap.String("console_id", id)),
		opts:     opts,
		mode:     mode,
		state:    StateIdle,
		changed:  make(chan struct{}),
	}
}

// ID returns the console identifier.
func (c *Console) ID() string {
	return c.id
}

// Start opens the camera and begins scanning. A camera failure is recorded
// on the session and returned; Retry tries again.
func (c *Console) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.startLocked(ctx)
}

// Retry re-opens the camera after a failure.
func (c *Console) Retry(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if c.isClosed() {
		return ErrConsoleClosed
	}
	c.stopLocked()
	return c.startLocked(ctx)
}

// SwitchMode changes the mode, clears the session and restarts the scan loop
// so the camera is released before it is re-acquired.
func (c *Console) SwitchMode(ctx context.Context, mode Mode) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConsoleClosed
	}
	if c.state == StateMutating {
		c.mu.Unlock()
		return ErrBusy
	}
	c.mode = mode
	c.resetLocked()
	c.notifyLocked()
	c.mu.Unlock()

	c.logger.Info("console mode switched", zap.String("mode", string(mode)))
	c.stopLocked()
	return c.startLocked(ctx)
}

// Close stops scanning and releases the camera. It is idempotent.
func (c *Console) Close() error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cycle++
	c.cancelResolveLocked()
	c.notifyLocked()
	c.mu.Unlock()

	c.stopLocked()
	c.logger.Info("console closed")
	return nil
}

// Reset discards the resolved attendee and message, abandons any lookup in
// flight and resumes scanning immediately.
func (c *Console) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConsoleClosed
	}
	if c.state == StateMutating {
		return ErrBusy
	}
	c.resetLocked()
	c.notifyLocked()
	return nil
}

// Confirm applies the current mode to the resolved attendee.
func (c *Console) Confirm(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrConsoleClosed
	case c.state == StateResolving || c.state == StateMutating:
		c.mu.Unlock()
		return ErrBusy
	case c.state != StateResolved || c.attendee == nil:
		c.mu.Unlock()
		return ErrNoAttendee
	}
	attendee := *c.attendee
	mode := c.mode
	if mode == ModeCheckOut && !attendee.CanCheckOut() {
		c.message = newMessage(SeverityWarning, CodeNotCheckedIn,
			"%s has not checked in yet", attendee.Registration.FullName)
		c.notifyLocked()
		c.mu.Unlock()
		return ErrNotCheckedIn
	}
	c.state = StateMutating
	c.notifyLocked()
	c.mu.Unlock()

	var (
		record *domain.AttendanceRecord
		err    error
	)
	if mode == ModeCheckIn {
		record, err = c.mutator.CheckIn(ctx, &attendee)
	} else {
		err = c.mutator.CheckOut(ctx, &attendee)
	}
	if err != nil {
		c.mutationFailed(mode, &attendee, record, err)
		return err
	}

	roster, rosterErr := c.mutator.Roster(ctx)
	if rosterErr != nil {
		c.logger.Warn("refresh roster after mutation", zap.Error(rosterErr))
	}

	now := time.Now()
	c.mu.Lock()
	if rosterErr == nil {
		c.roster = roster
	}
	c.state = StateIdle
	c.attendee = nil
	c.resumeAt = now.Add(c.opts.SuccessHold)
	event := events.Event{
		ID:        uuid.NewString(),
		UserID:    attendee.Registration.UserID,
		Actor:     events.Actor{Type: domain.SubjectTypeAdmin, ConsoleID: c.id},
		Timestamp: now.UTC(),
	}
	payload := events.AttendancePayload{
		AttendanceID: attendee.AttendanceID,
		FullName:     attendee.Registration.FullName,
		At:           now.UTC(),
		RosterSize:   len(c.roster),
	}
	if mode == ModeCheckIn {
		c.message = newMessage(SeveritySuccess, CodeCheckedIn, "Successfully checked in %s!", attendee.Registration.FullName)
		event.Type = events.EventAttendeeCheckedIn
		payload.AttendanceID = record.ID
		payload.At = record.CheckInTime
	} else {
		c.message = newMessage(SeveritySuccess, CodeCheckedOut, "Successfully checked out %s!", attendee.Registration.FullName)
		event.Type = events.EventAttendeeCheckedOut
	}
	event.Payload = payload
	c.notifyLocked()
	c.mu.Unlock()

	c.logger.Info("attendance updated",
		zap.String("mode", string(mode)),
		zap.String("user_id", attendee.Registration.UserID),
		zap.Int("roster_size", payload.RosterSize),
	)
	if c.events != nil {
		if err := c.events.Publish(ctx, event); err != nil {
			c.logger.Warn("publish attendance event", zap.Error(err))
		}
	}
	return nil
}

func (c *Console) mutationFailed(mode Mode, attendee *Attendee, existing *domain.AttendanceRecord, err error) {
	name := attendee.Registration.FullName
	var msg *Message
	switch {
	case errors.Is(err, ErrAlreadyCheckedIn):
		msg = newMessage(SeverityWarning, CodeAlreadyCheckedIn, "%s is already checked in", name)
		if existing != nil {
			at := existing.CheckInTime
			attendee.AttendanceID = existing.ID
			attendee.CheckedInAt = &at
			msg.Text = fmt.Sprintf("%s is already checked in at %s", name, at.Local().Format(timeLayout))
		}
	case errors.Is(err, ErrNotCheckedIn):
		msg = newMessage(SeverityWarning, CodeNotCheckedIn, "%s has not checked in yet", name)
		attendee.AttendanceID = ""
		attendee.CheckedInAt = nil
	case errors.Is(err, ErrIdentityLocked):
		msg = newMessage(SeverityWarning, CodeIdentityLocked, "%s is being updated on another console, try again", name)
	default:
		verb := "check in"
		if mode == ModeCheckOut {
			verb = "check out"
		}
		msg = newMessage(SeverityError, CodeStoreWriteFailed, "Failed to %s attendee.", verb)
		c.logger.Error("attendance mutation failed",
			zap.String("mode", string(mode)),
			zap.String("user_id", attendee.Registration.UserID),
			zap.Error(err),
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateResolved
	c.attendee = attendee
	c.message = msg
	c.notifyLocked()
}

// Snapshot copies the session state.
func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Watch returns the current snapshot and a channel closed on the next change.
func (c *Console) Watch() (Snapshot, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(), c.changed
}

// Roster returns the cached list of checked-in attendees.
func (c *Console) Roster() []domain.RosterEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.RosterEntry(nil), c.roster...)
}

// RefreshRoster reloads the roster from the store.
func (c *Console) RefreshRoster(ctx context.Context) error {
	roster, err := c.mutator.Roster(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.roster = roster
	c.notifyLocked()
	c.mu.Unlock()
	return nil
}

func (c *Console) snapshotLocked() Snapshot {
	snap := Snapshot{
		ConsoleID:  c.id,
		Mode:       c.mode,
		State:      c.state,
		Scanning:   c.running && c.cameraErr == nil && c.state == StateIdle && c.resolveCancel == nil && !time.Now().Before(c.resumeAt),
		RosterSize: len(c.roster),
		Cycle:      c.cycle,
	}
	if c.attendee != nil {
		a := *c.attendee
		snap.Attendee = &a
		if c.state == StateResolved {
			if c.mode == ModeCheckIn {
				snap.CanConfirm = !a.CheckedIn()
			} else {
				snap.CanConfirm = a.CheckedIn()
			}
		}
	}
	if c.message != nil {
		m := *c.message
		snap.Message = &m
	}
	if c.cameraErr != nil {
		snap.CameraError = c.cameraErr.Error()
	}
	return snap
}

func (c *Console) resetLocked() {
	c.cancelResolveLocked()
	c.cycle++
	c.state = StateIdle
	c.attendee = nil
	c.message = nil
	c.resumeAt = time.Time{}
}

func (c *Console) cancelResolveLocked() {
	if c.resolveCancel != nil {
		c.resolveCancel()
		c.resolveCancel = nil
	}
}

func (c *Console) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *Console) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Console) startLocked(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConsoleClosed
	}
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	stream, err := c.camera.Open(ctx)
	if err != nil {
		if !errors.Is(err, ErrCameraUnavailable) {
			err = fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
		}
		c.logger.Warn("camera unavailable", zap.Error(err))
		c.mu.Lock()
		c.cameraErr = err
		c.message = newMessage(SeverityError, CodeCameraUnavailable, "Unable to access camera. Check permissions and retry.")
		c.notifyLocked()
		c.mu.Unlock()
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.cameraErr = nil
	if c.message != nil && c.message.Code == CodeCameraUnavailable {
		c.message = nil
	}
	c.running = true
	c.notifyLocked()
	c.mu.Unlock()

	c.loopCancel, c.loopDone = cancel, done
	go c.scan(loopCtx, stream, done)
	c.logger.Debug("scan loop started")
	return nil
}

func (c *Console) stopLocked() {
	if c.loopCancel == nil {
		return
	}
	c.loopCancel()
	<-c.loopDone
	c.loopCancel, c.loopDone = nil, nil
}

func (c *Console) scan(ctx context.Context, stream FrameStream, done chan struct{}) {
	defer close(done)
	defer func() {
		if err := stream.Close(); err != nil {
			c.logger.Warn("release camera", zap.Error(err))
		}
		c.mu.Lock()
		c.running = false
		c.notifyLocked()
		c.mu.Unlock()
	}()

	for {
		if err := c.awaitIdle(ctx); err != nil {
			return
		}
		frame, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.cameraFailed(err)
			}
			return
		}
		payload, ok := c.decode(frame)
		if !ok {
			if !sleep(ctx, c.opts.ScanInterval) {
				return
			}
			continue
		}
		resolveCtx, cycle, mode, ok := c.beginResolve(ctx)
		if !ok {
			continue
		}
		res, err := c.resolver.Resolve(resolveCtx, payload, mode)
		c.completeResolve(cycle, res, err)
	}
}

// decode treats a decoder panic on a malformed frame as an unreadable frame.
func (c *Console) decode(frame image.Image) (payload string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("frame decode panicked", zap.Any("panic", r))
			payload, ok = "", false
		}
	}()
	return c.decoder.Decode(frame)
}

// awaitIdle blocks until the console is Idle and past any hold period.
func (c *Console) awaitIdle(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrConsoleClosed
		}
		changed := c.changed
		var wait time.Duration
		idle := c.state == StateIdle
		if idle {
			wait = time.Until(c.resumeAt)
			if wait <= 0 {
				c.mu.Unlock()
				return nil
			}
		}
		c.mu.Unlock()

		var timer *time.Timer
		var fire <-chan time.Time
		if idle {
			timer = time.NewTimer(wait)
			fire = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-changed:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// beginResolve moves Idle to Resolving and returns a lookup context that
// Reset, SwitchMode and Close cancel.
func (c *Console) beginResolve(ctx context.Context) (context.Context, uint64, Mode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateIdle {
		return nil, 0, "", false
	}
	var (
		resolveCtx context.Context
		cancel     context.CancelFunc
	)
	if c.opts.ResolveTimeout > 0 {
		resolveCtx, cancel = context.WithTimeout(ctx, c.opts.ResolveTimeout)
	} else {
		resolveCtx, cancel = context.WithCancel(ctx)
	}
	c.cycle++
	c.resolveCancel = cancel
	c.state = StateResolving
	c.attendee = nil
	c.message = nil
	c.notifyLocked()
	return resolveCtx, c.cycle, c.mode, true
}

func (c *Console) completeResolve(cycle uint64, res *Resolution, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelResolveLocked()
	if c.cycle != cycle || c.state != StateResolving {
		c.logger.Debug("discarding stale resolve", zap.Uint64("cycle", cycle))
		c.notifyLocked()
		return
	}
	if err != nil {
		c.state = StateIdle
		c.attendee = nil
		c.resumeAt = time.Now().Add(c.opts.RecoveryDelay)
		if errors.Is(err, ErrUnknownIdentity) {
			c.message = newMessage(SeverityError, CodeUnknownIdentity, "No registration found for this QR code.")
		} else {
			c.message = newMessage(SeverityError, CodeLookupFailed, "Error looking up attendee information.")
			c.logger.Error("attendee lookup failed", zap.Error(err))
		}
		c.notifyLocked()
		return
	}
	c.state = StateResolved
	c.attendee = res.Attendee
	c.message = res.Message
	c.notifyLocked()
}

func (c *Console) cameraFailed(err error) {
	if !errors.Is(err, ErrCameraUnavailable) {
		err = fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}
	c.logger.Warn("camera stream ended", zap.Error(err))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cameraErr = err
	c.message = newMessage(SeverityError, CodeCameraUnavailable, "Camera stream ended. Retry to resume scanning.")
	c.notifyLocked()
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
