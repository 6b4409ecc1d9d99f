package checkin

import (
	"context"
	"image"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/events"
)

// ManagerDeps are shared by every console a Manager opens.
type ManagerDeps struct {
	Resolver   *Resolver
	Mutator    *Mutator
	NewDecoder func() Decoder
	Events     events.Dispatcher
	Logger     *zap.Logger
}

// Manager owns the consoles opened over HTTP, each fed by its own PushCamera.
type Manager struct {
	deps        ManagerDeps
	opts        Options
	frameBuffer int
	logger      *zap.Logger

	mu       sync.RWMutex
	consoles map[string]*remoteConsole
}

type remoteConsole struct {
	console *Console
	camera  *PushCamera
}

// NewManager creates an empty Manager.
func NewManager(deps ManagerDeps, opts Options, frameBuffer int) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		deps:        deps,
		opts:        opts,
		frameBuffer: frameBuffer,
		logger:      logger,
		consoles:    make(map[string]*remoteConsole),
	}
}

// Open starts a new console in mode and loads its roster.
func (m *Manager) Open(ctx context.Context, mode Mode) (*Console, error) {
	id := uuid.NewString()
	camera := NewPushCamera(m.frameBuffer)
	console := NewConsole(id, mode, Deps{
		Camera:   camera,
		Decoder:  m.deps.NewDecoder(),
		Resolver: m.deps.Resolver,
		Mutator:  m.deps.Mutator,
		Events:   m.deps.Events,
		Logger:   m.logger,
	}, m.opts)

	if err := console.Start(ctx); err != nil {
		_ = console.Close()
		return nil, err
	}
	if err := console.RefreshRoster(ctx); err != nil {
		m.logger.Warn("initial roster load failed", zap.String("console_id", id), zap.Error(err))
	}

	m.mu.Lock()
	m.consoles[id] = &remoteConsole{console: console, camera: camera}
	m.mu.Unlock()

	m.logger.Info("console opened", zap.String("console_id", id), zap.String("mode", string(mode)))
	return console, nil
}

// Get looks up an open console.
func (m *Manager) Get(id string) (*Console, error) {
	rc, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return rc.console, nil
}

// PushFrame hands a frame to the console's camera. It reports false when the
// frame was dropped because the console is not scanning.
func (m *Manager) PushFrame(id string, img image.Image) (bool, error) {
	rc, err := m.lookup(id)
	if err != nil {
		return false, err
	}
	return rc.camera.Push(img), nil
}

// Close shuts a console down and forgets it.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	rc, ok := m.consoles[id]
	delete(m.consoles, id)
	m.mu.Unlock()
	if !ok {
		return ErrConsoleNotFound
	}
	return rc.console.Close()
}

// CloseAll shuts every console down.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	consoles := m.consoles
	m.consoles = make(map[string]*remoteConsole)
	m.mu.Unlock()
	for _, rc := range consoles {
		_ = rc.console.Close()
	}
}

// Len reports the number of open consoles.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.consoles)
}

func (m *Manager) lookup(id string) (*remoteConsole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rc, ok := m.consoles[id]
	if !ok {
		return nil, ErrConsoleNotFound
	}
	return rc, nil
}
