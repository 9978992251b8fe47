package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"catalogdebug/internal/config"
	"catalogdebug/internal/lifecycle"
	"catalogdebug/internal/logging"
)

var (
	ErrAlreadyStarted  = errors.New("backend already started")
	ErrDuplicateModule = errors.New("module already registered")
)

// Deps are the root services handed to every module init.
type Deps struct {
	Config    config.Config
	Lifecycle lifecycle.Registry
	Logger    logging.Logger
}

// Module extends a plugin. Init runs once, in registration order, before the
// lifecycle startup phase.
type Module interface {
	PluginID() string
	ModuleID() string
	Init(ctx context.Context, deps Deps) error
}

// InitFunc is the body of a module created with NewModule.
type InitFunc func(ctx context.Context, deps Deps) error

type module struct {
	pluginID string
	moduleID string
	init     InitFunc
}

// NewModule returns a Module for pluginID/moduleID whose Init calls init.
func NewModule(pluginID, moduleID string, init InitFunc) Module {
	return &module{pluginID: pluginID, moduleID: moduleID, init: init}
}

func (m *module) PluginID() string { return m.pluginID }
func (m *module) ModuleID() string { return m.moduleID }

func (m *module) Init(ctx context.Context, deps Deps) error {
	if m.init == nil {
		return nil
	}
	return m.init(ctx, deps)
}

// Lifecycle is what the backend needs to drive the startup and shutdown phases.
type Lifecycle interface {
	lifecycle.Registry
	Startup(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type Backend struct {
	config    config.Config
	lifecycle Lifecycle
	logger    logging.Logger

	mu      sync.Mutex
	modules []Module
	ids     map[string]bool
	started bool
}

func New(cfg config.Config, lc Lifecycle, logger logging.Logger) *Backend {
	return &Backend{
		config:    cfg,
		lifecycle: lc,
		logger:    logger,
		ids:       make(map[string]bool),
	}
}

func moduleKey(m Module) string {
	return m.PluginID() + "." + m.ModuleID()
}

func (b *Backend) Add(m Module) error {
	if m == nil {
		return errors.New("module is nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("cannot add module %s: %w", moduleKey(m), ErrAlreadyStarted)
	}
	key := moduleKey(m)
	if b.ids[key] {
		return fmt.Errorf("%s: %w", key, ErrDuplicateModule)
	}
	b.ids[key] = true
	b.modules = append(b.modules, m)
	return nil
}

// Start runs every module init and then the lifecycle startup phase.
func (b *Backend) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("backend: ctx is nil")
	}

	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return ErrAlreadyStarted
	}
	b.started = true
	modules := append([]Module(nil), b.modules...)
	b.mu.Unlock()

	for _, m := range modules {
		deps := Deps{
			Config:    b.config,
			Lifecycle: b.lifecycle,
			Logger:    b.logger,
		}
		if err := m.Init(ctx, deps); err != nil {
			return fmt.Errorf("module %s init failed: %w", moduleKey(m), err)
		}
	}

	return b.lifecycle.Startup(ctx)
}

func (b *Backend) Stop(ctx context.Context) error {
	return b.lifecycle.Shutdown(ctx)
}
