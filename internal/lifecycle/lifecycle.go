package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"catalogdebug/internal/logging"

	"golang.org/x/sync/errgroup"
)

// Hook is a callback run once during a lifecycle phase.
type Hook func(ctx context.Context) error

// Registry is the capability handed to modules for registering hooks.
type Registry interface {
	AddStartupHook(hook Hook, opts ...HookOption)
	AddShutdownHook(hook Hook, opts ...HookOption)
}

type hookOptions struct {
	label string
}

type HookOption func(*hookOptions)

// WithLabel tags the hook's own log lines, e.g. with the owning module ID.
func WithLabel(label string) HookOption {
	return func(o *hookOptions) {
		o.label = label
	}
}

type registeredHook struct {
	hook  Hook
	label string
}

type phase struct {
	name    string
	title   string
	mu      sync.Mutex
	hooks   []registeredHook
	started bool
}

// RootLifecycle runs startup and shutdown hooks. Each phase runs at most once;
// the hooks of a phase run concurrently and their failures are logged, never
// returned.
type RootLifecycle struct {
	logger      logging.Logger
	concurrency int
	startup     phase
	shutdown    phase
}

var _ Registry = (*RootLifecycle)(nil)

type Option func(*RootLifecycle)

// WithHookConcurrency caps how many hooks of one phase run at the same time.
// n <= 0 means no limit, which is the default.
func WithHookConcurrency(n int) Option {
	return func(l *RootLifecycle) {
		l.concurrency = n
	}
}

func New(logger logging.Logger, opts ...Option) *RootLifecycle {
	l := &RootLifecycle{
		logger:   logger.Child(map[string]string{"service": "lifecycle"}),
		startup:  phase{name: "startup", title: "Startup"},
		shutdown: phase{name: "shutdown", title: "Shutdown"},
	}
	for _, apply := range opts {
		if apply != nil {
			apply(l)
		}
	}
	return l
}

func (l *RootLifecycle) AddStartupHook(hook Hook, opts ...HookOption) {
	l.add(&l.startup, hook, opts)
}

func (l *RootLifecycle) AddShutdownHook(hook Hook, opts ...HookOption) {
	l.add(&l.shutdown, hook, opts)
}

func (l *RootLifecycle) add(p *phase, hook Hook, opts []HookOption) {
	if hook == nil {
		return
	}
	o := &hookOptions{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		l.logger.Warn(fmt.Sprintf("Attempted to add %s hook after %s has already begun", p.name, p.name), logging.Fields{"hook": o.label})
		return
	}
	p.hooks = append(p.hooks, registeredHook{hook: hook, label: o.label})
}

// Startup runs the startup hooks. Calls after the first are no-ops.
func (l *RootLifecycle) Startup(ctx context.Context) error {
	return l.run(ctx, &l.startup)
}

// Shutdown runs the shutdown hooks. Calls after the first are no-ops.
func (l *RootLifecycle) Shutdown(ctx context.Context) error {
	return l.run(ctx, &l.shutdown)
}

func (l *RootLifecycle) run(ctx context.Context, p *phase) error {
	if ctx == nil {
		return errors.New("lifecycle: ctx is nil")
	}

	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = true
	hooks := append([]registeredHook(nil), p.hooks...)
	p.mu.Unlock()

	var g errgroup.Group
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}
	for i, h := range hooks {
		// Go blocks while the limit is reached; hooks not yet started when ctx
		// ends are skipped.
		if ctx.Err() != nil {
			l.logger.Warn(fmt.Sprintf("%s canceled, skipping %d remaining hooks", p.title, len(hooks)-i))
			break
		}
		g.Go(func() error {
			logger := l.logger
			if h.label != "" {
				logger = logger.Child(map[string]string{"hook": h.label})
			}
			if err := runHook(ctx, h.hook); err != nil {
				logger.Error(fmt.Sprintf("%s hook failed, %v", p.title, err))
				return nil
			}
			logger.Debug(fmt.Sprintf("%s hook succeeded", p.title))
			return nil
		})
	}
	// Hook failures are logged above, so Wait has nothing to report.
	_ = g.Wait()

	return ctx.Err()
}

func runHook(ctx context.Context, hook Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return hook(ctx)
}
