// Package deskmesh assembles the supervisor, specialists and conversation
// driver into a ready-to-use conversational desk: register specialists, open
// a session, submit queries.
package deskmesh

import (
	"fmt"

	"github.com/deskmesh/deskmesh/config"
	"github.com/deskmesh/deskmesh/driver"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
	"github.com/deskmesh/deskmesh/specialist"
	"github.com/deskmesh/deskmesh/supervisor"
)

// Options configures a Desk.
type Options struct {
	// Config supplies model and logging settings. Ignored when Model is set
	// explicitly.
	Config *config.Config

	// Model overrides the configured model backend.
	Model model.Model

	// Logger for all components. Defaults to the configured logger, or a
	// no-op logger without config.
	Logger logging.Logger

	// Dispatcher overrides the default routing dispatch strategy for new
	// sessions.
	Dispatcher driver.Dispatcher

	// SupervisorInstruction overrides the supervisor's persona prefix.
	SupervisorInstruction string
}

// Desk wires a supervisor and its specialist roster over a shared model.
// The model is wrapped with usage accounting; Usage reports tokens consumed
// across every call made through the desk.
type Desk struct {
	model      *model.UsageTracker
	registry   *specialist.Registry
	supervisor *supervisor.Supervisor
	dispatcher driver.Dispatcher
	logger     logging.Logger
}

// New creates a Desk. A model must be available either directly or via
// config.
func New(optFns ...func(o *Options)) (*Desk, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	m := opts.Model
	logger := opts.Logger

	if m == nil {
		if opts.Config == nil {
			return nil, fmt.Errorf("either a model or a config must be provided")
		}
		var err error
		m, err = opts.Config.NewModel()
		if err != nil {
			return nil, err
		}
	}
	if logger == nil && opts.Config != nil {
		logger = opts.Config.NewLogger()
	}
	logger = logging.OrNoOp(logger)

	tracked := model.TrackUsage(m)

	registry := specialist.NewRegistry()
	sup := supervisor.New(tracked, registry, func(o *supervisor.Options) {
		if opts.SupervisorInstruction != "" {
			o.Instruction = opts.SupervisorInstruction
		}
		o.Logger = logger
	})

	return &Desk{
		model:      tracked,
		registry:   registry,
		supervisor: sup,
		dispatcher: opts.Dispatcher,
		logger:     logger,
	}, nil
}

// Model returns the desk's model backend, for building specialists that share
// it. Calls through the returned model count towards Usage.
func (d *Desk) Model() model.Model { return d.model }

// Usage returns token usage accumulated across all model calls made through
// the desk.
func (d *Desk) Usage() model.TokenUsage { return d.model.Usage() }

// Registry returns the desk's specialist registry.
func (d *Desk) Registry() *specialist.Registry { return d.registry }

// Register adds specialists to the desk.
func (d *Desk) Register(specialists ...specialist.Specialist) error {
	return d.registry.Register(specialists...)
}

// NewSession opens a started session over the desk's roster.
func (d *Desk) NewSession(optFns ...func(o *driver.Options)) (*driver.Session, error) {
	sess := driver.NewSession(d.supervisor, d.registry, func(o *driver.Options) {
		o.Dispatcher = d.dispatcher
		o.Logger = d.logger
		for _, fn := range optFns {
			fn(o)
		}
	})

	if err := sess.Start(); err != nil {
		return nil, err
	}
	return sess, nil
}
