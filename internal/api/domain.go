package api

import (
	"fmt"

	"github.com/JaimeStill/courtfetch/internal/captcha"
	"github.com/JaimeStill/courtfetch/internal/cases"
	"github.com/JaimeStill/courtfetch/internal/config"
	"github.com/JaimeStill/courtfetch/internal/courts"
	"github.com/JaimeStill/courtfetch/internal/documents"
	"github.com/JaimeStill/courtfetch/internal/querylog"
	"github.com/JaimeStill/courtfetch/internal/source"
	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Courts    *courts.Registry
	Sessions  *cases.Sessions
	History   *querylog.Store
	Documents documents.System
}

// Option customises domain construction.
type Option func(*options)

type options struct {
	source cases.Source
	policy captcha.Policy
	rnd    captcha.RandomSource
}

// WithSource replaces the simulated court source.
func WithSource(src cases.Source) Option {
	return func(o *options) { o.source = src }
}

// WithPolicy replaces the configured challenge gate.
func WithPolicy(p captcha.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithRandom sets the randomness behind challenge codes and the gate.
func WithRandom(rnd captcha.RandomSource) Option {
	return func(o *options) { o.rnd = rnd }
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime, opts ...Option) (*Domain, error) {
	o := options{rnd: captcha.Global}
	for _, opt := range opts {
		opt(&o)
	}

	registry, err := courts.NewRegistry(cfg.Courts)
	if err != nil {
		return nil, fmt.Errorf("courts: %w", err)
	}

	if o.source == nil {
		o.source = source.NewSimulated(source.Config{
			Latency:     cfg.Cases.SourceLatencyDuration(),
			FailureRate: cfg.Cases.SourceFailureRate,
		}, nil, runtime.Logger)
	}
	src := cases.WithTimeout(o.source, cfg.Cases.SourceTimeoutDuration())

	if o.policy == nil {
		o.policy = captcha.NewGate(cfg.Cases.SensitiveCaseTypes, cfg.Cases.BaselineValue(), o.rnd)
	}

	gen := captcha.NewGenerator(cfg.Cases.CodeLength, cfg.Cases.ImageTemplate, o.rnd)
	challengeTTL := cfg.Cases.ChallengeTTLDuration()

	sessions := cases.NewSessions(func() *cases.Orchestrator {
		return cases.New(registry, src, o.policy, captcha.NewSlot(gen, challengeTTL, nil))
	}, cfg.Cases.SessionTTLDuration(), runtime.Logger, cases.WithMaxSessions(cfg.Cases.MaxSessions))

	var persistence querylog.Persistence
	if runtime.Database != nil {
		persistence = querylog.NewRepository(runtime.Database.Connection())
	} else {
		persistence = querylog.NewMemory()
	}

	return &Domain{
		Courts:    registry,
		Sessions:  sessions,
		History:   querylog.New(persistence, runtime.Logger),
		Documents: documents.New(runtime.Storage, runtime.Logger, cfg.API.MaxInspectSizeBytes()),
	}, nil
}

// Start registers the domain's lifecycle hooks. Call it after the
// infrastructure has finished starting so the history load sees the schema.
func (d *Domain) Start(lc *lifecycle.Coordinator) {
	d.History.Start(lc)
	d.Sessions.Start(lc)
}
