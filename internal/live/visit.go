package live

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/intake"
)

const visitCloseTimeout = 5 * time.Second

// IntakeConfig configures the visits built by IntakeFactory.
type IntakeConfig struct {
	BackendURL     string
	BackendTimeout time.Duration
	LoopQueueSize  int

	// Options is copied for each visit; VisitorID and SessionID are filled in.
	Options intake.Options
	Logger  *slog.Logger
}

type intakeVisit struct {
	orch *intake.Orchestrator
	loop *intake.Loop
}

func (v *intakeVisit) Start()                   { v.orch.Start() }
func (v *intakeVisit) Dispatch(ev intake.Event) { v.orch.Dispatch(ev) }

func (v *intakeVisit) Close() {
	v.orch.Close()
	v.loop.Close(visitCloseTimeout)
}

// IntakeFactory returns a VisitFactory that runs an orchestrator on its own
// loop and talks to the intake API as the visitor.
func IntakeFactory(cfg IntakeConfig) VisitFactory {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(visitorID, sessionID string, view intake.Presenter) Visit {
		loop := intake.NewLoop(cfg.LoopQueueSize, logger)
		go loop.Run()

		client := backend.New(backend.Config{
			BaseURL:   cfg.BackendURL,
			Timeout:   cfg.BackendTimeout,
			VisitorID: visitorID,
			SessionID: sessionID,
		})

		opts := cfg.Options
		opts.VisitorID = visitorID
		opts.SessionID = sessionID
		if opts.Logger == nil {
			opts.Logger = logger
		}
		return &intakeVisit{
			orch: intake.New(context.Background(), loop, view, client, opts),
			loop: loop,
		}
	}
}
