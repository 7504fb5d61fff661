package dispatch

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/causewayd/internal/dispatch"

// Metrics holds dispatch-level metrics.
type Metrics struct {
	meter     metric.Meter
	logger    *zap.Logger
	decisions metric.Int64Counter
	finals    metric.Int64Counter
}

// NewMetrics creates dispatch metrics.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}

	var err error
	m.decisions, err = m.meter.Int64Counter(
		"causewayd.dispatch.decisions_total",
		metric.WithDescription("Router decisions labeled by actor (trash, smalltalk, case) and persona."),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		m.logger.Warn("failed to create decisions counter", zap.Error(err))
	}

	m.finals, err = m.meter.Int64Counter(
		"causewayd.dispatch.final_verdicts_total",
		metric.WithDescription("Final-turn verdicts labeled by persona and mode (guest, member)."),
		metric.WithUnit("{verdict}"),
	)
	if err != nil {
		m.logger.Warn("failed to create final verdicts counter", zap.Error(err))
	}

	return m
}

func (m *Metrics) recordDecision(ctx context.Context, decision ActorDecision, req Request) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("actor", string(decision.Actor)),
		attribute.String("persona", string(req.Persona)),
	))
}

func (m *Metrics) recordFinal(ctx context.Context, req Request) {
	if m == nil || m.finals == nil {
		return
	}
	m.finals.Add(ctx, 1, metric.WithAttributes(
		attribute.String("persona", string(req.Persona)),
		attribute.String("mode", string(req.Mode)),
	))
}

// Dispatcher ties the router and executor together into the full protocol.
type Dispatcher struct {
	router   *Router
	executor *Executor
	metrics  *Metrics
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. metrics may be nil.
func NewDispatcher(router *Router, executor *Executor, metrics *Metrics, logger *zap.Logger) (*Dispatcher, error) {
	if router == nil {
		return nil, fmt.Errorf("router cannot be nil")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		router:   router,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Dispatch runs one full protocol round: validate, classify, execute.
//
// The returned error is non-nil only for invalid input; every provider-side
// failure is absorbed into a degraded envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Envelope, error) {
	if err := req.Validate(); err != nil {
		return Envelope{}, err
	}
	if req.Mode == "" {
		req.Mode = ModeGuest
	}

	decision := d.router.Classify(ctx, req.LastUserMessage())
	d.metrics.recordDecision(ctx, decision, req)

	d.logger.Debug("routed turn",
		zap.String("actor", string(decision.Actor)),
		zap.String("persona", string(req.Persona)),
		zap.String("mode", string(req.Mode)),
	)

	env := d.executor.Execute(ctx, decision, req)

	if decision.Actor == ActorCase {
		p := d.executor.personas.Get(req.Persona)
		if NewTurnBudget(req.History, p.TurnCap).Final {
			d.metrics.recordFinal(ctx, req)
		}
	}

	return env, nil
}
