package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "flight-dynamics/internal/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	vehicle metric.MeasurementOption

	ticks        metric.Int64Counter
	stepDuration metric.Float64Histogram
	contacts     metric.Int64Counter
	arrivals     metric.Int64Counter
}

func newMetrics(vehicle string) (*metrics, error) {
	m := meter()
	mt := &metrics{
		vehicle: metric.WithAttributes(attribute.String("vehicle", vehicle)),
	}

	var err error
	mt.ticks, err = m.Int64Counter(
		"engine.ticks",
		metric.WithDescription("Total simulation steps taken"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	mt.stepDuration, err = m.Float64Histogram(
		"engine.step.duration",
		metric.WithDescription("Wall time spent computing one step"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating step duration histogram: %w", err)
	}

	mt.contacts, err = m.Int64Counter(
		"engine.ground.contacts",
		metric.WithDescription("Steps that ended touching the ground"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ground contact counter: %w", err)
	}

	mt.arrivals, err = m.Int64Counter(
		"engine.mission.arrivals",
		metric.WithDescription("Destinations reached under autopilot"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating arrivals counter: %w", err)
	}

	return mt, nil
}

func (m *metrics) step(took time.Duration, contact bool) {
	ctx := context.Background()
	m.ticks.Add(ctx, 1, m.vehicle)
	m.stepDuration.Record(ctx, took.Seconds(), m.vehicle)
	if contact {
		m.contacts.Add(ctx, 1, m.vehicle)
	}
}

func (m *metrics) arrived() {
	m.arrivals.Add(context.Background(), 1, m.vehicle)
}
