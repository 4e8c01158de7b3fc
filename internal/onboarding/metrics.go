package onboarding

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "jobseeker-bot/onboarding"

type instruments struct {
	tracer           trace.Tracer
	stepsAdvanced    metric.Int64Counter
	signupsCompleted metric.Int64Counter
	avatarFallbacks  metric.Int64Counter
}

// newInstruments uses the global providers installed by otel.Providers.SetGlobal (no-op by default).
func newInstruments() (*instruments, error) {
	meter := otel.Meter(instrumentationName)
	steps, err := meter.Int64Counter("onboarding.steps.advanced",
		metric.WithDescription("Answers that moved a session to the next step"))
	if err != nil {
		return nil, err
	}
	signups, err := meter.Int64Counter("onboarding.signups.completed",
		metric.WithDescription("Sessions that reached COMPLETED"))
	if err != nil {
		return nil, err
	}
	fallbacks, err := meter.Int64Counter("onboarding.avatar.fallbacks",
		metric.WithDescription("Avatars kept as platform file ids instead of stored URLs"))
	if err != nil {
		return nil, err
	}
	return &instruments{
		tracer:           otel.Tracer(instrumentationName),
		stepsAdvanced:    steps,
		signupsCompleted: signups,
		avatarFallbacks:  fallbacks,
	}, nil
}
