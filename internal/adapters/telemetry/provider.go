// Package telemetry records spans around program requests.
package telemetry

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/progcache/internal/core/ports"
)

// InstrumentationName names the tracer the app and its factories record spans with.
const InstrumentationName = "go.trai.ch/progcache"

// Provider owns the SDK tracer provider.
type Provider struct {
	sdk *sdktrace.TracerProvider
}

// NewProvider creates a provider whose finished spans are written to logger.
func NewProvider(logger ports.Logger) *Provider {
	return &Provider{
		sdk: sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(NewLogProcessor(logger)),
		),
	}
}

// Tracer returns the tracer for program requests.
func (p *Provider) Tracer() trace.Tracer {
	return p.sdk.Tracer(InstrumentationName)
}

// Shutdown ends span processing.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.sdk.Shutdown(ctx)
}
