// Package llm defines the generation capability boundary and its
// interchangeable backends. Each backend turns a persona plus the current
// conversation into either a reply or an explicit no-response outcome.
package llm

import (
	"context"

	"colosseum/domain"
)

// Request is the full context handed to a backend for one generation
// attempt. History is a point-in-time snapshot owned by the caller.
type Request struct {
	Persona     domain.Persona
	History     []domain.Message
	LastMessage domain.Message
}

// Outcome is the result of a generation attempt. NoResponse means the
// backend chose not to reply; it is distinct from an error.
type Outcome struct {
	Content    string
	NoResponse bool
}

// Capability is a single interchangeable generation backend.
// Generate must honor ctx cancellation: the caller bounds every attempt
// with a deadline.
type Capability interface {
	Generate(ctx context.Context, req Request) (Outcome, error)
}

// CapabilityFunc adapts a plain function to the Capability interface.
type CapabilityFunc func(ctx context.Context, req Request) (Outcome, error)

func (f CapabilityFunc) Generate(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}
