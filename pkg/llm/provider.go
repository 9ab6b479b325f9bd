// Package llm defines the provider abstraction shared by all LLM
// backends, plus helpers for cleaning up their output.
package llm

import (
	"context"
)

// Provider is one LLM backend. The name argument on the generation calls
// selects a configured profile; providers map profiles to models.
type Provider interface {
	// GenerateText sends a prompt and returns the text reply.
	GenerateText(ctx context.Context, name, prompt string) (string, error)

	// GenerateJSON sends a prompt and unmarshals the reply into target.
	GenerateJSON(ctx context.Context, name, prompt string, target any) error

	// GenerateImageText sends a prompt plus an image file and returns the
	// text reply.
	GenerateImageText(ctx context.Context, name, prompt, imagePath string) (string, error)

	// HealthCheck verifies the provider is configured and reachable.
	HealthCheck(ctx context.Context) error

	// HasProfile reports whether the named profile is configured.
	HasProfile(name string) bool
}
