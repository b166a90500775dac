package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

const noResponseMessage = "I apologize, but I couldn't generate a response. Please try again."

// Assistant wraps a TextGenerator so callers always get text back. Generation
// failures are logged and returned in-band as an apology.
type Assistant struct {
	gen    TextGenerator
	logger zerolog.Logger
}

func NewAssistant(gen TextGenerator, logger zerolog.Logger) *Assistant {
	return &Assistant{gen: gen, logger: logger.With().Str("component", "assistant").Logger()}
}

func (a *Assistant) Complete(ctx context.Context, prompt string) string {
	text, err := a.gen.Generate(ctx, prompt)
	switch {
	case errors.Is(err, ErrEmptyCompletion):
		a.logger.Warn().Msg("model returned empty completion")
		return noResponseMessage
	case err != nil:
		a.logger.Error().Err(err).Msg("text generation failed")
		return fmt.Sprintf("I encountered an error: %v. Please try again.", err)
	}
	return text
}
