package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ErrorPlaceholder stands in for the summary when the model call
// fails. Downstream formatting treats it like any other summary text.
const ErrorPlaceholder = "Error generating summary. Please check if the model is available."

// Service wraps the Ollama client with model resolution and the
// degrade-to-placeholder failure policy.
type Service struct {
	client *Client
	logger *slog.Logger
}

func NewService(client *Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Ping reports whether the Ollama server answers at all.
func (s *Service) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("ollama not accessible: %w", err)
	}
	return nil
}

// ResolveModel verifies the wanted model is installed, accepting a
// bare name for a ":latest" tag. When it is missing the first
// installed model is used instead; no models at all is an error.
func (s *Service) ResolveModel(ctx context.Context, want string) (string, error) {
	models, err := s.client.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("list models: %w", err)
	}

	for _, name := range models {
		if name == want || strings.TrimSuffix(name, ":latest") == want {
			s.logger.Info("model available", "model", name)
			return name, nil
		}
	}

	if len(models) == 0 {
		return "", fmt.Errorf("no models installed, run: ollama pull %s", want)
	}

	s.logger.Warn("model not found, using fallback",
		"want", want, "using", models[0], "available", strings.Join(models, ", "))
	return models[0], nil
}

// Summarize sends the prompt to the model. Failures degrade to the
// placeholder message so the run still produces its outputs.
func (s *Service) Summarize(ctx context.Context, model, prompt string) string {
	summary, err := s.client.Chat(ctx, model, prompt)
	if err != nil {
		s.logger.Error("summary generation failed", "model", model, "error", err)
		return ErrorPlaceholder
	}

	s.validate(summary)
	s.logger.Info("summary generated", "model", model, "chars", len(summary))
	return summary
}

// validate warns when the reply does not look like the structured
// Markdown the prompt asks for.
func (s *Service) validate(summary string) {
	if !strings.Contains(summary, "##") {
		s.logger.Warn("summary missing markdown headers")
	}
	if !strings.Contains(summary, "- ") {
		s.logger.Warn("summary missing bullet points")
	}
}
