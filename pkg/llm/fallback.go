package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// FallbackChain tries each client in order until one answers. The analyzer
// uses it to prefer a primary model and fall through to cheaper or local
// backends.
type FallbackChain struct {
	clients []Client
	logger  *slog.Logger
}

// NewFallbackChain creates a chain over the given clients.
func NewFallbackChain(clients ...Client) *FallbackChain {
	return &FallbackChain{
		clients: clients,
		logger:  slog.Default().With("component", "llm"),
	}
}

func (f *FallbackChain) Chat(ctx context.Context, msgs []Message, options *SamplingOptions) (string, error) {
	if len(f.clients) == 0 {
		return "", fmt.Errorf("fallback chain: no clients configured")
	}

	var errs []error
	for i, client := range f.clients {
		content, err := client.Chat(ctx, msgs, options)
		if err == nil {
			return content, nil
		}
		f.logger.WarnContext(ctx, "llm client failed, falling through",
			"position", i, "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("fallback chain exhausted: %w", errors.Join(errs...))
}
