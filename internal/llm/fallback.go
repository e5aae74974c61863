package llm

import (
	"context"

	"github.com/coastlineai/sentinel/pkg/logging"
)

// FallbackClient wraps a primary model client with a secondary provider:
// if the primary fails, it retries once against the fallback before
// surfacing an error. This is the provider-level fallback (e.g. Bedrock
// primary, Gemini secondary); the orchestrator's own rule-tier fallback for
// ModelUnreachable/ModelTimeout fires only if this wrapper's Complete still
// returns an error.
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *logging.Logger
}

// NewFallbackClient builds a FallbackClient. fallback may be nil, in which
// case Complete behaves exactly like primary.
func NewFallbackClient(primary, fallback Client, logger *logging.Logger) *FallbackClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{primary: primary, fallback: fallback, logger: logger}
}

func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary model failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)

	if c.fallback == nil {
		return Response{}, err
	}

	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback model also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}

	c.logger.Info("fallback model succeeded after primary failure")
	return fallbackResp, nil
}
