// Package orchestrator fans a batch of posting requests out to the
// registered platform adapters and collects per-platform outcomes. Platforms
// are fully independent: one failure never stops the others.
package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/logging"
	"github.com/entrhq/prospect/pkg/platform"
)

// Orchestrator publishes content through a registry of adapters.
type Orchestrator struct {
	registry *platform.Registry
	log      *zap.SugaredLogger
}

// New creates an orchestrator over registry.
func New(registry *platform.Registry, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		log:      logging.OrNop(log),
	}
}

// PublishAll publishes each request through its platform's adapter, in the
// order given. The result always contains exactly one entry per requested
// platform: requests with empty payloads or without a publishing adapter are
// recorded as failures without being attempted, and an adapter failure on one
// platform never prevents the remaining platforms from being tried.
func (o *Orchestrator) PublishAll(ctx context.Context, requests []platform.PostRequest) map[platform.Platform]platform.PostResult {
	results := make(map[platform.Platform]platform.PostResult, len(requests))

	for _, req := range requests {
		p := req.Platform

		if req.Empty() {
			results[p] = failed(p, "empty payload")
			continue
		}

		pub, ok := o.registry.Publisher(p)
		if !ok {
			results[p] = failed(p, "no publishing adapter registered")
			continue
		}

		result, err := pub.Publish(ctx, req)
		if err != nil {
			o.log.Warnw("publish failed", "platform", p, "error", err)
			if result.Error == "" {
				result.Error = err.Error()
			}
			result.Platform = p
			result.Success = false
			if result.Timestamp.IsZero() {
				result.Timestamp = time.Now().UTC()
			}
		} else {
			o.log.Infow("published", "platform", p, "remote_id", result.RemoteID)
		}
		results[p] = result
	}

	return results
}

func failed(p platform.Platform, reason string) platform.PostResult {
	return platform.PostResult{
		Platform:  p,
		Error:     reason,
		Timestamp: time.Now().UTC(),
	}
}
