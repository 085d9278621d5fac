package biz

import (
	"context"
	"errors"

	"github.com/kart-io/logger"
)

// ErrNoResponder is returned when the chain has no tiers at all.
var ErrNoResponder = errors.New("no response tier configured")

// Responder is one tier of the response chain. TryAnswer returns
// (answer, true) on a hit; (nil, false) passes the question to the next
// tier. Errors are logged by the chain and treated as a miss.
type Responder interface {
	// Name identifies the tier in logs and metrics.
	Name() string
	// TryAnswer attempts to answer question. lang is the requested response
	// language; tiers fall back to detecting it from the question when it
	// is empty.
	TryAnswer(ctx context.Context, question, lang string, departments []string) (*Answer, bool, error)
}

// Chain walks its tiers in order and returns the first hit. The final tier
// is expected to always answer, so Respond only returns nil when the chain
// was built empty.
type Chain struct {
	tiers []Responder
}

// NewChain builds a chain over tiers, in priority order.
func NewChain(tiers ...Responder) *Chain {
	return &Chain{tiers: tiers}
}

// Respond resolves question through the chain.
func (c *Chain) Respond(ctx context.Context, question, lang string, departments []string) *Answer {
	for _, tier := range c.tiers {
		answer, ok, err := tier.TryAnswer(ctx, question, lang, departments)
		if err != nil {
			logger.Warnw("response tier failed, falling through",
				"tier", tier.Name(),
				"error", err.Error(),
			)
			continue
		}
		if ok && answer != nil {
			logger.Infow("question answered", "tier", tier.Name())
			return answer
		}
	}
	return nil
}
