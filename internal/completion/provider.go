package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Provider appends candidates for a request to its matches.
type Provider interface {
	Complete(ctx context.Context, request *Request) error
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func(ctx context.Context, request *Request) error

func (f ProviderFunc) Complete(ctx context.Context, request *Request) error {
	return f(ctx, request)
}

// Pipeline runs providers one after the other on the same request. Matches
// end up in provider order.
type Pipeline struct {
	providers []Provider
	logger    *zap.Logger
}

// NewPipeline creates a Pipeline running providers in the given order.
func NewPipeline(logger *zap.Logger, providers ...Provider) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		providers: providers,
		logger:    logger,
	}
}

// Add appends a provider to the end of the pipeline.
func (p *Pipeline) Add(provider Provider) {
	p.providers = append(p.providers, provider)
}

// Len returns the number of providers.
func (p *Pipeline) Len() int {
	return len(p.providers)
}

// Run passes request through every provider. A failing provider is logged
// and skipped; only context cancellation stops the pipeline.
func (p *Pipeline) Run(ctx context.Context, request *Request) error {
	for _, provider := range p.providers {
		if err := ctx.Err(); err != nil {
			return err
		}

		before := request.Matches().Len()
		if err := provider.Complete(ctx, request); err != nil {
			p.logger.Debug("completion provider failed",
				zap.String("provider", fmt.Sprintf("%T", provider)),
				zap.String("line", request.RawLine()),
				zap.Error(err))
			continue
		}
		p.logger.Debug("completion provider finished",
			zap.String("provider", fmt.Sprintf("%T", provider)),
			zap.Int("added", request.Matches().Len()-before))
	}
	return nil
}

// filterByPrefix appends every word starting with the cursor argument prefix.
func filterByPrefix(request *Request, words []string) {
	prefix := request.CursorArgumentPrefix()
	request.Matches().AppendStrings(lo.Filter(words, func(w string, _ int) bool {
		return strings.HasPrefix(w, prefix)
	})...)
}
