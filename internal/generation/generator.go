// Package generation turns a product request into a finished Markdown
// description. It sends one chat completion and, when the reply looks cut
// off, asks the model to continue a bounded number of times.
package generation

import (
	"context"
	"errors"

	"listing-writer/internal/domain"
	"listing-writer/internal/integrations/openrouter"
)

const (
	temperature      = 0.7
	maxContinuations = 2
)

// Completer is the chat completion endpoint. *openrouter.Client satisfies it.
type Completer interface {
	Configured() error
	Complete(ctx context.Context, messages []domain.ChatMessage, opts openrouter.CompletionOptions) (string, error)
}

// Generator drives prompt construction and the continuation loop. It holds no
// per-request state and is safe for concurrent use.
type Generator struct {
	llm       Completer
	maxTokens int
}

type Option func(*Generator)

// WithMaxTokens caps each completion. Zero leaves it to the provider.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

func NewGenerator(llm Completer, opts ...Option) (*Generator, error) {
	if llm == nil {
		return nil, errors.New("generation: completer must not be nil")
	}
	g := &Generator{llm: llm}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Result carries the description plus how many continuation calls it took.
type Result struct {
	Text          string
	Continuations int
}

// Generate returns the description for req. Errors from the completer are
// returned unchanged and discard any text produced so far. Running out of
// continuations is not an error; the last text is returned as-is.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (Result, error) {
	if err := g.llm.Configured(); err != nil {
		return Result{}, err
	}

	opts := openrouter.CompletionOptions{Temperature: temperature, MaxTokens: g.maxTokens}
	base := baseMessages(req)

	working, err := g.llm.Complete(ctx, base, opts)
	if err != nil {
		return Result{}, err
	}
	working = domain.TrimText(working)

	n := 0
	for ; n < maxContinuations; n++ {
		if !LooksTruncated(working) {
			break
		}
		more, err := g.llm.Complete(ctx, continuationMessages(base, working), opts)
		if err != nil {
			return Result{}, err
		}
		working = domain.TrimText(working + "\n" + more)
	}

	return Result{Text: working, Continuations: n}, nil
}
