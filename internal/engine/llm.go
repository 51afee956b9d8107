package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// ErrNoLLM is returned when no language-model client has been configured.
var ErrNoLLM = errors.New("llm client not configured")

// Completer is the single capability the generators need from a language model:
// one prompt in, one completion out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// kitCompleter talks to an OpenAI-compatible endpoint through go-kit/llm.
type kitCompleter struct {
	client  *llm.Client
	limiter *rate.Limiter // nil = unlimited
}

// NewLLMCompleter builds the production Completer from c.
func NewLLMCompleter(c Config) Completer {
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	)
	kc := &kitCompleter{client: client}
	if c.LLMRatePerMin > 0 {
		kc.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.LLMRatePerMin)), 1)
	}
	return kc
}

func (k *kitCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if k.limiter != nil {
		if err := k.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return k.client.Complete(ctx, "", prompt)
}

// CallLLM sends a prompt to the configured client and returns the trimmed completion.
func CallLLM(ctx context.Context, prompt string) (string, error) {
	if cfg.LLMClient == nil {
		return "", ErrNoLLM
	}
	metrics.LLMCalls.Add(1)
	resp, err := cfg.LLMClient.Complete(ctx, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// DefaultCompleter routes completions through CallLLM so they are counted.
func DefaultCompleter() Completer {
	return CompleterFunc(CallLLM)
}
