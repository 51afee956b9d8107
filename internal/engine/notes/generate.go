package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_notes/internal/engine"
	"github.com/anatolykoptev/go_notes/internal/engine/prompts"
)

// ErrEmptyCompletion is returned when the model answers with nothing usable.
var ErrEmptyCompletion = errors.New("empty completion")

// Generator produces study notes and aptitude questions with a language model.
// Both outputs are normalized before they are returned.
type Generator struct {
	LLM     engine.Completer
	Prompts *prompts.Set
}

// NewGenerator returns a Generator. A nil set falls back to the built-in templates.
func NewGenerator(llm engine.Completer, set *prompts.Set) *Generator {
	if set == nil {
		set, _ = prompts.Default() // embedded templates always parse
	}
	return &Generator{LLM: llm, Prompts: set}
}

// Notes asks the model for structured notes on subject, grounded in the transcript.
func (g *Generator) Notes(ctx context.Context, transcript string, subject Subject) (string, error) {
	instr, err := g.Prompts.Render(prompts.Notes, prompts.Data{Subject: subject.Name})
	if err != nil {
		return "", err
	}
	return g.complete(ctx, instr+"\n\n"+transcript)
}

// Questions asks the model for numbered placement aptitude questions on subject.
// It does not depend on the transcript.
func (g *Generator) Questions(ctx context.Context, subject Subject) (string, error) {
	instr, err := g.Prompts.Render(prompts.Questions, prompts.Data{Subject: subject.Name})
	if err != nil {
		return "", err
	}
	return g.complete(ctx, instr)
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	if g.LLM == nil {
		return "", engine.ErrNoLLM
	}
	resp, err := g.LLM.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm: %w", err)
	}
	out := strings.TrimSpace(engine.Normalize(resp))
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
