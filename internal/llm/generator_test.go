package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/outcome"
)

func TestGenerator_Generate(t *testing.T) {
	var got Request
	c := CompleterFunc(func(ctx context.Context, req Request) (string, error) {
		got = req
		return "  Most respondents shop online.\n", nil
	})
	g := NewGenerator(c, DefaultParams(), zap.NewNop())

	text, err := g.Generate(context.Background(), "Budget: 200", "How do people shop?")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Most respondents shop online." {
		t.Errorf("text = %q", text)
	}
	if got.System != SystemPrompt {
		t.Errorf("system prompt = %q", got.System)
	}
	wantUser := "Use the following context to provide insights: Budget: 200. Question: How do people shop?"
	if got.User != wantUser {
		t.Errorf("user prompt = %q, want %q", got.User, wantUser)
	}
	if got.MaxTokens != 150 || got.Temperature != 0.7 || got.Candidates != 1 {
		t.Errorf("params = %+v", got)
	}
}

func TestGenerator_failures(t *testing.T) {
	tests := []struct {
		name string
		c    Completer
	}{
		{"service error", CompleterFunc(func(context.Context, Request) (string, error) {
			return "", errors.New("429 too many requests")
		})},
		{"blank completion", CompleterFunc(func(context.Context, Request) (string, error) {
			return "   ", nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.c, DefaultParams(), nil).Generate(context.Background(), "ctx", "q")
			if outcome.KindOf(err) != outcome.KindGenerationService {
				t.Errorf("kind = %v", outcome.KindOf(err))
			}
			if outcome.PublicMessage(err) != MsgGenerationFailure {
				t.Errorf("message = %q", outcome.PublicMessage(err))
			}
		})
	}
}

func TestGenerator_appliesTimeout(t *testing.T) {
	p := DefaultParams()
	c := CompleterFunc(func(ctx context.Context, req Request) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			return "", errors.New("no deadline")
		}
		return "ok", nil
	})
	if _, err := NewGenerator(c, p, nil).Generate(context.Background(), "c", "q"); err != nil {
		t.Errorf("Generate: %v", err)
	}
}

func TestSystemPrompt(t *testing.T) {
	for _, want := range []string{"survey data analysis", "numerical data", "Avoid dataset IDs"} {
		if !strings.Contains(SystemPrompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
