package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/outcome"
)

// SystemPrompt frames the model as a survey analyst.
const SystemPrompt = "You are an AI assistant specialized in survey data analysis. " +
	"Use the provided context to derive insights, make comparisons, and summarize key findings. " +
	"Provide an informative and concise response, including numerical data where appropriate. " +
	"Avoid dataset IDs and instead focus on aggregated insights that help understand the overall trends."

// MsgGenerationFailure is returned to callers when the completion service fails.
const MsgGenerationFailure = "An unexpected error occurred while generating the answer."

// UserPrompt embeds the survey context and question verbatim.
func UserPrompt(surveyContext string, question models.Question) string {
	return fmt.Sprintf("Use the following context to provide insights: %s. Question: %s", surveyContext, question)
}

// Params are the fixed generation settings.
type Params struct {
	MaxTokens   int
	Temperature float32
	Candidates  int
	Timeout     time.Duration
}

// DefaultParams returns max 150 tokens, temperature 0.7 and a single candidate.
func DefaultParams() Params {
	return Params{MaxTokens: 150, Temperature: 0.7, Candidates: 1, Timeout: 60 * time.Second}
}

// Generator builds prompts and calls a Completer.
type Generator struct {
	completer Completer
	params    Params
	logger    *zap.Logger
}

// NewGenerator returns a Generator. A nil logger disables logging.
func NewGenerator(c Completer, p Params, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{completer: c, params: p, logger: logger}
}

// Generate returns the trimmed answer text for question grounded on surveyContext.
// Any completion failure, including an empty answer, is a generation service error.
func (g *Generator) Generate(ctx context.Context, surveyContext string, question models.Question) (string, error) {
	if g.params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.params.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.completer.Complete(ctx, Request{
		System:      SystemPrompt,
		User:        UserPrompt(surveyContext, question),
		MaxTokens:   g.params.MaxTokens,
		Temperature: g.params.Temperature,
		Candidates:  g.params.Candidates,
	})
	if err != nil {
		g.logger.Error("completion failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", outcome.Wrap(outcome.KindGenerationService, MsgGenerationFailure, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Error("completion returned no text")
		return "", outcome.Wrap(outcome.KindGenerationService, MsgGenerationFailure, errors.New("empty completion"))
	}
	g.logger.Debug("completion done", zap.Int("chars", len(text)), zap.Duration("elapsed", time.Since(start)))
	return text, nil
}
