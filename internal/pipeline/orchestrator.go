// Package pipeline runs the question-answering stages in order:
// select collection, retrieve documents, build context, generate answer.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/contextbuilder"
	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/outcome"
	"github.com/hyperjump/surveyrag/pkg/utils"
)

// MsgEmptyQuestion is returned for a missing or blank question.
const MsgEmptyQuestion = "Question parameter cannot be empty."

// IndexSelector routes a question to a collection tag.
type IndexSelector interface {
	Select(question models.Question) (models.IndexTag, error)
}

// DocumentRetriever returns ranked documents for a question from one collection.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, tag models.IndexTag, question models.Question) ([]models.RetrievedDocument, error)
}

// AnswerGenerator produces the answer text from context and question.
type AnswerGenerator interface {
	Generate(ctx context.Context, surveyContext string, question models.Question) (string, error)
}

// Orchestrator runs the stages strictly in sequence; the first failure ends the request.
type Orchestrator struct {
	selector        IndexSelector
	retriever       DocumentRetriever
	generator       AnswerGenerator
	maxContextChars int
	logger          *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithMaxContextChars caps the context passed to generation. Zero or negative disables the cap.
func WithMaxContextChars(n int) Option {
	return func(o *Orchestrator) {
		o.maxContextChars = n
	}
}

// New returns an Orchestrator over the three stages.
func New(sel IndexSelector, ret DocumentRetriever, gen AnswerGenerator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		selector:  sel,
		retriever: ret,
		generator: gen,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handle answers question. The result carries either the answer or an *outcome.Error
// whose kind tells the caller how to report it.
func (o *Orchestrator) Handle(ctx context.Context, question models.Question) mo.Result[*models.Answer] {
	start := time.Now()
	log := o.logger.With(zap.String("request_id", uuid.NewString()))

	answer, err := o.run(ctx, log, question.Normalize())
	if err != nil {
		kind := outcome.KindOf(err)
		fields := []zap.Field{zap.Stringer("kind", kind), zap.Duration("elapsed", time.Since(start))}
		switch {
		case kind == outcome.KindInvalidInput || kind.NotFound():
			log.Info("question not answered", append(fields, zap.String("reason", outcome.PublicMessage(err)))...)
		default:
			log.Error("question failed", append(fields, zap.Error(err))...)
		}
		var classified *outcome.Error
		if !errors.As(err, &classified) {
			err = outcome.Wrap(outcome.KindInternal, outcome.PublicMessage(err), err)
		}
		return mo.Err[*models.Answer](err)
	}
	log.Info("question answered",
		zap.String("collection", string(answer.Collection)),
		zap.Int("documents", answer.Documents),
		zap.Duration("elapsed", time.Since(start)))
	return mo.Ok(answer)
}

func (o *Orchestrator) run(ctx context.Context, log *zap.Logger, question models.Question) (*models.Answer, error) {
	if question.IsEmpty() {
		return nil, outcome.New(outcome.KindInvalidInput, MsgEmptyQuestion)
	}

	tag, err := o.selector.Select(question)
	if err != nil {
		return nil, err
	}
	log.Debug("collection selected", zap.String("collection", string(tag)))

	docs, err := o.retriever.Retrieve(ctx, tag, question)
	if err != nil {
		return nil, err
	}

	surveyContext := contextbuilder.Build(docs)
	if o.maxContextChars > 0 && utils.RuneLen(surveyContext) > o.maxContextChars {
		log.Warn("context truncated",
			zap.Int("chars", utils.RuneLen(surveyContext)),
			zap.Int("limit", o.maxContextChars))
		surveyContext = utils.Truncate(surveyContext, o.maxContextChars)
	}

	text, err := o.generator.Generate(ctx, surveyContext, question)
	if err != nil {
		return nil, err
	}
	return &models.Answer{Text: text, Collection: tag, Documents: len(docs)}, nil
}
