// Package pipeline sequences criteria extraction, customer resolution,
// order retrieval and answer composition, short-circuiting on the first
// failure.
package pipeline

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
)

var (
	errInvalidState = errors.New("pipeline state is nil")

	// ErrNoLanguageModel is returned by AnswerOrderQuestion when the
	// service was built without the language-model stages.
	ErrNoLanguageModel = errors.New("language model stages are not configured")
)

// Service exposes the two pipeline entry points. Invocations share no
// mutable state and may run concurrently.
type Service struct {
	resolver  contractx.CustomerResolver
	retriever contractx.OrderRetriever
	extractor contractx.CriteriaExtractor
	composer  contractx.AnswerComposer

	answerRunner compose.Runnable[string, string]
	lookupRunner compose.Runnable[contractx.SearchCriteria, contractx.OrderHistory]
}

// New compiles the pipeline graphs. Extractor and composer may both be nil,
// which leaves only the direct lookup path available.
func New(
	resolver contractx.CustomerResolver,
	retriever contractx.OrderRetriever,
	extractor contractx.CriteriaExtractor,
	composer contractx.AnswerComposer,
) (*Service, error) {
	if resolver == nil {
		return nil, errors.New("customer resolver is required")
	}
	if retriever == nil {
		return nil, errors.New("order retriever is required")
	}
	if (extractor == nil) != (composer == nil) {
		return nil, errors.New("extractor and composer must be configured together")
	}

	s := &Service{
		resolver:  resolver,
		retriever: retriever,
		extractor: extractor,
		composer:  composer,
	}

	lookupRunner, err := s.compileLookupGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.lookupRunner = lookupRunner

	if extractor != nil {
		answerRunner, err := s.compileAnswerGraph(context.Background())
		if err != nil {
			return nil, err
		}
		s.answerRunner = answerRunner
	}

	return s, nil
}

// AnswerOrderQuestion runs the full path: interpret the question, resolve
// the customer, fetch the history and compose an answer. Any stage failure
// is returned with its original error kind; no stage recovers from another.
func (s *Service) AnswerOrderQuestion(ctx context.Context, question string) (string, error) {
	if s.answerRunner == nil {
		return "", ErrNoLanguageModel
	}
	return s.answerRunner.Invoke(ctx, question)
}

// FindCustomerOrders runs the direct path with caller-supplied criteria,
// bypassing the language model entirely.
func (s *Service) FindCustomerOrders(ctx context.Context, criteria contractx.SearchCriteria) (contractx.OrderHistory, error) {
	return s.lookupRunner.Invoke(ctx, criteria)
}
