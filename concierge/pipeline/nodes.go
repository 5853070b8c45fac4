package pipeline

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
)

// questionState carries one natural-language invocation through the graph.
// It is created per invocation and never shared.
type questionState struct {
	Question  string
	Extracted contractx.ExtractedCriteria
	Customer  contractx.CustomerIdentity
	History   contractx.OrderHistory
	Answer    string
}

func validateQuestion(question string) (*questionState, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: question is empty", contractx.ErrExtractionFailed)
	}
	return &questionState{Question: trimmed}, nil
}

func extractCriteria(ctx context.Context, st *questionState, extractor contractx.CriteriaExtractor) (*questionState, error) {
	if st == nil {
		return nil, errInvalidState
	}

	extracted, err := extractor.Extract(ctx, st.Question)
	if err != nil {
		return nil, err
	}

	st.Extracted = extracted
	return st, nil
}

func resolveCustomer(ctx context.Context, st *questionState, resolver contractx.CustomerResolver) (*questionState, error) {
	if st == nil {
		return nil, errInvalidState
	}

	customer, err := resolver.Resolve(ctx, st.Extracted.Criteria)
	if err != nil {
		return nil, err
	}

	st.Customer = customer
	return st, nil
}

func retrieveOrders(ctx context.Context, st *questionState, retriever contractx.OrderRetriever) (*questionState, error) {
	if st == nil {
		return nil, errInvalidState
	}

	history, err := retriever.FetchRecentOrders(ctx, st.Customer)
	if err != nil {
		return nil, err
	}

	st.History = history
	return st, nil
}

func composeAnswer(ctx context.Context, st *questionState, composer contractx.AnswerComposer) (*questionState, error) {
	if st == nil {
		return nil, errInvalidState
	}

	answer, err := composer.Compose(ctx, contractx.ComposeRequest{
		Question:         st.Question,
		SpecificQuestion: st.Extracted.SpecificQuestion,
		History:          st.History,
	})
	if err != nil {
		return nil, err
	}

	st.Answer = answer
	return st, nil
}

func finalizeAnswer(st *questionState) (string, error) {
	if st == nil {
		return "", errInvalidState
	}

	answer := strings.TrimSpace(st.Answer)
	if answer == "" {
		return "", fmt.Errorf("%w: pipeline produced an empty answer", contractx.ErrCompositionFailed)
	}
	return answer, nil
}
