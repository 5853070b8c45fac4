package pipeline

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
)

// compileAnswerGraph wires the full natural-language path as a linear graph:
// validate -> extract -> resolve -> retrieve -> compose -> finalize. Every
// node failure terminates the invocation with the stage's own error kind.
func (s *Service) compileAnswerGraph(ctx context.Context) (compose.Runnable[string, string], error) {
	graph := compose.NewGraph[string, string]()

	if err := graph.AddLambdaNode("validate_question",
		compose.InvokableLambda(func(ctx context.Context, question string) (*questionState, error) {
			return validateQuestion(question)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_question: %w", err)
	}

	if err := graph.AddLambdaNode("extract_criteria",
		compose.InvokableLambda(func(ctx context.Context, st *questionState) (*questionState, error) {
			return extractCriteria(ctx, st, s.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_criteria: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_customer",
		compose.InvokableLambda(func(ctx context.Context, st *questionState) (*questionState, error) {
			return resolveCustomer(ctx, st, s.resolver)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_customer: %w", err)
	}

	if err := graph.AddLambdaNode("retrieve_orders",
		compose.InvokableLambda(func(ctx context.Context, st *questionState) (*questionState, error) {
			return retrieveOrders(ctx, st, s.retriever)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node retrieve_orders: %w", err)
	}

	if err := graph.AddLambdaNode("compose_answer",
		compose.InvokableLambda(func(ctx context.Context, st *questionState) (*questionState, error) {
			return composeAnswer(ctx, st, s.composer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_answer: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_answer",
		compose.InvokableLambda(func(ctx context.Context, st *questionState) (string, error) {
			return finalizeAnswer(st)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_answer: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_question"},
		{"validate_question", "extract_criteria"},
		{"extract_criteria", "resolve_customer"},
		{"resolve_customer", "retrieve_orders"},
		{"retrieve_orders", "compose_answer"},
		{"compose_answer", "finalize_answer"},
		{"finalize_answer", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("pipeline.answer_question"))
	if err != nil {
		return nil, fmt.Errorf("compile answer graph: %w", err)
	}
	return runner, nil
}

// compileLookupGraph wires the direct path, entering at customer resolution
// with caller-supplied criteria and never touching the language model.
func (s *Service) compileLookupGraph(ctx context.Context) (compose.Runnable[contractx.SearchCriteria, contractx.OrderHistory], error) {
	graph := compose.NewGraph[contractx.SearchCriteria, contractx.OrderHistory]()

	if err := graph.AddLambdaNode("resolve_customer",
		compose.InvokableLambda(func(ctx context.Context, criteria contractx.SearchCriteria) (contractx.CustomerIdentity, error) {
			return s.resolver.Resolve(ctx, criteria)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_customer: %w", err)
	}

	if err := graph.AddLambdaNode("retrieve_orders",
		compose.InvokableLambda(func(ctx context.Context, customer contractx.CustomerIdentity) (contractx.OrderHistory, error) {
			return s.retriever.FetchRecentOrders(ctx, customer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node retrieve_orders: %w", err)
	}

	edges := [][2]string{
		{compose.START, "resolve_customer"},
		{"resolve_customer", "retrieve_orders"},
		{"retrieve_orders", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("pipeline.find_customer_orders"))
	if err != nil {
		return nil, fmt.Errorf("compile lookup graph: %w", err)
	}
	return runner, nil
}
