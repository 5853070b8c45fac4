package nlquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
)

var _ contractx.CriteriaExtractor = (*Extractor)(nil)

// Extractor asks the model to pull identifying fields out of a free-text
// question. The model's output is untrusted input: anything that does not
// decode into usable criteria is an extraction failure, never a guess.
type Extractor struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

type extractorLLMOutput struct {
	TaxID       string `json:"tax_id"`
	TradeName   string `json:"trade_name"`
	City        string `json:"city"`
	Question    string `json:"question"`
	AboutOrders bool   `json:"about_orders"`
}

func NewExtractor(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Extractor, error) {
	runner, err := compilePromptModelGraph(ctx, chatModel, systemPrompt, "nlquery.extractor_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile extractor graph: %v", contractx.ErrExtractionFailed, err)
	}
	return &Extractor{runner: runner}, nil
}

func (e *Extractor) Extract(ctx context.Context, question string) (contractx.ExtractedCriteria, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return contractx.ExtractedCriteria{}, fmt.Errorf("%w: question is empty", contractx.ErrExtractionFailed)
	}

	msg, err := e.runner.Invoke(ctx, map[string]any{
		"input": question,
	})
	if err != nil {
		return contractx.ExtractedCriteria{}, fmt.Errorf("%w: extractor invoke: %v", contractx.ErrExtractionFailed, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return contractx.ExtractedCriteria{}, fmt.Errorf("%w: model returned no content", contractx.ErrExtractionFailed)
	}

	var out extractorLLMOutput
	if err := json.Unmarshal([]byte(stripCodeFence(msg.Content)), &out); err != nil {
		return contractx.ExtractedCriteria{}, fmt.Errorf("%w: decode model output: %v", contractx.ErrExtractionFailed, err)
	}

	if !out.AboutOrders {
		return contractx.ExtractedCriteria{}, fmt.Errorf("%w: question is not about customer orders", contractx.ErrExtractionFailed)
	}

	criteria := contractx.SearchCriteria{
		TaxID:     out.TaxID,
		TradeName: out.TradeName,
		City:      out.City,
	}.Normalized()
	if criteria.IsEmpty() {
		return contractx.ExtractedCriteria{}, fmt.Errorf("%w: no identifying field found in question", contractx.ErrExtractionFailed)
	}

	specific := strings.TrimSpace(out.Question)
	if specific == "" {
		specific = question
	}

	return contractx.ExtractedCriteria{
		Criteria:         criteria,
		SpecificQuestion: specific,
		AboutOrders:      true,
	}, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag. Models routinely wrap JSON this way despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
