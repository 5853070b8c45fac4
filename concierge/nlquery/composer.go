package nlquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
)

var _ contractx.AnswerComposer = (*Composer)(nil)

// Composer turns retrieved order data plus the user's question into a
// natural-language answer and returns the model's text verbatim.
type Composer struct {
	client       *openaisdk.Client
	model        string
	systemPrompt string
}

func NewComposer(client *openaisdk.Client, model string, systemPrompt string) (*Composer, error) {
	if client == nil {
		return nil, errors.New("chat client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("model name is required")
	}
	return &Composer{
		client:       client,
		model:        strings.TrimSpace(model),
		systemPrompt: systemPrompt,
	}, nil
}

func (c *Composer) Compose(ctx context.Context, req contractx.ComposeRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", contractx.ErrCompositionFailed)
	}

	completion, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(c.systemPrompt),
			openaisdk.UserMessage(renderRequest(req)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", contractx.ErrCompositionFailed, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", contractx.ErrCompositionFailed)
	}

	answer := strings.TrimSpace(completion.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned empty answer", contractx.ErrCompositionFailed)
	}

	return answer, nil
}

// renderRequest builds the user message: the question, the extractor's
// interpretation when available, and a stable textual rendering of the
// history, including the no-orders case.
func renderRequest(req contractx.ComposeRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original question: %s\n", strings.TrimSpace(req.Question))
	if specific := strings.TrimSpace(req.SpecificQuestion); specific != "" {
		fmt.Fprintf(&b, "Interpreted question: %s\n", specific)
	}
	if name := strings.TrimSpace(req.History.Customer.TradeName); name != "" {
		fmt.Fprintf(&b, "Customer: %s\n", name)
	}
	b.WriteString("Order data (JSON):\n")
	b.WriteString(renderHistory(req.History))
	return b.String()
}

func renderHistory(h contractx.OrderHistory) string {
	if len(h.Orders) == 0 {
		return "The customer has no recorded orders."
	}
	raw, err := json.MarshalIndent(h.Orders, "", "  ")
	if err != nil {
		return "The order data could not be rendered."
	}
	return string(raw)
}
