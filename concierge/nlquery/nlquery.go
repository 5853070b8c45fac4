// Package nlquery holds the two language-model passes of the pipeline: the
// criteria extractor and the answer composer.
package nlquery

import (
	"context"
	"fmt"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
	llmx "github.com/example/omie-order-concierge/concierge/llm"
	promptx "github.com/example/omie-order-concierge/concierge/prompt"
	genaix "github.com/example/omie-order-concierge/pkg/genai"
)

// New builds the extractor and composer from one language-model config,
// applying per-role overrides.
func New(ctx context.Context, cfg llmx.Config) (*Extractor, *Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	prompts := promptx.LoadPromptSet()

	extractorCfg := cfg.GenAIFor(contractx.RoleExtractor)
	extractorModel, err := extractorCfg.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create extractor model: %w", err)
	}
	extractor, err := NewExtractor(ctx, extractorModel, prompts.Extractor)
	if err != nil {
		return nil, nil, err
	}

	composerCfg := cfg.GenAIFor(contractx.RoleComposer)
	composerClient := genaix.NewClient(composerCfg)
	if composerClient == nil {
		return nil, nil, fmt.Errorf("%w: composer client requires an api key", llmx.ErrInvalidConfig)
	}
	composer, err := NewComposer(composerClient, composerCfg.Model, prompts.Composer)
	if err != nil {
		return nil, nil, err
	}

	return extractor, composer, nil
}
