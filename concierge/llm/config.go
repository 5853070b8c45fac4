package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
	genaix "github.com/example/omie-order-concierge/pkg/genai"
)

var ErrInvalidConfig = errors.New("invalid language model config")

// Config holds the language-model settings shared by the two pipeline
// passes, with optional per-role model and temperature overrides.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gemini-2.5-flash"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`

	ExtractorModel       string  `envconfig:"EXTRACTOR_MODEL" split_words:"true"`
	ComposerModel        string  `envconfig:"COMPOSER_MODEL" split_words:"true"`
	ExtractorTemperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" split_words:"true" default:"-1"`
	ComposerTemperature  float32 `envconfig:"COMPOSER_TEMPERATURE" split_words:"true" default:"-1"`
}

// Enabled reports whether an API key is configured. Without one the
// service runs lookup-only.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", ErrInvalidConfig)
	}
	return nil
}

// GenAIFor returns the model configuration for one pipeline role, applying
// any role-specific overrides over the shared defaults.
func (c Config) GenAIFor(role contractx.ModelRole) genaix.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case contractx.RoleExtractor:
		if v := strings.TrimSpace(c.ExtractorModel); v != "" {
			modelName = v
		}
		if c.ExtractorTemperature >= 0 {
			temp = c.ExtractorTemperature
		}
	case contractx.RoleComposer:
		if v := strings.TrimSpace(c.ComposerModel); v != "" {
			modelName = v
		}
		if c.ComposerTemperature >= 0 {
			temp = c.ComposerTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return genaix.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
