package omie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
)

const maxResponseSizeBytes = 2 << 20

// Config holds the Omie API credentials and endpoint. Credentials travel in
// the request payload, never in logs or error messages.
type Config struct {
	BaseURL   string        `envconfig:"BASE_URL" split_words:"true" default:"https://app.omie.com.br/api/v1"`
	AppKey    string        `envconfig:"APP_KEY" split_words:"true" required:"true"`
	AppSecret string        `envconfig:"APP_SECRET" split_words:"true" required:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// ClientOption customizes Client.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client speaks the Omie call envelope: every request is a POST whose body
// wraps the call name, the credentials and a single-element param list.
type Client struct {
	baseURL    string
	appKey     string
	appSecret  string
	httpClient *http.Client
}

type callEnvelope struct {
	Call      string `json:"call"`
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
	Param     []any  `json:"param"`
}

type faultEnvelope struct {
	FaultString string `json:"faultstring"`
	FaultCode   string `json:"faultcode"`
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("omie base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid omie base url: %w", err)
	}
	if strings.TrimSpace(cfg.AppKey) == "" {
		return nil, errors.New("omie app key is required")
	}
	if strings.TrimSpace(cfg.AppSecret) == "" {
		return nil, errors.New("omie app secret is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:   baseURL,
		appKey:    strings.TrimSpace(cfg.AppKey),
		appSecret: strings.TrimSpace(cfg.AppSecret),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...ClientOption) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// Call issues one Omie API call and returns the raw response body for the
// caller to decode. Failures, including faults delivered inside a 200
// response, are reported as *contract.UpstreamError.
func (c *Client) Call(ctx context.Context, endpointPath, callName string, param any) (json.RawMessage, error) {
	if strings.TrimSpace(callName) == "" {
		return nil, errors.New("omie call name is required")
	}

	body, err := json.Marshal(callEnvelope{
		Call:      callName,
		AppKey:    c.appKey,
		AppSecret: c.appSecret,
		Param:     []any{param},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal omie payload: %w", err)
	}

	apiURL := c.baseURL + "/" + strings.Trim(endpointPath, "/") + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build omie request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &contractx.UpstreamError{
			Source:  "omie/" + callName,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, &contractx.UpstreamError{
			Source:  "omie/" + callName,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("read response: %v", err),
		}
	}

	log.Debug().
		Str("call", callName).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("omie call finished")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &contractx.UpstreamError{
			Source:  "omie/" + callName,
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(raw)),
		}
	}

	// Some Omie calls report errors inside a 200 body.
	var fault faultEnvelope
	if err := json.Unmarshal(raw, &fault); err != nil {
		return nil, &contractx.UpstreamError{
			Source:  "omie/" + callName,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("decode response: %v", err),
		}
	}
	if fault.FaultString != "" || fault.FaultCode != "" {
		msg := fault.FaultString
		if msg == "" {
			msg = fault.FaultCode
		}
		return nil, &contractx.UpstreamError{
			Source:  "omie/" + callName,
			Status:  resp.StatusCode,
			Message: msg,
		}
	}

	return raw, nil
}
