package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
	"github.com/example/omie-order-concierge/concierge/pipeline"
)

type stubStages struct {
	extracted    contractx.ExtractedCriteria
	extractErr   error
	identity     contractx.CustomerIdentity
	resolveErr   error
	history      contractx.OrderHistory
	retrieveErr  error
	answer       string
	composeErr   error
	withLanguage bool
}

func (s *stubStages) Extract(ctx context.Context, question string) (contractx.ExtractedCriteria, error) {
	return s.extracted, s.extractErr
}

func (s *stubStages) Resolve(ctx context.Context, criteria contractx.SearchCriteria) (contractx.CustomerIdentity, error) {
	return s.identity, s.resolveErr
}

func (s *stubStages) FetchRecentOrders(ctx context.Context, customer contractx.CustomerIdentity) (contractx.OrderHistory, error) {
	return s.history, s.retrieveErr
}

func (s *stubStages) Compose(ctx context.Context, req contractx.ComposeRequest) (string, error) {
	return s.answer, s.composeErr
}

func newTestServer(t *testing.T, stages *stubStages) *Server {
	t.Helper()

	var extractor contractx.CriteriaExtractor
	var composer contractx.AnswerComposer
	if stages.withLanguage {
		extractor = stages
		composer = stages
	}

	svc, err := pipeline.New(stages, stages, extractor, composer)
	if err != nil {
		t.Fatalf("pipeline.New() error = %v", err)
	}
	server, err := NewServer(svc)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return server
}

func doJSON(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router.ServeHTTP(rec, req)
	return rec
}

func TestCustomerOrdersSuccess(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubStages{
		identity: contractx.CustomerIdentity{ID: 12345, TradeName: "Acme Ltda"},
		history: contractx.OrderHistory{
			Customer: contractx.CustomerIdentity{ID: 12345, TradeName: "Acme Ltda"},
			Orders:   []contractx.OrderRecord{{Number: "42", Total: 100}},
		},
	})

	rec := doJSON(t, server, http.MethodPost, "/api/v1/customer-orders", `{"tax_id":"359.489.811-34"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out contractx.OrderHistory
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Customer.ID != 12345 || len(out.Orders) != 1 {
		t.Fatalf("response = %+v", out)
	}
}

func TestCustomerOrdersErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		resolveErr error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "invalid criteria",
			resolveErr: fmt.Errorf("%w: at least one field is required", contractx.ErrInvalidCriteria),
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_criteria",
		},
		{
			name:       "customer not found",
			resolveErr: fmt.Errorf("%w: no customer matched", contractx.ErrCustomerNotFound),
			wantStatus: http.StatusNotFound,
			wantKind:   "not_found",
		},
		{
			name:       "ambiguous match",
			resolveErr: fmt.Errorf("%w: 2 customers matched", contractx.ErrAmbiguousMatch),
			wantStatus: http.StatusConflict,
			wantKind:   "ambiguous_match",
		},
		{
			name:       "unexpected failure",
			resolveErr: fmt.Errorf("directory exploded"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   "internal_error",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t, &stubStages{resolveErr: tc.resolveErr})
			rec := doJSON(t, server, http.MethodPost, "/api/v1/customer-orders", `{"trade_name":"Acme"}`)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.wantStatus, rec.Body.String())
			}

			var body struct {
				Kind string `json:"kind"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Kind != tc.wantKind {
				t.Fatalf("kind = %q, want %q", body.Kind, tc.wantKind)
			}
		})
	}
}

func TestCustomerOrdersUpstreamErrorBody(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubStages{
		resolveErr: fmt.Errorf("resolve customer: %w", &contractx.UpstreamError{
			Source:  "omie/ListarClientes",
			Status:  503,
			Message: "unavailable",
		}),
	})

	rec := doJSON(t, server, http.MethodPost, "/api/v1/customer-orders", `{"trade_name":"Acme"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Kind   string `json:"kind"`
		Source string `json:"source"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Kind != "upstream_error" || body.Source != "omie/ListarClientes" || body.Status != 503 {
		t.Fatalf("body = %+v", body)
	}
}

func TestCustomerOrdersMalformedBody(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubStages{})
	rec := doJSON(t, server, http.MethodPost, "/api/v1/customer-orders", `{"tax_id":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestQuestionSuccess(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubStages{
		withLanguage: true,
		extracted: contractx.ExtractedCriteria{
			Criteria:    contractx.SearchCriteria{TaxID: "35948981134"},
			AboutOrders: true,
		},
		identity: contractx.CustomerIdentity{ID: 12345},
		history:  contractx.OrderHistory{Customer: contractx.CustomerIdentity{ID: 12345}},
		answer:   "The customer has no recorded orders.",
	})

	rec := doJSON(t, server, http.MethodPost, "/api/v1/questions", `{"question":"any orders for CPF 359.489.811-34?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Answer != "The customer has no recorded orders." {
		t.Fatalf("answer = %q", body.Answer)
	}
}

func TestQuestionErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		stages     *stubStages
		wantStatus int
		wantKind   string
	}{
		{
			name: "extraction failed",
			stages: &stubStages{
				withLanguage: true,
				extractErr:   fmt.Errorf("%w: question is not about customer orders", contractx.ErrExtractionFailed),
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "extraction_failed",
		},
		{
			name: "composition failed",
			stages: &stubStages{
				withLanguage: true,
				extracted: contractx.ExtractedCriteria{
					Criteria:    contractx.SearchCriteria{TaxID: "35948981134"},
					AboutOrders: true,
				},
				composeErr: fmt.Errorf("%w: model returned empty answer", contractx.ErrCompositionFailed),
			},
			wantStatus: http.StatusBadGateway,
			wantKind:   "composition_failed",
		},
		{
			name:       "language model not configured",
			stages:     &stubStages{},
			wantStatus: http.StatusInternalServerError,
			wantKind:   "internal_error",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t, tc.stages)
			rec := doJSON(t, server, http.MethodPost, "/api/v1/questions", `{"question":"what did Acme order?"}`)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.wantStatus, rec.Body.String())
			}

			var body struct {
				Kind string `json:"kind"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Kind != tc.wantKind {
				t.Fatalf("kind = %q, want %q", body.Kind, tc.wantKind)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubStages{})
	rec := doJSON(t, server, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubStages{})
	rec := doJSON(t, server, http.MethodGet, "/api/v1/questions", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
