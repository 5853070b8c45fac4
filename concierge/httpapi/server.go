// Package httpapi hosts the pipeline behind a small JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
	"github.com/example/omie-order-concierge/concierge/pipeline"
)

type Server struct {
	Router  *mux.Router
	service *pipeline.Service
}

func NewServer(service *pipeline.Service) (*Server, error) {
	if service == nil {
		return nil, errors.New("pipeline service is required")
	}

	s := &Server{Router: mux.NewRouter(), service: service}
	s.Router.HandleFunc("/api/v1/customer-orders", s.handleCustomerOrders).Methods(http.MethodPost)
	s.Router.HandleFunc("/api/v1/questions", s.handleQuestion).Methods(http.MethodPost)
	s.Router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return s, nil
}

type questionRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Kind   string `json:"kind"`
	Error  string `json:"error"`
	Source string `json:"source,omitempty"`
	Status int    `json:"status,omitempty"`
}

func (s *Server) handleCustomerOrders(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)

	var criteria contractx.SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, logger, http.StatusBadRequest, errorResponse{
			Kind:  "bad_request",
			Error: "request body must be a JSON criteria object",
		})
		return
	}

	history, err := s.service.FindCustomerOrders(r.Context(), criteria)
	if err != nil {
		status, body := classify(err)
		writeError(w, logger, status, body)
		return
	}

	logger.Info().
		Int64("customer_id", history.Customer.ID).
		Int("orders", len(history.Orders)).
		Msg("customer orders served")
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, logger, http.StatusBadRequest, errorResponse{
			Kind:  "bad_request",
			Error: "request body must be a JSON object with a question field",
		})
		return
	}

	answer, err := s.service.AnswerOrderQuestion(r.Context(), req.Question)
	if err != nil {
		status, body := classify(err)
		writeError(w, logger, status, body)
		return
	}

	logger.Info().Msg("question answered")
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// classify maps the pipeline's error kinds onto HTTP statuses while keeping
// the kinds distinguishable in the response body.
func classify(err error) (int, errorResponse) {
	var upstream *contractx.UpstreamError

	switch {
	case errors.Is(err, contractx.ErrInvalidCriteria):
		return http.StatusBadRequest, errorResponse{Kind: "invalid_criteria", Error: err.Error()}
	case errors.Is(err, contractx.ErrCustomerNotFound):
		return http.StatusNotFound, errorResponse{Kind: "not_found", Error: err.Error()}
	case errors.Is(err, contractx.ErrAmbiguousMatch):
		return http.StatusConflict, errorResponse{Kind: "ambiguous_match", Error: err.Error()}
	case errors.Is(err, contractx.ErrExtractionFailed):
		return http.StatusUnprocessableEntity, errorResponse{Kind: "extraction_failed", Error: err.Error()}
	case errors.Is(err, contractx.ErrCompositionFailed):
		return http.StatusBadGateway, errorResponse{Kind: "composition_failed", Error: err.Error()}
	case errors.As(err, &upstream):
		return http.StatusBadGateway, errorResponse{
			Kind:   "upstream_error",
			Error:  err.Error(),
			Source: upstream.Source,
			Status: upstream.Status,
		}
	case errors.Is(err, contractx.ErrUpstream):
		return http.StatusBadGateway, errorResponse{Kind: "upstream_error", Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Kind: "internal_error", Error: err.Error()}
	}
}

func requestLogger(r *http.Request) zerolog.Logger {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return log.With().
		Str("request_id", requestID).
		Str("path", r.URL.Path).
		Logger()
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, status int, body errorResponse) {
	logger.Warn().
		Int("http_status", status).
		Str("kind", body.Kind).
		Str("error", body.Error).
		Msg("request failed")
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
