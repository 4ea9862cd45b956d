package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/PabloGalante/studio-agent/internal/app/completion"
	"github.com/PabloGalante/studio-agent/internal/app/publish"
	"github.com/PabloGalante/studio-agent/internal/domain"
	"github.com/PabloGalante/studio-agent/internal/observability"
)

const (
	routeGenerate = "/api/generate"
	routePublish  = "/api/publish"
	routeHealthz  = "/healthz"
	routeMetrics  = "/metrics"
)

// maxBodyBytes bounds request bodies; transcripts are the largest payloads.
const maxBodyBytes = 1 << 20

type Server struct {
	gen     *completion.Service
	pub     *publish.Service
	metrics *observability.Metrics
}

func NewServer(gen *completion.Service, pub *publish.Service, metrics *observability.Metrics) http.Handler {
	s := &Server{gen: gen, pub: pub, metrics: metrics}
	mux := http.NewServeMux()

	mux.HandleFunc(routeGenerate, s.handleGenerate)
	mux.HandleFunc(routePublish, s.handlePublish)
	mux.HandleFunc(routeHealthz, s.handleHealthz)
	mux.Handle(routeMetrics, metrics.Handler())

	// Applied inside out: request id runs first, then logging, then recover,
	// so a recovered panic is still logged and counted with its request id.
	return chainMiddlewares(mux,
		withCORS,
		withRecover,
		withLogging(metrics),
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type turnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	UserMessage     string    `json:"userMessage"`
	Prompt          string    `json:"prompt"`
	Mode            string    `json:"mode,omitempty"`
	MaxOutputTokens int       `json:"maxOutputTokens,omitempty"`
	Conversation    []turnDTO `json:"conversation,omitempty"`
	Memory          string    `json:"memory,omitempty"`
}

// GenerateResponse is the success body of the generate endpoint.
type GenerateResponse struct {
	Intent       string `json:"intent"`
	Mode         string `json:"mode"`
	Result       string `json:"result"`
	IsCut        bool   `json:"isCut"`
	Continued    bool   `json:"continued"`
	Structured   bool   `json:"structured"`
	FinishReason string `json:"finishReason"`
}

type emptyResultResponse struct {
	Error        string `json:"error"`
	FinishReason string `json:"finishReason"`
}

type publishRequest struct {
	Platform string `json:"platform"`
	Text     string `json:"text"`
}

type publishResponse struct {
	OK       bool   `json:"ok"`
	Platform string `json:"platform"`
	ID       string `json:"id"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := s.gen.Generate(r.Context(), toDomainRequest(req))
	if err != nil {
		if empty, ok := domain.AsEmptyResult(err); ok {
			writeJSON(w, http.StatusOK, emptyResultResponse{
				Error:        empty.Error(),
				FinishReason: empty.FinishReason,
			})
			return
		}
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, NewGenerateResponse(out))
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req publishRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := s.pub.Publish(r.Context(), publish.Input{
		Platform: req.Platform,
		Text:     req.Text,
	})
	if err != nil {
		// Missing page credentials are the caller's setup problem here.
		writeError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, publishResponse{
		OK:       true,
		Platform: out.Platform,
		ID:       out.ID,
	})
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

// toDomainRequest prefers userMessage over prompt when both carry text.
func toDomainRequest(req generateRequest) domain.Request {
	text := strings.TrimSpace(req.UserMessage)
	if text == "" {
		text = req.Prompt
	}

	history := make([]domain.Turn, 0, len(req.Conversation))
	for _, t := range req.Conversation {
		history = append(history, domain.Turn{Role: t.Role, Content: t.Content})
	}

	return domain.Request{
		UserText:        text,
		Mode:            domain.NormalizeMode(req.Mode),
		MaxOutputTokens: req.MaxOutputTokens,
		History:         history,
		Memory:          req.Memory,
	}
}

func NewGenerateResponse(out *domain.FinalResponse) GenerateResponse {
	return GenerateResponse{
		Intent:       string(out.Intent),
		Mode:         string(out.Mode),
		Result:       out.Result,
		IsCut:        out.IsTruncated,
		Continued:    out.Continued,
		Structured:   out.Structured,
		FinishReason: out.FinishReason,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

// decodeBody reads a JSON body into v. An empty body decodes to the zero
// value so that the service reports the missing field by name.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// writeError maps domain errors to status codes. configStatus differs
// between generation (500) and publishing (400).
func writeError(w http.ResponseWriter, r *http.Request, err error, configStatus int) {
	log := observability.LoggerFromContext(r.Context())

	switch {
	case domain.IsValidation(err):
		badRequest(w, err.Error())
	case domain.IsConfiguration(err):
		log.Warn("request rejected: not configured", "error", err)
		writeJSON(w, configStatus, map[string]string{"error": configurationMessage(err)})
	default:
		if up, ok := domain.AsUpstream(err); ok {
			log.Error("upstream failure", "status", up.Status, "error", err)
			writeJSON(w, up.HTTPStatus(), map[string]string{"error": up.Message})
			return
		}
		internalError(w, r, err)
	}
}

func configurationMessage(err error) string {
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.Message
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "Server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "Method not allowed",
	})
}
