package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inferd/internal/gateway"
	"inferd/internal/registry"
	"inferd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []registry.ModelMetadata
	LoadModel(name string) (registry.ModelMetadata, error)
	Generate(ctx context.Context, modelName, prompt string, maxTokens int) (string, error)
	GenerateStream(ctx context.Context, modelName, prompt string, maxTokens int, emit func(string) error) error
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints; SSE responses are exempted by length
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)

	// health godoc
	// @Summary  Service health
	// @Produce  json
	// @Success  200 {object} types.HealthResponse
	// @Router   /health [get]
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.HealthResponse{Status: "ok"})
	})

	// models godoc
	// @Summary  List registry entries with lifecycle status
	// @Produce  json
	// @Success  200 {object} types.ModelsResponse
	// @Router   /models [get]
	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		metas := svc.ListModels()
		out := make([]types.ModelInfo, 0, len(metas))
		for _, m := range metas {
			out = append(out, types.ModelInfo{
				Name:       m.Name,
				Status:     string(m.Status),
				EngineKind: string(m.EngineKind),
			})
		}
		writeJSON(w, types.ModelsResponse{Models: out})
	})

	// load godoc
	// @Summary  Load a model and bind its engine
	// @Accept   json
	// @Produce  json
	// @Param    request body types.LoadModelRequest true "model to load"
	// @Success  200 {object} types.LoadModelResponse
	// @Failure  400 {object} types.ErrorResponse
	// @Router   /load [post]
	r.Post("/load", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoadModelRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.ModelName) == "" {
			writeJSONError(w, http.StatusBadRequest, "model_name is required")
			return
		}
		meta, err := svc.LoadModel(req.ModelName)
		if err != nil {
			// Load failures are payload content, not transport errors.
			writeJSON(w, types.LoadModelResponse{
				ModelName: req.ModelName,
				Status:    string(registry.StatusError),
				Message:   err.Error(),
			})
			return
		}
		writeJSON(w, types.LoadModelResponse{
			ModelName: meta.Name,
			Status:    string(meta.Status),
			Message:   fmt.Sprintf("model loaded (%s engine)", meta.EngineKind),
		})
	})

	// infer godoc
	// @Summary  Generate a completion (set stream=true for SSE)
	// @Accept   json
	// @Produce  json
	// @Param    stream  query bool false "stream fragments as SSE"
	// @Param    request body types.InferRequest true "generation request"
	// @Success  200 {object} types.InferResponse
	// @Failure  400 {object} types.ErrorResponse
	// @Router   /infer [post]
	r.Post("/infer", func(w http.ResponseWriter, r *http.Request) {
		var req types.InferRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.ModelName) == "" {
			writeJSONError(w, http.StatusBadRequest, "model_name is required")
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		if r.URL.Query().Get("stream") == "true" {
			serveStream(w, r, svc, req.ModelName, req.Prompt, req.MaxTokens)
			return
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		logInferStart(r, lvl, req.ModelName)
		// Join server base context with request context so shutdown cancels
		// work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		out, err := svc.Generate(ctx, req.ModelName, req.Prompt, req.MaxTokens)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				// Client disconnected or shutting down; nothing to write.
				return
			}
			// All taxonomy failures are embedded as content.
			out = gateway.ErrorText(err)
		}
		writeJSON(w, types.InferResponse{ModelName: req.ModelName, Output: out})
		logInferEnd(r, lvl, req.ModelName, time.Since(start), err)
	})

	// infer_stream godoc
	// @Summary  Stream a completion over SSE
	// @Produce  text/event-stream
	// @Param    model_name query string true  "target model"
	// @Param    prompt     query string true  "prompt text"
	// @Success  200 {string} string "SSE fragments"
	// @Router   /infer_stream [get]
	r.Get("/infer_stream", func(w http.ResponseWriter, r *http.Request) {
		modelName := r.URL.Query().Get("model_name")
		prompt := r.URL.Query().Get("prompt")
		if strings.TrimSpace(modelName) == "" || strings.TrimSpace(prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "model_name and prompt are required")
			return
		}
		serveStream(w, r, svc, modelName, prompt, 0)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no model loaded"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// serveStream renders one streaming session as server-sent events: one
// `data:` event per fragment, stream closed when the session ends. The
// session context joins the request context with the server base context, so
// both client disconnect and shutdown halt the producer.
func serveStream(w http.ResponseWriter, r *http.Request, svc Service, modelName, prompt string, maxTokens int) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	start := time.Now()
	lvl := requestLogLevel(r)
	logInferStart(r, lvl, modelName)
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	err := svc.GenerateStream(ctx, modelName, prompt, maxTokens, func(frag string) error {
		if _, werr := fmt.Fprintf(w, "data: %s\n\n", frag); werr != nil {
			return werr
		}
		flusher.Flush()
		return nil
	})
	logInferEnd(r, lvl, modelName, time.Since(start), err)
}

// decodeJSON enforces content type and body size, decoding into v.
// It writes the error response itself and reports success.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
