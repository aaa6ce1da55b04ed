package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
	// ContextKeyCorrID é o nome do campo de log com o correlation id.
	ContextKeyCorrID = "correlation_id"
)

type corrIDKey struct{}

// CorrelationID devolve o correlation id da requisição em ctx, ou "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(corrIDKey{}).(string)
	return id
}

func withCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrIDKey{}, id)
}

// Rotas expostas pelo servidor.
const (
	RouteRender    = "/v1/render"
	RouteEndpoints = "/v1/endpoints"
	RouteHealth    = "/health"
)

// maxBodyBytes limita o corpo aceito em /v1/render.
const maxBodyBytes = 1 << 20

// NewRouter monta as rotas HTTP do serviço.
func NewRouter(svc *Service) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(RouteHealth, healthHandler).Methods(http.MethodGet)
	r.HandleFunc(RouteRender, renderHandler(svc)).Methods(http.MethodPost)
	r.HandleFunc(RouteEndpoints, servicesHandler(svc)).Methods(http.MethodGet)
	r.HandleFunc(RouteEndpoints+"/{service}", endpointHandler(svc)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("rota não encontrada"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("método não permitido"))
	})

	r.Use(timeoutMiddleware(svc.timeout))
	r.Use(metricsMiddleware(svc))

	return ObservabilityMiddleware(r)
}

// StartHTTPServer sobe o servidor e bloqueia até ctx ser cancelado.
func StartHTTPServer(ctx context.Context, svc *Service, port int) error {
	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		svc.logger.Info().Msgf("Servidor HTTP ouvindo em %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		svc.logger.Info().Msg("Encerrando servidor HTTP")
		return server.Shutdown(shutdownCtx)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func renderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req RenderRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON Body"))
			return
		}

		resp, err := svc.Render(req)
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("render rejeitado")
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func servicesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"services": svc.Services()})
	}
}

func endpointHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := mux.Vars(r)["service"]
		resp, ok := svc.Endpoint(service, r.URL.Query().Get("env"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("serviço desconhecido: %s", service)))
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func timeoutMiddleware(d time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// metricsMiddleware registra as métricas com o template da rota como tag.
func metricsMiddleware(svc *Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			start := time.Now()
			wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK, startTime: start}
			next.ServeHTTP(wrapper, r)
			svc.observe(route, wrapper.statusCode, time.Since(start))
		})
	}
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga o correlation id, mede a latência e
// registra um log de acesso por requisição.
func ObservabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		corrID := r.Header.Get(HeaderCorrelationID)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, corrID)

		logger := log.With().Str(ContextKeyCorrID, corrID).Logger()
		ctx := logger.WithContext(r.Context())
		ctx = withCorrelationID(ctx, corrID)

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			startTime:      start,
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request completed")
	})
}
