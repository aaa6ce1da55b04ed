package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LambdaHandler adapta eventos do API Gateway para o Service.
type LambdaHandler struct {
	svc *Service
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(svc *Service) *LambdaHandler {
	return &LambdaHandler{svc: svc}
}

// Handle processa a requisição Lambda
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	// O API Gateway pode ou não normalizar o case dos headers
	corrID := headerValue(req.Headers, HeaderCorrelationID)
	if corrID == "" {
		corrID = uuid.NewString()
	}

	logger := log.With().Str(ContextKeyCorrID, corrID).Logger()
	ctx = logger.WithContext(ctx)
	ctx = withCorrelationID(ctx, corrID)

	if h.svc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.svc.timeout)
		defer cancel()
	}

	route, response := h.route(ctx, req)

	duration := time.Since(start)
	h.svc.observe(route, response.StatusCode, duration)
	logger.Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", response.StatusCode).
		Int64("latency_ms", duration.Milliseconds()).
		Msg("lambda request completed")

	if response.Headers == nil {
		response.Headers = make(map[string]string)
	}
	response.Headers[HeaderCorrelationID] = corrID
	response.Headers[HeaderLatency] = fmt.Sprintf("%d", duration.Milliseconds())

	return response, nil
}

// route devolve o template da rota atendida e a resposta.
func (h *LambdaHandler) route(ctx context.Context, req events.APIGatewayProxyRequest) (string, events.APIGatewayProxyResponse) {
	path := strings.TrimRight(req.Path, "/")

	switch {
	case path == RouteHealth:
		if req.HTTPMethod != http.MethodGet {
			return path, jsonResponse(http.StatusMethodNotAllowed, errorBody("método não permitido"))
		}
		return path, jsonResponse(http.StatusOK, map[string]string{"status": "ok"})

	case path == RouteRender:
		if req.HTTPMethod != http.MethodPost {
			return path, jsonResponse(http.StatusMethodNotAllowed, errorBody("método não permitido"))
		}
		return path, h.handleRender(ctx, req)

	case path == RouteEndpoints:
		if req.HTTPMethod != http.MethodGet {
			return path, jsonResponse(http.StatusMethodNotAllowed, errorBody("método não permitido"))
		}
		return path, jsonResponse(http.StatusOK, map[string][]string{"services": h.svc.Services()})

	case strings.HasPrefix(path, RouteEndpoints+"/"):
		tpl := RouteEndpoints + "/{service}"
		if req.HTTPMethod != http.MethodGet {
			return tpl, jsonResponse(http.StatusMethodNotAllowed, errorBody("método não permitido"))
		}
		service := req.PathParameters["service"]
		if service == "" {
			service = strings.TrimPrefix(path, RouteEndpoints+"/")
		}
		return tpl, h.handleEndpoint(service, req.QueryStringParameters["env"])
	}

	return req.Path, jsonResponse(http.StatusNotFound, errorBody("rota não encontrada"))
}

func (h *LambdaHandler) handleRender(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body RenderRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return jsonResponse(http.StatusBadRequest, errorBody("Invalid JSON Body"))
	}

	resp, err := h.svc.Render(body)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("render rejeitado")
		return jsonResponse(http.StatusBadRequest, errorBody(err.Error()))
	}
	return jsonResponse(http.StatusOK, resp)
}

func (h *LambdaHandler) handleEndpoint(service, env string) events.APIGatewayProxyResponse {
	resp, ok := h.svc.Endpoint(service, env)
	if !ok {
		return jsonResponse(http.StatusNotFound, errorBody(fmt.Sprintf("serviço desconhecido: %s", service)))
	}
	return jsonResponse(http.StatusOK, resp)
}

func jsonResponse(code int, body interface{}) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error": "internal server error"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}

func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
