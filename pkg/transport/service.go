package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/raywall/cpaas-toolkit/endpoint"
	"github.com/raywall/cpaas-toolkit/pkg/metrics"
	"github.com/raywall/cpaas-toolkit/variables"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrEmptyRender indica um pedido de renderização sem template nem valores.
var ErrEmptyRender = errors.New("informe template ou values")

// RenderRequest é o corpo de POST /v1/render.
type RenderRequest struct {
	Template string            `json:"template"`
	Values   map[string]string `json:"values,omitempty"`
	Tree     json.RawMessage   `json:"tree"`
}

// RenderResponse devolve o template resolvido (Result) e/ou o mapa resolvido (Values).
type RenderResponse struct {
	Result string            `json:"result"`
	Values map[string]string `json:"values,omitempty"`
}

// EndpointResponse é a resposta de GET /v1/endpoints/{service}.
type EndpointResponse struct {
	Service     string `json:"service"`
	Environment string `json:"environment"`
	URI         string `json:"uri"`
}

// ServiceOption configura o Service.
type ServiceOption func(*Service)

// WithRenderer substitui o resolvedor de placeholders.
func WithRenderer(r *variables.Resolver) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithMetrics define o provedor de métricas das rotas.
func WithMetrics(p metrics.Provider) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.metrics = p
		}
	}
}

// WithLogger define o logger do serviço.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithTimeout limita o tempo de cada requisição.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// WithTableSource habilita Reload a partir da fonte informada.
func WithTableSource(loader *endpoint.Loader, source string) ServiceOption {
	return func(s *Service) {
		s.loader = loader
		s.source = source
	}
}

// Service concentra a lógica comum ao servidor HTTP e ao handler Lambda.
// O resolver é trocado por inteiro em Reload; nunca é alterado no lugar.
type Service struct {
	resolver atomic.Pointer[endpoint.Resolver]
	renderer *variables.Resolver
	metrics  metrics.Provider
	logger   zerolog.Logger
	timeout  time.Duration

	loader *endpoint.Loader
	source string
}

// NewService cria o Service sobre o resolver inicial.
func NewService(resolver *endpoint.Resolver, opts ...ServiceOption) *Service {
	s := &Service{
		renderer: variables.NewResolver(),
		metrics:  metrics.NoopProvider{},
		logger:   log.Logger,
		timeout:  30 * time.Second,
	}
	s.resolver.Store(resolver)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver devolve o snapshot atual da tabela de endpoints.
func (s *Service) Resolver() *endpoint.Resolver {
	return s.resolver.Load()
}

// Reload recarrega a tabela da fonte configurada e publica um novo resolver.
// Em caso de erro o resolver anterior continua em uso.
func (s *Service) Reload(ctx context.Context) error {
	if s.loader == nil {
		return fmt.Errorf("reload sem fonte de endpoints configurada")
	}
	table, err := s.loader.Load(ctx, s.source)
	if err != nil {
		return err
	}
	s.resolver.Store(endpoint.NewResolver(table, endpoint.WithLogger(s.logger)))
	s.logger.Info().
		Str("source", s.source).
		Strs("services", table.Services()).
		Msg("tabela de endpoints recarregada")
	return nil
}

// Render resolve os placeholders do pedido contra a árvore enviada.
func (s *Service) Render(req RenderRequest) (RenderResponse, error) {
	if req.Template == "" && len(req.Values) == 0 {
		return RenderResponse{}, ErrEmptyRender
	}

	var tree variables.OrderedTree
	if len(req.Tree) > 0 {
		var err error
		if tree, err = variables.ParseTree(req.Tree); err != nil {
			return RenderResponse{}, err
		}
	}

	resp := RenderResponse{Result: s.renderer.Replace(req.Template, tree)}
	if len(req.Values) > 0 {
		resp.Values = s.renderer.ReplaceMap(req.Values, tree)
	}
	return resp, nil
}

// Endpoint resolve a URI do serviço no ambiente informado.
func (s *Service) Endpoint(service, env string) (EndpointResponse, bool) {
	environment, diag := endpoint.ParseEnvironment(env)
	if diag != nil {
		s.logger.Warn().
			Str("env", diag.Input).
			Str("applied", string(diag.Applied)).
			Msg(diag.String())
	}

	uri, ok := s.Resolver().Lookup(environment, service)
	if !ok {
		return EndpointResponse{}, false
	}
	return EndpointResponse{
		Service:     service,
		Environment: string(environment),
		URI:         uri,
	}, true
}

// Services lista os serviços conhecidos.
func (s *Service) Services() []string {
	return s.Resolver().Services()
}

func (s *Service) observe(route string, status int, elapsed time.Duration) {
	if err := metrics.ObserveRequest(s.metrics, "transport", route, status, elapsed); err != nil {
		s.logger.Warn().Err(err).Msg("falha ao registrar métricas")
	}
}
