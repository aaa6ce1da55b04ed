package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raywall/cpaas-toolkit/endpoint"
	"github.com/raywall/cpaas-toolkit/pkg/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoEndpoint indica que o serviço não existe na tabela de endpoints.
	ErrNoEndpoint = errors.New("endpoint não configurado para o serviço")
	// ErrNoSMSNumber indica que a identidade não possui alias sms.
	ErrNoSMSNumber = errors.New("identidade sem número sms")
)

// Headers enviados às APIs CPaaS.
const (
	HeaderApplicationKey = "application-key"
	HeaderUserUUID       = "X-User-uuid"
	HeaderRequestID      = "X-Request-Id"
	HeaderAuthorization  = "Authorization"
)

const defaultTimeout = 30 * time.Second

// StatusError é retornado quando o serviço responde fora da faixa 2xx.
type StatusError struct {
	Service    string
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s retornou status %d", e.Method, e.URL, e.StatusCode)
}

// ClientOption configura o Client.
type ClientOption func(*Client)

// WithEnvironment define o ambiente usado na resolução dos endpoints.
func WithEnvironment(env string) ClientOption {
	return func(c *Client) { c.env = env }
}

// WithHTTPClient substitui o *http.Client usado nas chamadas.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout define o timeout de cada chamada.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics define o provedor de métricas.
func WithMetrics(p metrics.Provider) ClientOption {
	return func(c *Client) {
		if p != nil {
			c.metrics = p
		}
	}
}

// WithLogger define o logger do cliente.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// Client encapsula as chamadas aos microserviços CPaaS.
// Não possui estado mutável e pode ser compartilhado entre goroutines.
type Client struct {
	resolver *endpoint.Resolver
	env      string
	http     *http.Client
	timeout  time.Duration
	metrics  metrics.Provider
	logger   zerolog.Logger
}

// NewClient cria um novo cliente sobre o resolver de endpoints informado.
func NewClient(resolver *endpoint.Resolver, opts ...ClientOption) *Client {
	c := &Client{
		resolver: resolver,
		http:     &http.Client{},
		timeout:  defaultTimeout,
		metrics:  metrics.NoopProvider{},
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call descreve uma chamada a um serviço CPaaS.
type call struct {
	service   string
	operation string
	method    string
	path      string
	apiKey    string
	headers   map[string]string
	body      interface{}
}

// baseURL resolve o endpoint do serviço no ambiente do cliente.
func (c *Client) baseURL(service string) (string, error) {
	uri, ok := c.resolver.Resolve(c.env, service)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoEndpoint, service)
	}
	return strings.TrimRight(uri, "/"), nil
}

// do executa a chamada e decodifica a resposta JSON em out (se não nulo).
func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	base, err := c.baseURL(cl.service)
	if err != nil {
		return err
	}
	url := base + cl.path

	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("erro ao serializar corpo de %s: %w", cl.operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, cl.method, url, reader)
	if err != nil {
		return fmt.Errorf("erro ao criar request %s: %w", cl.operation, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderApplicationKey, cl.apiKey)
	req.Header.Set(HeaderRequestID, requestID)
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}

	logger := c.logger.With().
		Str("service", cl.service).
		Str("operation", cl.operation).
		Str("request_id", requestID).
		Logger()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(logger, cl, 0, start)
		return fmt.Errorf("falha na conexão com %s (%s): %w", cl.service, url, err)
	}
	defer resp.Body.Close()
	c.observe(logger, cl, resp.StatusCode, start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("erro ao ler resposta de %s: %w", cl.service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Service:    cl.service,
			Method:     cl.method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       respBody,
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("erro decode json de %s: %w", cl.operation, err)
	}
	return nil
}

func (c *Client) observe(logger zerolog.Logger, cl call, status int, start time.Time) {
	elapsed := time.Since(start)
	logger.Debug().
		Int("status", status).
		Int64("latency_ms", elapsed.Milliseconds()).
		Msg("cpaas request completed")

	if err := metrics.ObserveRequest(c.metrics, cl.service, cl.operation, status, elapsed); err != nil {
		logger.Warn().Err(err).Msg("falha ao registrar métricas")
	}
}

// Request descreve uma chamada genérica a um serviço CPaaS.
// Path é relativo à URI base do serviço.
type Request struct {
	Service   string
	Operation string
	Method    string
	Path      string
	Headers   map[string]string
	Body      interface{}
}

// Call executa uma chamada genérica e devolve o JSON decodificado.
func (c *Client) Call(ctx context.Context, apiKey string, req Request) (interface{}, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	operation := req.Operation
	if operation == "" {
		operation = "call"
	}

	var out interface{}
	err := c.do(ctx, call{
		service:   strings.ToUpper(req.Service),
		operation: operation,
		method:    strings.ToUpper(method),
		path:      req.Path,
		apiKey:    apiKey,
		headers:   req.Headers,
		body:      req.Body,
	}, &out)
	return out, err
}
