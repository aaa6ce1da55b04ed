package metrics

import (
	"fmt"
	"time"
)

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por outro backend sem alterar os clientes.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas emitidas pelo cliente CPaaS.
const (
	RequestCount    = "cpaas.request.count"
	RequestDuration = "cpaas.request.duration"
)

// NoopProvider é usado quando métricas estão desabilitadas.
type NoopProvider struct{}

func (NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }

// ObserveRequest registra contagem e duração (ms) de uma chamada a um serviço.
// status 0 indica falha de transporte.
func ObserveRequest(p Provider, service, operation string, status int, elapsed time.Duration) error {
	if p == nil {
		return nil
	}
	tags := []string{
		"service:" + service,
		"operation:" + operation,
		fmt.Sprintf("status:%d", status),
	}
	if err := p.Count(RequestCount, 1, tags); err != nil {
		return err
	}
	return p.Histogram(RequestDuration, float64(elapsed.Milliseconds()), tags)
}
