package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/cpaas-toolkit/variables"
	"gopkg.in/yaml.v3"
)

// ErrRequiredStep indica que um step obrigatório falhou e o pipeline foi cancelado.
var ErrRequiredStep = errors.New("step obrigatório falhou")

// Step define uma chamada CPaaS dentro de um pipeline.
//
// Path, os valores de Headers e as strings de Body são templates %token%
// resolvidos contra o escopo do step: a entrada do pipeline (chave "input")
// seguida dos resultados das dependências (chave = nome do step).
// Uma string de Body que é exatamente um placeholder recebe o valor original,
// sem conversão para texto. Path não é escapado.
type Step struct {
	// Name é o identificador único do step no pipeline.
	Name string `yaml:"name" json:"name" validate:"required"`
	// Service é o serviço da tabela de endpoints (IDENTITY, MESSAGING, ...).
	Service string `yaml:"service" json:"service" validate:"required"`
	// Method é o método HTTP (default GET).
	Method  string                 `yaml:"method" json:"method,omitempty"`
	Path    string                 `yaml:"path" json:"path"`
	Headers map[string]string      `yaml:"headers" json:"headers,omitempty"`
	Body    map[string]interface{} `yaml:"body" json:"body,omitempty"`
	// Required, se true, qualquer falha deste step cancela todo o pipeline.
	Required bool `yaml:"required" json:"required,omitempty"`
	// DependsOn lista os steps que precisam terminar antes deste.
	DependsOn []string `yaml:"depends_on" json:"depends_on,omitempty"`
}

// StepResult encapsula o resultado de um step, seja sucesso ou falha.
type StepResult struct {
	Name  string
	Data  interface{}
	Error error
}

// PipelineOption configura um Pipeline.
type PipelineOption func(*Pipeline)

// WithRenderer substitui o resolvedor de placeholders dos steps.
func WithRenderer(r *variables.Resolver) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.renderer = r
		}
	}
}

// Pipeline executa steps em paralelo respeitando as dependências.
// É imutável após a construção e pode ser executado várias vezes.
type Pipeline struct {
	client   *Client
	steps    []Step
	renderer *variables.Resolver
}

var stepValidator = validator.New()

// NewPipeline valida os steps (nomes únicos, dependências conhecidas e sem
// ciclos) e cria o pipeline.
func NewPipeline(client *Client, steps []Step, opts ...PipelineOption) (*Pipeline, error) {
	index := make(map[string]Step, len(steps))
	for i, s := range steps {
		if err := stepValidator.Struct(s); err != nil {
			return nil, fmt.Errorf("step %d inválido: %w", i, err)
		}
		if _, dup := index[s.Name]; dup {
			return nil, fmt.Errorf("step duplicado: %s", s.Name)
		}
		index[s.Name] = s
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if _, ok := index[dep]; !ok {
				return nil, fmt.Errorf("step %s depende de step desconhecido: %s", s.Name, dep)
			}
		}
	}
	if cycle := findCycle(steps, index); cycle != "" {
		return nil, fmt.Errorf("dependência circular envolvendo o step %s", cycle)
	}

	p := &Pipeline{
		client:   client,
		steps:    append([]Step(nil), steps...),
		renderer: variables.NewResolver(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ParseSteps interpreta uma lista de steps em YAML ou JSON.
func ParseSteps(data []byte) ([]Step, error) {
	var doc struct {
		Steps []Step `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pipeline malformado: %w", err)
	}
	return doc.Steps, nil
}

// Execute executa todos os steps e devolve os resultados por nome.
//
// Steps sem dependências começam imediatamente; os demais começam quando
// todas as dependências terminam, com sucesso ou não. Steps opcionais que
// falham ficam fora do resultado.
func (p *Pipeline) Execute(ctx context.Context, apiKey string, input interface{}) (map[string]interface{}, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(map[string]interface{}, len(p.steps))
	failures := make(map[string]error)
	completed := make(map[string]bool, len(p.steps))
	started := make(map[string]bool, len(p.steps))

	// Buffer do tamanho do pipeline: goroutines nunca bloqueiam no envio
	resultChan := make(chan StepResult, len(p.steps))

	launch := func(step Step) {
		started[step.Name] = true
		scope := p.scope(input, results, step.DependsOn)
		go func() {
			data, err := p.run(ctx, apiKey, step, scope)
			resultChan <- StepResult{Name: step.Name, Data: data, Error: err}
		}()
	}

	for _, step := range p.steps {
		if len(step.DependsOn) == 0 {
			launch(step)
		}
	}

	for len(completed) < len(p.steps) {
		select {
		case result := <-resultChan:
			completed[result.Name] = true
			step := p.step(result.Name)

			if result.Error != nil {
				failures[result.Name] = result.Error
				p.client.logger.Debug().Err(result.Error).Str("step", result.Name).Msg("step falhou")
				if step.Required {
					return nil, fmt.Errorf("%w: '%s': %w", ErrRequiredStep, result.Name, result.Error)
				}
			} else {
				results[result.Name] = result.Data
				p.client.logger.Debug().Str("step", result.Name).Msg("step concluído")
			}

			// Inicia os dependentes que ficaram prontos
			for _, next := range p.steps {
				if started[next.Name] || !allDone(next.DependsOn, completed) {
					continue
				}
				launch(next)
			}

		case <-ctx.Done():
			return nil, fmt.Errorf("contexto cancelado durante execução do pipeline: %w", ctx.Err())
		}
	}

	p.client.logger.Debug().
		Int("steps", len(p.steps)).
		Int("failures", len(failures)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("pipeline executado")

	return results, nil
}

func (p *Pipeline) run(ctx context.Context, apiKey string, step Step, scope variables.OrderedTree) (interface{}, error) {
	var headers map[string]string
	if len(step.Headers) > 0 {
		headers = p.renderer.ReplaceMap(step.Headers, scope)
	}

	var body interface{}
	if step.Body != nil {
		body = p.render(step.Body, scope)
	}

	return p.client.Call(ctx, apiKey, Request{
		Service:   step.Service,
		Operation: "pipeline_" + step.Name,
		Method:    step.Method,
		Path:      p.renderer.Replace(step.Path, scope),
		Headers:   headers,
		Body:      body,
	})
}

// scope monta a árvore usada para resolver os templates de um step.
func (p *Pipeline) scope(input interface{}, results map[string]interface{}, deps []string) variables.OrderedTree {
	tree := variables.OrderedTree{{Key: "input", Value: input}}
	for _, dep := range deps {
		if data, ok := results[dep]; ok {
			tree = append(tree, variables.Entry{Key: dep, Value: data})
		}
	}
	return tree
}

// render resolve recursivamente as strings de um corpo.
func (p *Pipeline) render(v interface{}, scope variables.OrderedTree) interface{} {
	switch t := v.(type) {
	case string:
		if tokens := variables.Placeholders(t); len(tokens) == 1 && tokens[0] == t {
			if raw, ok := p.renderer.Lookup(t, scope); ok {
				return raw
			}
			return t
		}
		return p.renderer.Replace(t, scope)

	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = p.render(val, scope)
		}
		return out

	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = p.render(val, scope)
		}
		return out
	}
	return v
}

func (p *Pipeline) step(name string) Step {
	for _, s := range p.steps {
		if s.Name == name {
			return s
		}
	}
	return Step{}
}

func allDone(deps []string, completed map[string]bool) bool {
	for _, dep := range deps {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// findCycle devolve o nome de um step que participa de um ciclo, ou "".
func findCycle(steps []Step, index map[string]Step) string {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(steps))

	var visit func(name string) string
	visit = func(name string) string {
		switch state[name] {
		case visiting:
			return name
		case done:
			return ""
		}
		state[name] = visiting
		for _, dep := range index[name].DependsOn {
			if c := visit(dep); c != "" {
				return c
			}
		}
		state[name] = done
		return ""
	}

	for _, s := range steps {
		if c := visit(s.Name); c != "" {
			return c
		}
	}
	return ""
}
