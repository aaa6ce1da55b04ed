package endpoint

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Option configura um Resolver.
type Option func(*Resolver)

// WithLogger define o logger usado para os diagnósticos de ambiente.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// Resolver resolve (ambiente, serviço) para uma URI base.
// A tabela é copiada na construção e o Resolver é seguro para uso concorrente.
type Resolver struct {
	table  Table
	logger zerolog.Logger
}

// NewResolver cria um Resolver sobre uma cópia da tabela informada.
func NewResolver(table Table, opts ...Option) *Resolver {
	r := &Resolver{
		table:  table.Clone(),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve retorna a URI base do serviço no ambiente informado.
// O serviço é comparado sem diferenciar maiúsculas. Um ambiente inválido é
// trocado por prod com um aviso no log. Serviço desconhecido retorna false.
func (r *Resolver) Resolve(env, service string) (string, bool) {
	environment, diag := ParseEnvironment(env)
	if diag != nil {
		r.logger.Warn().
			Str("env", diag.Input).
			Str("applied", string(diag.Applied)).
			Msg(diag.String())
	}
	return r.Lookup(environment, service)
}

// Lookup é o Resolve para um ambiente já validado.
func (r *Resolver) Lookup(env Environment, service string) (string, bool) {
	envs, ok := r.table[strings.ToUpper(service)]
	if !ok {
		return "", false
	}
	uri, ok := envs[env]
	if !ok || uri == "" {
		return "", false
	}
	return uri, true
}

// Services retorna os serviços conhecidos.
func (r *Resolver) Services() []string {
	return r.table.Services()
}

// Table devolve uma cópia da tabela em uso.
func (r *Resolver) Table() Table {
	return r.table.Clone()
}
