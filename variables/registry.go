package variables

import "time"

// DateTimeKey é o token reservado para o horário atual.
const DateTimeKey = "datetime"

// Producer calcula um valor estático no momento da resolução.
type Producer func(now time.Time) any

// Registry é o registro imutável de valores estáticos.
// Ele é consultado antes da árvore de objetos.
type Registry struct {
	producers map[string]Producer
}

// NewRegistry cria um registro a partir de uma cópia do mapa informado.
func NewRegistry(producers map[string]Producer) *Registry {
	cp := make(map[string]Producer, len(producers))
	for k, p := range producers {
		if p != nil {
			cp[k] = p
		}
	}
	return &Registry{producers: cp}
}

// DefaultRegistry contém apenas o token "datetime".
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Producer{
		DateTimeKey: func(now time.Time) any { return now },
	})
}

// Lookup retorna o valor calculado para a chave, se ela for reservada.
func (r *Registry) Lookup(key string, now time.Time) (any, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.producers[key]
	if !ok {
		return nil, false
	}
	return p(now), true
}

// Has informa se a chave é reservada.
func (r *Registry) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.producers[key]
	return ok
}

// Keys retorna as chaves reservadas.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.producers))
	for k := range r.producers {
		keys = append(keys, k)
	}
	return keys
}
