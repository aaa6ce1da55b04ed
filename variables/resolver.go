package variables

import (
	"regexp"
	"strings"
	"time"
)

// Delimiter delimita os placeholders.
const Delimiter = "%"

// O '|' dentro da classe é literal e faz parte dos caracteres aceitos.
var placeholderPattern = regexp.MustCompile(`%[\w|.\-*/]+%`)

// DefaultTimeLayout é o formato usado para valores time.Time (ex: %datetime%).
const DefaultTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Option configura um Resolver.
type Option func(*Resolver)

// WithRegistry substitui o registro de valores estáticos.
func WithRegistry(reg *Registry) Option {
	return func(r *Resolver) {
		r.registry = reg
	}
}

// WithClock define a fonte de horário usada pelo registro.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTimeLayout define o layout de formatação de valores time.Time.
func WithTimeLayout(layout string) Option {
	return func(r *Resolver) {
		if layout != "" {
			r.timeLayout = layout
		}
	}
}

// WithTruthyMatches ativa o comportamento legado: uma chave encontrada cujo
// valor é "falso" (nil, "", false, 0) conta como não encontrada.
func WithTruthyMatches() Option {
	return func(r *Resolver) {
		r.truthy = true
	}
}

// Resolver resolve placeholders contra uma árvore de objetos.
// É imutável após a construção.
type Resolver struct {
	registry   *Registry
	now        func() time.Time
	timeLayout string
	truthy     bool
}

// NewResolver cria um Resolver com o registro padrão.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		registry:   DefaultRegistry(),
		now:        func() time.Time { return time.Now().UTC() },
		timeLayout: DefaultTimeLayout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strip remove os delimitadores de um token. É idempotente.
func Strip(token string) string {
	return strings.ReplaceAll(token, Delimiter, "")
}

// Lookup resolve um único token. O token pode vir com ou sem delimitadores.
//
// Ordem de busca:
//  1. registro de valores estáticos;
//  2. chaves do nível atual da árvore;
//  3. ramos aninhados, em profundidade e na ordem de iteração.
//
// O segundo retorno é false quando nada foi encontrado.
func (r *Resolver) Lookup(token string, tree any) (any, bool) {
	key := Strip(token)

	if v, ok := r.registry.Lookup(key, r.now()); ok {
		return v, true
	}

	v, ok := search(key, tree)
	if ok && r.truthy && !truthy(v) {
		return nil, false
	}
	return v, ok
}

// search percorre a árvore; terminais não são visitados.
func search(key string, tree any) (any, bool) {
	n, ok := asNode(tree)
	if !ok {
		return nil, false
	}

	if v, ok := n.get(key); ok {
		return v, true
	}

	var (
		found any
		hit   bool
	)
	n.each(func(_ string, child any) bool {
		if Classify(child) != Branch {
			return true
		}
		found, hit = search(key, child)
		return !hit
	})
	return found, hit
}

// Replace devolve uma nova string com os placeholders resolvidos.
//
// Cada literal distinto é resolvido uma única vez e todas as suas ocorrências
// são substituídas. Valores substituídos não são reprocessados. Placeholders
// sem valor permanecem como estão, inclusive os delimitadores.
func (r *Resolver) Replace(input string, tree any) string {
	if !strings.Contains(input, Delimiter) {
		return input
	}

	resolved := make(map[string]string)
	return placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		if s, ok := resolved[match]; ok {
			return s
		}
		out := match
		if v, ok := r.Lookup(match, tree); ok {
			out = r.format(v)
		}
		resolved[match] = out
		return out
	})
}

// ReplaceMap aplica Replace em todos os valores de um mapa de strings.
// O mapa original não é alterado.
func (r *Resolver) ReplaceMap(values map[string]string, tree any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = r.Replace(v, tree)
	}
	return out
}

// Placeholders lista os placeholders distintos na ordem da primeira aparição.
func Placeholders(input string) []string {
	matches := placeholderPattern.FindAllString(input, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

var std = NewResolver()

// Lookup resolve um token usando o Resolver padrão.
func Lookup(token string, tree any) (any, bool) {
	return std.Lookup(token, tree)
}

// Replace resolve os placeholders de input usando o Resolver padrão.
func Replace(input string, tree any) string {
	return std.Replace(input, tree)
}

// ReplaceMap aplica Replace em cada valor usando o Resolver padrão.
func ReplaceMap(values map[string]string, tree any) map[string]string {
	return std.ReplaceMap(values, tree)
}
