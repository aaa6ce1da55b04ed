package variables

import (
	"sort"
	"strconv"
)

// Tree é a árvore de objetos usada como fonte dos valores.
// Um valor é um terminal (string, número, bool, nil...), uma lista ou outra árvore.
type Tree map[string]any

// Entry é um par chave/valor de uma OrderedTree.
type Entry struct {
	Key   string
	Value any
}

// OrderedTree é uma árvore que preserva a ordem de inserção das chaves.
// Em caso de chaves duplicadas vale a primeira ocorrência.
type OrderedTree []Entry

// Get retorna o valor da primeira entrada com a chave informada.
func (o OrderedTree) Get(key string) (any, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Map converte a árvore (recursivamente) para map[string]any.
func (o OrderedTree) Map() map[string]any {
	out := make(map[string]any, len(o))
	for i := len(o) - 1; i >= 0; i-- {
		out[o[i].Key] = plain(o[i].Value)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case OrderedTree:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

// Kind classifica um nó da árvore.
type Kind int

const (
	// Terminal é qualquer valor que não é uma árvore.
	Terminal Kind = iota
	// Branch é uma árvore aninhada ou uma lista.
	Branch
)

func (k Kind) String() string {
	if k == Branch {
		return "branch"
	}
	return "terminal"
}

// Classify informa se o valor é um ramo (árvore aninhada ou lista) ou um terminal.
// Listas são percorridas elemento a elemento e cada índice ("0", "1", ...)
// também vale como chave.
func Classify(v any) Kind {
	switch v.(type) {
	case Tree, map[string]any, map[string]string, OrderedTree, []any, []map[string]any:
		return Branch
	}
	return Terminal
}

// node é a visão uniforme de um ramo, independente da representação.
type node interface {
	get(key string) (any, bool)
	each(fn func(key string, value any) bool)
}

type mapNode map[string]any

func (m mapNode) get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapNode) each(fn func(string, any) bool) {
	for _, k := range sortedKeys(m) {
		if !fn(k, m[k]) {
			return
		}
	}
}

type stringMapNode map[string]string

func (m stringMapNode) get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m stringMapNode) each(fn func(string, any) bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, m[k]) {
			return
		}
	}
}

type orderedNode OrderedTree

func (o orderedNode) get(key string) (any, bool) {
	return OrderedTree(o).Get(key)
}

func (o orderedNode) each(fn func(string, any) bool) {
	for _, e := range o {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

type sliceNode []any

func (s sliceNode) get(key string) (any, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(s) || strconv.Itoa(i) != key {
		return nil, false
	}
	return s[i], true
}

func (s sliceNode) each(fn func(string, any) bool) {
	for i, v := range s {
		if !fn(strconv.Itoa(i), v) {
			return
		}
	}
}

// asNode devolve o ramo correspondente ao valor, ou false para terminais.
func asNode(v any) (node, bool) {
	switch t := v.(type) {
	case Tree:
		return mapNode(t), true
	case map[string]any:
		return mapNode(t), true
	case map[string]string:
		return stringMapNode(t), true
	case OrderedTree:
		return orderedNode(t), true
	case []any:
		return sliceNode(t), true
	case []map[string]any:
		items := make(sliceNode, len(t))
		for i, m := range t {
			items[i] = m
		}
		return items, true
	}
	return nil, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
