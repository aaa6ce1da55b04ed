package variables

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrNotAnObject indica que o documento não tem um objeto na raiz.
var ErrNotAnObject = errors.New("variables: documento não é um objeto")

// ParseTree converte um documento JSON ou YAML em uma OrderedTree,
// preservando a ordem das chaves de todos os objetos.
// Um documento vazio resulta em uma árvore vazia.
func ParseTree(data []byte) (OrderedTree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("variables: documento malformado: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return OrderedTree{}, nil
	}

	v, err := convertNode(&doc)
	if err != nil {
		return nil, err
	}
	tree, ok := v.(OrderedTree)
	if !ok {
		return nil, ErrNotAnObject
	}
	return tree, nil
}

func convertNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convertNode(n.Content[0])

	case yaml.MappingNode:
		tree := make(OrderedTree, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := convertNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			tree = append(tree, Entry{Key: n.Content[i].Value, Value: val})
		}
		return tree, nil

	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := convertNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return items, nil

	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return convertNode(n.Alias)

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("variables: valor inválido na linha %d: %w", n.Line, err)
		}
		return v, nil
	}

	return nil, fmt.Errorf("variables: tipo de nó não suportado na linha %d", n.Line)
}
