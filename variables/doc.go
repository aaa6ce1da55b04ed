// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package variables implementa a resolução de variáveis no formato %nome%
// a partir de uma árvore de objetos (mapas aninhados).
//
// Visão Geral:
// Uma string de template pode conter placeholders como `%user_uuid%` ou
// `%a/b%`. Cada placeholder é procurado primeiro no registro de valores
// estáticos (ex: `%datetime%`) e depois na árvore de objetos. A busca na
// árvore verifica as chaves do nível atual antes de descer nos ramos, em
// profundidade, respeitando a ordem de iteração dos ramos irmãos.
// Placeholders sem valor permanecem intactos na saída.
//
// Funcionalidades Principais:
//   - Lookup: resolve uma única chave e informa explicitamente se encontrou.
//   - Replace: substitui todos os placeholders resolvíveis de uma string.
//   - Placeholders: lista os placeholders distintos de uma string.
//   - ParseTree: converte JSON/YAML em uma árvore que preserva a ordem das chaves.
//
// Exemplo de Uso:
//
//	tree := variables.Tree{
//		"foo": 1,
//		"bar": map[string]any{"foobar": "value"},
//	}
//
//	out := variables.Replace("%foo% - %foobar% - %missing%", tree)
//	fmt.Println(out) // 1 - value - %missing%
//
// Ordem de Iteração:
// Mapas Go não possuem ordem. Para `Tree` e `map[string]any` as chaves são
// visitadas em ordem lexicográfica, o que torna o desempate entre ramos irmãos
// determinístico. Para preservar a ordem do documento use `OrderedTree`
// (retornado por ParseTree).
//
// Concorrência:
// O pacote não possui estado mutável. Um Resolver pode ser compartilhado entre
// goroutines sem sincronização.
package variables
