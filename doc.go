// Package cpaas_toolkit fornece utilitários para integrar serviços Go aos
// microserviços REST da plataforma CPaaS.
//
// Visão Geral:
// Este módulo é uma caixa de ferramentas com duas peças independentes e um
// conjunto de superfícies que as expõem:
// 1. Variáveis (variables): resolução de placeholders %nome% contra uma árvore de objetos.
// 2. Endpoints (endpoint): resolução de (ambiente, serviço) para a URI base do serviço.
// 3. Chamadas (api): helpers HTTP para identidade, mensagens, objetos e lambdas,
// além de um pipeline concorrente de chamadas com templates.
//
// As duas primeiras peças não compartilham estado e são seguras para uso
// concorrente.
//
// Sub-Pacotes Principais:
//
// 1. variables:
//   - Lookup e Replace de placeholders, com registro de valores estáticos (%datetime%).
//   - ParseTree para JSON/YAML preservando a ordem das chaves.
//
// 2. endpoint:
//   - Tabela imutável de endpoints por ambiente (dev, test, stage, prod).
//   - Loader para arquivo local, s3:// e dynamodb://.
//
// 3. api:
//   - Client com timeout, X-Request-Id, métricas e erros tipados (StatusError).
//   - Pipeline de steps com dependências.
//
// 4. pkg/config, pkg/logger, pkg/observability, pkg/transport:
//   - Settings via variáveis de ambiente com referências ${env|ssm|secret}.
//   - zerolog, Datadog statsd, servidor HTTP (gorilla/mux) e handler Lambda.
//
// Exemplo de Início Rápido:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/raywall/cpaas-toolkit/api"
//		"github.com/raywall/cpaas-toolkit/endpoint"
//		"github.com/raywall/cpaas-toolkit/variables"
//	)
//
//	func main() {
//		// 1. Resolver de endpoints sobre a tabela embutida
//		resolver := endpoint.NewResolver(endpoint.DefaultTable())
//		uri, _ := resolver.Resolve("dev", "identity")
//		fmt.Println(uri) // https://cpaas.star2star.net/identity
//
//		// 2. Template com placeholders
//		path := variables.Replace("/users/%user_uuid%/messages", variables.Tree{"user_uuid": "u-1"})
//		fmt.Println(path) // /users/u-1/messages
//
//		// 3. Chamada a um serviço
//		client := api.NewClient(resolver, api.WithEnvironment("dev"))
//		out, err := client.InvokeLambda(context.Background(), "my-key", "abc", map[string]any{"a": 1})
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(out)
//	}
package cpaas_toolkit
