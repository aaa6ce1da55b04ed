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
// Package endpoint resolve a URI base de um microserviço CPaaS a partir do
// nome do serviço e do ambiente (dev, test, stage, prod).
//
// Visão Geral:
// A tabela de endpoints é um mapa SERVIÇO -> ambiente -> URI. Ela é copiada
// na construção do Resolver e nunca mais alterada. O nome do serviço é
// normalizado para maiúsculas; um ambiente inválido é corrigido para prod e o
// diagnóstico é registrado no log. Um serviço desconhecido não é erro: o
// Resolver apenas informa que não existe endpoint.
//
// A tabela pode vir do padrão embutido (DefaultTable) ou ser carregada pelo
// Loader a partir de um arquivo local, do S3 ou do DynamoDB, em YAML ou JSON:
//
//	IDENTITY:
//	  dev: https://cpaas.star2star.net/identity
//	  test: https://cpaas.star2star.net/identity
//	  stage: https://cpaas.star2star.net/identity
//	  prod: https://cpaas.star2star.com/api/identity
//
// Exemplo de Uso:
//
//	resolver := endpoint.NewResolver(endpoint.DefaultTable())
//
//	uri, ok := resolver.Resolve("dev", "identity")
//	if !ok {
//		// serviço desconhecido
//	}
//	fmt.Println(uri) // https://cpaas.star2star.net/identity
package endpoint
