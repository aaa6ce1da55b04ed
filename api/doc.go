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
// Package api fornece helpers para os microserviços REST da plataforma CPaaS:
// identidade, mensagens, objetos de dados e execução de lambdas.
//
// Visão Geral:
// Cada método monta uma requisição HTTP a partir dos parâmetros, resolve a URI
// base do serviço pelo endpoint.Resolver (de acordo com o ambiente do
// cliente), envia os headers de credencial e devolve a resposta JSON
// decodificada. Respostas fora da faixa 2xx viram *StatusError, com o status
// e o corpo retornados. Não há retry nem cache: erros são propagados ao
// chamador.
//
// Funcionalidades Principais:
//   - Identidade: GetIdentity (login) e GetSMSNumber.
//   - Mensagens: GetConversationUUID, SendSMSMessage e SendSMS.
//   - Objetos: GetDataObjectByType e GetDataObject (com JWT da identidade).
//   - Lambda: InvokeLambda.
//
// Exemplo de Uso:
//
//	resolver := endpoint.NewResolver(endpoint.DefaultTable())
//	client := api.NewClient(resolver, api.WithEnvironment("dev"))
//
//	identity, err := client.GetIdentity(ctx, apiKey, "email@email.com", "pwd")
//	if err != nil {
//		if api.StatusCode(err) == http.StatusUnauthorized {
//			// credenciais inválidas
//		}
//		return err
//	}
//
//	objs, err := client.GetDataObjectByType(ctx, apiKey, identity.UserUUID,
//		identity.Token, "all_notify_data_object", false)
//
// Headers:
// Todas as chamadas enviam `application-key`, `Content-Type: application/json`
// e um `X-Request-Id` gerado. As chamadas de objetos enviam também
// `Authorization: Bearer <jwt>` e `X-User-uuid`.
package api
