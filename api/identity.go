package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Identity é a resposta do login no serviço de identidade.
// Campos não mapeados ficam disponíveis em Raw.
type Identity struct {
	UserUUID string                 `json:"user_uuid"`
	Token    string                 `json:"token"`
	Raw      map[string]interface{} `json:"-"`
}

// Alias é um apelido de comunicação de uma identidade (ex: {"sms": "+1..."}).
type Alias map[string]interface{}

type identityRecord struct {
	Aliases []Alias `json:"aliases"`
}

// GetIdentity autentica email e senha e retorna os dados da identidade.
func (c *Client) GetIdentity(ctx context.Context, apiKey, email, password string) (*Identity, error) {
	var raw map[string]interface{}
	err := c.do(ctx, call{
		service:   "IDENTITY",
		operation: "get_identity",
		method:    http.MethodPost,
		path:      "/users/login",
		apiKey:    apiKey,
		body: map[string]string{
			"email":    email,
			"password": password,
		},
	}, &raw)
	if err != nil {
		return nil, err
	}

	identity := &Identity{Raw: raw}
	identity.UserUUID, _ = raw["user_uuid"].(string)
	identity.Token, _ = raw["token"].(string)
	return identity, nil
}

// GetSMSNumber retorna o número sms do primeiro alias que o possuir.
// Uma identidade sem alias sms resulta em ErrNoSMSNumber.
func (c *Client) GetSMSNumber(ctx context.Context, apiKey, userUUID string) (string, error) {
	var rec identityRecord
	err := c.do(ctx, call{
		service:   "IDENTITY",
		operation: "get_sms_number",
		method:    http.MethodGet,
		path:      "/identities/" + url.PathEscape(userUUID),
		apiKey:    apiKey,
	}, &rec)
	if err != nil {
		return "", err
	}

	for _, alias := range rec.Aliases {
		if sms, ok := alias["sms"]; ok {
			if s, ok := sms.(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", ErrNoSMSNumber
}

// IsNotFound informa se o erro é uma resposta 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode extrai o status HTTP de um *StatusError (0 se não houver).
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
