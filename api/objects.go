package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultObjectType é o tipo usado quando nenhum é informado.
const DefaultObjectType = "data_object"

// GetDataObjectByType lista os data objects do tipo informado.
func (c *Client) GetDataObjectByType(ctx context.Context, apiKey, userUUID, identityJWT, objectType string, loadContent bool) (map[string]interface{}, error) {
	if objectType == "" {
		objectType = DefaultObjectType
	}
	query := url.Values{}
	query.Set("type", objectType)
	query.Set("load_content", strconv.FormatBool(loadContent))

	var out map[string]interface{}
	err := c.do(ctx, call{
		service:   "OBJECTS",
		operation: "get_objects_by_type",
		method:    http.MethodGet,
		path:      "/objects?" + query.Encode(),
		apiKey:    apiKey,
		headers: map[string]string{
			HeaderUserUUID:      userUUID,
			HeaderAuthorization: "Bearer " + identityJWT,
		},
	}, &out)
	return out, err
}

// GetDataObject retorna um data object pelo UUID.
func (c *Client) GetDataObject(ctx context.Context, apiKey, userUUID, identityJWT, objectUUID string) (map[string]interface{}, error) {
	headers := map[string]string{
		HeaderAuthorization: "Bearer " + identityJWT,
	}
	if userUUID != "" {
		headers[HeaderUserUUID] = userUUID
	}

	var out map[string]interface{}
	err := c.do(ctx, call{
		service:   "OBJECTS",
		operation: "get_object",
		method:    http.MethodGet,
		path:      "/objects/" + url.PathEscape(objectUUID),
		apiKey:    apiKey,
		headers:   headers,
	}, &out)
	return out, err
}
