package api

import (
	"context"
	"net/http"
	"net/url"
)

// InvokeLambda executa a action lambdaName com params como corpo JSON.
// params nulo envia um objeto vazio.
func (c *Client) InvokeLambda(ctx context.Context, apiKey, lambdaName string, params interface{}) (map[string]interface{}, error) {
	if params == nil {
		params = map[string]interface{}{}
	}

	var out map[string]interface{}
	err := c.do(ctx, call{
		service:   "LAMBDA",
		operation: "invoke_lambda",
		method:    http.MethodPost,
		path:      "/actions/" + url.PathEscape(lambdaName) + "/invoke",
		apiKey:    apiKey,
		body:      params,
	}, &out)
	return out, err
}
