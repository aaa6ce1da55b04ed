package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/raywall/cpaas-toolkit/endpoint"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "yourkeyhere"

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	table := endpoint.Table{}
	for _, svc := range []string{"identity", "messaging", "objects", "lambda"} {
		uri := server.URL + "/" + svc
		table[svc] = map[endpoint.Environment]string{
			endpoint.Dev: uri, endpoint.Test: uri, endpoint.Stage: uri, endpoint.Prod: uri,
		}
	}
	resolver := endpoint.NewResolver(table, endpoint.WithLogger(zerolog.Nop()))

	opts = append([]ClientOption{WithEnvironment("dev"), WithLogger(zerolog.Nop())}, opts...)
	return NewClient(resolver, opts...)
}

func decodeBody(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	raw, _ := io.ReadAll(r.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestGetIdentity_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/identity/users/login", r.URL.Path)
		assert.Equal(t, testKey, r.Header.Get(HeaderApplicationKey))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))

		body := decodeBody(t, r)
		assert.Equal(t, "email@email.com", body["email"])
		assert.Equal(t, "pwd", body["password"])

		_, _ = w.Write([]byte(`{"user_uuid": "u-1", "token": "jwt-1", "name": "James"}`))
	})

	identity, err := client.GetIdentity(context.Background(), testKey, "email@email.com", "pwd")
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.UserUUID)
	assert.Equal(t, "jwt-1", identity.Token)
	assert.Equal(t, "James", identity.Raw["name"])
}

func TestGetIdentity_BadCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "unauthorized"}`))
	})

	_, err := client.GetIdentity(context.Background(), testKey, "email@email.com", "bad")
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "IDENTITY", se.Service)
	assert.Contains(t, string(se.Body), "unauthorized")
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestGetSMSNumber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/identity/identities/0904f8d5":
			_, _ = w.Write([]byte(`{"aliases": [{"email": "a@b.c"}, {"sms": "+19414441241"}, {"sms": "+10000000000"}]}`))
		case "/identity/identities/no-sms":
			_, _ = w.Write([]byte(`{"aliases": [{"email": "a@b.c"}]}`))
		case "/identity/identities/empty":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	sms, err := client.GetSMSNumber(ctx, testKey, "0904f8d5")
	require.NoError(t, err)
	assert.Equal(t, "+19414441241", sms)

	_, err = client.GetSMSNumber(ctx, testKey, "no-sms")
	assert.ErrorIs(t, err, ErrNoSMSNumber)

	_, err = client.GetSMSNumber(ctx, testKey, "empty")
	assert.ErrorIs(t, err, ErrNoSMSNumber)

	_, err = client.GetSMSNumber(ctx, testKey, "bad")
	assert.True(t, IsNotFound(err))
}

func TestSendSMS(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case "/messaging/users/u-1/conversations":
			body := decodeBody(t, r)
			assert.Equal(t, []interface{}{"+19418076677"}, body["phone_numbers"])
			_, _ = w.Write([]byte(`{"context": {"uuid": "conv-1"}}`))

		case "/messaging/users/u-1/messages":
			body := decodeBody(t, r)
			assert.Equal(t, "conv-1", body["to"])
			assert.Equal(t, "+19414441241", body["from"])
			assert.Equal(t, "sms", body["channel"])
			_, _ = w.Write([]byte(`{"uuid": "m-1", "to": "conv-1", "from": "+19414441241", "channel": "sms", "content": [{"type": "text", "body": "msg"}]}`))

		default:
			t.Errorf("rota inesperada: %s", r.URL.Path)
		}
	})

	msg, err := client.SendSMS(context.Background(), testKey, "u-1", "msg", "+19414441241", "+19418076677")
	require.NoError(t, err)
	assert.Equal(t, "msg", msg.Content[0].Body)
	assert.Equal(t, "m-1", msg.UUID)
	assert.Equal(t, []string{"/messaging/users/u-1/conversations", "/messaging/users/u-1/messages"}, calls)
}

func TestSendSMS_ConversationFails(t *testing.T) {
	messagesCalled := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/messaging/users/u-1/messages" {
			messagesCalled = true
		}
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.SendSMS(context.Background(), testKey, "u-1", "msg", "+1", "+2")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.False(t, messagesCalled)
}

func TestGetConversationUUID_MissingContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.GetConversationUUID(context.Background(), testKey, "u-1", "+1")
	assert.ErrorContains(t, err, "context.uuid")
}

func TestGetDataObjectByType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/objects/objects", r.URL.Path)
		assert.Equal(t, "all_notify_data_object", r.URL.Query().Get("type"))
		assert.Equal(t, "false", r.URL.Query().Get("load_content"))
		assert.Equal(t, "u-1", r.Header.Get(HeaderUserUUID))
		assert.Equal(t, "Bearer jwt-1", r.Header.Get(HeaderAuthorization))

		_, _ = w.Write([]byte(`{"content": [{"uuid": "o-1"}]}`))
	})

	out, err := client.GetDataObjectByType(context.Background(), testKey, "u-1", "jwt-1", "all_notify_data_object", false)
	require.NoError(t, err)
	assert.NotNil(t, out["content"])
}

func TestGetDataObjectByType_DefaultType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultObjectType, r.URL.Query().Get("type"))
		assert.Equal(t, "true", r.URL.Query().Get("load_content"))
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.GetDataObjectByType(context.Background(), testKey, "u-1", "jwt-1", "", true)
	assert.NoError(t, err)
}

func TestGetDataObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/objects/objects/o-1", r.URL.Path)
		assert.Equal(t, "Bearer jwt-1", r.Header.Get(HeaderAuthorization))
		assert.Empty(t, r.Header.Get(HeaderUserUUID))
		_, _ = w.Write([]byte(`{"uuid": "o-1", "content": {"a": 1}}`))
	})

	out, err := client.GetDataObject(context.Background(), testKey, "", "jwt-1", "o-1")
	require.NoError(t, err)
	assert.Equal(t, "o-1", out["uuid"])
}

func TestInvokeLambda(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lambda/actions/abc/invoke" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		params := decodeBody(t, r)
		resp := map[string]interface{}{"message": "abc successfully finished", "parameters": params}
		_ = json.NewEncoder(w).Encode(resp)
	})
	ctx := context.Background()

	params := map[string]interface{}{"a": float64(1), "env": "dev"}
	out, err := client.InvokeLambda(ctx, testKey, "abc", params)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"message": "abc successfully finished", "parameters": params}, out)

	_, err = client.InvokeLambda(ctx, testKey, "this one does not exists", nil)
	assert.True(t, IsNotFound(err))
}

func TestClient_NoEndpoint(t *testing.T) {
	resolver := endpoint.NewResolver(endpoint.Table{}, endpoint.WithLogger(zerolog.Nop()))
	client := NewClient(resolver, WithLogger(zerolog.Nop()))

	_, err := client.InvokeLambda(context.Background(), testKey, "abc", nil)
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestClient_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}, WithTimeout(10*time.Millisecond))

	_, err := client.GetDataObject(context.Background(), testKey, "u", "jwt", "o-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`invalid_json`))
	})

	_, err := client.GetDataObject(context.Background(), testKey, "u", "jwt", "o-1")
	assert.ErrorContains(t, err, "decode json")
}

type recordingProvider struct {
	mu   sync.Mutex
	tags [][]string
}

func (p *recordingProvider) Count(name string, value float64, tags []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tags = append(p.tags, tags)
	return nil
}
func (p *recordingProvider) Gauge(string, float64, []string) error     { return nil }
func (p *recordingProvider) Histogram(string, float64, []string) error { return nil }

func TestClient_Metrics(t *testing.T) {
	provider := &recordingProvider{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithMetrics(provider))

	_, _ = client.InvokeLambda(context.Background(), testKey, "abc", nil)

	require.Len(t, provider.tags, 1)
	assert.Equal(t, []string{"service:LAMBDA", "operation:invoke_lambda", "status:500"}, provider.tags[0])
}
