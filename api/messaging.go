package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// MessageContent é um item do conteúdo de uma mensagem.
type MessageContent struct {
	Type string `json:"type"`
	Body string `json:"body"`
}

// Message representa uma mensagem enviada pelo serviço de mensagens.
type Message struct {
	UUID    string           `json:"uuid,omitempty"`
	To      string           `json:"to"`
	From    string           `json:"from"`
	Channel string           `json:"channel"`
	Content []MessageContent `json:"content"`
}

type conversationResponse struct {
	Context struct {
		UUID string `json:"uuid"`
	} `json:"context"`
}

// GetConversationUUID retorna a conversa do usuário com o telefone de destino.
func (c *Client) GetConversationUUID(ctx context.Context, apiKey, userUUID, toPhoneNumber string) (string, error) {
	var resp conversationResponse
	err := c.do(ctx, call{
		service:   "MESSAGING",
		operation: "get_conversation",
		method:    http.MethodPost,
		path:      "/users/" + url.PathEscape(userUUID) + "/conversations",
		apiKey:    apiKey,
		body: map[string][]string{
			"phone_numbers": {toPhoneNumber},
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Context.UUID == "" {
		return "", fmt.Errorf("resposta de conversa sem context.uuid")
	}
	return resp.Context.UUID, nil
}

// SendSMSMessage envia msg na conversa informada.
func (c *Client) SendSMSMessage(ctx context.Context, apiKey, conversationUUID, userUUID, fromPhoneNumber, msg string) (*Message, error) {
	body := Message{
		To:      conversationUUID,
		From:    fromPhoneNumber,
		Channel: "sms",
		Content: []MessageContent{{Type: "text", Body: msg}},
	}

	var sent Message
	err := c.do(ctx, call{
		service:   "MESSAGING",
		operation: "send_message",
		method:    http.MethodPost,
		path:      "/users/" + url.PathEscape(userUUID) + "/messages",
		apiKey:    apiKey,
		body:      body,
	}, &sent)
	if err != nil {
		return nil, fmt.Errorf("sendSMSMessage: %w", err)
	}
	return &sent, nil
}

// SendSMS resolve a conversa com toPhoneNumber e envia a mensagem.
func (c *Client) SendSMS(ctx context.Context, apiKey, userUUID, msg, fromPhoneNumber, toPhoneNumber string) (*Message, error) {
	conversationUUID, err := c.GetConversationUUID(ctx, apiKey, userUUID, toPhoneNumber)
	if err != nil {
		return nil, err
	}
	return c.SendSMSMessage(ctx, apiKey, conversationUUID, userUUID, fromPhoneNumber, msg)
}
