package api

import (
	"context"
	"net/http"
)

// CreateSession creates a new forecast session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var result CreateSessionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/sessions", struct{}{}, &result); err != nil {
		return "", err
	}
	return result.SessionID, nil
}

// SendMessage posts a user message to a session and returns the id of the
// stream that will carry the assistant response. Callers are responsible for
// not sending empty text; the provider hint is forwarded verbatim.
func (c *Client) SendMessage(ctx context.Context, sessionID, text, providerHint string) (string, error) {
	req := PostMessageRequest{Text: text, ProviderHint: providerHint}
	var result PostMessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/messages", req, &result); err != nil {
		return "", err
	}
	return result.StreamID, nil
}

// GetMessages fetches the ordered message history of a session.
func (c *Client) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var result []Message
	if err := c.doRequest(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/messages", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetUsage fetches the aggregate token and cost counters for a session.
func (c *Client) GetUsage(ctx context.Context, sessionID string) (*Usage, error) {
	var result Usage
	if err := c.doRequest(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/usage", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
