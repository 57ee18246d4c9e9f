package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/vxpredict/predict-tui/internal/api"
)

// memoryTokens is an in-memory TokenSource for tests.
type memoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memoryTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func TestCreateSession(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-1"})
	}))
	defer server.Close()

	tokens := &memoryTokens{token: "vx-test-key"}
	client := api.NewClient(server.URL, api.WithTokenSource(tokens))

	id, err := client.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if id != "sess-1" {
		t.Errorf("expected session id sess-1, got %q", id)
	}
	if gotAuth != "Bearer vx-test-key" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/sess-1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["text"] != "forecast flu vaccine demand" {
			t.Errorf("unexpected text: %q", req["text"])
		}
		if req["provider_hint"] != "openai" {
			t.Errorf("unexpected provider hint: %q", req["provider_hint"])
		}
		json.NewEncoder(w).Encode(map[string]string{"stream_id": "stream-7"})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))

	streamID, err := client.SendMessage(context.Background(), "sess-1", "forecast flu vaccine demand", "openai")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if streamID != "stream-7" {
		t.Errorf("expected stream-7, got %q", streamID)
	}
}

func TestGetMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "m1", "role": "user", "content": "hi"},
			{"id": "m2", "role": "assistant", "content": "hello", "tokens_used": 12},
		})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))

	msgs, err := client.GetMessages(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != api.RoleUser || msgs[1].Role != api.RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].TokensUsed != 12 {
		t.Errorf("expected 12 tokens used, got %d", msgs[1].TokensUsed)
	}
}

func TestGetUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/sess-1/usage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"session_id":           "sess-1",
			"total_input_tokens":   100,
			"total_output_tokens":  250,
			"total_tokens":         350,
			"estimated_total_cost": 0.0042,
			"records_count":        3,
		})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))

	usage, err := client.GetUsage(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetUsage failed: %v", err)
	}
	if usage.TotalTokens != 350 {
		t.Errorf("expected 350 total tokens, got %d", usage.TotalTokens)
	}
	if usage.EstimatedTotalCost != 0.0042 {
		t.Errorf("expected cost 0.0042, got %f", usage.EstimatedTotalCost)
	}
}

func TestUnauthorizedClearsCredential(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "invalid API key"})
	}))
	defer server.Close()

	tokens := &memoryTokens{token: "stale-key"}
	var handlerFired bool
	client := api.NewClient(server.URL,
		api.WithTokenSource(tokens),
		api.WithUnauthorizedHandler(func() { handlerFired = true }),
	)

	_, err := client.CreateSession(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !handlerFired {
		t.Error("unauthorized handler did not fire")
	}
	if tokens.Token() != "" {
		t.Error("credential was not cleared after 401")
	}

	// Later requests go out without an Authorization header.
	_, err = client.CreateSession(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	if requests[0] != "Bearer stale-key" {
		t.Errorf("first request auth = %q", requests[0])
	}
	if requests[1] != "" {
		t.Errorf("second request still carried auth header: %q", requests[1])
	}
}

func TestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend exploded"))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))

	_, err := client.CreateSession(context.Background())
	var se *api.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", se.StatusCode)
	}
}

func TestValidateKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer good-key" {
			json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-1"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	// Validation probes must not disturb the stored credential.
	tokens := &memoryTokens{token: "current-key"}
	var handlerFired bool
	client := api.NewClient(server.URL,
		api.WithTokenSource(tokens),
		api.WithUnauthorizedHandler(func() { handlerFired = true }),
	)

	if err := client.ValidateKey(context.Background(), "good-key"); err != nil {
		t.Errorf("expected good key to validate, got %v", err)
	}

	err := client.ValidateKey(context.Background(), "bad-key")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if handlerFired {
		t.Error("unauthorized handler fired during key validation")
	}
	if tokens.Token() != "current-key" {
		t.Error("stored credential was cleared by key validation")
	}
}
