package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vxpredict/predict-tui/internal/api"
)

// streamServer serves a fixed sequence of raw writes, flushing after each so
// the client sees the exact chunk boundaries.
func streamServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprint(w, chunk)
			flusher.Flush()
		}
	}))
}

func collectEvents(t *testing.T, events <-chan api.StreamEvent) []api.StreamEvent {
	t.Helper()
	var got []api.StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for stream close, got %d events", len(got))
		}
	}
}

func TestStreamTokenOrder(t *testing.T) {
	server := streamServer(t,
		"data: {\"type\":\"token\",\"content\":\"Flu \"}\n",
		"data: {\"type\":\"token\",\"content\":\"demand \"}\n",
		"data: {\"type\":\"token\",\"content\":\"is rising\"}\n",
		"data: {\"type\":\"done\",\"provider\":\"openai\",\"iterations\":1}\n",
	)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(context.Background(), "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(got), got)
	}

	var text string
	for _, ev := range got[:3] {
		if ev.Type != api.EventToken {
			t.Errorf("expected token event, got %s", ev.Type)
		}
		text += ev.Content
	}
	if text != "Flu demand is rising" {
		t.Errorf("concatenated tokens = %q", text)
	}
	last := got[3]
	if last.Type != api.EventDone || last.Provider != "openai" || last.Iterations != 1 {
		t.Errorf("unexpected terminal event: %+v", last)
	}
}

func TestStreamFrameSplitAcrossChunks(t *testing.T) {
	server := streamServer(t,
		"data: {\"type\":\"token\",\"con",
		"tent\":\"hello\"}\ndata: {\"typ",
		"e\":\"done\"}\n",
	)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(context.Background(), "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(got), got)
	}
	if got[0].Type != api.EventToken || got[0].Content != "hello" {
		t.Errorf("unexpected first event: %+v", got[0])
	}
	if got[1].Type != api.EventDone {
		t.Errorf("unexpected second event: %+v", got[1])
	}
}

func TestStreamMalformedFrameDropped(t *testing.T) {
	server := streamServer(t,
		"data: {\"type\":\"token\",\"content\":\"a\"}\n",
		"data: {not json at all\n",
		"data: {\"type\":\"token\",\"content\":\"b\"}\n",
		"data: {\"type\":\"done\"}\n",
	)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(context.Background(), "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(got), got)
	}
	if got[0].Content != "a" || got[1].Content != "b" {
		t.Errorf("frames after the malformed one were lost: %+v", got)
	}
}

func TestStreamIgnoresBlankAndCommentLines(t *testing.T) {
	server := streamServer(t,
		"\n\n: keepalive\n",
		"data: {\"type\":\"token\",\"content\":\"x\"}\n",
		"\n: another comment\n",
		"data: {\"type\":\"done\"}\n",
	)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(context.Background(), "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(got), got)
	}
}

func TestStreamFlushesTrailingFrameAtEOF(t *testing.T) {
	// The final frame has no trailing newline; it must still be delivered,
	// followed by a synthesized done.
	server := streamServer(t,
		"data: {\"type\":\"token\",\"content\":\"partial\"}",
	)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(context.Background(), "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(got), got)
	}
	if got[0].Type != api.EventToken || got[0].Content != "partial" {
		t.Errorf("trailing frame was not flushed: %+v", got[0])
	}
	if got[1].Type != api.EventDone {
		t.Errorf("expected synthesized done, got %+v", got[1])
	}
}

func TestStreamSynthesizesDoneOnEOF(t *testing.T) {
	server := streamServer(t,
		"data: {\"type\":\"token\",\"content\":\"cut off\"}\n",
	)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(context.Background(), "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(got), got)
	}
	if got[1].Type != api.EventDone {
		t.Errorf("expected synthesized done after EOF, got %+v", got[1])
	}
}

func TestStreamErrorEventIsTerminal(t *testing.T) {
	server := streamServer(t,
		"data: {\"type\":\"token\",\"content\":\"a\"}\n",
		"data: {\"type\":\"error\",\"code\":\"provider_failed\",\"message\":\"upstream timeout\"}\n",
		"data: {\"type\":\"token\",\"content\":\"never seen\"}\n",
	)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(context.Background(), "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 2 {
		t.Fatalf("expected stream to end at the error event, got %d: %+v", len(got), got)
	}
	last := got[1]
	if last.Type != api.EventError || last.Code != "provider_failed" {
		t.Errorf("unexpected terminal event: %+v", last)
	}
	if !last.Terminal() {
		t.Error("error event not reported as terminal")
	}
}

func TestStreamToolAndArtifactEvents(t *testing.T) {
	server := streamServer(t,
		"data: {\"type\":\"tool_start\",\"tool_name\":\"forecast_demand\",\"input\":{\"region\":\"EU\"}}\n",
		"data: {\"type\":\"tool_result\",\"tool_name\":\"forecast_demand\",\"result\":\"ok\"}\n",
		"data: {\"type\":\"artifact_created\",\"artifact_id\":\"art-1\",\"kind\":\"chart_json\",\"title\":\"Demand curve\",\"content\":\"{}\"}\n",
		"data: {\"type\":\"done\"}\n",
	)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(context.Background(), "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(got), got)
	}
	if got[0].Type != api.EventToolStart || got[0].ToolName != "forecast_demand" {
		t.Errorf("unexpected tool_start: %+v", got[0])
	}
	if got[1].Type != api.EventToolResult || got[1].Result != "ok" {
		t.Errorf("unexpected tool_result: %+v", got[1])
	}
	if got[2].Type != api.EventArtifactCreated || got[2].Kind != "chart_json" {
		t.Errorf("unexpected artifact_created: %+v", got[2])
	}
}

func TestStreamUnauthorizedOnOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &memoryTokens{token: "stale"}
	client := api.NewClient(server.URL, api.WithTokenSource(tokens))

	_, err := client.SubscribeToStream(context.Background(), "stream-1")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if tokens.Token() != "" {
		t.Error("credential survived a 401 on stream open")
	}
}

func TestStreamContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"token\",\"content\":\"a\"}\n")
		flusher.Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	client := api.NewClient(server.URL, api.WithTokenSource(&memoryTokens{token: "k"}))
	events, err := client.SubscribeToStream(ctx, "stream-1")
	if err != nil {
		t.Fatalf("SubscribeToStream failed: %v", err)
	}

	first := <-events
	if first.Type != api.EventToken {
		t.Fatalf("expected a token event, got %+v", first)
	}

	cancel()

	// The channel must close; no terminal event is guaranteed on cancel.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("channel never closed after context cancel")
		}
	}
}
