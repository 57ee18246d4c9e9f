// Package mock is an in-process Vx Predict backend used for demos and
// manual testing of the TUI without a real deployment. It implements the
// session, usage and stream endpoints with canned forecasting responses.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vxpredict/predict-tui/internal/api"
)

type pendingStream struct {
	sessionID string
	text      string
}

// Server is the mock backend.
type Server struct {
	port int

	mu       sync.Mutex
	sessions map[string][]api.Message
	streams  map[string]pendingStream
	usage    map[string]*api.Usage
	nextID   int
}

// NewServer creates a mock server listening on port.
func NewServer(port int) *Server {
	return &Server{
		port:     port,
		sessions: make(map[string][]api.Message),
		streams:  make(map[string]pendingStream),
		usage:    make(map[string]*api.Usage),
	}
}

// Start blocks serving the mock API.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("Mock backend listening on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler returns the route table, also used directly by tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", s.requireAuth(s.handleSessions))
	mux.HandleFunc("/api/sessions/", s.requireAuth(s.handleSession))
	mux.HandleFunc("/api/streams/", s.requireAuth(s.handleStream))
	return mux
}

// requireAuth enforces the bearer header. Any non-empty token is accepted;
// the mock exists to exercise the client, not to gatekeep.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header || strings.TrimSpace(token) == "" {
			http.Error(w, `{"detail":"invalid API key"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("sess_%d", s.nextID)
	s.sessions[id] = []api.Message{}
	s.usage[id] = &api.Usage{SessionID: id}
	s.mu.Unlock()

	writeJSON(w, api.CreateSessionResponse{SessionID: id})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	sessionID, resource := parts[0], parts[1]

	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	switch {
	case resource == "messages" && r.Method == http.MethodPost:
		s.postMessage(w, r, sessionID)
	case resource == "messages" && r.Method == http.MethodGet:
		s.getMessages(w, sessionID)
	case resource == "usage" && r.Method == http.MethodGet:
		s.getUsage(w, sessionID)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req api.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.sessions[sessionID] = append(s.sessions[sessionID], api.Message{
		ID:        fmt.Sprintf("msg_%d", len(s.sessions[sessionID])+1),
		Role:      api.RoleUser,
		Content:   req.Text,
		CreatedAt: time.Now(),
	})
	streamID := fmt.Sprintf("stream_%s_%d", sessionID, len(s.streams)+1)
	s.streams[streamID] = pendingStream{sessionID: sessionID, text: req.Text}
	s.mu.Unlock()

	writeJSON(w, api.PostMessageResponse{StreamID: streamID})
}

func (s *Server) getMessages(w http.ResponseWriter, sessionID string) {
	s.mu.Lock()
	msgs := append([]api.Message(nil), s.sessions[sessionID]...)
	s.mu.Unlock()
	writeJSON(w, msgs)
}

func (s *Server) getUsage(w http.ResponseWriter, sessionID string) {
	s.mu.Lock()
	u := *s.usage[sessionID]
	s.mu.Unlock()
	writeJSON(w, u)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	streamID := strings.TrimPrefix(r.URL.Path, "/api/streams/")

	s.mu.Lock()
	pending, ok := s.streams[streamID]
	delete(s.streams, streamID)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "stream not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	response := s.respond(w, flusher, pending.text)

	s.mu.Lock()
	s.sessions[pending.sessionID] = append(s.sessions[pending.sessionID], api.Message{
		ID:        fmt.Sprintf("msg_%d", len(s.sessions[pending.sessionID])+1),
		Role:      api.RoleAssistant,
		Content:   response,
		CreatedAt: time.Now(),
	})
	u := s.usage[pending.sessionID]
	u.TotalInputTokens += len(strings.Fields(pending.text))
	u.TotalOutputTokens += len(strings.Fields(response))
	u.TotalTokens = u.TotalInputTokens + u.TotalOutputTokens
	u.EstimatedTotalCost += float64(u.TotalTokens) * 0.000002
	u.RecordsCount++
	s.mu.Unlock()

	sendEvent(w, flusher, map[string]any{"type": "done", "provider": "mock", "iterations": 1})
}

// respond drives a canned forecasting scenario keyed off the user's text and
// returns the full assistant reply that was streamed.
func (s *Server) respond(w http.ResponseWriter, flusher http.Flusher, text string) string {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "forecast") || strings.Contains(lower, "demand"):
		s.simulateForecast(w, flusher)
	case strings.Contains(lower, "inventory") || strings.Contains(lower, "stock"):
		s.simulateInventory(w, flusher)
	case strings.Contains(lower, "shortage") || strings.Contains(lower, "risk"):
		s.simulateShortage(w, flusher)
	}

	response := s.responseFor(lower)
	s.streamTokens(w, flusher, response)
	return response
}

func (s *Server) simulateForecast(w http.ResponseWriter, flusher http.Flusher) {
	sendEvent(w, flusher, map[string]any{
		"type":      "tool_start",
		"tool_name": "forecast_demand",
		"input":     map[string]any{"sku": "N95-RESP-01", "horizon_weeks": 12},
	})
	time.Sleep(400 * time.Millisecond)

	sendEvent(w, flusher, map[string]any{
		"type":      "tool_result",
		"tool_name": "forecast_demand",
		"result":    `{"sku":"N95-RESP-01","horizon_weeks":12,"peak_week":7,"peak_units":48200}`,
	})
	time.Sleep(100 * time.Millisecond)

	sendEvent(w, flusher, map[string]any{
		"type":        "artifact_created",
		"artifact_id": fmt.Sprintf("art_%d", time.Now().UnixNano()),
		"kind":        "chart_json",
		"title":       "12-week demand forecast: N95-RESP-01",
		"content":     `{"title":"N95 respirator demand","series":[{"name":"forecast","points":[31000,33400,36100,39800,43200,46500,48200,47100,44800,41200,38600,36900]},{"name":"p90","points":[34100,36700,39700,43800,47500,51100,53000,51800,49300,45300,42500,40600]}]}`,
	})
	time.Sleep(100 * time.Millisecond)
}

func (s *Server) simulateInventory(w http.ResponseWriter, flusher http.Flusher) {
	sendEvent(w, flusher, map[string]any{
		"type":      "tool_start",
		"tool_name": "query_inventory",
		"input":     map[string]any{"region": "northeast", "category": "ppe"},
	})
	time.Sleep(350 * time.Millisecond)

	sendEvent(w, flusher, map[string]any{
		"type":      "tool_result",
		"tool_name": "query_inventory",
		"result":    `{"region":"northeast","rows":4}`,
	})
	time.Sleep(100 * time.Millisecond)

	sendEvent(w, flusher, map[string]any{
		"type":        "artifact_created",
		"artifact_id": fmt.Sprintf("art_%d", time.Now().UnixNano()),
		"kind":        "table",
		"title":       "PPE on-hand inventory, northeast region",
		"content":     `{"columns":["SKU","Description","On hand","Weeks of supply"],"rows":[["N95-RESP-01","N95 respirator",182000,"4.2"],["GLV-NTR-M","Nitrile gloves (M)",940000,"6.8"],["GWN-ISO-L","Isolation gown (L)",51000,"2.1"],["FSH-FULL","Face shield",77500,"9.4"]]}`,
	})
	time.Sleep(100 * time.Millisecond)
}

func (s *Server) simulateShortage(w http.ResponseWriter, flusher http.Flusher) {
	sendEvent(w, flusher, map[string]any{
		"type":      "tool_start",
		"tool_name": "assess_shortage_risk",
		"input":     map[string]any{"category": "ppe", "horizon_weeks": 8},
	})
	time.Sleep(300 * time.Millisecond)

	sendEvent(w, flusher, map[string]any{
		"type":      "tool_result",
		"tool_name": "assess_shortage_risk",
		"result":    `{"at_risk_skus":2,"highest":"GWN-ISO-L"}`,
	})
	time.Sleep(100 * time.Millisecond)
}

func (s *Server) responseFor(lower string) string {
	switch {
	case strings.Contains(lower, "forecast") || strings.Contains(lower, "demand"):
		return "I ran a 12-week demand forecast for N95 respirators. Demand peaks in week 7 at about " +
			"**48,200 units**, roughly 18% above the trailing quarter average, before easing back " +
			"through week 12. The chart artifact shows the central forecast next to the p90 band.\n\n" +
			"Given current on-hand inventory, I'd recommend placing replenishment orders by week 3 to " +
			"stay ahead of the peak."
	case strings.Contains(lower, "inventory") || strings.Contains(lower, "stock"):
		return "Here's the current PPE inventory picture for the northeast region. The table artifact " +
			"has the full breakdown.\n\nThe notable outlier is **isolation gowns** at 2.1 weeks of " +
			"supply — well under the 4-week floor. Everything else is comfortably stocked."
	case strings.Contains(lower, "shortage") || strings.Contains(lower, "risk"):
		return "Over the next 8 weeks I see **2 SKUs at elevated shortage risk**, with isolation gowns " +
			"(GWN-ISO-L) the most exposed: supplier lead times have stretched to 5 weeks while burn " +
			"rate is up 12%. Consider qualifying a second supplier or pulling forward the next order."
	default:
		return "I can help you with healthcare supply-chain forecasting. Ask me to:\n\n" +
			"- **Forecast demand** for a SKU or category\n" +
			"- **Check inventory** levels by region\n" +
			"- **Assess shortage risk** over a planning horizon\n\n" +
			"What would you like to look at?"
	}
}

func (s *Server) streamTokens(w http.ResponseWriter, flusher http.Flusher, response string) {
	// Batch runes so the stream feels like token-by-token generation without
	// one write per character.
	const batch = 4
	runes := []rune(response)

	for i := 0; i < len(runes); i += batch {
		end := i + batch
		if end > len(runes) {
			end = len(runes)
		}
		sendEvent(w, flusher, map[string]any{"type": "token", "content": string(runes[i:end])})
		time.Sleep(12 * time.Millisecond)
	}
}

func sendEvent(w http.ResponseWriter, flusher http.Flusher, payload map[string]any) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
