package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttt-arcade/tictactoe-server/internal/api"
	"github.com/ttt-arcade/tictactoe-server/internal/factory"
	"github.com/ttt-arcade/tictactoe-server/internal/model"
	"github.com/ttt-arcade/tictactoe-server/internal/testutil"
	"github.com/ttt-arcade/tictactoe-server/internal/ws"
)

func newTestServer(t *testing.T) (*httptest.Server, *factory.TestApp) {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Hub:         app.Hub,
		Coordinator: app.Coordinator,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, app
}

// dial opens a websocket connection to the test server's /ws endpoint
func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(map[string]json.RawMessage{
		"type":    json.RawMessage(`"` + eventType + `"`),
		"payload": data,
	}))
}

func recv(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestHealthCheck(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "tictactoe-server", body["service"])
}

func TestWebsocketJoinQueueWaits(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, "join_queue", map[string]string{
		"playerId":   "player-alice",
		"playerName": "Alice",
	})

	env := recv(t, conn)
	assert.Equal(t, "waiting", env.Type)

	var waiting struct {
		QueuePosition int `json:"queuePosition"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &waiting))
	assert.Equal(t, 1, waiting.QueuePosition)
}

func TestWebsocketQueueMatchOverWire(t *testing.T) {
	server, app := newTestServer(t)
	app.MockRandom.QueueIntn(0)

	first := dial(t, server)
	send(t, first, "join_queue", map[string]string{
		"playerId":   "player-alice",
		"playerName": "Alice",
	})
	require.Equal(t, "waiting", recv(t, first).Type)

	second := dial(t, server)
	send(t, second, "join_queue", map[string]string{
		"playerId":   "player-bob",
		"playerName": "Bob",
	})

	var symbols []model.Symbol
	for _, conn := range []*websocket.Conn{first, second} {
		env := recv(t, conn)
		require.Equal(t, "match_found", env.Type)

		var match struct {
			Room        model.SessionID `json:"room"`
			YourSymbol  model.Symbol    `json:"yourSymbol"`
			CurrentTurn model.PlayerID  `json:"currentTurn"`
		}
		require.NoError(t, json.Unmarshal(env.Payload, &match))
		assert.NotEmpty(t, match.Room)
		assert.NotEmpty(t, match.CurrentTurn)
		symbols = append(symbols, match.YourSymbol)
	}

	assert.ElementsMatch(t, []model.Symbol{model.SymbolX, model.SymbolO}, symbols)
}

func TestWebsocketRejectsUnknownEvent(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, "shrug", map[string]string{})

	env := recv(t, conn)
	assert.Equal(t, ws.EventError, env.Type)
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
