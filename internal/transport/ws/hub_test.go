package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/cards"
	"github.com/okusnadi/SabberStone/internal/game/model"
)

type received struct {
	Type   string          `json:"type"`
	GameID string          `json:"game_id"`
	Data   json.RawMessage `json:"data"`
}

func startHub(t *testing.T) (*Hub, string, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func newGame(t *testing.T) *model.Game {
	t.Helper()
	cfg := config.Default().Game
	cfg.Seed = 9
	return model.NewGame(cfg, zaptest.NewLogger(t), "Alice", "Bob")
}

func TestHubStreamsZoneChanges(t *testing.T) {
	hub, url, _ := startHub(t)
	g := newGame(t)
	detach := hub.Attach(g)
	defer detach()

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(Message{Type: TypeSubscribe, GameID: g.ID()}))

	msg := readMessage(t, conn)
	assert.Equal(t, TypeGameState, msg.Type)
	assert.Equal(t, g.ID(), msg.GameID)
	var view model.GameView
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	assert.Equal(t, 0, view.Controllers[0].Zones[0].Count)

	raptor := cards.MustNew(cards.Definition{ID: "CS2_172", Name: "Bloodfen Raptor", Type: "MINION", Cost: 2, Attack: 3, Health: 2})
	require.NoError(t, g.Do(func() error {
		p1 := g.Controller(0)
		_, err := model.FromCard(p1, raptor, nil, p1.Board(), 0)
		return err
	}))

	msg = readMessage(t, conn)
	assert.Equal(t, TypeGameState, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	board := view.Controllers[0].Zones[0]
	assert.Equal(t, "PLAY", board.Kind)
	require.Len(t, board.Entities, 1)
	assert.Equal(t, "CS2_172", board.Entities[0].CardID)
}

func TestHubUnknownGame(t *testing.T) {
	_, url, _ := startHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(Message{Type: TypeSubscribe, GameID: "nope"}))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "nope", msg.GameID)
}

func TestHubFiltersByGame(t *testing.T) {
	hub, url, _ := startHub(t)
	g1, g2 := newGame(t), newGame(t)
	hub.Attach(g1)
	hub.Attach(g2)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(Message{Type: TypeSubscribe, GameID: g2.ID()}))
	readMessage(t, conn)

	require.NoError(t, hub.Broadcast(Message{Type: "note", GameID: g1.ID(), Data: "first"}))
	require.NoError(t, hub.Broadcast(Message{Type: "note", GameID: g2.ID(), Data: "second"}))

	msg := readMessage(t, conn)
	assert.Equal(t, g2.ID(), msg.GameID)
	assert.JSONEq(t, `"second"`, string(msg.Data))
}

func TestHubShutdownClosesClients(t *testing.T) {
	_, url, cancel := startHub(t)
	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(Message{Type: TypeSubscribe, GameID: "x"}))
	readMessage(t, conn)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHubSnapshot(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	hub := NewHub(zap.New(core))
	g := newGame(t)
	detach := hub.Attach(g)
	defer detach()

	var msg received
	require.NoError(t, json.Unmarshal(hub.snapshot(g.ID()), &msg))
	assert.Equal(t, TypeGameState, msg.Type)
	assert.Equal(t, g.ID(), msg.GameID)
	var view model.GameView
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	assert.Equal(t, g.Digest(), view.Digest)

	require.NoError(t, json.Unmarshal(hub.snapshot("missing"), &msg))
	assert.Equal(t, TypeError, msg.Type)
	assert.JSONEq(t, `"unknown game"`, string(msg.Data))

	assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
}
