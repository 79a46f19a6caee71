package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pipeline_rescue/internal/broadcast"
	"pipeline_rescue/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsFixture struct {
	state *game.State
	hub   *broadcast.Hub
	clock *clockwork.FakeClock
	srv   *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := clockwork.NewFakeClock()
	state := game.NewState(1800*time.Second, nil, clock)
	hub := broadcast.NewHub()

	r := gin.New()
	r.GET("/timer/ws", Handle(state, hub, clock, ""))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	return &wsFixture{state: state, hub: hub, clock: clock, srv: srv}
}

func (f *wsFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/timer/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) broadcast.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev broadcast.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	return ev
}

func (f *wsFixture) waitForSubscriber(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.hub.Count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("no subscriber registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConnectionSendsInitialFrame(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)

	ev := readFrame(t, conn)
	assert.Equal(t, broadcast.EventTick, ev.Type)
	assert.Equal(t, 1800, ev.Remaining)
	assert.Equal(t, 0, ev.Elapsed)
	assert.False(t, ev.Completed)
}

func TestHubEventsReachEveryConnection(t *testing.T) {
	f := newWSFixture(t)
	a, b := f.dial(t), f.dial(t)
	readFrame(t, a)
	readFrame(t, b)
	f.waitForSubscriber(t, 2)

	remaining, applied := f.state.ApplyPenalty(300 * time.Second)
	require.True(t, applied)
	ev := broadcast.NewEvent(broadcast.EventPenalty, f.state.Snapshot(), f.clock.Now())
	ev.Penalty = 300
	f.hub.Publish(ev)

	for _, conn := range []*websocket.Conn{a, b} {
		got := readFrame(t, conn)
		assert.Equal(t, broadcast.EventPenalty, got.Type)
		assert.Equal(t, remaining, got.Remaining)
		assert.Equal(t, 300, got.Penalty)
	}
}

func TestCompletedFrameClosesConnection(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)
	readFrame(t, conn)
	f.waitForSubscriber(t, 1)

	f.state.Complete(game.OutcomeWon)
	f.hub.Publish(broadcast.NewEvent(broadcast.EventCompleted, f.state.Snapshot(), f.clock.Now()))

	got := readFrame(t, conn)
	assert.Equal(t, broadcast.EventCompleted, got.Type)
	assert.True(t, got.Completed)
	assert.Equal(t, game.OutcomeWon, got.Outcome)

	// next read observes the close handshake
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived) ||
		strings.Contains(err.Error(), "close"), "expected close, got %v", err)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)
	readFrame(t, conn)
	f.waitForSubscriber(t, 1)

	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for f.hub.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber leaked after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
