package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tank-status-backend/config"
	"tank-status-backend/internal/model"
	"tank-status-backend/internal/sim"
	"tank-status-backend/internal/store"
	"tank-status-backend/internal/ws"
	"tank-status-backend/internal/wsclient"
)

func startFullServer(t *testing.T, s store.Store) (*httptest.Server, *ws.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	}
	srv := httptest.NewServer(NewRouter(cfg, s, hub, nil))
	t.Cleanup(srv.Close)
	return srv, hub
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readEnvelope(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg ws.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

// A fresh deployment: a subscriber connects to an empty store, a tank is
// created over the HTTP API, and the creation shows up both in the
// collection read and as a push delta on the already-open socket.
func TestCreateFlowsToConnectedSubscriber(t *testing.T) {
	s := store.NewMemoryStore()
	srv, _ := startFullServer(t, s)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	snapshot := readEnvelope(t, conn)
	require.Equal(t, ws.TypeInitialData, snapshot.Type)
	assert.JSONEq(t, `[]`, string(snapshot.Payload))

	resp := postJSON(t, srv.URL+"/api/tanks", gin.H{
		"name":        "Tank A",
		"fillLevel":   65,
		"temperature": 23.8,
		"capacity":    2000,
		"status":      "online",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	listResp, err := http.Get(srv.URL + "/api/tanks")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var tanks []model.Tank
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&tanks))
	require.Len(t, tanks, 1)
	assert.Equal(t, int64(1), tanks[0].ID)
	assert.Equal(t, "Tank A", tanks[0].Name)

	delta := readEnvelope(t, conn)
	assert.Equal(t, ws.TypeTankCreate, delta.Type)
	var created model.Tank
	require.NoError(t, json.Unmarshal(delta.Payload, &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 65.0, created.FillLevel)
}

// Two mirrors converge on the store's state after a simulator tick.
func TestMirrorsConvergeAfterSimulatorTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, s))
	srv, hub := startFullServer(t, s)

	seeded, err := s.ListTanks(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, seeded)

	mirrorA := wsclient.NewMirror(wsURL(srv), 100*time.Millisecond)
	mirrorB := wsclient.NewMirror(wsURL(srv), 100*time.Millisecond)
	go mirrorA.Run(ctx)
	go mirrorB.Run(ctx)

	waitForMirror(t, mirrorA, len(seeded))
	waitForMirror(t, mirrorB, len(seeded))

	simCfg := &config.SimulatorConfig{
		Enabled:        true,
		FillJitter:     5,
		TempJitter:     0.5,
		LowThreshold:   20,
		HysteresisBand: 5,
	}
	svc := sim.NewService(simCfg, s, hub, nil, rand.New(rand.NewSource(11)))
	svc.TickOnce(ctx)

	want, err := s.ListTanks(ctx)
	require.NoError(t, err)

	deadline := time.Now().Add(3 * time.Second)
	for {
		if mirrorsMatch(mirrorA.Tanks(), want) && mirrorsMatch(mirrorB.Tanks(), want) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("mirrors never converged on the store state")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func waitForMirror(t *testing.T, m *wsclient.Mirror, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for len(m.Tanks()) != n {
		if time.Now().After(deadline) {
			t.Fatalf("mirror never reached %d tanks", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func mirrorsMatch(got, want []model.Tank) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].ID != want[i].ID ||
			got[i].FillLevel != want[i].FillLevel ||
			got[i].Temperature != want[i].Temperature ||
			got[i].Status != want[i].Status {
			return false
		}
	}
	return true
}
