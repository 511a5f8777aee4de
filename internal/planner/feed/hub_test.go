package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(hub.Handler(func(planID string) (any, bool) {
		if planID != "plan-1" {
			return nil, false
		}
		return map[string]int{"walls": 8}, true
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, planID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/plans/" + planID + "/feed"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHub_SnapshotThenBroadcast(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	conn := dial(t, srv, "plan-1")

	hello := readEvent(t, conn)
	assert.Equal(t, "snapshot", hello.Type)
	assert.Equal(t, "plan-1", hello.PlanID)
	assert.Equal(t, map[string]any{"walls": float64(8)}, hello.Payload)
	assert.Equal(t, 1, hub.Subscribers("plan-1"))

	hub.Publish("plan-2", "walls", "ignored")
	hub.Publish("plan-1", "walls", []string{"wall_v_4.400_0.000_6.000"})

	ev := readEvent(t, conn)
	assert.Equal(t, "walls", ev.Type)
	assert.Greater(t, ev.Sequence, hello.Sequence)
	assert.Equal(t, []any{"wall_v_4.400_0.000_6.000"}, ev.Payload)
}

func TestHub_UnknownPlan(t *testing.T) {
	srv := newTestServer(t, NewHub())

	resp, err := http.Get(srv.URL + "/plans/nope/feed")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHub_ClientLeaves(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	conn := dial(t, srv, "plan-1")
	readEvent(t, conn)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	assert.Eventually(t, func() bool {
		return hub.Subscribers("plan-1") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsPlan(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	conn := dial(t, srv, "plan-1")
	readEvent(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	readErr := make(chan error, 1)
	go func() {
		_, _, err := conn.Read(ctx)
		readErr <- err
	}()

	hub.Close("plan-1")
	assert.Equal(t, 0, hub.Subscribers("plan-1"))
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(<-readErr))
}

func TestHub_ChangeDuringConnectReachesSubscriber(t *testing.T) {
	hub := NewHub()

	var (
		mu      sync.Mutex
		version int
		calls   int
	)
	// Первый вызов (проверка плана до рукопожатия) имитирует сдвиг стены,
	// завершившийся, пока клиент ещё не подписан.
	srv := httptest.NewServer(hub.Handler(func(planID string) (any, bool) {
		mu.Lock()
		calls++
		first := calls == 1
		current := version
		if first {
			version++
		}
		mu.Unlock()

		if first {
			hub.Publish(planID, "moved", current+1)
		}
		return current, true
	}))
	t.Cleanup(srv.Close)

	conn := dial(t, srv, "plan-1")
	hello := readEvent(t, conn)
	assert.Equal(t, "snapshot", hello.Type)
	assert.Equal(t, float64(1), hello.Payload, "snapshot must include the change")

	hub.Publish("plan-1", "moved", 2)
	ev := readEvent(t, conn)
	assert.Equal(t, float64(2), ev.Payload)
	assert.Greater(t, ev.Sequence, hello.Sequence)
}

func TestHub_EventsArriveInSequenceOrder(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	conn := dial(t, srv, "plan-1")
	hello := readEvent(t, conn)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 3; k++ {
				hub.Publish("plan-1", "moved", k)
			}
		}()
	}
	wg.Wait()

	last := hello.Sequence
	for i := 0; i < 12; i++ {
		ev := readEvent(t, conn)
		require.Greater(t, ev.Sequence, last)
		last = ev.Sequence
	}
}

func TestHub_SlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	slow := &client{send: make(chan []byte, 1)}
	hub.clients["plan-1"] = map[*client]struct{}{slow: {}}

	hub.Publish("plan-1", "moved", 1)
	assert.Equal(t, 1, hub.Subscribers("plan-1"))

	hub.Publish("plan-1", "moved", 2)
	assert.Equal(t, 0, hub.Subscribers("plan-1"))
	assert.Equal(t, websocket.StatusPolicyViolation, slow.status)

	queued, ok := <-slow.send
	require.True(t, ok)
	var ev Event
	require.NoError(t, json.Unmarshal(queued, &ev))
	assert.Equal(t, float64(1), ev.Payload)

	_, ok = <-slow.send
	assert.False(t, ok, "queue is closed after drop")
}
