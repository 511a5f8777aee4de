package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeTimeout = 3 * time.Second
	sendBuffer   = 16
)

// Event: сообщение ленты. Sequence растёт монотонно в пределах хаба,
// и каждый клиент получает события строго в порядке Sequence.
type Event struct {
	Type     string `json:"type"`
	PlanID   string `json:"planId"`
	Sequence uint64 `json:"sequence"`
	Payload  any    `json:"payload"`
}

// SnapshotFunc возвращает текущее состояние планировки для нового подписчика.
type SnapshotFunc func(planID string) (any, bool)

// client: очередь исходящих сообщений одного сокета. Канал send закрывает
// тот, кто удалил клиента из хаба; status и reason записываются до закрытия.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	status websocket.StatusCode
	reason string
}

// ============================================================
// Hub
// ============================================================

// Hub рассылает изменения планировок подписчикам, сгруппированным по plan id.
// Под mu только ставятся сообщения в очереди; запись в сокеты идёт в горутинах клиентов.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]map[*client]struct{}
	sequence uint64
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*client]struct{})}
}

// subscribe регистрирует клиента и ставит ему снимок под одной блокировкой:
// любое изменение, опубликованное позже, придёт после снимка.
func (h *Hub) subscribe(planID string, conn *websocket.Conn, snapshot SnapshotFunc) (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := snapshot(planID)
	if !ok {
		return nil, false
	}
	hello, err := h.encodeLocked(planID, "snapshot", state)
	if err != nil {
		log.Printf("[FEED] encode snapshot for %s: %v", planID, err)
		return nil, false
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- hello

	set, found := h.clients[planID]
	if !found {
		set = make(map[*client]struct{})
		h.clients[planID] = set
	}
	set[c] = struct{}{}
	return c, true
}

func (h *Hub) remove(planID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(planID, c, websocket.StatusNormalClosure, "")
}

func (h *Hub) removeLocked(planID string, c *client, status websocket.StatusCode, reason string) {
	set := h.clients[planID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	c.status, c.reason = status, reason
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, planID)
	}
}

// Subscribers: число подключённых клиентов планировки.
func (h *Hub) Subscribers(planID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[planID])
}

// Broadcast ставит сообщение в очереди всех подписчиков плана.
// Клиент с переполненной очередью отключается.
func (h *Hub) Broadcast(planID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(planID, message)
}

func (h *Hub) broadcastLocked(planID string, message []byte) {
	for c := range h.clients[planID] {
		select {
		case c.send <- message:
		default:
			log.Printf("[FEED] dropping slow subscriber of %s", planID)
			h.removeLocked(planID, c, websocket.StatusPolicyViolation, "subscriber too slow")
		}
	}
}

// Publish упаковывает payload в Event и рассылает его.
func (h *Hub) Publish(planID, eventType string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := h.encodeLocked(planID, eventType, payload)
	if err != nil {
		log.Printf("[FEED] encode %s for %s: %v", eventType, planID, err)
		return
	}
	h.broadcastLocked(planID, data)
}

// Close отключает всех подписчиков плана, например после удаления планировки.
// Сокеты закрывают горутины клиентов со статусом StatusGoingAway.
func (h *Hub) Close(planID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[planID] {
		h.removeLocked(planID, c, websocket.StatusGoingAway, "plan closed")
	}
}

func (h *Hub) encodeLocked(planID, eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(Event{
		Type:     eventType,
		PlanID:   planID,
		Sequence: h.sequence + 1,
		Payload:  payload,
	})
	if err != nil {
		return nil, err
	}
	h.sequence++
	return data, nil
}

// ============================================================
// HTTP
// ============================================================

// Handler обслуживает GET /plans/{id}/feed: принимает сокет, отправляет снимок
// планировки и держит клиента подписанным до отключения. Входящие сообщения игнорируются.
func (h *Hub) Handler(snapshot SnapshotFunc) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /plans/{id}/feed", func(w http.ResponseWriter, r *http.Request) {
		planID := r.PathValue("id")
		if _, ok := snapshot(planID); !ok {
			http.Error(w, "plan not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			log.Printf("[FEED] accept %s: %v", planID, err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		c, ok := h.subscribe(planID, conn, snapshot)
		if !ok {
			_ = conn.Close(websocket.StatusGoingAway, "plan closed")
			return
		}
		defer h.remove(planID, c)

		if h.writeLoop(conn.CloseRead(r.Context()), c) {
			_ = conn.Close(c.status, c.reason)
		}
	})
	return mux
}

// writeLoop пишет очередь клиента в сокет, пока клиент подключён.
// Возвращает true, если клиента удалил хаб.
func (h *Hub) writeLoop(ctx context.Context, c *client) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-c.send:
			if !ok {
				return true
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return false
			}
		}
	}
}
