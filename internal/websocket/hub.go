package websocket

import (
	"context"
	"encoding/json"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/metrics"
	"github.com/ikkim/memolite-backend/pkg/logger"
)

const (
	// 클라이언트별 전송 버퍼
	clientSendBuffer = 256

	eventBuffer = 1024
)

// Client 메모 스트림 구독자 (요청 시점의 Viewer로 고정)
type Client struct {
	Hub    *Hub
	Conn   *Conn
	Viewer model.Viewer
	Send   chan []byte
}

// NewClient creates a subscriber for viewer. conn may be nil in tests.
func NewClient(hub *Hub, conn *Conn, viewer model.Viewer) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		Viewer: viewer,
		Send:   make(chan []byte, clientSendBuffer),
	}
}

// StreamMessage 클라이언트로 전송되는 이벤트
type StreamMessage struct {
	Type string      `json:"type"` // memo.created, memo.updated, memo.deleted
	Memo *model.Memo `json:"memo"`
}

// Hub 메모 변경 이벤트를 구독자에게 전달
// clients 맵은 Run 고루틴만 접근한다.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	events     chan model.MemoEvent
	done       chan struct{}
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan model.MemoEvent, eventBuffer),
		done:       make(chan struct{}),
	}
}

// Run Hub 실행. ctx가 끝나면 모든 구독자를 닫고 반환한다.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			metrics.StreamClients.Set(float64(len(h.clients)))
			logger.Info("Memo stream client registered", map[string]interface{}{
				"user_id":       client.Viewer.UserID,
				"authenticated": client.Viewer.Authenticated,
				"total_clients": len(h.clients),
			})

		case client := <-h.unregister:
			h.remove(client)
			logger.Info("Memo stream client unregistered", map[string]interface{}{
				"user_id":       client.Viewer.UserID,
				"total_clients": len(h.clients),
			})

		case event := <-h.events:
			h.dispatch(event)

		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			logger.Info("Memo stream hub stopped")
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	metrics.StreamClients.Set(float64(len(h.clients)))
}

// dispatch sends the event only to clients whose viewer may see the memo.
func (h *Hub) dispatch(event model.MemoEvent) {
	if event.Memo == nil {
		return
	}

	var data []byte
	delivered := 0
	for client := range h.clients {
		if !client.Viewer.CanView(event.Memo) {
			continue
		}
		if data == nil {
			var err error
			data, err = json.Marshal(StreamMessage{Type: event.Type, Memo: event.Memo})
			if err != nil {
				logger.Error("Failed to marshal memo event", err, map[string]interface{}{
					"memo_id": event.Memo.ID,
				})
				return
			}
		}

		select {
		case client.Send <- data:
			delivered++
		default:
			// 느린 클라이언트는 끊는다
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": client.Viewer.UserID,
			})
			h.remove(client)
		}
	}

	logger.Debug("Memo event dispatched", map[string]interface{}{
		"type":      event.Type,
		"memo_id":   event.Memo.ID,
		"delivered": delivered,
	})
}

// Publish queues a committed memo change. It never blocks the caller;
// events are dropped when the queue is full or the hub has stopped.
func (h *Hub) Publish(event model.MemoEvent) {
	select {
	case h.events <- event:
	case <-h.done:
	default:
		logger.Warn("Memo event queue full, event dropped", map[string]interface{}{
			"type": event.Type,
		})
	}
}

// Register 클라이언트 등록. Hub가 이미 멈췄으면 false.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister 클라이언트 등록 해제
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
