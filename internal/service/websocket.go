package service

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"poker_web/internal/models"
)

// Frame 是 WebSocket 上傳遞的統一訊息格式
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Ack 是每個請求唯一的回應：OK 帶資料，Error 帶錯誤訊息
type Ack struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

func OKAck(data any) Ack {
	return Ack{Type: "OK", Data: data}
}

// ErrorAck 非領域錯誤不把細節送給客戶端
func ErrorAck(err error) Ack {
	if models.KindOf(err) == 0 {
		return Ack{Type: "Error", Error: "internal error", Code: models.CodeOf(err)}
	}
	return Ack{Type: "Error", Error: err.Error(), Code: models.CodeOf(err)}
}

// WebSocketOptions 對應設定檔中的 websocket 區塊
type WebSocketOptions struct {
	ReadLimit  int64
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

// Client 代表一個 WebSocket 客戶端連接；Session 在連線建立時設定一次，之後唯讀
type Client struct {
	ID      string
	Session models.Session

	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// enqueue 不會阻塞；佇列已滿或已關閉時回傳 false
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WebSocketManager 管理所有的 WebSocket 連接與房間訂閱
type WebSocketManager struct {
	opts WebSocketOptions

	clientsMux sync.RWMutex
	clients    map[string]*Client             // clientID -> client
	rooms      map[string]map[string]*Client  // roomID -> clientID -> client
	joined     map[string]map[string]struct{} // clientID -> roomIDs
}

func NewWebSocketManager(opts WebSocketOptions) *WebSocketManager {
	return &WebSocketManager{
		opts:    opts,
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		joined:  make(map[string]map[string]struct{}),
	}
}

// Register 為已完成身分解析的連線建立 Client
func (m *WebSocketManager) Register(conn *websocket.Conn, session models.Session) *Client {
	client := &Client{
		ID:      uuid.NewString(),
		Session: session,
		conn:    conn,
		send:    make(chan []byte, m.opts.SendBuffer),
	}

	m.clientsMux.Lock()
	m.clients[client.ID] = client
	m.joined[client.ID] = make(map[string]struct{})
	m.clientsMux.Unlock()

	return client
}

// Serve 啟動寫入協程並在目前的 goroutine 讀取訊息，直到連線中斷。
// 同一連線的訊息依到達順序交給 handle。
func (m *WebSocketManager) Serve(client *Client, handle func(client *Client, frame Frame)) {
	defer func() {
		m.unregister(client)
		client.closeSend()
		client.conn.Close()
	}()

	go m.writePump(client)
	m.readPump(client, handle)
}

func (m *WebSocketManager) readPump(client *Client, handle func(client *Client, frame Frame)) {
	client.conn.SetReadLimit(m.opts.ReadLimit)
	client.conn.SetReadDeadline(time.Now().Add(m.opts.PongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(m.opts.PongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket unexpected close", "client_id", client.ID, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			slog.Debug("frame parse error", "client_id", client.ID, "error", err)
			m.Reply(client.ID, "", ErrorAck(models.ErrInvalidPayload))
			continue
		}

		handle(client, frame)
	}
}

// writePump 處理向客戶端發送消息與心跳
func (m *WebSocketManager) writePump(client *Client) {
	ticker := time.NewTicker(m.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(m.opts.WriteWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(m.opts.WriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Emit 只送給單一連線
func (m *WebSocketManager) Emit(clientID, event string, payload any) {
	data, ok := encodeFrame(Frame{Type: event}, payload)
	if !ok {
		return
	}

	m.clientsMux.RLock()
	client := m.clients[clientID]
	m.clientsMux.RUnlock()

	if client != nil {
		m.deliver(client, data)
	}
}

// Reply 送出請求的確認
func (m *WebSocketManager) Reply(clientID, requestID string, ack Ack) {
	data, ok := encodeFrame(Frame{Type: "ack", RequestID: requestID}, ack)
	if !ok {
		return
	}

	m.clientsMux.RLock()
	client := m.clients[clientID]
	m.clientsMux.RUnlock()

	if client != nil {
		m.deliver(client, data)
	}
}

// EmitRoom 向房間內的所有客戶端廣播
func (m *WebSocketManager) EmitRoom(roomID, event string, payload any) {
	data, ok := encodeFrame(Frame{Type: event}, payload)
	if !ok {
		return
	}

	m.clientsMux.RLock()
	targets := make([]*Client, 0, len(m.rooms[roomID]))
	for _, client := range m.rooms[roomID] {
		targets = append(targets, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range targets {
		m.deliver(client, data)
	}
}

// EmitAll 向所有連線廣播
func (m *WebSocketManager) EmitAll(event string, payload any) {
	data, ok := encodeFrame(Frame{Type: event}, payload)
	if !ok {
		return
	}

	m.clientsMux.RLock()
	targets := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		targets = append(targets, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range targets {
		m.deliver(client, data)
	}
}

// JoinOnly 先離開連線目前所有的房間，再加入 roomID
func (m *WebSocketManager) JoinOnly(clientID, roomID string) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	client, ok := m.clients[clientID]
	if !ok {
		return
	}

	for joined := range m.joined[clientID] {
		m.leaveLocked(clientID, joined)
	}

	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[string]*Client)
	}
	m.rooms[roomID][clientID] = client
	m.joined[clientID][roomID] = struct{}{}
}

// RoomsOf 回傳連線目前所在的房間
func (m *WebSocketManager) RoomsOf(clientID string) []string {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	rooms := make([]string, 0, len(m.joined[clientID]))
	for roomID := range m.joined[clientID] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// GetRoomClients 獲取指定房間的在線客戶端數量
func (m *WebSocketManager) GetRoomClients(roomID string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.rooms[roomID])
}

// deliver 佇列已滿的客戶端會被斷線
func (m *WebSocketManager) deliver(client *Client, data []byte) {
	if client.enqueue(data) {
		return
	}
	slog.Warn("dropping slow client", "client_id", client.ID)
	m.unregister(client)
	client.conn.Close()
}

func (m *WebSocketManager) unregister(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	for roomID := range m.joined[client.ID] {
		m.leaveLocked(client.ID, roomID)
	}
	delete(m.joined, client.ID)
	delete(m.clients, client.ID)
}

func (m *WebSocketManager) leaveLocked(clientID, roomID string) {
	if clients, ok := m.rooms[roomID]; ok {
		delete(clients, clientID)
		if len(clients) == 0 {
			delete(m.rooms, roomID)
		}
	}
	delete(m.joined[clientID], roomID)
}

func encodeFrame(frame Frame, payload any) ([]byte, bool) {
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			slog.Error("payload encoding error", "type", frame.Type, "error", err)
			return nil, false
		}
		frame.Payload = raw
	}

	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("frame encoding error", "type", frame.Type, "error", err)
		return nil, false
	}
	return data, true
}
