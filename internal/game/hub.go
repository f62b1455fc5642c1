package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jacl-coder/PixelStorm-RPG/internal/combat"
	"github.com/jacl-coder/PixelStorm-RPG/internal/protocol"
)

const sendBufferSize = 64

// Frame 待写出的WebSocket帧
type Frame struct {
	Data   []byte
	Binary bool
}

// Connection 玩家连接，订阅一个频道的战斗快照
type Connection struct {
	ID        string
	PlayerID  string
	ChannelID string
	Encoding  protocol.Encoding

	// 通信通道
	Send chan Frame

	mu     sync.Mutex
	closed bool
}

// NewConnection 创建连接
func NewConnection(playerID, channelID string, enc protocol.Encoding) *Connection {
	return &Connection{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		ChannelID: channelID,
		Encoding:  enc,
		Send:      make(chan Frame, sendBufferSize),
	}
}

// enqueue 放入发送队列，队列已满或连接已关闭时返回 false
func (c *Connection) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- Frame{Data: data, Binary: c.Encoding.Binary()}:
		return true
	default:
		return false
	}
}

// Close 关闭发送通道，可重复调用
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub 频道订阅表，实现 Publisher
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[string]*Connection
}

// NewHub 创建订阅表
func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[string]*Connection)}
}

// Subscribe 订阅连接所在频道
func (h *Hub) Subscribe(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.channels[c.ChannelID]
	if !ok {
		conns = make(map[string]*Connection)
		h.channels[c.ChannelID] = conns
	}
	conns[c.ID] = c
}

// Unsubscribe 取消订阅
func (h *Hub) Unsubscribe(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.channels[c.ChannelID]; ok {
		delete(conns, c.ID)
		if len(conns) == 0 {
			delete(h.channels, c.ChannelID)
		}
	}
}

// Viewers 频道订阅数
func (h *Hub) Viewers(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}

func (h *Hub) viewers(channelID string) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Connection, 0, len(h.channels[channelID]))
	for _, c := range h.channels[channelID] {
		out = append(out, c)
	}
	return out
}

// Publish 向频道的所有订阅者推送快照
func (h *Hub) Publish(_ context.Context, channelID string, snap combat.Snapshot) error {
	conns := h.viewers(channelID)
	if len(conns) == 0 {
		return ErrNoViewers
	}

	encoded := make(map[protocol.Encoding][]byte, 2)
	for _, c := range conns {
		data, ok := encoded[c.Encoding]
		if !ok {
			var err error
			data, err = protocol.EncodeSnapshot(snap, c.Encoding)
			if err != nil {
				return err
			}
			encoded[c.Encoding] = data
		}
		if !c.enqueue(data) {
			// 发送队列已满，断开慢连接
			slog.Warn("连接发送队列已满，断开", "conn_id", c.ID, "player_id", c.PlayerID)
			h.Unsubscribe(c)
			c.Close()
		}
	}
	return nil
}

// CloseAll 关闭所有连接
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conns := range h.channels {
		for _, c := range conns {
			c.Close()
		}
		delete(h.channels, id)
	}
}
