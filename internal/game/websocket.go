// websocket.go

package game

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jacl-coder/PixelStorm-RPG/internal/combat"
	"github.com/jacl-coder/PixelStorm-RPG/internal/protocol"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 16 * 1024

	// 单条命令的处理超时
	commandTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 前端为机器人服务，不限制来源
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message 客户端消息，始终为JSON文本帧
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	MonsterID string         `json:"monster_id"`
	Technique string         `json:"technique"`
	Variant   combat.Variant `json:"variant"`
}

type actionPayload struct {
	Kind string `json:"kind"`
	Arg  string `json:"arg"`
}

// handleWSConnection 处理WebSocket连接
func (s *GameServer) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	// 获取认证信息
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	playerID, err := s.tokens.ParsePlayerID(token)
	if err != nil {
		http.Error(w, "未授权", http.StatusUnauthorized)
		return
	}

	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		http.Error(w, "缺少 channel_id", http.StatusBadRequest)
		return
	}
	enc, err := protocol.ParseEncoding(r.URL.Query().Get("encoding"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 升级HTTP连接为WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket升级失败", "err", err)
		return
	}

	c := NewConnection(playerID, channelID, enc)
	s.hub.Subscribe(c)
	slog.Info("玩家已连接", "player_id", playerID, "channel_id", channelID, "conn_id", c.ID, "encoding", enc)

	// 已有战斗时立即推送当前状态
	if snap, err := s.service.Snapshot(channelID); err == nil {
		s.sendFrame(c, protocol.FrameSnapshot, snap)
	}

	// 启动读写协程
	go s.readPump(conn, c)
	go s.writePump(conn, c)
}

// readPump 从WebSocket读取数据
func (s *GameServer) readPump(conn *websocket.Conn, c *Connection) {
	defer func() {
		s.closeConnection(c)
		conn.Close()
	}()

	// 设置读取参数
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("WebSocket错误", "conn_id", c.ID, "err", err)
			}
			break
		}

		// 处理接收到的消息
		s.handleMessage(c, message)
	}
}

// writePump 向WebSocket写入数据
func (s *GameServer) writePump(conn *websocket.Conn, c *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			messageType := websocket.TextMessage
			if frame.Binary {
				messageType = websocket.BinaryMessage
			}
			if err := conn.WriteMessage(messageType, frame.Data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection 关闭玩家连接
func (s *GameServer) closeConnection(c *Connection) {
	s.hub.Unsubscribe(c)
	c.Close()
	slog.Info("玩家已断开连接", "player_id", c.PlayerID, "conn_id", c.ID)
}

// handleMessage 处理接收到的消息
func (s *GameServer) handleMessage(c *Connection, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(c, errors.Join(combat.ErrInvalidTarget, err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case "start":
		s.handleStart(ctx, c, msg.Payload)
	case "action":
		s.handleAction(ctx, c, msg.Payload)
	case "watch":
		s.handleWatch(c)
	default:
		slog.Debug("未知消息类型", "type", msg.Type)
		s.sendError(c, combat.ErrInvalidTarget)
	}
}

// handleStart 开始战斗，快照由服务推送给频道订阅者
func (s *GameServer) handleStart(ctx context.Context, c *Connection, payload json.RawMessage) {
	var req startPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			s.sendError(c, errors.Join(combat.ErrInvalidTarget, err))
			return
		}
	}

	_, err := s.service.StartEncounter(ctx, StartRequest{
		PlayerID:  c.PlayerID,
		ChannelID: c.ChannelID,
		MonsterID: req.MonsterID,
		Technique: req.Technique,
		Variant:   req.Variant,
	})
	if err != nil {
		s.sendError(c, err)
	}
}

// handleAction 提交行动，行动结果只发给操作者
func (s *GameServer) handleAction(ctx context.Context, c *Connection, payload json.RawMessage) {
	var req actionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(c, errors.Join(combat.ErrInvalidTarget, err))
		return
	}
	kind, err := combat.ParseActionKind(req.Kind)
	if err != nil {
		s.sendError(c, err)
		return
	}

	out, err := s.service.SubmitAction(ctx, c.PlayerID, c.ChannelID, combat.Action{Kind: kind, Arg: req.Arg})
	if err != nil {
		s.sendError(c, err)
		return
	}
	s.sendFrame(c, protocol.FrameResult, out.Result)
}

// handleWatch 发送当前快照
func (s *GameServer) handleWatch(c *Connection) {
	snap, err := s.service.Snapshot(c.ChannelID)
	if err != nil {
		s.sendError(c, err)
		return
	}
	s.sendFrame(c, protocol.FrameSnapshot, snap)
}

// sendFrame 向连接发送一帧
func (s *GameServer) sendFrame(c *Connection, frameType string, payload any) {
	data, err := protocol.EncodeFrame(frameType, payload, c.Encoding)
	if err != nil {
		slog.Error("编码消息失败", "type", frameType, "err", err)
		return
	}
	if !c.enqueue(data) {
		// 通道已满，关闭连接
		s.closeConnection(c)
	}
}

// sendError 向连接发送错误帧
func (s *GameServer) sendError(c *Connection, err error) {
	data, encErr := protocol.EncodeError(err.Error(), ErrorCode(err), c.Encoding)
	if encErr != nil {
		slog.Error("编码错误消息失败", "err", encErr)
		return
	}
	if !c.enqueue(data) {
		s.closeConnection(c)
	}
}
