// websocket.go

package game

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/protocol"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage 客户端消息，按连接当前编码解析
type ClientMessage struct {
	Type  string `json:"type" msgpack:"type"`
	Input *Input `json:"input,omitempty" msgpack:"input,omitempty"`
	Codec string `json:"codec,omitempty" msgpack:"codec,omitempty"`
}

// handleWSConnection 处理WebSocket连接
func (s *GameServer) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.tokens.Verify(r.URL.Query().Get("token"), time.Now())
	if err != nil {
		http.Error(w, "未授权", http.StatusUnauthorized)
		return
	}

	codecName := r.URL.Query().Get("codec")
	if codecName == "" {
		codecName = s.config.Server.FrameCodec
	}
	codec, err := protocol.NewCodec(codecName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	room, err := s.CreateRoom(playerID)
	if err != nil {
		if errors.Is(err, ErrRoomFull) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		s.log.Error().Err(err).Msg("创建房间失败")
		http.Error(w, "创建房间失败", http.StatusInternalServerError)
		return
	}

	// 升级HTTP连接为WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket升级失败")
		s.RemoveRoom(room.ID)
		return
	}

	player := newPlayerConnection(playerID, codec)
	player.Room = room

	s.connMutex.Lock()
	s.connections[player.ID] = player
	s.connMutex.Unlock()

	room.Attach(player)
	if err := player.Deliver(room.Welcome(codec.Name())); err != nil {
		s.log.Warn().Err(err).Str("conn", player.ID).Msg("发送欢迎消息失败")
	}
	room.Start()

	s.log.Info().Str("player", playerID).Str("conn", player.ID).Str("codec", codec.Name()).Msg("玩家已连接")

	go s.readPump(conn, player)
	go s.writePump(conn, player)
}

// readPump 从WebSocket读取数据
func (s *GameServer) readPump(conn *websocket.Conn, player *PlayerConnection) {
	defer func() {
		s.closeConnection(player)
		conn.Close()
	}()

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
				s.log.Warn().Err(err).Str("conn", player.ID).Msg("WebSocket错误")
			}
			break
		}

		s.handleMessage(player, message)
	}
}

// writePump 向WebSocket写入数据
func (s *GameServer) writePump(conn *websocket.Conn, player *PlayerConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-player.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			messageType := websocket.TextMessage
			if msg.binary {
				messageType = websocket.BinaryMessage
			}
			if err := conn.WriteMessage(messageType, msg.data); err != nil {
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

// closeConnection 关闭玩家连接，单人房间随连接一起关闭
func (s *GameServer) closeConnection(player *PlayerConnection) {
	s.connMutex.Lock()
	if _, ok := s.connections[player.ID]; !ok {
		s.connMutex.Unlock()
		return
	}
	delete(s.connections, player.ID)
	s.connMutex.Unlock()

	if player.Room != nil {
		player.Room.Detach(player)
		s.RemoveRoom(player.Room.ID)
	}
	player.close()

	s.log.Info().Str("player", player.PlayerID).Str("conn", player.ID).Msg("玩家已断开连接")
}

// handleMessage 处理接收到的消息
func (s *GameServer) handleMessage(player *PlayerConnection, data []byte) {
	var msg ClientMessage
	if err := player.Codec().Unmarshal(data, &msg); err != nil {
		s.sendError(player, "无法解析消息", "BAD_MESSAGE")
		return
	}
	room := player.Room
	if room == nil {
		return
	}

	switch msg.Type {
	case protocol.MsgInput:
		if msg.Input == nil {
			s.sendError(player, "缺少输入", "BAD_INPUT")
			return
		}
		room.SubmitInput(*msg.Input)
	case protocol.MsgReset:
		room.RequestReset()
	case protocol.MsgCodec:
		codec, err := protocol.NewCodec(msg.Codec)
		if err != nil {
			s.sendError(player, err.Error(), "BAD_CODEC")
			return
		}
		player.SetCodec(codec)
		if err := player.Deliver(room.Welcome(codec.Name())); err != nil {
			s.log.Warn().Err(err).Str("conn", player.ID).Msg("发送欢迎消息失败")
		}
	default:
		s.sendError(player, "未知消息类型: "+msg.Type, "UNKNOWN_TYPE")
	}
}

func (s *GameServer) sendError(player *PlayerConnection, message, code string) {
	if err := player.Deliver(protocol.CreateErrorResponse(message, code)); err != nil {
		s.log.Debug().Err(err).Str("conn", player.ID).Msg("发送错误消息失败")
	}
}
