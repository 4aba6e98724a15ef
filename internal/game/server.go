package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/auth"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/protocol"
)

var (
	// ErrRoomFull 房间数量已达上限
	ErrRoomFull = errors.New("房间数量已达上限")
	// ErrRoomNotFound 房间不存在
	ErrRoomNotFound = errors.New("房间不存在")

	errConnectionClosed = errors.New("连接已关闭")
	errSendBufferFull   = errors.New("发送缓冲已满")
)

// GameServer 游戏服务器
type GameServer struct {
	config      *config.Config
	rooms       map[string]*Room
	roomsMutex  sync.RWMutex
	httpServer  *http.Server
	connections map[string]*PlayerConnection
	connMutex   sync.RWMutex
	tokens      *auth.TokenIssuer
	recorder    *Recorder
	log         zerolog.Logger

	// 关闭信号
	shutdown  chan struct{}
	isRunning bool
}

// outbound 待发送的一条消息
type outbound struct {
	data   []byte
	binary bool
}

// PlayerConnection 玩家连接
type PlayerConnection struct {
	ID       string
	PlayerID string
	Room     *Room

	// 通信通道
	Send chan outbound

	mu     sync.Mutex
	codec  protocol.Codec
	closed bool
}

func newPlayerConnection(playerID string, codec protocol.Codec) *PlayerConnection {
	return &PlayerConnection{
		ID:       uuid.New().String(),
		PlayerID: playerID,
		Send:     make(chan outbound, 256),
		codec:    codec,
	}
}

// Codec 当前编码
func (c *PlayerConnection) Codec() protocol.Codec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codec
}

// SetCodec 切换编码，之后的消息按新编码收发
func (c *PlayerConnection) SetCodec(codec protocol.Codec) {
	c.mu.Lock()
	c.codec = codec
	c.mu.Unlock()
}

// Deliver 编码消息并放入发送队列，队列满时丢弃
func (c *PlayerConnection) Deliver(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errConnectionClosed
	}
	data, err := c.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	select {
	case c.Send <- outbound{data: data, binary: c.codec.Binary()}:
		return nil
	default:
		return errSendBufferFull
	}
}

// close 关闭发送通道，只有第一次调用返回 true
func (c *PlayerConnection) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	close(c.Send)
	return true
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg *config.Config, recorder *Recorder) *GameServer {
	return &GameServer{
		config:      cfg,
		rooms:       make(map[string]*Room),
		connections: make(map[string]*PlayerConnection),
		tokens:      auth.NewTokenIssuer(cfg.Auth),
		recorder:    recorder,
		log:         logging.With("game"),
		shutdown:    make(chan struct{}),
	}
}

// Start 启动游戏服务器
func (s *GameServer) Start() error {
	if s.isRunning {
		return fmt.Errorf("服务器已经在运行")
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.GamePort),
		Handler: s.Handler(),
	}

	go func() {
		s.log.Info().Int("port", s.config.Server.GamePort).Msg("游戏服务器启动")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal().Err(err).Msg("HTTP服务器错误")
		}
	}()

	// 启动房间管理
	go s.roomManager()

	s.isRunning = true
	return nil
}

// Stop 停止游戏服务器
func (s *GameServer) Stop() error {
	if !s.isRunning {
		return nil
	}

	close(s.shutdown)

	s.roomsMutex.Lock()
	for id, room := range s.rooms {
		room.Stop()
		delete(s.rooms, id)
	}
	s.roomsMutex.Unlock()

	s.connMutex.Lock()
	for id, conn := range s.connections {
		conn.close()
		delete(s.connections, id)
	}
	s.connMutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}

	s.isRunning = false
	s.log.Info().Msg("游戏服务器已停止")
	return nil
}

// Handler 创建HTTP处理器
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket 连接端点
	mux.HandleFunc("/ws", s.handleWSConnection)

	// 房间列表
	mux.HandleFunc("/rooms", s.handleRooms)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

func (s *GameServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.ListRooms())
}

// roomManager 房间管理器
func (s *GameServer) roomManager() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.cleanupRooms(now)
		case <-s.shutdown:
			return
		}
	}
}

// cleanupRooms 清理空闲房间
func (s *GameServer) cleanupRooms(now time.Time) int {
	s.roomsMutex.Lock()
	var stale []*Room
	for id, room := range s.rooms {
		if room.ShouldCleanup(now) {
			stale = append(stale, room)
			delete(s.rooms, id)
		}
	}
	s.roomsMutex.Unlock()

	for _, room := range stale {
		s.log.Info().Str("room", room.ID).Msg("清理空闲房间")
		room.Stop()
	}
	return len(stale)
}

// CreateRoom 为玩家创建单人房间，房间由调用方启动
func (s *GameServer) CreateRoom(playerID string) (*Room, error) {
	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()

	if limit := s.config.Server.MaxRoomCount; limit > 0 && len(s.rooms) >= limit {
		return nil, ErrRoomFull
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	room, err := NewRoom(s.config, playerID, s.recorder, rng, time.Now())
	if err != nil {
		return nil, err
	}
	s.rooms[room.ID] = room

	s.log.Info().Str("room", room.ID).Str("player", playerID).Msg("创建房间")
	return room, nil
}

// GetRoom 获取房间
func (s *GameServer) GetRoom(roomID string) (*Room, error) {
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()

	room, exists := s.rooms[roomID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return room, nil
}

// RemoveRoom 停止并移除房间
func (s *GameServer) RemoveRoom(roomID string) {
	s.roomsMutex.Lock()
	room, exists := s.rooms[roomID]
	delete(s.rooms, roomID)
	s.roomsMutex.Unlock()

	if exists {
		room.Stop()
	}
}

// ListRooms 列出所有房间
func (s *GameServer) ListRooms() []models.RoomInfo {
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()

	rooms := make([]models.RoomInfo, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room.Info())
	}
	return rooms
}
