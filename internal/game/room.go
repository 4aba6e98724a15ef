package game

import (
	"fmt"
	"math/rand"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/protocol"
)

// Room 单人游戏房间，循环独占一局模拟
type Room struct {
	ID        string
	PlayerID  string
	CreatedAt time.Time

	cfg      *config.Config
	recorder *Recorder
	log      zerolog.Logger

	// 模拟状态
	stateMutex   sync.Mutex
	state        *State
	status       models.RoomStatus
	recorded     bool
	lastActivity time.Time

	// 两帧之间收到的输入
	inputMutex     sync.Mutex
	pending        Input
	resetRequested bool

	connMutex sync.RWMutex
	conn      *PlayerConnection

	// 控制通道
	shutdown  chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
}

// NewRoom 创建新房间
func NewRoom(cfg *config.Config, playerID string, recorder *Recorder, rng *rand.Rand, now time.Time) (*Room, error) {
	state, err := NewState(cfg, rng, now)
	if err != nil {
		return nil, err
	}

	roomID := uuid.New().String()
	return &Room{
		ID:           roomID,
		PlayerID:     playerID,
		CreatedAt:    now,
		cfg:          cfg,
		recorder:     recorder,
		log:          logging.With("room").With().Str("room", roomID).Str("player", playerID).Logger(),
		state:        state,
		status:       models.RoomWaiting,
		lastActivity: now,
		shutdown:     make(chan struct{}),
	}, nil
}

// Start 启动房间循环
func (r *Room) Start() {
	r.startOnce.Do(func() {
		r.stateMutex.Lock()
		if r.status == models.RoomWaiting {
			r.status = models.RoomPlaying
		}
		r.stateMutex.Unlock()

		r.log.Info().Dur("tick", r.cfg.Server.TickInterval).Msg("房间启动")
		go r.gameLoop()
	})
}

// Stop 停止房间，未记录的一局按断开处理
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.shutdown)

		r.stateMutex.Lock()
		rec := r.finishLocked(models.EndDisconnect, time.Now())
		r.status = models.RoomClosed
		r.stateMutex.Unlock()

		r.recorder.Record(rec)
		r.log.Info().Msg("房间已停止")
	})
}

// Attach 绑定玩家连接
func (r *Room) Attach(conn *PlayerConnection) {
	r.connMutex.Lock()
	r.conn = conn
	r.connMutex.Unlock()
	r.touch(time.Now())
}

// Detach 解绑玩家连接
func (r *Room) Detach(conn *PlayerConnection) {
	r.connMutex.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.connMutex.Unlock()
}

// SubmitInput 记录一条输入，下一帧生效
func (r *Room) SubmitInput(in Input) {
	r.inputMutex.Lock()
	r.pending = r.pending.merge(in)
	r.inputMutex.Unlock()
	r.touch(time.Now())
}

// RequestReset 请求在下一帧重开
func (r *Room) RequestReset() {
	r.inputMutex.Lock()
	r.resetRequested = true
	r.inputMutex.Unlock()
	r.touch(time.Now())
}

func (r *Room) drainInput() (Input, bool) {
	r.inputMutex.Lock()
	defer r.inputMutex.Unlock()

	in, reset := r.pending, r.resetRequested
	// 移动方向保持到下一条输入
	r.pending = Input{Move: in.Move}
	r.resetRequested = false
	return in, reset
}

func (r *Room) touch(now time.Time) {
	r.stateMutex.Lock()
	r.lastActivity = now
	r.stateMutex.Unlock()
}

// gameLoop 游戏主循环
func (r *Room) gameLoop() {
	ticker := time.NewTicker(r.cfg.Server.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.Step(now)
		case <-r.shutdown:
			return
		}
	}
}

// Step 推进一帧并推送快照，单帧出错只记日志
func (r *Room) Step(now time.Time) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Msg("帧更新失败")
		}
	}()

	in, reset := r.drainInput()
	records, frame := r.advance(in, reset, now)

	for _, rec := range records {
		r.recorder.Record(rec)
	}
	if frame != nil {
		r.deliver(frame)
	}
}

// advance 在状态锁内推进模拟，返回需要保存的记录和待推送的帧
func (r *Room) advance(in Input, reset bool, now time.Time) ([]*models.SessionRecord, *protocol.GameFrame) {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()

	if r.status == models.RoomClosed {
		return nil, nil
	}

	var records []*models.SessionRecord
	var events []Event
	if reset {
		rec, err := r.resetLocked(now)
		if err != nil {
			r.log.Error().Err(err).Msg("重开失败")
			return nil, nil
		}
		records = append(records, rec)
		events = append(events, Event{Type: EventReset})
	}

	active := r.state.Active
	events = append(events, r.state.Tick(in, now)...)
	if active && !r.state.Active {
		r.status = models.RoomEnded
		records = append(records, r.finishLocked(models.EndFell, now))
		r.log.Info().
			Int64("frame", r.state.Frame).
			Int("eliminations", r.state.Stats.Eliminations).
			Msg("本局结束")
	}

	if !active && len(events) == 0 {
		return records, nil
	}
	return records, r.buildFrame(events, now)
}

// resetLocked 记录当前一局并重建模拟
func (r *Room) resetLocked(now time.Time) (*models.SessionRecord, error) {
	rec := r.finishLocked(models.EndReset, now)
	if err := r.state.Reset(now); err != nil {
		return nil, fmt.Errorf("重建模拟失败: %w", err)
	}
	r.recorded = false
	r.status = models.RoomPlaying
	r.log.Info().Msg("重新开始")
	return rec, nil
}

// finishLocked 生成本局记录，每局只生成一次，未开始的局不记录
func (r *Room) finishLocked(cause models.EndCause, now time.Time) *models.SessionRecord {
	if r.recorded || r.state.Frame == 0 {
		return nil
	}
	r.recorded = true
	return r.state.SessionRecord(r.PlayerID, cause, now)
}

func (r *Room) deliver(msg interface{}) {
	r.connMutex.RLock()
	conn := r.conn
	r.connMutex.RUnlock()

	if conn == nil {
		return
	}
	if err := conn.Deliver(msg); err != nil {
		logging.Sampled.Warn().Err(err).Str("room", r.ID).Msg("推送帧失败")
	}
}

// buildFrame 生成当前帧快照
func (r *Room) buildFrame(events []Event, now time.Time) *protocol.GameFrame {
	s := r.state
	pushCD, shotCD := s.Cooldowns(now)

	elapsed := now.Sub(s.StartedAt)
	if !s.EndedAt.IsZero() {
		elapsed = s.EndedAt.Sub(s.StartedAt)
	}

	return &protocol.GameFrame{
		Type:      protocol.MsgFrame,
		FrameId:   s.Frame,
		Timestamp: now.UnixMilli(),
		Active:    s.Active,
		Character: protocol.ConvertCharacterToProto(s.Character, s.IsPushing(now), pushCD, shotCD),
		Enemies:   protocol.ConvertEnemiesToProto(s.Enemies),
		Bullets:   protocol.ConvertBulletsToProto(s.Bullets),
		Obstacles: protocol.ConvertObstaclesToProto(s.Obstacles),
		Events:    convertEvents(events),
		Score: &protocol.ScoreInfo{
			Eliminations: int32(s.Stats.Eliminations),
			Hits:         int32(s.Stats.Hits),
			Shots:        int32(s.Stats.Shots),
			Pushes:       int32(s.Stats.Pushes),
			ElapsedMs:    elapsed.Milliseconds(),
		},
	}
}

func convertEvents(events []Event) []*protocol.FrameEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]*protocol.FrameEvent, len(events))
	for i, ev := range events {
		out[i] = &protocol.FrameEvent{
			Type:     string(ev.Type),
			EnemyId:  ev.EnemyID,
			Targets:  ev.Targets,
			Position: protocol.ConvertVec3(ev.Position),
		}
	}
	return out
}

// Welcome 连接建立后发送的房间信息
func (r *Room) Welcome(codec string) *protocol.Welcome {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()

	return &protocol.Welcome{
		Type:     protocol.MsgWelcome,
		RoomId:   r.ID,
		PlayerId: r.PlayerID,
		Codec:    codec,
		Platform: protocol.ConvertPlatformToProto(r.state.Platform),
	}
}

// Status 房间状态
func (r *Room) Status() models.RoomStatus {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()
	return r.status
}

// Info 房间概要
func (r *Room) Info() models.RoomInfo {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()

	return models.RoomInfo{
		ID:           r.ID,
		PlayerID:     r.PlayerID,
		Status:       r.status,
		CreatedAt:    r.CreatedAt,
		LastActivity: r.lastActivity,
		Frame:        r.state.Frame,
		Enemies:      len(r.state.Enemies),
		Eliminations: r.state.Stats.Eliminations,
	}
}

// ShouldCleanup 检查房间是否应该被清理
func (r *Room) ShouldCleanup(now time.Time) bool {
	r.connMutex.RLock()
	attached := r.conn != nil
	r.connMutex.RUnlock()

	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()

	if r.status == models.RoomClosed {
		return true
	}
	// 没有连接且超过空闲时间
	return !attached && now.Sub(r.lastActivity) > r.cfg.Server.IdleTimeout
}
