// session.go

package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// SessionStore 单局记录持久化，由 pkg/db.SessionRepository 实现
type SessionStore interface {
	SaveSession(ctx context.Context, rec *models.SessionRecord) error
}

// ScoreBoard 排行榜，由 models.RedisLeaderboard 实现
type ScoreBoard interface {
	SubmitSession(ctx context.Context, rec *models.SessionRecord) error
}

// Recorder 在后台保存结束的单局，存储不可用时只记日志
type Recorder struct {
	store   SessionStore
	board   ScoreBoard
	timeout time.Duration
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewRecorder 创建记录器，store 和 board 均可为 nil
func NewRecorder(store SessionStore, board ScoreBoard) *Recorder {
	return &Recorder{
		store:   store,
		board:   board,
		timeout: 5 * time.Second,
		log:     logging.With("recorder"),
	}
}

// Record 异步保存一局记录
func (r *Recorder) Record(rec *models.SessionRecord) {
	if r == nil || rec == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.save(rec)
	}()
}

func (r *Recorder) save(rec *models.SessionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if r.store != nil {
		if err := r.store.SaveSession(ctx, rec); err != nil {
			r.log.Error().Err(err).Str("session", rec.ID).Msg("保存单局记录失败")
		}
	}
	if r.board != nil {
		if err := r.board.SubmitSession(ctx, rec); err != nil {
			r.log.Error().Err(err).Str("session", rec.ID).Msg("提交排行榜失败")
		}
	}
	r.log.Debug().
		Str("session", rec.ID).
		Str("player", rec.PlayerID).
		Int("eliminations", rec.Eliminations).
		Int64("duration_ms", rec.DurationMs).
		Str("cause", string(rec.Cause)).
		Msg("单局已记录")
}

// Wait 等待所有保存完成
func (r *Recorder) Wait() {
	if r != nil {
		r.wg.Wait()
	}
}

// SessionRecord 根据当前统计生成单局记录
func (s *State) SessionRecord(playerID string, cause models.EndCause, now time.Time) *models.SessionRecord {
	ended := s.EndedAt
	if ended.IsZero() {
		ended = now
	}
	return &models.SessionRecord{
		ID:           uuid.New().String(),
		PlayerID:     playerID,
		StartedAt:    s.StartedAt,
		EndedAt:      ended,
		DurationMs:   ended.Sub(s.StartedAt).Milliseconds(),
		Frames:       s.Frame,
		Eliminations: s.Stats.Eliminations,
		Hits:         s.Stats.Hits,
		Shots:        s.Stats.Shots,
		Pushes:       s.Stats.Pushes,
		Cause:        cause,
	}
}
