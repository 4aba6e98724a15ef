// sessions.go

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// ErrNoDatabase 数据库未初始化
var ErrNoDatabase = errors.New("数据库未初始化")

// sessionRow session_records 表的行
type sessionRow struct {
	ID           string    `gorm:"primaryKey;size:36"`
	PlayerID     string    `gorm:"size:64;not null;index"`
	StartedAt    time.Time `gorm:"not null"`
	EndedAt      time.Time `gorm:"not null;index"`
	DurationMs   int64
	Frames       int64
	Eliminations int
	Hits         int
	Shots        int
	Pushes       int
	Cause        string `gorm:"size:16;not null"`
}

func (sessionRow) TableName() string { return "session_records" }

func toRow(rec *models.SessionRecord) sessionRow {
	return sessionRow{
		ID:           rec.ID,
		PlayerID:     rec.PlayerID,
		StartedAt:    rec.StartedAt.UTC(),
		EndedAt:      rec.EndedAt.UTC(),
		DurationMs:   rec.DurationMs,
		Frames:       rec.Frames,
		Eliminations: rec.Eliminations,
		Hits:         rec.Hits,
		Shots:        rec.Shots,
		Pushes:       rec.Pushes,
		Cause:        string(rec.Cause),
	}
}

func (r sessionRow) record() models.SessionRecord {
	return models.SessionRecord{
		ID:           r.ID,
		PlayerID:     r.PlayerID,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
		DurationMs:   r.DurationMs,
		Frames:       r.Frames,
		Eliminations: r.Eliminations,
		Hits:         r.Hits,
		Shots:        r.Shots,
		Pushes:       r.Pushes,
		Cause:        models.EndCause(r.Cause),
	}
}

// SessionRepository 单局记录存储
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建单局记录存储
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Migrate 按模型建表，SQLite 和测试使用；Postgres 由 CreateAllTablesSQL 建表
func (r *SessionRepository) Migrate() error {
	if r.db == nil {
		return ErrNoDatabase
	}
	return r.db.AutoMigrate(&sessionRow{})
}

// SaveSession 保存一局记录
func (r *SessionRepository) SaveSession(ctx context.Context, rec *models.SessionRecord) error {
	if r.db == nil {
		return ErrNoDatabase
	}
	row := toRow(rec)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("保存单局记录失败: %w", err)
	}
	return nil
}

// ListSessions 按结束时间倒序列出玩家最近的记录
func (r *SessionRepository) ListSessions(ctx context.Context, playerID string, limit int) ([]models.SessionRecord, error) {
	if r.db == nil {
		return nil, ErrNoDatabase
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []sessionRow
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("ended_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询单局记录失败: %w", err)
	}

	out := make([]models.SessionRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out, nil
}

// PlayerSummary 汇总玩家的历史记录
func (r *SessionRepository) PlayerSummary(ctx context.Context, playerID string) (*models.PlayerSummary, error) {
	if r.db == nil {
		return nil, ErrNoDatabase
	}

	summary := models.PlayerSummary{PlayerID: playerID}
	err := r.db.WithContext(ctx).
		Model(&sessionRow{}).
		Select(`COUNT(*) AS sessions,
			COALESCE(SUM(eliminations), 0) AS total_eliminations,
			COALESCE(MAX(eliminations), 0) AS best_eliminations,
			COALESCE(MAX(duration_ms), 0) AS longest_ms,
			COALESCE(SUM(shots), 0) AS total_shots,
			COALESCE(SUM(hits), 0) AS total_hits`).
		Where("player_id = ?", playerID).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("汇总单局记录失败: %w", err)
	}
	summary.PlayerID = playerID
	return &summary, nil
}

// TopPlayers 按玩家单局最好成绩排序，Redis 不可用时替代排行榜
func (r *SessionRepository) TopPlayers(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	if r.db == nil {
		return nil, ErrNoDatabase
	}
	if limit <= 0 {
		limit = 10
	}

	column := "eliminations"
	if scoreType == models.LeaderboardSurvival {
		column = "duration_ms"
	}

	var rows []struct {
		PlayerID string
		Score    float64
	}
	err := r.db.WithContext(ctx).
		Model(&sessionRow{}).
		Select("player_id, MAX(" + column + ") AS score").
		Group("player_id").
		Order("score DESC, player_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询排行榜失败: %w", err)
	}

	entries := make([]models.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = models.LeaderboardEntry{PlayerID: row.PlayerID, Score: row.Score, Rank: i + 1}
	}
	return entries, nil
}
