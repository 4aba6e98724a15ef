// stats.go

package models

import (
	"time"
)

// EndCause 一局结束的原因
type EndCause string

const (
	// EndFell 角色坠落
	EndFell EndCause = "fell"
	// EndReset 玩家主动重开
	EndReset EndCause = "reset"
	// EndDisconnect 连接断开
	EndDisconnect EndCause = "disconnect"
)

// SessionRecord 单局记录
type SessionRecord struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"player_id"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	DurationMs   int64     `json:"duration_ms"`
	Frames       int64     `json:"frames"`
	Eliminations int       `json:"eliminations"`
	Hits         int       `json:"hits"`
	Shots        int       `json:"shots"`
	Pushes       int       `json:"pushes"`
	Cause        EndCause  `json:"cause"`
}

// Accuracy 命中率
func (r *SessionRecord) Accuracy() float64 {
	if r.Shots == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Shots)
}

// PlayerSummary 玩家历史汇总
type PlayerSummary struct {
	PlayerID          string `json:"player_id"`
	Sessions          int64  `json:"sessions"`
	TotalEliminations int64  `json:"total_eliminations"`
	BestEliminations  int64  `json:"best_eliminations"`
	LongestMs         int64  `json:"longest_ms"`
	TotalShots        int64  `json:"total_shots"`
	TotalHits         int64  `json:"total_hits"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	PlayerID string  `json:"player_id"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// LeaderboardType 排行榜类型
type LeaderboardType string

const (
	// LeaderboardEliminations 单局最多淘汰
	LeaderboardEliminations LeaderboardType = "eliminations"
	// LeaderboardSurvival 单局最长存活(毫秒)
	LeaderboardSurvival LeaderboardType = "survival"
)

// ParseLeaderboardType 解析排行榜类型，空值取淘汰榜
func ParseLeaderboardType(s string) (LeaderboardType, bool) {
	switch LeaderboardType(s) {
	case LeaderboardEliminations, "":
		return LeaderboardEliminations, true
	case LeaderboardSurvival:
		return LeaderboardSurvival, true
	default:
		return "", false
	}
}

// 注意：表结构定义已移至 pkg/db/schema.go 统一管理
