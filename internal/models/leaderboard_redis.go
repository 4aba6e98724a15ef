package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisLeaderboard Redis排行榜管理器
type RedisLeaderboard struct {
	client *redis.Client
}

// NewRedisLeaderboard 创建Redis排行榜管理器
func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client}
}

// 排行榜Redis键名
const (
	LeaderboardEliminationsKey = "leaderboard:eliminations"
	LeaderboardSurvivalKey     = "leaderboard:survival"
)

// SubmitSession 提交一局成绩，只保留玩家的最好成绩
func (rl *RedisLeaderboard) SubmitSession(ctx context.Context, rec *SessionRecord) error {
	if err := rl.keepBest(ctx, LeaderboardEliminations, rec.PlayerID, float64(rec.Eliminations)); err != nil {
		return err
	}
	return rl.keepBest(ctx, LeaderboardSurvival, rec.PlayerID, float64(rec.DurationMs))
}

// keepBest 新分数高于已有分数时才写入
func (rl *RedisLeaderboard) keepBest(ctx context.Context, scoreType LeaderboardType, playerID string, score float64) error {
	key := LeaderboardKey(scoreType)

	current, err := rl.client.ZScore(ctx, key, playerID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("读取排行榜分数失败: %w", err)
	}
	if err == nil && current >= score {
		return nil
	}

	if err := rl.client.ZAdd(ctx, key, &redis.Z{Score: score, Member: playerID}).Err(); err != nil {
		return fmt.Errorf("更新排行榜失败: %w", err)
	}
	return nil
}

// GetLeaderboard 获取排行榜
func (rl *RedisLeaderboard) GetLeaderboard(ctx context.Context, scoreType LeaderboardType, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	key := LeaderboardKey(scoreType)

	// 按分数降序
	members, err := rl.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, member := range members {
		playerID, ok := member.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			PlayerID: playerID,
			Score:    member.Score,
			Rank:     i + 1,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家排名，不在榜上返回-1
func (rl *RedisLeaderboard) GetPlayerRank(ctx context.Context, playerID string, scoreType LeaderboardType) (int, error) {
	rank, err := rl.client.ZRevRank(ctx, LeaderboardKey(scoreType), playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}

	// Redis排名从0开始
	return int(rank) + 1, nil
}

// LeaderboardKey 获取排行榜键名
func LeaderboardKey(scoreType LeaderboardType) string {
	switch scoreType {
	case LeaderboardSurvival:
		return LeaderboardSurvivalKey
	default:
		return LeaderboardEliminationsKey
	}
}
