// seed.go

package db

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// DemoSessions 生成演示用的单局记录，用于本地填充排行榜
func DemoSessions(rng *rand.Rand, players, perPlayer int, now time.Time) []*models.SessionRecord {
	causes := []models.EndCause{models.EndFell, models.EndFell, models.EndReset, models.EndDisconnect}

	out := make([]*models.SessionRecord, 0, players*perPlayer)
	for p := 1; p <= players; p++ {
		playerID := fmt.Sprintf("demo-%d", p)
		for i := 0; i < perPlayer; i++ {
			duration := time.Duration(15+rng.Intn(285)) * time.Second
			ended := now.Add(-time.Duration(rng.Intn(7*24)) * time.Hour)
			shots := rng.Intn(60)
			hits := 0
			if shots > 0 {
				hits = rng.Intn(shots + 1)
			}
			out = append(out, &models.SessionRecord{
				ID:           uuid.New().String(),
				PlayerID:     playerID,
				StartedAt:    ended.Add(-duration),
				EndedAt:      ended,
				DurationMs:   duration.Milliseconds(),
				Frames:       int64(duration / (16 * time.Millisecond)),
				Eliminations: rng.Intn(hits + 1),
				Hits:         hits,
				Shots:        shots,
				Pushes:       rng.Intn(30),
				Cause:        causes[rng.Intn(len(causes))],
			})
		}
	}
	return out
}
