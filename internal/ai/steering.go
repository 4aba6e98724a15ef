// steering.go

package ai

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// Mode 敌人行为模式
type Mode string

const (
	// ModeWander 随机游走，每隔 1-3 秒换一次方向
	ModeWander Mode = "wander"
	// ModeChase 朝玩家移动
	ModeChase Mode = "chase"
)

// Steering 敌人自主移动
type Steering struct {
	cfg  config.EnemyConfig
	mode Mode
	rng  *rand.Rand
}

// NewSteering 创建敌人行为控制
func NewSteering(cfg config.EnemyConfig, rng *rand.Rand) *Steering {
	return &Steering{cfg: cfg, mode: Mode(cfg.Steering), rng: rng}
}

// SpeedFactor 尺寸越大越慢，最大尺寸时速度减半
func (s *Steering) SpeedFactor(size float64) float64 {
	norm := (size - s.cfg.MinSize) / (s.cfg.MaxSize - s.cfg.MinSize)
	return 1 - mgl64.Clamp(norm, 0, 1)*0.5
}

// RandomSize 在尺寸范围内随机
func (s *Steering) RandomSize() float64 {
	return s.cfg.MinSize + s.rng.Float64()*(s.cfg.MaxSize-s.cfg.MinSize)
}

// RandomDirection 随机水平单位向量
func (s *Steering) RandomDirection() mgl64.Vec3 {
	for {
		v := mgl64.Vec3{s.rng.Float64()*2 - 1, 0, s.rng.Float64()*2 - 1}
		if v.Len() > 1e-6 {
			return v.Normalize()
		}
	}
}

// NextTurn 下一次换方向的时间
func (s *Steering) NextTurn(now time.Time) time.Time {
	span := s.cfg.TurnMax - s.cfg.TurnMin
	if span <= 0 {
		return now.Add(s.cfg.TurnMin)
	}
	return now.Add(s.cfg.TurnMin + time.Duration(s.rng.Int63n(int64(span))))
}

// Steer 更新敌人方向并移动一帧。被击退、下落或已淘汰的敌人不自主移动
func (s *Steering) Steer(e *models.Enemy, target mgl64.Vec3, now time.Time) {
	if !e.Active() || e.IsPushed() {
		return
	}

	switch s.mode {
	case ModeChase:
		to := target.Sub(e.Position)
		to[1] = 0
		if to.Len() > e.Size() {
			e.Direction = to.Normalize()
		}
	default:
		if e.NextTurnAt.IsZero() {
			e.NextTurnAt = s.NextTurn(now)
		} else if now.After(e.NextTurnAt) {
			e.Direction = s.RandomDirection()
			e.NextTurnAt = s.NextTurn(now)
		}
	}

	e.Facing = e.Direction
	e.Position = e.Position.Add(e.Direction.Mul(s.cfg.Speed * s.SpeedFactor(e.Size())))
}
