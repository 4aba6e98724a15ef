// combat.go

package combat

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// Effects 表现层通知，只发送不等待
type Effects interface {
	// HitEffect 在命中位置播放特效
	HitEffect(position mgl64.Vec3)
	// EnemyRecolor 被淘汰的敌人改变颜色
	EnemyRecolor(enemyID string)
}

// Combat 推击、射击和淘汰
type Combat struct {
	cfg   config.CombatConfig
	enemy config.EnemyConfig
	rng   *rand.Rand
}

// New 创建战斗模块，rng 由调用方提供以便复现
func New(cfg *config.Config, rng *rand.Rand) *Combat {
	return &Combat{
		cfg:   cfg.Combat,
		enemy: cfg.Enemy,
		rng:   rng,
	}
}

// Eliminate 淘汰敌人：向上弹起并给一个随机水平击退，之后由重力带出场外
func (c *Combat) Eliminate(e *models.Enemy, byBullet bool) {
	if e.Eliminated {
		return
	}
	e.Eliminated = true
	e.Falling = true
	e.Grounded = false
	e.HitByBullet = e.HitByBullet || byBullet
	e.VerticalVelocity = c.cfg.KillUpwardVelocity
	e.PushVelocity = mgl64.Vec2{
		(c.rng.Float64() - 0.5) * c.cfg.KillScatter,
		(c.rng.Float64() - 0.5) * c.cfg.KillScatter,
	}
}

func flatten(v mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{v.X(), v.Z()}
}
