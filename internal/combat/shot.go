// shot.go

package combat

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/physics"
)

const aimEpsilon = 1e-9

// Ray 从观察者出发穿过指针位置的射线
type Ray struct {
	Origin    mgl64.Vec3 `json:"origin" msgpack:"origin"`
	Direction mgl64.Vec3 `json:"direction" msgpack:"direction"`
}

// ResolveAim 射线与 y=planeY 平面求交，返回从 from 指向交点的水平单位向量。
// 射线无效(含 NaN/Inf)、与平面平行、交点在射线背后或与 from 重合时退回 facing。
func ResolveAim(ray *Ray, planeY float64, from, facing mgl64.Vec3) mgl64.Vec3 {
	fallback := horizontalUnit(facing)
	if fallback.Len() == 0 {
		fallback = models.DefaultFacing
	}
	if ray == nil || !models.IsFinite(ray.Origin) || !models.IsFinite(ray.Direction) ||
		math.Abs(ray.Direction.Y()) < aimEpsilon {
		return fallback
	}

	t := (planeY - ray.Origin.Y()) / ray.Direction.Y()
	if t < 0 || math.IsInf(t, 0) || math.IsNaN(t) {
		return fallback
	}
	hit := ray.Origin.Add(ray.Direction.Mul(t))
	dir := horizontalUnit(hit.Sub(from))
	if dir.Len() == 0 {
		return fallback
	}
	return dir
}

// Fire 射击。冷却中返回 false；否则生成子弹并把角色转向瞄准方向
func (c *Combat) Fire(ch *models.Character, aim *Ray, planeY float64, now time.Time) (*models.Bullet, bool) {
	if !ReadyCooldown(&ch.Cooldowns, AbilityShot, c.cfg.ShotCooldown, now) {
		return nil, false
	}
	dir := ResolveAim(aim, planeY, ch.Position, ch.Facing)
	ch.Facing = dir

	return &models.Bullet{
		ID:        uuid.New().String(),
		Position:  ch.Position.Add(dir.Mul(c.cfg.MuzzleOffset)),
		Direction: dir,
		CreatedAt: now,
	}, true
}

// UpdateBullets 推进子弹并处理寿命、命中和出界，返回仍存活的子弹
func (c *Combat) UpdateBullets(bullets []*models.Bullet, enemies []*models.Enemy, p *models.Platform, now time.Time, fx Effects) []*models.Bullet {
	alive := bullets[:0]
	for _, b := range bullets {
		if b.Dead {
			continue
		}
		b.Position = b.Position.Add(b.Direction.Mul(c.cfg.BulletSpeed))

		if now.Sub(b.CreatedAt) >= c.cfg.BulletLifetime {
			b.Dead = true
			continue
		}

		if e := physics.BulletHit(b, c.cfg.BulletRadius, enemies); e != nil {
			b.Dead = true
			c.Eliminate(e, true)
			if fx != nil {
				fx.HitEffect(b.Position)
				fx.EnemyRecolor(e.ID)
			}
			continue
		}

		if !p.Contains(mgl64.Vec2{b.Position.X(), b.Position.Z()}) {
			b.Dead = true
			continue
		}
		alive = append(alive, b)
	}
	for i := len(alive); i < len(bullets); i++ {
		bullets[i] = nil
	}
	return alive
}

// horizontalUnit 水平单位向量，无法归一化时返回零向量
func horizontalUnit(v mgl64.Vec3) mgl64.Vec3 {
	v[1] = 0
	if !models.IsFinite(v) || v.Len() < aimEpsilon {
		return mgl64.Vec3{}
	}
	n := v.Normalize()
	if !models.IsFinite(n) || n.Len() < 0.5 {
		return mgl64.Vec3{}
	}
	return n
}
