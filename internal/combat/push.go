// push.go

package combat

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// InPushCone 前向矩形判定：0 < 前向距离 < distance 且横向偏移 < distance/2
func InPushCone(origin, facing, target mgl64.Vec3, distance float64) bool {
	toTarget := flatten(target.Sub(origin))
	dir := flatten(facing)
	if dir.Len() == 0 {
		return false
	}
	dir = dir.Normalize()

	forward := toTarget.Dot(dir)
	if forward <= 0 || forward >= distance {
		return false
	}
	perpendicular := toTarget.Sub(dir.Mul(forward)).Len()
	return perpendicular < distance/2
}

// SizeFactor 最小尺寸为1，最大尺寸为0
func (c *Combat) SizeFactor(size float64) float64 {
	span := c.enemy.MaxSize - c.enemy.MinSize
	f := 1 - (size-c.enemy.MinSize)/span
	return mgl64.Clamp(f, 0, 1)
}

// PushForce 按尺寸调整后的推力，介于 70%-100%
func (c *Combat) PushForce(size float64) float64 {
	return c.cfg.PushForce * (0.7 + c.SizeFactor(size)*0.3)
}

// Push 推击。冷却中返回 false；否则给锥形范围内的敌人设置击退速度并返回受影响的敌人
func (c *Combat) Push(ch *models.Character, enemies []*models.Enemy, now time.Time) ([]*models.Enemy, bool) {
	if !ReadyCooldown(&ch.Cooldowns, AbilityPush, c.cfg.PushCooldown, now) {
		return nil, false
	}
	ch.LastPushAt = now

	facing := flatten(ch.Facing)
	if facing.Len() == 0 {
		facing = flatten(models.DefaultFacing)
	}
	facing = facing.Normalize()
	facing3 := mgl64.Vec3{facing.X(), 0, facing.Y()}

	var affected []*models.Enemy
	for _, e := range enemies {
		if !e.Active() {
			continue
		}
		if !InPushCone(ch.Position, facing3, e.Position, c.cfg.PushDistance) {
			continue
		}
		e.PushVelocity = facing.Mul(c.PushForce(e.Size()))
		e.Direction = facing3
		affected = append(affected, e)
	}
	return affected, true
}

// IsPushing 推击姿态是否仍在持续
func (c *Combat) IsPushing(ch *models.Character, now time.Time) bool {
	if ch.LastPushAt.IsZero() {
		return false
	}
	return now.Sub(ch.LastPushAt) < c.cfg.PushPose
}
