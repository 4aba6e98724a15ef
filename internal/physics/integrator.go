// integrator.go

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// Integrator 处理重力、落地和坠落判定
type Integrator struct {
	cfg config.PhysicsConfig
}

// NewIntegrator 创建积分器
func NewIntegrator(cfg config.PhysicsConfig) *Integrator {
	return &Integrator{cfg: cfg}
}

// Resting 实体是否静止在平台表面上
func (in *Integrator) Resting(b *models.Body, p *models.Platform) bool {
	return b.VerticalVelocity == 0 &&
		p.Contains(b.Horizontal()) &&
		math.Abs(b.Position.Y()-p.SurfaceHeight()) < in.cfg.RestEpsilon
}

// Apply 对角色执行一帧重力积分，返回是否仍在场内
func (in *Integrator) Apply(b *models.Body, p *models.Platform) bool {
	return in.step(b, p, true)
}

// ApplyEnemy 对敌人执行一帧重力积分，被淘汰的敌人不会再落地
func (in *Integrator) ApplyEnemy(e *models.Enemy, p *models.Platform) bool {
	return in.step(&e.Body, p, !e.Eliminated)
}

func (in *Integrator) step(b *models.Body, p *models.Platform, canLand bool) bool {
	if !canLand || !in.Resting(b, p) {
		b.VerticalVelocity -= in.cfg.Gravity
		b.Position[1] += b.VerticalVelocity * in.cfg.TimeScale
		b.Grounded = false
	}

	surface := p.SurfaceHeight()
	y := b.Position.Y()
	if canLand &&
		y <= surface &&
		surface-y <= in.cfg.LandingDepth &&
		b.VerticalVelocity <= 0 &&
		p.Contains(b.Horizontal()) {
		b.Position[1] = surface
		b.VerticalVelocity = 0
		b.Grounded = true
	}

	if canLand {
		b.Falling = !b.Grounded && (b.VerticalVelocity < 0 || b.Position.Y() < surface)
	} else {
		b.Falling = true
	}

	return b.Position.Y() >= p.Center.Y()-in.cfg.FatalFallDepth
}

// ApplyPush 按击退速度平移一帧并衰减
func (in *Integrator) ApplyPush(b *models.Body) {
	if !b.IsPushed() {
		return
	}
	b.MoveHorizontal(b.PushVelocity.Mul(in.cfg.TimeScale))
	b.PushVelocity = DecayPush(b.PushVelocity, in.cfg.PushDeceleration, in.cfg.PushStopThreshold)
}

// DecayPush 按比例衰减击退速度，低于阈值时归零
func DecayPush(v mgl64.Vec2, deceleration, threshold float64) mgl64.Vec2 {
	v = v.Mul(1 - deceleration)
	if v.Len() < threshold {
		return mgl64.Vec2{}
	}
	return v
}

// Jump 着地时起跳
func Jump(b *models.Body, strength float64) bool {
	if !b.Grounded {
		return false
	}
	b.VerticalVelocity = strength
	b.Grounded = false
	return true
}
