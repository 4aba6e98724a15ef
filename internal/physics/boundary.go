// boundary.go

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// Enforcer 平台水平边界约束
type Enforcer struct {
	restitution float64
}

// NewEnforcer 创建边界约束
func NewEnforcer(cfg config.PhysicsConfig) *Enforcer {
	return &Enforcer{restitution: cfg.Restitution}
}

// Enforce 把实体限制在平台内。圆形平台上被击退或正在坠落的实体不受约束。
// direction 为敌人的移动方向，角色传 nil。
func (e *Enforcer) Enforce(b *models.Body, direction *mgl64.Vec3, p *models.Platform, boundary float64) {
	if p.Shape == models.PlatformRect {
		e.reflectRect(b, direction, p, boundary)
		return
	}
	if b.IsPushed() || b.Falling {
		return
	}
	ClampCircle(b, mgl64.Vec2{p.Center.X(), p.Center.Z()}, boundary)
}

// ClampCircle 超出半径时按角度贴回圆周，返回是否发生了修正
func ClampCircle(b *models.Body, center mgl64.Vec2, radius float64) bool {
	offset := b.Horizontal().Sub(center)
	if offset.Len() <= radius {
		return false
	}
	angle := math.Atan2(offset.Y(), offset.X())
	b.SetHorizontal(mgl64.Vec2{
		center.X() + math.Cos(angle)*radius,
		center.Y() + math.Sin(angle)*radius,
	})
	return true
}

// reflectRect 矩形平台：越界轴夹回边界，方向取反，击退速度反向衰减
func (e *Enforcer) reflectRect(b *models.Body, direction *mgl64.Vec3, p *models.Platform, boundary float64) {
	if b.Falling {
		return
	}
	inset := p.Extent() - boundary
	limits := [2]float64{p.HalfX - inset, p.HalfZ - inset}
	centers := [2]float64{p.Center.X(), p.Center.Z()}
	axes := [2]int{0, 2}

	for i, axis := range axes {
		lo := centers[i] - limits[i]
		hi := centers[i] + limits[i]
		pos := b.Position[axis]
		if pos >= lo && pos <= hi {
			continue
		}
		if pos < lo {
			b.Position[axis] = lo
		} else {
			b.Position[axis] = hi
		}
		if direction != nil {
			direction[axis] = -direction[axis]
		}
		b.PushVelocity[i] *= -e.restitution
	}
}
