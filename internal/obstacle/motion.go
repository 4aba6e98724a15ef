// motion.go

package obstacle

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// 直线往返的端点容差，避免浮点累加误差多走一帧
const linearEpsilon = 1e-9

// 之字形障碍物碰到边缘后向内回退的距离
const zigzagInset = 0.1

// Mover 按运动模式逐帧推进障碍物
type Mover struct {
	edgeMargin   float64
	bounceRadius float64
	rng          *rand.Rand
}

// NewMover 创建障碍物运动器
func NewMover(cfg config.ObstacleConfig, rng *rand.Rand) *Mover {
	return &Mover{
		edgeMargin:   cfg.EdgeMargin,
		bounceRadius: cfg.BounceRadius,
		rng:          rng,
	}
}

// AdvanceAll 推进所有障碍物
func (m *Mover) AdvanceAll(obstacles []*models.Obstacle, p *models.Platform, now time.Time) {
	for _, o := range obstacles {
		m.Advance(o, p, now)
	}
}

// Advance 推进一个障碍物一帧
func (m *Mover) Advance(o *models.Obstacle, p *models.Platform, now time.Time) {
	mv := o.Movement
	if mv == nil {
		return
	}

	switch mv.Pattern {
	case models.PatternLinear:
		advanceLinear(o, mv)
	case models.PatternCircular:
		mv.Angle += mv.Speed
		o.Position[0] = mv.Center.X() + math.Cos(mv.Angle)*mv.OrbitRadius
		o.Position[2] = mv.Center.Z() + math.Sin(mv.Angle)*mv.OrbitRadius
	case models.PatternZigzag:
		m.advanceZigzag(o, mv, p, now)
	case models.PatternBounce:
		m.advanceBounce(o, mv, p)
	}
}

func advanceLinear(o *models.Obstacle, mv *models.MovementDescriptor) {
	if mv.Forward {
		o.Position = o.Position.Add(mv.Direction.Mul(mv.Speed))
		mv.Traveled += mv.Speed
		if mv.Traveled >= mv.MaxDistance-linearEpsilon {
			mv.Forward = false
		}
		return
	}
	o.Position = o.Position.Sub(mv.Direction.Mul(mv.Speed))
	mv.Traveled -= mv.Speed
	if mv.Traveled <= linearEpsilon {
		mv.Forward = true
	}
}

func (m *Mover) advanceZigzag(o *models.Obstacle, mv *models.MovementDescriptor, p *models.Platform, now time.Time) {
	if mv.LastChange.IsZero() {
		mv.LastChange = now
	}
	if now.Sub(mv.LastChange) > mv.ChangeInterval {
		angle := m.rng.Float64()*math.Pi/2 - math.Pi/4
		mv.Direction = horizontal(mgl64.Rotate3DY(angle).Mul3x1(mv.Direction))
		mv.LastChange = now
	}

	o.Position = o.Position.Add(mv.Direction.Mul(mv.Speed))

	offset := o.Position.Sub(p.Center)
	offset[1] = 0
	if offset.Len() > p.Extent()-m.edgeMargin {
		normal := offset.Normalize()
		mv.Direction = mv.Direction.Sub(normal.Mul(2 * mv.Direction.Dot(normal)))
		o.Position = o.Position.Sub(normal.Mul(zigzagInset))
	}
}

func (m *Mover) advanceBounce(o *models.Obstacle, mv *models.MovementDescriptor, p *models.Platform) {
	o.Position = o.Position.Add(mv.Direction.Mul(mv.Speed))

	toOrigin := mv.Origin.Sub(o.Position)
	toOrigin[1] = 0
	fromCenter := o.Position.Sub(p.Center)
	fromCenter[1] = 0

	if toOrigin.Len() > m.bounceRadius || fromCenter.Len() > p.Extent()-m.edgeMargin {
		back := horizontal(toOrigin)
		blended := horizontal(mv.Direction.Add(back).Mul(0.5))
		if blended.Len() == 0 {
			blended = back
		}
		mv.Direction = blended
	}
}

// horizontal 去掉 y 分量后归一化，零向量原样返回
func horizontal(v mgl64.Vec3) mgl64.Vec3 {
	v[1] = 0
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}
