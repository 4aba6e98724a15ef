// layout.go

package obstacle

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// Placement 关卡中一个障碍物的初始配置
type Placement struct {
	X, Z   float64
	Shape  models.ObstacleShape
	Width  float64
	Depth  float64
	Height float64
	Radius float64

	Pattern     models.MovementPattern
	Speed       float64
	Direction   mgl64.Vec3
	MaxDistance float64
	OrbitRadius float64
}

// DefaultLayout 默认关卡：往返木箱、旋转石柱、之字形木箱、回弹石柱
var DefaultLayout = []Placement{
	{
		X: 4, Z: 4,
		Shape: models.ShapeBox, Width: 1.5, Height: 2, Depth: 1.5,
		Pattern: models.PatternLinear, Speed: 0.03, Direction: mgl64.Vec3{-1, 0, 0}, MaxDistance: 6,
	},
	{
		X: -5, Z: 2,
		Shape: models.ShapeCylinder, Radius: 1, Height: 2,
		Pattern: models.PatternCircular, Speed: 0.02, OrbitRadius: 3,
	},
	{
		X: 0, Z: -6,
		Shape: models.ShapeBox, Width: 2, Height: 1.5, Depth: 1,
		Pattern: models.PatternZigzag, Speed: 0.04, Direction: mgl64.Vec3{1, 0, 1},
	},
	{
		X: -3, Z: -4,
		Shape: models.ShapeCylinder, Radius: 0.8, Height: 3,
		Pattern: models.PatternBounce, Speed: 0.05, Direction: mgl64.Vec3{0.7, 0, 0.7},
	},
}

// Build 按配置生成障碍物，超出平台的位置按比例收回到边缘以内
func Build(layout []Placement, p *models.Platform, cfg config.ObstacleConfig, now time.Time) []*models.Obstacle {
	obstacles := make([]*models.Obstacle, 0, len(layout))
	limit := p.Extent() - cfg.EdgeMargin

	for _, pl := range layout {
		pos := mgl64.Vec2{pl.X, pl.Z}
		if d := pos.Len(); d > limit && d > 0 {
			pos = pos.Mul(limit / d)
		}
		position := mgl64.Vec3{
			p.Center.X() + pos.X(),
			p.SurfaceHeight() + pl.Height/2,
			p.Center.Z() + pos.Y(),
		}

		o := &models.Obstacle{
			ID:       uuid.New().String(),
			Shape:    pl.Shape,
			Position: position,
			Width:    pl.Width,
			Depth:    pl.Depth,
			Height:   pl.Height,
			Radius:   pl.Radius,
			Movement: newMovement(pl, position, cfg, now),
		}
		if o.Movement != nil && o.Movement.Pattern == models.PatternCircular {
			o.Position[0] = o.Movement.Center.X() + o.Movement.OrbitRadius
		}
		obstacles = append(obstacles, o)
	}
	return obstacles
}

func newMovement(pl Placement, position mgl64.Vec3, cfg config.ObstacleConfig, now time.Time) *models.MovementDescriptor {
	if pl.Pattern == "" {
		return nil
	}
	mv := &models.MovementDescriptor{
		Pattern:   pl.Pattern,
		Speed:     pl.Speed,
		Direction: horizontal(pl.Direction),
	}
	switch pl.Pattern {
	case models.PatternLinear:
		mv.MaxDistance = pl.MaxDistance
		mv.Forward = true
	case models.PatternCircular:
		mv.Center = position
		mv.OrbitRadius = pl.OrbitRadius
	case models.PatternZigzag:
		mv.ChangeInterval = cfg.ZigzagInterval
		mv.LastChange = now
	case models.PatternBounce:
		mv.Origin = position
	}
	return mv
}
