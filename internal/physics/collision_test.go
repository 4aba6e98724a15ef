package physics

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

func newTestCharacter(t *testing.T, pos mgl64.Vec3) *models.Character {
	t.Helper()
	c, err := models.NewCharacter(pos, 0.5)
	require.NoError(t, err)
	c.Grounded = true
	return c
}

func newTestEnemy(t *testing.T, pos mgl64.Vec3, size float64) *models.Enemy {
	t.Helper()
	e, err := models.NewEnemy(pos, size, mgl64.Vec3{1, 0, 0})
	require.NoError(t, err)
	return e
}

func TestCharacterEnemyPushesCharacterAway(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(&cfg)
	c := newTestCharacter(t, mgl64.Vec3{0, 3, 0})
	e := newTestEnemy(t, mgl64.Vec3{0, 3, 0.3}, 0.4)

	contacts := r.CharacterEnemy(c, []*models.Enemy{e})
	require.Len(t, contacts, 1)

	assert.Less(t, c.Position.Z(), 0.0)
	assert.InDelta(t, 0.0, c.Position.X(), 1e-12)
	assert.InDelta(t, -(0.15 + 0.4/0.7*0.1), c.Position.Z(), 1e-12)
	assert.Equal(t, 3.0, c.Position.Y())
	// 敌人本身不被移动
	assert.Equal(t, mgl64.Vec3{0, 3, 0.3}, e.Position)
}

func TestCharacterEnemySkipsInactive(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(&cfg)
	c := newTestCharacter(t, mgl64.Vec3{0, 3, 0})
	falling := newTestEnemy(t, mgl64.Vec3{0, 3, 0.3}, 0.4)
	falling.Falling = true
	eliminated := newTestEnemy(t, mgl64.Vec3{0.2, 3, 0}, 0.4)
	eliminated.Eliminated = true

	assert.Empty(t, r.CharacterEnemy(c, []*models.Enemy{falling, eliminated}))
	assert.Equal(t, mgl64.Vec3{0, 3, 0}, c.Position)
}

func TestCharacterEnemyBounce(t *testing.T) {
	cfg := config.Default()
	cfg.Enemy.ContactBounce = true
	r := NewResolver(&cfg)
	c := newTestCharacter(t, mgl64.Vec3{0, 3, 0})
	e := newTestEnemy(t, mgl64.Vec3{0.5, 3, 0}, 0.5)

	r.CharacterEnemy(c, []*models.Enemy{e})
	assert.Equal(t, cfg.Enemy.BounceVelocity, c.VerticalVelocity)
	assert.False(t, c.Grounded)
	assert.Less(t, c.Position.X(), 0.0)
}

func TestCharacterEnemyCoincident(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(&cfg)
	c := newTestCharacter(t, mgl64.Vec3{0, 3, 0})
	e := newTestEnemy(t, mgl64.Vec3{0, 3, 0}, 0.3)

	r.CharacterEnemy(c, []*models.Enemy{e})
	// 完全重合时沿朝向反方向退开
	assert.Greater(t, c.Position.Z(), 0.0)
}

func TestObstacleContact(t *testing.T) {
	box := &models.Obstacle{Shape: models.ShapeBox, Position: mgl64.Vec3{1, 3, 0}, Width: 1, Depth: 1}
	cyl := &models.Obstacle{Shape: models.ShapeCylinder, Position: mgl64.Vec3{0, 3, 2}, Radius: 1}

	tests := []struct {
		name   string
		pos    mgl64.Vec2
		o      *models.Obstacle
		hit    bool
		normal mgl64.Vec2
	}{
		{"盒子左侧重叠", mgl64.Vec2{0.2, 0}, box, true, mgl64.Vec2{-1, 0}},
		{"盒子外", mgl64.Vec2{-0.5, 0}, box, false, mgl64.Vec2{}},
		{"盒子内部", mgl64.Vec2{1.2, 0}, box, true, mgl64.Vec2{1, 0}},
		{"圆柱重叠", mgl64.Vec2{0, 0.8}, cyl, true, mgl64.Vec2{0, -1}},
		{"圆柱外", mgl64.Vec2{0, 0.4}, cyl, false, mgl64.Vec2{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normal, hit := ObstacleContact(tt.pos, 0.5, tt.o)
			assert.Equal(t, tt.hit, hit)
			if tt.hit {
				assert.InDelta(t, tt.normal.X(), normal.X(), 1e-9)
				assert.InDelta(t, tt.normal.Y(), normal.Y(), 1e-9)
			}
		})
	}
}

func TestCharacterStaticObstacle(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(&cfg)
	c := newTestCharacter(t, mgl64.Vec3{0.2, 3, 0})
	box := &models.Obstacle{ID: "box", Shape: models.ShapeBox, Position: mgl64.Vec3{1, 3, 0}, Width: 1, Depth: 1}

	contacts := r.CharacterObstacles(c, []*models.Obstacle{box})
	require.Len(t, contacts, 1)
	assert.InDelta(t, 0.0, c.Position.X(), 1e-12)
	// 静止障碍物只推开，不产生击退速度
	assert.False(t, c.IsPushed())
}

func TestStaticObstacleAtEdgeKeepsCharacterInside(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(&cfg)
	en := NewEnforcer(cfg.Physics)
	p, err := models.NewCirclePlatform(mgl64.Vec3{0, 2, 0}, 10, 1)
	require.NoError(t, err)

	c := newTestCharacter(t, mgl64.Vec3{9.4, 3, 0})
	box := &models.Obstacle{ID: "box", Shape: models.ShapeBox, Position: mgl64.Vec3{8.5, 3, 0}, Width: 1, Depth: 1}

	for i := 0; i < 10; i++ {
		c.MoveHorizontal(mgl64.Vec2{-0.15, 0})
		r.CharacterObstacles(c, []*models.Obstacle{box})
		en.Enforce(&c.Body, nil, p, cfg.Physics.PlayerBoundary)
		assert.LessOrEqual(t, p.DistanceFromCenter(c.Horizontal()), cfg.Physics.PlayerBoundary+1e-9)
	}
	assert.False(t, c.IsPushed())
}

func TestMovingObstacleHitsHarder(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(&cfg)

	static := &models.Obstacle{Shape: models.ShapeCylinder, Position: mgl64.Vec3{0, 3, 0}, Radius: 1}
	moving := &models.Obstacle{
		Shape:    models.ShapeCylinder,
		Position: mgl64.Vec3{0, 3, 0},
		Radius:   1,
		Movement: &models.MovementDescriptor{
			Pattern:   models.PatternLinear,
			Direction: mgl64.Vec3{1, 0, 0},
			Speed:     0.03,
			Forward:   true,
		},
	}

	a := newTestCharacter(t, mgl64.Vec3{0, 3, 1.2})
	b := newTestCharacter(t, mgl64.Vec3{0, 3, 1.2})
	r.CharacterObstacles(a, []*models.Obstacle{static})
	r.CharacterObstacles(b, []*models.Obstacle{moving})

	assert.InDelta(t, 0.2, a.Horizontal().Sub(mgl64.Vec2{0, 1.2}).Len(), 1e-12)
	assert.InDelta(t, 0.26, b.Horizontal().Sub(mgl64.Vec2{0, 1.2}).Len(), 1e-12)
	// 运动方向被混入推开方向
	assert.Greater(t, b.Position.X(), 0.0)
	assert.Greater(t, b.Position.Z(), 1.2)
	assert.False(t, a.IsPushed())
	assert.True(t, b.IsPushed())
}

func TestCircularObstacleUsesTangent(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(&cfg)
	o := &models.Obstacle{
		Shape:    models.ShapeCylinder,
		Position: mgl64.Vec3{3, 3, 0},
		Radius:   1,
		Movement: &models.MovementDescriptor{
			Pattern:     models.PatternCircular,
			Center:      mgl64.Vec3{0, 3, 0},
			OrbitRadius: 3,
			Speed:       0.02,
		},
	}
	c := newTestCharacter(t, mgl64.Vec3{4.2, 3, 0})

	r.CharacterObstacles(c, []*models.Obstacle{o})
	moved := c.Horizontal().Sub(mgl64.Vec2{4.2, 0})
	assert.InDelta(t, 0.2+0.02*3, moved.Len(), 1e-12)
	// 切线方向为 +Z
	assert.Greater(t, moved.Y(), 0.0)
}

func TestPushedEnemyReflectsOffObstacle(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(&cfg)
	wall := &models.Obstacle{Shape: models.ShapeBox, Position: mgl64.Vec3{1, 3, 0}, Width: 1, Depth: 4}
	e := newTestEnemy(t, mgl64.Vec3{0.3, 3, 0}, 0.3)
	e.PushVelocity = mgl64.Vec2{1.5, 0.5}

	contacts := r.EnemyObstacles([]*models.Enemy{e}, []*models.Obstacle{wall})
	require.Len(t, contacts, 1)
	assert.InDelta(t, -1.5, e.PushVelocity.X(), 1e-12)
	assert.InDelta(t, 0.5, e.PushVelocity.Y(), 1e-12)
	assert.Less(t, e.Position.X(), 0.3)
}

func TestReflect(t *testing.T) {
	v := Reflect(mgl64.Vec2{1, -1}, mgl64.Vec2{0, 1})
	assert.Equal(t, mgl64.Vec2{1, 1}, v)
}

func TestBulletHit(t *testing.T) {
	near := newTestEnemy(t, mgl64.Vec3{0, 3, 0.4}, 0.4)
	gone := newTestEnemy(t, mgl64.Vec3{0, 3, 0.1}, 0.4)
	gone.Eliminated = true
	b := &models.Bullet{Position: mgl64.Vec3{0, 3, 0}, Direction: mgl64.Vec3{0, 0, 1}, CreatedAt: time.Unix(10, 0)}

	assert.Same(t, near, BulletHit(b, 0.1, []*models.Enemy{gone, near}))

	b.Position = mgl64.Vec3{0, 3, -1}
	assert.Nil(t, BulletHit(b, 0.1, []*models.Enemy{gone, near}))
}
