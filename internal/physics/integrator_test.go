package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

func testPlatform(t *testing.T) *models.Platform {
	t.Helper()
	p, err := models.NewCirclePlatform(mgl64.Vec3{0, 2, 0}, 10, 1)
	require.NoError(t, err)
	return p
}

func TestAirborneVelocityDecreasesByGravity(t *testing.T) {
	cfg := config.Default().Physics
	in := NewIntegrator(cfg)
	p := testPlatform(t)
	b := &models.Body{Position: mgl64.Vec3{0, 10, 0}, Radius: 0.5}

	prev := b.VerticalVelocity
	for i := 0; i < 10; i++ {
		require.True(t, in.Apply(b, p))
		assert.InDelta(t, prev-cfg.Gravity, b.VerticalVelocity, 1e-9)
		assert.False(t, b.Grounded)
		prev = b.VerticalVelocity
	}
	assert.Less(t, b.Position.Y(), 10.0)
}

func TestLandingSnapsToSurface(t *testing.T) {
	in := NewIntegrator(config.Default().Physics)
	p := testPlatform(t)
	b := &models.Body{Position: mgl64.Vec3{1, 3.05, 1}, VerticalVelocity: -1, Radius: 0.5}

	require.True(t, in.Apply(b, p))
	assert.Equal(t, 3.0, b.Position.Y())
	assert.Zero(t, b.VerticalVelocity)
	assert.True(t, b.Grounded)
	assert.False(t, b.Falling)

	for i := 0; i < 5; i++ {
		in.Apply(b, p)
		assert.Zero(t, b.VerticalVelocity)
		assert.Equal(t, 3.0, b.Position.Y())
	}
}

func TestLandingAtExactEdge(t *testing.T) {
	in := NewIntegrator(config.Default().Physics)
	p := testPlatform(t)
	b := &models.Body{Position: mgl64.Vec3{10, 3, 0}, Radius: 0.5}

	for i := 0; i < 3; i++ {
		require.True(t, in.Apply(b, p))
	}
	assert.True(t, b.Grounded)
	assert.Equal(t, 3.0, b.Position.Y())
}

func TestFatalFallOutsidePlatform(t *testing.T) {
	in := NewIntegrator(config.Default().Physics)
	p := testPlatform(t)
	b := &models.Body{Position: mgl64.Vec3{12, 3, 0}, Radius: 0.5}

	ticks := 0
	for in.Apply(b, p) {
		ticks++
		require.Less(t, ticks, 1000, "实体应该在有限帧内坠落出局")
		assert.True(t, b.Falling)
	}
	assert.Less(t, b.Position.Y(), p.Center.Y()-12)
}

func TestNoLandingBelowSurfaceWindow(t *testing.T) {
	in := NewIntegrator(config.Default().Physics)
	p := testPlatform(t)
	// 已经掉到平台下方的实体回到平台范围内也不会被吸回表面
	b := &models.Body{Position: mgl64.Vec3{0, 0, 0}, VerticalVelocity: -2, Radius: 0.5}

	in.Apply(b, p)
	assert.False(t, b.Grounded)
	assert.Less(t, b.Position.Y(), 0.0)
}

func TestEliminatedEnemyNeverLands(t *testing.T) {
	in := NewIntegrator(config.Default().Physics)
	p := testPlatform(t)
	e, err := models.NewEnemy(mgl64.Vec3{0, 3, 0}, 0.4, mgl64.Vec3{1, 0, 0})
	require.NoError(t, err)
	e.Eliminated = true
	e.VerticalVelocity = 0.2

	ticks := 0
	for in.ApplyEnemy(e, p) {
		ticks++
		require.Less(t, ticks, 1000)
		assert.False(t, e.Grounded)
		assert.True(t, e.Falling)
	}
}

func TestJumpOnlyWhenGrounded(t *testing.T) {
	b := &models.Body{Grounded: true}
	assert.True(t, Jump(b, 4))
	assert.Equal(t, 4.0, b.VerticalVelocity)
	assert.False(t, Jump(b, 4))
}

func TestJumpArc(t *testing.T) {
	in := NewIntegrator(config.Default().Physics)
	p := testPlatform(t)
	b := &models.Body{Position: mgl64.Vec3{0, 3, 0}, Radius: 0.5}
	in.Apply(b, p)
	require.True(t, b.Grounded)

	require.True(t, Jump(b, 4))
	peak := b.Position.Y()
	for i := 0; i < 100 && !b.Grounded; i++ {
		in.Apply(b, p)
		if b.Position.Y() > peak {
			peak = b.Position.Y()
		}
	}
	assert.Greater(t, peak, 3.0)
	assert.True(t, b.Grounded)
	assert.Equal(t, 3.0, b.Position.Y())
}

func TestDecayPush(t *testing.T) {
	v := DecayPush(mgl64.Vec2{1, 0}, 0.15, 0.01)
	assert.InDelta(t, 0.85, v.Len(), 1e-12)

	v = DecayPush(mgl64.Vec2{0.6, 0.8}, 0.15, 0.01)
	assert.InDelta(t, 0.85, v.Len(), 1e-12)

	v = DecayPush(mgl64.Vec2{0.011, 0}, 0.15, 0.01)
	assert.Equal(t, mgl64.Vec2{}, v)
}

func TestApplyPushMovesAndStops(t *testing.T) {
	in := NewIntegrator(config.Default().Physics)
	b := &models.Body{PushVelocity: mgl64.Vec2{2, 0}}

	in.ApplyPush(b)
	assert.InDelta(t, 0.2, b.Position.X(), 1e-12)
	assert.InDelta(t, 1.7, b.PushVelocity.X(), 1e-12)

	for i := 0; i < 200 && b.IsPushed(); i++ {
		in.ApplyPush(b)
	}
	assert.False(t, b.IsPushed())
	assert.Equal(t, mgl64.Vec2{}, b.PushVelocity)
}
