package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

func TestClampCircleInsideIsNoop(t *testing.T) {
	b := &models.Body{Position: mgl64.Vec3{3, 3, -4}}
	before := b.Position

	assert.False(t, ClampCircle(b, mgl64.Vec2{}, 9.5))
	assert.Equal(t, before, b.Position)
}

func TestClampCircleOutsideLandsOnBoundary(t *testing.T) {
	tests := []struct {
		name string
		pos  mgl64.Vec3
	}{
		{"正X方向", mgl64.Vec3{12, 3, 0}},
		{"对角", mgl64.Vec3{10, 3, 10}},
		{"负Z方向", mgl64.Vec3{0, 3, -30}},
		{"刚好越界", mgl64.Vec3{-9.5001, 3, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &models.Body{Position: tt.pos}
			require.True(t, ClampCircle(b, mgl64.Vec2{}, 9.5))
			assert.InDelta(t, 9.5, b.Horizontal().Len(), 1e-9)
			assert.Equal(t, tt.pos.Y(), b.Position.Y())

			// 再次约束不产生变化
			after := b.Position
			ClampCircle(b, mgl64.Vec2{}, 9.5+1e-9)
			assert.Equal(t, after, b.Position)
		})
	}
}

func TestClampCircleOffsetCenter(t *testing.T) {
	b := &models.Body{Position: mgl64.Vec3{5, 0, 20}}
	require.True(t, ClampCircle(b, mgl64.Vec2{5, 5}, 9))
	assert.InDelta(t, 5.0, b.Position.X(), 1e-9)
	assert.InDelta(t, 14.0, b.Position.Z(), 1e-9)
}

func TestEnforceCircleSkipsPushedAndFalling(t *testing.T) {
	en := NewEnforcer(config.Default().Physics)
	p := testPlatform(t)

	pushed := &models.Body{Position: mgl64.Vec3{11, 3, 0}, PushVelocity: mgl64.Vec2{1, 0}}
	en.Enforce(pushed, nil, p, 9)
	assert.Equal(t, 11.0, pushed.Position.X())

	falling := &models.Body{Position: mgl64.Vec3{11, 1, 0}, Falling: true}
	en.Enforce(falling, nil, p, 9)
	assert.Equal(t, 11.0, falling.Position.X())

	walking := &models.Body{Position: mgl64.Vec3{11, 3, 0}, Grounded: true}
	en.Enforce(walking, nil, p, 9)
	assert.InDelta(t, 9.0, walking.Position.X(), 1e-9)
}

func TestEnforceRectReflects(t *testing.T) {
	en := NewEnforcer(config.Default().Physics)
	p, err := models.NewRectPlatform(mgl64.Vec3{0, 2, 0}, 10, 10, 1)
	require.NoError(t, err)

	b := &models.Body{
		Position:     mgl64.Vec3{9.5, 3, -2},
		PushVelocity: mgl64.Vec2{1, 0.4},
	}
	dir := mgl64.Vec3{0.6, 0, 0.8}
	en.Enforce(b, &dir, p, 9)

	assert.Equal(t, 9.0, b.Position.X())
	assert.Equal(t, -2.0, b.Position.Z())
	assert.Equal(t, -0.6, dir.X())
	assert.Equal(t, 0.8, dir.Z())
	assert.InDelta(t, -0.5, b.PushVelocity.X(), 1e-12)
	assert.InDelta(t, 0.4, b.PushVelocity.Y(), 1e-12)
}

func TestEnforceRectBothAxes(t *testing.T) {
	en := NewEnforcer(config.Default().Physics)
	p, err := models.NewRectPlatform(mgl64.Vec3{0, 2, 0}, 10, 10, 1)
	require.NoError(t, err)

	b := &models.Body{Position: mgl64.Vec3{-12, 3, 12}}
	dir := mgl64.Vec3{-0.6, 0, 0.8}
	en.Enforce(b, &dir, p, 9.5)

	assert.Equal(t, -9.5, b.Position.X())
	assert.Equal(t, 9.5, b.Position.Z())
	assert.Equal(t, mgl64.Vec3{0.6, 0, -0.8}, dir)
}
