package ai

import (
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

func newSteering(mode Mode) *Steering {
	cfg := config.Default().Enemy
	cfg.Steering = string(mode)
	return NewSteering(cfg, rand.New(rand.NewSource(12345)))
}

func newEnemy(t *testing.T, size float64, dir mgl64.Vec3) *models.Enemy {
	t.Helper()
	e, err := models.NewEnemy(mgl64.Vec3{0, 3, 0}, size, dir)
	require.NoError(t, err)
	e.Grounded = true
	return e
}

func TestSpeedFactor(t *testing.T) {
	s := newSteering(ModeWander)
	assert.InDelta(t, 1.0, s.SpeedFactor(0.3), 1e-12)
	assert.InDelta(t, 0.5, s.SpeedFactor(0.7), 1e-12)
	assert.InDelta(t, 0.75, s.SpeedFactor(0.5), 1e-12)
}

func TestRandomSizeAndDirection(t *testing.T) {
	s := newSteering(ModeWander)
	for i := 0; i < 100; i++ {
		size := s.RandomSize()
		assert.GreaterOrEqual(t, size, 0.3)
		assert.Less(t, size, 0.7)

		dir := s.RandomDirection()
		assert.InDelta(t, 1.0, dir.Len(), 1e-9)
		assert.Zero(t, dir.Y())
	}
}

func TestNextTurnWithinRange(t *testing.T) {
	s := newSteering(ModeWander)
	now := time.Unix(10, 0)
	for i := 0; i < 100; i++ {
		next := s.NextTurn(now)
		assert.GreaterOrEqual(t, next.Sub(now), time.Second)
		assert.Less(t, next.Sub(now), 3*time.Second)
	}
}

func TestWanderMovesAndTurns(t *testing.T) {
	s := newSteering(ModeWander)
	e := newEnemy(t, 0.3, mgl64.Vec3{1, 0, 0})
	now := time.Unix(10, 0)

	s.Steer(e, mgl64.Vec3{}, now)
	assert.InDelta(t, 0.1, e.Position.X(), 1e-12)
	require.False(t, e.NextTurnAt.IsZero())

	s.Steer(e, mgl64.Vec3{}, e.NextTurnAt.Add(time.Millisecond))
	assert.InDelta(t, 1.0, e.Direction.Len(), 1e-9)
	assert.Equal(t, e.Direction, e.Facing)
}

func TestChaseSteersTowardTarget(t *testing.T) {
	s := newSteering(ModeChase)
	e := newEnemy(t, 0.7, mgl64.Vec3{1, 0, 0})

	s.Steer(e, mgl64.Vec3{0, 3, -5}, time.Unix(10, 0))
	assert.InDelta(t, -1.0, e.Direction.Z(), 1e-12)
	assert.InDelta(t, -0.05, e.Position.Z(), 1e-12)
}

func TestSteerSkipsPushedAndEliminated(t *testing.T) {
	s := newSteering(ModeWander)
	now := time.Unix(10, 0)

	pushed := newEnemy(t, 0.4, mgl64.Vec3{1, 0, 0})
	pushed.PushVelocity = mgl64.Vec2{1, 0}
	s.Steer(pushed, mgl64.Vec3{}, now)
	assert.Equal(t, mgl64.Vec3{0, 3, 0}, pushed.Position)

	gone := newEnemy(t, 0.4, mgl64.Vec3{1, 0, 0})
	gone.Eliminated = true
	s.Steer(gone, mgl64.Vec3{}, now)
	assert.Equal(t, mgl64.Vec3{0, 3, 0}, gone.Position)
}
