package protocol

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

func sampleFrame(t *testing.T) *GameFrame {
	t.Helper()
	c, err := models.NewCharacter(mgl64.Vec3{0, 3, 0}, 0.5)
	require.NoError(t, err)
	e, err := models.NewEnemy(mgl64.Vec3{1, 3, 2}, 0.4, mgl64.Vec3{1, 0, 0})
	require.NoError(t, err)

	return &GameFrame{
		Type:      MsgFrame,
		FrameId:   42,
		Timestamp: 1000,
		Active:    true,
		Character: ConvertCharacterToProto(c, true, 250*time.Millisecond, 0),
		Enemies:   ConvertEnemiesToProto([]*models.Enemy{e}),
		Bullets:   []*BulletState{},
		Obstacles: []*ObstacleState{},
		Events:    []*FrameEvent{{Type: "hit", Position: Vector3{X: 1, Y: 3, Z: 2}}},
		Score:     &ScoreInfo{Eliminations: 2, Shots: 5},
	}
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{CodecJSON, CodecMsgpack, CodecProto} {
		t.Run(name, func(t *testing.T) {
			codec, err := NewCodec(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())

			frame := sampleFrame(t)
			data, err := codec.Marshal(frame)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			var decoded GameFrame
			require.NoError(t, codec.Unmarshal(data, &decoded))
			assert.Equal(t, int64(42), decoded.FrameId)
			assert.True(t, decoded.Active)
			require.NotNil(t, decoded.Character)
			assert.Equal(t, frame.Character.Id, decoded.Character.Id)
			assert.Equal(t, int32(250), decoded.Character.PushCooldownMs)
			assert.True(t, decoded.Character.Pushing)
			require.Len(t, decoded.Enemies, 1)
			assert.InDelta(t, 0.4, decoded.Enemies[0].Size, 1e-6)
			require.Len(t, decoded.Events, 1)
			assert.Equal(t, "hit", decoded.Events[0].Type)
			assert.Equal(t, int32(2), decoded.Score.Eliminations)
		})
	}
}

func TestCodecBinaryFlag(t *testing.T) {
	j, _ := NewCodec(CodecJSON)
	m, _ := NewCodec(CodecMsgpack)
	p, _ := NewCodec(CodecProto)
	assert.False(t, j.Binary())
	assert.True(t, m.Binary())
	assert.True(t, p.Binary())
}

func TestUnknownCodec(t *testing.T) {
	_, err := NewCodec("xml")
	assert.Error(t, err)

	c, err := NewCodec("")
	require.NoError(t, err)
	assert.Equal(t, CodecJSON, c.Name())
}

func TestProtoCodecRejectsNonObject(t *testing.T) {
	c, _ := NewCodec(CodecProto)
	_, err := c.Marshal([]int{1, 2})
	assert.Error(t, err)
}

func TestConvertObstacle(t *testing.T) {
	o := &models.Obstacle{
		ID:       "o1",
		Shape:    models.ShapeBox,
		Position: mgl64.Vec3{4, 4, 4},
		Width:    1.5,
		Depth:    1.5,
		Height:   2,
		Movement: &models.MovementDescriptor{Pattern: models.PatternLinear},
	}
	s := ConvertObstacleToProto(o)
	assert.Equal(t, "box", s.Shape)
	assert.Equal(t, "linear", s.Pattern)
	assert.Equal(t, Vector3{X: 4, Y: 4, Z: 4}, s.Position)
}
