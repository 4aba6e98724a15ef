package protocol

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// ConvertVec3 将向量转换为协议消息
func ConvertVec3(v mgl64.Vec3) Vector3 {
	return Vector3{X: float32(v.X()), Y: float32(v.Y()), Z: float32(v.Z())}
}

// ConvertCharacterToProto 将角色转换为协议消息
func ConvertCharacterToProto(c *models.Character, pushing bool, pushCooldown, shotCooldown time.Duration) *CharacterState {
	return &CharacterState{
		Id:             c.ID,
		Position:       ConvertVec3(c.Position),
		Facing:         ConvertVec3(c.Facing),
		Radius:         float32(c.Radius),
		Grounded:       c.Grounded,
		Falling:        c.Falling,
		Pushing:        pushing,
		PushCooldownMs: int32(pushCooldown.Milliseconds()),
		ShotCooldownMs: int32(shotCooldown.Milliseconds()),
	}
}

// ConvertEnemyToProto 将敌人转换为协议消息
func ConvertEnemyToProto(e *models.Enemy) *EnemyState {
	return &EnemyState{
		Id:          e.ID,
		Position:    ConvertVec3(e.Position),
		Size:        float32(e.Size()),
		Falling:     e.Falling,
		Eliminated:  e.Eliminated,
		HitByBullet: e.HitByBullet,
	}
}

// ConvertBulletToProto 将子弹转换为协议消息
func ConvertBulletToProto(b *models.Bullet) *BulletState {
	return &BulletState{
		Id:        b.ID,
		Position:  ConvertVec3(b.Position),
		Direction: ConvertVec3(b.Direction),
	}
}

// ConvertObstacleToProto 将障碍物转换为协议消息
func ConvertObstacleToProto(o *models.Obstacle) *ObstacleState {
	state := &ObstacleState{
		Id:       o.ID,
		Shape:    string(o.Shape),
		Position: ConvertVec3(o.Position),
		Width:    float32(o.Width),
		Depth:    float32(o.Depth),
		Height:   float32(o.Height),
		Radius:   float32(o.Radius),
	}
	if o.Movement != nil {
		state.Pattern = string(o.Movement.Pattern)
	}
	return state
}

// ConvertPlatformToProto 将平台转换为协议消息
func ConvertPlatformToProto(p *models.Platform) *PlatformInfo {
	return &PlatformInfo{
		Shape:         string(p.Shape),
		Center:        ConvertVec3(p.Center),
		Radius:        float32(p.Radius),
		HalfX:         float32(p.HalfX),
		HalfZ:         float32(p.HalfZ),
		SurfaceHeight: float32(p.SurfaceHeight()),
	}
}

// ConvertEnemiesToProto 批量转换敌人
func ConvertEnemiesToProto(enemies []*models.Enemy) []*EnemyState {
	out := make([]*EnemyState, len(enemies))
	for i, e := range enemies {
		out[i] = ConvertEnemyToProto(e)
	}
	return out
}

// ConvertBulletsToProto 批量转换子弹
func ConvertBulletsToProto(bullets []*models.Bullet) []*BulletState {
	out := make([]*BulletState, len(bullets))
	for i, b := range bullets {
		out[i] = ConvertBulletToProto(b)
	}
	return out
}

// ConvertObstaclesToProto 批量转换障碍物
func ConvertObstaclesToProto(obstacles []*models.Obstacle) []*ObstacleState {
	out := make([]*ObstacleState, len(obstacles))
	for i, o := range obstacles {
		out[i] = ConvertObstacleToProto(o)
	}
	return out
}

// CreateErrorResponse 创建错误响应
func CreateErrorResponse(message, errorCode string) *ErrorResponse {
	return &ErrorResponse{
		Type:      MsgError,
		Message:   message,
		ErrorCode: errorCode,
	}
}
