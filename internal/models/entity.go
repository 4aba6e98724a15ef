// entity.go

package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// EntityType 实体类型
type EntityType string

const (
	// EntityCharacter 玩家角色
	EntityCharacter EntityType = "character"
	// EntityEnemy 敌人
	EntityEnemy EntityType = "enemy"
	// EntityBullet 子弹
	EntityBullet EntityType = "bullet"
	// EntityObstacle 障碍物
	EntityObstacle EntityType = "obstacle"
)

var (
	// ErrInvalidRadius 半径必须为正
	ErrInvalidRadius = errors.New("半径必须大于0")
	// ErrInvalidSize 敌人尺寸必须为正
	ErrInvalidSize = errors.New("尺寸必须大于0")
	// ErrInvalidDirection 方向向量不能为零
	ErrInvalidDirection = errors.New("方向向量不能为零")
)

// DefaultFacing 初始朝向(-Z)
var DefaultFacing = mgl64.Vec3{0, 0, -1}

// IsFinite 各分量均不是 NaN 或 Inf
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Body 受重力和推力影响的球体
type Body struct {
	Position         mgl64.Vec3 `json:"position"`
	VerticalVelocity float64    `json:"vertical_velocity"`
	Radius           float64    `json:"radius"`
	Grounded         bool       `json:"grounded"`
	Falling          bool       `json:"falling"`
	// PushVelocity 水平击退速度(x, z)，逐帧衰减
	PushVelocity mgl64.Vec2 `json:"push_velocity"`
	Facing       mgl64.Vec3 `json:"facing"`
}

// IsPushed 是否处于击退中
func (b *Body) IsPushed() bool {
	return b.PushVelocity.X() != 0 || b.PushVelocity.Y() != 0
}

// Horizontal 水平坐标(x, z)
func (b *Body) Horizontal() mgl64.Vec2 {
	return mgl64.Vec2{b.Position.X(), b.Position.Z()}
}

// SetHorizontal 设置水平坐标，保持高度不变
func (b *Body) SetHorizontal(h mgl64.Vec2) {
	b.Position[0] = h.X()
	b.Position[2] = h.Y()
}

// MoveHorizontal 水平平移
func (b *Body) MoveHorizontal(d mgl64.Vec2) {
	b.Position[0] += d.X()
	b.Position[2] += d.Y()
}

// Character 玩家角色
type Character struct {
	ID string `json:"id"`
	Body
	// MoveDirection 本帧输入的水平移动方向
	MoveDirection mgl64.Vec3 `json:"-"`
	// LastPushAt 最近一次推击时间，用于推击姿态
	LastPushAt time.Time `json:"-"`
	// Cooldowns 技能名 -> 最近触发时间
	Cooldowns map[string]time.Time `json:"-"`
}

// NewCharacter 创建玩家角色
func NewCharacter(position mgl64.Vec3, radius float64) (*Character, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("创建角色失败: %w", ErrInvalidRadius)
	}
	return &Character{
		ID: uuid.New().String(),
		Body: Body{
			Position: position,
			Radius:   radius,
			Facing:   DefaultFacing,
		},
		Cooldowns: make(map[string]time.Time),
	}, nil
}

// Enemy 敌人，半径即尺寸
type Enemy struct {
	ID string `json:"id"`
	Body
	// Direction 自主移动方向(单位向量, y=0)
	Direction   mgl64.Vec3 `json:"direction"`
	NextTurnAt  time.Time  `json:"-"`
	HitByBullet bool       `json:"hit_by_bullet"`
	// Eliminated 已被淘汰，只下落不再参与碰撞
	Eliminated bool `json:"eliminated"`
}

// NewEnemy 创建敌人
func NewEnemy(position mgl64.Vec3, size float64, direction mgl64.Vec3) (*Enemy, error) {
	if size <= 0 {
		return nil, fmt.Errorf("创建敌人失败: %w", ErrInvalidSize)
	}
	direction[1] = 0
	if direction.Len() == 0 {
		return nil, fmt.Errorf("创建敌人失败: %w", ErrInvalidDirection)
	}
	direction = direction.Normalize()
	return &Enemy{
		ID: uuid.New().String(),
		Body: Body{
			Position: position,
			Radius:   size,
			Facing:   direction,
		},
		Direction: direction,
	}, nil
}

// Size 敌人尺寸
func (e *Enemy) Size() float64 {
	return e.Radius
}

// Active 是否仍可参与碰撞和攻击判定
func (e *Enemy) Active() bool {
	return !e.Eliminated && !e.Falling
}

// Bullet 子弹
type Bullet struct {
	ID        string     `json:"id"`
	Position  mgl64.Vec3 `json:"position"`
	Direction mgl64.Vec3 `json:"direction"`
	CreatedAt time.Time  `json:"created_at"`
	Dead      bool       `json:"dead"`
}

// ObstacleShape 障碍物形状
type ObstacleShape string

const (
	// ShapeBox 长方体
	ShapeBox ObstacleShape = "box"
	// ShapeCylinder 圆柱
	ShapeCylinder ObstacleShape = "cylinder"
)

// MovementPattern 障碍物运动模式
type MovementPattern string

const (
	// PatternLinear 往返直线
	PatternLinear MovementPattern = "linear"
	// PatternCircular 绕圆心旋转
	PatternCircular MovementPattern = "circular"
	// PatternZigzag 定时随机转向
	PatternZigzag MovementPattern = "zigzag"
	// PatternBounce 超出范围时回拉
	PatternBounce MovementPattern = "bounce"
)

// MovementDescriptor 障碍物运动参数
type MovementDescriptor struct {
	Pattern   MovementPattern `json:"pattern"`
	Direction mgl64.Vec3      `json:"direction"`
	Speed     float64         `json:"speed"`

	// linear
	MaxDistance float64 `json:"max_distance,omitempty"`
	Traveled    float64 `json:"traveled,omitempty"`
	Forward     bool    `json:"forward,omitempty"`

	// circular
	Center      mgl64.Vec3 `json:"center,omitempty"`
	OrbitRadius float64    `json:"orbit_radius,omitempty"`
	Angle       float64    `json:"angle,omitempty"`

	// zigzag
	ChangeInterval time.Duration `json:"change_interval,omitempty"`
	LastChange     time.Time     `json:"-"`

	// bounce
	Origin mgl64.Vec3 `json:"origin,omitempty"`
}

// Obstacle 障碍物
type Obstacle struct {
	ID       string        `json:"id"`
	Shape    ObstacleShape `json:"shape"`
	Position mgl64.Vec3    `json:"position"`
	Width    float64       `json:"width,omitempty"`
	Depth    float64       `json:"depth,omitempty"`
	Height   float64       `json:"height"`
	Radius   float64       `json:"radius,omitempty"`

	Movement *MovementDescriptor `json:"movement,omitempty"`
}

// Horizontal 水平坐标(x, z)
func (o *Obstacle) Horizontal() mgl64.Vec2 {
	return mgl64.Vec2{o.Position.X(), o.Position.Z()}
}

// PlatformShape 平台形状
type PlatformShape string

const (
	// PlatformCircle 圆形平台
	PlatformCircle PlatformShape = "circle"
	// PlatformRect 矩形平台
	PlatformRect PlatformShape = "rect"
)

// Platform 平台几何
type Platform struct {
	Shape         PlatformShape `json:"shape"`
	Center        mgl64.Vec3    `json:"center"`
	Radius        float64       `json:"radius,omitempty"`
	HalfX         float64       `json:"half_x,omitempty"`
	HalfZ         float64       `json:"half_z,omitempty"`
	SurfaceOffset float64       `json:"surface_offset"`
}

// NewCirclePlatform 创建圆形平台
func NewCirclePlatform(center mgl64.Vec3, radius, surfaceOffset float64) (*Platform, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("创建平台失败: %w", ErrInvalidRadius)
	}
	return &Platform{Shape: PlatformCircle, Center: center, Radius: radius, SurfaceOffset: surfaceOffset}, nil
}

// NewRectPlatform 创建矩形平台
func NewRectPlatform(center mgl64.Vec3, halfX, halfZ, surfaceOffset float64) (*Platform, error) {
	if halfX <= 0 || halfZ <= 0 {
		return nil, fmt.Errorf("创建平台失败: %w", ErrInvalidRadius)
	}
	return &Platform{Shape: PlatformRect, Center: center, HalfX: halfX, HalfZ: halfZ, SurfaceOffset: surfaceOffset}, nil
}

// SurfaceHeight 平台表面高度
func (p *Platform) SurfaceHeight() float64 {
	return p.Center.Y() + p.SurfaceOffset
}

// Contains 水平位置是否在平台范围内(含边界)
func (p *Platform) Contains(h mgl64.Vec2) bool {
	dx := h.X() - p.Center.X()
	dz := h.Y() - p.Center.Z()
	if p.Shape == PlatformRect {
		return dx >= -p.HalfX && dx <= p.HalfX && dz >= -p.HalfZ && dz <= p.HalfZ
	}
	return mgl64.Vec2{dx, dz}.Len() <= p.Radius
}

// DistanceFromCenter 水平距离
func (p *Platform) DistanceFromCenter(h mgl64.Vec2) float64 {
	return h.Sub(mgl64.Vec2{p.Center.X(), p.Center.Z()}).Len()
}

// Extent 平台水平半径，矩形取较短的半边长
func (p *Platform) Extent() float64 {
	if p.Shape == PlatformRect {
		if p.HalfX < p.HalfZ {
			return p.HalfX
		}
		return p.HalfZ
	}
	return p.Radius
}
