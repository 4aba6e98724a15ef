// collision.go

package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// 碰撞法线退化时使用的默认方向
var fallbackNormal = mgl64.Vec2{1, 0}

// Resolver 位置分离式碰撞处理，不做冲量求解
type Resolver struct {
	obstacle       config.ObstacleConfig
	maxEnemySize   float64
	contactBounce  bool
	bounceVelocity float64
}

// NewResolver 创建碰撞处理器
func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		obstacle:       cfg.Obstacle,
		maxEnemySize:   cfg.Enemy.MaxSize,
		contactBounce:  cfg.Enemy.ContactBounce,
		bounceVelocity: cfg.Enemy.BounceVelocity,
	}
}

// Contact 一次碰撞
type Contact struct {
	EnemyID    string
	ObstacleID string
	Normal     mgl64.Vec2
}

// EnemyPushStrength 敌人越大，把角色推开得越远
func (r *Resolver) EnemyPushStrength(size float64) float64 {
	return 0.15 + size/r.maxEnemySize*0.1
}

// CharacterEnemy 角色与敌人重叠时把角色沿敌人->角色方向推开
func (r *Resolver) CharacterEnemy(c *models.Character, enemies []*models.Enemy) []Contact {
	var contacts []Contact
	for _, e := range enemies {
		if !e.Active() {
			continue
		}
		offset := c.Position.Sub(e.Position)
		if offset.Len() >= c.Radius+e.Size() {
			continue
		}

		normal := flatten(offset)
		if normal.Len() == 0 {
			normal = flatten(c.Facing.Mul(-1))
		}
		normal = safeNormalize(normal)

		c.MoveHorizontal(normal.Mul(r.EnemyPushStrength(e.Size())))
		if r.contactBounce && c.Grounded {
			c.VerticalVelocity = r.bounceVelocity
			c.Grounded = false
		}
		contacts = append(contacts, Contact{EnemyID: e.ID, Normal: normal})
	}
	return contacts
}

// CharacterObstacles 角色与障碍物碰撞，运动中的障碍物会额外给角色一个击退速度
func (r *Resolver) CharacterObstacles(c *models.Character, obstacles []*models.Obstacle) []Contact {
	var contacts []Contact
	for _, o := range obstacles {
		normal, hit := ObstacleContact(c.Horizontal(), c.Radius, o)
		if !hit {
			continue
		}
		dir, force := r.obstaclePush(normal, o)
		c.MoveHorizontal(dir.Mul(force))
		if o.Movement != nil {
			c.PushVelocity = c.PushVelocity.Add(dir.Mul(force * 0.5))
		}
		contacts = append(contacts, Contact{ObstacleID: o.ID, Normal: normal})
	}
	return contacts
}

// EnemyObstacles 敌人与障碍物碰撞，被击退的敌人按法线反射击退速度
func (r *Resolver) EnemyObstacles(enemies []*models.Enemy, obstacles []*models.Obstacle) []Contact {
	var contacts []Contact
	for _, e := range enemies {
		if !e.Active() {
			continue
		}
		for _, o := range obstacles {
			normal, hit := ObstacleContact(e.Horizontal(), e.Size(), o)
			if !hit {
				continue
			}
			dir, force := r.obstaclePush(normal, o)
			e.MoveHorizontal(dir.Mul(force))
			if e.IsPushed() && e.PushVelocity.Dot(normal) < 0 {
				e.PushVelocity = Reflect(e.PushVelocity, normal)
			}
			contacts = append(contacts, Contact{EnemyID: e.ID, ObstacleID: o.ID, Normal: normal})
		}
	}
	return contacts
}

// BulletHit 返回子弹命中的第一个敌人
func BulletHit(b *models.Bullet, bulletRadius float64, enemies []*models.Enemy) *models.Enemy {
	for _, e := range enemies {
		if !e.Active() {
			continue
		}
		if b.Position.Sub(e.Position).Len() < bulletRadius+e.Size() {
			return e
		}
	}
	return nil
}

// ObstacleContact 计算水平面上圆与障碍物的重叠，返回由障碍物指向实体的法线
func ObstacleContact(pos mgl64.Vec2, radius float64, o *models.Obstacle) (mgl64.Vec2, bool) {
	center := o.Horizontal()
	switch o.Shape {
	case models.ShapeBox:
		halfW, halfD := o.Width/2, o.Depth/2
		closest := mgl64.Vec2{
			mgl64.Clamp(pos.X(), center.X()-halfW, center.X()+halfW),
			mgl64.Clamp(pos.Y(), center.Y()-halfD, center.Y()+halfD),
		}
		offset := pos.Sub(closest)
		if offset.Len() >= radius {
			return mgl64.Vec2{}, false
		}
		if offset.Len() == 0 {
			// 圆心已在盒内
			offset = pos.Sub(center)
		}
		return safeNormalize(offset), true
	case models.ShapeCylinder:
		offset := pos.Sub(center)
		if offset.Len() >= radius+o.Radius {
			return mgl64.Vec2{}, false
		}
		return safeNormalize(offset), true
	}
	return mgl64.Vec2{}, false
}

// obstaclePush 计算推开方向和力度，运动障碍物把自身运动方向混入法线
func (r *Resolver) obstaclePush(normal mgl64.Vec2, o *models.Obstacle) (mgl64.Vec2, float64) {
	force := r.obstacle.BasePush
	m := o.Movement
	if m == nil {
		return normal, force
	}

	var heading mgl64.Vec2
	switch m.Pattern {
	case models.PatternLinear:
		heading = flatten(m.Direction)
		if !m.Forward {
			heading = heading.Mul(-1)
		}
		force += m.Speed * r.obstacle.SpeedPushScale
	case models.PatternZigzag, models.PatternBounce:
		heading = flatten(m.Direction)
		force += m.Speed * r.obstacle.SpeedPushScale
	case models.PatternCircular:
		radial := o.Horizontal().Sub(flatten(m.Center))
		heading = safeNormalize(mgl64.Vec2{-radial.Y(), radial.X()})
		force += m.Speed * m.OrbitRadius
	}

	dir := normal.Add(heading.Mul(r.obstacle.MovementInfluence))
	if dir.Len() == 0 {
		return normal, force
	}
	return dir.Normalize(), force
}

// Reflect 按法线反射水平向量
func Reflect(v, normal mgl64.Vec2) mgl64.Vec2 {
	return v.Sub(normal.Mul(2 * v.Dot(normal)))
}

func flatten(v mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{v.X(), v.Z()}
}

func safeNormalize(v mgl64.Vec2) mgl64.Vec2 {
	if v.Len() == 0 {
		return fallbackNormal
	}
	return v.Normalize()
}
