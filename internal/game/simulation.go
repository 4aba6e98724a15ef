// simulation.go

package game

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/ai"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/combat"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/obstacle"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/physics"
)

// Input 一帧内的玩家输入
type Input struct {
	Move mgl64.Vec3  `json:"move" msgpack:"move"`
	Jump bool        `json:"jump,omitempty" msgpack:"jump,omitempty"`
	Push bool        `json:"push,omitempty" msgpack:"push,omitempty"`
	Fire bool        `json:"fire,omitempty" msgpack:"fire,omitempty"`
	Aim  *combat.Ray `json:"aim,omitempty" msgpack:"aim,omitempty"`
}

// merge 合并同一帧内收到的多条输入，离散动作只要出现过就保留
func (in Input) merge(next Input) Input {
	in.Move = next.Move
	in.Jump = in.Jump || next.Jump
	in.Push = in.Push || next.Push
	if next.Fire {
		in.Fire = true
		in.Aim = next.Aim
	}
	return in
}

// SessionStats 本局统计
type SessionStats struct {
	Eliminations int `json:"eliminations"`
	Hits         int `json:"hits"`
	Shots        int `json:"shots"`
	Pushes       int `json:"pushes"`
}

// State 单局模拟状态，由房间循环独占
type State struct {
	cfg *config.Config
	rng *rand.Rand

	Platform  *models.Platform
	Character *models.Character
	Enemies   []*models.Enemy
	Bullets   []*models.Bullet
	Obstacles []*models.Obstacle

	Active    bool
	Frame     int64
	StartedAt time.Time
	EndedAt   time.Time
	Stats     SessionStats

	integrator *physics.Integrator
	enforcer   *physics.Enforcer
	resolver   *physics.Resolver
	combat     *combat.Combat
	mover      *obstacle.Mover
	steering   *ai.Steering

	events []Event
}

// NewState 校验配置并创建一局新的模拟
func NewState(cfg *config.Config, rng *rand.Rand, now time.Time) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("创建模拟失败: %w", err)
	}

	s := &State{
		cfg:        cfg,
		rng:        rng,
		integrator: physics.NewIntegrator(cfg.Physics),
		enforcer:   physics.NewEnforcer(cfg.Physics),
		resolver:   physics.NewResolver(cfg),
		combat:     combat.New(cfg, rng),
		mover:      obstacle.NewMover(cfg.Obstacle, rng),
		steering:   ai.NewSteering(cfg.Enemy, rng),
	}
	if err := s.Reset(now); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset 重建平台、角色、敌人和障碍物，清空子弹和统计
func (s *State) Reset(now time.Time) error {
	platform, err := s.newPlatform()
	if err != nil {
		return err
	}

	spawn := platform.Center.Add(mgl64.Vec3{0, platform.SurfaceOffset, 0})
	character, err := models.NewCharacter(spawn, s.cfg.Character.Radius)
	if err != nil {
		return err
	}

	enemies := make([]*models.Enemy, 0, s.cfg.Enemy.Count)
	for i := 0; i < s.cfg.Enemy.Count; i++ {
		e, err := models.NewEnemy(s.enemySpawn(platform), s.steering.RandomSize(), s.steering.RandomDirection())
		if err != nil {
			return err
		}
		e.NextTurnAt = s.steering.NextTurn(now)
		enemies = append(enemies, e)
	}

	var obstacles []*models.Obstacle
	if s.cfg.Obstacle.Enabled {
		obstacles = obstacle.Build(obstacle.DefaultLayout, platform, s.cfg.Obstacle, now)
	}

	s.Platform = platform
	s.Character = character
	s.Enemies = enemies
	s.Bullets = nil
	s.Obstacles = obstacles
	s.Active = true
	s.Frame = 0
	s.StartedAt = now
	s.EndedAt = time.Time{}
	s.Stats = SessionStats{}
	s.events = s.events[:0]
	return nil
}

func (s *State) newPlatform() (*models.Platform, error) {
	p := s.cfg.Physics
	center := mgl64.Vec3{0, p.PlatformY, 0}
	if models.PlatformShape(p.PlatformShape) == models.PlatformRect {
		return models.NewRectPlatform(center, p.PlatformHalfX, p.PlatformHalfZ, p.SurfaceOffset)
	}
	return models.NewCirclePlatform(center, p.PlatformRadius, p.SurfaceOffset)
}

// enemySpawn 在出生范围内随机取点，出生范围不超过敌人边界。圆形平台落在边界外时重新取
func (s *State) enemySpawn(p *models.Platform) mgl64.Vec3 {
	boundary := s.cfg.Physics.EnemyBoundary
	surface := p.SurfaceHeight()

	if p.Shape == models.PlatformRect {
		inset := p.Extent() - boundary
		sx := math.Min(s.cfg.Enemy.SpawnSpread, p.HalfX-inset)
		sz := math.Min(s.cfg.Enemy.SpawnSpread, p.HalfZ-inset)
		x := s.rng.Float64()*2*sx - sx
		z := s.rng.Float64()*2*sz - sz
		return mgl64.Vec3{p.Center.X() + x, surface, p.Center.Z() + z}
	}

	spread := math.Min(s.cfg.Enemy.SpawnSpread, boundary)
	for {
		h := mgl64.Vec2{s.rng.Float64()*2*spread - spread, s.rng.Float64()*2*spread - spread}
		if h.Len() <= boundary {
			return mgl64.Vec3{p.Center.X() + h.X(), surface, p.Center.Z() + h.Y()}
		}
	}
}

// Tick 按固定顺序推进一帧：重力、边界、碰撞、战斗、障碍物
func (s *State) Tick(in Input, now time.Time) []Event {
	if !s.Active {
		return nil
	}
	s.Frame++
	s.events = s.events[:0]
	ch := s.Character
	p := s.Platform

	s.moveCharacter(in)
	s.integrator.ApplyPush(&ch.Body)
	if !s.integrator.Apply(&ch.Body, p) {
		s.Active = false
		s.EndedAt = now
		s.emit(Event{Type: EventGameOver, Position: ch.Position})
		return s.events
	}

	kept := s.Enemies[:0]
	for _, e := range s.Enemies {
		s.steering.Steer(e, ch.Position, now)
		s.integrator.ApplyPush(&e.Body)
		if !s.integrator.ApplyEnemy(e, p) {
			s.Stats.Eliminations++
			s.emit(Event{Type: EventEliminated, EnemyID: e.ID, Position: e.Position})
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.Enemies); i++ {
		s.Enemies[i] = nil
	}
	s.Enemies = kept

	s.enforcer.Enforce(&ch.Body, nil, p, s.cfg.Physics.PlayerBoundary)
	for _, e := range s.Enemies {
		s.enforcer.Enforce(&e.Body, &e.Direction, p, s.cfg.Physics.EnemyBoundary)
	}

	s.resolver.CharacterEnemy(ch, s.Enemies)
	s.resolver.CharacterObstacles(ch, s.Obstacles)
	s.resolver.EnemyObstacles(s.Enemies, s.Obstacles)

	if in.Push {
		if affected, ok := s.combat.Push(ch, s.Enemies, now); ok {
			s.Stats.Pushes++
			ev := Event{Type: EventPush, Position: ch.Position}
			for _, e := range affected {
				ev.Targets = append(ev.Targets, e.ID)
			}
			s.emit(ev)
		}
	}
	if in.Fire {
		if b, ok := s.combat.Fire(ch, in.Aim, p.SurfaceHeight(), now); ok {
			s.Bullets = append(s.Bullets, b)
			s.Stats.Shots++
			s.emit(Event{Type: EventShot, Position: b.Position})
		}
	}
	s.Bullets = s.combat.UpdateBullets(s.Bullets, s.Enemies, p, now, s)

	s.mover.AdvanceAll(s.Obstacles, p, now)
	return s.events
}

// moveCharacter 下落中不响应水平输入
func (s *State) moveCharacter(in Input) {
	ch := s.Character
	if ch.Falling {
		return
	}
	move := in.Move
	move[1] = 0
	if models.IsFinite(move) && move.Len() > 1e-9 {
		move = move.Normalize()
	} else {
		move = mgl64.Vec3{}
	}
	// 分量过大时归一化结果会退化为零
	if models.IsFinite(move) && move.Len() > 0.5 {
		ch.MoveDirection = move
		ch.Facing = move
		ch.Position = ch.Position.Add(move.Mul(s.cfg.Character.Speed))
	} else {
		ch.MoveDirection = mgl64.Vec3{}
	}
	if in.Jump {
		physics.Jump(&ch.Body, s.cfg.Character.JumpStrength)
	}
}

// IsPushing 推击姿态
func (s *State) IsPushing(now time.Time) bool {
	return s.combat.IsPushing(s.Character, now)
}

// Cooldowns 推击和射击的剩余冷却
func (s *State) Cooldowns(now time.Time) (push, shot time.Duration) {
	cd := s.Character.Cooldowns
	return combat.RemainingCooldown(cd, combat.AbilityPush, s.cfg.Combat.PushCooldown, now),
		combat.RemainingCooldown(cd, combat.AbilityShot, s.cfg.Combat.ShotCooldown, now)
}

// HitEffect 实现 combat.Effects
func (s *State) HitEffect(position mgl64.Vec3) {
	s.Stats.Hits++
	s.emit(Event{Type: EventHit, Position: position})
}

// EnemyRecolor 实现 combat.Effects
func (s *State) EnemyRecolor(enemyID string) {
	s.emit(Event{Type: EventRecolor, EnemyID: enemyID})
}

func (s *State) emit(ev Event) {
	s.events = append(s.events, ev)
}
