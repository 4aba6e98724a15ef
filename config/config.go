// config.go

package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Physics   PhysicsConfig   `mapstructure:"physics"`
	Character CharacterConfig `mapstructure:"character"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Enemy     EnemyConfig     `mapstructure:"enemy"`
	Obstacle  ObstacleConfig  `mapstructure:"obstacle"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	GamePort     int           `mapstructure:"game_port"`
	GatewayPort  int           `mapstructure:"gateway_port"`
	Debug        bool          `mapstructure:"debug"`
	LogLevel     string        `mapstructure:"log_level"`
	MaxRoomCount int           `mapstructure:"max_room_count"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	FrameCodec   string        `mapstructure:"frame_codec"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	// Postgres不可用时的本地库，空则不回退
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 令牌配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// PhysicsConfig 物理参数
type PhysicsConfig struct {
	Gravity           float64 `mapstructure:"gravity"`
	TimeScale         float64 `mapstructure:"time_scale"`
	FatalFallDepth    float64 `mapstructure:"fatal_fall_depth"`
	SurfaceOffset     float64 `mapstructure:"surface_offset"`
	RestEpsilon       float64 `mapstructure:"rest_epsilon"`
	LandingDepth      float64 `mapstructure:"landing_depth"`
	PlatformShape     string  `mapstructure:"platform_shape"` // circle 或 rect
	PlatformRadius    float64 `mapstructure:"platform_radius"`
	PlatformHalfX     float64 `mapstructure:"platform_half_x"`
	PlatformHalfZ     float64 `mapstructure:"platform_half_z"`
	PlatformY         float64 `mapstructure:"platform_y"`
	PlayerBoundary    float64 `mapstructure:"player_boundary"`
	EnemyBoundary     float64 `mapstructure:"enemy_boundary"`
	PushDeceleration  float64 `mapstructure:"push_deceleration"`
	PushStopThreshold float64 `mapstructure:"push_stop_threshold"`
	Restitution       float64 `mapstructure:"restitution"`
}

// CharacterConfig 玩家角色参数
type CharacterConfig struct {
	Radius       float64 `mapstructure:"radius"`
	Speed        float64 `mapstructure:"speed"`
	JumpStrength float64 `mapstructure:"jump_strength"`
}

// CombatConfig 战斗参数
type CombatConfig struct {
	PushDistance       float64       `mapstructure:"push_distance"`
	PushForce          float64       `mapstructure:"push_force"`
	PushCooldown       time.Duration `mapstructure:"push_cooldown"`
	PushPose           time.Duration `mapstructure:"push_pose"`
	ShotCooldown       time.Duration `mapstructure:"shot_cooldown"`
	BulletSpeed        float64       `mapstructure:"bullet_speed"`
	BulletRadius       float64       `mapstructure:"bullet_radius"`
	BulletLifetime     time.Duration `mapstructure:"bullet_lifetime"`
	MuzzleOffset       float64       `mapstructure:"muzzle_offset"`
	KillUpwardVelocity float64       `mapstructure:"kill_upward_velocity"`
	KillScatter        float64       `mapstructure:"kill_scatter"`
}

// EnemyConfig 敌人参数
type EnemyConfig struct {
	Count          int           `mapstructure:"count"`
	MinSize        float64       `mapstructure:"min_size"`
	MaxSize        float64       `mapstructure:"max_size"`
	Speed          float64       `mapstructure:"speed"`
	Steering       string        `mapstructure:"steering"` // wander 或 chase
	TurnMin        time.Duration `mapstructure:"turn_min"`
	TurnMax        time.Duration `mapstructure:"turn_max"`
	SpawnSpread    float64       `mapstructure:"spawn_spread"`
	ContactBounce  bool          `mapstructure:"contact_bounce"`
	BounceVelocity float64       `mapstructure:"bounce_velocity"`
}

// ObstacleConfig 障碍物参数
type ObstacleConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BasePush          float64       `mapstructure:"base_push"`
	MovementInfluence float64       `mapstructure:"movement_influence"`
	SpeedPushScale    float64       `mapstructure:"speed_push_scale"`
	BounceRadius      float64       `mapstructure:"bounce_radius"`
	EdgeMargin        float64       `mapstructure:"edge_margin"`
	ZigzagInterval    time.Duration `mapstructure:"zigzag_interval"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config

	// ErrInvalidConfig 配置校验失败
	ErrInvalidConfig = errors.New("配置无效")
)

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) error {
	setDefaults(viper.GetViper())

	viper.SetConfigFile(configPath)
	viper.SetEnvPrefix("PLATFORM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	GlobalConfig = cfg
	return nil
}

// Default 返回全部默认值组成的配置
func Default() Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// 默认值均为合法类型，这里不会失败
	_ = v.Unmarshal(&cfg)
	return cfg
}

// setDefaults 注册所有配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.game_port", 8080)
	v.SetDefault("server.gateway_port", 8081)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.max_room_count", 100)
	v.SetDefault("server.tick_interval", 16*time.Millisecond)
	v.SetDefault("server.frame_codec", "json")
	v.SetDefault("server.idle_timeout", 5*time.Minute)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "platformbrawl")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.issuer", "platformbrawl")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("physics.gravity", 0.2)
	v.SetDefault("physics.time_scale", 0.1)
	v.SetDefault("physics.fatal_fall_depth", 12.0)
	v.SetDefault("physics.surface_offset", 1.0)
	v.SetDefault("physics.rest_epsilon", 0.05)
	v.SetDefault("physics.landing_depth", 1.0)
	v.SetDefault("physics.platform_shape", "circle")
	v.SetDefault("physics.platform_radius", 10.0)
	v.SetDefault("physics.platform_half_x", 10.0)
	v.SetDefault("physics.platform_half_z", 10.0)
	v.SetDefault("physics.platform_y", 2.0)
	v.SetDefault("physics.player_boundary", 9.5)
	v.SetDefault("physics.enemy_boundary", 9.0)
	v.SetDefault("physics.push_deceleration", 0.15)
	v.SetDefault("physics.push_stop_threshold", 0.01)
	v.SetDefault("physics.restitution", 0.5)

	v.SetDefault("character.radius", 0.5)
	v.SetDefault("character.speed", 0.15)
	v.SetDefault("character.jump_strength", 4.0)

	v.SetDefault("combat.push_distance", 2.0)
	v.SetDefault("combat.push_force", 2.0)
	v.SetDefault("combat.push_cooldown", 500*time.Millisecond)
	v.SetDefault("combat.push_pose", 300*time.Millisecond)
	v.SetDefault("combat.shot_cooldown", 300*time.Millisecond)
	v.SetDefault("combat.bullet_speed", 0.4)
	v.SetDefault("combat.bullet_radius", 0.1)
	v.SetDefault("combat.bullet_lifetime", 2000*time.Millisecond)
	v.SetDefault("combat.muzzle_offset", 0.6)
	v.SetDefault("combat.kill_upward_velocity", 0.2)
	v.SetDefault("combat.kill_scatter", 0.1)

	v.SetDefault("enemy.count", 5)
	v.SetDefault("enemy.min_size", 0.3)
	v.SetDefault("enemy.max_size", 0.7)
	v.SetDefault("enemy.speed", 0.1)
	v.SetDefault("enemy.steering", "wander")
	v.SetDefault("enemy.turn_min", time.Second)
	v.SetDefault("enemy.turn_max", 3*time.Second)
	v.SetDefault("enemy.spawn_spread", 8.0)
	v.SetDefault("enemy.contact_bounce", false)
	v.SetDefault("enemy.bounce_velocity", 1.0)

	v.SetDefault("obstacle.enabled", true)
	v.SetDefault("obstacle.base_push", 0.2)
	v.SetDefault("obstacle.movement_influence", 0.7)
	v.SetDefault("obstacle.speed_push_scale", 2.0)
	v.SetDefault("obstacle.bounce_radius", 6.0)
	v.SetDefault("obstacle.edge_margin", 1.0)
	v.SetDefault("obstacle.zigzag_interval", 2000*time.Millisecond)
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	p := c.Physics
	var extent float64
	switch p.PlatformShape {
	case "circle":
		if p.PlatformRadius <= 0 {
			return fmt.Errorf("%w: platform_radius 必须大于0", ErrInvalidConfig)
		}
		extent = p.PlatformRadius
	case "rect":
		if p.PlatformHalfX <= 0 || p.PlatformHalfZ <= 0 {
			return fmt.Errorf("%w: platform_half_x/platform_half_z 必须大于0", ErrInvalidConfig)
		}
		extent = math.Min(p.PlatformHalfX, p.PlatformHalfZ)
	default:
		return fmt.Errorf("%w: 未知平台形状 %q", ErrInvalidConfig, p.PlatformShape)
	}
	if !(p.PlayerBoundary > 0 && p.PlayerBoundary <= extent) {
		return fmt.Errorf("%w: player_boundary 必须在(0,%g]之间", ErrInvalidConfig, extent)
	}
	if !(p.EnemyBoundary > 0 && p.EnemyBoundary <= extent) {
		return fmt.Errorf("%w: enemy_boundary 必须在(0,%g]之间", ErrInvalidConfig, extent)
	}
	if p.Gravity <= 0 || p.TimeScale <= 0 {
		return fmt.Errorf("%w: gravity/time_scale 必须大于0", ErrInvalidConfig)
	}
	if p.PushDeceleration <= 0 || p.PushDeceleration >= 1 {
		return fmt.Errorf("%w: push_deceleration 必须在(0,1)之间", ErrInvalidConfig)
	}
	if c.Character.Radius <= 0 {
		return fmt.Errorf("%w: character.radius 必须大于0", ErrInvalidConfig)
	}
	if c.Enemy.MinSize <= 0 || c.Enemy.MinSize >= c.Enemy.MaxSize {
		return fmt.Errorf("%w: enemy.min_size 必须大于0且小于max_size", ErrInvalidConfig)
	}
	if !(c.Enemy.SpawnSpread >= 0) {
		return fmt.Errorf("%w: enemy.spawn_spread 不能为负", ErrInvalidConfig)
	}
	if c.Enemy.Count < 0 {
		return fmt.Errorf("%w: enemy.count 不能为负", ErrInvalidConfig)
	}
	if c.Enemy.Steering != "wander" && c.Enemy.Steering != "chase" {
		return fmt.Errorf("%w: 未知敌人行为 %q", ErrInvalidConfig, c.Enemy.Steering)
	}
	if c.Combat.PushDistance <= 0 || c.Combat.BulletSpeed <= 0 || c.Combat.BulletRadius <= 0 {
		return fmt.Errorf("%w: 战斗参数必须大于0", ErrInvalidConfig)
	}
	if c.Server.TickInterval <= 0 {
		return fmt.Errorf("%w: tick_interval 必须大于0", ErrInvalidConfig)
	}
	return nil
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
