package game

import "github.com/go-gl/mathgl/mgl64"

// EventType 帧事件类型
type EventType string

const (
	// EventHit 子弹命中特效
	EventHit EventType = "hit"
	// EventRecolor 敌人变色
	EventRecolor EventType = "recolor"
	// EventEliminated 敌人坠落出局
	EventEliminated EventType = "eliminated"
	// EventPush 推击
	EventPush EventType = "push"
	// EventShot 射击
	EventShot EventType = "shot"
	// EventGameOver 玩家坠落，本局结束
	EventGameOver EventType = "game_over"
	// EventReset 重新开始
	EventReset EventType = "reset"
)

// Event 帧事件，交给表现层处理
type Event struct {
	Type     EventType  `json:"type" msgpack:"type"`
	EnemyID  string     `json:"enemy_id,omitempty" msgpack:"enemy_id,omitempty"`
	Targets  []string   `json:"targets,omitempty" msgpack:"targets,omitempty"`
	Position mgl64.Vec3 `json:"position" msgpack:"position"`
}
