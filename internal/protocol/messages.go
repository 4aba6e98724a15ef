// messages.go

package protocol

// 客户端消息类型
const (
	MsgInput = "input"
	MsgReset = "reset"
	MsgCodec = "codec"
)

// 服务端消息类型
const (
	MsgWelcome = "welcome"
	MsgFrame   = "frame"
	MsgError   = "error"
)

// Vector3 三维向量
type Vector3 struct {
	X float32 `json:"x" msgpack:"x"`
	Y float32 `json:"y" msgpack:"y"`
	Z float32 `json:"z" msgpack:"z"`
}

// CharacterState 角色状态
type CharacterState struct {
	Id             string  `json:"id" msgpack:"id"`
	Position       Vector3 `json:"position" msgpack:"position"`
	Facing         Vector3 `json:"facing" msgpack:"facing"`
	Radius         float32 `json:"radius" msgpack:"radius"`
	Grounded       bool    `json:"grounded" msgpack:"grounded"`
	Falling        bool    `json:"falling" msgpack:"falling"`
	Pushing        bool    `json:"pushing" msgpack:"pushing"`
	PushCooldownMs int32   `json:"push_cooldown_ms" msgpack:"push_cooldown_ms"`
	ShotCooldownMs int32   `json:"shot_cooldown_ms" msgpack:"shot_cooldown_ms"`
}

// EnemyState 敌人状态
type EnemyState struct {
	Id          string  `json:"id" msgpack:"id"`
	Position    Vector3 `json:"position" msgpack:"position"`
	Size        float32 `json:"size" msgpack:"size"`
	Falling     bool    `json:"falling" msgpack:"falling"`
	Eliminated  bool    `json:"eliminated" msgpack:"eliminated"`
	HitByBullet bool    `json:"hit_by_bullet" msgpack:"hit_by_bullet"`
}

// BulletState 子弹状态
type BulletState struct {
	Id        string  `json:"id" msgpack:"id"`
	Position  Vector3 `json:"position" msgpack:"position"`
	Direction Vector3 `json:"direction" msgpack:"direction"`
}

// ObstacleState 障碍物状态
type ObstacleState struct {
	Id       string  `json:"id" msgpack:"id"`
	Shape    string  `json:"shape" msgpack:"shape"`
	Pattern  string  `json:"pattern,omitempty" msgpack:"pattern,omitempty"`
	Position Vector3 `json:"position" msgpack:"position"`
	Width    float32 `json:"width,omitempty" msgpack:"width,omitempty"`
	Depth    float32 `json:"depth,omitempty" msgpack:"depth,omitempty"`
	Height   float32 `json:"height" msgpack:"height"`
	Radius   float32 `json:"radius,omitempty" msgpack:"radius,omitempty"`
}

// PlatformInfo 平台几何
type PlatformInfo struct {
	Shape         string  `json:"shape" msgpack:"shape"`
	Center        Vector3 `json:"center" msgpack:"center"`
	Radius        float32 `json:"radius,omitempty" msgpack:"radius,omitempty"`
	HalfX         float32 `json:"half_x,omitempty" msgpack:"half_x,omitempty"`
	HalfZ         float32 `json:"half_z,omitempty" msgpack:"half_z,omitempty"`
	SurfaceHeight float32 `json:"surface_height" msgpack:"surface_height"`
}

// FrameEvent 帧事件
type FrameEvent struct {
	Type     string   `json:"type" msgpack:"type"`
	EnemyId  string   `json:"enemy_id,omitempty" msgpack:"enemy_id,omitempty"`
	Targets  []string `json:"targets,omitempty" msgpack:"targets,omitempty"`
	Position Vector3  `json:"position" msgpack:"position"`
}

// ScoreInfo 本局统计
type ScoreInfo struct {
	Eliminations int32 `json:"eliminations" msgpack:"eliminations"`
	Hits         int32 `json:"hits" msgpack:"hits"`
	Shots        int32 `json:"shots" msgpack:"shots"`
	Pushes       int32 `json:"pushes" msgpack:"pushes"`
	ElapsedMs    int64 `json:"elapsed_ms" msgpack:"elapsed_ms"`
}

// GameFrame 每帧推送给客户端的完整状态
type GameFrame struct {
	Type      string           `json:"type" msgpack:"type"`
	FrameId   int64            `json:"frame_id" msgpack:"frame_id"`
	Timestamp int64            `json:"timestamp" msgpack:"timestamp"`
	Active    bool             `json:"active" msgpack:"active"`
	Character *CharacterState  `json:"character" msgpack:"character"`
	Enemies   []*EnemyState    `json:"enemies" msgpack:"enemies"`
	Bullets   []*BulletState   `json:"bullets" msgpack:"bullets"`
	Obstacles []*ObstacleState `json:"obstacles" msgpack:"obstacles"`
	Events    []*FrameEvent    `json:"events,omitempty" msgpack:"events,omitempty"`
	Score     *ScoreInfo       `json:"score" msgpack:"score"`
}

// Welcome 连接建立后的首条消息
type Welcome struct {
	Type     string        `json:"type" msgpack:"type"`
	RoomId   string        `json:"room_id" msgpack:"room_id"`
	PlayerId string        `json:"player_id" msgpack:"player_id"`
	Codec    string        `json:"codec" msgpack:"codec"`
	Platform *PlatformInfo `json:"platform" msgpack:"platform"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Type      string `json:"type" msgpack:"type"`
	Message   string `json:"message" msgpack:"message"`
	ErrorCode string `json:"error_code" msgpack:"error_code"`
}
