package core

// 模拟帧率
const (
	TPS            = 60
	FixedDeltaTime = float32(1.0) / TPS
)

// 角色碰撞体（胶囊近似为竖直 AABB）
const (
	CharacterRadius = 0.3
	CharacterHeight = 1.8

	GroundCheckDistance = 0.05  // 着地检测的向下探测距离
	CollisionEpsilon    = 1e-4  // 轴向碰撞容差
	MinPitch            = -90.0 // 俯仰角下限（度）
	MaxPitch            = 90.0  // 俯仰角上限（度）
)

// 移动参数默认值
const (
	DefaultWalkingSpeed        = 2.5
	DefaultSprintMultiplier    = 2.0
	DefaultAccelerationRate    = 25.0
	DefaultDecelerationRate    = 35.0
	DefaultMaxStepDownDistance = 0.25
	DefaultJumpStrength        = 5.0
	DefaultGravityAcceleration = -9.81
)

// 视角灵敏度默认值（纵向为负表示鼠标上移抬头）
const (
	DefaultSensitivityX = 1.6
	DefaultSensitivityY = -1.0
)

// 出生点配置
const (
	MaxCharacters     = 16  // 单个房间最大角色数
	SpawnSpacing      = 1.0 // 相邻出生点间距
	InputBufferWindow = 128 // 权威端每个角色最多缓存的输入帧数
)
