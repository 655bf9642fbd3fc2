package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MovementConfig 移动调参
type MovementConfig struct {
	WalkingSpeed        float32 `yaml:"walking_speed"`
	SprintMultiplier    float32 `yaml:"sprint_multiplier"`
	AccelerationRate    float32 `yaml:"acceleration_rate"`
	DecelerationRate    float32 `yaml:"deceleration_rate"`
	MaxStepDownDistance float32 `yaml:"max_step_down_distance"`
	JumpStrength        float32 `yaml:"jump_strength"`
	GravityAcceleration float32 `yaml:"gravity_acceleration"`
}

// DefaultMovementConfig 默认调参
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{
		WalkingSpeed:        DefaultWalkingSpeed,
		SprintMultiplier:    DefaultSprintMultiplier,
		AccelerationRate:    DefaultAccelerationRate,
		DecelerationRate:    DefaultDecelerationRate,
		MaxStepDownDistance: DefaultMaxStepDownDistance,
		JumpStrength:        DefaultJumpStrength,
		GravityAcceleration: DefaultGravityAcceleration,
	}
}

// CharacterState 网络同步的角色状态
type CharacterState struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Yaw      float32 // 度，不做归一化
	Pitch    float32 // 度，[-90, 90]
	Grounded bool
}

// Look 第 1 步：根据输入更新偏航和俯仰
// 没有输入时保持原朝向，返回本帧的目标速度
func Look(state CharacterState, input *InputRecord, cfg MovementConfig) (CharacterState, mgl32.Vec3) {
	if input == nil {
		return state, mgl32.Vec3{}
	}

	state.Pitch = ClampPitch(state.Pitch + input.LookDelta.Y())
	state.Yaw += input.LookDelta.X()

	sprintMultiplier := float32(1)
	if input.Sprinting {
		sprintMultiplier = cfg.SprintMultiplier
	}

	movement := input.ClampedMovement()
	local := mgl32.Vec3{movement.X(), 0, movement.Y()}
	target := YawRotation(state.Yaw).Rotate(local).Mul(cfg.WalkingSpeed * sprintMultiplier)
	target[1] = 0
	return state, target
}

// Integrate 确定性的单帧移动积分
// 权威端与开启预测的输入源以同样的输入调用它，得到相同结果
func Integrate(state CharacterState, input *InputRecord, env Environment, cfg MovementConfig, dt float32) CharacterState {
	next, target := Look(state, input, cfg)
	jump := input != nil && input.JumpRequested

	probe := NewGroundProbe(env)
	groundedPreMove := probe.IsGrounded(next.Position)

	planar := mgl32.Vec3{next.Velocity.X(), 0, next.Velocity.Z()}
	rate := accelerationRate(planar, target, cfg)
	planar = moveTowards(planar, target, rate*dt)

	velocity := mgl32.Vec3{planar.X(), next.Velocity.Y(), planar.Z()}
	if groundedPreMove && jump {
		velocity[1] = cfg.JumpStrength
	}
	velocity[1] += cfg.GravityAcceleration * dt

	position := next.Position
	if env != nil {
		position = env.Move(position, velocity.Mul(dt))
	} else {
		position = position.Add(velocity.Mul(dt))
	}

	groundedPostMove := probe.IsGrounded(position)
	if groundedPreMove && !groundedPostMove && velocity.Y() <= 0 {
		if distance, hit := probe.StepDownCheck(position, cfg.MaxStepDownDistance); hit {
			position = env.Move(position, mgl32.Vec3{0, -distance, 0})
			groundedPostMove = true
		}
	}

	if groundedPostMove {
		velocity[1] = 0
	}

	next.Position = position
	next.Velocity = velocity
	next.Grounded = groundedPostMove
	return next
}

// accelerationRate 按当前速度与目标速度的方向一致程度在减速率和加速率之间插值
// 当前速度不小于目标速度时总是使用减速率
func accelerationRate(current, target mgl32.Vec3, cfg MovementConfig) float32 {
	if current.Dot(current) >= target.Dot(target) {
		return cfg.DecelerationRate
	}
	// 静止起步视为方向一致
	if current.Dot(current) == 0 {
		return cfg.AccelerationRate
	}
	alignment := (safeNormalize(current).Dot(safeNormalize(target)) + 1) / 2
	return lerp(cfg.DecelerationRate, cfg.AccelerationRate, alignment)
}

// moveTowards 以不超过 maxDelta 的步长线性逼近目标
func moveTowards(current, target mgl32.Vec3, maxDelta float32) mgl32.Vec3 {
	diff := target.Sub(current)
	dist := diff.Len()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return current.Add(diff.Mul(maxDelta / dist))
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || math32.IsNaN(l) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

func lerp(a, b, t float32) float32 {
	t = mgl32.Clamp(t, 0, 1)
	return a + (b-a)*t
}
