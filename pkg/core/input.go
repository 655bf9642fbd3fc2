package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// InputRecord 表示一个模拟帧内玩家的输入
// 视角增量与跳跃在多个渲染帧间累加，移动与冲刺取最后一次采样
type InputRecord struct {
	LookDelta     mgl32.Vec2 // x: 偏航增量, y: 俯仰增量（度）
	Movement      mgl32.Vec2 // x: 横移, y: 前后
	Sprinting     bool
	JumpRequested bool
}

// AddLook 累加视角增量
func (r *InputRecord) AddLook(delta mgl32.Vec2) {
	r.LookDelta = r.LookDelta.Add(sanitizeVec2(delta))
}

// SetMovement 覆盖移动轴和冲刺状态
func (r *InputRecord) SetMovement(movement mgl32.Vec2, sprinting bool) {
	r.Movement = sanitizeVec2(movement)
	r.Sprinting = sprinting
}

// RequestJump 记录一次跳跃按下（或运算，不会丢失）
func (r *InputRecord) RequestJump(pressed bool) {
	r.JumpRequested = r.JumpRequested || pressed
}

// Reset 发送后重新开始累积
func (r *InputRecord) Reset() {
	*r = InputRecord{}
}

// ClampedMovement 返回长度不超过 1 的移动向量，避免斜向加速
func (r InputRecord) ClampedMovement() mgl32.Vec2 {
	return clampMagnitude(r.Movement, 1)
}

func clampMagnitude(v mgl32.Vec2, maxLen float32) mgl32.Vec2 {
	sq := v.Dot(v)
	if sq <= maxLen*maxLen {
		return v
	}
	return v.Mul(maxLen / math32.Sqrt(sq))
}

// sanitizeVec2 异常的硬件数值按零输入处理
func sanitizeVec2(v mgl32.Vec2) mgl32.Vec2 {
	for i := range v {
		if math32.IsNaN(v[i]) || math32.IsInf(v[i], 0) {
			v[i] = 0
		}
	}
	return v
}
