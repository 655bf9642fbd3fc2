package core

import "github.com/go-gl/mathgl/mgl32"

// GroundProbe 着地检测与下台阶修正
type GroundProbe struct {
	env Environment
}

// NewGroundProbe 创建探测器
func NewGroundProbe(env Environment) GroundProbe {
	return GroundProbe{env: env}
}

// IsGrounded 脚底短距离向下检测
func (g GroundProbe) IsGrounded(position mgl32.Vec3) bool {
	if g.env == nil {
		return false
	}
	_, hit := g.env.GroundDistance(position, GroundCheckDistance)
	return hit
}

// StepDownCheck 较长的有界向下探测，只在失去接触后调用
func (g GroundProbe) StepDownCheck(position mgl32.Vec3, maxDistance float32) (float32, bool) {
	if g.env == nil || maxDistance <= 0 {
		return 0, false
	}
	return g.env.GroundDistance(position, maxDistance)
}
