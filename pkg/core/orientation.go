package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	axisUp    = mgl32.Vec3{0, 1, 0}
	axisRight = mgl32.Vec3{1, 0, 0}
	forward   = mgl32.Vec3{0, 0, 1}
)

// Orientation 角色朝向
// 偏航作用于整个身体（模拟用与渲染用各一份），俯仰只作用于相机挂点
type Orientation struct {
	Body        mgl32.Quat // 模拟用身体旋转，物理查询读取它
	Visual      mgl32.Quat // 渲染用身体旋转
	CameraMount mgl32.Quat // 相机挂点的本地旋转

	SimYaw    float32
	VisualYaw float32
	Pitch     float32
}

// NewOrientation 创建单位朝向
func NewOrientation() Orientation {
	return Orientation{
		Body:        mgl32.QuatIdent(),
		Visual:      mgl32.QuatIdent(),
		CameraMount: mgl32.QuatIdent(),
	}
}

// SetSimulated 同时旋转模拟身体、渲染身体和相机挂点
func (o *Orientation) SetSimulated(yaw, pitch float32) {
	o.SimYaw = yaw
	o.Body = YawRotation(yaw)
	o.SetVisual(yaw, pitch)
}

// SetVisual 只旋转渲染身体和相机挂点，模拟身体保持不变
func (o *Orientation) SetVisual(yaw, pitch float32) {
	pitch = ClampPitch(pitch)
	o.VisualYaw = yaw
	o.Pitch = pitch
	o.Visual = YawRotation(yaw)
	o.CameraMount = mgl32.QuatRotate(mgl32.DegToRad(pitch), axisRight)
}

// Forward 渲染身体的前方向
func (o Orientation) Forward() mgl32.Vec3 {
	return o.Visual.Rotate(forward)
}

// CameraForward 相机朝向（身体偏航 × 挂点俯仰）
func (o Orientation) CameraForward() mgl32.Vec3 {
	return o.Visual.Mul(o.CameraMount).Rotate(forward)
}

// YawRotation 绕竖直轴旋转 yaw 度
func YawRotation(yaw float32) mgl32.Quat {
	return mgl32.QuatRotate(mgl32.DegToRad(yaw), axisUp)
}

// ClampPitch 俯仰角限制在 [-90, 90]
func ClampPitch(pitch float32) float32 {
	if math32.IsNaN(pitch) {
		return 0
	}
	return mgl32.Clamp(pitch, MinPitch, MaxPitch)
}

// NormalizeYaw 将偏航角折算到 [0, 360)，仅用于显示
func NormalizeYaw(yaw float32) float32 {
	yaw = math32.Mod(yaw, 360)
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

// LerpYaw 沿最短弧线插值偏航角
func LerpYaw(from, to, t float32) float32 {
	diff := math32.Mod(to-from, 360)
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	return from + diff*t
}
