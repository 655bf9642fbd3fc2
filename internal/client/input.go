package client

import (
	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
)

// DeviceSample 一帧的原始输入
type DeviceSample struct {
	Look   mgl32.Vec2 // 视角轴（未乘灵敏度）
	Move   mgl32.Vec2 // x 为左右，y 为前后
	Sprint float32    // 冲刺键按下程度，大于 0 视为按下
	Jump   bool       // 本帧刚按下跳跃
	Escape bool       // 本帧刚按下 Escape
}

// Device 原始输入设备
type Device interface {
	Sample() DeviceSample
	SetCursorLocked(locked bool)
}

// Session 本地会话的输入开关
type Session struct {
	InputEnabled bool
	CursorLocked bool
}

// NewSession 默认启用输入并锁定光标
func NewSession() *Session {
	return &Session{InputEnabled: true, CursorLocked: true}
}

// LookEnabled 光标解锁时不采样视角
func (s *Session) LookEnabled() bool {
	return s.InputEnabled && s.CursorLocked
}

// Sampler 每个渲染帧采样一次，把输入累积到当前帧的 InputRecord
type Sampler struct {
	device  Device
	session *Session

	SensitivityX float32
	SensitivityY float32

	current core.InputRecord
}

func NewSampler(device Device, session *Session, sensX, sensY float32) *Sampler {
	s := &Sampler{
		device:       device,
		session:      session,
		SensitivityX: sensX,
		SensitivityY: sensY,
	}
	device.SetCursorLocked(session.CursorLocked)
	return s
}

// Sample 读取设备并累积：视角与跳跃累加，移动与冲刺覆盖
func (s *Sampler) Sample() {
	if !s.session.InputEnabled {
		return
	}
	raw := s.device.Sample()

	if raw.Escape {
		s.session.CursorLocked = !s.session.CursorLocked
		s.device.SetCursorLocked(s.session.CursorLocked)
	}

	if s.session.LookEnabled() {
		s.current.AddLook(mgl32.Vec2{raw.Look.X() * s.SensitivityX, raw.Look.Y() * s.SensitivityY})
	}
	s.current.SetMovement(raw.Move, raw.Sprint > 0)
	s.current.RequestJump(raw.Jump)
}

// Take 交出当前帧的输入并重置，每个模拟帧调用一次
func (s *Sampler) Take() core.InputRecord {
	record := s.current
	s.current.Reset()
	return record
}

// PendingLook 已采样但尚未提交的视角增量
func (s *Sampler) PendingLook() mgl32.Vec2 {
	return s.current.LookDelta
}
