package client

import (
	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderReconciler 每个渲染帧按职责计算角色的表现状态
//   - 预测输入源：预测朝向加上尚未提交的视角增量，位置加纠错偏移
//   - 观察者：朝向和位置都取插值缓冲的结果
//   - 权威端：朝向在模拟帧内已经设置，不做表现处理
type RenderReconciler struct {
	sampler   *Sampler
	predictor *Predictor
	smoothers map[int32]*RemoteSmoother
	delayMs   int64
}

func NewRenderReconciler(sampler *Sampler, predictor *Predictor, delayMs int64) *RenderReconciler {
	return &RenderReconciler{
		sampler:   sampler,
		predictor: predictor,
		smoothers: make(map[int32]*RemoteSmoother),
		delayMs:   delayMs,
	}
}

// Observe 记录观察者角色的同步状态
func (r *RenderReconciler) Observe(id int32, serverTimeMs int64, state core.CharacterState) {
	smoother, ok := r.smoothers[id]
	if !ok {
		smoother = NewRemoteSmoother(r.delayMs)
		r.smoothers[id] = smoother
	}
	smoother.AddSnapshot(serverTimeMs, state.Position, state.Yaw, state.Pitch)
}

// Forget 角色销毁后释放插值缓冲
func (r *RenderReconciler) Forget(id int32) {
	delete(r.smoothers, id)
}

// Render 返回角色本帧的渲染位置，同时更新其渲染朝向
func (r *RenderReconciler) Render(c *core.Character, serverTimeMs int64, dt float32) mgl32.Vec3 {
	if !c.Active() {
		return c.State.Position
	}

	switch c.Role {
	case core.RolePredictingInputSource:
		var pending mgl32.Vec2
		if r.sampler != nil {
			pending = r.sampler.PendingLook()
		}
		c.Orientation.SetVisual(c.State.Yaw+pending.X(), c.State.Pitch+pending.Y())
		if r.predictor == nil {
			return c.State.Position
		}
		r.predictor.DecayCorrection(dt)
		return r.predictor.VisualPosition()

	case core.RoleObserver:
		if smoother, ok := r.smoothers[c.ID]; ok {
			if s, ok := smoother.Sample(serverTimeMs); ok {
				c.Orientation.SetVisual(s.Yaw, s.Pitch)
				return s.Position
			}
		}
		c.Orientation.SetVisual(c.State.Yaw, c.State.Pitch)
		return c.State.Position
	}

	return c.State.Position
}
