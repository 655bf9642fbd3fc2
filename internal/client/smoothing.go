package client

import (
	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
)

// stateSnapshot 观察者状态快照（客户端插值缓冲）
type stateSnapshot struct {
	timestamp int64
	position  mgl32.Vec3
	yaw       float32
	pitch     float32
}

// SmoothedState 插值后的渲染状态
type SmoothedState struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

// RemoteSmoother 观察者插值与航位推测
type RemoteSmoother struct {
	buffer               []stateSnapshot
	lastVelocity         mgl32.Vec3 // 米/毫秒
	interpolationDelayMs int64
}

// NewRemoteSmoother 创建插值缓冲器
func NewRemoteSmoother(delayMs int64) *RemoteSmoother {
	s := &RemoteSmoother{
		buffer: make([]stateSnapshot, 0, InterpolationBufferSize),
	}
	s.SetInterpolationDelay(delayMs)
	return s
}

// SetInterpolationDelay 设置插值延迟（毫秒）
func (s *RemoteSmoother) SetInterpolationDelay(delayMs int64) {
	if delayMs < MinInterpolationDelayMs {
		delayMs = MinInterpolationDelayMs
	}
	if delayMs > MaxInterpolationDelayMs {
		delayMs = MaxInterpolationDelayMs
	}
	s.interpolationDelayMs = delayMs
}

// InterpolationDelay 当前插值延迟（毫秒）
func (s *RemoteSmoother) InterpolationDelay() int64 {
	return s.interpolationDelayMs
}

// AddSnapshot 添加状态快照到缓冲区，时间戳不递增的快照直接丢弃
func (s *RemoteSmoother) AddSnapshot(timestamp int64, position mgl32.Vec3, yaw, pitch float32) {
	if n := len(s.buffer); n > 0 {
		last := s.buffer[n-1]
		dt := timestamp - last.timestamp
		if dt <= 0 {
			return
		}
		s.lastVelocity = position.Sub(last.position).Mul(1 / float32(dt))
	}

	s.buffer = append(s.buffer, stateSnapshot{
		timestamp: timestamp,
		position:  position,
		yaw:       yaw,
		pitch:     core.ClampPitch(pitch),
	})
	if len(s.buffer) > InterpolationBufferSize {
		s.buffer = s.buffer[1:]
	}
}

// Sample 计算 serverTimeMs 时刻的渲染状态（观察者每帧调用）
func (s *RemoteSmoother) Sample(serverTimeMs int64) (SmoothedState, bool) {
	if len(s.buffer) == 0 {
		return SmoothedState{}, false
	}

	renderTime := serverTimeMs - s.interpolationDelayMs

	var prev, next *stateSnapshot
	for i := 0; i < len(s.buffer)-1; i++ {
		if s.buffer[i].timestamp <= renderTime && s.buffer[i+1].timestamp >= renderTime {
			prev = &s.buffer[i]
			next = &s.buffer[i+1]
			break
		}
	}

	var out SmoothedState
	switch {
	case prev != nil && next != nil:
		total := float32(next.timestamp - prev.timestamp)
		alpha := float32(0)
		if total > 0 {
			alpha = float32(renderTime-prev.timestamp) / total
		}
		out.Position = prev.position.Add(next.position.Sub(prev.position).Mul(alpha))
		out.Yaw = core.LerpYaw(prev.yaw, next.yaw, alpha)
		out.Pitch = core.ClampPitch(prev.pitch + (next.pitch-prev.pitch)*alpha)

	case renderTime < s.buffer[0].timestamp:
		// 缓冲尚未积累到渲染时间，停在最早的快照
		first := s.buffer[0]
		out = SmoothedState{Position: first.position, Yaw: first.yaw, Pitch: first.pitch}

	default:
		// 渲染时间超出缓冲，使用航位推测
		last := s.buffer[len(s.buffer)-1]
		out = SmoothedState{Position: last.position, Yaw: last.yaw, Pitch: last.pitch}
		ahead := renderTime - last.timestamp
		if ahead > 0 && ahead <= DeadReckoningMaxMs {
			out.Position = last.position.Add(s.lastVelocity.Mul(float32(ahead)))
		}
	}

	s.cleanupOldSnapshots(renderTime)
	return out, true
}

func (s *RemoteSmoother) cleanupOldSnapshots(renderTime int64) {
	cutoff := -1
	for i := 0; i < len(s.buffer); i++ {
		if s.buffer[i].timestamp <= renderTime {
			cutoff = i
		} else {
			break
		}
	}
	// 保留 cutoff 作为下一次插值的 prev
	if cutoff > 0 {
		s.buffer = s.buffer[cutoff:]
	}
}
