package client

import (
	"fpsnet/pkg/core"
	"fpsnet/pkg/protocol"

	"github.com/go-gl/mathgl/mgl32"
)

type pendingInput struct {
	tick   uint32
	record core.InputRecord
}

// Predictor 控制端的本地预测：立即模拟本地输入，收到权威状态后回滚重放
type Predictor struct {
	character *core.Character
	env       core.Environment
	cfg       core.MovementConfig

	history []pendingInput

	// correction 回滚前后的位置差，渲染时逐帧衰减
	correction mgl32.Vec3

	lastAck     uint32
	hasAck      bool
	corrections int
}

// NewPredictor character 必须以 RolePredictingInputSource 激活
func NewPredictor(character *core.Character, env core.Environment, cfg core.MovementConfig) *Predictor {
	return &Predictor{
		character: character,
		env:       env,
		cfg:       cfg,
		history:   make([]pendingInput, 0, InputHistorySize),
	}
}

// Predict 以本地输入推进一帧并记入历史
func (p *Predictor) Predict(tick uint32, record core.InputRecord) {
	p.character.Tick(tick, &record, p.env, p.cfg, core.FixedDeltaTime)

	p.history = append(p.history, pendingInput{tick: tick, record: record})
	if len(p.history) > InputHistorySize {
		p.history = p.history[len(p.history)-InputHistorySize:]
	}
}

// Reconcile 以权威快照为基准重放尚未确认的输入
func (p *Predictor) Reconcile(snap protocol.CharacterSnapshot) {
	if snap.HasInput {
		if p.hasAck && snap.LastInputTick < p.lastAck {
			return
		}
		p.lastAck, p.hasAck = snap.LastInputTick, true
		p.dropAcknowledged(snap.LastInputTick)
	}

	before := p.character.State.Position

	state := protocol.SnapshotToState(snap)
	if snap.Velocity == nil {
		state.Velocity = p.character.State.Velocity
	}
	p.character.State = state

	for i := range p.history {
		in := &p.history[i]
		p.character.Tick(in.tick, &in.record, p.env, p.cfg, core.FixedDeltaTime)
	}

	delta := before.Sub(p.character.State.Position)
	if delta.Len() > 1e-5 {
		p.corrections++
	}
	p.correction = p.correction.Add(delta)
	if p.correction.Len() > ReconciliationSnapDistance {
		p.correction = mgl32.Vec3{}
	}
}

func (p *Predictor) dropAcknowledged(ack uint32) {
	n := 0
	for n < len(p.history) && p.history[n].tick <= ack {
		n++
	}
	p.history = p.history[n:]
}

// DecayCorrection 按渲染帧时间衰减纠错偏移
func (p *Predictor) DecayCorrection(dt float32) {
	factor := 1 - ReconciliationDecayRate*dt
	if factor <= 0 {
		p.correction = mgl32.Vec3{}
		return
	}
	p.correction = p.correction.Mul(factor)
	if p.correction.Len() < 1e-4 {
		p.correction = mgl32.Vec3{}
	}
}

// VisualPosition 预测位置加上尚未衰减完的纠错偏移
func (p *Predictor) VisualPosition() mgl32.Vec3 {
	return p.character.State.Position.Add(p.correction)
}

// Pending 尚未被服务器确认的输入帧数
func (p *Predictor) Pending() int {
	return len(p.history)
}

// Corrections 发生过位置修正的次数
func (p *Predictor) Corrections() int {
	return p.corrections
}
