package client

import (
	"fmt"

	"fpsnet/pkg/core"
	"fpsnet/pkg/protocol"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// Stats 调试信息
type Stats struct {
	Tick        uint32
	ServerTick  uint32
	Characters  int
	Pending     int
	Unacked     int
	Corrections int
	Prediction  bool
	CursorLock  bool
}

// Simulation 客户端模拟：采样输入、固定步长提交、应用快照、计算渲染状态
// 不依赖图形库，由渲染层每帧驱动
type Simulation struct {
	world    *core.World
	movement core.MovementConfig
	log      *logrus.Entry

	localID    int32
	prediction bool

	characters *orderedmap.OrderedMap[int32, *core.Character]
	rendered   map[int32]mgl32.Vec3

	session   *Session
	sampler   *Sampler
	predictor *Predictor
	channel   *InputChannel
	render    *RenderReconciler

	tick        uint32
	serverTick  uint32
	accumulator float32
}

// Options 客户端模拟参数
type Options struct {
	SensitivityX         float32
	SensitivityY         float32
	InputSendWindow      int
	InterpolationDelayMs int64
}

// NewSimulation 以加入结果初始化本地角色
func NewSimulation(accepted *protocol.JoinAccepted, device Device, sender InputSender, opts Options, log *logrus.Entry) (*Simulation, error) {
	world := core.NewDemoWorld()
	s := &Simulation{
		world:      world,
		movement:   accepted.Movement,
		log:        log,
		localID:    accepted.CharacterID,
		prediction: accepted.PredictionGranted,
		characters: orderedmap.NewOrderedMap[int32, *core.Character](),
		rendered:   make(map[int32]mgl32.Vec3),
		session:    NewSession(),
		tick:       accepted.ServerTick,
	}
	s.sampler = NewSampler(device, s.session, opts.SensitivityX, opts.SensitivityY)

	local := core.NewCharacter(accepted.CharacterID, accepted.CharacterID, accepted.Spawn)
	if err := local.Activate(core.RoleFor(false, s.localID, s.localID, s.prediction)); err != nil {
		return nil, fmt.Errorf("激活本地角色失败: %w", err)
	}
	s.characters.Set(local.ID, local)

	if s.prediction {
		s.predictor = NewPredictor(local, world, s.movement)
	}
	s.channel = NewInputChannel(sender, s.predictor, opts.InputSendWindow)
	s.render = NewRenderReconciler(s.sampler, s.predictor, opts.InterpolationDelayMs)

	s.log.WithFields(logrus.Fields{
		"character": local.ID,
		"role":      local.Role.String(),
	}).Info("本地角色已创建")
	return s, nil
}

// Session 本地输入开关
func (s *Simulation) Session() *Session {
	return s.session
}

// LocalID 本地控制的角色
func (s *Simulation) LocalID() int32 {
	return s.localID
}

// World 静态场景
func (s *Simulation) World() *core.World {
	return s.world
}

// ApplySnapshot 应用一份完整快照，快照中不存在的角色视为已离开
func (s *Simulation) ApplySnapshot(snap *protocol.StateSnapshot) {
	if snap.ServerTick < s.serverTick {
		return
	}
	s.serverTick = snap.ServerTick

	seen := make(map[int32]struct{}, len(snap.Characters))
	for _, cs := range snap.Characters {
		seen[cs.ID] = struct{}{}

		c, ok := s.characters.Get(cs.ID)
		if !ok {
			c = core.NewCharacter(cs.ID, cs.ControllerID, cs.Position)
			if err := c.Activate(core.RoleFor(false, s.localID, cs.ControllerID, s.prediction)); err != nil {
				s.log.Warnf("激活角色失败: %v", err)
				continue
			}
			s.characters.Set(c.ID, c)
			s.log.Debugf("角色 %d 进入视野 (%s)", c.ID, c.Role)
		}

		if c.ControllerID == s.localID && cs.HasInput {
			s.channel.Ack(cs.LastInputTick)
		}

		switch c.Role {
		case core.RolePredictingInputSource:
			s.predictor.Reconcile(cs)
		case core.RoleObserver:
			state := protocol.SnapshotToState(cs)
			c.ApplyReplicated(state)
			c.LastInputTick, c.HasInput = cs.LastInputTick, cs.HasInput
			s.render.Observe(c.ID, snap.ServerTimeMs, state)
		}
	}

	var gone []int32
	for el := s.characters.Front(); el != nil; el = el.Next() {
		if _, ok := seen[el.Key]; !ok && el.Key != s.localID {
			gone = append(gone, el.Key)
		}
	}
	for _, id := range gone {
		s.RemoveCharacter(id)
	}
}

// StateSource 非阻塞地提供服务器下发的状态
type StateSource interface {
	ReceiveSnapshot() *protocol.StateSnapshot
	ReceivePlayerLeave() int32
}

// Sync 取出所有已到达的快照和离开通知，返回应用的快照数
func (s *Simulation) Sync(src StateSource) int {
	n := 0
	for {
		snapshot := src.ReceiveSnapshot()
		if snapshot == nil {
			break
		}
		s.ApplySnapshot(snapshot)
		n++
	}
	for {
		id := src.ReceivePlayerLeave()
		if id < 0 {
			break
		}
		if id != s.localID {
			s.RemoveCharacter(id)
		}
	}
	return n
}

// RemoveCharacter 销毁角色并释放其渲染状态
func (s *Simulation) RemoveCharacter(id int32) {
	c, ok := s.characters.Get(id)
	if !ok {
		return
	}
	c.Destroy()
	s.characters.Delete(id)
	s.render.Forget(id)
	delete(s.rendered, id)
	s.log.Debugf("角色 %d 已移除", id)
}

// Frame 推进一个渲染帧：采样输入，按固定步长提交，最后计算渲染位置
func (s *Simulation) Frame(dt float64, serverTimeMs int64) error {
	s.sampler.Sample()

	s.accumulator += float32(dt)
	var sendErr error
	steps := 0
	for s.accumulator >= core.FixedDeltaTime {
		if steps == MaxStepsPerFrame {
			// 落后太多时丢弃积压
			s.accumulator = 0
			break
		}
		s.accumulator -= core.FixedDeltaTime
		s.tick++
		if err := s.channel.Submit(s.tick, s.sampler.Take()); err != nil && sendErr == nil {
			sendErr = err
		}
		steps++
	}

	for el := s.characters.Front(); el != nil; el = el.Next() {
		s.rendered[el.Key] = s.render.Render(el.Value, serverTimeMs, float32(dt))
	}
	return sendErr
}

// Each 按加入顺序遍历角色及其渲染位置
func (s *Simulation) Each(fn func(c *core.Character, position mgl32.Vec3)) {
	for el := s.characters.Front(); el != nil; el = el.Next() {
		pos, ok := s.rendered[el.Key]
		if !ok {
			pos = el.Value.State.Position
		}
		fn(el.Value, pos)
	}
}

// Character 根据 ID 获取角色
func (s *Simulation) Character(id int32) *core.Character {
	c, _ := s.characters.Get(id)
	return c
}

// Stats 当前调试信息
func (s *Simulation) Stats() Stats {
	st := Stats{
		Tick:       s.tick,
		ServerTick: s.serverTick,
		Characters: s.characters.Len(),
		Unacked:    s.channel.Unacked(),
		Prediction: s.prediction,
		CursorLock: s.session.CursorLocked,
	}
	if s.predictor != nil {
		st.Pending = s.predictor.Pending()
		st.Corrections = s.predictor.Corrections()
	}
	return st
}
