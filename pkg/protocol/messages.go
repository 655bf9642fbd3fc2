package protocol

import (
	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
)

// MessageType 消息类型
type MessageType uint32

const (
	MessageTypeUnspecified MessageType = iota
	MessageTypeJoinRequest
	MessageTypeJoinAccepted
	MessageTypeJoinRejected
	MessageTypeInputBatch
	MessageTypeStateSnapshot
	MessageTypePlayerLeave
	MessageTypePing
	MessageTypePong
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeJoinRequest:
		return "JOIN_REQUEST"
	case MessageTypeJoinAccepted:
		return "JOIN_ACCEPTED"
	case MessageTypeJoinRejected:
		return "JOIN_REJECTED"
	case MessageTypeInputBatch:
		return "INPUT_BATCH"
	case MessageTypeStateSnapshot:
		return "STATE_SNAPSHOT"
	case MessageTypePlayerLeave:
		return "PLAYER_LEAVE"
	case MessageTypePing:
		return "PING"
	case MessageTypePong:
		return "PONG"
	}
	return "UNSPECIFIED"
}

// Packet 外层信封
type Packet struct {
	Type    MessageType
	Payload []byte
}

// JoinRequest 客户端加入请求
type JoinRequest struct {
	PlayerName string
	Token      string
}

// JoinAccepted 加入成功，下发角色 ID 与模拟参数，保证两端积分一致
type JoinAccepted struct {
	CharacterID       int32
	TickRate          int32
	ServerTick        uint32
	Spawn             mgl32.Vec3
	Movement          core.MovementConfig
	PredictionGranted bool
}

// JoinRejected 加入失败原因
type JoinRejected struct {
	Reason string
}

// InputFrame 某一输入帧的输入记录
type InputFrame struct {
	Tick   uint32
	Record core.InputRecord
}

// InputBatch 一次发送的若干输入帧（冗余发送最近 N 帧以抵抗丢包）
type InputBatch struct {
	Frames []InputFrame
}

// CharacterSnapshot 单个角色的同步状态
// Velocity 只发给该角色的控制端，其余连接为 nil
type CharacterSnapshot struct {
	ID            int32
	ControllerID  int32
	Position      mgl32.Vec3
	Yaw           float32
	Pitch         float32
	Velocity      *mgl32.Vec3
	Grounded      bool
	LastInputTick uint32
	HasInput      bool
}

// StateSnapshot 服务器某一帧的全部角色状态
type StateSnapshot struct {
	ServerTick   uint32
	ServerTimeMs int64
	Characters   []CharacterSnapshot
}

// PlayerLeave 角色被销毁
type PlayerLeave struct {
	CharacterID int32
}

// Ping 心跳
type Ping struct {
	ClientTime int64
}

// Pong 心跳回应
type Pong struct {
	ClientTime int64
	ServerTime int64
	ServerTick uint32
}

// ========== 编码 ==========

func (m *Packet) marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(m.Type))
	if len(m.Payload) > 0 {
		b = appendMessage(b, 2, m.Payload)
	}
	return b
}

func (m *JoinRequest) marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.PlayerName)
	b = appendString(b, 2, m.Token)
	return b
}

func (m *JoinAccepted) marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.CharacterID)
	b = appendInt32(b, 2, m.TickRate)
	b = appendVarint(b, 3, uint64(m.ServerTick))
	b = appendVec3(b, 4, m.Spawn)
	b = appendMessage(b, 5, marshalMovementConfig(m.Movement))
	b = appendBool(b, 6, m.PredictionGranted)
	return b
}

func marshalMovementConfig(cfg core.MovementConfig) []byte {
	var b []byte
	b = appendFloat(b, 1, cfg.WalkingSpeed)
	b = appendFloat(b, 2, cfg.SprintMultiplier)
	b = appendFloat(b, 3, cfg.AccelerationRate)
	b = appendFloat(b, 4, cfg.DecelerationRate)
	b = appendFloat(b, 5, cfg.MaxStepDownDistance)
	b = appendFloat(b, 6, cfg.JumpStrength)
	b = appendFloat(b, 7, cfg.GravityAcceleration)
	return b
}

func (m *JoinRejected) marshal() []byte {
	return appendString(nil, 1, m.Reason)
}

func marshalInputFrame(frame InputFrame) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(frame.Tick))
	b = appendVec2(b, 2, frame.Record.LookDelta)
	b = appendVec2(b, 3, frame.Record.Movement)
	b = appendBool(b, 4, frame.Record.Sprinting)
	b = appendBool(b, 5, frame.Record.JumpRequested)
	return b
}

func (m *InputBatch) marshal() []byte {
	var b []byte
	for _, frame := range m.Frames {
		b = appendMessage(b, 1, marshalInputFrame(frame))
	}
	return b
}

func marshalCharacterSnapshot(c CharacterSnapshot) []byte {
	var b []byte
	b = appendInt32(b, 1, c.ID)
	b = appendInt32(b, 2, c.ControllerID)
	b = appendVec3(b, 3, c.Position)
	b = appendFloat(b, 4, c.Yaw)
	b = appendFloat(b, 5, c.Pitch)
	if c.Velocity != nil {
		b = appendVec3(b, 6, *c.Velocity)
	}
	b = appendBool(b, 7, c.Grounded)
	b = appendVarint(b, 8, uint64(c.LastInputTick))
	b = appendBool(b, 9, c.HasInput)
	return b
}

func (m *StateSnapshot) marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(m.ServerTick))
	b = appendInt64(b, 2, m.ServerTimeMs)
	for _, c := range m.Characters {
		b = appendMessage(b, 3, marshalCharacterSnapshot(c))
	}
	return b
}

func (m *PlayerLeave) marshal() []byte {
	return appendInt32(nil, 1, m.CharacterID)
}

func (m *Ping) marshal() []byte {
	return appendInt64(nil, 1, m.ClientTime)
}

func (m *Pong) marshal() []byte {
	var b []byte
	b = appendInt64(b, 1, m.ClientTime)
	b = appendInt64(b, 2, m.ServerTime)
	b = appendVarint(b, 3, uint64(m.ServerTick))
	return b
}

// ========== 解码 ==========

func (m *Packet) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		switch f.num {
		case 1:
			m.Type = MessageType(f.varint())
		case 2:
			m.Payload = append([]byte(nil), f.bytes()...)
		}
	})
}

func (m *JoinRequest) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		switch f.num {
		case 1:
			m.PlayerName = f.string()
		case 2:
			m.Token = f.string()
		}
	})
}

func (m *JoinAccepted) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		switch f.num {
		case 1:
			m.CharacterID = f.int32()
		case 2:
			m.TickRate = f.int32()
		case 3:
			m.ServerTick = f.uint32()
		case 4:
			m.Spawn = f.vec3()
		case 5:
			f.message(func(inner *field) {
				switch inner.num {
				case 1:
					m.Movement.WalkingSpeed = inner.float()
				case 2:
					m.Movement.SprintMultiplier = inner.float()
				case 3:
					m.Movement.AccelerationRate = inner.float()
				case 4:
					m.Movement.DecelerationRate = inner.float()
				case 5:
					m.Movement.MaxStepDownDistance = inner.float()
				case 6:
					m.Movement.JumpStrength = inner.float()
				case 7:
					m.Movement.GravityAcceleration = inner.float()
				}
			})
		case 6:
			m.PredictionGranted = f.bool()
		}
	})
}

func (m *JoinRejected) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		if f.num == 1 {
			m.Reason = f.string()
		}
	})
}

func (m *InputBatch) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		if f.num != 1 {
			return
		}
		var frame InputFrame
		f.message(func(inner *field) {
			switch inner.num {
			case 1:
				frame.Tick = inner.uint32()
			case 2:
				frame.Record.LookDelta = inner.vec2()
			case 3:
				frame.Record.Movement = inner.vec2()
			case 4:
				frame.Record.Sprinting = inner.bool()
			case 5:
				frame.Record.JumpRequested = inner.bool()
			}
		})
		m.Frames = append(m.Frames, frame)
	})
}

func (m *StateSnapshot) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		switch f.num {
		case 1:
			m.ServerTick = f.uint32()
		case 2:
			m.ServerTimeMs = f.int64()
		case 3:
			var c CharacterSnapshot
			f.message(func(inner *field) {
				switch inner.num {
				case 1:
					c.ID = inner.int32()
				case 2:
					c.ControllerID = inner.int32()
				case 3:
					c.Position = inner.vec3()
				case 4:
					c.Yaw = inner.float()
				case 5:
					c.Pitch = inner.float()
				case 6:
					v := inner.vec3()
					c.Velocity = &v
				case 7:
					c.Grounded = inner.bool()
				case 8:
					c.LastInputTick = inner.uint32()
				case 9:
					c.HasInput = inner.bool()
				}
			})
			m.Characters = append(m.Characters, c)
		}
	})
}

func (m *PlayerLeave) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		if f.num == 1 {
			m.CharacterID = f.int32()
		}
	})
}

func (m *Ping) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		if f.num == 1 {
			m.ClientTime = f.int64()
		}
	})
}

func (m *Pong) unmarshal(b []byte) error {
	return decodeFields(b, func(f *field) {
		switch f.num {
		case 1:
			m.ClientTime = f.int64()
		case 2:
			m.ServerTime = f.int64()
		case 3:
			m.ServerTick = f.uint32()
		}
	})
}
