package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Role 本端对某个角色所承担的职责，出生时确定且不再改变
type Role int

const (
	RoleAuthority             Role = iota // 服务器，模拟结果为准
	RolePredictingInputSource             // 控制端，本地提前模拟
	RoleObserver                          // 只渲染同步过来的状态
)

// String 返回职责名称
func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "权威端"
	case RolePredictingInputSource:
		return "预测输入源"
	case RoleObserver:
		return "观察者"
	}
	return "未知"
}

// Simulates 该职责是否执行物理积分
func (r Role) Simulates() bool {
	return r == RoleAuthority || r == RolePredictingInputSource
}

// RoleFor 根据本端与角色控制者的关系确定职责
// 控制端未被授予预测权限时退化为观察者
func RoleFor(isServer bool, localPeerID, controllerID int32, predictionGranted bool) Role {
	if isServer {
		return RoleAuthority
	}
	if localPeerID == controllerID && predictionGranted {
		return RolePredictingInputSource
	}
	return RoleObserver
}

// Lifecycle 角色实例的生命周期
type Lifecycle int

const (
	LifecycleUnsimulated Lifecycle = iota
	LifecycleActive
	LifecycleDestroyed
)

// String 返回生命周期阶段名称
func (l Lifecycle) String() string {
	switch l {
	case LifecycleUnsimulated:
		return "未模拟"
	case LifecycleActive:
		return "激活"
	case LifecycleDestroyed:
		return "已销毁"
	}
	return "未知"
}

// Character 一个第一人称角色实例
type Character struct {
	ID           int32
	ControllerID int32
	Role         Role
	Lifecycle    Lifecycle
	State        CharacterState
	Orientation  Orientation

	// LastInputTick 最近一次消费的输入帧号
	LastInputTick uint32
	HasInput      bool
}

// NewCharacter 在指定位置创建未激活的角色
func NewCharacter(id, controllerID int32, position mgl32.Vec3) *Character {
	return &Character{
		ID:           id,
		ControllerID: controllerID,
		Lifecycle:    LifecycleUnsimulated,
		State:        CharacterState{Position: position},
		Orientation:  NewOrientation(),
	}
}

// Activate 以指定职责进入 Active 状态
func (c *Character) Activate(role Role) error {
	if c.Lifecycle != LifecycleUnsimulated {
		return fmt.Errorf("角色 %d 状态为 %s，无法激活", c.ID, c.Lifecycle)
	}
	c.Role = role
	c.Lifecycle = LifecycleActive
	c.Orientation.SetSimulated(c.State.Yaw, c.State.Pitch)
	return nil
}

// Destroy 无条件销毁，之后的 Tick 全部忽略
func (c *Character) Destroy() {
	c.Lifecycle = LifecycleDestroyed
}

// Active 是否处于激活状态
func (c *Character) Active() bool {
	return c.Lifecycle == LifecycleActive
}

// Tick 按职责执行一帧模拟
// tick 为输入帧号；input 为 nil 表示本帧没有输入
func (c *Character) Tick(tick uint32, input *InputRecord, env Environment, cfg MovementConfig, dt float32) {
	if !c.Active() {
		return
	}

	switch c.Role {
	case RoleAuthority, RolePredictingInputSource:
		c.State = Integrate(c.State, input, env, cfg, dt)
	case RoleObserver:
		c.State, _ = Look(c.State, input, cfg)
	}

	// 偏航每帧显式设置，模拟端朝向不会滞后一帧
	c.Orientation.SetSimulated(c.State.Yaw, c.State.Pitch)

	if input != nil {
		c.LastInputTick = tick
		c.HasInput = true
	}
}

// ApplyReplicated 观察者收到同步状态时直接覆盖
func (c *Character) ApplyReplicated(state CharacterState) {
	if c.Role.Simulates() {
		return
	}
	state.Pitch = ClampPitch(state.Pitch)
	c.State = state
}
