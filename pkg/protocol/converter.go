package protocol

import (
	"fpsnet/pkg/core"
)

// ========== Character 转换 ==========

// CharacterToSnapshot 将 core.Character 转换为同步快照
// withVelocity 为 true 时附带速度，只在发给控制端时使用
func CharacterToSnapshot(c *core.Character, withVelocity bool) CharacterSnapshot {
	snap := CharacterSnapshot{
		ID:            c.ID,
		ControllerID:  c.ControllerID,
		Position:      c.State.Position,
		Yaw:           c.State.Yaw,
		Pitch:         c.State.Pitch,
		Grounded:      c.State.Grounded,
		LastInputTick: c.LastInputTick,
		HasInput:      c.HasInput,
	}
	if withVelocity {
		v := c.State.Velocity
		snap.Velocity = &v
	}
	return snap
}

// SnapshotToState 将同步快照还原为 core.CharacterState
// 快照未携带速度时速度为零
func SnapshotToState(s CharacterSnapshot) core.CharacterState {
	state := core.CharacterState{
		Position: s.Position,
		Yaw:      s.Yaw,
		Pitch:    core.ClampPitch(s.Pitch),
		Grounded: s.Grounded,
	}
	if s.Velocity != nil {
		state.Velocity = *s.Velocity
	}
	return state
}

// CharactersToSnapshot 为某个连接构造快照，只有 viewerID 控制的角色附带速度
func CharactersToSnapshot(chars []*core.Character, viewerID int32) []CharacterSnapshot {
	result := make([]CharacterSnapshot, 0, len(chars))
	for _, c := range chars {
		if !c.Active() {
			continue
		}
		result = append(result, CharacterToSnapshot(c, c.ControllerID == viewerID))
	}
	return result
}
