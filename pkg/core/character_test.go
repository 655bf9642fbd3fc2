package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRoleFor(t *testing.T) {
	tests := []struct {
		name       string
		isServer   bool
		local      int32
		controller int32
		predict    bool
		want       Role
	}{
		{"服务器", true, 0, 3, true, RoleAuthority},
		{"控制端开启预测", false, 3, 3, true, RolePredictingInputSource},
		{"控制端未开启预测", false, 3, 3, false, RoleObserver},
		{"其他玩家", false, 2, 3, true, RoleObserver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleFor(tt.isServer, tt.local, tt.controller, tt.predict); got != tt.want {
				t.Fatalf("RoleFor = %s, 期望 %s", got, tt.want)
			}
		})
	}
}

func TestCharacter_Lifecycle(t *testing.T) {
	c := NewCharacter(1, 1, mgl32.Vec3{})
	if c.Lifecycle != LifecycleUnsimulated {
		t.Fatalf("初始状态 = %s", c.Lifecycle)
	}

	// 未激活时不模拟
	c.Tick(1, &InputRecord{LookDelta: mgl32.Vec2{10, 0}}, NewWorld(0), DefaultMovementConfig(), dt60)
	if c.State.Yaw != 0 {
		t.Fatalf("未激活角色被模拟")
	}

	if err := c.Activate(RoleAuthority); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := c.Activate(RoleObserver); err == nil {
		t.Fatalf("重复激活应当失败")
	}

	c.Destroy()
	c.Tick(2, &InputRecord{Movement: mgl32.Vec2{0, 1}}, NewWorld(0), DefaultMovementConfig(), dt60)
	if c.State.Velocity != (mgl32.Vec3{}) {
		t.Fatalf("销毁后仍在模拟")
	}
}

func TestCharacter_ObserverNeverIntegrates(t *testing.T) {
	c := NewCharacter(2, 5, mgl32.Vec3{0, 3, 0})
	_ = c.Activate(RoleObserver)
	c.State.Velocity = mgl32.Vec3{1, 0, 0}

	c.Tick(1, &InputRecord{LookDelta: mgl32.Vec2{30, 10}, Movement: mgl32.Vec2{0, 1}, JumpRequested: true},
		NewWorld(0), DefaultMovementConfig(), dt60)

	if c.State.Position != (mgl32.Vec3{0, 3, 0}) {
		t.Fatalf("观察者位置被修改: %v", c.State.Position)
	}
	if c.State.Velocity != (mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("观察者速度被修改: %v", c.State.Velocity)
	}
	if c.State.Yaw != 30 || c.State.Pitch != 10 {
		t.Fatalf("观察者朝向 = (%v, %v), 期望 (30, 10)", c.State.Yaw, c.State.Pitch)
	}
}

func TestCharacter_AuthorityAppliesOrientationEveryTick(t *testing.T) {
	c := NewCharacter(1, 1, mgl32.Vec3{})
	_ = c.Activate(RoleAuthority)

	c.Tick(7, &InputRecord{LookDelta: mgl32.Vec2{90, -30}}, NewWorld(0), DefaultMovementConfig(), dt60)

	if c.Orientation.SimYaw != 90 || c.Orientation.Pitch != -30 {
		t.Fatalf("朝向 = (%v, %v), 期望 (90, -30)", c.Orientation.SimYaw, c.Orientation.Pitch)
	}
	fwd := c.Orientation.Forward()
	if fwd.Sub(mgl32.Vec3{1, 0, 0}).Len() > 1e-5 {
		t.Fatalf("Forward = %v, 期望 +X", fwd)
	}
	if c.LastInputTick != 7 || !c.HasInput {
		t.Fatalf("LastInputTick = %d", c.LastInputTick)
	}
}

func TestOrientation_VisualDoesNotTouchSimulated(t *testing.T) {
	o := NewOrientation()
	o.SetSimulated(45, 10)
	body := o.Body

	o.SetVisual(120, 200)
	if o.Body != body || o.SimYaw != 45 {
		t.Fatalf("SetVisual 修改了模拟身体")
	}
	if o.VisualYaw != 120 {
		t.Fatalf("VisualYaw = %v", o.VisualYaw)
	}
	if o.Pitch != MaxPitch {
		t.Fatalf("Pitch = %v, 期望被限制为 90", o.Pitch)
	}
}

func TestLerpYaw_ShortestArc(t *testing.T) {
	approxEqual(t, LerpYaw(350, 10, 0.5), 360, 1e-4, "350->10")
	approxEqual(t, LerpYaw(10, 350, 0.5), 0, 1e-4, "10->350")
	approxEqual(t, LerpYaw(0, 90, 0.5), 45, 1e-4, "0->90")
	approxEqual(t, NormalizeYaw(-30), 330, 1e-4, "normalize")
}

func TestGame_SpawnAndRemove(t *testing.T) {
	g := NewGame(NewWorld(0), DefaultMovementConfig())
	g.SpawnOrigin = mgl32.Vec3{10, 0, 0}

	if pos := g.SpawnPosition(0); pos != (mgl32.Vec3{9, 0, 0}) {
		t.Fatalf("SpawnPosition(0) = %v", pos)
	}
	if pos := g.SpawnPosition(2); pos != (mgl32.Vec3{7, 0, 0}) {
		t.Fatalf("SpawnPosition(2) = %v", pos)
	}

	c := NewCharacter(4, 4, g.SpawnPosition(0))
	_ = c.Activate(RoleAuthority)
	g.AddCharacter(c)

	g.Update(func(*Character) (uint32, *InputRecord) {
		return 1, &InputRecord{Movement: mgl32.Vec2{0, 1}}
	})
	if g.CurrentTick != 1 {
		t.Fatalf("CurrentTick = %d", g.CurrentTick)
	}
	if c.State.Velocity.Z() <= 0 {
		t.Fatalf("权威端未积分")
	}

	removed := g.RemoveCharacter(4)
	if removed == nil || removed.Lifecycle != LifecycleDestroyed {
		t.Fatalf("RemoveCharacter 未销毁角色")
	}
	if g.GetCharacter(4) != nil {
		t.Fatalf("角色仍在列表中")
	}
}

func TestLifecycle_String(t *testing.T) {
	tests := []struct {
		lifecycle Lifecycle
		want      string
	}{
		{LifecycleUnsimulated, "未模拟"},
		{LifecycleActive, "激活"},
		{LifecycleDestroyed, "已销毁"},
		{Lifecycle(9), "未知"},
	}
	for _, tt := range tests {
		if got := tt.lifecycle.String(); got != tt.want {
			t.Errorf("Lifecycle(%d).String() = %q, 期望 %q", int(tt.lifecycle), got, tt.want)
		}
	}
}
