package bot

import (
	"fpsnet/internal/bot/bt"
	"fpsnet/pkg/core"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// 与目标朝向相差超过该角度时原地转向
const walkAngle = 60

func condStuck(bb *Blackboard) bool {
	if !bb.wantMove {
		bb.anchor, bb.anchorFrame = bb.position(), bb.Frame
		return false
	}
	if bb.Frame-bb.anchorFrame < bb.Config.StuckFrames {
		return false
	}
	moved := horizontal(bb.position().Sub(bb.anchor)).Len()
	bb.anchor, bb.anchorFrame = bb.position(), bb.Frame
	return moved < stuckDistance
}

// actJump 卡住时起跳并换一个巡逻点
func actJump(bb *Blackboard) bt.Status {
	bb.Next.Jump = true
	bb.Next.Move = mgl32.Vec2{0, 1}
	bb.HasTarget = false
	return bt.StatusSuccess
}

func condNeedsTarget(bb *Blackboard) bool {
	if !bb.HasTarget {
		return true
	}
	return horizontal(bb.Target.Sub(bb.position())).Len() < arriveDistance
}

// actPickTarget 在出生点附近随机选取巡逻点
func actPickTarget(bb *Blackboard) bt.Status {
	angle := bb.RNG.Float32() * 2 * math32.Pi
	dist := bb.RNG.Float32() * bb.Config.PatrolRadius
	bb.Target = bb.Home.Add(mgl32.Vec3{math32.Sin(angle) * dist, 0, math32.Cos(angle) * dist})
	bb.HasTarget = true
	bb.Sprint = bb.RNG.Float64() < bb.Config.SprintChance
	return bt.StatusSuccess
}

// actSteer 转向巡逻点，朝向基本对准后前进
func actSteer(bb *Blackboard) bt.Status {
	if !bb.HasTarget {
		return bt.StatusFailure
	}
	to := horizontal(bb.Target.Sub(bb.position()))
	if to.Len() < arriveDistance {
		bb.wantMove = false
		return bt.StatusSuccess
	}

	diff := yawError(bb.Character.State.Yaw, TargetYaw(to))
	turn := mgl32.Clamp(diff, -bb.Config.TurnRate, bb.Config.TurnRate)
	bb.Next.Look = mgl32.Vec2{turn, 0}

	bb.wantMove = math32.Abs(diff) < walkAngle
	if bb.wantMove {
		bb.Next.Move = mgl32.Vec2{0, 1}
		if bb.Sprint {
			bb.Next.Sprint = 1
		}
	}
	return bt.StatusRunning
}

// TargetYaw 朝向水平方向 dir 所需的偏航角（度）
func TargetYaw(dir mgl32.Vec3) float32 {
	return mgl32.RadToDeg(math32.Atan2(dir.X(), dir.Z()))
}

// yawError 从 current 转到 target 的最短角度，范围 (-180, 180]
func yawError(current, target float32) float32 {
	return core.LerpYaw(current, target, 1) - current
}
