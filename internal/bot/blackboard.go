package bot

import (
	"math/rand"

	"fpsnet/internal/client"
	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
)

// arriveDistance 到达巡逻点的水平距离
const arriveDistance = 0.5

// stuckDistance 卡住判定的最小水平位移
const stuckDistance = 0.2

type Blackboard struct {
	Character *core.Character
	RNG       *rand.Rand
	Config    *Config

	Frame int

	Home      mgl32.Vec3
	Target    mgl32.Vec3
	HasTarget bool
	Sprint    bool
	Next      client.DeviceSample

	// 卡住检测
	anchor      mgl32.Vec3
	anchorFrame int
	wantMove    bool
}

// ResetFrame 每帧开始时清空本帧输出，跨帧状态保留
func (bb *Blackboard) ResetFrame() {
	bb.Frame++
	bb.Next = client.DeviceSample{}
}

func (bb *Blackboard) position() mgl32.Vec3 {
	return bb.Character.State.Position
}

func horizontal(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X(), 0, v.Z()}
}
