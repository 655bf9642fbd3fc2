package bot

import (
	"math/rand"

	"fpsnet/internal/bot/bt"
	"fpsnet/internal/client"
	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
)

// Controller 由行为树驱动的输入设备，代替键鼠接入 client.Sampler
type Controller struct {
	config       *Config
	rnd          *rand.Rand
	sensitivityX float32

	thinkCounter int

	blackboard Blackboard
	tree       bt.Node[*Blackboard]
}

// NewController 创建机器人控制器，sensitivityX 与采样器一致，用于把转向角换算回原始输入
func NewController(config *Config, seed int64, sensitivityX float32) *Controller {
	if config == nil {
		config = &ConfigCalm
	}
	if sensitivityX == 0 {
		sensitivityX = 1
	}
	rnd := rand.New(rand.NewSource(seed))

	c := &Controller{
		config:       config,
		rnd:          rnd,
		sensitivityX: sensitivityX,
	}
	c.blackboard = Blackboard{RNG: rnd, Config: config}

	c.tree = &bt.Selector[*Blackboard]{Children: []bt.Node[*Blackboard]{
		&bt.Sequence[*Blackboard]{Children: []bt.Node[*Blackboard]{
			&bt.Condition[*Blackboard]{Check: condStuck},
			&bt.Action[*Blackboard]{Do: actJump},
		}},
		&bt.Sequence[*Blackboard]{Children: []bt.Node[*Blackboard]{
			&bt.Condition[*Blackboard]{Check: condNeedsTarget},
			&bt.Action[*Blackboard]{Do: actPickTarget},
			&bt.Action[*Blackboard]{Do: actSteer},
		}},
		&bt.Action[*Blackboard]{Do: actSteer},
	}}
	return c
}

// Attach 绑定要驾驶的角色，以当前位置为巡逻中心
func (c *Controller) Attach(character *core.Character) {
	c.blackboard.Character = character
	c.blackboard.Home = character.State.Position
	c.blackboard.HasTarget = false
	c.blackboard.anchor = character.State.Position
}

// Target 当前巡逻点
func (c *Controller) Target() (mgl32.Vec3, bool) {
	return c.blackboard.Target, c.blackboard.HasTarget
}

// Sample 实现 client.Device
func (c *Controller) Sample() client.DeviceSample {
	bb := &c.blackboard
	if bb.Character == nil || !bb.Character.Active() {
		return client.DeviceSample{}
	}
	bb.ResetFrame()

	c.thinkCounter++
	if c.thinkCounter >= c.config.ThinkIntervalFrames {
		c.thinkCounter = 0
		bb.HasTarget = false
	}

	_ = c.tree.Tick(bb)

	// 失误：本帧横移
	if c.config.MistakeRate > 0 && c.rnd.Float64() < c.config.MistakeRate {
		side := float32(1)
		if c.rnd.Intn(2) == 0 {
			side = -1
		}
		bb.Next.Move = mgl32.Vec2{side, 0}
	}

	sample := bb.Next
	sample.Look = mgl32.Vec2{sample.Look.X() / c.sensitivityX, 0}
	return sample
}

// SetCursorLocked 机器人没有光标
func (c *Controller) SetCursorLocked(bool) {}
