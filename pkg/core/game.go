package core

import "github.com/go-gl/mathgl/mgl32"

// InputFetcher 为某个角色取本帧输入，返回输入帧号和记录（nil 表示缺失）
type InputFetcher func(c *Character) (uint32, *InputRecord)

// Game 模拟状态（纯逻辑，不包含渲染）
type Game struct {
	World       *World
	Movement    MovementConfig
	Characters  []*Character
	CurrentTick uint32
	SpawnOrigin mgl32.Vec3
}

// NewGame 创建新模拟
func NewGame(world *World, cfg MovementConfig) *Game {
	if world == nil {
		world = NewDemoWorld()
	}
	return &Game{
		World:      world,
		Movement:   cfg,
		Characters: make([]*Character, 0),
	}
}

// AddCharacter 添加角色
func (g *Game) AddCharacter(c *Character) {
	g.Characters = append(g.Characters, c)
}

// GetCharacter 根据 ID 获取角色
func (g *Game) GetCharacter(id int32) *Character {
	for _, c := range g.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// RemoveCharacter 销毁并移除角色
func (g *Game) RemoveCharacter(id int32) *Character {
	for i, c := range g.Characters {
		if c.ID == id {
			c.Destroy()
			g.Characters = append(g.Characters[:i], g.Characters[i+1:]...)
			return c
		}
	}
	return nil
}

// SpawnPosition 按当前在线人数计算出生点，沿左方依次错开避免重叠
func (g *Game) SpawnPosition(connected int) mgl32.Vec3 {
	left := mgl32.Vec3{-1, 0, 0}
	return g.SpawnOrigin.Add(left.Mul(SpawnSpacing * float32(1+connected)))
}

// Update 推进一个固定帧
func (g *Game) Update(fetch InputFetcher) {
	for _, c := range g.Characters {
		if !c.Active() {
			continue
		}
		var tick uint32
		var input *InputRecord
		if fetch != nil {
			tick, input = fetch(c)
		}
		c.Tick(tick, input, g.World, g.Movement, FixedDeltaTime)
	}
	g.CurrentTick++
}
