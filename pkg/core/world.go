package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Environment 模拟所需的环境查询
// 由 World 实现，测试中可替换
type Environment interface {
	// Move 碰撞感知的位移，返回移动后的位置
	Move(position, displacement mgl32.Vec3) mgl32.Vec3
	// GroundDistance 从脚底向下探测 maxDistance，返回到支撑面的距离
	GroundDistance(position mgl32.Vec3, maxDistance float32) (float32, bool)
}

// World 静态场景：地面 + 若干轴对齐方块（台阶、平台、墙）
type World struct {
	Solids []AABB
}

// groundExtent 地面平板的水平半径
const groundExtent = 1e4

// NewWorld 创建只有地平面的场景
func NewWorld(groundLevel float32) *World {
	w := &World{}
	w.AddSolid(AABB{
		Min: mgl32.Vec3{-groundExtent, groundLevel - 1, -groundExtent},
		Max: mgl32.Vec3{groundExtent, groundLevel, groundExtent},
	})
	return w
}

// NewDemoWorld 默认场景：地面、一段下行台阶和一面墙
func NewDemoWorld() *World {
	w := NewWorld(0)

	// 台阶：每级高 0.2，小于最大下台阶距离，向 +Z 方向依次升高
	for i := 0; i < 5; i++ {
		z := float32(4 + i)
		top := float32(i+1) * 0.2
		w.AddSolid(NewAABB(mgl32.Vec3{-2, 0, z}, mgl32.Vec3{2, top, 10}))
	}

	// 墙
	w.AddSolid(NewAABB(mgl32.Vec3{-8, 0, -6}, mgl32.Vec3{8, 3, -5}))
	return w
}

// AddSolid 添加一个固体方块
func (w *World) AddSolid(box AABB) {
	w.Solids = append(w.Solids, box)
}

// Move 按 Y、X、Z 顺序逐轴解析位移，任何一轴被阻挡时该轴停在接触面
func (w *World) Move(position, displacement mgl32.Vec3) mgl32.Vec3 {
	pos := position
	for _, axis := range [3]int{1, 0, 2} {
		delta := displacement[axis]
		if delta == 0 {
			continue
		}
		box := CharacterAABB(pos)
		for _, solid := range w.Solids {
			delta = box.clipAxis(solid, axis, delta)
		}
		pos[axis] += delta
	}
	return pos
}

// GroundDistance 查找脚下 maxDistance 以内最高的支撑面
func (w *World) GroundDistance(position mgl32.Vec3, maxDistance float32) (float32, bool) {
	box := CharacterAABB(position)
	best := maxDistance + 1
	found := false

	for _, solid := range w.Solids {
		if !box.overlapsOn(solid, 1) {
			continue
		}
		if solid.Max[1] > box.Min[1]+CollisionEpsilon {
			continue
		}
		d := math32.Max(box.Min[1]-solid.Max[1], 0)
		if d <= maxDistance && d < best {
			best = d
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}

// Collides 检查位置处的角色是否与场景重叠
func (w *World) Collides(position mgl32.Vec3) bool {
	box := CharacterAABB(position)
	for _, solid := range w.Solids {
		if box.Intersects(solid) {
			return true
		}
	}
	return false
}
