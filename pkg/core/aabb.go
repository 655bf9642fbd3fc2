package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB 轴对齐包围盒
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB 根据两个角点创建包围盒（自动排序）
func NewAABB(a, b mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{math32.Min(a[0], b[0]), math32.Min(a[1], b[1]), math32.Min(a[2], b[2])},
		Max: mgl32.Vec3{math32.Max(a[0], b[0]), math32.Max(a[1], b[1]), math32.Max(a[2], b[2])},
	}
}

// CharacterAABB 角色碰撞盒，position 为脚底中心
func CharacterAABB(position mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{position[0] - CharacterRadius, position[1], position[2] - CharacterRadius},
		Max: mgl32.Vec3{position[0] + CharacterRadius, position[1] + CharacterHeight, position[2] + CharacterRadius},
	}
}

// Translate 平移包围盒
func (b AABB) Translate(offset mgl32.Vec3) AABB {
	return AABB{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// Intersects 检查两个包围盒是否相交（贴合不算相交）
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] < o.Max[0]-CollisionEpsilon && b.Max[0] > o.Min[0]+CollisionEpsilon &&
		b.Min[1] < o.Max[1]-CollisionEpsilon && b.Max[1] > o.Min[1]+CollisionEpsilon &&
		b.Min[2] < o.Max[2]-CollisionEpsilon && b.Max[2] > o.Min[2]+CollisionEpsilon
}

// overlapsOn 检查除 axis 以外两个轴是否重叠
func (b AABB) overlapsOn(o AABB, axis int) bool {
	for i := 0; i < 3; i++ {
		if i == axis {
			continue
		}
		if b.Min[i] >= o.Max[i]-CollisionEpsilon || b.Max[i] <= o.Min[i]+CollisionEpsilon {
			return false
		}
	}
	return true
}

// clipAxis 计算沿 axis 移动 delta 时不穿过 obstacle 的最大位移
func (b AABB) clipAxis(obstacle AABB, axis int, delta float32) float32 {
	if !b.overlapsOn(obstacle, axis) {
		return delta
	}
	if delta > 0 && b.Max[axis] <= obstacle.Min[axis]+CollisionEpsilon {
		if gap := obstacle.Min[axis] - b.Max[axis]; gap < delta {
			return math32.Max(gap, 0)
		}
	} else if delta < 0 && b.Min[axis] >= obstacle.Max[axis]-CollisionEpsilon {
		if gap := obstacle.Max[axis] - b.Min[axis]; gap > delta {
			return math32.Min(gap, 0)
		}
	}
	return delta
}
