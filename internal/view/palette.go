package view

import (
	"image/color"

	"fpsnet/pkg/core"
)

// CharacterStyle 角色的绘制颜色
type CharacterStyle struct {
	Name         string
	BodyColor    color.RGBA
	OutlineColor color.RGBA
	FacingColor  color.RGBA
}

var observerStyles = []CharacterStyle{
	{
		Name:         "烈焰红",
		BodyColor:    color.RGBA{255, 80, 80, 255},
		OutlineColor: color.RGBA{150, 0, 0, 255},
		FacingColor:  color.RGBA{255, 200, 100, 255},
	},
	{
		Name:         "冰霜蓝",
		BodyColor:    color.RGBA{100, 180, 255, 255},
		OutlineColor: color.RGBA{0, 50, 150, 255},
		FacingColor:  color.RGBA{150, 220, 255, 255},
	},
	{
		Name:         "暗夜黑",
		BodyColor:    color.RGBA{40, 40, 40, 255},
		OutlineColor: color.RGBA{200, 200, 200, 255},
		FacingColor:  color.RGBA{80, 80, 120, 255},
	},
}

var localStyle = CharacterStyle{
	Name:         "经典白",
	BodyColor:    color.RGBA{255, 255, 255, 255},
	OutlineColor: color.RGBA{0, 0, 0, 255},
	FacingColor:  color.RGBA{255, 150, 150, 255},
}

// StyleFor 本地角色固定为白色，其他角色按 ID 轮换
func StyleFor(c *core.Character, localID int32) CharacterStyle {
	if c.ControllerID == localID {
		return localStyle
	}
	idx := int(c.ID) % len(observerStyles)
	if idx < 0 {
		idx = -idx
	}
	return observerStyles[idx]
}
