package view

import (
	"image/color"

	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// drawCharacter 在渲染位置画出角色：圆形身体、朝向线和高度阴影
func drawCharacter(screen *ebiten.Image, cam camera, c *core.Character, position mgl32.Vec3, style CharacterStyle) {
	if !c.Active() {
		return
	}

	x, y := cam.toScreen(position)
	radius := float32(core.CharacterRadius * PixelsPerMeter)

	// 离地越高阴影越小
	shadow := radius * (1 - min(position.Y(), 2)/4)
	vector.DrawFilledCircle(screen, x, y+radius*0.3, shadow, color.RGBA{0, 0, 0, 80}, false)

	vector.DrawFilledCircle(screen, x, y, radius, style.BodyColor, false)
	vector.StrokeCircle(screen, x, y, radius, 2, style.OutlineColor, false)

	// 朝向
	fwd := c.Orientation.Forward()
	tip := position.Add(mgl32.Vec3{fwd.X(), 0, fwd.Z()}.Mul(core.CharacterRadius * 2))
	tx, ty := cam.toScreen(tip)
	vector.StrokeLine(screen, x, y, tx, ty, 3, style.FacingColor, false)

	// 未落地时标一个点
	if !c.State.Grounded {
		vector.DrawFilledCircle(screen, x, y, radius*0.3, color.RGBA{255, 255, 255, 255}, false)
	}
}
