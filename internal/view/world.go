package view

import (
	"image/color"

	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// camera 俯视投影：X 向右，Z 向上，跟随本地角色
type camera struct {
	center mgl32.Vec3
}

func (c camera) toScreen(p mgl32.Vec3) (float32, float32) {
	x := float32(ScreenWidth)/2 + (p.X()-c.center.X())*PixelsPerMeter
	y := float32(ScreenHeight)/2 - (p.Z()-c.center.Z())*PixelsPerMeter
	return x, y
}

// WorldRenderer 场景渲染器
type WorldRenderer struct {
	World *core.World
}

// NewWorldRenderer 创建场景渲染器
func NewWorldRenderer(world *core.World) *WorldRenderer {
	return &WorldRenderer{World: world}
}

// Draw 绘制地面网格和方块，方块越高颜色越亮
func (w *WorldRenderer) Draw(screen *ebiten.Image, cam camera) {
	screen.Fill(color.RGBA{34, 139, 34, 255}) // 草地绿

	// 每米一条网格线
	gridColor := color.RGBA{0, 0, 0, 40}
	for gx := int(cam.center.X()) - ScreenWidth/PixelsPerMeter; gx <= int(cam.center.X())+ScreenWidth/PixelsPerMeter; gx++ {
		x, _ := cam.toScreen(mgl32.Vec3{float32(gx), 0, 0})
		vector.StrokeLine(screen, x, 0, x, ScreenHeight, 1, gridColor, false)
	}
	for gz := int(cam.center.Z()) - ScreenHeight/PixelsPerMeter; gz <= int(cam.center.Z())+ScreenHeight/PixelsPerMeter; gz++ {
		_, y := cam.toScreen(mgl32.Vec3{0, 0, float32(gz)})
		vector.StrokeLine(screen, 0, y, ScreenWidth, y, 1, gridColor, false)
	}

	for _, box := range w.World.Solids {
		// 地面平板不画
		if box.Max.Y() <= 0 {
			continue
		}
		x0, y0 := cam.toScreen(mgl32.Vec3{box.Min.X(), 0, box.Max.Z()})
		x1, y1 := cam.toScreen(mgl32.Vec3{box.Max.X(), 0, box.Min.Z()})

		shade := uint8(80 + min(box.Max.Y(), 3)*50)
		vector.DrawFilledRect(screen, x0, y0, x1-x0, y1-y0, color.RGBA{shade, shade, shade, 255}, false)
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, color.RGBA{0, 0, 0, 100}, false)
	}
}
