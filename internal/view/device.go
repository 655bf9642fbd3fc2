package view

import (
	"fpsnet/internal/client"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitenDevice 键鼠输入：WASD 移动，Shift 冲刺，空格跳跃，Escape 切换光标锁定
type EbitenDevice struct {
	lastX, lastY int
	hasLast      bool
}

func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{}
}

func (d *EbitenDevice) Sample() client.DeviceSample {
	var sample client.DeviceSample

	x, y := ebiten.CursorPosition()
	if d.hasLast {
		// 鼠标上移为负，灵敏度的符号决定是否反转
		sample.Look = mgl32.Vec2{
			float32(x-d.lastX) * MouseDegreesPerPixel,
			float32(y-d.lastY) * MouseDegreesPerPixel,
		}
	}
	d.lastX, d.lastY, d.hasLast = x, y, true

	if ebiten.IsKeyPressed(ebiten.KeyW) {
		sample.Move[1]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		sample.Move[1]--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		sample.Move[0]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		sample.Move[0]--
	}
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		sample.Sprint = 1
	}
	sample.Jump = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	sample.Escape = inpututil.IsKeyJustPressed(ebiten.KeyEscape)
	return sample
}

func (d *EbitenDevice) SetCursorLocked(locked bool) {
	if locked {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
	// 切换模式后光标位置会跳变，丢弃下一次增量
	d.hasLast = false
}
