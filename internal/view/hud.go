package view

import (
	"fmt"
	"image/color"

	"fpsnet/internal/client"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

var hudFont = text.NewGoXFace(basicfont.Face7x13)

var (
	hudColor   = color.RGBA{220, 230, 240, 255}
	hintColor  = color.RGBA{180, 190, 200, 255}
	errorColor = color.RGBA{255, 120, 120, 255}
)

// drawHUD 左上角调试信息
func drawHUD(screen *ebiten.Image, st client.Stats, rttMs int64, yaw, pitch float32, lastError string) {
	mode := "prediction"
	if !st.Prediction {
		mode = "server-only"
	}
	lines := []string{
		fmt.Sprintf("tick %d  server %d  rtt %dms  %s", st.Tick, st.ServerTick, rttMs, mode),
		fmt.Sprintf("characters %d  unacked %d  pending %d  corrections %d", st.Characters, st.Unacked, st.Pending, st.Corrections),
		fmt.Sprintf("yaw %.1f  pitch %.1f", yaw, pitch),
	}
	y := 20
	for _, line := range lines {
		drawText(screen, 12, y, line, hudColor)
		y += 16
	}

	hint := "WASD: Move  Shift: Sprint  Space: Jump  Esc: Unlock cursor"
	if !st.CursorLock {
		hint = "Esc: Lock cursor"
	}
	drawText(screen, 12, ScreenHeight-28, hint, hintColor)

	if lastError != "" {
		drawText(screen, 12, ScreenHeight-10, lastError, errorColor)
	}
}

func drawText(screen *ebiten.Image, x, y int, msg string, clr color.Color) {
	options := &text.DrawOptions{}
	options.GeoM.Translate(float64(x), float64(y))
	options.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, msg, hudFont, options)
}
