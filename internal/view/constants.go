package view

// 窗口尺寸（俯视调试视图）
const (
	ScreenWidth  = 960
	ScreenHeight = 640

	// 每米像素数
	PixelsPerMeter = 32

	// 鼠标像素到视角度数的换算
	MouseDegreesPerPixel = 0.1
)
