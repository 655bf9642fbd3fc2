package view

import (
	"errors"
	"image/color"
	"time"

	"fpsnet/internal/client"
	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"
)

// ErrDisconnected 与服务器的连接已断开
var ErrDisconnected = errors.New("与服务器断开连接")

// 断线时覆盖整个画面的半透明遮罩
var disconnectedShade = color.RGBA{0, 0, 0, 128}

// Game 联机客户端（Ebiten 游戏循环）
type Game struct {
	sim     *client.Simulation
	network *client.NetworkClient
	world   *WorldRenderer
	log     *logrus.Entry

	lastUpdateTime time.Time
	lastError      string
	cam            camera
}

// NewGame 在加入成功后创建游戏
func NewGame(network *client.NetworkClient, opts client.Options, log *logrus.Logger) (*Game, error) {
	accepted := network.Accepted()
	if accepted == nil {
		return nil, client.ErrNotConnected
	}

	entry := log.WithField("component", "client")
	sim, err := client.NewSimulation(accepted, NewEbitenDevice(), network, opts, entry)
	if err != nil {
		return nil, err
	}

	return &Game{
		sim:            sim,
		network:        network,
		world:          NewWorldRenderer(sim.World()),
		log:            entry,
		lastUpdateTime: time.Now(),
		cam:            camera{center: accepted.Spawn},
	}, nil
}

// Update 更新游戏状态
func (g *Game) Update() error {
	now := time.Now()
	deltaTime := now.Sub(g.lastUpdateTime).Seconds()
	g.lastUpdateTime = now

	// 1. 应用服务器状态
	g.sim.Sync(g.network)

	if err := g.network.Err(); err != nil {
		g.log.Errorf("网络错误: %v", err)
		return errors.Join(ErrDisconnected, err)
	}

	// 2. 采样、提交输入、计算渲染状态
	if err := g.sim.Frame(deltaTime, g.network.ServerTimeMs()); err != nil {
		g.lastError = err.Error()
		g.log.Debugf("发送输入失败: %v", err)
	} else {
		g.lastError = ""
	}

	// 3. 相机跟随本地角色
	g.sim.Each(func(c *core.Character, position mgl32.Vec3) {
		if c.ID == g.sim.LocalID() {
			g.cam.center = position
		}
	})
	return nil
}

// Draw 绘制游戏画面
func (g *Game) Draw(screen *ebiten.Image) {
	g.world.Draw(screen, g.cam)

	localID := g.sim.LocalID()
	g.sim.Each(func(c *core.Character, position mgl32.Vec3) {
		drawCharacter(screen, g.cam, c, position, StyleFor(c, localID))
	})

	var yaw, pitch float32
	if local := g.sim.Character(localID); local != nil {
		yaw = core.NormalizeYaw(local.Orientation.VisualYaw)
		pitch = local.Orientation.Pitch
	}
	drawHUD(screen, g.sim.Stats(), g.network.RTT().Milliseconds(), yaw, pitch, g.lastError)

	if !g.network.IsConnected() {
		vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, disconnectedShade, false)
	}
}

// Layout 设置屏幕布局
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
