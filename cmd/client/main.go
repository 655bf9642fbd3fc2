package main

import (
	"flag"
	"fmt"
	"os"

	"fpsnet/internal/client"
	"fpsnet/internal/config"
	"fpsnet/internal/logger"
	"fpsnet/internal/view"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（YAML）")
	address := flag.String("addr", "", "服务器地址")
	proto := flag.String("proto", "", "传输协议: tcp 或 kcp")
	name := flag.String("name", "", "玩家名称")
	token := flag.String("token", "", "加入令牌")
	debug := flag.Bool("debug", false, "输出调试日志")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Client.Addr = *address
	}
	if *proto != "" {
		cfg.Client.Protocol = *proto
	}
	if *name != "" {
		cfg.Client.PlayerName = *name
	}
	if *token != "" {
		cfg.Client.Token = *token
	}
	if *debug {
		cfg.Client.Debug = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	log := logger.L()

	network := client.NewNetworkClient(cfg.Client.Addr, cfg.Client.Protocol, cfg.Client.PlayerName, cfg.Client.Token, log)
	if err := network.Connect(); err != nil {
		log.Fatalf("连接失败: %v", err)
	}
	defer network.Close()

	game, err := view.NewGame(network, client.Options{
		SensitivityX:         cfg.Client.SensitivityX,
		SensitivityY:         cfg.Client.SensitivityY,
		InputSendWindow:      cfg.Client.InputSendWindow,
		InterpolationDelayMs: int64(cfg.Client.InterpolationDelay),
	}, log)
	if err != nil {
		log.Fatalf("创建游戏失败: %v", err)
	}

	// 设置窗口选项
	ebiten.SetWindowSize(view.ScreenWidth, view.ScreenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("fpsnet - %s [%d]", cfg.Client.PlayerName, network.Accepted().CharacterID))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	log.WithFields(logrus.Fields{
		"addr":  cfg.Client.Addr,
		"proto": cfg.Client.Protocol,
	}).Info("客户端启动")

	// 运行游戏
	if err := ebiten.RunGame(game); err != nil {
		log.Errorf("游戏退出: %v", err)
	}
}
