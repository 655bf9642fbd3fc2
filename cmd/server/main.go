package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fpsnet/internal/config"
	"fpsnet/internal/logger"
	"fpsnet/internal/server"
	"fpsnet/pkg/core"
)

func main() {
	// 命令行参数，非空时覆盖配置文件
	configPath := flag.String("config", "", "配置文件路径（YAML）")
	address := flag.String("addr", "", "服务器监听地址")
	proto := flag.String("proto", "", "传输协议: tcp 或 kcp")
	mintToken := flag.String("mint-token", "", "为指定玩家签发加入令牌后退出")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Server.Addr = *address
	}
	if *proto != "" {
		cfg.Server.Protocol = *proto
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	log := logger.L()

	gameServer := server.NewGameServer(cfg.Server, cfg.Movement, log)

	if *mintToken != "" {
		token, err := gameServer.Tokens().Generate(*mintToken)
		if err != nil {
			log.Fatalf("签发令牌失败: %v", err)
		}
		fmt.Println(token)
		return
	}

	// 启动服务器（在新的 goroutine 中）
	go func() {
		if err := gameServer.Start(); err != nil {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	log.Info("========================================")
	log.Info("  第一人称移动同步服务器")
	log.Info("========================================")
	log.Infof("监听地址: %s (%s)", cfg.Server.Addr, cfg.Server.Protocol)
	log.Infof("最大玩家数: %d", cfg.Server.MaxPlayers)
	log.Infof("服务器 TPS: %d", core.TPS)
	log.Infof("客户端预测: %v", cfg.Server.PredictionGranted)
	log.Info("按 Ctrl+C 停止服务器")

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	gameServer.Shutdown()
	log.Info("服务器已关闭，再见！")
}
