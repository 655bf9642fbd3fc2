package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fpsnet/internal/bot"
	"fpsnet/internal/client"
	"fpsnet/internal/config"
	"fpsnet/internal/logger"
	"fpsnet/pkg/core"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（YAML）")
	address := flag.String("addr", "", "服务器地址")
	proto := flag.String("proto", "", "传输协议: tcp 或 kcp")
	count := flag.Int("n", 0, "机器人数量")
	restless := flag.Bool("restless", false, "使用频繁变向的行为预设")
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
	if *count > 0 {
		cfg.Bot.Count = *count
	}
	if *restless {
		cfg.Bot.Behavior = bot.ConfigRestless
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Bot.Count; i++ {
		i := i
		name := fmt.Sprintf("%s-%d", cfg.Bot.NamePrefix, i+1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := runBot(ctx, cfg, name, int64(i), log); err != nil {
				log.WithField("bot", name).Errorf("机器人退出: %v", err)
			}
		}()
	}

	wg.Wait()
	log.Info("所有机器人已退出")
}

// runBot 连接服务器并以固定帧率驱动一个机器人，直到 ctx 取消或断线
func runBot(ctx context.Context, cfg *config.Config, name string, seed int64, log *logrus.Logger) error {
	network := client.NewNetworkClient(cfg.Client.Addr, cfg.Client.Protocol, name, cfg.Client.Token, log)
	if err := network.Connect(); err != nil {
		return err
	}
	defer network.Close()

	behavior := cfg.Bot.Behavior
	controller := bot.NewController(&behavior, time.Now().UnixNano()+seed, cfg.Client.SensitivityX)

	entry := log.WithField("bot", name)
	sim, err := client.NewSimulation(network.Accepted(), controller, network, client.Options{
		SensitivityX:         cfg.Client.SensitivityX,
		SensitivityY:         cfg.Client.SensitivityY,
		InputSendWindow:      cfg.Client.InputSendWindow,
		InterpolationDelayMs: int64(cfg.Client.InterpolationDelay),
	}, entry)
	if err != nil {
		return err
	}
	controller.Attach(sim.Character(sim.LocalID()))

	ticker := time.NewTicker(time.Second / core.TPS)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			sim.Sync(network)
			if err := network.Err(); err != nil {
				return err
			}
			if err := sim.Frame(now.Sub(last).Seconds(), network.ServerTimeMs()); err != nil {
				entry.Debugf("发送输入失败: %v", err)
			}
			last = now
		}
	}
}
