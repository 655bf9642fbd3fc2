package config

import (
	"fmt"
	"os"
	"time"

	"fpsnet/internal/bot"
	"fpsnet/internal/logger"
	"fpsnet/pkg/core"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig        `yaml:"server"`
	Client   ClientConfig        `yaml:"client"`
	Bot      BotConfig           `yaml:"bot"`
	Movement core.MovementConfig `yaml:"movement"`
	Logging  logger.Config       `yaml:"logging"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	Protocol          string        `yaml:"protocol"` // "tcp" 或 "kcp"
	MaxPlayers        int           `yaml:"max_players"`
	PredictionGranted bool          `yaml:"prediction_granted"`
	RequireToken      bool          `yaml:"require_token"`
	TokenSecret       string        `yaml:"token_secret"` // 为空时读取 JWT_SECRET
	SpawnOrigin       mgl32.Vec3    `yaml:"spawn_origin"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration `yaml:"heartbeat_timeout"`
	InputRateLimit    float64       `yaml:"input_rate_limit"` // 每秒允许的输入包数
	InputRateBurst    int           `yaml:"input_rate_burst"`
}

type ClientConfig struct {
	Addr               string  `yaml:"addr"`
	Protocol           string  `yaml:"protocol"`
	PlayerName         string  `yaml:"player_name"`
	Token              string  `yaml:"token"`
	SensitivityX       float32 `yaml:"sensitivity_x"`
	SensitivityY       float32 `yaml:"sensitivity_y"`
	InputSendWindow    int     `yaml:"input_send_window"`
	InterpolationDelay int     `yaml:"interpolation_delay_ms"`
	Debug              bool    `yaml:"debug"`
}

// BotConfig 无界面机器人客户端，复用 client 段的连接参数
type BotConfig struct {
	Count      int        `yaml:"count"`
	NamePrefix string     `yaml:"name_prefix"`
	Behavior   bot.Config `yaml:"behavior"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			Protocol:          "tcp",
			MaxPlayers:        core.MaxCharacters,
			PredictionGranted: true,
			SpawnOrigin:       mgl32.Vec3{0, 0, 0},
			HeartbeatInterval: 2 * time.Second,
			HeartbeatTimeout:  10 * time.Second,
			InputRateLimit:    core.TPS * 2,
			InputRateBurst:    core.TPS,
		},
		Client: ClientConfig{
			Addr:               "localhost:8080",
			Protocol:           "tcp",
			PlayerName:         "Player",
			SensitivityX:       core.DefaultSensitivityX,
			SensitivityY:       core.DefaultSensitivityY,
			InputSendWindow:    8,
			InterpolationDelay: 100,
		},
		Bot: BotConfig{
			Count:      1,
			NamePrefix: "bot",
			Behavior:   bot.ConfigCalm,
		},
		Movement: core.DefaultMovementConfig(),
		Logging:  logger.Config{Level: "info", Format: "text"},
	}
}

// Load 读取配置文件，缺省字段保留默认值
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault path 为空时直接返回默认配置
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	switch c.Server.Protocol {
	case "tcp", "kcp":
	default:
		return fmt.Errorf("server.protocol 不支持: %q", c.Server.Protocol)
	}
	switch c.Client.Protocol {
	case "tcp", "kcp":
	default:
		return fmt.Errorf("client.protocol 不支持: %q", c.Client.Protocol)
	}
	if c.Server.MaxPlayers <= 0 || c.Server.MaxPlayers > core.MaxCharacters {
		return fmt.Errorf("server.max_players 超出范围: %d", c.Server.MaxPlayers)
	}
	if c.Client.InputSendWindow <= 0 || c.Client.InputSendWindow > core.InputBufferWindow {
		return fmt.Errorf("client.input_send_window 超出范围: %d", c.Client.InputSendWindow)
	}
	if c.Server.HeartbeatInterval <= 0 || c.Server.HeartbeatTimeout <= c.Server.HeartbeatInterval {
		return fmt.Errorf("server.heartbeat_timeout 必须大于 heartbeat_interval")
	}
	if c.Server.InputRateLimit <= 0 || c.Server.InputRateBurst <= 0 {
		return fmt.Errorf("server.input_rate_limit 必须为正数")
	}
	if c.Bot.Count < 0 || c.Bot.Count > core.MaxCharacters {
		return fmt.Errorf("bot.count 超出范围: %d", c.Bot.Count)
	}
	if c.Bot.Behavior.ThinkIntervalFrames <= 0 || c.Bot.Behavior.StuckFrames <= 0 {
		return fmt.Errorf("bot.behavior 帧数必须为正数")
	}
	m := c.Movement
	if m.WalkingSpeed <= 0 || m.SprintMultiplier <= 0 || m.AccelerationRate <= 0 || m.DecelerationRate <= 0 {
		return fmt.Errorf("movement 速度参数必须为正数")
	}
	if m.MaxStepDownDistance < 0 {
		return fmt.Errorf("movement.max_step_down_distance 不能为负数")
	}
	return nil
}
