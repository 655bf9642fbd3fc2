package bot

// Config 机器人的行为参数
type Config struct {
	// ThinkIntervalFrames 重新选择巡逻点的间隔（采样帧）
	ThinkIntervalFrames int `yaml:"think_interval_frames"`

	// MistakeRate 随机失误率 (0.0-1.0)，失误时本帧横移
	MistakeRate float64 `yaml:"mistake_rate"`

	// SprintChance 选中新巡逻点时冲刺的概率
	SprintChance float64 `yaml:"sprint_chance"`

	// PatrolRadius 巡逻点到出生点的最大水平距离（米）
	PatrolRadius float32 `yaml:"patrol_radius"`

	// TurnRate 每帧最大转向角度
	TurnRate float32 `yaml:"turn_rate"`

	// StuckFrames 在该帧数内几乎没有位移视为卡住
	StuckFrames int `yaml:"stuck_frames"`
}

// 预设配置：闲逛
var ConfigCalm = Config{
	ThinkIntervalFrames: 300, // 5s
	MistakeRate:         0.0,
	SprintChance:        0.2,
	PatrolRadius:        6,
	TurnRate:            6,
	StuckFrames:         45,
}

// 预设配置：频繁变向、冲刺和失误，用于压测预测纠错
var ConfigRestless = Config{
	ThinkIntervalFrames: 60, // 1s
	MistakeRate:         0.05,
	SprintChance:        0.7,
	PatrolRadius:        10,
	TurnRate:            15,
	StuckFrames:         20,
}
