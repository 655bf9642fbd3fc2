package client

import "fpsnet/pkg/core"

// ===== 网络插值与预测配置（客户端专用）=====
const (
	// 插值缓冲延迟（毫秒）：观察者渲染时间滞后于服务器时间
	DefaultInterpolationDelayMs int64 = 100
	MinInterpolationDelayMs     int64 = 50
	MaxInterpolationDelayMs     int64 = 300

	// 插值缓冲区大小：存储最近 N 个状态快照
	InterpolationBufferSize = 30

	// 航位推测最大时长（毫秒）：超过此时间未收到新状态则停在最后位置
	DeadReckoningMaxMs int64 = 250

	// 预测纠错：误差超过该距离（米）直接拉回，否则逐帧衰减
	ReconciliationSnapDistance = 1.0

	// 预测纠错衰减速度（每秒）
	ReconciliationDecayRate = 10.0

	// 未确认输入的最大保存帧数
	InputHistorySize = core.InputBufferWindow

	// 每帧最多追赶的模拟步数，防止卡顿后螺旋
	MaxStepsPerFrame = 5
)
