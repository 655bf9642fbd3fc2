package client

import (
	"fpsnet/pkg/core"
	"fpsnet/pkg/protocol"
)

// InputSender 发送一批输入帧
type InputSender interface {
	SendInputBatch(frames []protocol.InputFrame) error
}

// InputChannel 客户端输入通道：每帧提交一次，重复发送最近若干帧以抵抗丢包
type InputChannel struct {
	sender    InputSender
	predictor *Predictor // 未开启预测时为 nil
	window    int

	history []protocol.InputFrame
	acked   uint32
	hasAck  bool
}

func NewInputChannel(sender InputSender, predictor *Predictor, window int) *InputChannel {
	if window <= 0 {
		window = 1
	}
	return &InputChannel{
		sender:    sender,
		predictor: predictor,
		window:    window,
		history:   make([]protocol.InputFrame, 0, InputHistorySize),
	}
}

// Submit 提交某一帧的输入，每帧恰好一次
// 开启预测时同步交给本地预测器
func (ch *InputChannel) Submit(tick uint32, record core.InputRecord) error {
	ch.history = append(ch.history, protocol.InputFrame{Tick: tick, Record: record})
	if len(ch.history) > InputHistorySize {
		ch.history = ch.history[len(ch.history)-InputHistorySize:]
	}

	if ch.predictor != nil {
		ch.predictor.Predict(tick, record)
	}

	start := 0
	if len(ch.history) > ch.window {
		start = len(ch.history) - ch.window
	}
	frames := make([]protocol.InputFrame, len(ch.history)-start)
	copy(frames, ch.history[start:])
	return ch.sender.SendInputBatch(frames)
}

// Ack 服务器已消费到 tick，之前的帧不再重发
func (ch *InputChannel) Ack(tick uint32) {
	if ch.hasAck && tick <= ch.acked {
		return
	}
	ch.acked, ch.hasAck = tick, true
	n := 0
	for n < len(ch.history) && ch.history[n].Tick <= tick {
		n++
	}
	ch.history = ch.history[n:]
}

// Unacked 尚未确认的帧数
func (ch *InputChannel) Unacked() int {
	return len(ch.history)
}
