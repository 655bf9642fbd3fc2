package client

import (
	"errors"
	"io"
	"testing"
	"time"

	"fpsnet/pkg/protocol"

	"github.com/sirupsen/logrus"
)

func newTestNetworkClient(t *testing.T) *NetworkClient {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	nc := NewNetworkClient("127.0.0.1:0", "tcp", "tester", "", l)
	t.Cleanup(nc.cancel)
	return nc
}

func marshal(t *testing.T, pkt *protocol.Packet) []byte {
	t.Helper()
	data, err := protocol.MarshalPacket(pkt)
	if err != nil {
		t.Fatalf("MarshalPacket: %v", err)
	}
	return data
}

func TestNetworkClient_UpdateClock(t *testing.T) {
	nc := newTestNetworkClient(t)

	nc.updateClock(&protocol.Pong{ClientTime: 1000, ServerTime: 5000}, 1100)
	if nc.RTT() != 100*time.Millisecond {
		t.Fatalf("RTT = %v, 期望 100ms", nc.RTT())
	}
	if got := nc.clockOffset.Load(); got != 3950 {
		t.Fatalf("offset = %d, 期望 3950", got)
	}

	// 之后的样本平滑合并
	nc.updateClock(&protocol.Pong{ClientTime: 2000, ServerTime: 6100}, 2100)
	if got := nc.clockOffset.Load(); got != 3960 {
		t.Fatalf("offset = %d, 期望 3960", got)
	}

	// 时间倒流的样本丢弃
	nc.updateClock(&protocol.Pong{ClientTime: 3000, ServerTime: 0}, 2000)
	if got := nc.clockOffset.Load(); got != 3960 {
		t.Fatalf("offset = %d, 期望不变", got)
	}
}

func TestNetworkClient_HandleMessage(t *testing.T) {
	nc := newTestNetworkClient(t)
	nc.connected.Store(true)

	snap := &protocol.StateSnapshot{ServerTick: 7, ServerTimeMs: time.Now().UnixMilli() + 60_000}
	if err := nc.handleMessage(marshal(t, protocol.NewStateSnapshotPacket(snap))); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	got := nc.ReceiveSnapshot()
	if got == nil || got.ServerTick != 7 {
		t.Fatalf("ReceiveSnapshot = %+v", got)
	}
	if nc.ReceiveSnapshot() != nil {
		t.Fatal("快照只应取出一次")
	}
	// 尚未校准时用快照时间粗略估计
	if off := nc.clockOffset.Load(); off < 59_000 || off > 61_000 {
		t.Fatalf("offset = %d, 期望约 60000", off)
	}

	_ = nc.handleMessage(marshal(t, protocol.NewPlayerLeavePacket(3)))
	if id := nc.ReceivePlayerLeave(); id != 3 {
		t.Fatalf("ReceivePlayerLeave = %d, 期望 3", id)
	}
	if id := nc.ReceivePlayerLeave(); id != -1 {
		t.Fatalf("ReceivePlayerLeave = %d, 期望 -1", id)
	}

	_ = nc.handleMessage(marshal(t, protocol.NewPingPacket(1234)))
	select {
	case data := <-nc.sendChan:
		pkt, err := protocol.UnmarshalPacket(data)
		if err != nil {
			t.Fatalf("UnmarshalPacket: %v", err)
		}
		pong, err := protocol.ParsePong(pkt)
		if err != nil || pong.ClientTime != 1234 {
			t.Fatalf("Pong = %+v, %v", pong, err)
		}
	default:
		t.Fatal("Ping 未回复 Pong")
	}

	_ = nc.handleMessage(marshal(t, protocol.NewJoinRejectedPacket("房间已满")))
	if err := nc.Err(); !errors.Is(err, ErrJoinRejected) {
		t.Fatalf("Err = %v, 期望 ErrJoinRejected", err)
	}

	if err := nc.handleMessage([]byte{0xff}); err == nil {
		t.Fatal("损坏的数据应当返回错误")
	}
}

func TestNetworkClient_SendRequiresConnection(t *testing.T) {
	nc := newTestNetworkClient(t)
	if err := nc.SendInputBatch(nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("SendInputBatch = %v, 期望 ErrNotConnected", err)
	}

	nc.connected.Store(true)
	for i := 0; i < cap(nc.sendChan); i++ {
		if err := nc.SendInputBatch([]protocol.InputFrame{{Tick: uint32(i)}}); err != nil {
			t.Fatalf("SendInputBatch: %v", err)
		}
	}
	if err := nc.SendInputBatch(nil); !errors.Is(err, ErrSendQueueFull) {
		t.Fatalf("SendInputBatch = %v, 期望 ErrSendQueueFull", err)
	}
}
