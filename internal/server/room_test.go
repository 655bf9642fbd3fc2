package server

import (
	"context"
	"errors"
	"io"
	"testing"

	"fpsnet/internal/config"
	"fpsnet/pkg/core"
	"fpsnet/pkg/protocol"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// fakeSession 记录房间发出的数据包
type fakeSession struct {
	id      int32
	packets []*protocol.Packet
	closed  bool
	sendErr error
}

func (s *fakeSession) ID() int32 { return s.id }

func (s *fakeSession) Send(data []byte) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return err
	}
	s.packets = append(s.packets, pkt)
	return nil
}

func (s *fakeSession) Close()                  { s.closed = true }
func (s *fakeSession) CloseWithoutNotify()     { s.closed = true }
func (s *fakeSession) SetCharacterID(id int32) { s.id = id }

func (s *fakeSession) last(t *testing.T, typ protocol.MessageType) *protocol.Packet {
	t.Helper()
	for i := len(s.packets) - 1; i >= 0; i-- {
		if s.packets[i].Type == typ {
			return s.packets[i]
		}
	}
	t.Fatalf("未收到 %s", typ)
	return nil
}

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	cfg := config.Default().Server
	cfg.MaxPlayers = 2
	cfg.SpawnOrigin = mgl32.Vec3{0, 0, 0}

	l := logrus.New()
	l.SetOutput(io.Discard)
	r := NewRoom(context.Background(), cfg, core.DefaultMovementConfig(), logrus.NewEntry(l))
	t.Cleanup(r.Shutdown)
	return r
}

func TestRoom_JoinSpawnsAlongLeft(t *testing.T) {
	r := newTestRoom(t)
	a, b, c := &fakeSession{id: -1}, &fakeSession{id: -1}, &fakeSession{id: -1}

	if err := r.handleJoin(a, "a"); err != nil {
		t.Fatalf("join a: %v", err)
	}
	if err := r.handleJoin(b, "b"); err != nil {
		t.Fatalf("join b: %v", err)
	}
	if err := r.handleJoin(c, "c"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("第三个玩家 err = %v, 期望 ErrRoomFull", err)
	}

	acceptedA, err := protocol.ParseJoinAccepted(a.last(t, protocol.MessageTypeJoinAccepted))
	if err != nil {
		t.Fatalf("ParseJoinAccepted: %v", err)
	}
	acceptedB, _ := protocol.ParseJoinAccepted(b.last(t, protocol.MessageTypeJoinAccepted))

	if acceptedA.Spawn != (mgl32.Vec3{-1, 0, 0}) || acceptedB.Spawn != (mgl32.Vec3{-2, 0, 0}) {
		t.Fatalf("出生点 = %v, %v", acceptedA.Spawn, acceptedB.Spawn)
	}
	if a.id != acceptedA.CharacterID || !acceptedA.PredictionGranted {
		t.Fatalf("JoinAccepted = %+v", acceptedA)
	}
	if acceptedA.Movement != core.DefaultMovementConfig() {
		t.Fatalf("Movement = %+v", acceptedA.Movement)
	}
}

func TestRoom_JoinRollbackOnSendFailure(t *testing.T) {
	r := newTestRoom(t)
	s := &fakeSession{id: -1, sendErr: ErrSendQueueFull}
	if err := r.handleJoin(s, "x"); err == nil {
		t.Fatal("发送失败时加入应当失败")
	}
	if len(r.sessions) != 0 || len(r.game.Characters) != 0 || s.id != -1 {
		t.Fatalf("加入失败后未回滚")
	}
}

func TestRoom_InputCursorStartsAtFirstTick(t *testing.T) {
	r := newTestRoom(t)
	s := &fakeSession{id: -1}
	_ = r.handleJoin(s, "runner")

	frames := []protocol.InputFrame{
		{Tick: 500, Record: core.InputRecord{Movement: mgl32.Vec2{0, 1}}},
		{Tick: 501, Record: core.InputRecord{Movement: mgl32.Vec2{0, 1}}},
		{Tick: 503, Record: core.InputRecord{}},
	}
	r.handleInput(&InputEvent{CharacterID: s.id, Frames: frames})

	r.tick()
	r.tick()
	r.tick() // 第 502 帧缺失，503 已到达，按无输入消费

	c := r.game.GetCharacter(s.id)
	if c.LastInputTick != 501 || !c.HasInput {
		t.Fatalf("LastInputTick = %d, 期望 501", c.LastInputTick)
	}

	// 迟到的 502 被丢弃，503 正常消费
	r.handleInput(&InputEvent{CharacterID: s.id, Frames: []protocol.InputFrame{
		{Tick: 502, Record: core.InputRecord{JumpRequested: true}},
	}})
	r.tick()
	if c.LastInputTick != 503 {
		t.Fatalf("LastInputTick = %d, 期望 503", c.LastInputTick)
	}
	if c.State.Velocity.Y() != 0 {
		t.Fatalf("迟到的跳跃被执行了")
	}

	snap, err := protocol.ParseStateSnapshot(s.last(t, protocol.MessageTypeStateSnapshot))
	if err != nil {
		t.Fatalf("ParseStateSnapshot: %v", err)
	}
	if snap.ServerTick != 4 || len(snap.Characters) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Characters[0].Velocity == nil || snap.Characters[0].LastInputTick != 503 {
		t.Fatalf("控制端快照缺少速度或输入帧号: %+v", snap.Characters[0])
	}
}

func TestRoom_InputCursorCatchesUp(t *testing.T) {
	cursor := newInputCursor()
	cursor.buffer.Submit(10, core.InputRecord{})
	if tick, _ := cursor.fetch(); tick != 10 {
		t.Fatalf("首帧 = %d, 期望 10", tick)
	}

	cursor.buffer.Submit(40, core.InputRecord{Sprinting: true})
	tick, rec := cursor.fetch()
	if tick != 40-inputCatchUpDelay || rec != nil {
		t.Fatalf("追赶后 = (%d, %v), 期望 (%d, nil)", tick, rec, 40-inputCatchUpDelay)
	}
}

func TestRoom_InputCursorClientBehind(t *testing.T) {
	tests := []struct {
		name         string
		serverTicks  int
		submit       func(s int) []uint32 // 第 s 个服务器帧之前到达的输入帧号
		wantConsumed int
		wantLast     uint32
		wantStalls   int
	}{
		{
			name:        "落后一帧后恢复",
			serverTicks: 611,
			submit: func(s int) []uint32 {
				switch {
				case s <= 10:
					return []uint32{uint32(s)}
				case s == 11:
					return nil
				default:
					return []uint32{uint32(s - 1)}
				}
			},
			wantConsumed: 610,
			wantLast:     610,
			wantStalls:   1,
		},
		{
			name:        "客户端丢弃积压后恢复",
			serverTicks: 60,
			submit: func(s int) []uint32 {
				switch {
				case s <= 10:
					return []uint32{uint32(s)}
				case s <= 15:
					return nil
				default:
					return []uint32{uint32(s - 5)}
				}
			},
			wantConsumed: 55,
			wantLast:     55,
			wantStalls:   5,
		},
		{
			name:        "抖动：输入成对到达",
			serverTicks: 101,
			submit: func(s int) []uint32 {
				switch {
				case s == 1:
					return []uint32{1}
				case s%2 == 0:
					return nil
				default:
					return []uint32{uint32(s - 1), uint32(s)}
				}
			},
			wantConsumed: 100,
			wantLast:     100,
			wantStalls:   1,
		},
		{
			name:        "单帧丢失按无输入跳过",
			serverTicks: 30,
			submit: func(s int) []uint32 {
				if s == 20 {
					return nil
				}
				return []uint32{uint32(s)}
			},
			wantConsumed: 28,
			wantLast:     29,
			wantStalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := newInputCursor()
			consumed := 0
			var last uint32
			for s := 1; s <= tt.serverTicks; s++ {
				for _, tick := range tt.submit(s) {
					cursor.buffer.Submit(tick, core.InputRecord{Movement: mgl32.Vec2{0, 1}})
				}
				tick, rec := cursor.fetch()
				if rec == nil {
					continue
				}
				if consumed > 0 && tick <= last {
					t.Fatalf("第 %d 帧重复或乱序消费 %d (上一帧 %d)", s, tick, last)
				}
				consumed++
				last = tick
			}
			if consumed != tt.wantConsumed || last != tt.wantLast {
				t.Errorf("消费 %d 帧，最后 %d，期望 %d 帧，最后 %d", consumed, last, tt.wantConsumed, tt.wantLast)
			}
			if cursor.stalls != tt.wantStalls {
				t.Errorf("stalls = %d, 期望 %d", cursor.stalls, tt.wantStalls)
			}
		})
	}
}

func TestRoom_ClientFallsBehindKeepsMoving(t *testing.T) {
	r := newTestRoom(t)
	s := &fakeSession{id: -1}
	_ = r.handleJoin(s, "laggy")
	c := r.game.GetCharacter(s.id)

	forward := core.InputRecord{Movement: mgl32.Vec2{0, 1}}
	send := func(tick uint32) {
		r.handleInput(&InputEvent{CharacterID: s.id, Frames: []protocol.InputFrame{{Tick: tick, Record: forward}}})
	}

	var tick uint32 = 100
	for i := 0; i < 10; i++ {
		send(tick)
		tick++
		r.tick()
	}
	// 客户端卡顿三个服务器帧
	r.tick()
	r.tick()
	r.tick()
	for i := 0; i < 30; i++ {
		send(tick)
		tick++
		r.tick()
	}

	if c.LastInputTick != tick-1 {
		t.Fatalf("LastInputTick = %d, 期望 %d", c.LastInputTick, tick-1)
	}
	planar := mgl32.Vec2{c.State.Velocity.X(), c.State.Velocity.Z()}
	if planar.Len() < 2 {
		t.Fatalf("落后后权威端停止移动，水平速度 %.2f", planar.Len())
	}
}

func TestRoom_LeaveDestroysAndBroadcasts(t *testing.T) {
	r := newTestRoom(t)
	a, b := &fakeSession{id: -1}, &fakeSession{id: -1}
	_ = r.handleJoin(a, "a")
	_ = r.handleJoin(b, "b")
	character := r.game.GetCharacter(a.id)

	r.handleLeave(a.id)

	if character.Lifecycle != core.LifecycleDestroyed {
		t.Fatalf("Lifecycle = %s, 期望 destroyed", character.Lifecycle)
	}
	if r.game.GetCharacter(a.id) != nil {
		t.Fatal("角色仍在模拟中")
	}
	leave, err := protocol.ParsePlayerLeave(b.last(t, protocol.MessageTypePlayerLeave))
	if err != nil || leave.CharacterID != a.id {
		t.Fatalf("PlayerLeave = %+v, %v", leave, err)
	}

	// 离开后的输入直接忽略
	r.handleInput(&InputEvent{CharacterID: a.id, Frames: []protocol.InputFrame{{Tick: 1}}})
	r.tick()

	snap, _ := protocol.ParseStateSnapshot(b.last(t, protocol.MessageTypeStateSnapshot))
	if len(snap.Characters) != 1 || snap.Characters[0].ID != b.id {
		t.Fatalf("快照中仍包含已离开角色: %+v", snap.Characters)
	}
}

func TestRoom_ObserverSnapshotHasNoVelocity(t *testing.T) {
	r := newTestRoom(t)
	a, b := &fakeSession{id: -1}, &fakeSession{id: -1}
	_ = r.handleJoin(a, "a")
	_ = r.handleJoin(b, "b")
	r.tick()

	snap, _ := protocol.ParseStateSnapshot(b.last(t, protocol.MessageTypeStateSnapshot))
	for _, c := range snap.Characters {
		if c.ID == a.id && c.Velocity != nil {
			t.Fatalf("其他玩家的速度不应下发")
		}
		if c.ID == b.id && c.Velocity == nil {
			t.Fatalf("自己的速度应当下发")
		}
	}
}
