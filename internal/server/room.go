package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fpsnet/internal/config"
	"fpsnet/pkg/core"
	"fpsnet/pkg/protocol"

	"github.com/sirupsen/logrus"
)

const (
	TickDuration = time.Second / core.TPS

	// 输入游标落后最新输入超过该帧数时直接追赶
	maxInputLead = 12
	// 追赶后保留的输入缓冲帧数
	inputCatchUpDelay = 2
)

var (
	ErrRoomClosed = errors.New("房间已关闭")
	ErrRoomFull   = errors.New("服务器已满")
)

// inputCursor 某个角色的输入缓冲和读取位置
// 游标从收到的第一帧开始，之后每个服务器帧前进一帧。
// 客户端领先太多时跳到最新输入附近；游标处及之后都没有输入时（客户端落后）
// 停在原地等待，本帧按无输入模拟，已消费的帧不会被重新模拟
type inputCursor struct {
	buffer  *core.InputBuffer
	next    uint32
	started bool
	stalls  int // 停住等待的服务器帧数，调试用
}

func newInputCursor() *inputCursor {
	return &inputCursor{buffer: core.NewInputBuffer(core.InputBufferWindow)}
}

// fetch 取本帧输入，缺失时返回 nil
func (ic *inputCursor) fetch() (uint32, *core.InputRecord) {
	if !ic.started {
		earliest, ok := ic.buffer.Earliest()
		if !ok {
			return 0, nil
		}
		ic.next = earliest
		ic.started = true
	}

	latest, ok := ic.buffer.Latest()
	if !ok || latest < ic.next {
		ic.stalls++
		return ic.next - 1, nil
	}
	if latest > ic.next+maxInputLead {
		ic.next = latest - inputCatchUpDelay
	}

	// 中间缺失的帧按无输入消费，之后迟到的同帧输入被缓冲区拒绝
	tick := ic.next
	ic.next++
	record, ok := ic.buffer.Fetch(tick)
	if !ok {
		return tick, nil
	}
	return tick, &record
}

type Room struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.ServerConfig
	log    *logrus.Entry

	game       *core.Game
	serverTick atomic.Uint32

	sessions map[int32]Session
	inputs   map[int32]*inputCursor
	nextID   int32

	joinCh  chan joinRequest
	inputCh chan *InputEvent
	leaveCh chan int32
}

type joinRequest struct {
	session    Session
	playerName string
	respCh     chan error
}

func NewRoom(parent context.Context, cfg config.ServerConfig, movement core.MovementConfig, log *logrus.Entry) *Room {
	ctx, cancel := context.WithCancel(parent)

	game := core.NewGame(core.NewDemoWorld(), movement)
	game.SpawnOrigin = cfg.SpawnOrigin

	return &Room{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		log:      log,
		game:     game,
		sessions: make(map[int32]Session),
		inputs:   make(map[int32]*inputCursor),
		nextID:   1,
		joinCh:   make(chan joinRequest),
		inputCh:  make(chan *InputEvent, 256),
		leaveCh:  make(chan int32, 256),
	}
}

func (r *Room) Run(wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	r.log.Infof("房间循环启动: %d TPS", core.TPS)

	for {
		select {
		case <-r.ctx.Done():
			r.closeAllSessions()
			r.log.Info("房间循环停止")
			return

		case req := <-r.joinCh:
			req.respCh <- r.handleJoin(req.session, req.playerName)

		case ev := <-r.inputCh:
			r.handleInput(ev)

		case id := <-r.leaveCh:
			r.handleLeave(id)

		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Room) Shutdown() {
	r.cancel()
}

// CurrentTick 当前服务器帧号，可在任意 goroutine 调用
func (r *Room) CurrentTick() uint32 {
	return r.serverTick.Load()
}

func (r *Room) Join(s Session, playerName string) error {
	respCh := make(chan error, 1)

	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case r.joinCh <- joinRequest{session: s, playerName: playerName, respCh: respCh}:
	}

	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case err := <-respCh:
		return err
	}
}

func (r *Room) EnqueueInput(ev *InputEvent) {
	select {
	case <-r.ctx.Done():
	case r.inputCh <- ev:
	}
}

func (r *Room) Leave(id int32) {
	select {
	case <-r.ctx.Done():
	case r.leaveCh <- id:
	}
}

func (r *Room) tick() {
	r.game.Update(r.fetchInput)
	r.serverTick.Store(r.game.CurrentTick)
	r.broadcastState()
}

func (r *Room) fetchInput(c *core.Character) (uint32, *core.InputRecord) {
	cursor, ok := r.inputs[c.ControllerID]
	if !ok {
		return 0, nil
	}
	return cursor.fetch()
}

func (r *Room) handleJoin(s Session, playerName string) error {
	if len(r.sessions) >= r.cfg.MaxPlayers {
		return fmt.Errorf("%w (%d/%d)", ErrRoomFull, len(r.sessions), r.cfg.MaxPlayers)
	}

	id := r.nextID
	r.nextID++

	spawn := r.game.SpawnPosition(len(r.sessions))
	character := core.NewCharacter(id, id, spawn)
	if err := character.Activate(core.RoleAuthority); err != nil {
		return err
	}
	r.game.AddCharacter(character)
	r.sessions[id] = s
	r.inputs[id] = newInputCursor()
	s.SetCharacterID(id)

	accepted := &protocol.JoinAccepted{
		CharacterID:       id,
		TickRate:          core.TPS,
		ServerTick:        r.game.CurrentTick,
		Spawn:             spawn,
		Movement:          r.game.Movement,
		PredictionGranted: r.cfg.PredictionGranted,
	}
	data, err := EncodePacket(protocol.NewJoinAcceptedPacket(accepted))
	if err == nil {
		err = s.Send(data)
	}
	if err != nil {
		r.removeCharacter(id)
		s.SetCharacterID(-1)
		return fmt.Errorf("发送加入结果失败: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"character": id,
		"name":      playerName,
		"spawn":     spawn,
	}).Infof("角色加入，当前人数: %d", len(r.sessions))
	return nil
}

func (r *Room) handleInput(ev *InputEvent) {
	cursor, ok := r.inputs[ev.CharacterID]
	if !ok {
		return
	}
	for _, frame := range ev.Frames {
		// 网络输入按本地采样的规则重新累积，非法数值归零
		var record core.InputRecord
		record.AddLook(frame.Record.LookDelta)
		record.SetMovement(frame.Record.Movement, frame.Record.Sprinting)
		record.RequestJump(frame.Record.JumpRequested)
		cursor.buffer.Submit(frame.Tick, record)
	}
}

func (r *Room) handleLeave(id int32) {
	if _, exists := r.sessions[id]; !exists {
		return
	}
	r.removeCharacter(id)

	r.log.WithField("character", id).Infof("角色离开，当前人数: %d", len(r.sessions))

	data, err := EncodePacket(protocol.NewPlayerLeavePacket(id))
	if err != nil {
		r.log.Warnf("序列化离开消息失败: %v", err)
		return
	}
	for _, s := range r.sessions {
		_ = s.Send(data)
	}
}

// removeCharacter 无条件销毁角色，之后的帧不再模拟
func (r *Room) removeCharacter(id int32) {
	delete(r.sessions, id)
	delete(r.inputs, id)
	r.game.RemoveCharacter(id)
}

func (r *Room) closeAllSessions() {
	for _, s := range r.sessions {
		s.CloseWithoutNotify()
	}
}

// broadcastState 每个连接单独构造快照，速度只发给控制端
func (r *Room) broadcastState() {
	if len(r.sessions) == 0 {
		return
	}
	now := time.Now().UnixMilli()

	for id, s := range r.sessions {
		snapshot := &protocol.StateSnapshot{
			ServerTick:   r.game.CurrentTick,
			ServerTimeMs: now,
			Characters:   protocol.CharactersToSnapshot(r.game.Characters, id),
		}
		data, err := EncodePacket(protocol.NewStateSnapshotPacket(snapshot))
		if err != nil {
			r.log.Warnf("序列化状态失败: %v", err)
			return
		}
		if err := s.Send(data); err != nil {
			r.log.WithField("character", id).Debugf("发送状态失败: %v", err)
		}
	}
}
