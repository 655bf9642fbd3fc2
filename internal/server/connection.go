package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"fpsnet/pkg/protocol"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	readTimeout  = 5 * time.Second // 读取超时
	writeTimeout = 1 * time.Second // 写入超时
	sendQueueLen = 256
)

var (
	ErrSendQueueFull    = errors.New("发送队列满")
	ErrConnectionClosed = errors.New("连接已关闭")
	ErrAlreadyJoined    = errors.New("玩家已加入")
)

// Connection 表示一个客户端连接
type Connection struct {
	conn        net.Conn
	server      *GameServer
	characterID int32
	log         *logrus.Entry

	// 入站限流：超出的输入包直接丢弃
	limiter *rate.Limiter

	// 发送队列
	sendChan chan []byte
	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex

	lastRecvTime atomic.Value
	rtt          atomic.Int64
}

// NewConnection 创建新连接，连接到服务器上
func NewConnection(conn net.Conn, server *GameServer) *Connection {
	cfg := server.cfg
	c := &Connection{
		conn:        conn,
		server:      server,
		characterID: -1, // -1 表示未分配
		log:         server.log.WithField("remote", conn.RemoteAddr().String()),
		limiter:     rate.NewLimiter(rate.Limit(cfg.InputRateLimit), cfg.InputRateBurst),
		sendChan:    make(chan []byte, sendQueueLen),
		closeCh:     make(chan struct{}),
	}
	c.lastRecvTime.Store(time.Now())
	return c
}

// Handle 处理连接
func (c *Connection) Handle(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	c.log.Debug("连接处理开始")

	wg.Add(1)
	go c.startHeartbeat(ctx, wg)

	wg.Add(1)
	go c.sendLoop(ctx, wg)

	wg.Add(1)
	go c.receiveLoop(ctx, wg)

	select {
	case <-ctx.Done():
	case <-c.closeCh:
	}

	c.Close()
}

// Close 关闭连接，并通知房间销毁该连接控制的角色
func (c *Connection) Close() {
	c.closeWithNotify(true)
}

// CloseWithoutNotify 关闭连接但不触发离开逻辑
func (c *Connection) CloseWithoutNotify() {
	c.closeWithNotify(false)
}

func (c *Connection) closeWithNotify(notify bool) {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return
	}
	c.closed = true
	close(c.closeCh)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	close(c.sendChan)
	c.closeMu.Unlock()

	if notify {
		if id := c.ID(); id >= 0 {
			c.server.removeCharacter(id)
		}
	}

	c.log.Info("连接已关闭")
}

// Send 发送数据（异步）
func (c *Connection) Send(data []byte) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Connection) sendPacket(pkt *protocol.Packet) error {
	data, err := EncodePacket(pkt)
	if err != nil {
		return err
	}
	return c.Send(data)
}

// sendLoop 发送循环
func (c *Connection) sendLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-c.sendChan:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := protocol.WriteFrame(c.conn, data); err != nil {
				c.log.Warnf("发送失败: %v", err)
				c.Close()
				return
			}
		}
	}
}

// receiveLoop 接收循环
func (c *Connection) receiveLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		data, err := protocol.ReadFrame(c.conn)
		if errors.Is(err, protocol.ErrEmptyPacket) {
			c.log.Debug("收到空消息")
			continue
		}
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				c.log.Warn("读取超时")
			case errors.Is(err, io.EOF):
			default:
				c.log.Warnf("读取失败: %v", err)
			}
			c.Close()
			return
		}

		c.lastRecvTime.Store(time.Now())
		if err := c.handleMessage(data); err != nil {
			c.log.Warnf("处理消息失败: %v", err)
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Connection) handleMessage(data []byte) error {
	event, err := DecodePacket(data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch event.Kind {
	case EventJoin:
		if c.ID() >= 0 {
			return ErrAlreadyJoined
		}
		if err := c.server.handleJoinRequest(c, event.Join); err != nil {
			_ = c.sendPacket(protocol.NewJoinRejectedPacket(err.Error()))
			return fmt.Errorf("处理加入请求失败: %w", err)
		}
		c.log.Infof("玩家 %q 加入成功", event.Join.PlayerName)

	case EventInput:
		if c.ID() < 0 {
			return nil
		}
		if !c.limiter.Allow() {
			c.log.Debug("输入包超出速率限制，已丢弃")
			return nil
		}
		event.Input.CharacterID = c.ID()
		c.server.handleInput(event.Input)

	case EventPing:
		_ = c.sendPacket(protocol.NewPongPacket(event.Ping.ClientTime, time.Now().UnixMilli(), c.server.currentTick()))

	case EventPong:
		c.handlePong(event.Pong)

	default:
		return fmt.Errorf("未知消息类型")
	}

	return nil
}

// String 返回连接的字符串表示
func (c *Connection) String() string {
	if c.ID() >= 0 {
		return fmt.Sprintf("Connection{%d, %s}", c.ID(), c.conn.RemoteAddr())
	}
	return fmt.Sprintf("Connection{%s}", c.conn.RemoteAddr())
}

func (c *Connection) ID() int32 {
	return atomic.LoadInt32(&c.characterID)
}

func (c *Connection) SetCharacterID(id int32) {
	atomic.StoreInt32(&c.characterID, id)
}

// RTT 最近一次心跳往返时间
func (c *Connection) RTT() time.Duration {
	return time.Duration(c.rtt.Load()) * time.Millisecond
}

func (c *Connection) startHeartbeat(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	cfg := c.server.cfg
	ticker := time.NewTicker(cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		case <-ticker.C:
			lastRecv, _ := c.lastRecvTime.Load().(time.Time)
			if !lastRecv.IsZero() && time.Since(lastRecv) > cfg.HeartbeatTimeout {
				c.log.Warn("心跳超时")
				c.Close()
				return
			}
			_ = c.sendPacket(protocol.NewPingPacket(time.Now().UnixMilli()))
		}
	}
}

func (c *Connection) handlePong(pong *PongEvent) {
	if pong == nil || pong.ClientTime <= 0 {
		return
	}
	c.rtt.Store(time.Now().UnixMilli() - pong.ClientTime)
}
