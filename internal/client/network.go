package client

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
	kcp "github.com/xtaci/kcp-go/v5"
)

const (
	dialTimeout    = 5 * time.Second
	joinTimeout    = 10 * time.Second
	pingInterval   = time.Second
	clockSmoothing = 0.1
)

var (
	ErrJoinTimeout   = errors.New("等待加入结果超时")
	ErrJoinRejected  = errors.New("加入被拒绝")
	ErrNotConnected  = errors.New("未连接到服务器")
	ErrSendQueueFull = errors.New("发送队列满")
)

// NetworkClient 网络客户端
type NetworkClient struct {
	conn       net.Conn
	serverAddr string
	proto      string
	playerName string
	token      string
	log        *logrus.Entry

	accepted *protocol.JoinAccepted

	connected atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	// 消息队列
	snapshotChan chan *protocol.StateSnapshot
	joinChan     chan *protocol.JoinAccepted
	leaveChan    chan int32
	sendChan     chan []byte
	errChan      chan error

	// 服务器时钟估计：serverTime = localTime + offset
	clockOffset atomic.Int64
	clockSynced atomic.Bool
	rtt         atomic.Int64
}

// NewNetworkClient 创建网络客户端
func NewNetworkClient(serverAddr, proto, playerName, token string, log *logrus.Logger) *NetworkClient {
	ctx, cancel := context.WithCancel(context.Background())

	return &NetworkClient{
		serverAddr:   serverAddr,
		proto:        proto,
		playerName:   playerName,
		token:        token,
		log:          log.WithField("component", "network"),
		ctx:          ctx,
		cancel:       cancel,
		snapshotChan: make(chan *protocol.StateSnapshot, 256),
		joinChan:     make(chan *protocol.JoinAccepted, 1),
		leaveChan:    make(chan int32, 16),
		sendChan:     make(chan []byte, 256),
		errChan:      make(chan error, 1),
	}
}

// Connect 连接服务器并等待加入结果
func (nc *NetworkClient) Connect() error {
	nc.log.Infof("连接到服务器: %s (%s)", nc.serverAddr, nc.proto)

	conn, err := nc.dial()
	if err != nil {
		return fmt.Errorf("连接服务器失败: %w", err)
	}
	nc.conn = conn
	nc.connected.Store(true)

	nc.wg.Add(3)
	go nc.receiveLoop()
	go nc.sendLoop()
	go nc.pingLoop()

	if err := nc.sendPacket(protocol.NewJoinRequestPacket(nc.playerName, nc.token)); err != nil {
		nc.Close()
		return fmt.Errorf("发送加入请求失败: %w", err)
	}

	select {
	case accepted := <-nc.joinChan:
		nc.accepted = accepted
		nc.log.WithFields(logrus.Fields{
			"character":  accepted.CharacterID,
			"spawn":      accepted.Spawn,
			"prediction": accepted.PredictionGranted,
		}).Info("加入成功")
		return nil

	case err := <-nc.errChan:
		nc.Close()
		return err

	case <-time.After(joinTimeout):
		nc.Close()
		return ErrJoinTimeout
	}
}

func (nc *NetworkClient) dial() (net.Conn, error) {
	switch nc.proto {
	case "", "tcp":
		conn, err := net.DialTimeout("tcp", nc.serverAddr, dialTimeout)
		if err != nil {
			return nil, err
		}
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
		}
		return conn, nil
	case "kcp":
		session, err := kcp.DialWithOptions(nc.serverAddr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		session.SetNoDelay(1, 10, 2, 1)
		session.SetWindowSize(256, 256)
		session.SetACKNoDelay(true)
		return session, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", nc.proto)
	}
}

// Close 关闭连接
func (nc *NetworkClient) Close() {
	nc.closeOnce.Do(func() {
		nc.connected.Store(false)
		nc.cancel()
		if nc.conn != nil {
			_ = nc.conn.Close()
		}
		nc.wg.Wait()
		nc.log.Info("网络客户端已关闭")
	})
}

// Accepted 服务器下发的加入结果
func (nc *NetworkClient) Accepted() *protocol.JoinAccepted {
	return nc.accepted
}

// IsConnected 检查是否已连接
func (nc *NetworkClient) IsConnected() bool {
	return nc.connected.Load()
}

// RTT 最近一次测得的往返时间
func (nc *NetworkClient) RTT() time.Duration {
	return time.Duration(nc.rtt.Load()) * time.Millisecond
}

// ServerTimeMs 估计的当前服务器时间（毫秒）
func (nc *NetworkClient) ServerTimeMs() int64 {
	return time.Now().UnixMilli() + nc.clockOffset.Load()
}

// ========== 消息接收 ==========

func (nc *NetworkClient) receiveLoop() {
	defer nc.wg.Done()
	defer nc.connected.Store(false)

	for {
		data, err := protocol.ReadFrame(nc.conn)
		if errors.Is(err, protocol.ErrEmptyPacket) {
			continue
		}
		if err != nil {
			select {
			case <-nc.ctx.Done():
			default:
				if !errors.Is(err, io.EOF) {
					nc.reportError(fmt.Errorf("读取失败: %w", err))
				} else {
					nc.reportError(ErrNotConnected)
				}
			}
			return
		}

		if err := nc.handleMessage(data); err != nil {
			nc.log.Warnf("处理消息失败: %v", err)
		}
	}
}

func (nc *NetworkClient) reportError(err error) {
	select {
	case nc.errChan <- err:
	default:
	}
}

// handleMessage 处理接收到的消息
func (nc *NetworkClient) handleMessage(data []byte) error {
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch pkt.Type {
	case protocol.MessageTypeStateSnapshot:
		snapshot, err := protocol.ParseStateSnapshot(pkt)
		if err != nil {
			return err
		}
		if !nc.clockSynced.Load() {
			nc.clockOffset.Store(snapshot.ServerTimeMs - time.Now().UnixMilli())
		}
		select {
		case nc.snapshotChan <- snapshot:
		default:
			// 队列满，丢弃
		}

	case protocol.MessageTypeJoinAccepted:
		accepted, err := protocol.ParseJoinAccepted(pkt)
		if err != nil {
			return err
		}
		select {
		case nc.joinChan <- accepted:
		default:
		}

	case protocol.MessageTypeJoinRejected:
		rejected, err := protocol.ParseJoinRejected(pkt)
		if err != nil {
			return err
		}
		nc.reportError(fmt.Errorf("%w: %s", ErrJoinRejected, rejected.Reason))

	case protocol.MessageTypePlayerLeave:
		leave, err := protocol.ParsePlayerLeave(pkt)
		if err != nil {
			return err
		}
		select {
		case nc.leaveChan <- leave.CharacterID:
		default:
		}

	case protocol.MessageTypePing:
		ping, err := protocol.ParsePing(pkt)
		if err != nil {
			return err
		}
		return nc.sendPacket(protocol.NewPongPacket(ping.ClientTime, time.Now().UnixMilli(), 0))

	case protocol.MessageTypePong:
		pong, err := protocol.ParsePong(pkt)
		if err != nil {
			return err
		}
		nc.updateClock(pong, time.Now().UnixMilli())

	default:
		return fmt.Errorf("未知消息类型: %s", pkt.Type)
	}

	return nil
}

// updateClock 以 Pong 校准服务器时钟偏移
func (nc *NetworkClient) updateClock(pong *protocol.Pong, nowMs int64) {
	rtt := nowMs - pong.ClientTime
	if rtt < 0 {
		return
	}
	nc.rtt.Store(rtt)

	offset := pong.ServerTime + rtt/2 - nowMs
	if nc.clockSynced.Swap(true) {
		prev := nc.clockOffset.Load()
		offset = prev + int64(float64(offset-prev)*clockSmoothing)
	}
	nc.clockOffset.Store(offset)
}

// ========== 消息发送 ==========

func (nc *NetworkClient) sendLoop() {
	defer nc.wg.Done()

	for {
		select {
		case <-nc.ctx.Done():
			return
		case data := <-nc.sendChan:
			if err := protocol.WriteFrame(nc.conn, data); err != nil {
				nc.log.Warnf("发送失败: %v", err)
				nc.reportError(err)
				return
			}
		}
	}
}

func (nc *NetworkClient) pingLoop() {
	defer nc.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-nc.ctx.Done():
			return
		case <-ticker.C:
			_ = nc.sendPacket(protocol.NewPingPacket(time.Now().UnixMilli()))
		}
	}
}

func (nc *NetworkClient) sendPacket(pkt *protocol.Packet) error {
	data, err := protocol.MarshalPacket(pkt)
	if err != nil {
		return err
	}
	if !nc.connected.Load() {
		return ErrNotConnected
	}
	select {
	case nc.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// SendInputBatch 发送最近若干帧输入
func (nc *NetworkClient) SendInputBatch(frames []protocol.InputFrame) error {
	return nc.sendPacket(protocol.NewInputBatchPacket(frames))
}

// ========== 状态接收 ==========

// ReceiveSnapshot 接收状态快照（非阻塞）
func (nc *NetworkClient) ReceiveSnapshot() *protocol.StateSnapshot {
	select {
	case snapshot := <-nc.snapshotChan:
		return snapshot
	default:
		return nil
	}
}

// ReceivePlayerLeave 接收角色离开（非阻塞），没有时返回 -1
func (nc *NetworkClient) ReceivePlayerLeave() int32 {
	select {
	case id := <-nc.leaveChan:
		return id
	default:
		return -1
	}
}

// Err 连接错误（非阻塞）
func (nc *NetworkClient) Err() error {
	select {
	case err := <-nc.errChan:
		return err
	default:
		return nil
	}
}
