package server

import (
	"context"
	"fmt"
	"sync"

	"fpsnet/internal/config"
	"fpsnet/pkg/core"

	"github.com/sirupsen/logrus"
)

// GameServer 权威服务器：接受连接并把事件交给房间循环
type GameServer struct {
	room *Room

	cfg      config.ServerConfig
	movement core.MovementConfig
	tokens   *TokenIssuer
	log      *logrus.Entry

	listener ServerListener

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown chan struct{}
	once     sync.Once
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg config.ServerConfig, movement core.MovementConfig, log *logrus.Logger) *GameServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &GameServer{
		cfg:      cfg,
		movement: movement,
		tokens:   NewTokenIssuer(cfg.TokenSecret),
		log:      log.WithField("component", "server"),
		ctx:      ctx,
		cancel:   cancel,
		shutdown: make(chan struct{}),
	}
}

// Tokens 加入令牌签发器
func (s *GameServer) Tokens() *TokenIssuer {
	return s.tokens
}

// Start 启动服务器，阻塞直到 Shutdown
func (s *GameServer) Start() error {
	listener, err := newListener(s.cfg.Protocol, s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("监听失败: %w", err)
	}
	s.listener = listener

	s.log.WithFields(logrus.Fields{
		"addr":       listener.Addr().String(),
		"protocol":   s.cfg.Protocol,
		"prediction": s.cfg.PredictionGranted,
	}).Info("服务器监听中")

	s.room = NewRoom(s.ctx, s.cfg, s.movement, s.log.WithField("component", "room"))

	s.wg.Add(1)
	go s.room.Run(&s.wg)

	s.wg.Add(1)
	go s.acceptLoop()

	<-s.shutdown
	return nil
}

// Shutdown 优雅关闭服务器
func (s *GameServer) Shutdown() {
	s.once.Do(func() {
		s.log.Info("正在关闭服务器...")
		s.cancel()
		if s.room != nil {
			s.room.Shutdown()
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
		close(s.shutdown)
		s.wg.Wait()
		s.log.Info("服务器已关闭")
	})
}

// acceptLoop 接受客户端连接
func (s *GameServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.log.Warnf("接受连接失败: %v", err)
				continue
			}
		}

		s.log.Debugf("新连接来自: %s", conn.RemoteAddr())

		connection := NewConnection(conn, s)
		s.wg.Add(1)
		go connection.Handle(s.ctx, &s.wg)
	}
}

// handleJoinRequest 校验令牌后交给房间分配角色
func (s *GameServer) handleJoinRequest(conn *Connection, req *JoinEvent) error {
	if s.room == nil {
		return fmt.Errorf("房间未初始化")
	}
	name := req.PlayerName
	if s.cfg.RequireToken {
		verified, err := s.tokens.Verify(req.Token)
		if err != nil {
			return err
		}
		name = verified
	}
	return s.room.Join(conn, name)
}

func (s *GameServer) handleInput(ev *InputEvent) {
	if s.room == nil {
		return
	}
	s.room.EnqueueInput(ev)
}

// removeCharacter 连接断开时销毁其控制的角色
func (s *GameServer) removeCharacter(id int32) {
	if s.room == nil {
		return
	}
	s.room.Leave(id)
}

func (s *GameServer) currentTick() uint32 {
	if s.room == nil {
		return 0
	}
	return s.room.CurrentTick()
}
