package server

import "fpsnet/pkg/protocol"

type EventKind int

const (
	EventUnknown EventKind = iota
	EventJoin
	EventInput
	EventPing
	EventPong
)

type JoinEvent struct {
	PlayerName string
	Token      string
}

type InputEvent struct {
	CharacterID int32
	Frames      []protocol.InputFrame
}

type PingEvent struct {
	ClientTime int64
}

type PongEvent struct {
	ClientTime int64
	ServerTime int64
	ServerTick uint32
}

type ServerEvent struct {
	Kind  EventKind
	Join  *JoinEvent
	Input *InputEvent
	Ping  *PingEvent
	Pong  *PongEvent
}
