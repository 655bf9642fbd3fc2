package protocol

import (
	"errors"
	"fmt"
)

// ErrUnexpectedType 包类型与期望的消息不符
var ErrUnexpectedType = errors.New("消息类型不匹配")

type payload interface {
	marshal() []byte
}

func newPacket(t MessageType, msg payload) *Packet {
	return &Packet{Type: t, Payload: msg.marshal()}
}

// ========== 辅助构造方法 ==========

// NewJoinRequestPacket 构造加入请求消息包
func NewJoinRequestPacket(playerName, token string) *Packet {
	return newPacket(MessageTypeJoinRequest, &JoinRequest{PlayerName: playerName, Token: token})
}

// NewJoinAcceptedPacket 构造加入成功消息包
func NewJoinAcceptedPacket(accepted *JoinAccepted) *Packet {
	return newPacket(MessageTypeJoinAccepted, accepted)
}

// NewJoinRejectedPacket 构造加入失败消息包
func NewJoinRejectedPacket(reason string) *Packet {
	return newPacket(MessageTypeJoinRejected, &JoinRejected{Reason: reason})
}

// NewInputBatchPacket 构造批量输入消息包
func NewInputBatchPacket(frames []InputFrame) *Packet {
	return newPacket(MessageTypeInputBatch, &InputBatch{Frames: frames})
}

// NewStateSnapshotPacket 构造状态快照消息包
func NewStateSnapshotPacket(snapshot *StateSnapshot) *Packet {
	return newPacket(MessageTypeStateSnapshot, snapshot)
}

// NewPlayerLeavePacket 构造角色离开消息包
func NewPlayerLeavePacket(characterID int32) *Packet {
	return newPacket(MessageTypePlayerLeave, &PlayerLeave{CharacterID: characterID})
}

// NewPingPacket 构造心跳消息包
func NewPingPacket(clientTime int64) *Packet {
	return newPacket(MessageTypePing, &Ping{ClientTime: clientTime})
}

// NewPongPacket 构造心跳回应消息包
func NewPongPacket(clientTime, serverTime int64, serverTick uint32) *Packet {
	return newPacket(MessageTypePong, &Pong{ClientTime: clientTime, ServerTime: serverTime, ServerTick: serverTick})
}

// MarshalPacket 将 Packet 对象转换为字节切片
func MarshalPacket(pkt *Packet) ([]byte, error) {
	if pkt == nil {
		return nil, errors.New("packet 为空")
	}
	if pkt.Type == MessageTypeUnspecified {
		return nil, fmt.Errorf("packet 类型未指定")
	}
	return pkt.marshal(), nil
}

// UnmarshalPacket 将字节切片转换为 Packet 对象
func UnmarshalPacket(data []byte) (*Packet, error) {
	pkt := &Packet{}
	if err := pkt.unmarshal(data); err != nil {
		return nil, fmt.Errorf("解析 packet 失败: %w", err)
	}
	return pkt, nil
}

// ========== 解析方法 ==========

type decodable interface {
	unmarshal(b []byte) error
}

func parse(pkt *Packet, want MessageType, msg decodable) error {
	if pkt.Type != want {
		return fmt.Errorf("%w: 期望 %s, 实际 %s", ErrUnexpectedType, want, pkt.Type)
	}
	if err := msg.unmarshal(pkt.Payload); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", want, err)
	}
	return nil
}

// ParseJoinRequest 从 Packet 中解析 JoinRequest
func ParseJoinRequest(pkt *Packet) (*JoinRequest, error) {
	req := &JoinRequest{}
	if err := parse(pkt, MessageTypeJoinRequest, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseJoinAccepted 从 Packet 中解析 JoinAccepted
func ParseJoinAccepted(pkt *Packet) (*JoinAccepted, error) {
	resp := &JoinAccepted{}
	if err := parse(pkt, MessageTypeJoinAccepted, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ParseJoinRejected 从 Packet 中解析 JoinRejected
func ParseJoinRejected(pkt *Packet) (*JoinRejected, error) {
	resp := &JoinRejected{}
	if err := parse(pkt, MessageTypeJoinRejected, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ParseInputBatch 从 Packet 中解析 InputBatch
func ParseInputBatch(pkt *Packet) (*InputBatch, error) {
	batch := &InputBatch{}
	if err := parse(pkt, MessageTypeInputBatch, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ParseStateSnapshot 从 Packet 中解析 StateSnapshot
func ParseStateSnapshot(pkt *Packet) (*StateSnapshot, error) {
	snapshot := &StateSnapshot{}
	if err := parse(pkt, MessageTypeStateSnapshot, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ParsePlayerLeave 从 Packet 中解析 PlayerLeave
func ParsePlayerLeave(pkt *Packet) (*PlayerLeave, error) {
	leave := &PlayerLeave{}
	if err := parse(pkt, MessageTypePlayerLeave, leave); err != nil {
		return nil, err
	}
	return leave, nil
}

// ParsePing 从 Packet 中解析 Ping
func ParsePing(pkt *Packet) (*Ping, error) {
	ping := &Ping{}
	if err := parse(pkt, MessageTypePing, ping); err != nil {
		return nil, err
	}
	return ping, nil
}

// ParsePong 从 Packet 中解析 Pong
func ParsePong(pkt *Packet) (*Pong, error) {
	pong := &Pong{}
	if err := parse(pkt, MessageTypePong, pong); err != nil {
		return nil, err
	}
	return pong, nil
}
