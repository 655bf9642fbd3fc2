package server

import (
	"fmt"

	"fpsnet/pkg/protocol"
)

// DecodePacket 解析服务器收到的数据包
func DecodePacket(data []byte) (*ServerEvent, error) {
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return nil, fmt.Errorf("解析包失败: %w", err)
	}

	switch pkt.Type {
	case protocol.MessageTypeJoinRequest:
		req, err := protocol.ParseJoinRequest(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventJoin,
			Join: &JoinEvent{PlayerName: req.PlayerName, Token: req.Token},
		}, nil

	case protocol.MessageTypeInputBatch:
		batch, err := protocol.ParseInputBatch(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind:  EventInput,
			Input: &InputEvent{Frames: batch.Frames},
		}, nil

	case protocol.MessageTypePing:
		ping, err := protocol.ParsePing(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventPing,
			Ping: &PingEvent{ClientTime: ping.ClientTime},
		}, nil

	case protocol.MessageTypePong:
		pong, err := protocol.ParsePong(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventPong,
			Pong: &PongEvent{ClientTime: pong.ClientTime, ServerTime: pong.ServerTime, ServerTick: pong.ServerTick},
		}, nil

	default:
		return &ServerEvent{Kind: EventUnknown}, nil
	}
}

// EncodePacket 序列化服务器下发的数据包
func EncodePacket(pkt *protocol.Packet) ([]byte, error) {
	if pkt == nil {
		return nil, fmt.Errorf("packet 为空")
	}
	data, err := protocol.MarshalPacket(pkt)
	if err != nil {
		return nil, fmt.Errorf("序列化 %s 失败: %w", pkt.Type, err)
	}
	if len(data) > protocol.MaxPacketSize {
		return nil, fmt.Errorf("%s 超过最大包长 (%d bytes)", pkt.Type, len(data))
	}
	return data, nil
}
