package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPacketSize 单个数据包最大长度
const MaxPacketSize = 4096

var (
	ErrPacketTooLarge = errors.New("消息过大")
	ErrEmptyPacket    = errors.New("空消息")
)

// WriteFrame 写入 4 字节大端长度前缀和数据体
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxPacketSize {
		return fmt.Errorf("%w (%d bytes)", ErrPacketTooLarge, len(data))
	}
	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[4:], data)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("发送数据失败: %w", err)
	}
	return nil
}

// ReadFrame 读取一个长度前缀的数据包
// 长度为 0 时返回 ErrEmptyPacket，调用方可以继续读取
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxPacketSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrPacketTooLarge, length)
	}
	if length == 0 {
		return nil, ErrEmptyPacket
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("读取数据失败: %w", err)
	}
	return data, nil
}
