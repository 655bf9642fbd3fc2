package core

import (
	"github.com/elliotchance/orderedmap/v2"
)

// InputBuffer 权威端的输入缓冲区（按帧号索引）
// 帧号严格递增消费：一旦消费了第 N 帧，N 之前未到达的输入永久视为缺失
type InputBuffer struct {
	records  *orderedmap.OrderedMap[uint32, InputRecord]
	consumed uint32 // 已消费的最大帧号
	started  bool   // 是否已经消费过至少一帧
	capacity int
}

// NewInputBuffer 创建输入缓冲区
func NewInputBuffer(capacity int) *InputBuffer {
	if capacity <= 0 {
		capacity = InputBufferWindow
	}
	return &InputBuffer{
		records:  orderedmap.NewOrderedMap[uint32, InputRecord](),
		capacity: capacity,
	}
}

// Submit 写入某一帧的输入，返回是否被接受
// 重复帧（客户端冗余发送）和已消费的帧会被忽略
func (b *InputBuffer) Submit(tick uint32, record InputRecord) bool {
	if b.started && tick <= b.consumed {
		return false
	}
	if _, exists := b.records.Get(tick); exists {
		return false
	}
	if b.records.Len() >= b.capacity {
		// 缓冲区满时丢弃最早写入的一帧
		if front := b.records.Front(); front != nil {
			b.records.Delete(front.Key)
		}
	}
	b.records.Set(tick, record)
	return true
}

// Fetch 取出指定帧的输入（非阻塞）
// 同时丢弃所有不晚于该帧的缓存，保证不会乱序消费
func (b *InputBuffer) Fetch(tick uint32) (InputRecord, bool) {
	record, ok := b.records.Get(tick)

	stale := make([]uint32, 0, 4)
	for el := b.records.Front(); el != nil; el = el.Next() {
		if el.Key <= tick {
			stale = append(stale, el.Key)
		}
	}
	for _, key := range stale {
		b.records.Delete(key)
	}

	if !b.started || tick > b.consumed {
		b.consumed = tick
		b.started = true
	}
	return record, ok
}

// Earliest 返回缓冲区中最早的帧号，用于权威端对齐输入游标
func (b *InputBuffer) Earliest() (uint32, bool) {
	if b.records.Len() == 0 {
		return 0, false
	}
	first := true
	var earliest uint32
	for el := b.records.Front(); el != nil; el = el.Next() {
		if first || el.Key < earliest {
			earliest = el.Key
			first = false
		}
	}
	return earliest, true
}

// Latest 返回缓冲区中最新的帧号
func (b *InputBuffer) Latest() (uint32, bool) {
	if b.records.Len() == 0 {
		return 0, false
	}
	var latest uint32
	for el := b.records.Front(); el != nil; el = el.Next() {
		if el.Key > latest {
			latest = el.Key
		}
	}
	return latest, true
}

// Consumed 返回最近一次消费的帧号
func (b *InputBuffer) Consumed() (uint32, bool) {
	return b.consumed, b.started
}

// Len 当前缓存的帧数
func (b *InputBuffer) Len() int {
	return b.records.Len()
}
