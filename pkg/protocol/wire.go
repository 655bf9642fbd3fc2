package protocol

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWireType 字段的线格式与期望不符
var ErrWireType = errors.New("字段类型不匹配")

// ========== 编码 ==========

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	return appendVarint(b, num, uint64(int64(v)))
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

// appendFloat 浮点按 fixed32 原样写入，保证两端逐位一致
func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	if v == 0 && !math.Signbit(float64(v)) {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, num protowire.Number, payload []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func appendVec3(b []byte, num protowire.Number, v mgl32.Vec3) []byte {
	var inner []byte
	inner = appendFloat(inner, 1, v[0])
	inner = appendFloat(inner, 2, v[1])
	inner = appendFloat(inner, 3, v[2])
	return appendMessage(b, num, inner)
}

func appendVec2(b []byte, num protowire.Number, v mgl32.Vec2) []byte {
	var inner []byte
	inner = appendFloat(inner, 1, v[0])
	inner = appendFloat(inner, 2, v[1])
	return appendMessage(b, num, inner)
}

// ========== 解码 ==========

// field 当前正在解析的字段
type field struct {
	num protowire.Number
	typ protowire.Type
	b   []byte
	n   int // 已消费的字节数
	err error
}

// decodeFields 遍历消息中的所有字段，未处理的字段自动跳过
func decodeFields(b []byte, fn func(f *field)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := &field{num: num, typ: typ, b: b}
		fn(f)
		if f.err != nil {
			return f.err
		}
		if f.n == 0 {
			f.n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if f.n < 0 {
			return protowire.ParseError(f.n)
		}
		b = b[f.n:]
	}
	return nil
}

func (f *field) expect(typ protowire.Type) bool {
	if f.typ != typ {
		f.err = ErrWireType
		return false
	}
	return true
}

func (f *field) varint() uint64 {
	if !f.expect(protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(f.b)
	f.n = n
	return v
}

func (f *field) int32() int32 {
	return int32(f.varint())
}

func (f *field) uint32() uint32 {
	return uint32(f.varint())
}

func (f *field) int64() int64 {
	return int64(f.varint())
}

func (f *field) bool() bool {
	return protowire.DecodeBool(f.varint())
}

func (f *field) float() float32 {
	if !f.expect(protowire.Fixed32Type) {
		return 0
	}
	v, n := protowire.ConsumeFixed32(f.b)
	f.n = n
	return math.Float32frombits(v)
}

func (f *field) bytes() []byte {
	if !f.expect(protowire.BytesType) {
		return nil
	}
	v, n := protowire.ConsumeBytes(f.b)
	f.n = n
	return v
}

func (f *field) string() string {
	return string(f.bytes())
}

func (f *field) vec3() mgl32.Vec3 {
	var v mgl32.Vec3
	payload := f.bytes()
	if f.err != nil || f.n < 0 {
		return v
	}
	f.err = decodeFields(payload, func(inner *field) {
		switch inner.num {
		case 1:
			v[0] = inner.float()
		case 2:
			v[1] = inner.float()
		case 3:
			v[2] = inner.float()
		}
	})
	return v
}

func (f *field) vec2() mgl32.Vec2 {
	var v mgl32.Vec2
	payload := f.bytes()
	if f.err != nil || f.n < 0 {
		return v
	}
	f.err = decodeFields(payload, func(inner *field) {
		switch inner.num {
		case 1:
			v[0] = inner.float()
		case 2:
			v[1] = inner.float()
		}
	})
	return v
}

// message 从当前字段解析嵌套消息
func (f *field) message(fn func(inner *field)) {
	payload := f.bytes()
	if f.err != nil || f.n < 0 {
		return
	}
	f.err = decodeFields(payload, fn)
}
