package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestInputBuffer_FetchInOrder(t *testing.T) {
	buf := NewInputBuffer(8)
	for tick := uint32(10); tick < 14; tick++ {
		if !buf.Submit(tick, InputRecord{Movement: mgl32.Vec2{float32(tick), 0}}) {
			t.Fatalf("Submit(%d) 被拒绝", tick)
		}
	}

	for tick := uint32(10); tick < 14; tick++ {
		rec, ok := buf.Fetch(tick)
		if !ok {
			t.Fatalf("Fetch(%d) 缺失", tick)
		}
		if rec.Movement.X() != float32(tick) {
			t.Fatalf("Fetch(%d) 取到 %v", tick, rec.Movement)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("Len = %d, 期望 0", buf.Len())
	}
}

func TestInputBuffer_MissingIsNotAnError(t *testing.T) {
	buf := NewInputBuffer(8)
	if _, ok := buf.Fetch(3); ok {
		t.Fatalf("空缓冲区 Fetch 返回了输入")
	}
	consumed, started := buf.Consumed()
	if !started || consumed != 3 {
		t.Fatalf("Consumed = (%d, %v), 期望 (3, true)", consumed, started)
	}
}

func TestInputBuffer_LateInputDiscarded(t *testing.T) {
	buf := NewInputBuffer(8)
	buf.Submit(6, InputRecord{JumpRequested: true})

	if _, ok := buf.Fetch(5); ok {
		t.Fatalf("第 5 帧尚未到达")
	}
	if _, ok := buf.Fetch(6); !ok {
		t.Fatalf("第 6 帧应当存在")
	}

	// 第 5 帧迟到，已被永久视为缺失
	if buf.Submit(5, InputRecord{}) {
		t.Fatalf("迟到的第 5 帧不应被接受")
	}
	if buf.Submit(6, InputRecord{}) {
		t.Fatalf("已消费的第 6 帧不应被接受")
	}
	if !buf.Submit(7, InputRecord{}) {
		t.Fatalf("第 7 帧应被接受")
	}
}

func TestInputBuffer_FetchDropsOlderRecords(t *testing.T) {
	buf := NewInputBuffer(8)
	buf.Submit(1, InputRecord{})
	buf.Submit(2, InputRecord{})
	buf.Submit(4, InputRecord{})

	if _, ok := buf.Fetch(3); ok {
		t.Fatalf("第 3 帧不存在")
	}
	if buf.Len() != 1 {
		t.Fatalf("Len = %d, 期望只剩第 4 帧", buf.Len())
	}
	if earliest, ok := buf.Earliest(); !ok || earliest != 4 {
		t.Fatalf("Earliest = (%d, %v), 期望 (4, true)", earliest, ok)
	}
}

func TestInputBuffer_DuplicateIgnored(t *testing.T) {
	buf := NewInputBuffer(8)
	buf.Submit(1, InputRecord{Sprinting: true})
	if buf.Submit(1, InputRecord{}) {
		t.Fatalf("重复帧不应被接受")
	}
	rec, _ := buf.Fetch(1)
	if !rec.Sprinting {
		t.Fatalf("重复帧覆盖了原始输入")
	}
}

func TestInputBuffer_CapacityEvictsOldest(t *testing.T) {
	buf := NewInputBuffer(3)
	for tick := uint32(1); tick <= 5; tick++ {
		buf.Submit(tick, InputRecord{})
	}
	if buf.Len() != 3 {
		t.Fatalf("Len = %d, 期望 3", buf.Len())
	}
	earliest, _ := buf.Earliest()
	latest, _ := buf.Latest()
	if earliest != 3 || latest != 5 {
		t.Fatalf("范围 = [%d, %d], 期望 [3, 5]", earliest, latest)
	}
}

func TestInputRecord_Accumulation(t *testing.T) {
	var rec InputRecord
	rec.AddLook(mgl32.Vec2{1, 2})
	rec.AddLook(mgl32.Vec2{0.5, -1})
	rec.RequestJump(true)
	rec.RequestJump(false)
	rec.SetMovement(mgl32.Vec2{1, 0}, true)
	rec.SetMovement(mgl32.Vec2{0, 1}, false)

	if rec.LookDelta != (mgl32.Vec2{1.5, 1}) {
		t.Fatalf("LookDelta = %v, 期望累加", rec.LookDelta)
	}
	if !rec.JumpRequested {
		t.Fatalf("跳跃按下被后续帧覆盖")
	}
	if rec.Movement != (mgl32.Vec2{0, 1}) || rec.Sprinting {
		t.Fatalf("移动/冲刺应取最后一次采样: %v %v", rec.Movement, rec.Sprinting)
	}

	rec.Reset()
	if rec != (InputRecord{}) {
		t.Fatalf("Reset 后 = %+v", rec)
	}
}

func TestInputRecord_MalformedAxesDegradeToZero(t *testing.T) {
	var rec InputRecord
	nan := math32.NaN()
	rec.AddLook(mgl32.Vec2{nan, 1})
	rec.SetMovement(mgl32.Vec2{nan, nan}, false)
	if rec.LookDelta != (mgl32.Vec2{0, 1}) {
		t.Fatalf("LookDelta = %v", rec.LookDelta)
	}
	if rec.Movement != (mgl32.Vec2{}) {
		t.Fatalf("Movement = %v", rec.Movement)
	}
}
