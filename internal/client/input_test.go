package client

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeDevice 按顺序返回预设的采样
type fakeDevice struct {
	samples []DeviceSample
	locked  []bool
}

func (d *fakeDevice) Sample() DeviceSample {
	if len(d.samples) == 0 {
		return DeviceSample{}
	}
	s := d.samples[0]
	d.samples = d.samples[1:]
	return s
}

func (d *fakeDevice) SetCursorLocked(locked bool) {
	d.locked = append(d.locked, locked)
}

func approxVec2(a, b mgl32.Vec2) bool {
	return math32.Abs(a.X()-b.X()) < 1e-5 && math32.Abs(a.Y()-b.Y()) < 1e-5
}

func TestSampler_Accumulation(t *testing.T) {
	tests := []struct {
		name       string
		samples    []DeviceSample
		unlock     bool
		disable    bool
		wantLook   mgl32.Vec2
		wantMove   mgl32.Vec2
		wantSprint bool
		wantJump   bool
	}{
		{
			name: "look adds up, movement overwrites",
			samples: []DeviceSample{
				{Look: mgl32.Vec2{1, 0}, Move: mgl32.Vec2{1, 0}, Sprint: 1},
				{Look: mgl32.Vec2{2, 1}, Move: mgl32.Vec2{0, 1}},
			},
			wantLook: mgl32.Vec2{3 * 1.6, -1},
			wantMove: mgl32.Vec2{0, 1},
		},
		{
			name: "jump press survives later frames",
			samples: []DeviceSample{
				{Jump: true},
				{},
				{Sprint: 0.5},
			},
			wantSprint: true,
			wantJump:   true,
		},
		{
			name: "unlocked cursor ignores look only",
			samples: []DeviceSample{
				{Look: mgl32.Vec2{5, 5}, Move: mgl32.Vec2{-1, 0}, Jump: true},
			},
			unlock:   true,
			wantMove: mgl32.Vec2{-1, 0},
			wantJump: true,
		},
		{
			name: "disabled input samples nothing",
			samples: []DeviceSample{
				{Look: mgl32.Vec2{5, 5}, Move: mgl32.Vec2{-1, 0}, Jump: true, Sprint: 1},
			},
			disable: true,
		},
		{
			name: "NaN axes count as zero",
			samples: []DeviceSample{
				{Look: mgl32.Vec2{math32.NaN(), 1}, Move: mgl32.Vec2{math32.Inf(1), 1}},
			},
			wantLook: mgl32.Vec2{0, -1},
			wantMove: mgl32.Vec2{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession()
			session.CursorLocked = !tt.unlock
			session.InputEnabled = !tt.disable
			sampler := NewSampler(&fakeDevice{samples: tt.samples}, session, 1.6, -1)

			for range tt.samples {
				sampler.Sample()
			}
			rec := sampler.Take()

			if !approxVec2(rec.LookDelta, tt.wantLook) {
				t.Errorf("LookDelta = %v, 期望 %v", rec.LookDelta, tt.wantLook)
			}
			if rec.Movement != tt.wantMove {
				t.Errorf("Movement = %v, 期望 %v", rec.Movement, tt.wantMove)
			}
			if rec.Sprinting != tt.wantSprint {
				t.Errorf("Sprinting = %v, 期望 %v", rec.Sprinting, tt.wantSprint)
			}
			if rec.JumpRequested != tt.wantJump {
				t.Errorf("JumpRequested = %v, 期望 %v", rec.JumpRequested, tt.wantJump)
			}
		})
	}
}

func TestSampler_TakeResets(t *testing.T) {
	device := &fakeDevice{samples: []DeviceSample{{Look: mgl32.Vec2{1, 1}, Jump: true}}}
	sampler := NewSampler(device, NewSession(), 1, 1)

	sampler.Sample()
	if got := sampler.PendingLook(); got != (mgl32.Vec2{1, 1}) {
		t.Fatalf("PendingLook = %v, 期望 (1, 1)", got)
	}
	if rec := sampler.Take(); !rec.JumpRequested {
		t.Fatal("第一次 Take 应当带有跳跃")
	}
	rec := sampler.Take()
	if rec.JumpRequested || rec.LookDelta != (mgl32.Vec2{}) {
		t.Fatalf("Take 之后应当重置, 实际 %+v", rec)
	}
	if sampler.PendingLook() != (mgl32.Vec2{}) {
		t.Fatal("PendingLook 应当清零")
	}
}

func TestSampler_EscapeTogglesCursorLock(t *testing.T) {
	device := &fakeDevice{samples: []DeviceSample{
		{Escape: true, Look: mgl32.Vec2{3, 0}},
		{Look: mgl32.Vec2{3, 0}},
		{Escape: true, Look: mgl32.Vec2{1, 0}},
	}}
	session := NewSession()
	sampler := NewSampler(device, session, 1, 1)

	sampler.Sample()
	if session.CursorLocked {
		t.Fatal("Escape 后光标应当解锁")
	}
	sampler.Sample()
	sampler.Sample()
	if !session.CursorLocked {
		t.Fatal("再次 Escape 后光标应当锁定")
	}

	// 构造时一次，两次切换各一次
	want := []bool{true, false, true}
	if len(device.locked) != len(want) {
		t.Fatalf("SetCursorLocked 调用 = %v, 期望 %v", device.locked, want)
	}
	for i := range want {
		if device.locked[i] != want[i] {
			t.Fatalf("SetCursorLocked 调用 = %v, 期望 %v", device.locked, want)
		}
	}

	// 只有重新锁定那一帧的视角被采样
	if got := sampler.Take().LookDelta; got != (mgl32.Vec2{1, 0}) {
		t.Fatalf("LookDelta = %v, 期望 (1, 0)", got)
	}
}
