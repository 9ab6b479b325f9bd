package flight

import (
	"testing"
	"time"
)

func TestStageMachine(t *testing.T) {

	tests := []struct {
		name     string
		sequence []StageSample
		expected string
	}{
		{
			name: "Start Mid-Air (Initial)",
			sequence: []StageSample{
				{OnGround: false, Velocity: 120, VerticalSpeed: 0, IsFlying: true},
			},
			expected: StageAirborne,
		},
		{
			name: "Start Mid-Air (Confirm Cruise)",
			sequence: []StageSample{
				{OnGround: false, Velocity: 120, VerticalSpeed: 0, IsFlying: true},
				{OnGround: false, Velocity: 120, VerticalSpeed: 0, IsFlying: true},
				{OnGround: false, Velocity: 120, VerticalSpeed: 0, IsFlying: true},
			},
			expected: StageCruise,
		},
		{
			name: "Start On Ground",
			sequence: []StageSample{
				{OnGround: true, Velocity: 0},
			},
			expected: StageParked,
		},
		{
			name: "Normal Flow: Parked -> Roll -> TakeOff -> Climb",
			sequence: []StageSample{
				{OnGround: true, Velocity: 0},
				{OnGround: true, Velocity: 5},
				{OnGround: true, Velocity: 10},
				{OnGround: true, Velocity: 25},
				{OnGround: true, Velocity: 40},
				{OnGround: false, Velocity: 80, VerticalSpeed: 8, IsFlying: true},
				{OnGround: false, Velocity: 90, VerticalSpeed: 8, IsFlying: true},
			},
			expected: StageClimb,
		},
		{
			name: "Mid-Air Start: No Spurious TakeOff",
			sequence: []StageSample{
				{OnGround: false, Velocity: 100, VerticalSpeed: 0.2, IsFlying: true},
				{OnGround: false, Velocity: 100, VerticalSpeed: 0.2, IsFlying: true},
				{OnGround: false, Velocity: 100, VerticalSpeed: -0.2, IsFlying: true},
			},
			expected: StageCruise,
		},
		{
			name: "Landed Detection: High Speed Roll",
			sequence: []StageSample{
				{OnGround: false, Velocity: 80, VerticalSpeed: -3, IsFlying: true},
				{OnGround: true, Velocity: 75},
				{OnGround: true, Velocity: 60},
			},
			expected: StageLanded,
		},
		{
			name: "TakeOff: Must Be Accelerating",
			sequence: []StageSample{
				{OnGround: true, Velocity: 0},
				{OnGround: true, Velocity: 25},
				{OnGround: true, Velocity: 25},
				{OnGround: true, Velocity: 25},
			},
			expected: StageRolling,
		},
		{
			name: "Descent Detection",
			sequence: []StageSample{
				{OnGround: false, Velocity: 150, VerticalSpeed: 0, IsFlying: true},
				{OnGround: false, Velocity: 150, VerticalSpeed: -6, IsFlying: true},
				{OnGround: false, Velocity: 150, VerticalSpeed: -6, IsFlying: true},
			},
			expected: StageDescend,
		},
		{
			name: "Arrival Resets To Parked",
			sequence: []StageSample{
				{OnGround: false, Velocity: 80, VerticalSpeed: -3, IsFlying: true},
				{OnGround: true, Velocity: 40},
				{OnGround: true, Velocity: 15},
				{OnGround: true, Velocity: 0.5},
				{OnGround: true, Velocity: 0},
				{OnGround: true, Velocity: 0},
			},
			expected: StageParked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStageMachine()
			now := time.Now()
			var got string
			for _, s := range tt.sequence {
				got = m.Update(now, s)
				now = now.Add(time.Second)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStageMachineRecordsTransitions(t *testing.T) {
	m := NewStageMachine()
	start := time.Now()
	now := start

	samples := []StageSample{
		{OnGround: true, Velocity: 0},
		{OnGround: true, Velocity: 25},
		{OnGround: true, Velocity: 40},
		{OnGround: true, Velocity: 55},
	}
	for _, s := range samples {
		m.Update(now, s)
		now = now.Add(time.Second)
	}

	if m.Current() != StageTakeOff {
		t.Fatalf("expected take-off, got %q", m.Current())
	}
	if m.LastTransition(StageTakeOff).IsZero() {
		t.Error("take-off transition timestamp not recorded")
	}
	if d := m.FlightDuration(now); d <= 0 {
		t.Errorf("expected positive flight duration, got %.2f", d)
	}
}

func TestStageMachineReset(t *testing.T) {
	m := NewStageMachine()
	m.Update(time.Now(), StageSample{OnGround: false, Velocity: 100, IsFlying: true})
	m.Reset()
	if m.Current() != "" {
		t.Errorf("expected empty stage after reset, got %q", m.Current())
	}
	if !m.LastTransition(StageTakeOff).IsZero() {
		t.Error("transition history should be cleared")
	}
}

func TestFormatStage(t *testing.T) {
	tests := map[string]string{
		StageParked:  "Parked",
		StageTakeOff: "Take-Off",
		StageClimb:   "Climb",
		"":           "Unknown",
	}
	for in, want := range tests {
		if got := FormatStage(in); got != want {
			t.Errorf("FormatStage(%q) = %q, want %q", in, got, want)
		}
	}
}
