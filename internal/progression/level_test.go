package progression

import (
	"math"
	"testing"
)

func TestLevelThreshold(t *testing.T) {
	tests := []struct {
		level, want int
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{5, 506},
		{0, 100},
	}
	for _, tt := range tests {
		if got := LevelThreshold(tt.level); got != tt.want {
			t.Errorf("LevelThreshold(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelFromXP(t *testing.T) {
	tests := []struct {
		xp, want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{474, 3},
		{475, 4},
		{812, 5},
	}
	for _, tt := range tests {
		if got := LevelFromXP(tt.xp); got != tt.want {
			t.Errorf("LevelFromXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelFromXPMonotone(t *testing.T) {
	prev := LevelFromXP(0)
	for xp := 1; xp <= 20000; xp++ {
		l := LevelFromXP(xp)
		if l < prev {
			t.Fatalf("LevelFromXP(%d) = %d < LevelFromXP(%d) = %d", xp, l, xp-1, prev)
		}
		if xp >= XPForLevel(l+1) || xp < XPForLevel(l) {
			t.Fatalf("xp %d outside level %d bounds", xp, l)
		}
		prev = l
	}
}

func TestXPProgressOf(t *testing.T) {
	tests := []struct {
		xp   int
		want XPProgress
	}{
		{0, XPProgress{Level: 1, Current: 0, Needed: 100, Percentage: 0}},
		{50, XPProgress{Level: 1, Current: 50, Needed: 100, Percentage: 50}},
		{105, XPProgress{Level: 2, Current: 5, Needed: 150, Percentage: 3.3333}},
		{250, XPProgress{Level: 3, Current: 0, Needed: 225, Percentage: 0}},
	}
	for _, tt := range tests {
		got := XPProgressOf(tt.xp)
		if got.Level != tt.want.Level || got.Current != tt.want.Current || got.Needed != tt.want.Needed ||
			math.Abs(got.Percentage-tt.want.Percentage) > 0.001 {
			t.Errorf("XPProgressOf(%d) = %+v, want %+v", tt.xp, got, tt.want)
		}
		if got.Percentage < 0 || got.Percentage > 100 {
			t.Errorf("XPProgressOf(%d).Percentage = %v out of range", tt.xp, got.Percentage)
		}
	}
}
