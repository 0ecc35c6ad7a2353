package downlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldRun_Disabled(t *testing.T) {
	tests := []struct {
		name       string
		rate, base int
	}{
		{"zero rate", 0, 200},
		{"rate above base", 201, 200},
		{"negative rate", -1, 200},
		{"zero base", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for n := uint64(0); n < 1000; n++ {
				if ShouldRun(tt.rate, tt.base, n) {
					t.Fatalf("ShouldRun(%d, %d, %d) = true", tt.rate, tt.base, n)
				}
			}
		})
	}
}

func TestShouldRun_HeartbeatScenario(t *testing.T) {
	assert.True(t, ShouldRun(2, 200, 0))
	for n := uint64(1); n < 100; n++ {
		assert.False(t, ShouldRun(2, 200, n), "iteration %d", n)
	}
	assert.True(t, ShouldRun(2, 200, 100))
}

func TestShouldRun_FiresRateTimesPerBase(t *testing.T) {
	const base = 200
	for _, rate := range []int{1, 2, 4, 5, 8, 10, 20, 25, 40, 50, 100, 200} {
		period := uint64(base / rate)
		fired := 0
		for n := uint64(0); n < base; n++ {
			got := ShouldRun(rate, base, n)
			if got != (n%period == 0) {
				t.Fatalf("rate %d: ShouldRun at %d = %v", rate, n, got)
			}
			if got {
				fired++
			}
		}
		assert.Equal(t, rate, fired, "rate %d", rate)
	}
}

func TestShouldRun_UnevenRateUsesFloorDivisor(t *testing.T) {
	// 200/3 = 66
	assert.True(t, ShouldRun(3, 200, 66))
	assert.True(t, ShouldRun(3, 200, 132))
	assert.False(t, ShouldRun(3, 200, 67))
}

func TestShouldRun_LargeIteration(t *testing.T) {
	assert.True(t, ShouldRun(1, 200, 200*1_000_000_000))
}
