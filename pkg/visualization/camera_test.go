package visualization

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrame(t *testing.T) {
	m := Frame(Vec3{X: 100}, 100, ClickDuration)
	assert.Equal(t, Vec3{X: 200}, m.Position)
	assert.Equal(t, Vec3{X: 100}, m.LookAt)
	assert.Equal(t, time.Second, m.Duration)

	m = Frame(Vec3{X: 3, Y: 4}, 5, FocusDuration)
	assert.InDelta(t, 6, m.Position.X, 1e-9)
	assert.InDelta(t, 8, m.Position.Y, 1e-9)
	assert.InDelta(t, 10, m.Position.Len(), 1e-9)
	assert.Equal(t, 1500*time.Millisecond, m.Duration)
}

func TestFrameStandOffDistance(t *testing.T) {
	target := Vec3{X: -12, Y: 40, Z: 7}
	m := Frame(target, FocusStandOff, FocusDuration)
	assert.InDelta(t, FocusStandOff, m.Position.Sub(target).Len(), 1e-9)
	// same direction as the target
	assert.InDelta(t, target.Len()*m.Position.Len(), target.Dot(m.Position), 1e-6)
}

func TestFrameDegenerateTargets(t *testing.T) {
	tests := []struct {
		name   string
		target Vec3
	}{
		{"origin", Vec3{}},
		{"NaN", Vec3{X: math.NaN()}},
		{"Inf", Vec3{Y: math.Inf(1)}},
		{"overflowing length", Vec3{X: math.MaxFloat64, Y: math.MaxFloat64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Frame(tt.target, 100, ClickDuration)
			assert.True(t, m.Position.Finite())
			assert.True(t, m.LookAt.Finite())
			assert.Equal(t, Vec3{Z: 100}, m.Position)
		})
	}
}

func TestFrameBadStandOff(t *testing.T) {
	m := Frame(Vec3{X: 10}, math.NaN(), ClickDuration)
	assert.Equal(t, Vec3{X: 10}, m.Position)
}

func TestVec3(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	assert.Equal(t, Vec3{5, 7, 9}, a.Add(b))
	assert.Equal(t, 32.0, a.Dot(b))
	assert.Equal(t, Vec3{-3, 6, -3}, a.Cross(b))
	assert.Equal(t, Vec3{2.5, 3.5, 4.5}, a.Lerp(b, 0.5))
}
